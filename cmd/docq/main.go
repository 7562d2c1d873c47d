package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/razeghi71/docq/document"
	"github.com/razeghi71/docq/engine"
	"github.com/razeghi71/docq/loader"
	"github.com/razeghi71/docq/parser"
	"github.com/razeghi71/docq/value"
)

func main() {
	var (
		interactive = flag.Bool("i", false, "start an interactive shell")
		whereFlag   = flag.String("where", "", "comma-separated path=value equality filters")
		projectFlag = flag.String("project", "", "comma-separated projection paths")
		groupFlag   = flag.String("group", "", "grouping path")
		aggFlag     = flag.String("agg", "count", "comma-separated aggregates: kind[:field]")
		rateFlag    = flag.String("rate", "", "comma-separated sum fields for a per-group rate")
		chunkFlag   = flag.Int("chunk", 0, "chunk size for chunked aggregation (0 = whole file)")
		joinFlag    = flag.String("join", "", "second file to hash-join against")
		onFlag      = flag.String("on", "", "join keys as leftPath=rightPath")
		modeFlag    = flag.String("mode", "inner", "join mode: inner, left, right or full")
		csvFlag     = flag.Bool("csv", false, "write flat results as CSV")
	)
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: docq [flags] <file>")
		fmt.Fprintln(os.Stderr, "example: docq -group ip_location -agg count,sum:reposts_count posts.jsonl")
		flag.PrintDefaults()
		os.Exit(1)
	}
	filename := flag.Arg(0)

	if *interactive {
		runShell(filename)
		return
	}

	query, err := parseWhere(*whereFlag)
	if err != nil {
		fatal(err)
	}

	if *groupFlag != "" {
		specs, err := parseAggSpecs(*aggFlag)
		if err != nil {
			fatal(err)
		}
		if err := runAggregate(filename, query, *groupFlag, specs, *rateFlag, *chunkFlag, *csvFlag); err != nil {
			fatal(err)
		}
		return
	}

	coll, err := loader.Load(filename)
	if err != nil {
		fatal(err)
	}
	coll = engine.Find(coll, query)

	if *joinFlag != "" {
		if err := runJoin(coll, *joinFlag, *onFlag, *modeFlag, *csvFlag); err != nil {
			fatal(err)
		}
		return
	}

	if *projectFlag != "" {
		paths := splitList(*projectFlag)
		flat := engine.Project(coll, paths)
		printFlat(flat, paths, *csvFlag)
		return
	}

	for _, d := range coll.Docs() {
		fmt.Println(d.Val.String())
	}
}

// runAggregate folds the file through the partial-aggregation merger. With
// -chunk 0 the whole file is one chunk; the merged result is identical
// either way.
func runAggregate(filename string, query engine.Query, groupPath string, specs []engine.AggSpec, rate string, chunkSize int, csv bool) error {
	// -rate needs a count and one sum per numerator; it overrides -agg.
	if rate != "" {
		specs = []engine.AggSpec{{Kind: engine.AggCount}}
		for _, f := range splitList(rate) {
			specs = append(specs, engine.AggSpec{Kind: engine.AggSum, Field: f})
		}
	}
	m := engine.NewMerger(groupPath, specs...)

	if chunkSize > 0 {
		src, closer, err := loader.OpenChunks(filename, chunkSize)
		if err != nil {
			return err
		}
		defer closer.Close()
		err = m.FoldAll(func() (*document.Collection, error) {
			c, err := src.Next()
			if err != nil || c == nil {
				return c, err
			}
			return engine.Find(c, query), nil
		})
		if err != nil {
			return err
		}
	} else {
		coll, err := loader.Load(filename)
		if err != nil {
			return err
		}
		if err := m.Fold(engine.Find(coll, query)); err != nil {
			return err
		}
	}

	if rate != "" {
		names := make([]string, 0)
		for _, f := range splitList(rate) {
			names = append(names, "sum("+f+")")
		}
		rates, err := m.Rate(names...)
		if err != nil {
			return err
		}
		printRates(rates, csv)
		return nil
	}

	results, err := m.Results()
	if err != nil {
		return err
	}
	printGroupResults(results, csv)
	return nil
}

func runJoin(left *document.Collection, rightFile, on, mode string, csv bool) error {
	leftPath, rightPath, ok := strings.Cut(on, "=")
	if !ok || leftPath == "" || rightPath == "" {
		return fmt.Errorf("join requires -on leftPath=rightPath, got %q", on)
	}
	jm, err := engine.ParseJoinMode(mode)
	if err != nil {
		return err
	}
	right, err := loader.Load(rightFile)
	if err != nil {
		return err
	}
	pairs := engine.HashJoin(left, right, leftPath, rightPath, jm)
	flat := engine.FlattenPairs(pairs)
	printFlat(flat, flat.Fields(0), csv)
	return nil
}

// parseWhere parses "path=value,path=value" filters. Values are parsed as
// JSON literals, falling back to a bare string when that fails, so -where
// 'city=NY,likes=3' means {"city": "NY", "likes": 3}.
func parseWhere(s string) (engine.Query, error) {
	if s == "" {
		return nil, nil
	}
	q := make(engine.Query)
	for _, part := range splitList(s) {
		path, raw, ok := strings.Cut(part, "=")
		if !ok || path == "" {
			return nil, fmt.Errorf("bad filter %q (want path=value)", part)
		}
		v, err := parser.Parse(raw)
		if err != nil {
			v = value.StrVal(raw)
		}
		q[path] = v
	}
	return q, nil
}

func parseAggSpecs(s string) ([]engine.AggSpec, error) {
	var specs []engine.AggSpec
	for _, part := range splitList(s) {
		kind, field, _ := strings.Cut(part, ":")
		var k engine.AggKind
		switch kind {
		case "count":
			k = engine.AggCount
		case "sum":
			k = engine.AggSum
		case "avg":
			k = engine.AggAvg
		case "max":
			k = engine.AggMax
		case "min":
			k = engine.AggMin
		default:
			return nil, fmt.Errorf("unknown aggregate %q (want count, sum, avg, max or min)", kind)
		}
		if k != engine.AggCount && field == "" {
			return nil, fmt.Errorf("aggregate %q requires a field, e.g. %s:likes", kind, kind)
		}
		specs = append(specs, engine.AggSpec{Kind: k, Field: field})
	}
	if len(specs) == 0 {
		return nil, fmt.Errorf("no aggregates given")
	}
	return specs, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
