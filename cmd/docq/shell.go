package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"

	"github.com/razeghi71/docq/document"
	"github.com/razeghi71/docq/engine"
	"github.com/razeghi71/docq/loader"
)

// session holds the shell's working state: the loaded collection, an
// optional second collection for joins, and cached join results. Loading a
// new file invalidates all of it.
type session struct {
	name    string
	base    *document.Collection
	second  *document.Collection
	joined  *document.Collection
	useJoin bool
}

func (s *session) working() *document.Collection {
	if s.useJoin && s.joined != nil {
		return s.joined
	}
	return s.base
}

func (s *session) load(filename string) error {
	c, err := loader.Load(filename)
	if err != nil {
		return err
	}
	s.base = c
	s.name = filename
	s.second = nil
	s.joined = nil
	s.useJoin = false
	return nil
}

func runShell(filename string) {
	sess := &session{}
	if err := sess.load(filename); err != nil {
		fatal(err)
	}
	fmt.Printf("loaded %d documents from %s\n", sess.base.Len(), filename)
	fmt.Println(`type "help" for commands`)

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	for {
		input, err := line.Prompt("docq> ")
		if err == liner.ErrPromptAborted || err == io.EOF {
			fmt.Println()
			return
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)
		if input == "exit" || input == "quit" {
			return
		}
		if err := sess.exec(input); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
	}
}

const shellHelp = `commands:
  load <file>                      load a new collection (resets join state)
  second <file>                    load the right-hand collection for join
  fields                           list dot-paths present in the working collection
  count                            number of documents in the working collection
  show [n]                         print the first n documents (default 5)
  find path=value [path=value...]  equality filter, prints matches
  project path [path...]           flat projection table
  agg <group-path> <kind> [field]  grouped aggregate: count, sum, avg, max, min
  join <left-path> <right-path> [mode]
                                   hash join against the second collection
  use join|base                    switch the working collection
  clear                            drop cached join results
  exit`

func (s *session) exec(input string) error {
	args := strings.Fields(input)
	cmd, args := args[0], args[1:]

	switch cmd {
	case "help":
		fmt.Println(shellHelp)
		return nil

	case "load":
		if len(args) != 1 {
			return fmt.Errorf("usage: load <file>")
		}
		if err := s.load(args[0]); err != nil {
			return err
		}
		fmt.Printf("loaded %d documents from %s\n", s.base.Len(), args[0])
		return nil

	case "second":
		if len(args) != 1 {
			return fmt.Errorf("usage: second <file>")
		}
		c, err := loader.Load(args[0])
		if err != nil {
			return err
		}
		s.second = c
		fmt.Printf("loaded %d documents from %s\n", c.Len(), args[0])
		return nil

	case "fields":
		for _, p := range s.working().Fields(100) {
			fmt.Println(p)
		}
		return nil

	case "count":
		fmt.Println(s.working().Len())
		return nil

	case "show":
		n := 5
		if len(args) == 1 {
			fmt.Sscanf(args[0], "%d", &n)
		}
		for i, d := range s.working().Docs() {
			if i >= n {
				break
			}
			fmt.Println(d.Val.String())
		}
		return nil

	case "find":
		if len(args) == 0 {
			return fmt.Errorf("usage: find path=value [path=value...]")
		}
		q, err := parseWhere(strings.Join(args, ","))
		if err != nil {
			return err
		}
		result := engine.Find(s.working(), q)
		fmt.Printf("%d documents match\n", result.Len())
		for i, d := range result.Docs() {
			if i >= 10 {
				fmt.Println("...")
				break
			}
			fmt.Println(d.Val.String())
		}
		return nil

	case "project":
		if len(args) == 0 {
			return fmt.Errorf("usage: project path [path...]")
		}
		flat := engine.Project(s.working(), args)
		printFlat(flat, args, false)
		return nil

	case "agg":
		if len(args) < 2 {
			return fmt.Errorf("usage: agg <group-path> <kind> [field]")
		}
		field := ""
		if len(args) > 2 {
			field = args[2]
		}
		r, err := reducerFor(args[1], field)
		if err != nil {
			return err
		}
		results, err := engine.Aggregate(s.working(), args[0], r)
		if err != nil {
			return err
		}
		rows := make([][]string, 0, len(results))
		for _, a := range results {
			rows = append(rows, []string{cell(a.Key), cell(a.Val)})
		}
		printTable([]string{"key", "value"}, rows)
		return nil

	case "join":
		if s.second == nil {
			return fmt.Errorf("no second collection loaded (use: second <file>)")
		}
		if len(args) < 2 {
			return fmt.Errorf("usage: join <left-path> <right-path> [mode]")
		}
		mode := engine.JoinInner
		if len(args) > 2 {
			var err error
			mode, err = engine.ParseJoinMode(args[2])
			if err != nil {
				return err
			}
		}
		pairs := engine.HashJoin(s.working(), s.second, args[0], args[1], mode)
		s.joined = engine.FlattenPairs(pairs)
		s.useJoin = true
		fmt.Printf("join produced %d pairs; working collection switched to the result\n", len(pairs))
		return nil

	case "use":
		if len(args) != 1 || (args[0] != "join" && args[0] != "base") {
			return fmt.Errorf("usage: use join|base")
		}
		if args[0] == "join" {
			if s.joined == nil {
				return fmt.Errorf("no join results cached")
			}
			s.useJoin = true
		} else {
			s.useJoin = false
		}
		return nil

	case "clear":
		s.joined = nil
		s.useJoin = false
		return nil

	default:
		return fmt.Errorf("unknown command %q (try help)", cmd)
	}
}

func reducerFor(kind, field string) (engine.Reducer, error) {
	if kind != "count" && field == "" {
		return nil, fmt.Errorf("%s requires a field", kind)
	}
	switch kind {
	case "count":
		return engine.Count(), nil
	case "sum":
		return engine.Sum(field), nil
	case "avg":
		return engine.Avg(field), nil
	case "max":
		return engine.Max(field), nil
	case "min":
		return engine.Min(field), nil
	default:
		return nil, fmt.Errorf("unknown aggregate %q (want count, sum, avg, max or min)", kind)
	}
}
