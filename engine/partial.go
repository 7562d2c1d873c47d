package engine

import (
	"errors"
	"fmt"

	"github.com/razeghi71/docq/document"
	"github.com/razeghi71/docq/value"
)

// AggKind identifies a mergeable aggregate.
type AggKind int

const (
	AggCount AggKind = iota
	AggSum
	AggAvg
	AggMax
	AggMin
)

var aggKindNames = map[AggKind]string{
	AggCount: "count", AggSum: "sum", AggAvg: "avg", AggMax: "max", AggMin: "min",
}

func (k AggKind) String() string {
	if s, ok := aggKindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("AggKind(%d)", int(k))
}

// AggSpec names one aggregate a Merger maintains. Field is ignored for
// AggCount. An empty Name defaults to "count" or "kind(field)".
type AggSpec struct {
	Name  string
	Kind  AggKind
	Field string
}

func (s AggSpec) name() string {
	if s.Name != "" {
		return s.Name
	}
	if s.Kind == AggCount {
		return "count"
	}
	return fmt.Sprintf("%s(%s)", s.Kind, s.Field)
}

// accum is the running per-group, per-spec state. Sums and counts merge by
// addition, extrema by comparison, averages as a (mean, weight) pair that is
// never materialized as a ratio until finalization.
type accum struct {
	count    int64
	sumInt   int64
	sumFloat float64
	allInt   bool
	avg      float64
	ext      value.Value
	seen     bool
}

// Merger folds per-chunk grouped aggregates into a running global result.
// All chunks must use the same grouping path and aggregate specs, which the
// Merger owns, so a merged state is always internally consistent. The merge
// operators are associative and commutative: for a fixed dataset the final
// result is identical for any chunk size >= 1.
type Merger struct {
	groupPath string
	specs     []AggSpec
	order     []string
	keys      map[string]value.Value
	states    map[string][]accum
}

// NewMerger creates a Merger grouping by groupPath and maintaining the given
// aggregates.
func NewMerger(groupPath string, specs ...AggSpec) *Merger {
	return &Merger{
		groupPath: groupPath,
		specs:     specs,
		keys:      make(map[string]value.Value),
		states:    make(map[string][]accum),
	}
}

// Fold aggregates one chunk and merges its grouped partial results into the
// running global state. Chunks must arrive in source order for group
// ordering to be deterministic, though the merged totals do not depend on
// it.
func (m *Merger) Fold(c *document.Collection) error {
	for _, g := range GroupBy(c, m.groupPath) {
		ck := canonicalKey(g.Key)
		st, ok := m.states[ck]
		if !ok {
			st = make([]accum, len(m.specs))
			for i := range st {
				st[i].allInt = true
			}
			m.states[ck] = st
			m.keys[ck] = g.Key
			m.order = append(m.order, ck)
		}
		docs := g.Docs.Docs()
		for i, spec := range m.specs {
			if err := mergeChunk(&st[i], spec, docs); err != nil {
				return fmt.Errorf("merge %s: %w", spec.name(), err)
			}
		}
	}
	return nil
}

// FoldAll drains a chunk sequence, folding every collection until next
// returns a nil collection or an error.
func (m *Merger) FoldAll(next func() (*document.Collection, error)) error {
	for {
		c, err := next()
		if err != nil {
			return err
		}
		if c == nil {
			return nil
		}
		if err := m.Fold(c); err != nil {
			return err
		}
	}
}

func mergeChunk(a *accum, spec AggSpec, docs []document.Document) error {
	switch spec.Kind {
	case AggCount:
		a.count += int64(len(docs))

	case AggSum:
		v, err := Sum(spec.Field)(docs)
		if err != nil {
			return err
		}
		mergeSum(a, v)

	case AggAvg:
		// Weighted-average merge: (a1*n1 + a2*n2) / (n1+n2), carrying the
		// combined weight forward.
		if len(docs) == 0 {
			return nil
		}
		v, err := Avg(spec.Field)(docs)
		if err != nil {
			return err
		}
		chunkAvg, _ := v.AsFloat()
		chunkN := int64(len(docs))
		total := a.count + chunkN
		a.avg = (a.avg*float64(a.count) + chunkAvg*float64(chunkN)) / float64(total)
		a.count = total

	case AggMax, AggMin:
		red := Max(spec.Field)
		better := func(c, b float64) bool { return c > b }
		if spec.Kind == AggMin {
			red = Min(spec.Field)
			better = func(c, b float64) bool { return c < b }
		}
		v, err := red(docs)
		if err != nil {
			// A chunk with no numeric observations for this group is a
			// no-op merge, not a failure; emptiness only matters globally.
			var empty *EmptyAggregationError
			if errors.As(err, &empty) {
				return nil
			}
			return err
		}
		mergeExtremum(a, v, better)

	default:
		return fmt.Errorf("unknown aggregate kind %v", spec.Kind)
	}
	return nil
}

func mergeSum(a *accum, v value.Value) {
	f, _ := v.AsFloat()
	a.sumFloat += f
	if v.Type == value.TypeInt {
		a.sumInt += v.Int
	} else {
		a.allInt = false
	}
}

func mergeExtremum(a *accum, v value.Value, better func(candidate, best float64) bool) {
	f, _ := v.AsFloat()
	if !a.seen {
		a.ext = v
		a.seen = true
		return
	}
	bf, _ := a.ext.AsFloat()
	if better(f, bf) {
		a.ext = v
	}
}

// GroupResult is one group's fully merged aggregates, keyed by spec name in
// spec order.
type GroupResult struct {
	Key    value.Value
	Values *value.Object
}

// Results finalizes the merged state. Derived scalars are computed once,
// from fully merged totals. A max or min whose group never produced a
// numeric observation fails with an EmptyAggregationError; results for the
// groups finalized before the failure are returned alongside it.
func (m *Merger) Results() ([]GroupResult, error) {
	var out []GroupResult
	for _, ck := range m.order {
		st := m.states[ck]
		vals := value.NewObject()
		for i, spec := range m.specs {
			a := st[i]
			switch spec.Kind {
			case AggCount:
				vals.Set(spec.name(), value.IntVal(a.count))
			case AggSum:
				if a.allInt {
					vals.Set(spec.name(), value.IntVal(a.sumInt))
				} else {
					vals.Set(spec.name(), value.FloatVal(a.sumFloat))
				}
			case AggAvg:
				if a.count == 0 {
					vals.Set(spec.name(), value.Missing())
				} else {
					vals.Set(spec.name(), value.FloatVal(a.avg))
				}
			case AggMax, AggMin:
				if !a.seen {
					return out, &EmptyAggregationError{Op: spec.Kind.String(), Field: spec.Field}
				}
				vals.Set(spec.name(), a.ext)
			}
		}
		out = append(out, GroupResult{Key: m.keys[ck], Values: vals})
	}
	return out, nil
}

// GroupRate is a per-group ratio of merged sums to merged count.
type GroupRate struct {
	Key   value.Value
	Count int64
	Rate  float64
}

// Rate computes, per group, the sum of the named sum-aggregates divided by
// the group's merged count. It requires the Merger to maintain a count spec
// and sum specs with the given names. A zero count yields a zero rate.
func (m *Merger) Rate(numerators ...string) ([]GroupRate, error) {
	countIdx := -1
	for i, spec := range m.specs {
		if spec.Kind == AggCount {
			countIdx = i
			break
		}
	}
	if countIdx < 0 {
		return nil, errors.New("rate: merger has no count aggregate")
	}
	numIdx := make([]int, 0, len(numerators))
	for _, name := range numerators {
		found := -1
		for i, spec := range m.specs {
			if spec.Kind == AggSum && spec.name() == name {
				found = i
				break
			}
		}
		if found < 0 {
			return nil, fmt.Errorf("rate: no sum aggregate named %q", name)
		}
		numIdx = append(numIdx, found)
	}

	var out []GroupRate
	for _, ck := range m.order {
		st := m.states[ck]
		count := st[countIdx].count
		var total float64
		for _, i := range numIdx {
			total += st[i].sumFloat
		}
		rate := 0.0
		if count > 0 {
			rate = total / float64(count)
		}
		out = append(out, GroupRate{Key: m.keys[ck], Count: count, Rate: rate})
	}
	return out, nil
}
