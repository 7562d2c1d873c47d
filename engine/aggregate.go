package engine

import (
	"fmt"

	"github.com/razeghi71/docq/document"
	"github.com/razeghi71/docq/value"
)

// EmptyAggregationError reports a max or min over a group with zero numeric
// observations. There is no identity element for an extremum, so the call
// fails rather than defaulting.
type EmptyAggregationError struct {
	Op    string
	Field string
}

func (e *EmptyAggregationError) Error() string {
	return fmt.Sprintf("%s(%s): no numeric values in group", e.Op, e.Field)
}

// Reducer folds an ordered sequence of documents into one scalar value. The
// same reducer is used for single-shot and per-chunk aggregation.
type Reducer func(docs []document.Document) (value.Value, error)

// Aggregated is one group's aggregation result.
type Aggregated struct {
	Key value.Value
	Val value.Value
}

// Aggregate groups the collection by path and applies the reducer to each
// group, in group order. If a reducer fails, the groups already computed are
// returned alongside the error; failure isolation is at the operation, not
// the pipeline.
func Aggregate(c *document.Collection, path string, r Reducer) ([]Aggregated, error) {
	var out []Aggregated
	for _, g := range GroupBy(c, path) {
		v, err := r(g.Docs.Docs())
		if err != nil {
			return out, err
		}
		out = append(out, Aggregated{Key: g.Key, Val: v})
	}
	return out, nil
}

// Count reduces a group to its size, regardless of field presence.
func Count() Reducer {
	return func(docs []document.Document) (value.Value, error) {
		return value.IntVal(int64(len(docs))), nil
	}
}

// Sum reduces a group to the sum of numeric values at field. A document
// where the field is absent or non-numeric contributes zero: absence is
// treated as zero, not excluded. The result stays integer-typed while every
// contribution is an integer.
func Sum(field string) Reducer {
	return func(docs []document.Document) (value.Value, error) {
		var intSum int64
		var floatSum float64
		allInt := true
		for _, d := range docs {
			v := document.Extract(d.Val, field)
			switch v.Type {
			case value.TypeInt:
				intSum += v.Int
				floatSum += float64(v.Int)
			case value.TypeFloat:
				floatSum += v.Float
				allInt = false
			}
		}
		if allInt {
			return value.IntVal(intSum), nil
		}
		return value.FloatVal(floatSum), nil
	}
}

// Avg reduces a group to its zero-filled numeric sum at field divided by the
// group size. An empty group yields the Missing marker rather than a
// division.
func Avg(field string) Reducer {
	sum := Sum(field)
	return func(docs []document.Document) (value.Value, error) {
		if len(docs) == 0 {
			return value.Missing(), nil
		}
		s, err := sum(docs)
		if err != nil {
			return value.Value{}, err
		}
		f, _ := s.AsFloat()
		return value.FloatVal(f / float64(len(docs))), nil
	}
}

// Max reduces a group to the largest numeric value at field. It fails with
// an EmptyAggregationError when no document has a numeric value there.
func Max(field string) Reducer {
	return extremum("max", field, func(candidate, best float64) bool { return candidate > best })
}

// Min reduces a group to the smallest numeric value at field. It fails with
// an EmptyAggregationError when no document has a numeric value there.
func Min(field string) Reducer {
	return extremum("min", field, func(candidate, best float64) bool { return candidate < best })
}

func extremum(op, field string, better func(candidate, best float64) bool) Reducer {
	return func(docs []document.Document) (value.Value, error) {
		var best value.Value
		var bestF float64
		seen := false
		for _, d := range docs {
			v := document.Extract(d.Val, field)
			f, ok := v.AsFloat()
			if !ok {
				continue
			}
			if !seen || better(f, bestF) {
				best = v
				bestF = f
				seen = true
			}
		}
		if !seen {
			return value.Value{}, &EmptyAggregationError{Op: op, Field: field}
		}
		return best, nil
	}
}
