package engine

import (
	"github.com/razeghi71/docq/document"
	"github.com/razeghi71/docq/value"
)

// JoinSpec names the other collection and key paths for a pipeline's join
// stage.
type JoinSpec struct {
	Other     *document.Collection
	LeftPath  string
	RightPath string
	Mode      JoinMode
}

// PipelineSpec selects which stages of a pipeline run. Stages whose
// parameters are unset are skipped.
type PipelineSpec struct {
	Query        Query
	ProjectPaths []string
	GroupPath    string
	Reducer      Reducer
	Join         *JoinSpec
}

// Pipeline applies, in fixed order, find, project, group+aggregate, and
// join, each stage consuming the previous stage's output collection.
//
// Aggregation results are materialized as {"key", "value"} documents and
// join results as flattened pair documents, so every stage boundary is a
// collection.
func Pipeline(c *document.Collection, spec PipelineSpec) (*document.Collection, error) {
	cur := c

	if len(spec.Query) > 0 {
		cur = Find(cur, spec.Query)
	}
	if len(spec.ProjectPaths) > 0 {
		cur = Project(cur, spec.ProjectPaths)
	}
	if spec.GroupPath != "" && spec.Reducer != nil {
		results, err := Aggregate(cur, spec.GroupPath, spec.Reducer)
		if err != nil {
			return nil, err
		}
		cur = aggregatedCollection(results)
	}
	if spec.Join != nil {
		pairs := HashJoin(cur, spec.Join.Other, spec.Join.LeftPath, spec.Join.RightPath, spec.Join.Mode)
		cur = FlattenPairs(pairs)
	}
	return cur, nil
}

func aggregatedCollection(results []Aggregated) *document.Collection {
	out := document.New()
	for _, r := range results {
		obj := value.NewObject()
		key := r.Key
		if key.IsMissing() {
			key = value.Null()
		}
		obj.Set("key", key)
		obj.Set("value", r.Val)
		out.AddValue(value.ObjVal(obj))
	}
	return out
}
