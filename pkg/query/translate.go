package query

import (
	"github.com/eldarhac/GraphMind/pkg/common"
	"github.com/eldarhac/GraphMind/pkg/graph"
)

// highlightedRanks is how many ranked people are highlighted on the graph.
const highlightedRanks = 5

func noAction() *VisualizationAction {
	return &VisualizationAction{Kind: ActionNone, NodeIDs: []string{}, EdgeIDs: []string{}}
}

func highlightNodes(nodeIDs []string, edgeIDs []string) *VisualizationAction {
	if edgeIDs == nil {
		edgeIDs = []string{}
	}
	if len(nodeIDs) == 0 {
		return noAction()
	}
	return &VisualizationAction{Kind: ActionHighlightNodes, NodeIDs: nodeIDs, EdgeIDs: edgeIDs}
}

// Translate maps an operation result onto a visualization directive. Every
// result, including a nil one, yields an action.
func Translate(res graph.Result) *VisualizationAction {
	switch r := res.(type) {
	case *graph.PathResult:
		if len(r.Path) == 0 {
			return noAction()
		}
		return &VisualizationAction{
			Kind:    ActionHighlightPath,
			NodeIDs: append([]string(nil), r.Path...),
			EdgeIDs: connectionIDs(r.Edges),
		}
	case *graph.RankResult:
		ids := make([]string, 0, highlightedRanks)
		for i, rp := range r.Ranked {
			if i == highlightedRanks {
				break
			}
			ids = append(ids, rp.Person.ID)
		}
		return highlightNodes(ids, nil)
	case *graph.RecommendResult:
		ids := make([]string, 0, len(r.Recommendations))
		for _, rec := range r.Recommendations {
			ids = append(ids, rec.Person.ID)
		}
		return highlightNodes(ids, nil)
	case *graph.SimilarResult:
		if r.Target == nil || len(r.Candidates) == 0 {
			return noAction()
		}
		return highlightNodes(append([]string{r.Target.ID}, personIDs(r.Candidates)...), nil)
	case *graph.BridgeResult:
		return highlightNodes(personIDs(r.Bridges), nil)
	case *graph.PotentialResult:
		if r.Target == nil || len(r.Candidates) == 0 {
			return noAction()
		}
		ids := []string{r.Target.ID}
		ids = append(ids, personIDs(r.Similar)...)
		ids = append(ids, personIDs(r.Candidates)...)
		return highlightNodes(ids, connectionIDs(r.Via))
	case *graph.SelectResult:
		return highlightNodes(personIDs(r.Matches), nil)
	case *graph.EmptyResult:
		return noAction()
	default:
		return noAction()
	}
}

func personIDs(people []common.Person) []string {
	ids := make([]string, len(people))
	for i, p := range people {
		ids[i] = p.ID
	}
	return ids
}

func connectionIDs(conns []common.Connection) []string {
	ids := make([]string, len(conns))
	for i, c := range conns {
		ids[i] = c.ID
	}
	return ids
}
