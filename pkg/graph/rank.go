package graph

import (
	"sort"

	"github.com/eldarhac/GraphMind/pkg/common"
)

const (
	// MaxRanked is the number of people InfluenceRank returns.
	MaxRanked = 10
	// MaxBridges is the number of people BridgeDetect returns.
	MaxBridges = 5
	// BridgeMinDegree is the connection count from which a person counts as a bridge.
	BridgeMinDegree = 3
)

// InfluenceRank scores every person by connection count, doubled when one
// of their expertise areas mentions topic. Equal scores keep snapshot order.
func InfluenceRank(s *Snapshot, topic string) *RankResult {
	ranked := make([]RankedPerson, 0, len(s.nodes))
	for _, p := range s.nodes {
		score := s.Degree(p.ID)
		if topic != "" && hasExpertise(p, topic) {
			score *= 2
		}
		ranked = append(ranked, RankedPerson{Person: p, Score: score})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	if len(ranked) > MaxRanked {
		ranked = ranked[:MaxRanked]
	}

	return &RankResult{
		outcome:       succeeded(),
		Ranked:        ranked,
		Topic:         topic,
		TotalAnalyzed: len(s.nodes),
	}
}

func hasExpertise(p common.Person, topic string) bool {
	for _, area := range p.ExpertiseAreas {
		if containsFold(area, topic) {
			return true
		}
	}
	return false
}

// BridgeDetect returns the first people, in snapshot order, with at least
// BridgeMinDegree connections.
func BridgeDetect(s *Snapshot) *BridgeResult {
	bridges := make([]common.Person, 0, MaxBridges)
	for _, p := range s.nodes {
		if s.Degree(p.ID) < BridgeMinDegree {
			continue
		}
		bridges = append(bridges, p)
		if len(bridges) == MaxBridges {
			break
		}
	}

	res := &BridgeResult{outcome: succeeded(), Bridges: bridges}
	if len(bridges) == 0 {
		res.outcome = failed(StatusNoResults, "Nobody in the network is connected widely enough to act as a bridge.")
	}
	return res
}
