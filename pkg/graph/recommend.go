package graph

import "sort"

// MaxRecommendations is the number of people RecommendPeople returns.
const MaxRecommendations = 5

// RecommendPeople suggests people the given person is not yet connected to,
// ordered by how many connections they share. Equal counts keep snapshot
// order. People without any shared connection are not suggested.
func RecommendPeople(s *Snapshot, personID string) *RecommendResult {
	me, ok := s.Person(personID)
	if !ok {
		return &RecommendResult{outcome: failed(StatusEntityNotFound, "I couldn't find you in the network, so I can't recommend anyone yet.")}
	}

	direct := map[string]struct{}{me.ID: {}}
	friends := s.Neighbors(me.ID)
	for _, id := range friends {
		direct[id] = struct{}{}
	}

	mutual := make(map[string][]string)
	for _, f := range friends {
		if f == me.ID {
			continue
		}
		friend, _ := s.Person(f)
		for _, id := range s.Neighbors(f) {
			if isMember(direct, id) {
				continue
			}
			mutual[id] = append(mutual[id], friend.Name)
		}
	}

	recs := make([]Recommendation, 0, len(mutual))
	for _, p := range s.nodes {
		if names, ok := mutual[p.ID]; ok {
			recs = append(recs, Recommendation{Person: p, Mutual: names})
		}
	}
	sort.SliceStable(recs, func(i, j int) bool {
		return len(recs[i].Mutual) > len(recs[j].Mutual)
	})
	if len(recs) > MaxRecommendations {
		recs = recs[:MaxRecommendations]
	}

	res := &RecommendResult{outcome: succeeded(), For: &me, Recommendations: recs}
	if len(recs) == 0 {
		res.outcome = failed(StatusNoResults, "I don't have anyone new to recommend right now.")
	}
	return res
}
