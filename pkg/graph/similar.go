package graph

import (
	"context"
	"fmt"

	"github.com/eldarhac/GraphMind/pkg/common"
)

const (
	// MaxSimilar is the number of candidates FindSimilar returns.
	MaxSimilar = 5
	// PotentialSeedCount is how many similar people seed PotentialConnections.
	PotentialSeedCount = 3
	// MaxPotential is the number of candidates PotentialConnections returns.
	MaxPotential = 5
)

// Similarity finds people whose profiles resemble the given person.
type Similarity interface {
	FindSimilar(ctx context.Context, personID string, count int) ([]common.Person, error)
}

// FindSimilar asks sim for people resembling the first name and maps them
// onto snapshot nodes. Only an error from sim is returned as an error.
func FindSimilar(ctx context.Context, s *Snapshot, sim Similarity, names []string) (*SimilarResult, error) {
	names = cleanNames(names)
	if len(names) == 0 {
		return &SimilarResult{outcome: failed(StatusInsufficientEntities, "Tell me who you'd like to find similar people for.")}, nil
	}

	target, ok := s.FindByName(names[0])
	if !ok {
		return &SimilarResult{outcome: failed(StatusEntityNotFound, notFound(names[0]))}, nil
	}

	candidates, err := similarInSnapshot(ctx, s, sim, target, MaxSimilar)
	if err != nil {
		return nil, err
	}

	res := &SimilarResult{outcome: succeeded(), Target: &target, Candidates: candidates}
	if len(candidates) == 0 {
		res.outcome = failed(StatusNoResults, fmt.Sprintf("I couldn't find anyone similar to %s.", target.Name))
	}
	return res, nil
}

// PotentialConnections suggests people two hops away from target: they are
// connected to someone similar to target, yet neither know target directly
// nor belong to the similar set.
func PotentialConnections(ctx context.Context, s *Snapshot, sim Similarity, name string) (*PotentialResult, error) {
	target, ok := s.FindByName(name)
	if !ok {
		return &PotentialResult{outcome: failed(StatusEntityNotFound, notFound(name))}, nil
	}

	similar, err := similarInSnapshot(ctx, s, sim, target, PotentialSeedCount)
	if err != nil {
		return nil, err
	}
	if len(similar) == 0 {
		return &PotentialResult{
			outcome: failed(StatusNoResults, fmt.Sprintf("I couldn't find anyone similar to %s to base suggestions on.", target.Name)),
			Target:  &target,
		}, nil
	}

	excluded := map[string]struct{}{target.ID: {}}
	for _, id := range s.Neighbors(target.ID) {
		excluded[id] = struct{}{}
	}
	seeds := make(map[string]struct{}, len(similar))
	for _, p := range similar {
		seeds[p.ID] = struct{}{}
		excluded[p.ID] = struct{}{}
	}

	var candidates []common.Person
	var via []common.Connection
	for _, e := range s.edges {
		if len(candidates) == MaxPotential {
			break
		}
		var other string
		switch {
		case isMember(seeds, e.PersonAID):
			other = e.PersonBID
		case isMember(seeds, e.PersonBID):
			other = e.PersonAID
		default:
			continue
		}
		if isMember(excluded, other) {
			continue
		}
		excluded[other] = struct{}{}
		p, _ := s.Person(other)
		candidates = append(candidates, p)
		via = append(via, e)
	}

	res := &PotentialResult{
		outcome:    succeeded(),
		Target:     &target,
		Similar:    similar,
		Candidates: candidates,
		Via:        via,
	}
	if len(candidates) == 0 {
		res.outcome = failed(StatusNoResults, fmt.Sprintf("I couldn't find new people for %s to connect with right now.", target.Name))
	}
	return res, nil
}

func similarInSnapshot(ctx context.Context, s *Snapshot, sim Similarity, target common.Person, count int) ([]common.Person, error) {
	found, err := sim.FindSimilar(ctx, target.ID, count)
	if err != nil {
		return nil, fmt.Errorf("find people similar to %s: %w", target.ID, err)
	}

	seen := map[string]struct{}{target.ID: {}}
	out := make([]common.Person, 0, count)
	for _, f := range found {
		if len(out) == count {
			break
		}
		if isMember(seen, f.ID) {
			continue
		}
		p, ok := s.Person(f.ID)
		if !ok {
			continue
		}
		seen[p.ID] = struct{}{}
		out = append(out, p)
	}
	return out, nil
}

func isMember(set map[string]struct{}, id string) bool {
	_, ok := set[id]
	return ok
}
