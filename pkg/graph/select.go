package graph

import (
	"fmt"
	"strings"

	"github.com/eldarhac/GraphMind/pkg/common"
)

// SelectByName returns every person whose name contains one of names,
// ignoring case, in snapshot order.
func SelectByName(s *Snapshot, names []string) *SelectResult {
	names = cleanNames(names)

	var matches []common.Person
	for _, p := range s.nodes {
		for _, n := range names {
			if containsFold(p.Name, n) {
				matches = append(matches, p)
				break
			}
		}
	}

	res := &SelectResult{outcome: succeeded(), Query: names, Matches: matches}
	if len(matches) == 0 {
		res.outcome = failed(StatusNoResults, fmt.Sprintf(
			"I've searched the network, but I could not find anyone matching the name '%s'.",
			strings.Join(names, ", "),
		))
	}
	return res
}
