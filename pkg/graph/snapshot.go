package graph

import (
	"github.com/eldarhac/GraphMind/pkg/common"
	"github.com/eldarhac/GraphMind/pkg/logger"
)

type adjacent struct {
	neighbor string
	edge     int
}

// Snapshot is an immutable, sanitized view of a common.Graph that the
// algorithms operate on. It is safe for concurrent use once built.
type Snapshot struct {
	nodes []common.Person
	edges []common.Connection
	index map[string]int
	adj   map[string][]adjacent
}

// NewSnapshot copies g, drops connections whose endpoints are not both
// present and builds the adjacency index. Later duplicates of a person id
// are ignored.
func NewSnapshot(g common.Graph) *Snapshot {
	s := &Snapshot{
		nodes: make([]common.Person, 0, len(g.Nodes)),
		edges: make([]common.Connection, 0, len(g.Edges)),
		index: make(map[string]int, len(g.Nodes)),
		adj:   make(map[string][]adjacent, len(g.Nodes)),
	}

	for _, p := range g.Nodes {
		if _, ok := s.index[p.ID]; ok {
			logger.Warn("[Graph] Duplicate person id ignored", "id", p.ID)
			continue
		}
		s.index[p.ID] = len(s.nodes)
		s.nodes = append(s.nodes, p)
	}

	dropped := 0
	for _, e := range g.Edges {
		_, okA := s.index[e.PersonAID]
		_, okB := s.index[e.PersonBID]
		if !okA || !okB {
			dropped++
			logger.Debug("[Graph] Dropping dangling connection", "id", e.ID, "a", e.PersonAID, "b", e.PersonBID)
			continue
		}

		i := len(s.edges)
		s.edges = append(s.edges, e)
		s.adj[e.PersonAID] = append(s.adj[e.PersonAID], adjacent{neighbor: e.PersonBID, edge: i})
		if e.PersonAID != e.PersonBID {
			s.adj[e.PersonBID] = append(s.adj[e.PersonBID], adjacent{neighbor: e.PersonAID, edge: i})
		}
	}
	if dropped > 0 {
		logger.Warn("[Graph] Dropped dangling connections", "count", dropped)
	}

	return s
}

// Nodes returns the people of the snapshot in their original order.
func (s *Snapshot) Nodes() []common.Person {
	return s.nodes
}

// Edges returns the sanitized connections in their original order.
func (s *Snapshot) Edges() []common.Connection {
	return s.edges
}

// Graph converts the snapshot back into a plain common.Graph.
func (s *Snapshot) Graph() common.Graph {
	return common.Graph{Nodes: s.nodes, Edges: s.edges}
}

// Person looks up a person by id.
func (s *Snapshot) Person(id string) (common.Person, bool) {
	i, ok := s.index[id]
	if !ok {
		return common.Person{}, false
	}
	return s.nodes[i], true
}

// Degree returns the number of connections touching id.
func (s *Snapshot) Degree(id string) int {
	return len(s.adj[id])
}

// Neighbors returns the ids adjacent to id, in edge order. An id reached by
// several edges appears once.
func (s *Snapshot) Neighbors(id string) []string {
	seen := make(map[string]struct{}, len(s.adj[id]))
	out := make([]string, 0, len(s.adj[id]))
	for _, a := range s.adj[id] {
		if _, ok := seen[a.neighbor]; ok {
			continue
		}
		seen[a.neighbor] = struct{}{}
		out = append(out, a.neighbor)
	}
	return out
}

// FindByName returns the first person whose name equals name, ignoring case.
func (s *Snapshot) FindByName(name string) (common.Person, bool) {
	for _, p := range s.nodes {
		if equalFold(p.Name, name) {
			return p, true
		}
	}
	return common.Person{}, false
}

// Names returns every person name in snapshot order.
func (s *Snapshot) Names() []string {
	names := make([]string, len(s.nodes))
	for i, p := range s.nodes {
		names[i] = p.Name
	}
	return names
}

// connection returns the first connection in edge order between a and b.
func (s *Snapshot) connection(a, b string) (common.Connection, bool) {
	for _, adj := range s.adj[a] {
		if adj.neighbor == b {
			return s.edges[adj.edge], true
		}
	}
	return common.Connection{}, false
}
