package graph

import (
	"fmt"

	"github.com/eldarhac/GraphMind/pkg/common"
	"github.com/eldarhac/GraphMind/pkg/logger"
)

const (
	msgNeedTwoNames = "I need two people's names to find a path. Please try again."
	msgNoPath       = "No path found between the specified individuals."
)

// ShortestPath finds a minimum-hop chain of connections between the first
// two names. Neighbours are explored in edge order and the first discovery
// of a node wins, so the returned path is deterministic for a snapshot.
func ShortestPath(s *Snapshot, names []string) *PathResult {
	names = cleanNames(names)
	if len(names) < 2 {
		return failedPath(StatusInsufficientEntities, msgNeedTwoNames)
	}

	start, ok := s.FindByName(names[0])
	if !ok {
		return failedPath(StatusEntityNotFound, notFound(names[0]))
	}
	end, ok := s.FindByName(names[1])
	if !ok {
		return failedPath(StatusEntityNotFound, notFound(names[1]))
	}

	path := bfs(s, start.ID, end.ID)
	if path == nil {
		return failedPath(StatusNoPath, msgNoPath)
	}

	return realizePath(s, path, start.Name, end.Name)
}

// failedPath carries empty, non-nil slices so a failed result still
// serializes an empty path.
func failedPath(status Status, msg string) *PathResult {
	return &PathResult{
		outcome: failed(status, msg),
		Path:    []string{},
		Nodes:   []common.Person{},
		Edges:   []common.Connection{},
	}
}

func notFound(name string) string {
	return fmt.Sprintf("Could not find \"%s\" in the network.", name)
}

func bfs(s *Snapshot, from, to string) []string {
	if from == to {
		return []string{from}
	}

	parent := map[string]string{from: ""}
	queue := []string{from}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, a := range s.adj[current] {
			if _, seen := parent[a.neighbor]; seen {
				continue
			}
			parent[a.neighbor] = current
			if a.neighbor == to {
				return unwind(parent, from, to)
			}
			queue = append(queue, a.neighbor)
		}
	}

	return nil
}

func unwind(parent map[string]string, from, to string) []string {
	var path []string
	for id := to; ; id = parent[id] {
		path = append(path, id)
		if id == from {
			break
		}
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// realizePath turns an id path into people and connections and checks that
// every hop is backed by the snapshot.
func realizePath(s *Snapshot, path []string, startName, endName string) *PathResult {
	nodes := make([]common.Person, 0, len(path))
	for _, id := range path {
		if p, ok := s.Person(id); ok {
			nodes = append(nodes, p)
		}
	}

	edges := make([]common.Connection, 0, len(path))
	for i := 0; i+1 < len(path); i++ {
		if c, ok := s.connection(path[i], path[i+1]); ok {
			edges = append(edges, c)
		}
	}

	if len(nodes) != len(path) || len(edges) != len(path)-1 {
		logger.Error("[Graph] Path does not match snapshot", "path", path, "nodes", len(nodes), "edges", len(edges))
		return failedPath(
			StatusDataInconsistent,
			fmt.Sprintf("I found a route between %s and %s, but the network data behind it is inconsistent, so I can't show it reliably.", startName, endName),
		)
	}

	return &PathResult{
		outcome:  succeeded(),
		Path:     path,
		Distance: len(path) - 1,
		Nodes:    nodes,
		Edges:    edges,
	}
}
