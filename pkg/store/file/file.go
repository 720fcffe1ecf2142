// Package file stores the network as two JSON documents, Person.json and
// Connection.json, in an object store.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"path"

	"github.com/eldarhac/GraphMind/pkg/common"
	"github.com/eldarhac/GraphMind/pkg/logger"
)

const (
	PeopleObject      = "Person.json"
	ConnectionsObject = "Connection.json"
)

// ObjectStore reads and writes whole objects by key.
type ObjectStore interface {
	GetObject(ctx context.Context, key string) ([]byte, error)
	PutObject(ctx context.Context, key string, data []byte) error
}

// GraphFileStorage implements store.GraphStorage and store.GraphWriter on
// top of an ObjectStore.
type GraphFileStorage struct {
	objects ObjectStore
	prefix  string
}

// NewGraphFileStorage reads and writes the documents below prefix.
func NewGraphFileStorage(objects ObjectStore, prefix string) *GraphFileStorage {
	return &GraphFileStorage{objects: objects, prefix: prefix}
}

func (s *GraphFileStorage) key(name string) string {
	if s.prefix == "" {
		return name
	}
	return path.Join(s.prefix, name)
}

func (s *GraphFileStorage) LoadGraph(ctx context.Context) (common.Graph, error) {
	var g common.Graph

	raw, err := s.objects.GetObject(ctx, s.key(PeopleObject))
	if err != nil {
		return g, fmt.Errorf("failed to read %s: %w", PeopleObject, err)
	}
	if err := json.Unmarshal(raw, &g.Nodes); err != nil {
		return g, fmt.Errorf("failed to decode %s: %w", PeopleObject, err)
	}

	raw, err = s.objects.GetObject(ctx, s.key(ConnectionsObject))
	if err != nil {
		return g, fmt.Errorf("failed to read %s: %w", ConnectionsObject, err)
	}
	if err := json.Unmarshal(raw, &g.Edges); err != nil {
		return g, fmt.Errorf("failed to decode %s: %w", ConnectionsObject, err)
	}

	logger.Debug("[Store] Loaded graph from objects", "prefix", s.prefix, "people", len(g.Nodes), "connections", len(g.Edges))
	return g, nil
}

// SaveGraph writes people first, so a reader never sees connections to
// people that were not written yet.
func (s *GraphFileStorage) SaveGraph(ctx context.Context, g common.Graph) error {
	people := g.Nodes
	if people == nil {
		people = []common.Person{}
	}
	edges := g.Edges
	if edges == nil {
		edges = []common.Connection{}
	}

	raw, err := json.MarshalIndent(people, "", "  ")
	if err != nil {
		return err
	}
	if err := s.objects.PutObject(ctx, s.key(PeopleObject), raw); err != nil {
		return fmt.Errorf("failed to write %s: %w", PeopleObject, err)
	}

	raw, err = json.MarshalIndent(edges, "", "  ")
	if err != nil {
		return err
	}
	if err := s.objects.PutObject(ctx, s.key(ConnectionsObject), raw); err != nil {
		return fmt.Errorf("failed to write %s: %w", ConnectionsObject, err)
	}
	return nil
}
