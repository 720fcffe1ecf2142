package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/eldarhac/GraphMind/pkg/logger"
	"github.com/eldarhac/GraphMind/pkg/store"
)

const DefaultSnapshotPrefix = "snapshots/latest"

// SnapshotExporter writes the stored network to an object store.
type SnapshotExporter struct {
	Source store.GraphStorage
	// Target returns the writer for a key prefix.
	Target func(prefix string) store.GraphWriter
}

func (e *SnapshotExporter) ProcessMessage(ctx context.Context, body []byte) error {
	var msg SnapshotExportMsg
	if err := json.Unmarshal(body, &msg); err != nil {
		return fmt.Errorf("invalid snapshot export job: %w", err)
	}
	prefix := msg.Prefix
	if prefix == "" {
		prefix = DefaultSnapshotPrefix
	}

	g, err := e.Source.LoadGraph(ctx)
	if err != nil {
		return fmt.Errorf("failed to load graph: %w", err)
	}
	if err := e.Target(prefix).SaveGraph(ctx, g); err != nil {
		return err
	}

	logger.Info("[Worker] Exported snapshot", "job_id", msg.JobID, "prefix", prefix, "people", len(g.Nodes), "connections", len(g.Edges))
	return nil
}
