package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"

	"github.com/eldarhac/GraphMind/pkg/ai"
	"github.com/eldarhac/GraphMind/pkg/logger"
	"github.com/eldarhac/GraphMind/pkg/metrics"
	"github.com/eldarhac/GraphMind/pkg/store"

	"golang.org/x/sync/errgroup"
)

// EmbeddingWorker computes profile embeddings for EmbeddingJobMsg jobs.
type EmbeddingWorker struct {
	AI        ai.GraphAIClient
	Storage   store.EmbeddingStorage
	BatchSize int
	Parallel  int
}

func (w *EmbeddingWorker) ProcessMessage(ctx context.Context, body []byte) error {
	var msg EmbeddingJobMsg
	if err := json.Unmarshal(body, &msg); err != nil {
		return fmt.Errorf("invalid embedding job: %w", err)
	}

	people, err := w.Storage.PeopleForEmbedding(ctx, msg.PersonIDs, msg.OnlyMissing)
	if err != nil {
		return err
	}
	if len(people) == 0 {
		logger.Info("[Worker] Nothing to embed", "job_id", msg.JobID)
		return nil
	}
	logger.Info("[Worker] Embedding profiles", "job_id", msg.JobID, "people", len(people))

	batchSize := w.BatchSize
	if batchSize <= 0 {
		batchSize = 32
	}

	var done atomic.Int64
	eg, ectx := errgroup.WithContext(ctx)
	eg.SetLimit(max(w.Parallel, 1))
	_ = store.ChunkRange(len(people), batchSize, func(start, end int) error {
		chunk := people[start:end]
		eg.Go(func() error {
			ids := make([]string, len(chunk))
			inputs := make([][]byte, len(chunk))
			for i, p := range chunk {
				ids[i] = p.ID
				inputs[i] = []byte(store.ProfileText(p))
			}

			embeddings, err := store.GenerateEmbeddings(ectx, w.AI, inputs, len(inputs))
			if err != nil {
				return fmt.Errorf("failed to embed profiles: %w", err)
			}
			if err := w.Storage.SaveEmbeddings(ectx, ids, embeddings); err != nil {
				return err
			}

			metrics.EmbeddedPeople.Add(float64(len(ids)))
			n := done.Add(int64(len(ids)))
			logger.Debug("[Worker] Embedded batch", "job_id", msg.JobID, "done", n, "total", len(people))
			return nil
		})
		return nil
	})
	return eg.Wait()
}
