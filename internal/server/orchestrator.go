package server

import (
	"context"
	"time"

	"github.com/eldarhac/GraphMind/internal/queue"
	"github.com/eldarhac/GraphMind/internal/snapshot"
	"github.com/eldarhac/GraphMind/internal/storage"
	"github.com/eldarhac/GraphMind/internal/util"
	"github.com/eldarhac/GraphMind/pkg/ai"
	"github.com/eldarhac/GraphMind/pkg/cache"
	"github.com/eldarhac/GraphMind/pkg/logger"
	"github.com/eldarhac/GraphMind/pkg/query"
	bqc "github.com/eldarhac/GraphMind/pkg/query/base"
	pqc "github.com/eldarhac/GraphMind/pkg/query/pgx"
	"github.com/eldarhac/GraphMind/pkg/store"
	"github.com/eldarhac/GraphMind/pkg/store/file"
	pgxstore "github.com/eldarhac/GraphMind/pkg/store/pgx"
)

// snapshotSource picks where the network is read from. SNAPSHOT_SOURCE is
// "postgres" (default) or "s3".
func snapshotSource(ctx context.Context, db *pgxstore.GraphDBStorage) (store.GraphStorage, error) {
	switch source := util.GetEnvString("SNAPSHOT_SOURCE", "postgres"); source {
	case "s3":
		objects, err := storage.NewS3StoreFromEnv(ctx)
		if err != nil {
			return nil, err
		}
		prefix := util.GetEnvString("SNAPSHOT_PREFIX", queue.DefaultSnapshotPrefix)
		logger.Info("[Server] Reading snapshots from S3", "prefix", prefix)
		return file.NewGraphFileStorage(objects, prefix), nil
	default:
		if source != "postgres" {
			logger.Warn("[Server] Unknown SNAPSHOT_SOURCE, using postgres", "source", source)
		}
		return db, nil
	}
}

// newOrchestrator wires the model client and the store into the query
// orchestrator. Free-text answers and delegate answers share one response
// cache.
func newOrchestrator(
	aiClient ai.GraphAIClient,
	db *pgxstore.GraphDBStorage,
	snapshots *snapshot.Provider,
	responses cache.Cache[string],
) *query.Orchestrator {
	ttl := util.GetEnvDuration("LLM_CACHE_TTL", query.DefaultCacheTTL)

	opts := []bqc.QueryOption{}
	if model := util.GetEnv("AI_CHAT_MODEL"); model != "" {
		opts = append(opts, bqc.WithModel(model))
	}
	if window := util.GetEnvNumeric("CHAT_HISTORY_WINDOW", 0); window > 0 {
		opts = append(opts, bqc.WithHistoryWindow(window))
	}
	client := bqc.NewQueryClient(aiClient, opts...)

	var searcher bqc.ProfileSearcher = pqc.NewEmbeddingSearcher(aiClient, db)
	if util.GetEnvString("KNOWLEDGE_SEARCH", "embedding") == "keyword" {
		searcher = bqc.SnapshotSearcher{Graph: snapshots.Get}
	}
	knowledge := bqc.NewKnowledgeDelegate(client, searcher, util.GetEnvNumeric("KNOWLEDGE_PROFILES", 0))
	relational := pqc.NewRelationalDelegate(aiClient, db, util.GetEnvNumeric("SQL_MAX_ROWS", 0))

	return query.NewOrchestrator(
		query.Collaborators{
			Classifier: client,
			Extractor:  client,
			Similarity: pqc.NewSimilarityService(db),
			Generator:  query.NewCachedGenerator(client, responses, ttl),
			Relational: query.NewCachedDelegate("relational", relational, responses, ttl),
			Knowledge:  query.NewCachedDelegate("knowledge", knowledge, responses, ttl),
		},
		query.WithTracer(query.MultiTracer{query.MetricsTracer{}, query.LogTracer{}}),
		query.WithKnownNameLimit(util.GetEnvNumeric("KNOWN_NAME_LIMIT", 0)),
		query.WithApology(util.GetEnv("APOLOGY_MESSAGE")),
	)
}

// sweepCache drops expired responses until ctx is done.
func sweepCache(ctx context.Context, c *cache.Memory[string], every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := c.Sweep(); n > 0 {
				logger.Debug("[Cache] Swept expired responses", "count", n)
			}
		}
	}
}
