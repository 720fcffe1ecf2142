// Package pgx implements the orchestrator collaborators that read the
// PostgreSQL store: profile similarity, profile retrieval for knowledge
// questions and text-to-SQL answers for relational questions.
package pgx

import (
	"context"
	"fmt"

	"github.com/eldarhac/GraphMind/pkg/ai"
	"github.com/eldarhac/GraphMind/pkg/common"
	"github.com/eldarhac/GraphMind/pkg/store"
)

// SimilarityService finds people with similar profiles by embedding
// distance.
type SimilarityService struct {
	storage store.EmbeddingStorage
}

func NewSimilarityService(s store.EmbeddingStorage) *SimilarityService {
	return &SimilarityService{storage: s}
}

func (s *SimilarityService) FindSimilar(ctx context.Context, personID string, count int) ([]common.Person, error) {
	if count <= 0 {
		return nil, nil
	}
	people, err := s.storage.SimilarPeople(ctx, personID, count)
	if err != nil {
		return nil, fmt.Errorf("similar people of %s: %w", personID, err)
	}
	return people, nil
}

// EmbeddingSearcher retrieves the profiles closest to a question.
type EmbeddingSearcher struct {
	aiClient ai.GraphAIClient
	storage  store.EmbeddingStorage
}

func NewEmbeddingSearcher(aiC ai.GraphAIClient, s store.EmbeddingStorage) *EmbeddingSearcher {
	return &EmbeddingSearcher{aiClient: aiC, storage: s}
}

func (s *EmbeddingSearcher) SearchProfiles(ctx context.Context, question string, limit int) ([]common.Person, error) {
	embedding, err := s.aiClient.GenerateEmbedding(ctx, []byte(question))
	if err != nil {
		return nil, fmt.Errorf("failed to embed question: %w", err)
	}
	return s.storage.SearchPeople(ctx, embedding, limit)
}
