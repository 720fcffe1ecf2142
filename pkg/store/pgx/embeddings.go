package pgx

import (
	"context"
	"fmt"

	"github.com/eldarhac/GraphMind/pkg/common"

	"github.com/pgvector/pgvector-go"
)

func (s *GraphDBStorage) PeopleForEmbedding(ctx context.Context, ids []string, onlyMissing bool) ([]common.Person, error) {
	var filter []string
	if len(ids) > 0 {
		filter = ids
	}
	rows, err := s.conn.Query(ctx, `
		SELECT `+personColumns+`
		FROM people
		WHERE ($1::text[] IS NULL OR id = ANY($1::text[]))
		  AND (NOT $2 OR embedding IS NULL)
		ORDER BY seq`,
		filter, onlyMissing,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query people for embedding: %w", err)
	}
	return collectPeople(rows)
}

func (s *GraphDBStorage) SaveEmbeddings(ctx context.Context, ids []string, embeddings [][]float32) error {
	if len(ids) != len(embeddings) {
		return fmt.Errorf("got %d ids and %d embeddings", len(ids), len(embeddings))
	}
	if len(ids) == 0 {
		return nil
	}

	vectors := make([]pgvector.Vector, len(embeddings))
	for i, e := range embeddings {
		vectors[i] = pgvector.NewVector(e)
	}

	_, err := s.conn.Exec(ctx, `
		UPDATE people AS p
		SET embedding = u.embedding, embedding_updated_at = now()
		FROM unnest($1::text[], $2::vector[]) AS u(id, embedding)
		WHERE p.id = u.id`,
		ids, vectors,
	)
	if err != nil {
		return fmt.Errorf("failed to save embeddings: %w", err)
	}
	return nil
}

func (s *GraphDBStorage) SimilarPeople(ctx context.Context, personID string, limit int) ([]common.Person, error) {
	rows, err := s.conn.Query(ctx, `
		WITH target AS (
			SELECT embedding FROM people WHERE id = $1 AND embedding IS NOT NULL
		)
		SELECT p.id, p.name, p.title, p.company, p.institution, p.bio,
		       p.expertise_areas, p.interests, p.profile_picture_url, p.linkedin_url
		FROM people p, target t
		WHERE p.id <> $1 AND p.embedding IS NOT NULL
		ORDER BY p.embedding <=> t.embedding, p.seq
		LIMIT $2`,
		personID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query similar people: %w", err)
	}
	return collectPeople(rows)
}

func (s *GraphDBStorage) SearchPeople(ctx context.Context, embedding []float32, limit int) ([]common.Person, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT `+personColumns+`
		FROM people
		WHERE embedding IS NOT NULL
		ORDER BY embedding <=> $1, seq
		LIMIT $2`,
		pgvector.NewVector(embedding), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search people: %w", err)
	}
	return collectPeople(rows)
}
