package pgx

import (
	"context"
	"fmt"

	"github.com/eldarhac/GraphMind/pkg/common"
	"github.com/eldarhac/GraphMind/pkg/logger"

	pgxv5 "github.com/jackc/pgx/v5"
)

const personColumns = `id, name, title, company, institution, bio, expertise_areas, interests, profile_picture_url, linkedin_url`

type personRow struct {
	ID                string   `db:"id"`
	Name              string   `db:"name"`
	Title             string   `db:"title"`
	Company           string   `db:"company"`
	Institution       string   `db:"institution"`
	Bio               string   `db:"bio"`
	ExpertiseAreas    []string `db:"expertise_areas"`
	Interests         []string `db:"interests"`
	ProfilePictureURL string   `db:"profile_picture_url"`
	LinkedinURL       string   `db:"linkedin_url"`
}

func (r personRow) person() common.Person {
	return common.Person{
		ID:                r.ID,
		Name:              r.Name,
		Title:             r.Title,
		Company:           r.Company,
		Institution:       r.Institution,
		Bio:               r.Bio,
		ExpertiseAreas:    r.ExpertiseAreas,
		Interests:         r.Interests,
		ProfilePictureURL: r.ProfilePictureURL,
		LinkedinURL:       r.LinkedinURL,
	}
}

type connectionRow struct {
	ID             string  `db:"id"`
	PersonAID      string  `db:"person_a_id"`
	PersonBID      string  `db:"person_b_id"`
	ConnectionType string  `db:"connection_type"`
	Strength       float64 `db:"strength"`
	Notes          string  `db:"notes"`
}

func collectPeople(rows pgxv5.Rows) ([]common.Person, error) {
	found, err := pgxv5.CollectRows(rows, pgxv5.RowToStructByName[personRow])
	if err != nil {
		return nil, err
	}
	people := make([]common.Person, len(found))
	for i, r := range found {
		people[i] = r.person()
	}
	return people, nil
}

// LoadGraph reads all people and connections in insertion order.
func (s *GraphDBStorage) LoadGraph(ctx context.Context) (common.Graph, error) {
	rows, err := s.conn.Query(ctx, `SELECT `+personColumns+` FROM people ORDER BY seq`)
	if err != nil {
		return common.Graph{}, fmt.Errorf("failed to query people: %w", err)
	}
	people, err := collectPeople(rows)
	if err != nil {
		return common.Graph{}, fmt.Errorf("failed to read people: %w", err)
	}

	rows, err = s.conn.Query(ctx, `
		SELECT id, person_a_id, person_b_id, connection_type, strength, notes
		FROM connections
		ORDER BY seq`)
	if err != nil {
		return common.Graph{}, fmt.Errorf("failed to query connections: %w", err)
	}
	found, err := pgxv5.CollectRows(rows, pgxv5.RowToStructByName[connectionRow])
	if err != nil {
		return common.Graph{}, fmt.Errorf("failed to read connections: %w", err)
	}

	edges := make([]common.Connection, len(found))
	for i, r := range found {
		edges[i] = common.Connection{
			ID:             r.ID,
			PersonAID:      r.PersonAID,
			PersonBID:      r.PersonBID,
			ConnectionType: common.ConnectionType(r.ConnectionType),
			Strength:       r.Strength,
			Notes:          r.Notes,
		}
	}

	logger.Debug("[Store] Loaded graph", "people", len(people), "connections", len(edges))
	return common.Graph{Nodes: people, Edges: edges}, nil
}

// SaveGraph replaces all people and connections with g in one transaction.
// Embeddings of people whose profile did not change are kept.
func (s *GraphDBStorage) SaveGraph(ctx context.Context, g common.Graph) error {
	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM connections`); err != nil {
		return fmt.Errorf("failed to clear connections: %w", err)
	}

	ids := make([]string, len(g.Nodes))
	batch := &pgxv5.Batch{}
	for i, p := range g.Nodes {
		ids[i] = p.ID
		batch.Queue(`
			INSERT INTO people (`+personColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			ON CONFLICT (id) DO UPDATE SET
				name = EXCLUDED.name,
				title = EXCLUDED.title,
				company = EXCLUDED.company,
				institution = EXCLUDED.institution,
				bio = EXCLUDED.bio,
				expertise_areas = EXCLUDED.expertise_areas,
				interests = EXCLUDED.interests,
				profile_picture_url = EXCLUDED.profile_picture_url,
				linkedin_url = EXCLUDED.linkedin_url,
				embedding = CASE
					WHEN (people.name, people.title, people.company, people.institution, people.bio, people.expertise_areas, people.interests)
						IS NOT DISTINCT FROM
						(EXCLUDED.name, EXCLUDED.title, EXCLUDED.company, EXCLUDED.institution, EXCLUDED.bio, EXCLUDED.expertise_areas, EXCLUDED.interests)
					THEN people.embedding
				END,
				updated_at = now()`,
			p.ID, p.Name, p.Title, p.Company, p.Institution, p.Bio,
			nonNil(p.ExpertiseAreas), nonNil(p.Interests), p.ProfilePictureURL, p.LinkedinURL,
		)
	}
	for _, c := range g.Edges {
		batch.Queue(`
			INSERT INTO connections (id, person_a_id, person_b_id, connection_type, strength, notes)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			c.ID, c.PersonAID, c.PersonBID, string(c.ConnectionType), c.Strength, c.Notes,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to write graph: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM people WHERE NOT (id = ANY($1::text[]))`, ids); err != nil {
		return fmt.Errorf("failed to remove people: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}
	logger.Info("[Store] Saved graph", "people", len(g.Nodes), "connections", len(g.Edges))
	return nil
}

func nonNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
