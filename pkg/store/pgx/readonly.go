package pgx

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/eldarhac/GraphMind/pkg/logger"

	pgxv5 "github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"
)

// ErrUnsafeQuery is returned for SQL that is not a single SELECT statement.
var ErrUnsafeQuery = errors.New("only a single SELECT statement is allowed")

const schema = `
people(
  id text primary key,
  name text,
  title text,
  company text,
  institution text,
  bio text,
  expertise_areas text[],
  interests text[],
  profile_picture_url text,
  linkedin_url text
)
connections(
  id text primary key,
  person_a_id text, -- people.id
  person_b_id text, -- people.id
  connection_type text, -- 'WORK' or 'STUDY'
  strength double precision,
  notes text
)
`

var (
	leadingKeyword = regexp.MustCompile(`(?i)^(select|with)\b`)
	stringLiteral  = regexp.MustCompile(`'(?:[^']|'')*'`)
	word           = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_$]*`)
	relationRef    = regexp.MustCompile(`(?i)\b(?:from|join)\s+("?[a-z_][a-z0-9_$]*"?(?:\s*\.\s*"?[a-z_][a-z0-9_$]*"?)?)(\s*\()?`)
	cteName        = regexp.MustCompile(`(?i)(?:\bwith(?:\s+recursive)?|,)\s*"?([a-z_][a-z0-9_$]*)"?\s*(?:\([^)]*\))?\s+as\s*\(`)
)

// queryableTables are the only relations model-written SQL may read.
var queryableTables = map[string]bool{
	"people":      true,
	"connections": true,
}

// hiddenNames are rejected wherever they appear outside string literals.
var hiddenNames = map[string]bool{
	"chats":              true,
	"chat_messages":      true,
	"job_leases":         true,
	"schema_migrations":  true,
	"information_schema": true,
	"current_setting":    true,
	"set_config":         true,
	"dblink":             true,
	"lo_get":             true,
}

func (s *GraphDBStorage) Schema() string {
	return strings.TrimSpace(schema)
}

// checkSelect normalizes a model-written query and rejects anything that is
// not one SELECT statement over people and connections. The read-only
// transaction prevents writes; the relation check keeps conversations and
// internal tables out of reach.
func checkSelect(sql string) (string, error) {
	q := strings.TrimSpace(sql)
	q = strings.TrimPrefix(q, "```sql")
	q = strings.TrimPrefix(q, "```")
	q = strings.TrimSuffix(q, "```")
	q = strings.TrimSpace(q)
	q = strings.TrimRight(q, "; \t\r\n")

	switch {
	case q == "":
		return "", fmt.Errorf("%w: empty query", ErrUnsafeQuery)
	case strings.Contains(q, ";"):
		return "", fmt.Errorf("%w: multiple statements", ErrUnsafeQuery)
	case strings.Contains(q, "--"), strings.Contains(q, "/*"):
		return "", fmt.Errorf("%w: comments", ErrUnsafeQuery)
	case !leadingKeyword.MatchString(q):
		return "", ErrUnsafeQuery
	}
	if err := checkRelations(q); err != nil {
		return "", err
	}
	return q, nil
}

func checkRelations(q string) error {
	code := stringLiteral.ReplaceAllString(q, "''")

	for _, w := range word.FindAllString(code, -1) {
		w = strings.ToLower(w)
		if hiddenNames[w] || strings.HasPrefix(w, "pg_") {
			return fmt.Errorf("%w: %s is not queryable", ErrUnsafeQuery, w)
		}
	}

	ctes := make(map[string]bool)
	for _, m := range cteName.FindAllStringSubmatch(code, -1) {
		ctes[strings.ToLower(m[1])] = true
	}

	for _, m := range relationRef.FindAllStringSubmatch(code, -1) {
		if m[2] != "" {
			// a set-returning function such as unnest(...)
			continue
		}
		name := strings.ToLower(strings.ReplaceAll(m[1], `"`, ""))
		switch {
		case name == "lateral", name == "only":
		case strings.Contains(name, "."):
			return fmt.Errorf("%w: qualified relation %s", ErrUnsafeQuery, name)
		case !queryableTables[name] && !ctes[name]:
			return fmt.Errorf("%w: %s is not queryable", ErrUnsafeQuery, name)
		}
	}
	return nil
}

// roleStatement switches the transaction to role, so the database enforces
// which tables the query can see.
func roleStatement(role string) string {
	return "SET LOCAL ROLE " + pgxv5.Identifier{role}.Sanitize()
}

// ReadOnlyQuery runs sql in a READ ONLY transaction with a statement timeout
// and returns at most maxRows rows keyed by column name. Vector columns are
// left out.
func (s *GraphDBStorage) ReadOnlyQuery(ctx context.Context, sql string, maxRows int) ([]map[string]any, error) {
	q, err := checkSelect(sql)
	if err != nil {
		return nil, err
	}
	if maxRows <= 0 {
		maxRows = 50
	}

	tx, err := s.conn.BeginTx(ctx, pgxv5.TxOptions{AccessMode: pgxv5.ReadOnly})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	timeout := fmt.Sprintf("SET LOCAL statement_timeout = %d", s.statementTimeout.Milliseconds())
	if _, err := tx.Exec(ctx, timeout); err != nil {
		return nil, err
	}
	if s.queryRole != "" {
		if _, err := tx.Exec(ctx, roleStatement(s.queryRole)); err != nil {
			return nil, fmt.Errorf("failed to switch to role %s: %w", s.queryRole, err)
		}
	}

	logger.Debug("[Store] Running read-only query", "sql", q)
	rows, err := tx.Query(ctx, fmt.Sprintf("SELECT * FROM (%s) AS q LIMIT %d", q, maxRows))
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	out := make([]map[string]any, 0)
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}
		row := make(map[string]any, len(values))
		for i, v := range values {
			switch v := v.(type) {
			case pgvector.Vector, *pgvector.Vector:
				continue
			case []byte:
				row[fields[i].Name] = string(v)
			default:
				row[fields[i].Name] = v
			}
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
