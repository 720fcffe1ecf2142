package pgx

import (
	"context"
	"errors"
	"testing"
)

func TestCheckSelect(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
		err  bool
	}{
		{name: "plain", in: "SELECT name FROM people", want: "SELECT name FROM people"},
		{name: "trailing semicolon", in: "  select count(*) from people;\n", want: "select count(*) from people"},
		{name: "cte", in: "WITH x AS (SELECT 1) SELECT * FROM x", want: "WITH x AS (SELECT 1) SELECT * FROM x"},
		{name: "fenced", in: "```sql\nSELECT 1\n```", want: "SELECT 1"},
		{name: "empty", in: " ; ", err: true},
		{name: "two statements", in: "SELECT 1; DELETE FROM people", err: true},
		{name: "comment", in: "SELECT 1 -- hi", err: true},
		{name: "update", in: "UPDATE people SET name = 'x'", err: true},
		{name: "keyword prefix", in: "selection", err: true},
		{name: "join", in: "SELECT p.name FROM people p JOIN connections c ON c.person_a_id = p.id", want: "SELECT p.name FROM people p JOIN connections c ON c.person_a_id = p.id"},
		{name: "unnest", in: "SELECT e FROM people, unnest(expertise_areas) AS e", want: "SELECT e FROM people, unnest(expertise_areas) AS e"},
		{name: "table name in literal", in: "SELECT name FROM people WHERE bio ILIKE '%chats%'", want: "SELECT name FROM people WHERE bio ILIKE '%chats%'"},
		{name: "chat messages", in: "SELECT chat_id, message FROM chat_messages", err: true},
		{name: "chats", in: "SELECT * FROM chats", err: true},
		{name: "job leases", in: "SELECT * FROM job_leases", err: true},
		{name: "quoted hidden table", in: `SELECT * FROM "chats"`, err: true},
		{name: "hidden table in subquery", in: "SELECT name FROM people WHERE id IN (SELECT user_id FROM chats)", err: true},
		{name: "hidden table after comma", in: "SELECT * FROM people, chat_messages", err: true},
		{name: "hidden table in cte", in: "WITH m AS (SELECT * FROM chat_messages) SELECT * FROM m", err: true},
		{name: "catalog", in: "SELECT * FROM pg_catalog.pg_roles", err: true},
		{name: "information schema", in: "SELECT table_name FROM information_schema.tables", err: true},
		{name: "qualified table", in: "SELECT * FROM public.people", err: true},
		{name: "unknown table", in: "SELECT * FROM users", err: true},
		{name: "settings", in: "SELECT current_setting('search_path')", err: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := checkSelect(tt.in)
			if tt.err {
				if !errors.Is(err, ErrUnsafeQuery) {
					t.Fatalf("checkSelect(%q) error = %v, want ErrUnsafeQuery", tt.in, err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Fatalf("checkSelect(%q) = %q, %v, want %q", tt.in, got, err, tt.want)
			}
		})
	}
}

func TestReadOnlyQueryRejectsHiddenTablesBeforeRunning(t *testing.T) {
	// A nil connection panics if the query reaches the database.
	s := NewGraphDBStorage(nil)
	if _, err := s.ReadOnlyQuery(context.Background(), "SELECT * FROM chat_messages", 10); !errors.Is(err, ErrUnsafeQuery) {
		t.Fatalf("ReadOnlyQuery() error = %v, want ErrUnsafeQuery", err)
	}
}

func TestQueryRole(t *testing.T) {
	if got := NewGraphDBStorage(nil, WithQueryRole(" graph_reader ")).queryRole; got != "graph_reader" {
		t.Fatalf("queryRole = %q, want graph_reader", got)
	}
	if got, want := roleStatement(`graph"reader`), `SET LOCAL ROLE "graph""reader"`; got != want {
		t.Fatalf("roleStatement() = %q, want %q", got, want)
	}
}
