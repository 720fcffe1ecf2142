package pgx

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/eldarhac/GraphMind/pkg/ai"
	"github.com/eldarhac/GraphMind/pkg/common"
)

type fakeAI struct {
	ai.GraphAIClient

	sqlReply  string
	answer    string
	err       error
	prompts   []string
	embedded  []string
	embedding []float32
}

func (f *fakeAI) GenerateCompletionWithFormat(_ context.Context, _, _ string, prompt string, out any, _ ...ai.GenerateOption) error {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return f.err
	}
	return ai.DecodeStrict(f.sqlReply, out)
}

func (f *fakeAI) GenerateCompletion(_ context.Context, prompt string, _ ...ai.GenerateOption) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.answer, nil
}

func (f *fakeAI) GenerateEmbedding(_ context.Context, input []byte) ([]float32, error) {
	f.embedded = append(f.embedded, string(input))
	return f.embedding, f.err
}

type fakeStorage struct {
	rows      []map[string]any
	queryErr  error
	sql       string
	maxRows   int
	people    []common.Person
	similarOf string
	limit     int
	searched  []float32
}

func (s *fakeStorage) Schema() string { return "people(name text)" }

func (s *fakeStorage) ReadOnlyQuery(_ context.Context, sql string, maxRows int) ([]map[string]any, error) {
	s.sql, s.maxRows = sql, maxRows
	return s.rows, s.queryErr
}

func (s *fakeStorage) PeopleForEmbedding(context.Context, []string, bool) ([]common.Person, error) {
	return nil, nil
}

func (s *fakeStorage) SaveEmbeddings(context.Context, []string, [][]float32) error { return nil }

func (s *fakeStorage) SimilarPeople(_ context.Context, id string, limit int) ([]common.Person, error) {
	s.similarOf, s.limit = id, limit
	return s.people, nil
}

func (s *fakeStorage) SearchPeople(_ context.Context, e []float32, limit int) ([]common.Person, error) {
	s.searched, s.limit = e, limit
	return s.people, nil
}

func TestRelationalDelegate(t *testing.T) {
	f := &fakeAI{sqlReply: `{"sql": "SELECT count(*) FROM people WHERE company ILIKE '%acme%'"}`, answer: " Three people work at Acme. "}
	s := &fakeStorage{rows: []map[string]any{{"count": 3}}}
	d := NewRelationalDelegate(f, s, 0)

	history := []ai.ChatMessage{
		{Role: "user", Message: "Who works at Google?"},
		{Role: "assistant", Message: "Dana."},
	}
	got, err := d.Answer(context.Background(), "And at Acme?", history)
	if err != nil || got != "Three people work at Acme." {
		t.Fatalf("Answer() = %q, %v", got, err)
	}
	if s.maxRows != defaultMaxRows || !strings.HasPrefix(s.sql, "SELECT count(*)") {
		t.Fatalf("query = %q / %d", s.sql, s.maxRows)
	}
	if !strings.Contains(f.prompts[0], "people(name text)") || !strings.Contains(f.prompts[0], "previous question: Who works at Google?") {
		t.Fatalf("sql prompt = %q", f.prompts[0])
	}
	if !strings.Contains(f.prompts[1], `[{"count":3}]`) || !strings.Contains(f.prompts[1], `"And at Acme?"`) {
		t.Fatalf("answer prompt = %q", f.prompts[1])
	}
}

func TestRelationalDelegateErrors(t *testing.T) {
	tests := []struct {
		name string
		ai   *fakeAI
		s    *fakeStorage
	}{
		{name: "no sql", ai: &fakeAI{sqlReply: `{"query": "SELECT 1"}`}, s: &fakeStorage{}},
		{name: "model error", ai: &fakeAI{err: errors.New("down")}, s: &fakeStorage{}},
		{name: "query rejected", ai: &fakeAI{sqlReply: `{"sql": "DELETE FROM people"}`}, s: &fakeStorage{queryErr: errors.New("only a single SELECT statement is allowed")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got, err := NewRelationalDelegate(tt.ai, tt.s, 5).Answer(context.Background(), "q", nil); err == nil {
				t.Fatalf("Answer() = %q, want error", got)
			}
		})
	}
}

func TestSimilarityService(t *testing.T) {
	s := &fakeStorage{people: []common.Person{{ID: "2"}}}
	got, err := NewSimilarityService(s).FindSimilar(context.Background(), "1", 5)
	if err != nil || len(got) != 1 || s.similarOf != "1" || s.limit != 5 {
		t.Fatalf("FindSimilar() = %+v, %v (of %q, limit %d)", got, err, s.similarOf, s.limit)
	}

	s = &fakeStorage{}
	if got, _ := NewSimilarityService(s).FindSimilar(context.Background(), "1", 0); got != nil || s.similarOf != "" {
		t.Fatalf("FindSimilar(count 0) = %+v, storage called = %v", got, s.similarOf != "")
	}
}

func TestEmbeddingSearcher(t *testing.T) {
	f := &fakeAI{embedding: []float32{0.1, 0.2}}
	s := &fakeStorage{people: []common.Person{{ID: "1", Name: "Dana"}}}

	got, err := NewEmbeddingSearcher(f, s).SearchProfiles(context.Background(), "Who knows NLP?", 4)
	if err != nil || len(got) != 1 {
		t.Fatalf("SearchProfiles() = %+v, %v", got, err)
	}
	if f.embedded[0] != "Who knows NLP?" || s.limit != 4 || len(s.searched) != 2 {
		t.Fatalf("embedded %q, limit %d, vector %v", f.embedded, s.limit, s.searched)
	}

	f.err = errors.New("down")
	if _, err := NewEmbeddingSearcher(f, s).SearchProfiles(context.Background(), "q", 4); err == nil {
		t.Fatalf("expected error when embedding fails")
	}
}
