package queue

import (
	"context"
	"errors"
	"reflect"
	"sort"
	"sync"
	"testing"

	"github.com/eldarhac/GraphMind/pkg/ai"
	"github.com/eldarhac/GraphMind/pkg/common"
	"github.com/eldarhac/GraphMind/pkg/store"
)

type fakeEmbedStorage struct {
	mu          sync.Mutex
	people      []common.Person
	gotIDs      []string
	onlyMissing bool
	saved       map[string][]float32
	saveErr     error
}

func (f *fakeEmbedStorage) PeopleForEmbedding(_ context.Context, ids []string, onlyMissing bool) ([]common.Person, error) {
	f.gotIDs = ids
	f.onlyMissing = onlyMissing
	return f.people, nil
}

func (f *fakeEmbedStorage) SaveEmbeddings(_ context.Context, ids []string, embeddings [][]float32) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	if f.saved == nil {
		f.saved = make(map[string][]float32)
	}
	for i, id := range ids {
		f.saved[id] = embeddings[i]
	}
	return nil
}

func (f *fakeEmbedStorage) SimilarPeople(context.Context, string, int) ([]common.Person, error) {
	return nil, nil
}

func (f *fakeEmbedStorage) SearchPeople(context.Context, []float32, int) ([]common.Person, error) {
	return nil, nil
}

type lengthEmbedder struct {
	ai.GraphAIClient
}

func (lengthEmbedder) GenerateEmbeddings(_ context.Context, inputs [][]byte) ([][]float32, error) {
	out := make([][]float32, len(inputs))
	for i, in := range inputs {
		out[i] = []float32{float32(len(in))}
	}
	return out, nil
}

func TestEmbeddingWorker(t *testing.T) {
	s := &fakeEmbedStorage{people: []common.Person{
		{ID: "1", Name: "Ann"},
		{ID: "2", Name: "Benjamin"},
		{ID: "3", Name: "Cy"},
	}}
	w := &EmbeddingWorker{AI: lengthEmbedder{}, Storage: s, BatchSize: 2, Parallel: 2}

	err := w.ProcessMessage(context.Background(), []byte(`{"job_id":"j","person_ids":["1","2","3"],"only_missing":true}`))
	if err != nil {
		t.Fatalf("ProcessMessage() error = %v", err)
	}
	if !reflect.DeepEqual(s.gotIDs, []string{"1", "2", "3"}) || !s.onlyMissing {
		t.Fatalf("PeopleForEmbedding got %v / %v", s.gotIDs, s.onlyMissing)
	}

	ids := make([]string, 0, len(s.saved))
	for id := range s.saved {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	if !reflect.DeepEqual(ids, []string{"1", "2", "3"}) {
		t.Fatalf("saved = %v", s.saved)
	}
	want := float32(len(store.ProfileText(common.Person{Name: "Benjamin"})))
	if s.saved["2"][0] != want {
		t.Fatalf("embedding of 2 = %v, want [%v]", s.saved["2"], want)
	}
}

func TestEmbeddingWorkerErrors(t *testing.T) {
	w := &EmbeddingWorker{AI: lengthEmbedder{}, Storage: &fakeEmbedStorage{}}
	if err := w.ProcessMessage(context.Background(), []byte(`not json`)); err == nil {
		t.Fatalf("expected error for invalid body")
	}

	boom := errors.New("boom")
	w.Storage = &fakeEmbedStorage{people: []common.Person{{ID: "1", Name: "Ann"}}, saveErr: boom}
	if err := w.ProcessMessage(context.Background(), []byte(`{}`)); !errors.Is(err, boom) {
		t.Fatalf("ProcessMessage() error = %v, want %v", err, boom)
	}
}

type graphSource struct {
	g   common.Graph
	err error
}

func (s graphSource) LoadGraph(context.Context) (common.Graph, error) { return s.g, s.err }

type graphSink struct {
	saved common.Graph
}

func (s *graphSink) SaveGraph(_ context.Context, g common.Graph) error {
	s.saved = g
	return nil
}

func TestSnapshotExporter(t *testing.T) {
	g := common.Graph{Nodes: []common.Person{{ID: "1", Name: "Ann"}}}
	sink := &graphSink{}
	var prefixes []string
	e := &SnapshotExporter{
		Source: graphSource{g: g},
		Target: func(prefix string) store.GraphWriter {
			prefixes = append(prefixes, prefix)
			return sink
		},
	}

	if err := e.ProcessMessage(context.Background(), []byte(`{"job_id":"j"}`)); err != nil {
		t.Fatalf("ProcessMessage() error = %v", err)
	}
	if err := e.ProcessMessage(context.Background(), []byte(`{"prefix":"archive/1"}`)); err != nil {
		t.Fatalf("ProcessMessage() error = %v", err)
	}
	if !reflect.DeepEqual(prefixes, []string{DefaultSnapshotPrefix, "archive/1"}) {
		t.Fatalf("prefixes = %v", prefixes)
	}
	if !reflect.DeepEqual(sink.saved, g) {
		t.Fatalf("saved = %+v", sink.saved)
	}

	e.Source = graphSource{err: errors.New("db down")}
	if err := e.ProcessMessage(context.Background(), []byte(`{}`)); err == nil {
		t.Fatalf("expected error when the source fails")
	}
}
