package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/eldarhac/GraphMind/pkg/common"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// GraphStorage loads the network snapshot the query pipeline runs on.
type GraphStorage interface {
	LoadGraph(ctx context.Context) (common.Graph, error)
}

// GraphWriter replaces the stored network with g.
type GraphWriter interface {
	SaveGraph(ctx context.Context, g common.Graph) error
}

// EmbeddingStorage keeps one profile embedding per person and answers
// nearest neighbour questions over them.
type EmbeddingStorage interface {
	// PeopleForEmbedding returns the people whose embeddings should be
	// (re)computed. An empty ids slice selects everyone; onlyMissing skips
	// people that already have an embedding.
	PeopleForEmbedding(ctx context.Context, ids []string, onlyMissing bool) ([]common.Person, error)
	SaveEmbeddings(ctx context.Context, ids []string, embeddings [][]float32) error
	// SimilarPeople returns up to limit people closest to personID, never
	// personID itself. People without an embedding yield an empty result.
	SimilarPeople(ctx context.Context, personID string, limit int) ([]common.Person, error)
	SearchPeople(ctx context.Context, embedding []float32, limit int) ([]common.Person, error)
}

// QueryStorage runs model-written read-only SQL.
type QueryStorage interface {
	// ReadOnlyQuery executes a single SELECT statement in a read-only
	// transaction and returns at most maxRows rows.
	ReadOnlyQuery(ctx context.Context, sql string, maxRows int) ([]map[string]any, error)
	// Schema describes the tables a query may read.
	Schema() string
}

// ChatStorage persists conversations.
type ChatStorage interface {
	CreateChat(ctx context.Context, chat Chat) error
	GetChat(ctx context.Context, id string, personID string) (Chat, error)
	AddChatMessage(ctx context.Context, msg ChatMessage) error
	// GetChatMessages returns the last limit messages in chronological
	// order. A non-positive limit returns all of them.
	GetChatMessages(ctx context.Context, chatID string, limit int) ([]ChatMessage, error)
}

type Chat struct {
	ID        string    `json:"id"`
	PersonID  string    `json:"person_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

type ChatMessage struct {
	ID               int64           `json:"id"`
	ChatID           string          `json:"chat_id"`
	Role             string          `json:"role"`
	Content          string          `json:"content"`
	Operation        string          `json:"intent,omitempty"`
	Action           json.RawMessage `json:"graph_action,omitempty"`
	ProcessingTimeMs int64           `json:"processing_time,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}
