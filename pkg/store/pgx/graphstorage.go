package pgx

import (
	"context"
	"strings"
	"time"

	pgxv5 "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type pgxIConn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, optionsAndArgs ...any) (pgxv5.Rows, error)
	QueryRow(ctx context.Context, sql string, optionsAndArgs ...any) pgxv5.Row
	Begin(ctx context.Context) (pgxv5.Tx, error)
	BeginTx(ctx context.Context, txOptions pgxv5.TxOptions) (pgxv5.Tx, error)
}

const defaultStatementTimeout = 5 * time.Second

// GraphDBStorage stores the network, profile embeddings and conversations in
// PostgreSQL with pgvector. The connection must have the pgvector types
// registered.
type GraphDBStorage struct {
	conn             pgxIConn
	statementTimeout time.Duration
	queryRole        string
}

type GraphDBStorageOption func(*GraphDBStorage)

// WithStatementTimeout bounds how long a read-only query may run.
func WithStatementTimeout(d time.Duration) GraphDBStorageOption {
	return func(s *GraphDBStorage) {
		if d > 0 {
			s.statementTimeout = d
		}
	}
}

// WithQueryRole runs read-only queries as role. The role should only be
// granted SELECT on people and connections.
func WithQueryRole(role string) GraphDBStorageOption {
	return func(s *GraphDBStorage) {
		s.queryRole = strings.TrimSpace(role)
	}
}

// NewGraphDBStorage creates a GraphDBStorage on an existing connection or
// pool.
func NewGraphDBStorage(conn pgxIConn, opts ...GraphDBStorageOption) *GraphDBStorage {
	s := &GraphDBStorage{
		conn:             conn,
		statementTimeout: defaultStatementTimeout,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(s)
	}
	return s
}
