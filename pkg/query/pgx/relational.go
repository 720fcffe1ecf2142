package pgx

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/eldarhac/GraphMind/pkg/ai"
	"github.com/eldarhac/GraphMind/pkg/logger"
	"github.com/eldarhac/GraphMind/pkg/store"
)

const defaultMaxRows = 50

type sqlQuery struct {
	SQL string `json:"sql" validate:"required"`
}

// RelationalDelegate answers lookup and aggregation questions by letting the
// model write a read-only query and then summarising its rows.
type RelationalDelegate struct {
	aiClient ai.GraphAIClient
	storage  store.QueryStorage
	maxRows  int
}

func NewRelationalDelegate(aiC ai.GraphAIClient, s store.QueryStorage, maxRows int) *RelationalDelegate {
	if maxRows <= 0 {
		maxRows = defaultMaxRows
	}
	return &RelationalDelegate{aiClient: aiC, storage: s, maxRows: maxRows}
}

func (d *RelationalDelegate) Answer(ctx context.Context, text string, history []ai.ChatMessage) (string, error) {
	question := withPreviousQuestion(text, history)

	var q sqlQuery
	err := d.aiClient.GenerateCompletionWithFormat(
		ctx,
		"sql_query",
		"A single read-only PostgreSQL query",
		fmt.Sprintf(ai.SQLGenerationPrompt, d.storage.Schema(), question),
		&q,
	)
	if err != nil {
		return "", fmt.Errorf("failed to generate sql: %w", err)
	}

	rows, err := d.storage.ReadOnlyQuery(ctx, q.SQL, d.maxRows)
	if err != nil {
		return "", fmt.Errorf("failed to run generated sql: %w", err)
	}
	logger.Debug("[Query] Relational query", "rows", len(rows))

	raw, err := json.Marshal(rows)
	if err != nil {
		return "", err
	}
	res, err := d.aiClient.GenerateCompletion(ctx, fmt.Sprintf(ai.SQLAnswerPrompt, text, string(raw)))
	if err != nil {
		return "", fmt.Errorf("failed to summarise rows: %w", err)
	}
	return strings.TrimSpace(res), nil
}

// withPreviousQuestion adds the last earlier user question, so follow-ups
// like "and at Google?" can be turned into SQL.
func withPreviousQuestion(text string, history []ai.ChatMessage) string {
	for i := len(history) - 1; i >= 0; i-- {
		m := history[i]
		if m.Role != "user" || strings.TrimSpace(m.Message) == "" || m.Message == text {
			continue
		}
		return fmt.Sprintf("%s (previous question: %s)", text, strings.TrimSpace(m.Message))
	}
	return text
}
