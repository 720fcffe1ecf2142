package pgx

import (
	"context"
	"errors"
	"fmt"

	"github.com/eldarhac/GraphMind/pkg/store"

	pgxv5 "github.com/jackc/pgx/v5"
)

func (s *GraphDBStorage) CreateChat(ctx context.Context, chat store.Chat) error {
	_, err := s.conn.Exec(ctx, `
		INSERT INTO chats (id, person_id, title)
		VALUES ($1, $2, $3)`,
		chat.ID, chat.PersonID, chat.Title,
	)
	if err != nil {
		return fmt.Errorf("failed to create chat: %w", err)
	}
	return nil
}

// GetChat returns the chat with id if it belongs to personID.
func (s *GraphDBStorage) GetChat(ctx context.Context, id string, personID string) (store.Chat, error) {
	var c store.Chat
	err := s.conn.QueryRow(ctx, `
		SELECT id, person_id, title, created_at
		FROM chats
		WHERE id = $1 AND person_id = $2`,
		id, personID,
	).Scan(&c.ID, &c.PersonID, &c.Title, &c.CreatedAt)
	if errors.Is(err, pgxv5.ErrNoRows) {
		return store.Chat{}, store.ErrNotFound
	}
	if err != nil {
		return store.Chat{}, fmt.Errorf("failed to get chat: %w", err)
	}
	return c, nil
}

func (s *GraphDBStorage) AddChatMessage(ctx context.Context, msg store.ChatMessage) error {
	var action any
	if len(msg.Action) > 0 {
		action = []byte(msg.Action)
	}
	_, err := s.conn.Exec(ctx, `
		INSERT INTO chat_messages (chat_id, role, content, operation, graph_action, processing_time_ms)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		msg.ChatID, msg.Role, msg.Content, msg.Operation, action, msg.ProcessingTimeMs,
	)
	if err != nil {
		return fmt.Errorf("failed to add chat message: %w", err)
	}
	return nil
}

func (s *GraphDBStorage) GetChatMessages(ctx context.Context, chatID string, limit int) ([]store.ChatMessage, error) {
	var lim any
	if limit > 0 {
		lim = limit
	}
	rows, err := s.conn.Query(ctx, `
		SELECT id, chat_id, role, content, operation, graph_action, processing_time_ms, created_at
		FROM (
			SELECT * FROM chat_messages
			WHERE chat_id = $1
			ORDER BY id DESC
			LIMIT $2
		) AS recent
		ORDER BY id`,
		chatID, lim,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query chat messages: %w", err)
	}
	defer rows.Close()

	msgs := make([]store.ChatMessage, 0)
	for rows.Next() {
		var m store.ChatMessage
		var action []byte
		if err := rows.Scan(&m.ID, &m.ChatID, &m.Role, &m.Content, &m.Operation, &action, &m.ProcessingTimeMs, &m.CreatedAt); err != nil {
			return nil, err
		}
		if len(action) > 0 {
			m.Action = action
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}
