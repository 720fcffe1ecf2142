package util

import (
	"encoding/json"
	"strings"

	iutil "github.com/eldarhac/GraphMind/internal/util"
	"github.com/eldarhac/GraphMind/pkg/ai"
	"github.com/eldarhac/GraphMind/pkg/query"
	"github.com/eldarhac/GraphMind/pkg/store"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// titleLength bounds the conversation title derived from the first question.
const titleLength = 60

// ChatHistory converts stored messages into model history. Messages with
// an unknown role or without content are skipped.
func ChatHistory(messages []store.ChatMessage) []ai.ChatMessage {
	history := make([]ai.ChatMessage, 0, len(messages))
	for _, m := range messages {
		if m.Role != RoleUser && m.Role != RoleAssistant {
			continue
		}
		content := strings.TrimSpace(m.Content)
		if content == "" {
			continue
		}
		history = append(history, ai.ChatMessage{Role: m.Role, Message: content})
	}
	return history
}

func ChatTitle(question string) string {
	title := iutil.Truncate(question, titleLength)
	if title == "" {
		return "New conversation"
	}
	return title
}

func UserMessage(chatID string, text string) store.ChatMessage {
	return store.ChatMessage{
		ChatID:  chatID,
		Role:    RoleUser,
		Content: iutil.SanitizePostgresText(text),
	}
}

// AssistantMessage stores the answer together with its operation, action
// and timing so the conversation can be replayed.
func AssistantMessage(chatID string, resp query.Response) (store.ChatMessage, error) {
	msg := store.ChatMessage{
		ChatID:           chatID,
		Role:             RoleAssistant,
		Content:          iutil.SanitizePostgresText(resp.ResponseText),
		Operation:        string(resp.Operation),
		ProcessingTimeMs: resp.ProcessingTimeMs,
	}
	if resp.Action != nil {
		action, err := json.Marshal(resp.Action)
		if err != nil {
			return store.ChatMessage{}, err
		}
		msg.Action = action
	}
	return msg, nil
}
