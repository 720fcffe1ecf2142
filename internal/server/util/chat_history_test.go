package util

import (
	"strings"
	"testing"

	"github.com/eldarhac/GraphMind/pkg/common"
	"github.com/eldarhac/GraphMind/pkg/query"
	"github.com/eldarhac/GraphMind/pkg/store"
)

func TestChatHistory(t *testing.T) {
	t.Parallel()

	messages := []store.ChatMessage{
		{Role: RoleUser, Content: "  Who knows Bob?  "},
		{Role: RoleAssistant, Content: "Alice knows Bob."},
		{Role: "system", Content: "ignored"},
		{Role: RoleUser, Content: "   "},
	}

	got := ChatHistory(messages)
	if len(got) != 2 {
		t.Fatalf("ChatHistory() returned %d messages, want 2", len(got))
	}
	if got[0].Role != RoleUser || got[0].Message != "Who knows Bob?" {
		t.Fatalf("ChatHistory()[0] = %+v", got[0])
	}
	if got[1].Role != RoleAssistant || got[1].Message != "Alice knows Bob." {
		t.Fatalf("ChatHistory()[1] = %+v", got[1])
	}
}

func TestChatTitle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		question string
		want     string
	}{
		{name: "short", question: "How do I reach Bob?", want: "How do I reach Bob?"},
		{name: "whitespace", question: "  who\n is   Carol ", want: "who is Carol"},
		{name: "empty", question: "   ", want: "New conversation"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ChatTitle(tt.question); got != tt.want {
				t.Fatalf("ChatTitle(%q) = %q, want %q", tt.question, got, tt.want)
			}
		})
	}

	long := ChatTitle(strings.Repeat("graph ", 40))
	if !strings.HasSuffix(long, "...") || len([]rune(long)) > titleLength+3 {
		t.Fatalf("ChatTitle(long) = %q", long)
	}
}

func TestAssistantMessage(t *testing.T) {
	t.Parallel()

	resp := query.Response{
		ResponseText:     "Path found\x00",
		Operation:        common.OperationFindPath,
		ProcessingTimeMs: 12,
		Action: &query.VisualizationAction{
			Kind:    query.ActionHighlightPath,
			NodeIDs: []string{"a", "b"},
			EdgeIDs: []string{"e1"},
		},
	}

	msg, err := AssistantMessage("chat-1", resp)
	if err != nil {
		t.Fatalf("AssistantMessage() error = %v", err)
	}
	if msg.Content != "Path found" {
		t.Fatalf("Content = %q, want sanitized text", msg.Content)
	}
	if msg.Operation != string(common.OperationFindPath) || msg.ProcessingTimeMs != 12 {
		t.Fatalf("AssistantMessage() = %+v", msg)
	}
	want := `{"type":"highlight_path","node_ids":["a","b"],"connection_ids":["e1"]}`
	if string(msg.Action) != want {
		t.Fatalf("Action = %s, want %s", msg.Action, want)
	}

	none, err := AssistantMessage("chat-1", query.Response{ResponseText: "sorry"})
	if err != nil {
		t.Fatalf("AssistantMessage() error = %v", err)
	}
	if none.Action != nil {
		t.Fatalf("Action = %s, want nil", none.Action)
	}
}
