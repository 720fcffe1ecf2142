// Package base implements the model-backed collaborators of the query
// orchestrator: question classification, intent extraction, free-text
// generation and a knowledge delegate answering from retrieved profiles.
package base

import (
	"fmt"
	"strings"

	"github.com/eldarhac/GraphMind/pkg/ai"
)

const defaultHistoryWindow = 6

type queryOptions struct {
	SystemPrompts []string
	Model         string
	Thinking      string
	HistoryWindow int
}

// QueryOption is a functional option for configuring query behavior.
type QueryOption func(*queryOptions)

// WithSystemPrompts returns a QueryOption that appends additional system
// prompts to guide the AI's response generation.
func WithSystemPrompts(prompts ...string) QueryOption {
	return func(o *queryOptions) {
		o.SystemPrompts = append(o.SystemPrompts, prompts...)
	}
}

// WithModel returns a QueryOption that specifies which AI model to use
// for generating responses.
func WithModel(model string) QueryOption {
	return func(o *queryOptions) {
		o.Model = model
	}
}

// WithThinking returns a QueryOption that sets the reasoning effort for
// models that support it.
func WithThinking(thinking string) QueryOption {
	return func(o *queryOptions) {
		o.Thinking = thinking
	}
}

// WithHistoryWindow sets how many recent messages are shown to the model.
func WithHistoryWindow(n int) QueryOption {
	return func(o *queryOptions) {
		if n >= 0 {
			o.HistoryWindow = n
		}
	}
}

// BaseQueryClient implements query.Classifier, query.IntentExtractor and
// query.TextGenerator on top of an ai.GraphAIClient.
type BaseQueryClient struct {
	aiClient ai.GraphAIClient
	options  queryOptions
}

// NewQueryClient creates a BaseQueryClient.
//
// Example:
//
//	client := base.NewQueryClient(aiClient, base.WithHistoryWindow(4))
//	orchestrator := query.NewOrchestrator(query.Collaborators{
//		Classifier: client,
//		Extractor:  client,
//		Generator:  client,
//	})
func NewQueryClient(aiC ai.GraphAIClient, opts ...QueryOption) *BaseQueryClient {
	c := BaseQueryClient{
		aiClient: aiC,
		options:  queryOptions{HistoryWindow: defaultHistoryWindow},
	}
	for _, o := range opts {
		o(&c.options)
	}
	return &c
}

func (c *BaseQueryClient) generateOpts(systemPrompts ...string) []ai.GenerateOption {
	prompts := append(systemPrompts, c.options.SystemPrompts...)
	var opts []ai.GenerateOption
	if len(prompts) > 0 {
		opts = append(opts, ai.WithSystemPrompts(prompts...))
	}
	if c.options.Model != "" {
		opts = append(opts, ai.WithModel(c.options.Model))
	}
	if c.options.Thinking != "" {
		opts = append(opts, ai.WithThinking(c.options.Thinking))
	}
	return opts
}

func (c *BaseQueryClient) recent(history []ai.ChatMessage) []ai.ChatMessage {
	n := c.options.HistoryWindow
	if len(history) > n {
		return history[len(history)-n:]
	}
	return history
}

func formatHistory(history []ai.ChatMessage) string {
	if len(history) == 0 {
		return "(none)"
	}
	var b strings.Builder
	for _, m := range history {
		role := m.Role
		if role == "" {
			role = "user"
		}
		fmt.Fprintf(&b, "%s: %s\n", role, strings.TrimSpace(m.Message))
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatNames(names []string) string {
	if len(names) == 0 {
		return "(none)"
	}
	return "- " + strings.Join(names, "\n- ")
}
