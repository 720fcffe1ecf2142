package base

import (
	"context"
	"fmt"
	"strings"

	"github.com/eldarhac/GraphMind/pkg/ai"
	"github.com/eldarhac/GraphMind/pkg/common"
)

type intentParameters struct {
	Topic          string `json:"topic"`
	Limit          int    `json:"limit" validate:"gte=0"`
	ConnectionType string `json:"connection_type"`
}

type intentOutput struct {
	Operation  string           `json:"operation" validate:"required"`
	Entities   []string         `json:"entities"`
	Parameters intentParameters `json:"parameters"`
}

// ExtractIntent turns a graph question into an operation, the people it
// mentions and optional parameters. Names are returned raw; resolving them
// against the network is left to the caller.
func (c *BaseQueryClient) ExtractIntent(
	ctx context.Context,
	text string,
	history []ai.ChatMessage,
	currentUserName string,
	knownNames []string,
) (common.IntentRequest, error) {
	prompt := fmt.Sprintf(
		ai.ExtractIntentPrompt,
		currentUserName,
		formatNames(knownNames),
		formatHistory(c.recent(history)),
		text,
	)

	var out intentOutput
	err := c.aiClient.GenerateCompletionWithFormat(
		ctx,
		"graph_intent",
		"The graph operation and people a question refers to",
		prompt,
		&out,
		c.generateOpts()...,
	)
	if err != nil {
		return common.IntentRequest{}, fmt.Errorf("failed to extract intent: %w", err)
	}

	entities := make([]string, 0, len(out.Entities))
	for _, e := range out.Entities {
		if e = strings.TrimSpace(e); e != "" {
			entities = append(entities, e)
		}
	}

	return common.IntentRequest{
		Category:  common.CategoryGraphQuery,
		Operation: common.Operation(strings.ToLower(strings.TrimSpace(out.Operation))),
		Entities:  entities,
		Parameters: common.Parameters{
			Topic:          strings.TrimSpace(out.Parameters.Topic),
			Limit:          out.Parameters.Limit,
			ConnectionType: strings.ToUpper(strings.TrimSpace(out.Parameters.ConnectionType)),
		},
	}, nil
}
