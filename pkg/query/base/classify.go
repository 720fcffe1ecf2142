package base

import (
	"context"
	"fmt"

	"github.com/eldarhac/GraphMind/pkg/ai"
	"github.com/eldarhac/GraphMind/pkg/common"
)

type classification struct {
	Category string `json:"category" validate:"required"`
}

// Classify asks the extraction model for the question's category. The
// answer is returned as given; the orchestrator decides what to do with
// categories it does not know.
func (c *BaseQueryClient) Classify(ctx context.Context, text string, history []ai.ChatMessage) (common.Category, error) {
	prompt := fmt.Sprintf(ai.ClassifyPrompt, formatHistory(c.recent(history)), text)

	var out classification
	err := c.aiClient.GenerateCompletionWithFormat(
		ctx,
		"classification",
		"The category of a question about a professional network",
		prompt,
		&out,
		c.generateOpts()...,
	)
	if err != nil {
		return "", fmt.Errorf("failed to classify question: %w", err)
	}
	return common.Category(out.Category), nil
}
