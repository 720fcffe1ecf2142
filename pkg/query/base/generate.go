package base

import (
	"context"
	"fmt"
	"strings"
)

// GenerateFreeText answers a fully rendered prompt with plain text.
func (c *BaseQueryClient) GenerateFreeText(ctx context.Context, prompt string) (string, error) {
	res, err := c.aiClient.GenerateCompletion(ctx, prompt, c.generateOpts()...)
	if err != nil {
		return "", fmt.Errorf("failed to generate answer: %w", err)
	}
	res = strings.TrimSpace(res)
	if res == "" {
		return "", fmt.Errorf("model returned an empty answer")
	}
	return res, nil
}
