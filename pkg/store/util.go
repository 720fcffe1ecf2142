package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/eldarhac/GraphMind/pkg/ai"
	"github.com/eldarhac/GraphMind/pkg/common"
)

// ChunkRange calls fn for consecutive [start, end) windows of at most
// chunkSize items.
func ChunkRange(total, chunkSize int, fn func(start, end int) error) error {
	if total <= 0 {
		return nil
	}
	if chunkSize <= 0 {
		chunkSize = total
	}
	for start := 0; start < total; start += chunkSize {
		end := min(start+chunkSize, total)
		if err := fn(start, end); err != nil {
			return err
		}
	}
	return nil
}

// DedupeStrings drops empty and repeated values, keeping first occurrences.
func DedupeStrings(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// ProfileText renders the parts of a profile that describe a person, in the
// form embedded for similarity search.
func ProfileText(p common.Person) string {
	var b strings.Builder
	line := func(label, value string) {
		value = strings.TrimSpace(value)
		if value == "" {
			return
		}
		fmt.Fprintf(&b, "%s: %s\n", label, value)
	}
	line("Name", p.Name)
	line("Title", p.Title)
	line("Company", p.Company)
	line("Institution", p.Institution)
	line("Expertise", strings.Join(p.ExpertiseAreas, ", "))
	line("Interests", strings.Join(p.Interests, ", "))
	line("Bio", p.Bio)
	return strings.TrimRight(b.String(), "\n")
}

// GenerateEmbeddings embeds inputs in chunks of batchSize and checks that
// the model answered once per input.
func GenerateEmbeddings(
	ctx context.Context,
	client ai.GraphAIClient,
	inputs [][]byte,
	batchSize int,
) ([][]float32, error) {
	if client == nil {
		return nil, fmt.Errorf("ai client is nil")
	}
	out := make([][]float32, 0, len(inputs))
	err := ChunkRange(len(inputs), batchSize, func(start, end int) error {
		batch, err := client.GenerateEmbeddings(ctx, inputs[start:end])
		if err != nil {
			return err
		}
		if len(batch) != end-start {
			return fmt.Errorf("expected %d embeddings, got %d", end-start, len(batch))
		}
		out = append(out, batch...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
