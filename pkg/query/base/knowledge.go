package base

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/eldarhac/GraphMind/pkg/ai"
	"github.com/eldarhac/GraphMind/pkg/common"
	"github.com/eldarhac/GraphMind/pkg/store"
)

const defaultProfileLimit = 8

// ProfileSearcher finds the profiles most relevant to a question.
type ProfileSearcher interface {
	SearchProfiles(ctx context.Context, question string, limit int) ([]common.Person, error)
}

// KnowledgeDelegate answers open questions about people from the profiles a
// ProfileSearcher returns.
type KnowledgeDelegate struct {
	client   *BaseQueryClient
	searcher ProfileSearcher
	limit    int
}

func NewKnowledgeDelegate(client *BaseQueryClient, searcher ProfileSearcher, limit int) *KnowledgeDelegate {
	if limit <= 0 {
		limit = defaultProfileLimit
	}
	return &KnowledgeDelegate{client: client, searcher: searcher, limit: limit}
}

func (d *KnowledgeDelegate) Answer(ctx context.Context, text string, history []ai.ChatMessage) (string, error) {
	people, err := d.searcher.SearchProfiles(ctx, text, d.limit)
	if err != nil {
		return "", fmt.Errorf("failed to retrieve profiles: %w", err)
	}

	msgs := append(slices.Clone(d.client.recent(history)), ai.ChatMessage{Role: "user", Message: text})
	opts := d.client.generateOpts(ai.KnowledgePrompt, fmt.Sprintf(ai.KnowledgeContextPrompt, formatProfiles(people)))

	res, err := d.client.aiClient.GenerateChat(ctx, msgs, opts...)
	if err != nil {
		return "", fmt.Errorf("failed to generate answer from AI: %w", err)
	}
	return strings.TrimSpace(res), nil
}

func formatProfiles(people []common.Person) string {
	if len(people) == 0 {
		return "(no matching profiles)"
	}
	parts := make([]string, len(people))
	for i, p := range people {
		parts[i] = store.ProfileText(p)
	}
	return strings.Join(parts, "\n---\n")
}

// SnapshotSearcher ranks the profiles of a network snapshot by how many
// words of the question they contain. It serves deployments without an
// embedding index.
type SnapshotSearcher struct {
	Graph func(ctx context.Context) (common.Graph, error)
}

func (s SnapshotSearcher) SearchProfiles(ctx context.Context, question string, limit int) ([]common.Person, error) {
	g, err := s.Graph(ctx)
	if err != nil {
		return nil, err
	}
	terms := searchTerms(question)
	if len(terms) == 0 {
		return nil, nil
	}

	type scored struct {
		person common.Person
		score  int
	}
	var hits []scored
	for _, p := range g.Nodes {
		text := strings.ToLower(strings.Join([]string{
			p.Name, p.Title, p.Company, p.Institution, p.Bio,
			strings.Join(p.ExpertiseAreas, " "), strings.Join(p.Interests, " "),
		}, " "))
		score := 0
		for _, t := range terms {
			if strings.Contains(text, t) {
				score++
			}
		}
		if score > 0 {
			hits = append(hits, scored{p, score})
		}
	}
	slices.SortStableFunc(hits, func(a, b scored) int { return b.score - a.score })

	out := make([]common.Person, 0, min(limit, len(hits)))
	for _, h := range hits {
		if len(out) == limit {
			break
		}
		out = append(out, h.person)
	}
	return out, nil
}

var stopWords = map[string]bool{
	"the": true, "and": true, "who": true, "what": true, "which": true, "are": true,
	"about": true, "with": true, "does": true, "has": true, "have": true, "for": true,
	"tell": true, "know": true, "anyone": true, "someone": true, "people": true,
}

func searchTerms(question string) []string {
	fields := strings.FieldsFunc(strings.ToLower(question), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r > 127)
	})
	var terms []string
	seen := make(map[string]bool)
	for _, f := range fields {
		if len(f) < 3 || stopWords[f] || seen[f] {
			continue
		}
		seen[f] = true
		terms = append(terms, f)
	}
	return terms
}
