package query

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/eldarhac/GraphMind/pkg/ai"
	"github.com/eldarhac/GraphMind/pkg/common"
	"github.com/eldarhac/GraphMind/pkg/graph"
)

const (
	pathHeader = "Here is the connection path I found:"
	pathFooter = "Found a path with %d degrees of separation."
)

var (
	leadingRelation  = regexp.MustCompile(`(?i)^((they|both)\s+)*(worked|work|working|studied|study|studying)(\s+together)?(\s+with\s+[^,]+?)?\s+(at|in)\s+`)
	leadingAt        = regexp.MustCompile(`(?i)^(at|in)\s+`)
	leadingCompany   = regexp.MustCompile(`(?i)^(the\s+)?company\s+`)
	trailingTogether = regexp.MustCompile(`(?i)\s+(working|studying|worked|studied)\s+together.*$`)
	spaces           = regexp.MustCompile(`\s+`)
)

// explain turns the run's result into the answer text. Path and similarity
// results are narrated from templates, everything else goes through the
// text generator grounded on the result.
func (o *Orchestrator) explain(ctx context.Context, r *run) (string, error) {
	if status, msg := r.result.Outcome(); status != graph.StatusOK && msg != "" {
		return msg, nil
	}

	switch res := r.result.(type) {
	case *graph.PathResult:
		return narratePath(res, r.req.CurrentUser), nil
	case *graph.SimilarResult:
		return fmt.Sprintf("People with profiles similar to %s: %s.", res.Target.Name, joinNames(res.Candidates)), nil
	case *graph.PotentialResult:
		return narratePotential(res, r.req.CurrentUser), nil
	}

	if o.c.Generator == nil {
		return "", downstream("generator", errors.New("not configured"))
	}
	grounding, err := json.MarshalIndent(r.result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode result: %w", err)
	}
	prompt := fmt.Sprintf(ai.GraphAnswerPrompt, r.req.Text, r.intent.Operation, string(grounding))

	var text string
	err = o.call(r, "generator", func() (err error) {
		text, err = o.c.Generator.GenerateFreeText(ctx, prompt)
		return err
	})
	return text, err
}

func narratePath(res *graph.PathResult, me common.Person) string {
	if len(res.Nodes) == 1 {
		if isMe(res.Nodes[0], me) {
			return "That's you! No connections needed."
		}
		return fmt.Sprintf("Both names refer to %s.", res.Nodes[0].Name)
	}

	var sb strings.Builder
	sb.WriteString(pathHeader)
	for i, c := range res.Edges {
		sb.WriteString("\n")
		sb.WriteString(hopSentence(res.Nodes[i], res.Nodes[i+1], c, me))
	}
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf(pathFooter, res.Distance))
	return sb.String()
}

func hopSentence(from, to common.Person, c common.Connection, me common.Person) string {
	subject, verb := from.Name, "is"
	if isMe(from, me) {
		subject, verb = "You", "are"
	}
	object := to.Name
	if isMe(to, me) {
		object = "you"
	}

	var predicate string
	switch common.ConnectionType(strings.ToUpper(string(c.ConnectionType))) {
	case common.ConnectionWork:
		predicate = "worked with " + object
	case common.ConnectionStudy:
		predicate = "studied with " + object
	default:
		return fmt.Sprintf("%s %s connected to %s.", subject, verb, object)
	}

	if place := cleanNotes(c.Notes); place != "" {
		predicate += " at " + place
	}
	return fmt.Sprintf("%s %s.", subject, predicate)
}

// cleanNotes reduces free-form connection notes to the place two people
// shared, dropping phrasing that would repeat the sentence's verb.
func cleanNotes(notes string) string {
	s := strings.TrimSpace(notes)
	s = strings.TrimRight(s, ".!;, ")
	s = leadingRelation.ReplaceAllString(s, "")
	s = trailingTogether.ReplaceAllString(s, "")
	s = leadingAt.ReplaceAllString(s, "")
	s = leadingCompany.ReplaceAllString(s, "")
	s = spaces.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

func narratePotential(res *graph.PotentialResult, me common.Person) string {
	who := res.Target.Name
	if isMe(*res.Target, me) {
		who = "you"
	}
	return fmt.Sprintf(
		"Based on people similar to %s (%s), %s might want to connect with %s.",
		res.Target.Name, joinNames(res.Similar), who, joinNames(res.Candidates),
	)
}

func isMe(p, me common.Person) bool {
	if me.ID != "" {
		return p.ID == me.ID
	}
	return me.Name != "" && strings.EqualFold(p.Name, me.Name)
}

func joinNames(people []common.Person) string {
	names := make([]string, len(people))
	for i, p := range people {
		names[i] = p.Name
	}
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	default:
		return strings.Join(names[:len(names)-1], ", ") + " and " + names[len(names)-1]
	}
}
