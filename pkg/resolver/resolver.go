// Package resolver maps free-text person mentions onto the names known to
// a network snapshot.
package resolver

import (
	"regexp"
	"strings"

	"github.com/eldarhac/GraphMind/pkg/common"
)

var (
	// @[Name](id) and @[Name]
	bracketMention = regexp.MustCompile(`@\[([^\]]*)\](\([^)]*\))?`)
	// @Name at the start of a token
	sigilMention = regexp.MustCompile(`(^|\s)@(\S)`)
)

var pronouns = map[string]struct{}{
	"i":      {},
	"me":     {},
	"my":     {},
	"myself": {},
}

// StripMentions removes mention markup from text, keeping the mentioned
// names.
func StripMentions(text string) string {
	text = bracketMention.ReplaceAllString(text, "$1")
	text = sigilMention.ReplaceAllString(text, "$1$2")
	return strings.TrimSpace(text)
}

// IsPronoun reports whether s refers to the person asking.
func IsPronoun(s string) bool {
	_, ok := pronouns[strings.ToLower(strings.TrimSpace(s))]
	return ok
}

// Resolve maps raw entity strings onto known names.
//
// Each entry is stripped of mention markup and matched case-insensitively,
// first exactly and then as a substring of a known name. First-person
// pronouns stand for currentUser. Unmatched entries are dropped and the
// result holds each name at most once, in first-seen order. For find_path a
// lone name other than currentUser gets currentUser prepended.
func Resolve(raw []string, knownNames []string, currentUser string, op common.Operation) []string {
	var resolved []string
	seen := make(map[string]struct{})
	add := func(name string) {
		key := strings.ToLower(name)
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		resolved = append(resolved, name)
	}

	for _, r := range raw {
		candidate := StripMentions(r)
		if candidate == "" {
			continue
		}
		if IsPronoun(candidate) {
			if currentUser != "" {
				add(currentUser)
			}
			continue
		}
		if name, ok := match(candidate, knownNames); ok {
			add(name)
		}
	}

	if op == common.OperationFindPath && len(resolved) == 1 && currentUser != "" &&
		!strings.EqualFold(resolved[0], currentUser) {
		resolved = append([]string{currentUser}, resolved...)
	}

	return resolved
}

func match(candidate string, knownNames []string) (string, bool) {
	lc := strings.ToLower(candidate)
	for _, n := range knownNames {
		if strings.ToLower(n) == lc {
			return n, true
		}
	}
	for _, n := range knownNames {
		if strings.Contains(strings.ToLower(n), lc) {
			return n, true
		}
	}
	return "", false
}
