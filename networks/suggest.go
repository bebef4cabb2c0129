package networks

import (
	"strings"

	"github.com/sahilm/fuzzy"
)

type fuzzySource []string

func (s fuzzySource) Len() int            { return len(s) }
func (s fuzzySource) String(i int) string { return s[i] }

// Suggest fuzzy-matches a mistyped chain name against every known name and
// alias, best matches first. Used to turn "chain not found" into a helpful
// error.
func (r *Registry) Suggest(input string) []string {
	source := fuzzySource(r.Names())
	matches := fuzzy.FindFrom(strings.ToLower(input), source)

	suggestions := []string{}
	seen := map[string]bool{}
	for _, match := range matches {
		name := source[match.Index]
		key := strings.ToLower(name)
		if seen[key] {
			continue
		}
		seen[key] = true
		suggestions = append(suggestions, name)
		if len(suggestions) == 3 {
			break
		}
	}
	return suggestions
}
