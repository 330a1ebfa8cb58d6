package matcher

import (
	"strings"

	"github.com/cloudflare/ahocorasick"
	"github.com/vigilsec/promptwall/pkg/types"
)

// keywordSet is the literal multi-pattern stage. The Aho-Corasick automaton
// reports which patterns occur anywhere in the input; occurrences are then
// resolved to byte spans by walking the text per hit pattern. Patterns are
// deduplicated for the automaton, with each pattern mapped back to every rule
// that carries it, in load order.
type keywordSet struct {
	automaton *ahocorasick.Matcher
	patterns  []string
	rules     map[string][]types.Rule
}

func compileKeywords(rules []types.Rule) (*keywordSet, error) {
	ks := &keywordSet{rules: make(map[string][]types.Rule)}
	for _, r := range rules {
		if r.Kind != types.KindKeyword {
			continue
		}
		if _, ok := ks.rules[r.Pattern]; !ok {
			ks.patterns = append(ks.patterns, r.Pattern)
		}
		ks.rules[r.Pattern] = append(ks.rules[r.Pattern], r)
	}
	if len(ks.patterns) > 0 {
		ks.automaton = ahocorasick.NewStringMatcher(ks.patterns)
	}
	return ks, nil
}

func (ks *keywordSet) match(text string, findings []types.Finding) []types.Finding {
	if ks.automaton == nil {
		return findings
	}
	for _, hit := range ks.automaton.Match([]byte(text)) {
		pattern := ks.patterns[hit]
		for start := 0; ; {
			idx := strings.Index(text[start:], pattern)
			if idx < 0 {
				break
			}
			span := types.Span{Start: start + idx, End: start + idx + len(pattern)}
			for i := range ks.rules[pattern] {
				findings = pushFinding(findings, text, &ks.rules[pattern][i], span)
			}
			start = span.End
		}
	}
	return findings
}
