// Package matcher compiles a rule set into its two matching artifacts: a
// literal multi-pattern automaton for keyword rules and a vector of compiled
// regular expressions for regex rules, and runs both over scan input.
package matcher

import (
	"fmt"

	"github.com/vigilsec/promptwall/pkg/types"
)

// Matcher holds the compiled artifacts for one rule set. A Matcher is
// immutable after Compile and safe for concurrent use.
type Matcher struct {
	keywords *keywordSet
	regexes  []compiledRegex
}

// PatternCompileError reports a regex source rejected by the engine.
type PatternCompileError struct {
	RuleID string
	Err    error
}

func (e *PatternCompileError) Error() string {
	return fmt.Sprintf("invalid regex pattern for rule %q: %v", e.RuleID, e.Err)
}

func (e *PatternCompileError) Unwrap() error { return e.Err }

// AutomatonError reports a keyword automaton that could not be built.
type AutomatonError struct {
	Err error
}

func (e *AutomatonError) Error() string {
	return fmt.Sprintf("building keyword automaton: %v", e.Err)
}

func (e *AutomatonError) Unwrap() error { return e.Err }

// Compile builds the automaton and regex vector from the rule set, preserving
// load order so matches map back to their originating rules. A single invalid
// regex aborts compilation and names the offending rule.
func Compile(rules []types.Rule) (*Matcher, error) {
	keywords, err := compileKeywords(rules)
	if err != nil {
		return nil, err
	}
	regexes, err := compileRegexes(rules)
	if err != nil {
		return nil, err
	}
	return &Matcher{keywords: keywords, regexes: regexes}, nil
}

// Match runs both stages over the input and returns unsorted candidate
// findings. Zero-width matches are dropped; spans reference rune boundaries
// of the input.
func (m *Matcher) Match(text string) ([]types.Finding, error) {
	var findings []types.Finding
	findings = m.keywords.match(text, findings)

	for i := range m.regexes {
		var err error
		findings, err = m.regexes[i].match(text, findings)
		if err != nil {
			return nil, err
		}
	}
	return findings, nil
}

// pushFinding appends a candidate unless its span is zero-width.
func pushFinding(findings []types.Finding, text string, r *types.Rule, span types.Span) []types.Finding {
	if span.Start >= span.End {
		return findings
	}
	return append(findings, types.Finding{
		RuleID:  r.ID,
		Span:    span,
		Excerpt: extractExcerpt(text, span, r.Window),
		Weight:  r.Weight,
	})
}
