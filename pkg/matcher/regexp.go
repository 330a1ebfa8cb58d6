package matcher

import (
	"time"

	"github.com/dlclark/regexp2"
	"github.com/vigilsec/promptwall/pkg/types"
)

// ruleTimeout bounds a single pattern's execution to guard against
// catastrophic backtracking.
const ruleTimeout = 5 * time.Second

// compiledRegex pairs a compiled pattern with its originating rule.
type compiledRegex struct {
	re   *regexp2.Regexp
	rule types.Rule
}

func compileRegexes(rules []types.Rule) ([]compiledRegex, error) {
	var compiled []compiledRegex
	for _, r := range rules {
		if r.Kind != types.KindRegex {
			continue
		}
		// RE2-compatible syntax first. Fall back to the default
		// Perl-style syntax for patterns RE2 syntax cannot express.
		// Both modes run on regexp2's backtracking engine, hence the
		// per-pattern timeout.
		re, err := regexp2.Compile(r.Pattern, regexp2.RE2|regexp2.Multiline)
		if err != nil {
			re, err = regexp2.Compile(r.Pattern, regexp2.None)
			if err != nil {
				return nil, &PatternCompileError{RuleID: r.ID, Err: err}
			}
		}
		re.MatchTimeout = ruleTimeout
		compiled = append(compiled, compiledRegex{re: re, rule: r})
	}
	return compiled, nil
}

// match iterates leftmost non-overlapping matches. regexp2 reports rune
// offsets, so they are translated back to byte offsets before building spans.
func (c *compiledRegex) match(text string, findings []types.Finding) ([]types.Finding, error) {
	m, err := c.re.FindStringMatch(text)
	if err != nil {
		return nil, &PatternCompileError{RuleID: c.rule.ID, Err: err}
	}
	var offsets []int
	for m != nil {
		if offsets == nil {
			offsets = runeToByteOffsets(text)
		}
		span := types.Span{
			Start: offsets[m.Index],
			End:   offsets[m.Index+m.Length],
		}
		findings = pushFinding(findings, text, &c.rule, span)

		m, err = c.re.FindNextMatch(m)
		if err != nil {
			return nil, &PatternCompileError{RuleID: c.rule.ID, Err: err}
		}
	}
	return findings, nil
}

// runeToByteOffsets maps rune index -> byte offset, with a trailing entry for
// the end of the text.
func runeToByteOffsets(text string) []int {
	offsets := make([]int, 0, len(text)+1)
	for i := range text {
		offsets = append(offsets, i)
	}
	return append(offsets, len(text))
}
