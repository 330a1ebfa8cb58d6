package rule

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/vigilsec/promptwall/pkg/types"
)

// KeywordsFile and PatternsFile are the two rule-pack file names looked up
// under a repository's base directory.
const (
	KeywordsFile = "keywords.txt"
	PatternsFile = "patterns.json"
)

// parseKeywords reads the line-oriented keyword format: one rule per line as
// id|weight|description|pattern, with blank lines and #-comments skipped.
// A line with any other number of fields is a parse error. Every id is registered in seen; repeats are fatal.
func parseKeywords(data []byte, path string, seen map[string]bool) ([]types.Rule, error) {
	var rules []types.Rule
	for idx, line := range strings.Split(string(data), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		parts := strings.Split(trimmed, "|")
		if len(parts) != 4 {
			return nil, &ParseError{
				Path: path,
				Line: idx + 1,
				Msg:  "expected id|weight|description|pattern",
			}
		}
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		id := parts[0]
		if seen[id] {
			return nil, &DuplicateRuleError{RuleID: id}
		}
		seen[id] = true
		weight, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return nil, &ParseError{
				Path: path,
				Line: idx + 1,
				Msg:  fmt.Sprintf("invalid weight %q for rule %q", parts[1], id),
			}
		}
		r, err := types.NewRule(id, parts[2], types.KindKeyword, parts[3], weight, nil)
		if err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	return rules, nil
}

// jsonRule mirrors the patterns.json entry shape.
type jsonRule struct {
	ID          string  `json:"id"`
	Description string  `json:"description"`
	Pattern     string  `json:"pattern"`
	Weight      float64 `json:"weight"`
	Window      *int    `json:"window"`
}

// parsePatterns reads the JSON array of regex rules.
func parsePatterns(data []byte, path string, seen map[string]bool) ([]types.Rule, error) {
	var items []jsonRule
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, &ParseError{Path: path, Msg: fmt.Sprintf("invalid JSON structure: %v", err)}
	}
	var rules []types.Rule
	for _, item := range items {
		if seen[item.ID] {
			return nil, &DuplicateRuleError{RuleID: item.ID}
		}
		seen[item.ID] = true
		r, err := types.NewRule(item.ID, item.Description, types.KindRegex, item.Pattern, item.Weight, item.Window)
		if err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	return rules, nil
}
