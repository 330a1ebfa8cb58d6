package main

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vigilsec/promptwall/pkg/types"
)

func TestListRulesCommand_EmbeddedPack(t *testing.T) {
	out, err := execute(t, "list-rules")
	require.NoError(t, err)
	assert.Contains(t, out, "INSTR_OVERRIDE")
	assert.Contains(t, out, "CODE_INJECTION")
}

func TestListRulesCommand_JSON(t *testing.T) {
	out, err := execute(t, "list-rules", "--json")
	require.NoError(t, err)

	var rules []types.Rule
	require.NoError(t, json.Unmarshal([]byte(out), &rules))
	require.NotEmpty(t, rules)

	for i := 1; i < len(rules); i++ {
		assert.LessOrEqual(t, rules[i-1].ID, rules[i].ID, "rules are sorted by id")
	}
}

func TestListRulesCommand_CustomDir(t *testing.T) {
	out, err := execute(t, "list-rules", "--rules-dir", writeRulesDir(t))
	require.NoError(t, err)
	assert.Contains(t, out, "1 rule(s) loaded")
	assert.Contains(t, out, "SECRET_LEAK")
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "promptwall")
}
