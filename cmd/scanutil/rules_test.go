package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetRulesFlags() {
	rulesPath = ""
	rulesFormat = "table"
	rulesInclude = ""
	rulesExclude = ""
}

func TestRunRulesListTable(t *testing.T) {
	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)

	resetRulesFlags()

	require.NoError(t, runRulesList(cmd, nil))

	output := buf.String()
	assert.Contains(t, output, "ID")
	assert.Contains(t, output, "Extension")
	assert.Contains(t, output, "js.evil_script")
	assert.Contains(t, output, "unix.rm_documents")
	assert.Contains(t, output, "macos.launchagent")
	assert.Contains(t, output, ".js")
}

func TestRunRulesListJSON(t *testing.T) {
	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)

	resetRulesFlags()
	rulesFormat = "json"
	defer resetRulesFlags()

	require.NoError(t, runRulesList(cmd, nil))

	var sigs []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &sigs))
	require.Len(t, sigs, 3)
	assert.Equal(t, "js.evil_script", sigs[0]["id"])
	assert.Equal(t, "js", sigs[0]["category"])
	assert.Equal(t, "unix", sigs[1]["category"])
	assert.Equal(t, "macos", sigs[2]["category"])
}

func TestRunRulesListFiltered(t *testing.T) {
	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)

	resetRulesFlags()
	rulesInclude = "^macos\\."
	defer resetRulesFlags()

	require.NoError(t, runRulesList(cmd, nil))
	assert.Contains(t, buf.String(), "macos.launchagent")
	assert.NotContains(t, buf.String(), "js.evil_script")
}

func TestRunRulesListUnknownFormat(t *testing.T) {
	cmd := &cobra.Command{}
	cmd.SetOut(&bytes.Buffer{})

	resetRulesFlags()
	rulesFormat = "xml"
	defer resetRulesFlags()

	err := runRulesList(cmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown output format")
}
