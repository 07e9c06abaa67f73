package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/praetorian-inc/scanutil/pkg/scanner"
	"github.com/stretchr/testify/require"
)

// writeFixture creates a directory holding one JS-suspicious, one
// Unix-suspicious and one clean file.
func writeFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"evil.js":   "var x = 1;\n<script>evil_script()</script>\n",
		"wipe.sh":   "#!/bin/sh\nrm -rf ~/Documents\n",
		"notes.txt": "nothing to see here\n",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
	return dir
}

// resetScanFlags restores scan flag variables to their defaults.
func resetScanFlags() {
	scanStrategy = scanner.StrategyAutomaton
	scanMaxConcurrency = 0
	scanPrefilter = false
	scanRecursive = false
	scanIncludeHidden = false
	scanFollowSymlinks = false
	scanRespectGitignore = false
	scanMaxFileSize = 0
	scanRulesPath = ""
	scanRulesInclude = ""
	scanRulesExclude = ""
	scanOutputFormat = "human"
	scanOutputPath = ":memory:"
	scanProgress = false
	scanColor = "never"
	scanTimeout = ""
}
