package scanutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/praetorian-inc/scanutil/pkg/enum"
	"github.com/praetorian-inc/scanutil/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewScanner(t *testing.T) {
	scanner, err := NewScanner()
	require.NoError(t, err)
	assert.Equal(t, 3, scanner.SignatureCount())

	sigs := scanner.Signatures()
	sigs[0] = nil
	assert.NotNil(t, scanner.Signatures()[0], "Signatures returns a copy")
}

func TestNewScanner_InvalidSignatures(t *testing.T) {
	_, err := NewScanner(WithSignatures([]*Signature{{ID: "x", Name: "X", Pattern: "", Category: CategoryUnix}}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid signatures")
}

func TestScanString(t *testing.T) {
	scanner, err := NewScanner()
	require.NoError(t, err)

	d := scanner.ScanString("payload.js", "<script>evil_script()</script>")
	assert.Equal(t, CategoryJS, d.Category)
	assert.Equal(t, "js.evil_script", d.SignatureID())

	d = scanner.ScanString("payload.txt", "<script>evil_script()</script>")
	assert.Equal(t, CategoryNone, d.Category)
	assert.False(t, d.Suspicious())
}

func TestScanFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "persist.c")
	require.NoError(t, os.WriteFile(path, []byte(`int main() { system("launchctl load /Library/LaunchAgents/com.malware.agent"); }`), 0644))

	for _, opts := range [][]Option{
		nil,
		{WithStrategy(StrategyNaive)},
		{WithPrefilter()},
	} {
		scanner, err := NewScanner(opts...)
		require.NoError(t, err)

		d, err := scanner.ScanFile(path)
		require.NoError(t, err)
		assert.Equal(t, CategoryMacOS, d.Category)
		assert.Equal(t, int64(13), d.Location.Offset.Start)
	}
}

func TestScanDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.js"), []byte("<script>evil_script()</script>"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.sh"), []byte("rm -rf ~/Documents"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "c.txt"), []byte("fine"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hidden.sh"), []byte("rm -rf ~/Documents"), 0644))

	s := store.NewMemory()
	scanner, err := NewScanner(WithMaxConcurrency(2), WithStore(s))
	require.NoError(t, err)

	result, err := scanner.ScanDirectory(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Stats.Processed)
	assert.Equal(t, 1, result.Stats.Count(CategoryJS))
	assert.Equal(t, 1, result.Stats.Count(CategoryUnix))

	detections, err := s.GetDetections(result.ScanID)
	require.NoError(t, err)
	assert.Len(t, detections, 3)

	scanner, err = NewScanner(WithEnumeration(enum.Config{IncludeHidden: true}))
	require.NoError(t, err)
	result, err = scanner.ScanDirectory(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Stats.Count(CategoryUnix))
}

func TestLoadBuiltinSignatures(t *testing.T) {
	sigs, err := LoadBuiltinSignatures()
	require.NoError(t, err)
	require.Len(t, sigs, 3)
	assert.Equal(t, []string{"js.evil_script", "unix.rm_documents", "macos.launchagent"},
		[]string{sigs[0].ID, sigs[1].ID, sigs[2].ID})
}
