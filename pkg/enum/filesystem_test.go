package enum

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilesystemEnumerator_TopLevelOnly(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, tmpDir, "b.txt", "b")
	writeFile(t, tmpDir, "a.js", "a")
	writeFile(t, tmpDir, "subdir/nested.txt", "nested")

	files, err := NewFilesystemEnumerator(Config{Root: tmpDir}).Enumerate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(tmpDir, "a.js"),
		filepath.Join(tmpDir, "b.txt"),
	}, files)
}

func TestFilesystemEnumerator_Recursive(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, tmpDir, "top.txt", "top")
	writeFile(t, tmpDir, "subdir/nested.txt", "nested")
	writeFile(t, tmpDir, ".git/config", "hidden dir")

	files, err := NewFilesystemEnumerator(Config{Root: tmpDir, Recursive: true}).Enumerate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(tmpDir, "subdir", "nested.txt"),
		filepath.Join(tmpDir, "top.txt"),
	}, files)
}

func TestFilesystemEnumerator_HiddenFiles(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, tmpDir, "visible.txt", "visible")
	writeFile(t, tmpDir, ".hidden.txt", "hidden")

	files, err := NewFilesystemEnumerator(Config{Root: tmpDir}).Enumerate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(tmpDir, "visible.txt")}, files)

	files, err = NewFilesystemEnumerator(Config{Root: tmpDir, IncludeHidden: true}).Enumerate(context.Background())
	require.NoError(t, err)
	assert.Len(t, files, 2)
}

func TestFilesystemEnumerator_MaxFileSize(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, tmpDir, "small.txt", "tiny")
	writeFile(t, tmpDir, "large.txt", "this content is larger than ten bytes")

	files, err := NewFilesystemEnumerator(Config{Root: tmpDir, MaxFileSize: 10}).Enumerate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(tmpDir, "small.txt")}, files)
}

func TestFilesystemEnumerator_Symlinks(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks require privileges on windows")
	}

	tmpDir := t.TempDir()
	outside := t.TempDir()
	writeFile(t, tmpDir, "real.txt", "real")
	writeFile(t, outside, "target.txt", "target")
	require.NoError(t, os.Symlink(filepath.Join(outside, "target.txt"), filepath.Join(tmpDir, "link.txt")))
	require.NoError(t, os.Symlink(outside, filepath.Join(tmpDir, "linkdir")))
	require.NoError(t, os.Symlink(filepath.Join(outside, "missing"), filepath.Join(tmpDir, "dangling")))

	files, err := NewFilesystemEnumerator(Config{Root: tmpDir}).Enumerate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(tmpDir, "real.txt")}, files)

	files, err = NewFilesystemEnumerator(Config{Root: tmpDir, FollowSymlinks: true}).Enumerate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(tmpDir, "link.txt"),
		filepath.Join(tmpDir, "real.txt"),
	}, files)
}

func TestFilesystemEnumerator_Gitignore(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, tmpDir, ".gitignore", "*.log\nbuild/\n")
	writeFile(t, tmpDir, "keep.txt", "keep")
	writeFile(t, tmpDir, "debug.log", "ignored")
	writeFile(t, tmpDir, "build/out.txt", "ignored")

	files, err := NewFilesystemEnumerator(Config{Root: tmpDir, Recursive: true}).Enumerate(context.Background())
	require.NoError(t, err)
	assert.Len(t, files, 3, "gitignore is not honoured unless requested")

	files, err = NewFilesystemEnumerator(Config{Root: tmpDir, Recursive: true, RespectGitignore: true}).Enumerate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(tmpDir, "keep.txt")}, files)
}

func TestFilesystemEnumerator_Errors(t *testing.T) {
	tmpDir := t.TempDir()
	file := writeFile(t, tmpDir, "file.txt", "x")

	_, err := NewFilesystemEnumerator(Config{Root: filepath.Join(tmpDir, "missing")}).Enumerate(context.Background())
	assert.True(t, os.IsNotExist(err))

	_, err = NewFilesystemEnumerator(Config{Root: file}).Enumerate(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a directory")
}

func TestFilesystemEnumerator_Cancelled(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, tmpDir, "file.txt", "x")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewFilesystemEnumerator(Config{Root: tmpDir}).Enumerate(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFilesystemEnumerator_EmptyDirectory(t *testing.T) {
	files, err := NewFilesystemEnumerator(Config{Root: t.TempDir()}).Enumerate(context.Background())
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestIsHidden(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{".", false},
		{"..", false},
		{".env", true},
		{"file.txt", false},
		{"dir.d", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, isHidden(tt.name), tt.name)
	}
}

// ===== HELPERS

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}
