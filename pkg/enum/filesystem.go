package enum

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"fortio.org/log"
	gitignore "github.com/sabhiram/go-gitignore"
)

// FilesystemEnumerator enumerates files from a filesystem directory.
type FilesystemEnumerator struct {
	config Config
}

// NewFilesystemEnumerator creates a new filesystem enumerator.
func NewFilesystemEnumerator(config Config) *FilesystemEnumerator {
	return &FilesystemEnumerator{config: config}
}

// Enumerate lists eligible files under Root. Paths are joined onto Root
// and returned in lexical order.
func (e *FilesystemEnumerator) Enumerate(ctx context.Context) ([]string, error) {
	info, err := os.Stat(e.config.Root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s: not a directory", e.config.Root)
	}

	ignore, err := e.loadGitignore()
	if err != nil {
		return nil, err
	}

	var files []string
	visit := func(path string, d fs.DirEntry) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		ok, err := e.eligible(path, d, ignore)
		if err != nil {
			return err
		}
		if ok {
			files = append(files, path)
		}
		return nil
	}

	if e.config.Recursive {
		err = e.walk(ctx, visit, ignore)
	} else {
		err = e.list(visit)
	}
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

// list visits the direct entries of Root.
func (e *FilesystemEnumerator) list(visit func(string, fs.DirEntry) error) error {
	entries, err := os.ReadDir(e.config.Root)
	if err != nil {
		return fmt.Errorf("failed to read directory %s: %w", e.config.Root, err)
	}
	for _, d := range entries {
		if d.IsDir() {
			continue
		}
		if err := visit(filepath.Join(e.config.Root, d.Name()), d); err != nil {
			return err
		}
	}
	return nil
}

// walk visits every entry below Root. Unreadable subdirectories are logged
// and skipped.
func (e *FilesystemEnumerator) walk(ctx context.Context, visit func(string, fs.DirEntry) error, ignore *gitignore.GitIgnore) error {
	return filepath.WalkDir(e.config.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == e.config.Root {
				return err
			}
			log.Warnf("Skipping %s: %v", path, err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		if d.IsDir() {
			if path == e.config.Root {
				return nil
			}
			if !e.config.IncludeHidden && isHidden(d.Name()) {
				return filepath.SkipDir
			}
			if ignore != nil && ignore.MatchesPath(e.relative(path)+"/") {
				return filepath.SkipDir
			}
			return nil
		}
		return visit(path, d)
	})
}

// eligible applies the hidden, symlink, size and gitignore policies to a
// non-directory entry.
func (e *FilesystemEnumerator) eligible(path string, d fs.DirEntry, ignore *gitignore.GitIgnore) (bool, error) {
	if !e.config.IncludeHidden && isHidden(d.Name()) {
		return false, nil
	}

	if ignore != nil && ignore.MatchesPath(e.relative(path)) {
		return false, nil
	}

	var info fs.FileInfo
	var err error
	if d.Type()&fs.ModeSymlink != 0 {
		if !e.config.FollowSymlinks {
			return false, nil
		}
		info, err = os.Stat(path)
		if err != nil {
			// Dangling link.
			log.LogVf("Skipping symlink %s: %v", path, err)
			return false, nil
		}
	} else {
		info, err = d.Info()
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("failed to stat %s: %w", path, err)
		}
	}

	if !info.Mode().IsRegular() {
		return false, nil
	}

	if e.config.MaxFileSize > 0 && info.Size() > e.config.MaxFileSize {
		log.LogVf("Skipping %s: %d bytes exceeds max file size", path, info.Size())
		return false, nil
	}

	return true, nil
}

func (e *FilesystemEnumerator) loadGitignore() (*gitignore.GitIgnore, error) {
	if !e.config.RespectGitignore {
		return nil, nil
	}
	path := filepath.Join(e.config.Root, ".gitignore")
	if _, err := os.Stat(path); err != nil {
		return nil, nil
	}
	ignore, err := gitignore.CompileIgnoreFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return ignore, nil
}

func (e *FilesystemEnumerator) relative(path string) string {
	rel, err := filepath.Rel(e.config.Root, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}

// isHidden checks if a filename is hidden (starts with .).
// The special entries "." and ".." are NOT considered hidden.
func isHidden(name string) bool {
	if name == "." || name == ".." {
		return false
	}
	return strings.HasPrefix(name, ".")
}
