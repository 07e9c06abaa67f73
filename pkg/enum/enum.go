package enum

import "context"

// Enumerator discovers the files of a scan batch.
type Enumerator interface {
	// Enumerate returns the paths to scan, sorted.
	Enumerate(ctx context.Context) ([]string, error)
}

// Config for enumeration.
type Config struct {
	// Root is the directory to enumerate.
	Root string

	// Recursive descends into subdirectories. By default only regular files
	// directly inside Root are returned.
	Recursive bool

	// IncludeHidden includes hidden files/directories (starting with .).
	IncludeHidden bool

	// MaxFileSize is the maximum file size to process (0 = no limit).
	MaxFileSize int64

	// FollowSymlinks includes symbolic links whose target is a regular file.
	// Linked directories are never descended.
	FollowSymlinks bool

	// RespectGitignore skips paths matched by Root/.gitignore.
	RespectGitignore bool
}
