package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ignoredPatterns are the generated files that may land in a project's
// .qrbatch directory. config.yaml is deliberately absent.
//
//nolint:gochecknoglobals // Fixed list.
var ignoredPatterns = []string{
	"*.zip",
	"*.png",
	"*.jpeg",
	"*.svg",
	"*.log",
	"cache/",
}

// GitignoreContent returns the .gitignore written by EnsureGitignore.
func GitignoreContent() string {
	var b strings.Builder
	b.WriteString("# Written by qrbatch config init. Edit freely; it is never rewritten.\n")
	for _, p := range ignoredPatterns {
		b.WriteString(p)
		b.WriteByte('\n')
	}
	return b.String()
}

// EnsureGitignore writes dir/.gitignore unless one is already there and
// reports whether it wrote the file. dir is created if needed.
func EnsureGitignore(dir string) (bool, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return false, fmt.Errorf("creating directory %s: %w", dir, err)
	}

	path := filepath.Join(dir, ".gitignore")
	//nolint:gosec // .gitignore is meant to be readable by everyone.
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("creating %s: %w", path, err)
	}

	if _, err = f.WriteString(GitignoreContent()); err != nil {
		_ = f.Close()
		return false, fmt.Errorf("writing %s: %w", path, err)
	}
	if err = f.Close(); err != nil {
		return false, fmt.Errorf("closing %s: %w", path, err)
	}
	return true, nil
}
