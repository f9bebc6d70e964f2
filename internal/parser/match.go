package parser

import (
	"errors"
	"path/filepath"
)

var errEmptyPath = errors.New("empty path")

// CanonicalPath returns the absolute, symlink-free form of p.
// It fails when p does not exist. An empty path is an error
// rather than an alias for the current directory.
func CanonicalPath(p string) (string, error) {
	if p == "" {
		return "", errEmptyPath
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}

// NormalizeTarget canonicalizes a caller-supplied directory,
// falling back to the path as given when it cannot be resolved.
func NormalizeTarget(p string) string {
	if c, err := CanonicalPath(p); err == nil {
		return c
	}
	return p
}

// MatchesWorktree reports whether a session recorded in
// sessionCwd belongs to the target directory. targetCanonical is
// NormalizeTarget(target). When sessionCwd can be canonicalized
// the canonical forms are compared; otherwise (typically a
// directory that has since been removed) sessionCwd must equal
// the original target string exactly.
func MatchesWorktree(
	sessionCwd, targetCanonical, target string,
) bool {
	if c, err := CanonicalPath(sessionCwd); err == nil {
		return c == targetCanonical
	}
	return sessionCwd == target
}
