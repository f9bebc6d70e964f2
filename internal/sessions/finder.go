// Package sessions answers which Codex sessions were recorded
// for a working directory, newest first.
package sessions

import (
	"fmt"
	"iter"

	"github.com/rs/zerolog"

	"github.com/wesm/codexsessions/internal/parser"
)

// Finder searches a Codex sessions root. It keeps no state
// between calls; every query walks the tree again.
type Finder struct {
	root   string
	logger zerolog.Logger
}

// NewFinder creates a Finder for the given partition root. An
// empty root means no root is available and every query returns
// no sessions.
func NewFinder(root string, logger zerolog.Logger) *Finder {
	return &Finder{
		root:   root,
		logger: logger.With().Str("component", "finder").Logger(),
	}
}

// FindLatest returns the most recent session recorded for dir,
// or nil when there is none. Files older than the match are
// never opened.
func (f *Finder) FindLatest(dir string) (*parser.Session, error) {
	for sess, err := range f.matching(dir) {
		if err != nil {
			return nil, err
		}
		f.logger.Debug().
			Str("dir", dir).
			Str("session", sess.ID).
			Str("path", sess.Path).
			Msg("latest session found")
		return sess, nil
	}
	return nil, nil
}

// Recent returns up to limit sessions recorded for dir, newest
// first, along with the total number of matching sessions under
// the root. A limit of 0 (or less) collects every match.
func (f *Finder) Recent(
	dir string, limit int,
) ([]parser.Session, int, error) {
	if limit < 0 {
		limit = 0
	}

	var (
		collected []parser.Session
		total     int
	)
	for sess, err := range f.matching(dir) {
		if err != nil {
			return nil, 0, err
		}
		total++
		if limit == 0 || len(collected) < limit {
			collected = append(collected, *sess)
		}
	}

	f.logger.Debug().
		Str("dir", dir).
		Int("limit", limit).
		Int("collected", len(collected)).
		Int("total", total).
		Msg("recent sessions")
	return collected, total, nil
}

// matching yields the sessions under the root whose working
// directory matches dir, walking newest first. A walk or parse
// error is yielded once and ends the sequence.
func (f *Finder) matching(
	dir string,
) iter.Seq2[*parser.Session, error] {
	return func(yield func(*parser.Session, error) bool) {
		target := parser.NormalizeTarget(dir)
		for path, err := range parser.WalkSessionFiles(
			f.root, parser.Descending,
		) {
			if err != nil {
				yield(nil, fmt.Errorf(
					"listing codex sessions: %w", err,
				))
				return
			}

			sess, err := parser.ParseCodexSession(path)
			if err != nil {
				yield(nil, fmt.Errorf(
					"parsing codex session: %w", err,
				))
				return
			}
			if sess == nil {
				f.logger.Debug().
					Str("path", path).
					Msg("not a codex session, skipping")
				continue
			}

			if !parser.MatchesWorktree(sess.Cwd, target, dir) {
				continue
			}
			if !yield(sess, nil) {
				return
			}
		}
	}
}
