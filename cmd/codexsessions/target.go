package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/wesm/codexsessions/internal/db"
	"github.com/wesm/codexsessions/internal/parser"
	"github.com/wesm/codexsessions/internal/render"
)

// target is the directory a session command works on, with the
// worktree registered there, if any.
type target struct {
	dir      string
	worktree *db.Worktree
}

func (t target) location() string {
	return render.Location(t.dir, t.worktree)
}

// resolveTarget picks the directory named by args, defaulting to
// the current directory. An argument that is not an existing
// directory is looked up in the registry as "<repo>/<name>" or a
// bare worktree name. Unregistered arguments are used as given,
// since sessions may name directories that no longer exist.
func (a *app) resolveTarget(
	ctx context.Context, args []string,
) (target, error) {
	dir, err := targetDir(args)
	if err != nil {
		return target{}, err
	}
	d, err := a.openRegistry()
	if err != nil {
		return target{}, err
	}
	if d == nil {
		return target{dir: dir}, nil
	}
	defer d.Close()

	if len(args) > 0 && !isDir(dir) {
		w, err := d.ResolveWorktree(ctx, dir)
		if errors.Is(err, db.ErrWorktreeNotFound) {
			return target{dir: dir}, nil
		}
		if err != nil {
			return target{}, err
		}
		a.logger.Debug().
			Str("worktree", w.Key()).
			Str("path", w.Path).
			Msg("resolved registered worktree")
		return target{dir: w.Path, worktree: &w}, nil
	}

	path := absDir(dir)
	if canonical, err := parser.CanonicalPath(dir); err == nil {
		path = canonical
	}
	w, err := d.FindWorktreeByPath(ctx, path)
	if errors.Is(err, db.ErrWorktreeNotFound) {
		return target{dir: dir}, nil
	}
	if err != nil {
		return target{}, err
	}
	return target{dir: dir, worktree: &w}, nil
}

// openRegistry opens the worktree registry for lookups. It
// returns nil when no registry has been created yet.
func (a *app) openRegistry() (*db.DB, error) {
	if a.cfg.DBPath == "" {
		return nil, nil
	}
	if _, err := os.Stat(a.cfg.DBPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("worktree registry: %w", err)
	}
	return db.Open(a.cfg.DBPath)
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
