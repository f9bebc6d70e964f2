package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrWorktreeNotFound is returned when a lookup or delete
// matches no registered worktree.
var ErrWorktreeNotFound = errors.New("worktree not found")

// Worktree is a registered working directory whose Codex
// sessions are listed together.
type Worktree struct {
	RepoName  string
	Name      string
	Branch    string
	Path      string
	CreatedAt time.Time
}

// Key returns the "repo/name" identifier of the worktree.
func (w Worktree) Key() string {
	return w.RepoName + "/" + w.Name
}

// ParseKey splits a "repo/name" identifier. A key without a
// slash is treated as a bare name.
func ParseKey(key string) (repo, name string) {
	if i := strings.LastIndexByte(key, '/'); i >= 0 {
		return key[:i], key[i+1:]
	}
	return "", key
}

const worktreeCols = `repo_name, name, branch, path, created_at`

// UpsertWorktree registers w, replacing any worktree with the
// same repo and name. A zero CreatedAt is set to now.
func (db *DB) UpsertWorktree(w Worktree) error {
	if w.Name == "" || w.Path == "" {
		return fmt.Errorf("worktree name and path are required")
	}
	if w.CreatedAt.IsZero() {
		w.CreatedAt = time.Now()
	}
	return db.Update(func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO worktrees (`+worktreeCols+`)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(repo_name, name) DO UPDATE SET
				branch = excluded.branch,
				path = excluded.path`,
			w.RepoName, w.Name, w.Branch, w.Path,
			w.CreatedAt.UTC().Format(time.RFC3339Nano),
		)
		if err != nil {
			return fmt.Errorf("upserting worktree %s: %w", w.Key(), err)
		}
		return nil
	})
}

// DeleteWorktree removes the worktree with the given repo and
// name.
func (db *DB) DeleteWorktree(repo, name string) error {
	return db.Update(func(tx *sql.Tx) error {
		res, err := tx.Exec(
			"DELETE FROM worktrees WHERE repo_name = ? AND name = ?",
			repo, name,
		)
		if err != nil {
			return fmt.Errorf("deleting worktree: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("deleting worktree: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("%s/%s: %w", repo, name, ErrWorktreeNotFound)
		}
		return nil
	})
}

// ListWorktrees returns all worktrees ordered by repo name, then
// worktree name.
func (db *DB) ListWorktrees(ctx context.Context) ([]Worktree, error) {
	rows, err := db.reader.QueryContext(ctx,
		"SELECT "+worktreeCols+" FROM worktrees"+
			" ORDER BY repo_name, name",
	)
	if err != nil {
		return nil, fmt.Errorf("listing worktrees: %w", err)
	}
	defer rows.Close()

	var out []Worktree
	for rows.Next() {
		w, err := scanWorktree(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// GetWorktree returns the worktree registered as repo/name.
func (db *DB) GetWorktree(
	ctx context.Context, repo, name string,
) (Worktree, error) {
	return db.findOne(ctx, repo+"/"+name,
		"SELECT "+worktreeCols+" FROM worktrees"+
			" WHERE repo_name = ? AND name = ?",
		repo, name,
	)
}

// FindWorktreeByName returns the first worktree (in repo order)
// with the given name.
func (db *DB) FindWorktreeByName(
	ctx context.Context, name string,
) (Worktree, error) {
	return db.findOne(ctx, name,
		"SELECT "+worktreeCols+" FROM worktrees"+
			" WHERE name = ? ORDER BY repo_name LIMIT 1",
		name,
	)
}

// FindWorktreeByPath returns the worktree registered at path.
func (db *DB) FindWorktreeByPath(
	ctx context.Context, path string,
) (Worktree, error) {
	return db.findOne(ctx, path,
		"SELECT "+worktreeCols+" FROM worktrees"+
			" WHERE path = ? ORDER BY repo_name, name LIMIT 1",
		path,
	)
}

// ResolveWorktree looks up key, either "repo/name" or a bare name.
func (db *DB) ResolveWorktree(
	ctx context.Context, key string,
) (Worktree, error) {
	repo, name := ParseKey(key)
	if repo == "" {
		return db.FindWorktreeByName(ctx, name)
	}
	return db.GetWorktree(ctx, repo, name)
}

func (db *DB) findOne(
	ctx context.Context, what, query string, args ...any,
) (Worktree, error) {
	row := db.reader.QueryRowContext(ctx, query, args...)
	w, err := scanWorktree(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Worktree{}, fmt.Errorf("%s: %w", what, ErrWorktreeNotFound)
	}
	return w, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWorktree(rs rowScanner) (Worktree, error) {
	var (
		w       Worktree
		created string
	)
	if err := rs.Scan(
		&w.RepoName, &w.Name, &w.Branch, &w.Path, &created,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Worktree{}, err
		}
		return Worktree{}, fmt.Errorf("scanning worktree: %w", err)
	}
	ts, err := time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return Worktree{}, fmt.Errorf(
			"parsing created_at for %s: %w", w.Key(), err,
		)
	}
	w.CreatedAt = ts
	return w, nil
}
