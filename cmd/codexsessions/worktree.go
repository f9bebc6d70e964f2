package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/wesm/codexsessions/internal/db"
	"github.com/wesm/codexsessions/internal/parser"
	"github.com/wesm/codexsessions/internal/render"
)

func (a *app) worktreeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "worktree",
		Aliases: []string{"wt"},
		Short:   "Manage the registry of worktrees shown by list",
	}
	cmd.AddCommand(
		a.worktreeAddCommand(),
		a.worktreeRemoveCommand(),
		a.worktreeLsCommand(),
	)
	return cmd
}

// newWorktree fills in registry fields for the directory at path.
// The name defaults to the directory's base name. Repo and branch
// default to what the git metadata reports, and the repo falls
// back to the parent directory's name outside a repository.
func newWorktree(path, name, repo, branch string) (db.Worktree, error) {
	info, err := os.Stat(path)
	if err != nil {
		return db.Worktree{}, fmt.Errorf("worktree path: %w", err)
	}
	if !info.IsDir() {
		return db.Worktree{}, fmt.Errorf("worktree path %s is not a directory", path)
	}
	canonical, err := parser.CanonicalPath(path)
	if err != nil {
		return db.Worktree{}, fmt.Errorf("resolving %s: %w", path, err)
	}
	if name == "" {
		name = filepath.Base(canonical)
	}
	detected := parser.DetectRepo(canonical, branch)
	if branch == "" {
		branch = detected.Branch
	}
	if repo == "" {
		repo = detected.Name
		// An untrimmed base name names the worktree, not the repo.
		if detected.Root == "" && repo == filepath.Base(canonical) {
			repo = ""
		}
	}
	if repo == "" {
		repo = filepath.Base(filepath.Dir(canonical))
	}
	return db.Worktree{
		RepoName: repo,
		Name:     name,
		Branch:   branch,
		Path:     canonical,
	}, nil
}

func (a *app) worktreeAddCommand() *cobra.Command {
	var name, repo, branch string
	cmd := &cobra.Command{
		Use:   "add <path>",
		Short: "Register a worktree directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := newWorktree(args[0], name, repo, branch)
			if err != nil {
				return err
			}
			d, err := a.openDB()
			if err != nil {
				return err
			}
			defer d.Close()

			if err := d.UpsertWorktree(w); err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "Registered %s at %s\n", w.Key(), w.Path)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Worktree name (default: directory name)")
	cmd.Flags().StringVar(&repo, "repo", "", "Repository name (default: detected from git)")
	cmd.Flags().StringVar(&branch, "branch", "", "Branch checked out in the worktree (default: detected from git)")
	return cmd
}

func (a *app) worktreeRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <repo>/<name>",
		Aliases: []string{"rm"},
		Short:   "Unregister a worktree",
		Long: `Unregister a worktree. The directory and its sessions are left
untouched. A bare name selects the first match in repository order.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.openDB()
			if err != nil {
				return err
			}
			defer d.Close()

			w, err := d.ResolveWorktree(cmd.Context(), args[0])
			if errors.Is(err, db.ErrWorktreeNotFound) {
				return fmt.Errorf("no registered worktree %s", args[0])
			}
			if err != nil {
				return err
			}
			if err := d.DeleteWorktree(w.RepoName, w.Name); err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "Removed %s\n", w.Key())
			return nil
		},
	}
}

func (a *app) worktreeLsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ls",
		Short: "List registered worktrees",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := a.openDB()
			if err != nil {
				return err
			}
			defer d.Close()

			wts, err := d.ListWorktrees(cmd.Context())
			if err != nil {
				return err
			}
			entries := make([]render.WorktreeSessions, len(wts))
			for i, w := range wts {
				entries[i].Worktree = w
			}
			a.printer().Worktrees(entries, false)
			return nil
		},
	}
}
