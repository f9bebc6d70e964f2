package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wesm/codexsessions/internal/db"
	"github.com/wesm/codexsessions/internal/render"
	"github.com/wesm/codexsessions/internal/sessions"
)

func (a *app) listCommand() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List registered worktrees with their recent sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := a.openDB()
			if err != nil {
				return err
			}
			defer d.Close()

			// Text output shows a few sessions per worktree and
			// counts the rest; JSON carries all of them.
			limit := render.ListedSessions
			if asJSON {
				limit = 0
			}
			entries, err := worktreeSessions(
				cmd.Context(), d, a.finder(), limit,
			)
			if err != nil {
				return err
			}
			if asJSON {
				return render.WriteJSON(
					a.stdout, render.NewListJSON(entries, a.now()),
				)
			}
			a.printer().Worktrees(entries, true)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

// worktreeSessions pairs every registered worktree with up to
// limit of its sessions (0 for all).
func worktreeSessions(
	ctx context.Context, d *db.DB, f *sessions.Finder, limit int,
) ([]render.WorktreeSessions, error) {
	wts, err := d.ListWorktrees(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]render.WorktreeSessions, 0, len(wts))
	for _, w := range wts {
		ss, total, err := f.Recent(w.Path, limit)
		if err != nil {
			return nil, fmt.Errorf("worktree %s: %w", w.Key(), err)
		}
		out = append(out, render.WorktreeSessions{
			Worktree: w,
			Sessions: ss,
			Total:    total,
		})
	}
	return out, nil
}
