package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wesm/codexsessions/internal/render"
)

const defaultRecentLimit = 3

func (a *app) latestCommand() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "latest [dir | <repo>/<name>]",
		Short: "Show the most recent session recorded for a directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.resolveTarget(cmd.Context(), args)
			if err != nil {
				return err
			}
			sess, err := a.finder().FindLatest(t.dir)
			if err != nil {
				return err
			}
			if asJSON {
				if sess == nil {
					return render.WriteJSON(a.stdout, nil)
				}
				return render.WriteJSON(
					a.stdout, render.NewSessionJSON(*sess, a.now()),
				)
			}
			a.printer().Latest(t.location(), sess)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func (a *app) recentCommand() *cobra.Command {
	var (
		limit  int
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "recent [dir | <repo>/<name>]",
		Short: "List recent sessions recorded for a directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit < 0 {
				return fmt.Errorf("limit must be >= 0")
			}
			t, err := a.resolveTarget(cmd.Context(), args)
			if err != nil {
				return err
			}
			ss, total, err := a.finder().Recent(t.dir, limit)
			if err != nil {
				return err
			}
			if asJSON {
				return render.WriteJSON(a.stdout, render.NewRecentJSON(
					t.dir, t.worktree, ss, total, a.now(),
				))
			}
			a.printer().Recent(t.location(), ss, total)
			return nil
		},
	}
	cmd.Flags().IntVarP(
		&limit, "limit", "n", defaultRecentLimit,
		"Maximum sessions to show (0 for all)",
	)
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func (a *app) resumeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "resume [dir | <repo>/<name>]",
		Short: "Resume the most recent session for a directory",
		Long: `Resume runs the configured agent command with the id of the
most recent session recorded for the directory appended, inside that
directory. The agent command defaults to "codex resume".

A registered worktree can be named instead of a directory, either as
<repo>/<name> or by its bare name.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.resolveTarget(cmd.Context(), args)
			if err != nil {
				return err
			}
			sess, err := a.finder().FindLatest(t.dir)
			if err != nil {
				return err
			}
			if sess == nil {
				return fmt.Errorf("no Codex sessions for %s", t.location())
			}
			fmt.Fprintf(a.stderr, "Resuming %s in %s\n", sess.ID, t.location())
			return a.launcher().Resume(
				cmd.Context(), a.cfg.AgentCommand, absDir(t.dir), sess.ID,
			)
		},
	}
}
