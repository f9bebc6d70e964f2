package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wesm/codexsessions/internal/launcher"
	"github.com/wesm/codexsessions/internal/render"
)

func (a *app) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change persistent settings",
	}
	setAgent := &cobra.Command{
		Use:   "set-agent <command...>",
		Short: "Set the command used to resume sessions",
		Long: `Set the command used by resume. The session id is appended
as the final argument, so "codex resume" runs "codex resume <id>".`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			command := strings.Join(args, " ")
			if _, _, err := launcher.Split(command); err != nil {
				return err
			}
			if err := a.cfg.SaveAgentCommand(command); err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "Agent command set to %q\n", command)
			return nil
		},
	}
	// Flags after the first word belong to the agent command.
	setAgent.Flags().SetInterspersed(false)

	cmd.AddCommand(
		setAgent,
		&cobra.Command{
			Use:   "show",
			Short: "Print the effective configuration",
			Args:  cobra.NoArgs,
			RunE: func(*cobra.Command, []string) error {
				root, _ := a.cfg.SessionsRoot()
				return render.WriteJSON(a.stdout, map[string]string{
					"codex_sessions_dir": root,
					"data_dir":           a.cfg.DataDir,
					"db_path":            a.cfg.DBPath,
					"config_path":        a.cfg.ConfigPath(),
					"agent_command":      a.cfg.AgentCommand,
					"log_level":          a.cfg.LogLevel,
				})
			},
		},
		&cobra.Command{
			Use:   "edit",
			Short: "Open the config file in $EDITOR",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				path, err := a.cfg.EnsureFile()
				if err != nil {
					return err
				}
				return a.launcher().Edit(
					cmd.Context(), os.Getenv("EDITOR"), path,
				)
			},
		},
	)
	return cmd
}

func (a *app) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		// Skips config loading.
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return nil
		},
		Run: func(*cobra.Command, []string) {
			fmt.Fprintf(a.stdout, "codexsessions %s (commit %s, built %s)\n",
				version, commit, buildDate)
		},
	}
}
