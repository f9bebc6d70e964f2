package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/wesm/codexsessions/internal/config"
	"github.com/wesm/codexsessions/internal/db"
	"github.com/wesm/codexsessions/internal/launcher"
	"github.com/wesm/codexsessions/internal/logging"
	"github.com/wesm/codexsessions/internal/render"
	"github.com/wesm/codexsessions/internal/sessions"
)

// app carries the resolved configuration and I/O streams shared
// by every subcommand.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	piped  bool // stdin is not a terminal

	now    func() time.Time
	runner launcher.Runner // nil runs real processes

	cfg    config.Config
	logger zerolog.Logger
}

func newApp(stdin io.Reader, stdout, stderr io.Writer) *app {
	return &app{
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
		now:    time.Now,
		logger: zerolog.Nop(),
	}
}

func (a *app) execute(args []string) error {
	root := a.rootCommand()
	root.SetArgs(args)
	return root.Execute()
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "codexsessions",
		Short: "Find and resume Codex sessions recorded for a directory",
		Long: `codexsessions scans the Codex CLI session logs under
~/.codex/sessions and reports which sessions were recorded in a
working directory, newest first. Registered worktrees can be listed
together with their recent sessions.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	root.SetIn(a.stdin)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)
	config.RegisterGlobalFlags(root.PersistentFlags())

	root.AddCommand(
		a.latestCommand(),
		a.recentCommand(),
		a.resumeCommand(),
		a.listCommand(),
		a.worktreeCommand(),
		a.configCommand(),
		a.versionCommand(),
	)
	return root
}

// setup loads configuration after flags are parsed and installs
// the logger.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logging.New(cfg.LogLevel, a.stderr, true)
	a.logger.Debug().
		Str("sessions_dir", cfg.SessionsDir).
		Str("data_dir", cfg.DataDir).
		Msg("config loaded")
	return nil
}

func (a *app) finder() *sessions.Finder {
	root, ok := a.cfg.SessionsRoot()
	if !ok {
		a.logger.Warn().Msg(
			"cannot determine codex sessions directory; set " +
				config.EnvSessionsDir,
		)
	}
	return sessions.NewFinder(root, a.logger)
}

func (a *app) openDB() (*db.DB, error) {
	if a.cfg.DBPath == "" {
		return nil, fmt.Errorf(
			"no data directory configured; set %s", config.EnvDataDir,
		)
	}
	return db.Open(a.cfg.DBPath)
}

func (a *app) launcher() *launcher.Launcher {
	l := launcher.New(launcher.Streams{
		Stdin:  a.stdin,
		Stdout: a.stdout,
		Stderr: a.stderr,
		Piped:  a.piped,
	}, a.logger)
	if a.runner != nil {
		l.WithRunner(a.runner)
	}
	return l
}

func (a *app) printer() *render.Printer {
	return render.NewPrinter(a.stdout).WithClock(a.now)
}

// targetDir returns the directory argument, or the current
// directory when none was given.
func targetDir(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting working directory: %w", err)
	}
	return wd, nil
}

// absDir resolves dir for process launching and registration,
// keeping it unchanged when it cannot be resolved.
func absDir(dir string) string {
	if abs, err := filepath.Abs(dir); err == nil {
		return abs
	}
	return dir
}
