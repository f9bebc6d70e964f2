// Package launcher runs the configured agent and editor commands.
package launcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/google/shlex"
	"github.com/rs/zerolog"
)

// ErrEmptyCommand is returned when a command line splits into no
// words.
var ErrEmptyCommand = errors.New("empty command")

// Command is a fully resolved process invocation.
type Command struct {
	Program string
	Args    []string
	Dir     string
}

func (c Command) String() string {
	return strings.Join(append([]string{c.Program}, c.Args...), " ")
}

// Runner starts a command and waits for it to exit.
type Runner func(ctx context.Context, c Command) error

// Split breaks a shell-style command line into program and
// arguments. Quoting follows POSIX shell rules; no expansion is
// performed.
func Split(line string) (string, []string, error) {
	words, err := shlex.Split(line)
	if err != nil {
		return "", nil, fmt.Errorf("parsing command %q: %w", line, err)
	}
	if len(words) == 0 {
		return "", nil, ErrEmptyCommand
	}
	return words[0], words[1:], nil
}

// Streams are the standard streams handed to launched processes.
// Piped marks Stdin as not being a terminal: it is drained before
// each launch and the process reads from the null device instead.
type Streams struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Piped  bool
}

// Launcher builds and runs agent commands.
type Launcher struct {
	run    Runner
	logger zerolog.Logger
}

// New returns a Launcher attached to the given streams.
func New(s Streams, logger zerolog.Logger) *Launcher {
	return &Launcher{
		run:    execRunner(s),
		logger: logger.With().Str("component", "launcher").Logger(),
	}
}

// WithRunner replaces the process runner.
func (l *Launcher) WithRunner(r Runner) *Launcher {
	l.run = r
	return l
}

// ResumeCommand builds the command that resumes sessionID in dir
// using agent, a shell-style command line.
func ResumeCommand(agent, dir, sessionID string) (Command, error) {
	if sessionID == "" {
		return Command{}, errors.New("no session id to resume")
	}
	prog, args, err := Split(agent)
	if err != nil {
		return Command{}, fmt.Errorf("agent command: %w", err)
	}
	return Command{
		Program: prog,
		Args:    append(args, sessionID),
		Dir:     dir,
	}, nil
}

// Resume runs the agent command for sessionID inside dir.
func (l *Launcher) Resume(
	ctx context.Context, agent, dir, sessionID string,
) error {
	c, err := ResumeCommand(agent, dir, sessionID)
	if err != nil {
		return err
	}
	l.logger.Debug().
		Str("dir", dir).
		Str("command", c.String()).
		Msg("resuming session")
	return l.run(ctx, c)
}

// EditorCommand builds the command that opens path in the user's
// editor, taken from editor (normally $EDITOR) or vi when empty.
func EditorCommand(editor, path string) (Command, error) {
	if strings.TrimSpace(editor) == "" {
		editor = "vi"
	}
	prog, args, err := Split(editor)
	if err != nil {
		return Command{}, fmt.Errorf("editor: %w", err)
	}
	return Command{Program: prog, Args: append(args, path)}, nil
}

// Edit opens path in the editor named by editor.
func (l *Launcher) Edit(ctx context.Context, editor, path string) error {
	c, err := EditorCommand(editor, path)
	if err != nil {
		return err
	}
	l.logger.Debug().Str("command", c.String()).Msg("opening editor")
	return l.run(ctx, c)
}

func execRunner(s Streams) Runner {
	return func(ctx context.Context, c Command) error {
		cmd := exec.CommandContext(ctx, c.Program, c.Args...)
		cmd.Dir = c.Dir
		cmd.Env = os.Environ()
		if s.Piped {
			if s.Stdin != nil {
				if _, err := io.Copy(io.Discard, s.Stdin); err != nil {
					return fmt.Errorf("draining stdin: %w", err)
				}
			}
		} else if s.Stdin != nil {
			cmd.Stdin = s.Stdin
		}
		cmd.Stdout = s.Stdout
		cmd.Stderr = s.Stderr
		if err := cmd.Run(); err != nil {
			return fmt.Errorf("running %s: %w", c.Program, err)
		}
		return nil
	}
}
