package launcher

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		line     string
		wantProg string
		wantArgs []string
	}{
		{"codex resume", "codex", []string{"resume"}},
		{"codex", "codex", []string{}},
		{`codex --config "a b" resume`, "codex", []string{"--config", "a b", "resume"}},
		{`  my\ agent  'x y'`, "my agent", []string{"x y"}},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			prog, args, err := Split(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.wantProg, prog)
			if diff := cmp.Diff(tt.wantArgs, args); diff != "" {
				t.Errorf("args mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSplit_Errors(t *testing.T) {
	_, _, err := Split("   ")
	assert.ErrorIs(t, err, ErrEmptyCommand)

	_, _, err = Split(`codex "unterminated`)
	assert.Error(t, err)
}

func TestResumeCommand(t *testing.T) {
	c, err := ResumeCommand("codex --yolo resume", "/w", "sess-1")
	require.NoError(t, err)
	want := Command{
		Program: "codex",
		Args:    []string{"--yolo", "resume", "sess-1"},
		Dir:     "/w",
	}
	if diff := cmp.Diff(want, c); diff != "" {
		t.Errorf("command mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "codex --yolo resume sess-1", c.String())

	_, err = ResumeCommand("codex resume", "/w", "")
	assert.Error(t, err)
	_, err = ResumeCommand("", "/w", "id")
	assert.ErrorIs(t, err, ErrEmptyCommand)
}

func TestEditorCommand(t *testing.T) {
	c, err := EditorCommand("code --wait", "/d/config.json")
	require.NoError(t, err)
	assert.Equal(t, "code", c.Program)
	assert.Equal(t, []string{"--wait", "/d/config.json"}, c.Args)

	c, err = EditorCommand("", "/d/config.json")
	require.NoError(t, err)
	assert.Equal(t, "vi", c.Program)
}

func TestLauncher_UsesRunner(t *testing.T) {
	var got []Command
	l := New(Streams{}, zerolog.Nop()).WithRunner(
		func(_ context.Context, c Command) error {
			got = append(got, c)
			return nil
		},
	)
	ctx := context.Background()
	require.NoError(t, l.Resume(ctx, "codex resume", "/w", "abc"))
	require.NoError(t, l.Edit(ctx, "nano", "/cfg"))

	require.Len(t, got, 2)
	assert.Equal(t, "/w", got[0].Dir)
	assert.Equal(t, []string{"resume", "abc"}, got[0].Args)
	assert.Equal(t, "nano", got[1].Program)
}

func TestLauncher_RunnerError(t *testing.T) {
	boom := errors.New("boom")
	l := New(Streams{}, zerolog.Nop()).WithRunner(
		func(context.Context, Command) error { return boom },
	)
	err := l.Resume(context.Background(), "codex", t.TempDir(), "abc")
	assert.ErrorIs(t, err, boom)
}

func TestExecRunner(t *testing.T) {
	if _, err := exec.LookPath("echo"); err != nil {
		t.Skip("echo not available")
	}
	var out bytes.Buffer
	l := New(Streams{Stdout: &out, Stderr: &out}, zerolog.Nop())
	dir := t.TempDir()
	require.NoError(t, l.Resume(context.Background(), "echo resume", dir, "xyz"))
	assert.Equal(t, "resume xyz\n", out.String())
}

func TestExecRunner_Stdin(t *testing.T) {
	if _, err := exec.LookPath("cat"); err != nil {
		t.Skip("cat not available")
	}
	tests := []struct {
		name    string
		piped   bool
		wantOut string
	}{
		{"terminal stdin is inherited", false, "typed input"},
		{"piped stdin is drained", true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := strings.NewReader("typed input")
			var out bytes.Buffer
			run := execRunner(Streams{
				Stdin: in, Stdout: &out, Stderr: &out, Piped: tt.piped,
			})
			require.NoError(t, run(context.Background(), Command{
				Program: "cat", Dir: t.TempDir(),
			}))
			assert.Equal(t, tt.wantOut, out.String())
			assert.Zero(t, in.Len())
		})
	}
}
