package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func skipIfNotUnix(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip(
			"skipping: Unix permissions not reliable on Windows",
		)
	}
	if os.Getuid() == 0 {
		t.Skip(
			"skipping: running as root bypasses permissions",
		)
	}
}

// clearEnv unsets every variable the loader reads and points
// HOME at a fresh temp dir, returning it.
func clearEnv(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	for _, k := range []string{
		EnvSessionsDir, EnvDataDir, EnvAgent, EnvLogLevel,
	} {
		t.Setenv(k, "")
	}
	return home
}

func writeConfig(t *testing.T, dir string, data any) {
	t.Helper()
	b, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.json"), b, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func loadConfigFromFlags(t *testing.T, args ...string) (Config, error) {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterGlobalFlags(fs)
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return Load(fs)
}

func TestDefault(t *testing.T) {
	home := clearEnv(t)
	cfg := Default()

	assert.Equal(t, filepath.Join(home, ".codex", "sessions"), cfg.SessionsDir)
	assert.Equal(t, filepath.Join(home, ".codexsessions"), cfg.DataDir)
	assert.Equal(t, filepath.Join(home, ".codexsessions", "worktrees.db"), cfg.DBPath)
	assert.Equal(t, DefaultAgentCommand, cfg.AgentCommand)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
}

func TestDefault_NoHome(t *testing.T) {
	if runtime.GOOS != "linux" && runtime.GOOS != "darwin" {
		t.Skip("HOME lookup is platform specific")
	}
	clearEnv(t)
	t.Setenv("HOME", "")

	cfg := Default()
	root, ok := cfg.SessionsRoot()
	assert.False(t, ok)
	assert.Empty(t, root)
	assert.Empty(t, cfg.ConfigPath())
}

func TestSessionsRoot(t *testing.T) {
	tests := []struct {
		name     string
		env      string
		file     string
		args     []string
		wantRoot func(home string) string
	}{
		{
			name: "default under home",
			wantRoot: func(home string) string {
				return filepath.Join(home, ".codex", "sessions")
			},
		},
		{
			name:     "env override",
			env:      "/env/sessions",
			wantRoot: func(string) string { return "/env/sessions" },
		},
		{
			name:     "config file override",
			file:     "/file/sessions",
			wantRoot: func(string) string { return "/file/sessions" },
		},
		{
			name:     "env beats config file",
			env:      "/env/sessions",
			file:     "/file/sessions",
			wantRoot: func(string) string { return "/env/sessions" },
		},
		{
			name:     "flag beats env",
			env:      "/env/sessions",
			args:     []string{"--sessions-dir", "/flag/sessions"},
			wantRoot: func(string) string { return "/flag/sessions" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			home := clearEnv(t)
			dataDir := filepath.Join(home, ".codexsessions")
			if tt.env != "" {
				t.Setenv(EnvSessionsDir, tt.env)
			}
			if tt.file != "" {
				writeConfig(t, dataDir, map[string]any{
					"codex_sessions_dir": tt.file,
				})
			}

			cfg, err := loadConfigFromFlags(t, tt.args...)
			require.NoError(t, err)
			root, ok := cfg.SessionsRoot()
			assert.True(t, ok)
			assert.Equal(t, tt.wantRoot(home), root)
		})
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	dataDir := t.TempDir()
	t.Setenv(EnvDataDir, dataDir)
	t.Setenv(EnvAgent, "codex --yolo resume")
	t.Setenv(EnvLogLevel, "debug")
	writeConfig(t, dataDir, map[string]any{
		"agent_command": "from-file",
		"log_level":     "error",
	})

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, dataDir, cfg.DataDir)
	assert.Equal(t, filepath.Join(dataDir, "worktrees.db"), cfg.DBPath)
	assert.Equal(t, "codex --yolo resume", cfg.AgentCommand)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_DataDirFlagSelectsConfigFile(t *testing.T) {
	clearEnv(t)
	dataDir := t.TempDir()
	writeConfig(t, dataDir, map[string]any{
		"agent_command": "my-agent resume",
	})

	cfg, err := loadConfigFromFlags(t, "--data-dir", dataDir)
	require.NoError(t, err)
	assert.Equal(t, "my-agent resume", cfg.AgentCommand)
	assert.Equal(t, filepath.Join(dataDir, "worktrees.db"), cfg.DBPath)
}

func TestLoad_LogLevelFlag(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvLogLevel, "info")
	cfg, err := loadConfigFromFlags(t, "--log-level", "debug")
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_InvalidConfigFile(t *testing.T) {
	clearEnv(t)
	dataDir := t.TempDir()
	t.Setenv(EnvDataDir, dataDir)
	require.NoError(t, os.WriteFile(
		filepath.Join(dataDir, "config.json"), []byte("{bad"), 0o600,
	))

	_, err := Load(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading config file")
}

func TestLoad_UnreadableConfigFile(t *testing.T) {
	skipIfNotUnix(t)
	clearEnv(t)
	dataDir := t.TempDir()
	t.Setenv(EnvDataDir, dataDir)
	path := filepath.Join(dataDir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o000))

	_, err := Load(nil)
	require.Error(t, err)
}

func TestSaveAgentCommand(t *testing.T) {
	clearEnv(t)
	dataDir := filepath.Join(t.TempDir(), "nested")
	writeConfig(t, dataDir, map[string]any{
		"codex_sessions_dir": "/keep/me",
	})
	cfg := Config{DataDir: dataDir}

	require.NoError(t, cfg.SaveAgentCommand("codex resume --last"))
	assert.Equal(t, "codex resume --last", cfg.AgentCommand)

	data, err := os.ReadFile(filepath.Join(dataDir, "config.json"))
	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "/keep/me", got["codex_sessions_dir"])
	assert.Equal(t, "codex resume --last", got["agent_command"])

	info, err := os.Stat(filepath.Join(dataDir, "config.json"))
	require.NoError(t, err)
	if runtime.GOOS != "windows" {
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	}
}

func TestSaveAgentCommand_Errors(t *testing.T) {
	t.Run("no data dir", func(t *testing.T) {
		cfg := Config{}
		assert.Error(t, cfg.SaveAgentCommand("x"))
	})

	t.Run("invalid existing config", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(
			filepath.Join(dir, "config.json"), []byte("not json"), 0o600,
		))
		cfg := Config{DataDir: dir, AgentCommand: "old"}
		err := cfg.SaveAgentCommand("new")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "existing config is invalid")
		assert.Equal(t, "old", cfg.AgentCommand)
	})
}

func TestEnsureFile(t *testing.T) {
	dataDir := filepath.Join(t.TempDir(), "data")
	cfg := Config{DataDir: dataDir}

	path, err := cfg.EnsureFile()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dataDir, "config.json"), path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(data))

	require.NoError(t, cfg.SaveAgentCommand("codex resume"))
	_, err = cfg.EnsureFile()
	require.NoError(t, err)
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "codex resume")

	_, err = (&Config{}).EnsureFile()
	assert.Error(t, err)
}
