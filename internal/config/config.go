package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"
)

// Environment variables read by Load.
const (
	EnvSessionsDir = "CODEX_SESSIONS_DIR"
	EnvDataDir     = "CODEXSESSIONS_DATA_DIR"
	EnvAgent       = "CODEXSESSIONS_AGENT"
	EnvLogLevel    = "CODEXSESSIONS_LOG_LEVEL"
)

const (
	DefaultAgentCommand = "codex resume"
	DefaultLogLevel     = "warn"
)

// Config holds all application configuration.
type Config struct {
	SessionsDir  string `json:"codex_sessions_dir,omitempty"`
	DataDir      string `json:"-"`
	DBPath       string `json:"-"`
	AgentCommand string `json:"agent_command,omitempty"`
	LogLevel     string `json:"log_level,omitempty"`

	// fromEnv records which file-backed keys were set by an
	// environment variable; the config file does not override
	// them.
	fromEnv map[string]bool
}

// Default returns a Config with default values. A missing home
// directory is not an error: the sessions root and data dir are
// left empty and reported as unavailable.
func Default() Config {
	cfg := Config{
		AgentCommand: DefaultAgentCommand,
		LogLevel:     DefaultLogLevel,
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return cfg
	}
	cfg.SessionsDir = filepath.Join(home, ".codex", "sessions")
	cfg.DataDir = filepath.Join(home, ".codexsessions")
	cfg.DBPath = filepath.Join(cfg.DataDir, "worktrees.db")
	return cfg
}

// Load builds a Config by layering: defaults < config file < env < flags.
// The provided FlagSet must already be parsed by the caller.
// Only flags that were explicitly set override the lower layers.
// A nil FlagSet skips the flag layer.
func Load(fs *pflag.FlagSet) (Config, error) {
	cfg := Default()
	cfg.loadEnv()
	if fs != nil {
		if f := fs.Lookup("data-dir"); f != nil && f.Changed {
			cfg.DataDir = f.Value.String()
		}
	}
	if err := cfg.loadFile(); err != nil {
		return cfg, fmt.Errorf("loading config file: %w", err)
	}
	applyFlags(&cfg, fs)
	cfg.setDBPath()
	return cfg, nil
}

// SessionsRoot returns the Codex sessions partition root and
// whether one is available.
func (c *Config) SessionsRoot() (string, bool) {
	return c.SessionsDir, c.SessionsDir != ""
}

// ConfigPath returns the location of config.json, or "" when no
// data directory is known.
func (c *Config) ConfigPath() string {
	if c.DataDir == "" {
		return ""
	}
	return filepath.Join(c.DataDir, "config.json")
}

func (c *Config) setDBPath() {
	if c.DataDir == "" {
		c.DBPath = ""
		return
	}
	c.DBPath = filepath.Join(c.DataDir, "worktrees.db")
}

func (c *Config) loadFile() error {
	path := c.ConfigPath()
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	var file struct {
		SessionsDir  string `json:"codex_sessions_dir"`
		AgentCommand string `json:"agent_command"`
		LogLevel     string `json:"log_level"`
	}
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parsing config: %w", err)
	}
	// loadEnv runs before loadFile, so env values win.
	if file.SessionsDir != "" && !c.fromEnv["codex_sessions_dir"] {
		c.SessionsDir = file.SessionsDir
	}
	if file.AgentCommand != "" && !c.fromEnv["agent_command"] {
		c.AgentCommand = file.AgentCommand
	}
	if file.LogLevel != "" && !c.fromEnv["log_level"] {
		c.LogLevel = file.LogLevel
	}
	return nil
}

func (c *Config) loadEnv() {
	c.fromEnv = make(map[string]bool)
	if v := os.Getenv(EnvSessionsDir); v != "" {
		c.SessionsDir = v
		c.fromEnv["codex_sessions_dir"] = true
	}
	if v := os.Getenv(EnvAgent); v != "" {
		c.AgentCommand = v
		c.fromEnv["agent_command"] = true
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
		c.fromEnv["log_level"] = true
	}
	if v := os.Getenv(EnvDataDir); v != "" {
		c.DataDir = v
	}
}

// RegisterGlobalFlags registers the flags shared by every
// subcommand on fs.
func RegisterGlobalFlags(fs *pflag.FlagSet) {
	fs.String(
		"sessions-dir", "",
		"Codex sessions directory (overrides "+EnvSessionsDir+")",
	)
	fs.String(
		"data-dir", "",
		"Data directory for config and worktree registry",
	)
	fs.String(
		"log-level", "",
		"Log level: debug, info, warn, error",
	)
}

// applyFlags copies explicitly-set flags from fs into cfg.
func applyFlags(cfg *Config, fs *pflag.FlagSet) {
	if fs == nil {
		return
	}
	fs.Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "sessions-dir":
			cfg.SessionsDir = f.Value.String()
		case "data-dir":
			cfg.DataDir = f.Value.String()
		case "log-level":
			cfg.LogLevel = f.Value.String()
		}
	})
}

// SaveAgentCommand persists the agent command to the config
// file, preserving any other keys already present.
func (c *Config) SaveAgentCommand(command string) error {
	if err := c.updateFile("agent_command", command); err != nil {
		return err
	}
	c.AgentCommand = command
	return nil
}

// EnsureFile creates an empty config file when none exists and
// returns its path.
func (c *Config) EnsureFile() (string, error) {
	path := c.ConfigPath()
	if path == "" {
		return "", fmt.Errorf("no data directory configured")
	}
	if _, err := os.Stat(path); err == nil {
		return path, nil
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("checking config file: %w", err)
	}
	if err := os.MkdirAll(c.DataDir, 0o700); err != nil {
		return "", fmt.Errorf("creating data dir: %w", err)
	}
	if err := os.WriteFile(path, []byte("{}\n"), 0o600); err != nil {
		return "", fmt.Errorf("writing config: %w", err)
	}
	return path, nil
}

func (c *Config) updateFile(key string, value any) error {
	path := c.ConfigPath()
	if path == "" {
		return fmt.Errorf("no data directory configured")
	}
	if err := os.MkdirAll(c.DataDir, 0o700); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}

	existing := make(map[string]any)
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading config file: %w", err)
	}
	if err == nil {
		if err := json.Unmarshal(data, &existing); err != nil {
			return fmt.Errorf(
				"existing config is invalid, cannot update: %w",
				err,
			)
		}
	}

	existing[key] = value
	out, err := json.MarshalIndent(existing, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, out, 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}
