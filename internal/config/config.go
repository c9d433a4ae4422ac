package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/iopwsy/iop-eln/pkg/eln"
)

// Config captures the endpoints and credentials the ELN client needs.
type Config struct {
	TokenURL string
	APIBase  string
	Username string
	Password string
	Timeout  time.Duration
	LogLevel string
}

const (
	defaultConfigPath = "~/.config/iop-eln/config.toml"
	defaultTimeout    = 60 * time.Second
	defaultLogLevel   = "info"
)

// Credential environment variables, checked in order when the file leaves
// a credential empty.
var (
	usernameEnv = []string{"ELN_USERNAME", "eln_username"}
	passwordEnv = []string{"ELN_PASSWORD", "eln_password"}
)

// Load locates and parses the config file, falling back to defaults when missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		TokenURL: eln.DefaultTokenURL,
		APIBase:  eln.DefaultAPIBase,
		Timeout:  defaultTimeout,
		LogLevel: defaultLogLevel,
	}

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg.applyEnv()
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		TokenURL       string `toml:"token_url"`
		APIBase        string `toml:"api_base"`
		Username       string `toml:"username"`
		Password       string `toml:"password"`
		TimeoutSeconds int    `toml:"timeout_seconds"`
		LogLevel       string `toml:"log_level"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.TokenURL); v != "" {
		cfg.TokenURL = v
	}
	if v := strings.TrimSpace(raw.APIBase); v != "" {
		cfg.APIBase = v
	}
	if raw.TimeoutSeconds > 0 {
		cfg.Timeout = time.Duration(raw.TimeoutSeconds) * time.Second
	}
	if v := strings.TrimSpace(raw.LogLevel); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	cfg.Username = strings.TrimSpace(raw.Username)
	cfg.Password = raw.Password
	cfg.applyEnv()

	return cfg, nil
}

func (c *Config) applyEnv() {
	if c.Username == "" {
		c.Username = strings.TrimSpace(firstEnv(usernameEnv))
	}
	if c.Password == "" {
		c.Password = firstEnv(passwordEnv)
	}
}

// firstEnv returns the first non-blank variable, untrimmed.
func firstEnv(keys []string) string {
	for _, key := range keys {
		if v := os.Getenv(key); strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// Session returns the session configuration for the library.
func (c Config) Session() eln.Config {
	return eln.Config{
		Username: c.Username,
		Password: c.Password,
		TokenURL: c.TokenURL,
		APIBase:  c.APIBase,
		Timeout:  c.Timeout,
	}
}

// Level maps LogLevel to a slog level. Unknown names mean info.
func (c Config) Level() slog.Level {
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// HasCredentials reports whether both username and password are set.
func (c Config) HasCredentials() bool {
	return c.Username != "" && c.Password != ""
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
