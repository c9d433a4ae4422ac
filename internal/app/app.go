package app

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/iopwsy/iop-eln/internal/config"
	"github.com/iopwsy/iop-eln/internal/prefs"
	"github.com/iopwsy/iop-eln/internal/state"
	"github.com/iopwsy/iop-eln/internal/ui"
	"github.com/iopwsy/iop-eln/pkg/eln"
)

// Options configure the runtime.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses ~/.config/iop-eln/prefs.toml
	Verbose    bool
	Stderr     io.Writer // log destination; nil means os.Stderr
	HTTPClient eln.Doer  // nil uses an http.Client with the configured timeout
}

// Runtime holds everything a command needs to talk to the ELN.
type Runtime struct {
	Config    config.Config
	Prefs     prefs.Prefs
	PrefsPath string
	Logger    *slog.Logger
	Session   *eln.Session

	stderr io.Writer
	level  slog.Level
}

// Load reads configuration and preferences and builds an unauthenticated
// session. The session authenticates on its first request.
func Load(opts Options) (*Runtime, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	level := cfg.Level()
	if opts.Verbose {
		level = slog.LevelDebug
	}
	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}
	logger := NewLogger(stderr, level)
	if !cfg.HasCredentials() {
		logger.Warn("no ELN credentials configured", "hint", "set username/password in the config file or ELN_USERNAME/ELN_PASSWORD")
	}

	sessionOpts := []eln.Option{eln.WithLogger(logger)}
	if opts.HTTPClient != nil {
		sessionOpts = append(sessionOpts, eln.WithHTTPClient(opts.HTTPClient))
	}
	session, err := eln.NewSession(cfg.Session(), sessionOpts...)
	if err != nil {
		return nil, fmt.Errorf("init session: %w", err)
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}
	userPrefs, _ := prefs.Load(prefsPath)

	logger.Debug("runtime ready", "token_url", cfg.TokenURL, "api_base", cfg.APIBase, "timeout", cfg.Timeout)
	return &Runtime{
		Config:    cfg,
		Prefs:     userPrefs,
		PrefsPath: prefsPath,
		Logger:    logger,
		Session:   session,
		stderr:    stderr,
		level:     level,
	}, nil
}

// NewLogger returns a text logger writing to w at level.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Browse runs the notebook browser until the user quits or ctx is cancelled.
// The browser shares the session through a state.Store.
func (r *Runtime) Browse(ctx context.Context, query eln.ExportQuery) error {
	store := state.New(r.Session)
	logger, flush := r.browserLogger()
	defer flush()
	err := ui.Run(ui.Options{
		Context:      ctx,
		Service:      store,
		Query:        query,
		ThemeName:    r.Prefs.Theme,
		PrefsPath:    r.PrefsPath,
		LastNotebook: r.Prefs.LastNotebook,
		Logger:       logger,
	})

	snap := store.Snapshot()
	r.Logger.Debug("browser closed",
		"requests", snap.Requests,
		"notebooks", len(snap.Notebooks),
		"last_notebook", snap.LastNotebook,
		"records", snap.LastRecordCount,
		"failures", snap.ConsecutiveFailures,
	)
	if err != nil {
		return fmt.Errorf("run browser: %w", err)
	}
	return nil
}

// browserLogger returns a logger for the browser and a func that writes what
// it logged to stderr. The browser owns the terminal until it exits, so its
// log lines are held until then.
func (r *Runtime) browserLogger() (*slog.Logger, func()) {
	stderr := r.stderr
	if stderr == nil {
		stderr = os.Stderr
	}
	var buf bytes.Buffer
	logger := NewLogger(&buf, r.level)
	return logger, func() {
		_, _ = buf.WriteTo(stderr)
	}
}
