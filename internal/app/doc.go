// Package app is the composition root of the eln command.
//
// # Overview
//
// This package wires configuration, logging, preferences and the ELN session
// together. Every subcommand of cmd/eln calls Load once and then works
// against the returned Runtime; only the browser needs more wiring, which
// Runtime.Browse provides.
//
// # Initialization
//
// Load follows a fixed order:
//
//  1. Read the TOML config (config.Load), defaulting to
//     ~/.config/iop-eln/config.toml
//  2. Pick the log level: debug when Options.Verbose is set, otherwise the
//     configured log_level
//  3. Build a slog text logger on Options.Stderr (os.Stderr when nil)
//  4. Warn when neither the file nor the environment supplies credentials
//  5. Build an unauthenticated eln.Session that logs through the same logger
//     and uses Options.HTTPClient when given
//  6. Load preferences (prefs.Load), defaulting to
//     ~/.config/iop-eln/prefs.toml
//
// The session authenticates lazily, so Load itself makes no network request.
//
// # Data Flow
//
//	┌──────────────┐
//	│   Load()     │
//	└──────┬───────┘
//	       ├─────> config.Load()     endpoints, credentials, log level
//	       ├─────> NewLogger()       slog text handler on stderr
//	       ├─────> eln.NewSession()  token auth + API client
//	       └─────> prefs.Load()      theme, format, last notebook
//
//	Runtime.Browse():
//	┌─────────────────────────────────────────┐
//	│ state.New(session)   serialized calls   │
//	│ ui.Run(...)          blocks until quit  │
//	│ flush browser log    after alt screen   │
//	│ log store snapshot   debug level        │
//	└─────────────────────────────────────────┘
//
// # Logging
//
// Commands log to stderr as they run. The browser owns the terminal while it
// is open, so its warnings are held in memory and written to stderr once it
// exits, at the same level as the rest of the runtime.
//
// # Error Handling
//
// Load fails when:
//   - the config file exists but cannot be read or parsed ("load config")
//   - the configured endpoints are not valid URLs ("init session")
//
// Missing config or prefs files are not errors. A malformed prefs file
// falls back to defaults as well. Browse returns the browser's error
// wrapped as "run browser"; request failures inside the browser are shown
// in its header and never end the program.
//
// # Usage Example
//
//	rt, err := app.Load(app.Options{ConfigPath: "", Verbose: false})
//	if err != nil {
//		return err
//	}
//	names, err := rt.Session.ListNotebooks(ctx)
//
//	// or, for the interactive browser:
//	err = rt.Browse(ctx, eln.ExportQuery{})
//
// # Dependencies
//
//   - config: TOML configuration and credentials
//   - prefs: per-user preferences
//   - state: serialized access to the session for the browser
//   - ui: the Bubble Tea browser
//   - pkg/eln: the ELN client
package app
