// Package config loads the eln command's TOML configuration.
//
// # Overview
//
// The file carries the token and API endpoints plus the credentials used to
// authenticate a session. Every field is optional; a missing file yields the
// production endpoints and credentials taken from the environment.
//
// # Resolution
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/iop-eln/config.toml
//  3. A missing file falls back to defaults
//  4. Empty fields fall back to defaults
//  5. Empty credentials fall back to ELN_USERNAME/ELN_PASSWORD, then
//     eln_username/eln_password
//
// # Default Values
//
//   - Config file: ~/.config/iop-eln/config.toml
//   - Token endpoint: eln.DefaultTokenURL
//   - API base: eln.DefaultAPIBase
//   - Timeout: 60 seconds per request
//   - Log level: info
//
// # Configuration Fields
//
//   - TokenURL, APIBase: endpoints passed to eln.NewSession
//   - Username, Password: account credentials
//   - Timeout: bound on each HTTP request of the default client
//   - LogLevel: debug, info, warn (or warning) or error; anything else is info
//
// # TOML Format
//
//	token_url = "https://in.iphy.ac.cn/open/tokens2.php"
//	api_base = "https://eln.iphy.ac.cn:61263/open_eln/"
//	username = "alice"
//	password = "..."
//	timeout_seconds = 60
//	log_level = "info"
//
// # Credentials
//
// Values from the file win over the environment. Usernames are trimmed
// wherever they come from. Passwords are used exactly as written, in the
// file or in the environment, so surrounding spaces are kept. An environment
// password made only of spaces counts as unset.
//
// # Path Expansion
//
//   - Absolute paths: used as-is
//   - Tilde paths: expanded to the home directory
//   - Relative paths: made absolute against the current directory
//
// # Error Handling
//
// Load returns errors for:
//   - path expansion failures (no home directory)
//   - read errors other than os.ErrNotExist
//   - TOML parsing errors ("parse config")
//
// A missing config file is not an error. HasCredentials lets callers warn
// before the first request fails with eln.ErrAuthentication.
//
// # Usage Example
//
//	cfg, err := config.Load("")
//	if err != nil {
//		return err
//	}
//	session, err := eln.NewSession(cfg.Session())
package config
