package app

import (
	"bytes"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iopwsy/iop-eln/internal/prefs"
)

type nopDoer struct{}

func (nopDoer) Do(*http.Request) (*http.Response, error) { return nil, http.ErrServerClosed }

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoad_BuildsRuntime(t *testing.T) {
	t.Setenv("ELN_USERNAME", "")
	t.Setenv("eln_username", "")
	prefsPath := filepath.Join(t.TempDir(), "prefs.toml")
	if err := prefs.Save(prefsPath, prefs.Prefs{Theme: "Slate", LastNotebook: "lab-a"}); err != nil {
		t.Fatalf("prefs.Save: %v", err)
	}
	var stderr bytes.Buffer

	rt, err := Load(Options{
		ConfigPath: writeConfig(t, "username = \"alice\"\npassword = \"pw\"\napi_base = \"http://127.0.0.1:1/open_eln\"\n"),
		PrefsPath:  prefsPath,
		Stderr:     &stderr,
		HTTPClient: nopDoer{},
	})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if rt.Session == nil || rt.Session.Authenticated() {
		t.Fatalf("Session = %#v, want unauthenticated session", rt.Session)
	}
	if rt.Prefs.Theme != "Slate" || rt.Prefs.LastNotebook != "lab-a" {
		t.Fatalf("Prefs = %#v, want stored prefs", rt.Prefs)
	}
	if rt.PrefsPath != prefsPath {
		t.Fatalf("PrefsPath = %q, want %q", rt.PrefsPath, prefsPath)
	}
	if stderr.Len() != 0 {
		t.Fatalf("unexpected log output at info level: %q", stderr.String())
	}
}

func TestLoad_WarnsWithoutCredentials(t *testing.T) {
	for _, key := range []string{"ELN_USERNAME", "ELN_PASSWORD", "eln_username", "eln_password"} {
		t.Setenv(key, "")
	}
	var stderr bytes.Buffer
	_, err := Load(Options{
		ConfigPath: writeConfig(t, ""),
		PrefsPath:  filepath.Join(t.TempDir(), "prefs.toml"),
		Stderr:     &stderr,
	})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !strings.Contains(stderr.String(), "no ELN credentials configured") {
		t.Fatalf("stderr = %q, want credentials warning", stderr.String())
	}
}

func TestLoad_VerboseLogsDebug(t *testing.T) {
	t.Setenv("ELN_USERNAME", "u")
	t.Setenv("ELN_PASSWORD", "p")
	var stderr bytes.Buffer
	_, err := Load(Options{
		ConfigPath: writeConfig(t, ""),
		PrefsPath:  filepath.Join(t.TempDir(), "prefs.toml"),
		Verbose:    true,
		Stderr:     &stderr,
	})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !strings.Contains(stderr.String(), "runtime ready") {
		t.Fatalf("stderr = %q, want debug line", stderr.String())
	}
}

func TestLoad_BadConfigFails(t *testing.T) {
	_, err := Load(Options{ConfigPath: writeConfig(t, "api_base = ["), Stderr: &bytes.Buffer{}})
	if err == nil || !strings.Contains(err.Error(), "load config") {
		t.Fatalf("Load error = %v, want load config error", err)
	}
}

func TestLoad_BadAPIBaseFails(t *testing.T) {
	_, err := Load(Options{
		ConfigPath: writeConfig(t, "api_base = \"http://\"\n"),
		PrefsPath:  filepath.Join(t.TempDir(), "prefs.toml"),
		Stderr:     &bytes.Buffer{},
	})
	if err == nil || !strings.Contains(err.Error(), "init session") {
		t.Fatalf("Load error = %v, want init session error", err)
	}
}

func TestNewLogger_FiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, slog.LevelWarn)
	logger.Info("hidden")
	logger.Warn("shown", "k", "v")
	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "shown") || !strings.Contains(out, "k=v") {
		t.Fatalf("log output = %q", out)
	}
}

func TestBrowserLogger_HoldsLinesUntilFlush(t *testing.T) {
	t.Setenv("ELN_USERNAME", "u")
	t.Setenv("ELN_PASSWORD", "p")
	var stderr bytes.Buffer
	rt, err := Load(Options{
		ConfigPath: writeConfig(t, ""),
		PrefsPath:  filepath.Join(t.TempDir(), "prefs.toml"),
		Stderr:     &stderr,
	})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	logger, flush := rt.browserLogger()
	logger.Debug("hidden")
	logger.Warn("export failed", "notebook", "lab-a")
	if stderr.Len() != 0 {
		t.Fatalf("stderr = %q before flush, want empty", stderr.String())
	}

	flush()
	out := stderr.String()
	if !strings.Contains(out, "export failed") || !strings.Contains(out, "notebook=lab-a") {
		t.Fatalf("stderr = %q, want buffered warning", out)
	}
	if strings.Contains(out, "hidden") {
		t.Fatalf("stderr = %q, want debug filtered at info level", out)
	}
}
