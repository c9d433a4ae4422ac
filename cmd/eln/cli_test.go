package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iopwsy/iop-eln/pkg/eln"
)

const exportReply = `{"errcode":0,"dataset":[
	{"id":1,"uid":"r-1","title":"run 1","data":[
		{"uid":7,"name":"conditions","type":"form","data":[
			{"uid":8,"name":"temperature","type":"number","data":4.2},
			{"uid":9,"name":"sample","type":"text","data":"Cu"}
		]}
	]}
]}`

// server fakes the token and API endpoints of the platform.
type server struct {
	mu     sync.Mutex
	calls  map[string]int
	bodies map[string]map[string]any
}

func newServer(t *testing.T) (*server, string) {
	t.Helper()
	s := &server{calls: map[string]int{}, bodies: map[string]map[string]any{}}
	ts := httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(ts.Close)

	cfg := filepath.Join(t.TempDir(), "config.toml")
	body := "token_url = \"" + ts.URL + "/open/tokens2.php\"\n" +
		"api_base = \"" + ts.URL + "/open_eln/\"\n" +
		"username = \"alice\"\npassword = \"pw\"\n"
	require.NoError(t, os.WriteFile(cfg, []byte(body), 0o600))
	return s, cfg
}

func (s *server) serve(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[r.URL.Path]++

	w.Header().Set("Content-Type", "application/json")
	switch r.URL.Path {
	case "/open/tokens2.php":
		_, _ = io.WriteString(w, `{"access":{"token":"tok"}}`)
	case "/open_eln/eln_api_elns.php":
		_, _ = io.WriteString(w, `{"errcode":0,"my":[{"showtext":"lab-a"},{"showtext":"lab-b"}]}`)
	case "/open_eln/eln_api_export.php":
		s.record(r)
		_, _ = io.WriteString(w, exportReply)
	case "/open_eln/eln_api_import.php", "/open_eln/eln_api_update.php":
		s.record(r)
		_, _ = io.WriteString(w, `{"errcode":0}`)
	default:
		http.NotFound(w, r)
	}
}

func (s *server) record(r *http.Request) {
	var body map[string]any
	_ = json.NewDecoder(r.Body).Decode(&body)
	s.bodies[r.URL.Path] = body
}

func (s *server) body(name string) map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bodies["/open_eln/eln_api_"+name+".php"]
}

func (s *server) total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		n += c
	}
	return n
}

func execute(t *testing.T, cfg string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--config", cfg, "--prefs", filepath.Join(t.TempDir(), "prefs.toml")}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestVersion(t *testing.T) {
	_, cfg := newServer(t)
	out, err := execute(t, cfg, "version")
	require.NoError(t, err)
	assert.Equal(t, "eln version dev\n", out)
}

func TestRoot_ShowsHelp(t *testing.T) {
	_, cfg := newServer(t)
	out, err := execute(t, cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "Usage:")
	assert.Contains(t, out, "import")
}

func TestList_JSON(t *testing.T) {
	_, cfg := newServer(t)
	out, err := execute(t, cfg, "list", "--format", "json")
	require.NoError(t, err)
	assert.JSONEq(t, `["lab-a","lab-b"]`, out)
}

func TestList_RejectsUnknownFormat(t *testing.T) {
	_, cfg := newServer(t)
	_, err := execute(t, cfg, "list", "-o", "csv")
	assert.ErrorContains(t, err, "unknown output format")
}

func TestImport_DryRunSendsNothing(t *testing.T) {
	srv, cfg := newServer(t)
	file := writeFile(t, "records.yaml", "- temperature: 4.2\n  sample: Cu\n- temperature: 5\n")

	out, err := execute(t, cfg, "import", "lab-a", "tpl", file,
		"--dry-run", "--uuid", "--uid", "given", "--title", "first", "--quote", `{"ref":1}`, "-o", "json")
	require.NoError(t, err)
	assert.Zero(t, srv.total())

	var body eln.ImportBody
	require.NoError(t, json.Unmarshal([]byte(out), &body))
	assert.Equal(t, "lab-a", body.ELN)
	assert.Equal(t, "tpl", body.Template)
	require.Len(t, body.Dataset, 2)
	assert.Equal(t, "given", body.Dataset[0].UID)
	assert.Equal(t, "first", body.Dataset[0].Title)
	_, err = uuid.Parse(body.Dataset[1].UID)
	assert.NoError(t, err, "generated uid %q", body.Dataset[1].UID)
	assert.Equal(t, map[string]any{"ref": 1.0}, body.Quote)
}

func TestImport_Sends(t *testing.T) {
	srv, cfg := newServer(t)
	file := writeFile(t, "records.json", `[{"temperature": 4.2}]`)

	out, err := execute(t, cfg, "import", "lab-b", "tpl", file, "--keyword", "cu")
	require.NoError(t, err)
	assert.Contains(t, out, "imported 1 record(s) into lab-b")

	body := srv.body("import")
	require.NotNil(t, body)
	assert.Equal(t, "lab-b", body["eln"])
	dataset := body["dataset"].([]any)
	require.Len(t, dataset, 1)
	assert.Equal(t, "cu", dataset[0].(map[string]any)["keyword"])
}

func TestImport_Errors(t *testing.T) {
	srv, cfg := newServer(t)

	_, err := execute(t, cfg, "import", "lab-a", "tpl", writeFile(t, "empty.json", `[]`))
	assert.ErrorIs(t, err, eln.ErrEmptyInput)
	assert.Zero(t, srv.total())

	_, err = execute(t, cfg, "import", "lab-z", "tpl", writeFile(t, "one.json", `[{"a":1}]`))
	assert.ErrorIs(t, err, eln.ErrUnknownNotebook)
	assert.Nil(t, srv.body("import"))

	_, err = execute(t, cfg, "import", "lab-a", "tpl", writeFile(t, "one.json", `[{}]`), "--quote", "{")
	assert.ErrorContains(t, err, "--quote")
}

func TestExport_Table(t *testing.T) {
	srv, cfg := newServer(t)
	out, err := execute(t, cfg, "export", "lab-a", "--from", "2023-01-01", "--keyword", "cu", "-o", "table")
	require.NoError(t, err)
	for _, want := range []string{"run 1", "conditions", "temperature", "4.2"} {
		assert.Contains(t, out, want)
	}

	body := srv.body("export")
	assert.Equal(t, []any{"lab-a"}, body["eln"])
	assert.Equal(t, "2023-01-01", body["date_start"])
	assert.Equal(t, []any{"cu"}, body["keywords"])
	assert.NotContains(t, body, "date_end")
}

func TestExport_FlatJSON(t *testing.T) {
	_, cfg := newServer(t)
	out, err := execute(t, cfg, "export", "lab-a", "lab-b", "--flat", "-o", "json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"run 1":[{"temperature":4.2,"sample":"Cu"}]}`, out)
}

func TestUpdate_SingleRow(t *testing.T) {
	srv, cfg := newServer(t)
	file := writeFile(t, "row.json", `{"temperature": 4.2, "sample": "Cu"}`)

	out, err := execute(t, cfg, "update", "lab-a", "r-1", "conditions", "form", file, "--type", "temperature=number")
	require.NoError(t, err)
	assert.Contains(t, out, "added 1 module(s) to lab-a/r-1")

	body := srv.body("update")
	require.NotNil(t, body)
	assert.Equal(t, []any{map[string]any{"name": "conditions", "type": "form"}}, body["addModule"])
	assert.Equal(t, []any{
		map[string]any{"module": "conditions", "type": "text", "name": "sample", "data": "Cu"},
		map[string]any{"module": "conditions", "type": "number", "name": "temperature", "data": 4.2},
	}, body["add"])
}

func TestUpdate_DatasetDryRun(t *testing.T) {
	srv, cfg := newServer(t)
	file := writeFile(t, "rows.yaml", "- a: x\n- b: 2\n")

	out, err := execute(t, cfg, "update", "lab-a", "r-1", "m1", "form", file,
		"--module", "m2", "--kind", "table", "--type", "b=number", "--dry-run", "-o", "yaml")
	require.NoError(t, err)
	assert.Zero(t, srv.total())
	assert.Contains(t, out, "name: m2")
	assert.Contains(t, out, "type: table")
}

func TestUpdate_Errors(t *testing.T) {
	srv, cfg := newServer(t)
	rows := writeFile(t, "rows.json", `[{"a":"x"},{"b":"y"}]`)

	_, err := execute(t, cfg, "update", "lab-a", "r-1", "m1", "form", rows)
	assert.ErrorIs(t, err, eln.ErrLengthMismatch)

	_, err = execute(t, cfg, "update", "lab-a", "r-1", "m1", "echarts", writeFile(t, "row.json", `{"a":"x"}`))
	assert.ErrorIs(t, err, eln.ErrUnknownKind)

	_, err = execute(t, cfg, "update", "lab-a", "r-1", "m1", "form", writeFile(t, "row.json", `{"a":"x"}`), "--type", "a=blob")
	assert.ErrorIs(t, err, eln.ErrInvalidKind)

	assert.Zero(t, srv.total())
}
