package ui

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/iopwsy/iop-eln/internal/prefs"
	"github.com/iopwsy/iop-eln/internal/state"
	"github.com/iopwsy/iop-eln/pkg/eln"
)

type fakeService struct {
	mu        sync.Mutex
	names     []string
	datasets  map[string][]eln.Dataset
	listErr   error
	exportErr error
	queries   []eln.ExportQuery
}

func (f *fakeService) ListNotebooks(context.Context) ([]string, error) {
	return f.names, f.listErr
}

func (f *fakeService) Export(_ context.Context, q eln.ExportQuery) ([]eln.Dataset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	if f.exportErr != nil {
		return nil, f.exportErr
	}
	return f.datasets[q.Notebooks[0]], nil
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func sized(t *testing.T, m Model) Model {
	t.Helper()
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return next.(Model)
}

// drain runs cmd and feeds any resulting app message back into the model.
func drain(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	if cmd == nil {
		return m
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			m = drain(t, m, c)
		}
		return m
	}
	switch msg.(type) {
	case notebooksMsg, datasetsMsg:
		next, _ := m.Update(msg)
		return next.(Model)
	}
	return m
}

func sampleService() *fakeService {
	return &fakeService{
		names: []string{"lab-a", "lab-b", "lab-c"},
		datasets: map[string][]eln.Dataset{
			"lab-b": {{
				UID:   "r-1",
				Title: "run 1",
				Data: []eln.ModuleData{{
					Name: "conditions",
					Type: "form",
					Data: []eln.EntryData{
						{Name: "temperature", Type: "number", Data: 4.2},
						{Name: "sample", Type: "text", Data: "Cu"},
					},
				}},
			}},
		},
	}
}

func TestInit_ListsNotebooksAndSelectsLastNotebook(t *testing.T) {
	m := sized(t, New(Options{Service: sampleService(), LastNotebook: "lab-c"}))
	m = drain(t, m, m.Init())

	if m.loading {
		t.Fatalf("loading = true after notebooks arrived")
	}
	if len(m.notebooks) != 3 {
		t.Fatalf("notebooks = %v, want 3 names", m.notebooks)
	}
	if m.selected != 2 {
		t.Fatalf("selected = %d, want 2 (lab-c)", m.selected)
	}
	if !strings.Contains(m.View(), "lab-b") {
		t.Fatalf("View missing notebook name:\n%s", m.View())
	}
}

func TestNavigation_ClampsSelection(t *testing.T) {
	m := sized(t, New(Options{Service: sampleService()}))
	m = drain(t, m, m.Init())

	for _, k := range []string{"k", "j", "j", "j", "j"} {
		next, _ := m.Update(keyRunes(k))
		m = next.(Model)
	}
	if m.selected != 2 {
		t.Fatalf("selected = %d, want 2", m.selected)
	}
	next, _ := m.Update(keyRunes("g"))
	if got := next.(Model).selected; got != 0 {
		t.Fatalf("selected after g = %d, want 0", got)
	}
}

func TestOpen_ExportsSelectedNotebookAndRemembersIt(t *testing.T) {
	svc := sampleService()
	prefsPath := filepath.Join(t.TempDir(), "prefs.toml")
	m := sized(t, New(Options{
		Service:   svc,
		PrefsPath: prefsPath,
		Query:     eln.ExportQuery{Keywords: []string{"cu"}},
	}))
	m = drain(t, m, m.Init())

	next, _ := m.Update(keyRunes("j"))
	m = next.(Model)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)
	if m.view != viewRecords || m.notebook != "lab-b" || !m.loading {
		t.Fatalf("after enter: view=%v notebook=%q loading=%v", m.view, m.notebook, m.loading)
	}
	m = drain(t, m, cmd)

	if len(svc.queries) != 1 {
		t.Fatalf("export calls = %d, want 1", len(svc.queries))
	}
	q := svc.queries[0]
	if len(q.Notebooks) != 1 || q.Notebooks[0] != "lab-b" || len(q.Keywords) != 1 {
		t.Fatalf("export query = %#v, want lab-b with keyword filter", q)
	}

	view := m.View()
	for _, want := range []string{"run 1", "conditions", "temperature", "4.2", "Cu"} {
		if !strings.Contains(view, want) {
			t.Fatalf("View missing %q:\n%s", want, view)
		}
	}

	p, err := prefs.Load(prefsPath)
	if err != nil {
		t.Fatalf("prefs.Load: %v", err)
	}
	if p.LastNotebook != "lab-b" {
		t.Fatalf("LastNotebook = %q, want lab-b", p.LastNotebook)
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if got := next.(Model).view; got != viewNotebooks {
		t.Fatalf("view after esc = %v, want notebooks", got)
	}
}

func TestStaleExportIsIgnored(t *testing.T) {
	m := sized(t, New(Options{Service: sampleService()}))
	m.notebook = "lab-a"
	m.view = viewRecords

	next, _ := m.Update(datasetsMsg{notebook: "lab-b", datasets: []eln.Dataset{{Title: "x"}}})
	if got := next.(Model); len(got.datasets) != 0 || !got.loading {
		t.Fatalf("stale export applied: %#v", got.datasets)
	}
}

func TestErrorsAreShownAndRetried(t *testing.T) {
	svc := sampleService()
	svc.listErr = eln.ErrAuthentication
	m := sized(t, New(Options{Service: svc}))
	m = drain(t, m, m.Init())

	if !errors.Is(m.err, eln.ErrAuthentication) {
		t.Fatalf("err = %v, want ErrAuthentication", m.err)
	}
	if !strings.Contains(m.View(), "AUTH FAILED") {
		t.Fatalf("View missing auth label:\n%s", m.View())
	}

	svc.listErr = nil
	next, cmd := m.Update(keyRunes("r"))
	m = drain(t, next.(Model), cmd)
	if m.err != nil || len(m.notebooks) != 3 {
		t.Fatalf("after retry: err=%v notebooks=%v", m.err, m.notebooks)
	}
}

func TestRepeatedFailuresShowOffline(t *testing.T) {
	svc := sampleService()
	svc.listErr = eln.ErrServer
	m := sized(t, New(Options{Service: state.New(svc)}))
	m = drain(t, m, m.Init())
	if strings.Contains(m.View(), "OFFLINE") {
		t.Fatalf("View shows OFFLINE after one failure:\n%s", m.View())
	}

	next, cmd := m.Update(keyRunes("r"))
	m = drain(t, next.(Model), cmd)
	if !strings.Contains(m.View(), "OFFLINE SERVER ERROR") {
		t.Fatalf("View missing offline label:\n%s", m.View())
	}
}

func TestCycleThemeSavesPrefs(t *testing.T) {
	prefsPath := filepath.Join(t.TempDir(), "prefs.toml")
	m := sized(t, New(Options{Service: sampleService(), PrefsPath: prefsPath}))

	next, _ := m.Update(keyRunes("T"))
	if got := next.(Model).theme.Name; got != "Slate" {
		t.Fatalf("theme = %q, want Slate", got)
	}
	p, _ := prefs.Load(prefsPath)
	if p.Theme != "Slate" {
		t.Fatalf("saved theme = %q, want Slate", p.Theme)
	}
}

func TestHelpOverlayClosesOnAnyKey(t *testing.T) {
	m := sized(t, New(Options{Service: sampleService()}))
	next, _ := m.Update(keyRunes("?"))
	m = next.(Model)
	if !m.showHelp || !strings.Contains(m.View(), "Keyboard Shortcuts") {
		t.Fatalf("help overlay not shown")
	}
	next, _ = m.Update(keyRunes("x"))
	if next.(Model).showHelp {
		t.Fatalf("help overlay still shown")
	}
}

func TestClassifyError(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{eln.ErrUnknownNotebook, "UNKNOWN NOTEBOOK"},
		{&eln.StatusError{Endpoint: "/x", StatusCode: 502, Err: eln.ErrExportFailed}, "HTTP 502"},
		{eln.ErrServer, "SERVER ERROR"},
		{context.DeadlineExceeded, "TIMEOUT"},
		{errors.New("boom"), "ERROR"},
	}
	for _, tc := range cases {
		if got := classifyError(tc.err); got != tc.want {
			t.Fatalf("classifyError(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}
