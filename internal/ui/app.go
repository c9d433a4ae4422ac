package ui

import (
	"context"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/iopwsy/iop-eln/internal/prefs"
	"github.com/iopwsy/iop-eln/pkg/eln"
)

type view int

const (
	viewNotebooks view = iota
	viewRecords
)

// Options configures the browser.
type Options struct {
	Context context.Context
	Service eln.NotebookService
	// Query carries the export filters. Its notebook list is replaced by
	// the notebook being opened.
	Query        eln.ExportQuery
	ThemeName    string
	PrefsPath    string
	LastNotebook string
	Logger       *slog.Logger
}

// Model is the root browser state for Bubble Tea.
type Model struct {
	ctx       context.Context
	service   eln.NotebookService
	query     eln.ExportQuery
	prefsPath string
	logger    *slog.Logger

	keys     keyMap
	theme    Theme
	view     view
	width    int
	height   int
	ready    bool
	showHelp bool

	notebooks    []string
	selected     int
	lastNotebook string

	notebook string
	datasets []eln.Dataset
	records  viewport.Model

	loading     bool
	spinner     spinner.Model
	err         error
	lastUpdated time.Time
}

// New creates a browser model. Notebooks are fetched by Init.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return Model{
		ctx:          ctx,
		service:      opts.Service,
		query:        opts.Query,
		prefsPath:    opts.PrefsPath,
		logger:       logger,
		keys:         DefaultKeyMap(),
		theme:        GetTheme(opts.ThemeName),
		lastNotebook: opts.LastNotebook,
		loading:      true,
		spinner:      spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, listNotebooksCmd(m.ctx, m.service))
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.records = viewport.New(m.width, m.bodyHeight())
		} else {
			m.records.Width = m.width
			m.records.Height = m.bodyHeight()
		}
		m.ready = true
		m.records.SetContent(m.renderRecords())
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case notebooksMsg:
		m.loading = false
		m.err = msg.err
		if msg.err != nil {
			m.logger.Warn("list notebooks failed", "error", msg.err)
			return m, nil
		}
		m.notebooks = msg.names
		m.selected = indexOf(m.notebooks, m.lastNotebook)
		m.lastUpdated = time.Now()
		return m, nil

	case datasetsMsg:
		if msg.notebook != m.notebook {
			return m, nil
		}
		m.loading = false
		m.err = msg.err
		if msg.err != nil {
			m.logger.Warn("export failed", "notebook", msg.notebook, "error", msg.err)
			m.datasets = nil
		} else {
			m.datasets = msg.datasets
			m.lastUpdated = time.Now()
		}
		m.records.SetContent(m.renderRecords())
		m.records.GotoTop()
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	return m.renderHeader() + "\n" + m.renderCommandBar() + "\n" + m.renderContent()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil
	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.savePrefs(func(p *prefs.Prefs) { p.Theme = m.theme.Name })
		m.records.SetContent(m.renderRecords())
		return m, nil
	case key.Matches(msg, m.keys.Refresh):
		return m.reload()
	}

	switch m.view {
	case viewRecords:
		return m.handleRecordsKey(msg)
	default:
		return m.handleNotebooksKey(msg)
	}
}

func (m Model) handleNotebooksKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	count := len(m.notebooks)
	if count == 0 {
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.Down):
		if m.selected < count-1 {
			m.selected++
		}
	case key.Matches(msg, m.keys.Up):
		if m.selected > 0 {
			m.selected--
		}
	case key.Matches(msg, m.keys.Top):
		m.selected = 0
	case key.Matches(msg, m.keys.Bottom):
		m.selected = count - 1
	case key.Matches(msg, m.keys.Open):
		return m.open(m.notebooks[m.selected])
	}
	return m, nil
}

func (m Model) handleRecordsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.view = viewNotebooks
		m.err = nil
		return m, nil
	case key.Matches(msg, m.keys.Top):
		m.records.GotoTop()
		return m, nil
	case key.Matches(msg, m.keys.Bottom):
		m.records.GotoBottom()
		return m, nil
	}
	var cmd tea.Cmd
	m.records, cmd = m.records.Update(msg)
	return m, cmd
}

// open switches to the records view and starts exporting name.
func (m Model) open(name string) (tea.Model, tea.Cmd) {
	m.view = viewRecords
	m.notebook = name
	m.datasets = nil
	m.err = nil
	m.loading = true
	m.records.SetContent("")
	if name != m.lastNotebook {
		m.lastNotebook = name
		m.savePrefs(func(p *prefs.Prefs) { p.LastNotebook = name })
	}
	return m, tea.Batch(m.spinner.Tick, exportCmd(m.ctx, m.service, m.query, name))
}

func (m Model) reload() (tea.Model, tea.Cmd) {
	if m.loading {
		return m, nil
	}
	m.loading = true
	m.err = nil
	if m.view == viewRecords {
		return m, tea.Batch(m.spinner.Tick, exportCmd(m.ctx, m.service, m.query, m.notebook))
	}
	return m, tea.Batch(m.spinner.Tick, listNotebooksCmd(m.ctx, m.service))
}

func (m Model) savePrefs(fn func(*prefs.Prefs)) {
	if m.prefsPath == "" {
		return
	}
	if err := prefs.Update(m.prefsPath, fn); err != nil {
		m.logger.Warn("save prefs failed", "path", m.prefsPath, "error", err)
	}
}

func (m Model) bodyHeight() int {
	if h := m.height - 2; h > 0 {
		return h
	}
	return 1
}

func (m Model) renderContent() string {
	if m.view == viewRecords {
		if m.loading || m.err != nil {
			return m.renderStatus()
		}
		return m.records.View()
	}
	return m.renderNotebooks()
}

func indexOf(values []string, target string) int {
	for i, v := range values {
		if v == target {
			return i
		}
	}
	return 0
}

// Messages

type notebooksMsg struct {
	names []string
	err   error
}

type datasetsMsg struct {
	notebook string
	datasets []eln.Dataset
	err      error
}

// Commands

func listNotebooksCmd(ctx context.Context, service eln.NotebookService) tea.Cmd {
	return func() tea.Msg {
		names, err := service.ListNotebooks(ctx)
		return notebooksMsg{names: names, err: err}
	}
}

func exportCmd(ctx context.Context, service eln.NotebookService, query eln.ExportQuery, notebook string) tea.Cmd {
	query.Notebooks = []string{notebook}
	return func() tea.Msg {
		datasets, err := service.Export(ctx, query)
		return datasetsMsg{notebook: notebook, datasets: datasets, err: err}
	}
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err := p.Run()
	return err
}
