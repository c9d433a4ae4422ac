package eln

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"
)

const (
	DefaultTokenURL = "https://in.iphy.ac.cn/open/tokens2.php"
	DefaultAPIBase  = "https://eln.iphy.ac.cn:61263/open_eln/"

	defaultUserAgent  = "iop-eln/0.1"
	defaultMaxRefresh = 5

	contentTypeForm = "application/x-www-form-urlencoded"
	contentTypeJSON = "application/json"
)

const (
	endpointList   = "elns"
	endpointImport = "import"
	endpointExport = "export"
	endpointUpdate = "update"
)

// Doer sends HTTP requests. *http.Client implements it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// NotebookService is the read side of a Session. The browser UI depends on
// it so tests can substitute a fake.
type NotebookService interface {
	ListNotebooks(ctx context.Context) ([]string, error)
	Export(ctx context.Context, query ExportQuery) ([]Dataset, error)
}

var _ NotebookService = (*Session)(nil)

// Config holds the credentials and endpoints of a Session.
type Config struct {
	Username string
	Password string
	// TokenURL and APIBase default to the public IOP endpoints.
	TokenURL  string
	APIBase   string
	UserAgent string
	// Timeout bounds each request of the default HTTP client. Zero means no
	// timeout.
	Timeout time.Duration
}

// Option configures a Session.
type Option func(*Session)

// WithHTTPClient replaces the transport.
func WithHTTPClient(d Doer) Option {
	return func(s *Session) {
		if d != nil {
			s.http = d
		}
	}
}

// WithLogger sets the logger. Sessions log nothing by default.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock sets the clock used for default dataset titles and uids.
func WithClock(clock func() time.Time) Option {
	return func(s *Session) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithMaxRefresh bounds how many times ListNotebooks re-authenticates when
// the server keeps asking for a refresh.
func WithMaxRefresh(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.maxRefresh = n
		}
	}
}

// Session talks to the ELN API on behalf of one user. It caches the access
// token and the notebook listing for its lifetime. A Session is not safe for
// concurrent use.
type Session struct {
	username   string
	password   string
	tokenURL   *url.URL
	apiBase    *url.URL
	userAgent  string
	http       Doer
	logger     *slog.Logger
	clock      func() time.Time
	maxRefresh int

	token     string
	notebooks []string
	listed    bool
}

// NewSession validates cfg and returns an unauthenticated Session.
func NewSession(cfg Config, opts ...Option) (*Session, error) {
	tokenURL, err := parseURL(cfg.TokenURL, DefaultTokenURL)
	if err != nil {
		return nil, fmt.Errorf("parse token url: %w", err)
	}
	apiBase, err := parseURL(cfg.APIBase, DefaultAPIBase)
	if err != nil {
		return nil, fmt.Errorf("parse api base: %w", err)
	}
	if !strings.HasSuffix(apiBase.Path, "/") {
		apiBase.Path += "/"
	}
	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	s := &Session{
		username:   cfg.Username,
		password:   cfg.Password,
		tokenURL:   tokenURL,
		apiBase:    apiBase,
		userAgent:  userAgent,
		http:       &http.Client{Timeout: cfg.Timeout},
		logger:     slog.New(slog.DiscardHandler),
		clock:      time.Now,
		maxRefresh: defaultMaxRefresh,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Authenticated reports whether an access token is cached.
func (s *Session) Authenticated() bool {
	return s.token != ""
}

// KnownNotebooks returns the cached notebook listing, or nil before the first
// ListNotebooks call.
func (s *Session) KnownNotebooks() []string {
	return slices.Clone(s.notebooks)
}

// Authenticate fetches a new access token, replacing any cached one.
func (s *Session) Authenticate(ctx context.Context) error {
	form := url.Values{}
	form.Set("username", s.username)
	form.Set("password", s.password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.tokenURL.String(), strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", contentTypeForm)
	req.Header.Set("Authorization", "refreshToken")

	status, body, err := s.roundTrip(req)
	if err != nil {
		return err
	}
	if !ok(status) {
		return &StatusError{Endpoint: s.tokenURL.Path, StatusCode: status, Err: ErrAuthentication}
	}
	var payload tokenReply
	if err := json.Unmarshal(body, &payload); err != nil {
		return fmt.Errorf("decode token response: %w", err)
	}
	if payload.Access.Token == "" {
		return fmt.Errorf("%w: token endpoint returned no token", ErrAuthentication)
	}
	s.token = payload.Access.Token
	s.logger.Debug("access token acquired", "user", s.username)
	return nil
}

func (s *Session) ensureToken(ctx context.Context) error {
	if s.token != "" {
		return nil
	}
	return s.Authenticate(ctx)
}

// ListNotebooks fetches the names of the notebooks the user can access and
// caches them. When the server asks for a token refresh the session
// re-authenticates and repeats the request.
func (s *Session) ListNotebooks(ctx context.Context) ([]string, error) {
	for attempt := 0; ; attempt++ {
		if err := s.ensureToken(ctx); err != nil {
			return nil, err
		}
		status, body, err := s.send(ctx, endpointList, nil)
		if err != nil {
			return nil, err
		}
		if !ok(status) {
			return nil, &StatusError{Endpoint: s.endpoint(endpointList).Path, StatusCode: status, Err: ErrServer}
		}
		var payload notebookListReply
		if err := json.Unmarshal(body, &payload); err != nil {
			return nil, fmt.Errorf("decode response: %w", err)
		}
		if payload.Errcode != nil && payload.Errcode.refresh {
			if attempt >= s.maxRefresh {
				return nil, fmt.Errorf("%w: server still requests a token refresh after %d attempts", ErrAuthentication, attempt)
			}
			s.logger.Debug("token refresh requested", "endpoint", endpointList, "attempt", attempt+1)
			if err := s.Authenticate(ctx); err != nil {
				return nil, err
			}
			continue
		}
		if err := s.replyError(payload.Errcode); err != nil {
			return nil, fmt.Errorf("list notebooks: %w", err)
		}

		names := make([]string, 0, len(payload.My))
		for _, nb := range payload.My {
			names = append(names, nb.ShowText)
		}
		s.notebooks = names
		s.listed = true
		s.logger.Debug("notebooks listed", "count", len(names))
		return slices.Clone(names), nil
	}
}

// requireNotebooks lists notebooks on first use and checks every name
// against the listing.
func (s *Session) requireNotebooks(ctx context.Context, names ...string) error {
	if !s.listed {
		if _, err := s.ListNotebooks(ctx); err != nil {
			return err
		}
	}
	for _, name := range names {
		if !slices.Contains(s.notebooks, name) {
			return fmt.Errorf("%w: %q", ErrUnknownNotebook, name)
		}
	}
	return nil
}

// ImportRequest describes records to create from a template. Titles, UIDs
// and Keywords are matched to Records by position; missing or empty titles
// and uids default to the current timestamp.
type ImportRequest struct {
	Notebook string
	Template string
	Records  []any
	Titles   []string
	UIDs     []string
	Keywords []string
	Quote    any
}

// ImportBody builds the request body for req without sending it.
func (s *Session) ImportBody(req ImportRequest) ImportBody {
	stamp := s.clock().Format(timestampLayout)
	dataset := make([]DatasetEnvelope, len(req.Records))
	for i, record := range req.Records {
		env := DatasetEnvelope{
			Title:   at(req.Titles, i),
			UID:     at(req.UIDs, i),
			Data:    record,
			Keyword: at(req.Keywords, i),
		}
		if env.Title == "" {
			env.Title = stamp
		}
		if env.UID == "" {
			env.UID = stamp
		}
		dataset[i] = env
	}
	return ImportBody{
		ELN:      req.Notebook,
		Template: req.Template,
		Dataset:  dataset,
		Quote:    req.Quote,
	}
}

// Import creates one record per entry of req.Records.
func (s *Session) Import(ctx context.Context, req ImportRequest) error {
	if len(req.Records) == 0 {
		return fmt.Errorf("%w: no records to import", ErrEmptyInput)
	}
	body := s.ImportBody(req)
	if err := s.ensureToken(ctx); err != nil {
		return err
	}
	if err := s.requireNotebooks(ctx, req.Notebook); err != nil {
		return err
	}
	if err := s.post(ctx, endpointImport, body, ErrImportFailed); err != nil {
		return err
	}
	s.logger.Info("records imported", "notebook", req.Notebook, "template", req.Template, "count", len(body.Dataset))
	return nil
}

// ExportQuery filters the records returned by Export. Empty fields are not
// sent.
type ExportQuery struct {
	Notebooks []string
	DateStart string
	DateEnd   string
	Keywords  []string
	UIDs      []string
}

// Body returns the request body for q.
func (q ExportQuery) Body() ExportBody {
	return ExportBody{
		ELN:       q.Notebooks,
		DateStart: q.DateStart,
		DateEnd:   q.DateEnd,
		Keywords:  q.Keywords,
		UIDs:      q.UIDs,
	}
}

// Export fetches the records matching query.
func (s *Session) Export(ctx context.Context, query ExportQuery) ([]Dataset, error) {
	if len(query.Notebooks) == 0 {
		return nil, fmt.Errorf("%w: no notebooks to export", ErrEmptyInput)
	}
	if err := s.ensureToken(ctx); err != nil {
		return nil, err
	}
	if err := s.requireNotebooks(ctx, query.Notebooks...); err != nil {
		return nil, err
	}
	status, body, err := s.send(ctx, endpointExport, query.Body())
	if err != nil {
		return nil, err
	}
	if !ok(status) {
		return nil, &StatusError{Endpoint: s.endpoint(endpointExport).Path, StatusCode: status, Err: ErrExportFailed}
	}
	var payload exportReply
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if err := s.replyError(payload.Errcode); err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	s.logger.Debug("records exported", "notebooks", query.Notebooks, "count", len(payload.Dataset))
	return payload.Dataset, nil
}

// ExportRecords exports the records matching query and converts each module
// with fn. The result maps record titles to the converted modules in the
// order the server returned them. Records sharing a title overwrite earlier
// ones.
func ExportRecords[T any](ctx context.Context, s *Session, query ExportQuery, fn RecordFunc[T]) (map[string][]T, error) {
	datasets, err := s.Export(ctx, query)
	if err != nil {
		return nil, err
	}
	return DecodeDatasets(datasets, fn)
}

// DecodeDatasets converts exported records with fn.
func DecodeDatasets[T any](datasets []Dataset, fn RecordFunc[T]) (map[string][]T, error) {
	out := make(map[string][]T, len(datasets))
	for _, ds := range datasets {
		modules := make([]T, 0, len(ds.Data))
		for _, m := range ds.Data {
			rec, err := fn(NewTable(m.Data))
			if err != nil {
				return nil, fmt.Errorf("record %q module %q: %w", ds.Title, m.Name, err)
			}
			modules = append(modules, rec)
		}
		out[ds.Title] = modules
	}
	return out, nil
}

// UpdateRequest adds one module, filled from Row, to an existing record.
type UpdateRequest struct {
	Notebook   string
	UID        string
	ModuleName string
	ModuleKind string
	Row        Row
}

// DatasetUpdate adds one module per row to an existing record. ModuleNames,
// ModuleKinds and Rows must have the same length.
type DatasetUpdate struct {
	Notebook    string
	UID         string
	ModuleNames []string
	ModuleKinds []string
	Rows        []Row
}

// Template builds the module and entries for one row.
func Template(moduleName, moduleKind string, fn TemplateFunc, row Row) ([]ModuleRecord, []EntryRecord, error) {
	module, err := NewModule(moduleKind, moduleName, nil)
	if err != nil {
		return nil, nil, err
	}
	rec, err := module.Record()
	if err != nil {
		return nil, nil, err
	}
	if fn == nil {
		return []ModuleRecord{rec}, nil, nil
	}
	items, err := fn(row)
	if err != nil {
		return nil, nil, fmt.Errorf("template %q: %w", moduleName, err)
	}
	entries := make([]EntryRecord, 0, len(items))
	for _, item := range items {
		entry, err := BuildEntry(item.Type, moduleName, item.Data, item.Name)
		if err != nil {
			return nil, nil, fmt.Errorf("template %q entry %q: %w", moduleName, item.Name, err)
		}
		entries = append(entries, entry.Record())
	}
	return []ModuleRecord{rec}, entries, nil
}

// UpdateRecordBody builds the request body for req without sending it.
func UpdateRecordBody(req UpdateRequest, fn TemplateFunc) (UpdateBody, error) {
	modules, entries, err := Template(req.ModuleName, req.ModuleKind, fn, req.Row)
	if err != nil {
		return UpdateBody{}, err
	}
	return UpdateBody{ELN: req.Notebook, UID: req.UID, AddModule: modules, Add: entries}, nil
}

// UpdateDatasetBody builds the request body for req without sending it.
func UpdateDatasetBody(req DatasetUpdate, fn TemplateFunc) (UpdateBody, error) {
	n := len(req.ModuleNames)
	if len(req.ModuleKinds) != n || len(req.Rows) != n {
		return UpdateBody{}, fmt.Errorf("%w: %d module names, %d module kinds, %d rows",
			ErrLengthMismatch, n, len(req.ModuleKinds), len(req.Rows))
	}
	body := UpdateBody{ELN: req.Notebook, UID: req.UID}
	for i := range n {
		modules, entries, err := Template(req.ModuleNames[i], req.ModuleKinds[i], fn, req.Rows[i])
		if err != nil {
			return UpdateBody{}, err
		}
		body.AddModule = append(body.AddModule, modules...)
		body.Add = append(body.Add, entries...)
	}
	return body, nil
}

// UpdateRecord adds one module to the record req.UID.
func (s *Session) UpdateRecord(ctx context.Context, req UpdateRequest, fn TemplateFunc) error {
	body, err := UpdateRecordBody(req, fn)
	if err != nil {
		return err
	}
	return s.update(ctx, body)
}

// UpdateDataset adds one module per row to the record req.UID in a single
// request.
func (s *Session) UpdateDataset(ctx context.Context, req DatasetUpdate, fn TemplateFunc) error {
	body, err := UpdateDatasetBody(req, fn)
	if err != nil {
		return err
	}
	return s.update(ctx, body)
}

func (s *Session) update(ctx context.Context, body UpdateBody) error {
	if err := s.ensureToken(ctx); err != nil {
		return err
	}
	if err := s.requireNotebooks(ctx, body.ELN); err != nil {
		return err
	}
	if err := s.post(ctx, endpointUpdate, body, ErrUpdateFailed); err != nil {
		return err
	}
	s.logger.Info("record updated", "notebook", body.ELN, "uid", body.UID,
		"modules", len(body.AddModule), "entries", len(body.Add))
	return nil
}

// post sends a JSON body and checks the HTTP and application status. failed
// is the sentinel reported for non-2xx responses.
func (s *Session) post(ctx context.Context, endpoint string, payload any, failed error) error {
	status, body, err := s.send(ctx, endpoint, payload)
	if err != nil {
		return err
	}
	if !ok(status) {
		return &StatusError{Endpoint: s.endpoint(endpoint).Path, StatusCode: status, Err: failed}
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	var r reply
	if err := json.Unmarshal(body, &r); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if err := s.replyError(r.Errcode); err != nil {
		return fmt.Errorf("%s: %w", endpoint, err)
	}
	return nil
}

// replyError maps an application status to an error. A rejected or expired
// token is dropped so the next operation authenticates again. Only
// ListNotebooks retries on "refresh" before reaching this point.
func (s *Session) replyError(code *statusCode) error {
	err := code.err()
	if code != nil && (code.refresh || code.code == 1) {
		s.token = ""
	}
	return err
}

// send posts payload to endpoint with the bearer token. A nil payload sends
// an empty form body.
func (s *Session) send(ctx context.Context, endpoint string, payload any) (int, []byte, error) {
	var (
		reader      io.Reader = http.NoBody
		contentType           = contentTypeForm
	)
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, fmt.Errorf("encode %s request: %w", endpoint, err)
		}
		reader = bytes.NewReader(data)
		contentType = contentTypeJSON
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint(endpoint).String(), reader)
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", contentTypeJSON)
	req.Header.Set("Authorization", "Bearer "+s.token)

	status, body, err := s.roundTrip(req)
	if err != nil {
		return 0, nil, err
	}
	s.logger.Debug("eln request", "endpoint", endpoint, "status", status)
	return status, body, nil
}

func (s *Session) roundTrip(req *http.Request) (int, []byte, error) {
	req.Header.Set("User-Agent", s.userAgent)
	resp, err := s.http.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, body, nil
}

func (s *Session) endpoint(name string) *url.URL {
	return s.apiBase.ResolveReference(&url.URL{Path: "eln_api_" + name + ".php"})
}

func ok(status int) bool {
	return status >= 200 && status < 300
}

func at(values []string, i int) string {
	if i < len(values) {
		return strings.TrimSpace(values[i])
	}
	return ""
}

func parseURL(raw, fallback string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = fallback
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse %q: %w", raw, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse %q: missing host", raw)
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
