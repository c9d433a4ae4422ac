// Package eln is a client for the IOP electronic lab notebook platform.
//
// # Overview
//
// The package has two halves. The data model (entries, modules and their
// factories) builds the JSON payloads the platform expects. Session
// authenticates against the token endpoint and drives the four API
// endpoints: notebook listing, record import, record export and record
// update.
//
// # Data Model
//
// An Entry is one typed datum (text, number, file, date, time, richtext or
// bool) destined for a named module. A Module is a widget inside a record:
//
//   - FormModule: scalar fields keyed by name
//   - TableModule: homogeneous columns keyed by name
//   - RichTextModule: HTML fragments keyed by name
//   - ImagesModule: an ordered list of image descriptors
//   - GenericModule: any kind tag, validated only when used
//
// NewModule and BuildEntry construct values from a kind tag. Values added
// without a name get one made of a type label and the current time.
//
// # Session Usage
//
//	s, err := eln.NewSession(eln.Config{Username: "alice", Password: pw},
//		eln.WithLogger(logger))
//	if err != nil {
//		return err
//	}
//
//	names, err := s.ListNotebooks(ctx)
//
//	err = s.Import(ctx, eln.ImportRequest{
//		Notebook: "lab-1",
//		Template: "xrd",
//		Records:  []any{map[string]any{"sample": "Cu"}},
//	})
//
//	records, err := eln.ExportRecords(ctx, s,
//		eln.ExportQuery{Notebooks: []string{"lab-1"}}, eln.TableMap)
//
// The session authenticates lazily and caches the access token and the
// notebook listing. Import, Export and the update calls verify the target
// notebooks against that listing before sending anything.
//
// # Token Refresh
//
// When the listing endpoint answers "refresh" the session fetches a new
// token and retries, up to WithMaxRefresh times. The other endpoints do not
// retry: a "refresh" or an authentication errcode drops the cached token
// and returns ErrAuthentication, and the next call authenticates again.
//
// # Errors
//
// Failures wrap the sentinel errors in errors.go and can be tested with
// errors.Is. Non-2xx responses are reported as *StatusError, which unwraps
// to the sentinel for the endpoint (ErrImportFailed, ErrExportFailed,
// ErrUpdateFailed, ErrServer or ErrAuthentication). Input problems such as
// ErrEmptyInput, ErrLengthMismatch and kind errors are reported before any
// request is made.
package eln
