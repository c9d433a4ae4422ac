package eln

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the package. Callers match them with errors.Is;
// the returned errors carry additional context.
var (
	// ErrInvalidKind reports a malformed entry or module type tag.
	ErrInvalidKind = errors.New("invalid kind")
	// ErrUnknownKind reports a tag with no registered constructor.
	ErrUnknownKind = errors.New("unknown kind")
	// ErrUnsupportedEntryType reports a value whose shape the module cannot hold.
	ErrUnsupportedEntryType = errors.New("unsupported entry type")

	ErrAuthentication = errors.New("authentication failed")
	ErrDataFormat     = errors.New("malformed request data")
	ErrServer         = errors.New("server error")

	ErrUnknownNotebook = errors.New("unknown notebook")
	ErrEmptyInput      = errors.New("empty input")
	ErrLengthMismatch  = errors.New("length mismatch")

	ErrImportFailed = errors.New("import failed")
	ErrExportFailed = errors.New("export failed")
	ErrUpdateFailed = errors.New("update failed")
)

// StatusError describes a non-2xx HTTP response from an ELN endpoint.
type StatusError struct {
	Endpoint   string
	StatusCode int
	// Err is the operation sentinel (ErrImportFailed, ErrExportFailed, ...).
	Err error
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%v: api %s returned status %d", e.Err, e.Endpoint, e.StatusCode)
}

// Unwrap returns the sentinel for the failed endpoint.
func (e *StatusError) Unwrap() error {
	return e.Err
}
