package state

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/iopwsy/iop-eln/pkg/eln"
)

// Snapshot records the outcome of the latest requests made through a Store.
type Snapshot struct {
	Notebooks           []string
	LastNotebook        string // notebook of the latest successful export
	LastRecordCount     int
	Requests            int
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int
}

// IsOffline returns true when several requests in a row have failed.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Store wraps a NotebookService so it can be shared by goroutines. Calls
// into the service are serialized; the snapshot can be read at any time.
type Store struct {
	call    sync.Mutex
	service eln.NotebookService

	mu       sync.RWMutex
	snapshot Snapshot
}

var _ eln.NotebookService = (*Store)(nil)

// New returns a Store in front of service.
func New(service eln.NotebookService) *Store {
	return &Store{service: service}
}

// ListNotebooks lists notebooks through the wrapped service.
func (s *Store) ListNotebooks(ctx context.Context) ([]string, error) {
	s.call.Lock()
	names, err := s.service.ListNotebooks(ctx)
	s.call.Unlock()

	s.record(err, func(snap *Snapshot) {
		snap.Notebooks = slices.Clone(names)
	})
	return names, err
}

// Export exports records through the wrapped service.
func (s *Store) Export(ctx context.Context, query eln.ExportQuery) ([]eln.Dataset, error) {
	s.call.Lock()
	datasets, err := s.service.Export(ctx, query)
	s.call.Unlock()

	s.record(err, func(snap *Snapshot) {
		if len(query.Notebooks) > 0 {
			snap.LastNotebook = query.Notebooks[len(query.Notebooks)-1]
		}
		snap.LastRecordCount = len(datasets)
	})
	return datasets, err
}

// record updates the snapshot. When err is non-nil the previous data is
// kept but the error is recorded for visibility.
func (s *Store) record(err error, apply func(*Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.Requests++
	s.snapshot.LastUpdated = time.Now()
	if err != nil {
		s.snapshot.LastError = err
		s.snapshot.ConsecutiveFailures++
		return
	}
	apply(&s.snapshot)
	s.snapshot.LastError = nil
	s.snapshot.ConsecutiveFailures = 0
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Notebooks = slices.Clone(s.snapshot.Notebooks)
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}
