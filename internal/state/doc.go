// Package state shares one notebook service between goroutines.
//
// # Overview
//
// eln.Session caches its token and notebook listing and is not safe for
// concurrent use, while the browser runs each request as its own tea.Cmd.
// Store sits between the two: it implements eln.NotebookService, holds a
// mutex across every call into the wrapped service, and records the
// outcome of each request in a Snapshot.
//
// # Concurrency Model
//
// Store uses two locks:
//
//   - call (sync.Mutex): held for the duration of a ListNotebooks or Export
//     call, so requests reach the session one at a time
//   - mu (sync.RWMutex): guards the snapshot; writers take it only after
//     the request returns, so Snapshot never waits on the network
//
// A second request issued while one is in flight blocks until the first
// finishes. Cancelling its context does not interrupt the wait for the
// lock, only the request that follows.
//
// # Snapshot
//
//   - Notebooks: the latest successful listing
//   - LastNotebook and LastRecordCount: the latest successful export
//   - Requests, LastUpdated: request bookkeeping
//   - LastError and ConsecutiveFailures: failure tracking
//
// A failed request keeps the previous data and only records the error.
// A successful one clears LastError and resets ConsecutiveFailures.
//
// # Offline Detection
//
// IsOffline reports two or more failures in a row. The browser header
// shows an OFFLINE badge in front of the error label in that state; a
// single failure shows the label alone.
//
// # Data Flow
//
//	ui command ──> Store.Export() ──lock call──> eln.Session.Export()
//	                    │
//	                    └──lock mu──> snapshot updated
//
//	app.Browse / ui header ──RLock mu──> Store.Snapshot() (copy)
//
// # Usage Example
//
//	store := state.New(session)
//	names, err := store.ListNotebooks(ctx)
//	snap := store.Snapshot()
//	if snap.IsOffline() {
//		// show the offline badge
//	}
//
// Snapshot returns a copy, so callers may modify it freely.
package state
