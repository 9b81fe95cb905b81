// Package history implements the bounded-retention cache of approved
// transactions used to suppress redundant re-approval prompts.
package history

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gandos21/pocketsync/internal/model"
)

// DefaultRetention is how long approved records are kept, measured from the
// client-recorded approval time.
const DefaultRetention = 15 * 24 * time.Hour

// Store persists approved transaction snapshots as a human-inspectable JSON
// document keyed by transaction id. A missing or unparsable file starts the
// store empty; it is never fatal. The file is read once at session start and
// rewritten wholesale on every save, so concurrent writers are not supported.
type Store struct {
	now       func() time.Time
	records   map[string]model.ApprovedTransactionRecord
	path      string
	retention time.Duration
}

// New opens the store at path with the default retention window.
func New(path string) *Store {
	return NewWithRetention(path, DefaultRetention, time.Now)
}

// NewWithRetention opens the store with a custom retention window and clock.
func NewWithRetention(path string, retention time.Duration, now func() time.Time) *Store {
	s := &Store{
		path:      path,
		retention: retention,
		now:       now,
		records:   make(map[string]model.ApprovedTransactionRecord),
	}
	s.load()
	return s
}

func (s *Store) load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("Approval history not readable, starting empty", "path", s.path, "error", err)
		}
		return
	}
	if err := json.Unmarshal(data, &s.records); err != nil {
		slog.Warn("Approval history corrupt, starting empty", "path", s.path, "error", err)
		s.records = make(map[string]model.ApprovedTransactionRecord)
	}
}

// Get returns the stored record for a transaction id.
func (s *Store) Get(transactionID string) (model.ApprovedTransactionRecord, bool) {
	rec, ok := s.records[transactionID]
	return rec, ok
}

// Len returns the number of stored records.
func (s *Store) Len() int {
	return len(s.records)
}

// RecordApproval inserts or overwrites the record for a transaction, purges
// every record older than the retention window, then persists the store.
func (s *Store) RecordApproval(transactionID string, rec model.ApprovedTransactionRecord) error {
	s.records[transactionID] = rec
	s.purge()
	return s.save()
}

func (s *Store) purge() {
	cutoff := s.now()
	for id, rec := range s.records {
		if cutoff.Sub(rec.ApprovedAt) > s.retention {
			delete(s.records, id)
		}
	}
}

func (s *Store) save() error {
	data, err := json.MarshalIndent(s.records, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode approval history: %w", err)
	}
	if err := os.WriteFile(s.path, append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("failed to write approval history %s: %w", s.path, err)
	}
	return nil
}
