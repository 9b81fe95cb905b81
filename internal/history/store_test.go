package history

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gandos21/pocketsync/internal/model"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestNewStartsEmptyWhenMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "approved.json")
	store := New(path)
	assert.Equal(t, 0, store.Len())

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "opening the store does not create the file")
}

func TestNewStartsEmptyWhenCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "approved.json")
	require.NoError(t, os.WriteFile(path, []byte("{ not json"), 0o600))

	store := New(path)
	assert.Equal(t, 0, store.Len())
}

func TestRecordApprovalRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "approved.json")
	now := time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC)

	store := NewWithRetention(path, DefaultRetention, fixedClock(now))
	rec := model.ApprovedTransactionRecord{
		Date:       "2024-03-15",
		Account:    "Checking",
		Amount:     "-45.00",
		Category:   "Groceries",
		Payee:      "Store X",
		ApprovedAt: now,
	}
	require.NoError(t, store.RecordApproval("501", rec))

	// A second store opened on the same file sees the persisted record.
	reopened := NewWithRetention(path, DefaultRetention, fixedClock(now))
	got, ok := reopened.Get("501")
	require.True(t, ok)
	assert.Equal(t, rec.Payee, got.Payee)
	assert.Equal(t, rec.Amount, got.Amount)
	assert.True(t, rec.ApprovedAt.Equal(got.ApprovedAt))
}

func TestRecordApprovalOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "approved.json")
	now := time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC)
	store := NewWithRetention(path, DefaultRetention, fixedClock(now))

	require.NoError(t, store.RecordApproval("501", model.ApprovedTransactionRecord{Payee: "Old", ApprovedAt: now}))
	require.NoError(t, store.RecordApproval("501", model.ApprovedTransactionRecord{Payee: "New", ApprovedAt: now}))

	assert.Equal(t, 1, store.Len())
	got, ok := store.Get("501")
	require.True(t, ok)
	assert.Equal(t, "New", got.Payee)
}

func TestPurgeRetentionBoundary(t *testing.T) {
	now := time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		age  time.Duration
		kept bool
	}{
		{name: "fourteen days old", age: 14 * 24 * time.Hour, kept: true},
		{name: "exactly at the window", age: 15 * 24 * time.Hour, kept: true},
		{name: "sixteen days old", age: 16 * 24 * time.Hour, kept: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "approved.json")
			store := NewWithRetention(path, DefaultRetention, fixedClock(now))

			old := model.ApprovedTransactionRecord{Payee: "Old", ApprovedAt: now.Add(-tt.age)}
			require.NoError(t, store.RecordApproval("100", old))

			// Any later write triggers the purge pass.
			require.NoError(t, store.RecordApproval("200", model.ApprovedTransactionRecord{Payee: "Fresh", ApprovedAt: now}))

			_, ok := store.Get("100")
			assert.Equal(t, tt.kept, ok)
		})
	}
}
