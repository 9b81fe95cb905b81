package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gandos21/pocketsync/internal/common"
)

func TestBuildSession(t *testing.T) {
	ledger := newMockLedger()

	session, err := BuildSession(context.Background(), ledger)
	require.NoError(t, err)
	assert.Equal(t, int64(42), session.UserID)
	assert.True(t, session.Accounts.Has("Checking"))
	assert.True(t, session.Categories.Has("Groceries"))
}

func TestBuildSessionRetriesFetches(t *testing.T) {
	// Shrink the backoff so exhausting the attempts stays fast.
	saved := sessionRetryOpts
	sessionRetryOpts.InitialDelay = time.Millisecond
	sessionRetryOpts.MaxDelay = 5 * time.Millisecond
	t.Cleanup(func() { sessionRetryOpts = saved })

	ledger := newMockLedger()
	ledger.userErr = assert.AnError

	_, err := BuildSession(context.Background(), ledger)
	assert.ErrorIs(t, err, common.ErrMaxRetries)
	assert.Equal(t, sessionRetryOpts.MaxAttempts, ledger.userCalls)
}
