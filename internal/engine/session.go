package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/gandos21/pocketsync/internal/common"
	"github.com/gandos21/pocketsync/internal/model"
	"github.com/gandos21/pocketsync/internal/service"
)

var sessionRetryOpts = service.RetryOptions{
	MaxAttempts:  3,
	InitialDelay: 500 * time.Millisecond,
	MaxDelay:     5 * time.Second,
	Multiplier:   2.0,
}

// BuildSession fetches the user identity and the account and category
// indices, assembling the immutable context for one reconciliation session.
// The fetches are read-only so they retry with backoff; a final failure is
// fatal to starting a session.
func BuildSession(ctx context.Context, ledger service.Ledger) (*model.SessionContext, error) {
	var userID int64
	err := common.WithRetry(ctx, func() error {
		var fetchErr error
		userID, fetchErr = ledger.UserID(ctx)
		return fetchErr
	}, sessionRetryOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}

	var categories *model.CategoryIndex
	err = common.WithRetry(ctx, func() error {
		var fetchErr error
		categories, fetchErr = ledger.CategoryIndex(ctx, userID)
		return fetchErr
	}, sessionRetryOpts)
	if err != nil {
		return nil, err
	}

	var accounts *model.AccountIndex
	err = common.WithRetry(ctx, func() error {
		var fetchErr error
		accounts, fetchErr = ledger.AccountIndex(ctx, userID)
		return fetchErr
	}, sessionRetryOpts)
	if err != nil {
		return nil, err
	}

	return &model.SessionContext{
		UserID:     userID,
		Accounts:   accounts,
		Categories: categories,
	}, nil
}
