// Package service defines the interfaces crossed by the reconciliation engine.
package service

import (
	"context"
	"time"

	"github.com/gandos21/pocketsync/internal/model"
)

// TransactionPage is one page of remote transactions.
type TransactionPage struct {
	// All holds every transaction on the page in remote order.
	All []model.Transaction
	// Pending is the needs-review subset of All, same order.
	Pending []model.Transaction
}

// TransactionFields is the payload applied by create and update calls.
// Date is set on create and on the mirrored leg of a transfer; updates of an
// existing transaction leave it empty.
type TransactionFields struct {
	Payee       string
	Amount      string
	Date        string
	Note        string
	CategoryID  int64
	NeedsReview bool
}

// Ledger is the contract for the remote transaction, account and category
// resources. Every mutating operation is a single remote call with no local
// retry; callers compose multi-call sequences and own their ordering and
// failure handling.
type Ledger interface {
	UserID(ctx context.Context) (int64, error)
	CategoryIndex(ctx context.Context, userID int64) (*model.CategoryIndex, error)
	AccountIndex(ctx context.Context, userID int64) (*model.AccountIndex, error)
	Transactions(ctx context.Context, userID int64, page int) (*TransactionPage, error)
	Create(ctx context.Context, accountID int64, fields TransactionFields) (*model.Transaction, error)
	Update(ctx context.Context, transactionID int64, fields TransactionFields) (*model.Transaction, error)
	Confirm(ctx context.Context, transactionID int64) (*model.Transaction, error)
	ConfirmWithPayee(ctx context.Context, transactionID int64, payee string) (*model.Transaction, error)
	Delete(ctx context.Context, transactionID int64) error
}

// ApprovalStore is the bounded-history cache of approved transactions.
type ApprovalStore interface {
	Get(transactionID string) (model.ApprovedTransactionRecord, bool)
	RecordApproval(transactionID string, rec model.ApprovedTransactionRecord) error
}

// RetryOptions configures retry behavior for remote operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
