// Package engine implements the transaction reconciliation engine: it
// classifies pending transactions, decides transfer and split structure, and
// drives the posting and confirmation sequences against the remote ledger.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gandos21/pocketsync/internal/model"
	"github.com/gandos21/pocketsync/internal/money"
	"github.com/gandos21/pocketsync/internal/service"
)

// Status messages forming the contract with front ends. The literal
// success/failed markers are what calling code branches on.
const (
	StatusPostSuccess = "Transaction posting success"
	statusPostFailed  = "Transaction posting failed!"
)

// transferPayeePrefix labels the two legs of a transfer, each naming the
// other leg's account.
const transferPayeePrefix = "Transfer : "

// TransferPayee returns the payee label for a transfer leg pointing at the
// named counterpart account.
func TransferPayee(account string) string {
	return transferPayeePrefix + account
}

// Leg identifies which remote entry of a multi-leg operation failed.
type Leg string

const (
	// LegPrimary is the transaction on the source account.
	LegPrimary Leg = "primary"
	// LegMirror is the negated counterpart on the destination account.
	LegMirror Leg = "mirror"
)

// PostingError reports a failed leg of a multi-leg sequence. Legs that
// already succeeded are not rolled back; the remote ledger is left partially
// updated for manual reconciliation.
type PostingError struct {
	Err error
	Leg Leg
}

func (e *PostingError) Error() string {
	return fmt.Sprintf("%s %s leg: %v", statusPostFailed, e.Leg, e.Err)
}

func (e *PostingError) Unwrap() error {
	return e.Err
}

// PostResult reports the outcome of a posting sequence.
type PostResult struct {
	Primary *model.Transaction
	Mirror  *model.Transaction
	Message string
}

// Config holds configuration options for the engine.
type Config struct {
	// MaxSplitSlots caps the entries per approval, main transaction included.
	MaxSplitSlots int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{MaxSplitSlots: 5}
}

// Engine drives the posting and confirmation sequences for one
// reconciliation session.
type Engine struct {
	ledger   service.Ledger
	store    service.ApprovalStore
	session  *model.SessionContext
	now      func() time.Time
	maxSplit int
}

// New creates an engine with the default configuration.
func New(ledger service.Ledger, store service.ApprovalStore, session *model.SessionContext) *Engine {
	return NewWithConfig(ledger, store, session, DefaultConfig())
}

// NewWithConfig creates an engine with custom configuration.
func NewWithConfig(ledger service.Ledger, store service.ApprovalStore, session *model.SessionContext, config Config) *Engine {
	if config.MaxSplitSlots <= 0 {
		config.MaxSplitSlots = DefaultConfig().MaxSplitSlots
	}
	return &Engine{
		ledger:   ledger,
		store:    store,
		session:  session,
		now:      time.Now,
		maxSplit: config.MaxSplitSlots,
	}
}

// Session returns the session context the engine validates against.
func (e *Engine) Session() *model.SessionContext {
	return e.session
}

// MaxSplitSlots returns the configured cap on entries per approval.
func (e *Engine) MaxSplitSlots() int {
	return e.maxSplit
}

// buildFields turns an edit request into the remote payload. The amount is
// normalized to two-decimal fixed point after stripping grouping separators.
func (e *Engine) buildFields(req model.EditRequest, includeDate bool) (service.TransactionFields, decimal.Decimal, error) {
	amt, err := money.Parse(req.Amount)
	if err != nil {
		return service.TransactionFields{}, decimal.Zero, &model.ValidationError{Field: "amount", Reason: "invalid amount"}
	}
	catID, ok := e.session.Categories.ID(req.Category)
	if !ok {
		return service.TransactionFields{}, decimal.Zero, &model.ValidationError{Field: "category", Reason: "invalid category"}
	}
	fields := service.TransactionFields{
		Payee:       req.Payee,
		Amount:      money.Format(amt),
		Note:        req.Note,
		CategoryID:  catID,
		NeedsReview: req.NeedsReview,
	}
	if includeDate {
		fields.Date = req.Date
	}
	return fields, amt, nil
}

// Post creates a new transaction from req. For a transfer it creates the
// primary leg and then the mirrored leg on the destination account with the
// amount negated; both legs come back flagged for review no matter what the
// payload requested. rewritePayee controls whether the primary leg's payee
// is rewritten to the transfer label; it is suppressed on the first creation
// of a split's transfer child so the original payee is preserved for
// remote-side transaction grouping.
func (e *Engine) Post(ctx context.Context, req model.EditRequest, rewritePayee bool) (*PostResult, error) {
	class, err := ValidateFields(req, e.session)
	if err != nil {
		return nil, err
	}
	if class == model.EditIgnore {
		return nil, &model.ValidationError{Field: "amount", Reason: "nothing to post"}
	}

	fields, amt, err := e.buildFields(req, true)
	if err != nil {
		return nil, err
	}
	srcID, _ := e.session.Accounts.ID(req.Account)

	if class == model.EditNoTransfer {
		primary, err := e.ledger.Create(ctx, srcID, fields)
		if err != nil {
			return nil, &PostingError{Leg: LegPrimary, Err: err}
		}
		return &PostResult{Primary: primary, Message: StatusPostSuccess}, nil
	}

	if rewritePayee {
		fields.Payee = TransferPayee(req.TransferTo)
	}
	primary, err := e.ledger.Create(ctx, srcID, fields)
	if err != nil {
		return nil, &PostingError{Leg: LegPrimary, Err: err}
	}

	dstID, _ := e.session.Accounts.ID(req.TransferTo)
	mirrorFields := fields
	mirrorFields.Payee = TransferPayee(req.Account)
	mirrorFields.Amount = money.Format(amt.Neg())
	mirror, err := e.ledger.Create(ctx, dstID, mirrorFields)
	if err != nil {
		// The primary leg stays applied; there is no compensating delete.
		return &PostResult{Primary: primary}, &PostingError{Leg: LegMirror, Err: err}
	}
	return &PostResult{Primary: primary, Mirror: mirror, Message: StatusPostSuccess}, nil
}

// Update applies req to an existing transaction. For a transfer the primary
// leg is updated in place with its payee rewritten to the transfer label,
// and a brand-new mirrored transaction is created on the destination
// account. Creation always re-flags the new leg for review, so a follow-up
// confirm clears it immediately.
func (e *Engine) Update(ctx context.Context, transactionID int64, req model.EditRequest) (*PostResult, error) {
	class, err := ValidateFields(req, e.session)
	if err != nil {
		return nil, err
	}
	if class == model.EditIgnore {
		return nil, &model.ValidationError{Field: "amount", Reason: "nothing to update"}
	}

	fields, amt, err := e.buildFields(req, false)
	if err != nil {
		return nil, err
	}

	if class == model.EditNoTransfer {
		primary, err := e.ledger.Update(ctx, transactionID, fields)
		if err != nil {
			return nil, &PostingError{Leg: LegPrimary, Err: err}
		}
		return &PostResult{Primary: primary, Message: StatusPostSuccess}, nil
	}

	fields.Payee = TransferPayee(req.TransferTo)
	primary, err := e.ledger.Update(ctx, transactionID, fields)
	if err != nil {
		return nil, &PostingError{Leg: LegPrimary, Err: err}
	}

	dstID, _ := e.session.Accounts.ID(req.TransferTo)
	mirrorFields := fields
	mirrorFields.Date = req.Date
	mirrorFields.Payee = TransferPayee(req.Account)
	mirrorFields.Amount = money.Format(amt.Neg())
	mirror, err := e.ledger.Create(ctx, dstID, mirrorFields)
	if err != nil {
		return &PostResult{Primary: primary}, &PostingError{Leg: LegMirror, Err: err}
	}

	cleared, err := e.ledger.Confirm(ctx, mirror.ID)
	if err != nil {
		return &PostResult{Primary: primary, Mirror: mirror}, &PostingError{Leg: LegMirror, Err: err}
	}
	return &PostResult{Primary: primary, Mirror: cleared, Message: StatusPostSuccess}, nil
}

// ClearSplitTransferLegs clears the needs-review flags on the two freshly
// created legs of a split's transfer sub-entry. Creating a transfer pair
// leaves both legs flagged even after the initial update, so each leg gets
// an independent confirm-style update with no field changes beyond the
// primary leg's transfer payee.
func (e *Engine) ClearSplitTransferLegs(ctx context.Context, primaryID, mirrorID int64, req model.EditRequest) error {
	if req.TransferTo != "" && req.TransferTo != req.Account {
		if _, err := e.ledger.ConfirmWithPayee(ctx, primaryID, TransferPayee(req.TransferTo)); err != nil {
			return &PostingError{Leg: LegPrimary, Err: err}
		}
		if _, err := e.ledger.Confirm(ctx, mirrorID); err != nil {
			return &PostingError{Leg: LegMirror, Err: err}
		}
		return nil
	}
	if _, err := e.ledger.Confirm(ctx, primaryID); err != nil {
		return &PostingError{Leg: LegPrimary, Err: err}
	}
	return nil
}

// Confirm clears a transaction's needs-review flag.
func (e *Engine) Confirm(ctx context.Context, transactionID int64) (*model.Transaction, error) {
	return e.ledger.Confirm(ctx, transactionID)
}

// ConfirmWithPayee clears the needs-review flag and restores payee.
func (e *Engine) ConfirmWithPayee(ctx context.Context, transactionID int64, payee string) (*model.Transaction, error) {
	return e.ledger.ConfirmWithPayee(ctx, transactionID, payee)
}

// Delete removes a transaction from the remote ledger.
func (e *Engine) Delete(ctx context.Context, transactionID int64) error {
	return e.ledger.Delete(ctx, transactionID)
}

// FetchPage retrieves one page of transactions for the session user.
func (e *Engine) FetchPage(ctx context.Context, page int) (*service.TransactionPage, error) {
	return e.ledger.Transactions(ctx, e.session.UserID, page)
}

// ClearedApproval describes one pending transaction matched against the
// approval history during an auto-clear pass.
type ClearedApproval struct {
	Err         error
	Transaction model.Transaction
	Record      model.ApprovedTransactionRecord
}

// AutoClear re-confirms pending transactions whose stored approval record
// still matches on category, account and amount. Matches are cleared
// remotely using the stored payee; a failed remote call leaves the
// transaction pending. Runs once per fetch, before manual review.
func (e *Engine) AutoClear(ctx context.Context, pending []model.Transaction) ([]model.Transaction, []ClearedApproval) {
	remaining := make([]model.Transaction, 0, len(pending))
	var cleared []ClearedApproval

	for _, txn := range pending {
		rec, ok := e.store.Get(txn.Key())
		if !ok || !rec.Matches(txn) {
			remaining = append(remaining, txn)
			continue
		}
		if _, err := e.ledger.ConfirmWithPayee(ctx, txn.ID, rec.Payee); err != nil {
			slog.Warn("Auto clearing failed",
				"transaction_id", txn.ID,
				"error", err)
			cleared = append(cleared, ClearedApproval{Transaction: txn, Record: rec, Err: err})
			remaining = append(remaining, txn)
			continue
		}
		slog.Info("Re-approval auto cleared",
			"transaction_id", txn.ID,
			"payee", rec.Payee)
		cleared = append(cleared, ClearedApproval{Transaction: txn, Record: rec})
	}
	return remaining, cleared
}

// RecordApproval stores the final edit snapshot of an approved main
// transaction. The payee comes from the remote response, which may carry a
// rewritten transfer label. A failed save degrades to a warning; the
// approval itself already succeeded remotely.
func (e *Engine) RecordApproval(transactionID int64, req model.EditRequest, payee string) {
	rec := model.ApprovedTransactionRecord{
		Date:       req.Date,
		Account:    req.Account,
		Amount:     req.Amount,
		Category:   req.Category,
		Payee:      payee,
		Note:       req.Note,
		ApprovedAt: e.now(),
	}
	key := model.Transaction{ID: transactionID}.Key()
	if err := e.store.RecordApproval(key, rec); err != nil {
		slog.Warn("Approval history not saved",
			"transaction_id", transactionID,
			"error", err)
	}
}
