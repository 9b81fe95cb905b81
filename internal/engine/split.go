package engine

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/gandos21/pocketsync/internal/model"
	"github.com/gandos21/pocketsync/internal/money"
)

// SplitRemainder returns the pending transaction's amount minus the sum of
// every non-blank slot amount. Approval proceeds only when the remainder is
// within tolerance of zero.
func SplitRemainder(mainAmount float64, slots []model.EditRequest) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, slot := range slots {
		if slot.IsBlank() {
			continue
		}
		amt, err := money.Parse(slot.Amount)
		if err != nil {
			return decimal.Zero, &model.ValidationError{Field: "amount", Reason: fmt.Sprintf("invalid amount %q", slot.Amount)}
		}
		sum = sum.Add(amt)
	}
	return decimal.NewFromFloat(mainAmount).Sub(sum), nil
}

// ApprovalResult reports a completed approval sequence.
type ApprovalResult struct {
	// MainPayee is the payee recorded to the approval history; it may carry
	// a rewritten transfer label.
	MainPayee string
	Message   string
	// Posted counts the applied entries, the main transaction included.
	Posted int
}

// Approve executes the full approval sequence for one pending transaction.
// Slot 0 always targets the existing main transaction via the update path;
// later slots with a non-blank amount become new transactions created with
// the main transaction's original payee, then updated to the slot's edited
// payee. Blank slots are skipped. Processing stops at the first failure and
// legs already applied stay applied. On full success the main entry's final
// snapshot is recorded to the approval history; split children are not
// cached for auto re-approval.
func (e *Engine) Approve(ctx context.Context, main model.Transaction, slots []model.EditRequest) (*ApprovalResult, error) {
	if len(slots) == 0 {
		return nil, &model.ValidationError{Field: "splits", Reason: "no entries to approve"}
	}
	if len(slots) > e.maxSplit {
		return nil, &model.ValidationError{Field: "splits", Reason: fmt.Sprintf("at most %d entries per transaction", e.maxSplit)}
	}

	// Date and source account always come from the pending transaction
	// itself; only the remaining fields are editable per slot.
	requests := make([]model.EditRequest, len(slots))
	for i, slot := range slots {
		slot.Date = main.Date
		slot.Account = main.Account
		slot.NeedsReview = false
		requests[i] = slot
	}

	remainder, err := SplitRemainder(main.Amount, requests)
	if err != nil {
		return nil, err
	}
	if !money.NearZero(remainder) {
		return nil, &model.ValidationError{
			Field:  "amount",
			Reason: fmt.Sprintf("amount total including any splits is off by %s from the pending amount", money.Format(remainder)),
		}
	}

	// Fail fast: validate every slot before the first remote call.
	classes := make([]model.EditClass, len(requests))
	for i, req := range requests {
		class, err := ValidateFields(req, e.session)
		if err != nil {
			return nil, err
		}
		classes[i] = class
	}
	if classes[0] == model.EditIgnore {
		return nil, &model.ValidationError{Field: "amount", Reason: "main entry has no amount"}
	}

	result := &ApprovalResult{}
	for i, req := range requests {
		switch {
		case classes[i] == model.EditIgnore:
			continue

		case i == 0 && classes[i] == model.EditNoTransfer:
			res, err := e.Update(ctx, main.ID, req)
			if err != nil {
				return result, err
			}
			result.MainPayee = res.Primary.Payee

		case i == 0:
			res, err := e.Update(ctx, main.ID, req)
			if err != nil {
				return result, err
			}
			result.MainPayee = res.Primary.Payee
			// The update changed payee and possibly amount, which re-flags
			// the main transaction for review.
			if _, err := e.ledger.Confirm(ctx, main.ID); err != nil {
				return result, &PostingError{Leg: LegPrimary, Err: err}
			}

		case classes[i] == model.EditNoTransfer:
			clone := req
			clone.Payee = main.Payee
			res, err := e.Post(ctx, clone, true)
			if err != nil {
				return result, err
			}
			// Apply the slot's edited payee now that the entry exists and
			// the remote side has grouped it under the original payee.
			if _, err := e.Update(ctx, res.Primary.ID, req); err != nil {
				return result, err
			}

		default:
			clone := req
			clone.Payee = main.Payee
			res, err := e.Post(ctx, clone, false)
			if err != nil {
				return result, err
			}
			if err := e.ClearSplitTransferLegs(ctx, res.Primary.ID, res.Mirror.ID, req); err != nil {
				return result, err
			}
		}
		result.Posted++
	}

	e.RecordApproval(main.ID, requests[0], result.MainPayee)
	result.Message = StatusPostSuccess
	return result, nil
}
