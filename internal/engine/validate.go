package engine

import (
	"github.com/gandos21/pocketsync/internal/model"
)

// ValidateFields checks a proposed transaction edit before submission and
// classifies it. A blank amount short-circuits to EditIgnore: a row with no
// amount is an intentionally unfilled split slot, not an error. Checks run
// in priority order: date, account, category, transfer account.
func ValidateFields(req model.EditRequest, session *model.SessionContext) (model.EditClass, error) {
	if req.IsBlank() {
		return model.EditIgnore, nil
	}

	if _, err := model.ParseDate(req.Date); err != nil {
		return model.EditIgnore, &model.ValidationError{Field: "date", Reason: "invalid date"}
	}

	if !session.Accounts.Has(req.Account) {
		return model.EditIgnore, &model.ValidationError{Field: "account", Reason: "invalid account name"}
	}

	if !session.Categories.Has(req.Category) {
		return model.EditIgnore, &model.ValidationError{Field: "category", Reason: "invalid category"}
	}

	// A named destination must exist, and a transfer into the source
	// account itself is invalid.
	if (req.TransferTo != "" && !session.Accounts.Has(req.TransferTo)) || req.TransferTo == req.Account {
		return model.EditIgnore, &model.ValidationError{Field: "transfer_account", Reason: "invalid transfer account name"}
	}

	if req.TransferTo == "" {
		return model.EditNoTransfer, nil
	}
	return model.EditTransfer, nil
}
