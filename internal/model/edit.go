package model

// EditClass tags how an edit request will be applied to the ledger.
type EditClass int

const (
	// EditIgnore marks a request with no amount; nothing is posted.
	EditIgnore EditClass = iota
	// EditNoTransfer posts a single leg to the source account.
	EditNoTransfer
	// EditTransfer posts mirrored legs to the source and destination accounts.
	EditTransfer
)

func (c EditClass) String() string {
	switch c {
	case EditIgnore:
		return "ignore"
	case EditNoTransfer:
		return "no transfer"
	case EditTransfer:
		return "transfer"
	default:
		return "unknown"
	}
}

// EditRequest carries the fields a caller supplies to post or update a
// transaction. Amount is a decimal string that may contain grouping
// separators; a destination account distinct from the source account makes
// the request a transfer.
type EditRequest struct {
	Date        string
	Payee       string
	Amount      string
	Category    string
	Note        string
	Account     string
	TransferTo  string
	NeedsReview bool
}

// IsBlank reports whether the request is an unfilled split slot.
func (r EditRequest) IsBlank() bool {
	return r.Amount == ""
}

// ValidationError reports a bad user-supplied field. It is raised before any
// remote call is made.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}
