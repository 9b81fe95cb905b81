// Package model defines the domain types shared across the application.
package model

import "strconv"

// UncategorisedLabel stands in for transactions the remote service has no
// category for.
const UncategorisedLabel = "<< Uncategorised >>"

// Transaction is a single remote ledger transaction. The identifier is
// stable across updates; needs_review is reset to true by the remote service
// whenever payee or amount changes, regardless of what the caller requested.
type Transaction struct {
	Date          string
	Payee         string
	OriginalPayee string
	Category      string
	Note          string
	Account       string
	UploadSource  string
	Status        string
	ID            int64
	Amount        float64
	NeedsReview   bool
}

// Key returns the string form of the id used to key the approval history.
func (t Transaction) Key() string {
	return strconv.FormatInt(t.ID, 10)
}
