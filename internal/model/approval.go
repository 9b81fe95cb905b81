package model

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/gandos21/pocketsync/internal/money"
)

// ApprovedTransactionRecord is the snapshot stored when a main transaction
// is confirmed. It is used to auto-clear the transaction if the remote
// service brings it back for re-approval with unchanged data.
type ApprovedTransactionRecord struct {
	Date       string    `json:"date"`
	Account    string    `json:"account"`
	Amount     string    `json:"amount"`
	Category   string    `json:"category"`
	Payee      string    `json:"payee"`
	Note       string    `json:"note"`
	ApprovedAt time.Time `json:"approved_at"`
}

// Matches reports whether a pending transaction still carries the same
// category, account and amount as the stored snapshot. Amounts match when
// they differ by less than 0.001. A single mismatch leaves the transaction
// pending.
func (r ApprovedTransactionRecord) Matches(t Transaction) bool {
	if t.Category != r.Category || t.Account != r.Account {
		return false
	}
	stored, err := money.Parse(r.Amount)
	if err != nil {
		return false
	}
	return money.Equal(decimal.NewFromFloat(t.Amount), stored)
}
