package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gandos21/pocketsync/internal/model"
)

func promptTestSession() *model.SessionContext {
	accounts := model.NewAccountIndex()
	accounts.Add("Checking", 100)
	accounts.Add("Wallet", 200)

	categories := model.NewCategoryIndex()
	categories.Add("Groceries", 2, true)
	categories.Add("Dining", 3, true)

	return &model.SessionContext{UserID: 42, Accounts: accounts, Categories: categories}
}

func newTestPrompter(input string) (*ReviewPrompter, *bytes.Buffer) {
	out := &bytes.Buffer{}
	return NewReviewPrompter(strings.NewReader(input), out, promptTestSession(), 5), out
}

func pendingTxn() model.Transaction {
	return model.Transaction{
		ID:       501,
		Date:     "2024-03-15",
		Payee:    "STORE X POS 9912",
		Amount:   -45.00,
		Account:  "Checking",
		Category: "Groceries",
	}
}

func TestPromptUsesDefaultOnEmptyInput(t *testing.T) {
	p, _ := newTestPrompter("\ncustom\n")

	got, err := p.Prompt(context.Background(), "Amount", "-45.00")
	require.NoError(t, err)
	assert.Equal(t, "-45.00", got)

	got, err = p.Prompt(context.Background(), "Payee", "default")
	require.NoError(t, err)
	assert.Equal(t, "custom", got)
}

func TestPromptYesNo(t *testing.T) {
	p, _ := newTestPrompter("y\nYES\nn\n\n")

	for _, want := range []bool{true, true, false, false} {
		got, err := p.PromptYesNo(context.Background(), "Continue?")
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestReviewTransactionSkip(t *testing.T) {
	p, _ := newTestPrompter("s\n")

	slots, err := p.ReviewTransaction(context.Background(), pendingTxn())
	require.NoError(t, err)
	assert.Nil(t, slots)
}

func TestReviewTransactionQuit(t *testing.T) {
	p, _ := newTestPrompter("q\n")

	_, err := p.ReviewTransaction(context.Background(), pendingTxn())
	assert.ErrorIs(t, err, ErrReviewAborted)
}

func TestReviewTransactionEdit(t *testing.T) {
	// Enter to edit, accept every default except payee, decline a split.
	input := strings.Join([]string{
		"",        // edit
		"",        // amount (default -45.00)
		"",        // category (default Groceries)
		"Store X", // payee
		"",        // note
		"",        // transfer to
		"n",       // no split
	}, "\n") + "\n"
	p, out := newTestPrompter(input)

	slots, err := p.ReviewTransaction(context.Background(), pendingTxn())
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, "-45.00", slots[0].Amount)
	assert.Equal(t, "Groceries", slots[0].Category)
	assert.Equal(t, "Store X", slots[0].Payee)
	assert.Empty(t, slots[0].TransferTo)

	assert.Contains(t, out.String(), "#501")
}

func TestReviewTransactionSplit(t *testing.T) {
	txn := pendingTxn()
	txn.Amount = -100.00

	input := strings.Join([]string{
		"",        // edit
		"-60.00",  // amount
		"",        // category
		"Store X", // payee
		"",        // note
		"",        // transfer to
		"y",       // add split
		"-40.00",  // amount
		"Dining",  // category
		"Takeaway", // payee
		"",        // note
		"",        // transfer to
		"n",       // no further split
	}, "\n") + "\n"
	p, out := newTestPrompter(input)

	slots, err := p.ReviewTransaction(context.Background(), txn)
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, "-60.00", slots[0].Amount)
	assert.Equal(t, "-40.00", slots[1].Amount)
	assert.Equal(t, "Dining", slots[1].Category)

	// The outstanding remainder is shown before the split question.
	assert.Contains(t, out.String(), "Remaining:")
}
