package engine

import (
	"context"
	"strconv"
	"time"

	"github.com/gandos21/pocketsync/internal/model"
	"github.com/gandos21/pocketsync/internal/service"
)

// ledgerCall records one remote operation in arrival order.
type ledgerCall struct {
	Op            string
	Payee         string
	Fields        service.TransactionFields
	AccountID     int64
	TransactionID int64
}

// mockLedger is a scriptable in-memory Ledger. Errors are queued per
// operation by invocation index so multi-call sequences can fail at a chosen
// step.
type mockLedger struct {
	createErr  map[int]error
	updateErr  map[int]error
	confirmErr map[int]error
	confirmWithPayeeErr error
	userErr       error
	categoriesErr error
	accountsErr   error
	page       *service.TransactionPage
	pageErr    error
	calls      []ledgerCall
	nextID     int64
	creates    int
	updates    int
	confirms   int
	userCalls  int
}

func newMockLedger() *mockLedger {
	return &mockLedger{
		nextID:     700,
		createErr:  make(map[int]error),
		updateErr:  make(map[int]error),
		confirmErr: make(map[int]error),
	}
}

func (m *mockLedger) ops() []string {
	ops := make([]string, len(m.calls))
	for i, c := range m.calls {
		ops[i] = c.Op
	}
	return ops
}

func (m *mockLedger) UserID(context.Context) (int64, error) {
	m.userCalls++
	if m.userErr != nil {
		return 0, m.userErr
	}
	return 42, nil
}

func (m *mockLedger) CategoryIndex(context.Context, int64) (*model.CategoryIndex, error) {
	if m.categoriesErr != nil {
		return nil, m.categoriesErr
	}
	return testSession().Categories, nil
}

func (m *mockLedger) AccountIndex(context.Context, int64) (*model.AccountIndex, error) {
	if m.accountsErr != nil {
		return nil, m.accountsErr
	}
	return testSession().Accounts, nil
}

func (m *mockLedger) Transactions(_ context.Context, _ int64, page int) (*service.TransactionPage, error) {
	m.calls = append(m.calls, ledgerCall{Op: "transactions", TransactionID: int64(page)})
	if m.pageErr != nil {
		return nil, m.pageErr
	}
	return m.page, nil
}

func (m *mockLedger) Create(_ context.Context, accountID int64, fields service.TransactionFields) (*model.Transaction, error) {
	m.calls = append(m.calls, ledgerCall{Op: "create", AccountID: accountID, Fields: fields})
	idx := m.creates
	m.creates++
	if err := m.createErr[idx]; err != nil {
		return nil, err
	}
	m.nextID++
	amount, _ := strconv.ParseFloat(fields.Amount, 64)
	// Creation re-flags for review regardless of the requested flag.
	return &model.Transaction{
		ID:          m.nextID,
		Date:        fields.Date,
		Payee:       fields.Payee,
		Amount:      amount,
		NeedsReview: true,
	}, nil
}

func (m *mockLedger) Update(_ context.Context, transactionID int64, fields service.TransactionFields) (*model.Transaction, error) {
	m.calls = append(m.calls, ledgerCall{Op: "update", TransactionID: transactionID, Fields: fields})
	idx := m.updates
	m.updates++
	if err := m.updateErr[idx]; err != nil {
		return nil, err
	}
	amount, _ := strconv.ParseFloat(fields.Amount, 64)
	return &model.Transaction{
		ID:          transactionID,
		Payee:       fields.Payee,
		Amount:      amount,
		NeedsReview: true,
	}, nil
}

func (m *mockLedger) Confirm(_ context.Context, transactionID int64) (*model.Transaction, error) {
	m.calls = append(m.calls, ledgerCall{Op: "confirm", TransactionID: transactionID})
	idx := m.confirms
	m.confirms++
	if err := m.confirmErr[idx]; err != nil {
		return nil, err
	}
	return &model.Transaction{ID: transactionID}, nil
}

func (m *mockLedger) ConfirmWithPayee(_ context.Context, transactionID int64, payee string) (*model.Transaction, error) {
	m.calls = append(m.calls, ledgerCall{Op: "confirm_with_payee", TransactionID: transactionID, Payee: payee})
	if m.confirmWithPayeeErr != nil {
		return nil, m.confirmWithPayeeErr
	}
	return &model.Transaction{ID: transactionID, Payee: payee}, nil
}

func (m *mockLedger) Delete(_ context.Context, transactionID int64) error {
	m.calls = append(m.calls, ledgerCall{Op: "delete", TransactionID: transactionID})
	return nil
}

// fakeStore is an in-memory ApprovalStore.
type fakeStore struct {
	records map[string]model.ApprovedTransactionRecord
	saveErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: make(map[string]model.ApprovedTransactionRecord)}
}

func (s *fakeStore) Get(transactionID string) (model.ApprovedTransactionRecord, bool) {
	rec, ok := s.records[transactionID]
	return rec, ok
}

func (s *fakeStore) RecordApproval(transactionID string, rec model.ApprovedTransactionRecord) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.records[transactionID] = rec
	return nil
}

func testSession() *model.SessionContext {
	accounts := model.NewAccountIndex()
	accounts.Add("Checking", 100)
	accounts.Add("Wallet", 200)

	categories := model.NewCategoryIndex()
	categories.Add("Food", 1, false)
	categories.Add("Groceries", 2, true)
	categories.Add("Dining", 3, true)
	categories.Add("Rent", 4, true)

	return &model.SessionContext{UserID: 42, Accounts: accounts, Categories: categories}
}

func testEngine() (*Engine, *mockLedger, *fakeStore) {
	ledger := newMockLedger()
	store := newFakeStore()
	eng := New(ledger, store, testSession())
	eng.now = func() time.Time { return time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC) }
	return eng, ledger, store
}
