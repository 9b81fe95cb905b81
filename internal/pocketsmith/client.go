// Package pocketsmith implements the typed client for the PocketSmith v2 API.
package pocketsmith

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gandos21/pocketsync/internal/common"
	"github.com/gandos21/pocketsync/internal/model"
	"github.com/gandos21/pocketsync/internal/service"
)

// DefaultBaseURL is the production API endpoint.
const DefaultBaseURL = "https://api.pocketsmith.com/v2"

// hiddenCategoryMarker truncates category index construction: every category
// from the first marked one onward, siblings included, is excluded. This
// relies on hidden categories being the last top-level entries on the remote
// side.
const hiddenCategoryMarker = "Hidden"

// Client implements service.Ledger against the PocketSmith REST API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	key        string
}

// NewClient creates a client after validating the developer key.
func NewClient(key string) (*Client, error) {
	return NewClientWithBaseURL(key, DefaultBaseURL)
}

// NewClientWithBaseURL creates a client against a non-default endpoint.
func NewClientWithBaseURL(key, baseURL string) (*Client, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		key:     key,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// RemoteCallError reports a non-success HTTP status from a single remote call.
type RemoteCallError struct {
	Op     string
	Body   string
	Status int
}

func (e *RemoteCallError) Error() string {
	return fmt.Sprintf("%s failed: HTTP %d: %s", e.Op, e.Status, e.Body)
}

// API response types.
type userResponse struct {
	ID int64 `json:"id"`
}

type categoryNode struct {
	Title    string         `json:"title"`
	Children []categoryNode `json:"children"`
	ID       int64          `json:"id"`
}

type accountResponse struct {
	Name string `json:"name"`
	// ID is the transaction-targeting identifier used for posting.
	ID int64 `json:"id"`
	// AccountID is the account-level identifier; not valid for posting.
	AccountID int64 `json:"account_id"`
}

type categoryRef struct {
	Title string `json:"title"`
	ID    int64  `json:"id"`
}

type accountRef struct {
	Name string `json:"name"`
	ID   int64  `json:"id"`
}

type transactionResponse struct {
	Payee              string       `json:"payee"`
	OriginalPayee      string       `json:"original_payee"`
	Date               string       `json:"date"`
	UploadSource       string       `json:"upload_source"`
	Status             string       `json:"status"`
	Note               *string      `json:"note"`
	Category           *categoryRef `json:"category"`
	TransactionAccount *accountRef  `json:"transaction_account"`
	ID                 int64        `json:"id"`
	Amount             float64      `json:"amount"`
	NeedsReview        bool         `json:"needs_review"`
}

func (r transactionResponse) toModel() model.Transaction {
	t := model.Transaction{
		ID:            r.ID,
		Date:          r.Date,
		Payee:         r.Payee,
		OriginalPayee: r.OriginalPayee,
		Amount:        r.Amount,
		NeedsReview:   r.NeedsReview,
		UploadSource:  r.UploadSource,
		Status:        r.Status,
		Category:      model.UncategorisedLabel,
	}
	if r.Note != nil {
		t.Note = *r.Note
	}
	if r.Category != nil {
		t.Category = r.Category.Title
	}
	if r.TransactionAccount != nil {
		t.Account = r.TransactionAccount.Name
	}
	return t
}

// transactionPayload is the create/update request body. Date is omitted on
// updates of an existing transaction.
type transactionPayload struct {
	Payee       string `json:"payee"`
	Amount      string `json:"amount"`
	Date        string `json:"date,omitempty"`
	Note        string `json:"note"`
	CategoryID  int64  `json:"category_id"`
	NeedsReview bool   `json:"needs_review"`
}

// confirmPayload clears the needs-review flag, optionally restoring payee.
type confirmPayload struct {
	Payee       *string `json:"payee,omitempty"`
	NeedsReview bool    `json:"needs_review"`
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, op string, wantStatus int, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode %s request: %w", op, err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Developer-Key", c.key)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	slog.Debug("PocketSmith request", "op", op, "method", method, "path", path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read %s response: %w", op, err)
	}

	if resp.StatusCode != wantStatus {
		return &RemoteCallError{Op: op, Status: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to decode %s response: %w", op, err)
		}
	}
	return nil
}

// UserID fetches the caller's identity, required as a prefix for the
// user-scoped endpoints.
func (c *Client) UserID(ctx context.Context) (int64, error) {
	var user userResponse
	if err := c.do(ctx, http.MethodGet, "/me", nil, nil, "fetch user", http.StatusOK, &user); err != nil {
		return 0, err
	}
	return user.ID, nil
}

// CategoryIndex builds the name-to-identifier category mapping from the
// remote category tree. Categories nested one level deep are flattened: a
// parent with children contributes only its children as selectable leaves.
func (c *Client) CategoryIndex(ctx context.Context, userID int64) (*model.CategoryIndex, error) {
	var categories []categoryNode
	path := fmt.Sprintf("/users/%d/categories", userID)
	if err := c.do(ctx, http.MethodGet, path, nil, nil, "fetch categories", http.StatusOK, &categories); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrIndexBuild, err)
	}

	idx := model.NewCategoryIndex()
	for _, cat := range categories {
		if strings.Contains(cat.Title, hiddenCategoryMarker) {
			break
		}
		idx.Add(cat.Title, cat.ID, len(cat.Children) == 0)
		for _, child := range cat.Children {
			idx.Add(child.Title, child.ID, true)
		}
	}
	return idx, nil
}

// AccountIndex builds the account name mapping. The remote payload carries
// two identifiers per account; the index keeps the transaction-targeting id.
func (c *Client) AccountIndex(ctx context.Context, userID int64) (*model.AccountIndex, error) {
	var accounts []accountResponse
	path := fmt.Sprintf("/users/%d/transaction_accounts", userID)
	if err := c.do(ctx, http.MethodGet, path, nil, nil, "fetch accounts", http.StatusOK, &accounts); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrIndexBuild, err)
	}

	idx := model.NewAccountIndex()
	for _, acct := range accounts {
		idx.Add(acct.Name, acct.ID)
	}
	return idx, nil
}

// Transactions fetches one page of the user's transactions. The page size is
// fixed by the remote service at 30 entries.
func (c *Client) Transactions(ctx context.Context, userID int64, page int) (*service.TransactionPage, error) {
	if page < 1 {
		page = 1
	}
	var transactions []transactionResponse
	path := fmt.Sprintf("/users/%d/transactions", userID)
	query := url.Values{"page": {fmt.Sprintf("%d", page)}}
	if err := c.do(ctx, http.MethodGet, path, query, nil, "fetch transactions", http.StatusOK, &transactions); err != nil {
		return nil, err
	}

	result := &service.TransactionPage{All: make([]model.Transaction, 0, len(transactions))}
	for _, txn := range transactions {
		t := txn.toModel()
		result.All = append(result.All, t)
		if t.NeedsReview {
			result.Pending = append(result.Pending, t)
		}
	}
	return result, nil
}

// Create posts a new transaction into an account, identified by its
// transaction-targeting id. The remote service always flags new transactions
// for review regardless of the needs-review field in the payload.
func (c *Client) Create(ctx context.Context, accountID int64, fields service.TransactionFields) (*model.Transaction, error) {
	var created transactionResponse
	path := fmt.Sprintf("/transaction_accounts/%d/transactions", accountID)
	if err := c.do(ctx, http.MethodPost, path, nil, paramsFromFields(fields), "create transaction", http.StatusCreated, &created); err != nil {
		return nil, err
	}
	t := created.toModel()
	return &t, nil
}

// Update applies fields to an existing transaction. If payee or amount
// changed, the remote service re-flags the transaction for review even when
// the payload requests needs-review false; a separate Confirm call clears it.
func (c *Client) Update(ctx context.Context, transactionID int64, fields service.TransactionFields) (*model.Transaction, error) {
	var updated transactionResponse
	path := fmt.Sprintf("/transactions/%d", transactionID)
	if err := c.do(ctx, http.MethodPut, path, nil, paramsFromFields(fields), "update transaction", http.StatusOK, &updated); err != nil {
		return nil, err
	}
	t := updated.toModel()
	return &t, nil
}

// Confirm clears the needs-review flag without touching any other field.
func (c *Client) Confirm(ctx context.Context, transactionID int64) (*model.Transaction, error) {
	return c.confirm(ctx, transactionID, nil)
}

// ConfirmWithPayee clears the needs-review flag and overwrites payee. Used
// when re-clearing a transaction whose payee was previously rewritten to a
// transfer label, so repeated re-reviews do not revert the display.
func (c *Client) ConfirmWithPayee(ctx context.Context, transactionID int64, payee string) (*model.Transaction, error) {
	return c.confirm(ctx, transactionID, &payee)
}

func (c *Client) confirm(ctx context.Context, transactionID int64, payee *string) (*model.Transaction, error) {
	var updated transactionResponse
	path := fmt.Sprintf("/transactions/%d", transactionID)
	payload := confirmPayload{Payee: payee, NeedsReview: false}
	if err := c.do(ctx, http.MethodPut, path, nil, payload, "confirm transaction", http.StatusOK, &updated); err != nil {
		return nil, err
	}
	t := updated.toModel()
	return &t, nil
}

// Delete removes a transaction.
func (c *Client) Delete(ctx context.Context, transactionID int64) error {
	path := fmt.Sprintf("/transactions/%d", transactionID)
	return c.do(ctx, http.MethodDelete, path, nil, nil, "delete transaction", http.StatusNoContent, nil)
}

func paramsFromFields(fields service.TransactionFields) transactionPayload {
	return transactionPayload{
		Payee:       fields.Payee,
		Amount:      fields.Amount,
		Date:        fields.Date,
		Note:        fields.Note,
		CategoryID:  fields.CategoryID,
		NeedsReview: fields.NeedsReview,
	}
}
