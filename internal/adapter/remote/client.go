package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/banktechpro/banktech/internal/core/domain"
)

// Client talks to the hosted mock banking API, whose shape is fixed and not
// ours to change: /user for the directory, /transaction for the ledger. Every call
// is independently fallible; the API has no transactions across calls.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) ListUsers(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	if err := c.do(ctx, http.MethodGet, "/user", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *Client) GetUser(ctx context.Context, id string) (*domain.User, error) {
	var user domain.User
	if err := c.do(ctx, http.MethodGet, "/user/"+id, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) CreateUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	var created domain.User
	if err := c.do(ctx, http.MethodPost, "/user", user, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateUserBalance PUTs a partial update carrying only the new balance,
// which is all the mock API needs to adjust an account.
func (c *Client) UpdateUserBalance(ctx context.Context, id string, balance decimal.Decimal) error {
	body := map[string]decimal.Decimal{"balance": balance}
	return c.do(ctx, http.MethodPut, "/user/"+id, body, nil)
}

// UpdateUser PUTs a partial field update and returns the record the server
// holds afterwards. The API merges whatever fields the body carries, so
// callers send only what changed (profile edits, account-type switches).
func (c *Client) UpdateUser(ctx context.Context, id string, fields map[string]any) (*domain.User, error) {
	var updated domain.User
	if err := c.do(ctx, http.MethodPut, "/user/"+id, fields, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// FindUserByAccountNumber resolves a recipient. The API has no lookup
// endpoint, so we list the directory and filter client-side, exactly as the
// account-directory consumers always have.
func (c *Client) FindUserByAccountNumber(ctx context.Context, accountNumber domain.AccountNumber) (*domain.User, error) {
	users, err := c.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].AccountNumber == accountNumber {
			return &users[i], nil
		}
	}
	return nil, domain.ErrRecipientUnknown
}

func (c *Client) ListTransactions(ctx context.Context) ([]domain.TransactionRecord, error) {
	var records []domain.TransactionRecord
	if err := c.do(ctx, http.MethodGet, "/transaction", nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (c *Client) CreateTransaction(ctx context.Context, record domain.TransactionRecord) (*domain.TransactionRecord, error) {
	var created domain.TransactionRecord
	if err := c.do(ctx, http.MethodPost, "/transaction", record, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// SubmitTransfer is the one logical submission operation: create the
// transaction record, debit the source, credit the destination. Underneath
// it is three independent REST calls with no atomicity; a failure partway
// leaves the remote system inconsistent and there is no rollback. Callers
// treat the whole thing as a single fallible step.
func (c *Client) SubmitTransfer(ctx context.Context, payload domain.TransactionRecord) error {
	// Current balances are re-read so a queued transfer replayed much later
	// applies its delta to whatever the balances are now.
	source, err := c.GetUser(ctx, payload.AccountSourceID)
	if err != nil {
		return err
	}
	destination, err := c.GetUser(ctx, payload.AccountDestinationID)
	if err != nil {
		return err
	}

	if _, err := c.CreateTransaction(ctx, payload); err != nil {
		return err
	}
	if err := c.UpdateUserBalance(ctx, source.ID, source.Balance.Sub(payload.Nominal)); err != nil {
		return err
	}
	return c.UpdateUserBalance(ctx, destination.ID, destination.Balance.Add(payload.Nominal))
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	op := method + " " + path

	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return &domain.NetworkError{Op: op, Err: err}
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return &domain.NetworkError{Op: op, Err: err}
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &domain.NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &domain.NetworkError{Op: op, Err: fmt.Errorf("server responded with status %d", resp.StatusCode)}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return &domain.NetworkError{Op: op, Err: err}
		}
	}
	return nil
}
