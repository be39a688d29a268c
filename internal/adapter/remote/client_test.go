package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banktechpro/banktech/internal/core/domain"
)

// mockAPI mimics the hosted mock REST API closely enough for the client:
// /user is a directory, /transaction a ledger, PUT /user/:id overwrites the
// balance.
type mockAPI struct {
	mu           sync.Mutex
	users        map[string]*domain.User
	transactions []domain.TransactionRecord
	failCreate   bool
	failUpdate   map[string]bool
}

func newMockAPI(users ...*domain.User) *mockAPI {
	api := &mockAPI{users: map[string]*domain.User{}, failUpdate: map[string]bool{}}
	for _, u := range users {
		api.users[u.ID] = u
	}
	return api
}

func (m *mockAPI) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /user", func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		defer m.mu.Unlock()
		list := make([]*domain.User, 0, len(m.users))
		for _, u := range m.users {
			list = append(list, u)
		}
		json.NewEncoder(w).Encode(list)
	})
	mux.HandleFunc("GET /user/{id}", func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		defer m.mu.Unlock()
		u, ok := m.users[r.PathValue("id")]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(u)
	})
	mux.HandleFunc("PUT /user/{id}", func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		defer m.mu.Unlock()
		id := r.PathValue("id")
		if m.failUpdate[id] {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		u, ok := m.users[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		// The hosted API merges partial bodies into the stored record.
		json.NewDecoder(r.Body).Decode(u)
		json.NewEncoder(w).Encode(u)
	})
	mux.HandleFunc("POST /user", func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		defer m.mu.Unlock()
		var u domain.User
		json.NewDecoder(r.Body).Decode(&u)
		u.ID = "42"
		m.users[u.ID] = &u
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(&u)
	})
	mux.HandleFunc("GET /transaction", func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		defer m.mu.Unlock()
		json.NewEncoder(w).Encode(m.transactions)
	})
	mux.HandleFunc("POST /transaction", func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.failCreate {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		var rec domain.TransactionRecord
		json.NewDecoder(r.Body).Decode(&rec)
		rec.ID = "tx-1"
		m.transactions = append(m.transactions, rec)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(&rec)
	})
	return mux
}

func TestFindUserByAccountNumber(t *testing.T) {
	api := newMockAPI(
		&domain.User{ID: "1", Name: "Ayu", AccountNumber: "111"},
		&domain.User{ID: "2", Name: "Budi", AccountNumber: "222"},
	)
	srv := httptest.NewServer(api.handler())
	defer srv.Close()
	client := NewClient(srv.URL)

	user, err := client.FindUserByAccountNumber(context.Background(), "222")
	require.NoError(t, err)
	assert.Equal(t, "Budi", user.Name)

	_, err = client.FindUserByAccountNumber(context.Background(), "999")
	var notFound *domain.NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestSubmitTransfer_AppliesBothBalanceDeltas(t *testing.T) {
	api := newMockAPI(
		&domain.User{ID: "1", Name: "Ayu", Balance: decimal.NewFromInt(100000)},
		&domain.User{ID: "2", Name: "Budi", Balance: decimal.NewFromInt(20000)},
	)
	srv := httptest.NewServer(api.handler())
	defer srv.Close()
	client := NewClient(srv.URL)

	payload := domain.TransactionRecord{
		AccountSourceID:      "1",
		AccountDestinationID: "2",
		Nominal:              decimal.NewFromInt(50000),
		Category:             "transfer",
	}
	require.NoError(t, client.SubmitTransfer(context.Background(), payload))

	assert.True(t, api.users["1"].Balance.Equal(decimal.NewFromInt(50000)))
	assert.True(t, api.users["2"].Balance.Equal(decimal.NewFromInt(70000)))
	require.Len(t, api.transactions, 1)
	assert.True(t, api.transactions[0].Nominal.Equal(decimal.NewFromInt(50000)))
}

func TestSubmitTransfer_CreateFailureIsNetworkError(t *testing.T) {
	api := newMockAPI(
		&domain.User{ID: "1", Balance: decimal.NewFromInt(100000)},
		&domain.User{ID: "2", Balance: decimal.NewFromInt(0)},
	)
	api.failCreate = true
	srv := httptest.NewServer(api.handler())
	defer srv.Close()
	client := NewClient(srv.URL)

	err := client.SubmitTransfer(context.Background(), domain.TransactionRecord{
		AccountSourceID:      "1",
		AccountDestinationID: "2",
		Nominal:              decimal.NewFromInt(10),
	})
	var netErr *domain.NetworkError
	require.ErrorAs(t, err, &netErr)

	// No balance was touched because the record creation comes first.
	assert.True(t, api.users["1"].Balance.Equal(decimal.NewFromInt(100000)))
}

func TestSubmitTransfer_NoRollbackAfterPartialFailure(t *testing.T) {
	api := newMockAPI(
		&domain.User{ID: "1", Balance: decimal.NewFromInt(100000)},
		&domain.User{ID: "2", Balance: decimal.NewFromInt(0)},
	)
	api.failUpdate["2"] = true
	srv := httptest.NewServer(api.handler())
	defer srv.Close()
	client := NewClient(srv.URL)

	err := client.SubmitTransfer(context.Background(), domain.TransactionRecord{
		AccountSourceID:      "1",
		AccountDestinationID: "2",
		Nominal:              decimal.NewFromInt(1000),
	})
	require.Error(t, err)

	// The debit already went through; the three calls are independent and
	// nothing is rolled back.
	assert.True(t, api.users["1"].Balance.Equal(decimal.NewFromInt(99000)))
	assert.True(t, api.users["2"].Balance.Equal(decimal.NewFromInt(0)))
}

func TestRegisterRoundTrip(t *testing.T) {
	api := newMockAPI()
	srv := httptest.NewServer(api.handler())
	defer srv.Close()
	client := NewClient(srv.URL)

	created, err := client.CreateUser(context.Background(), &domain.User{
		Name:    "Citra",
		Email:   "citra@example.com",
		Balance: decimal.NewFromInt(1000000),
	})
	require.NoError(t, err)
	assert.Equal(t, "42", created.ID)
	assert.True(t, created.Balance.Equal(decimal.NewFromInt(1000000)))
}

func TestUpdateUser_MergesPartialFields(t *testing.T) {
	api := newMockAPI(
		&domain.User{ID: "1", Name: "Ayu", Email: "ayu@example.com", AccountType: "checking", Balance: decimal.NewFromInt(100000)},
	)
	srv := httptest.NewServer(api.handler())
	defer srv.Close()
	client := NewClient(srv.URL)

	updated, err := client.UpdateUser(context.Background(), "1", map[string]any{
		"name":        "Ayu Lestari",
		"accountType": "savings",
	})
	require.NoError(t, err)
	assert.Equal(t, "Ayu Lestari", updated.Name)
	assert.Equal(t, "savings", updated.AccountType)
	// Untouched fields survive the merge.
	assert.Equal(t, "ayu@example.com", updated.Email)
	assert.True(t, updated.Balance.Equal(decimal.NewFromInt(100000)))
}
