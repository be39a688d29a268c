package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banktechpro/banktech/internal/adapter/middleware"
	"github.com/banktechpro/banktech/internal/adapter/remote"
	"github.com/banktechpro/banktech/internal/adapter/storage"
	"github.com/banktechpro/banktech/internal/core/connectivity"
	"github.com/banktechpro/banktech/internal/core/domain"
	"github.com/banktechpro/banktech/internal/core/security"
	"github.com/banktechpro/banktech/internal/core/wizard"
)

type testEnv struct {
	app     *fiber.App
	store   *storage.MemoryStore
	monitor *connectivity.Monitor
	token   string
}

// newTestEnv wires the wizard routes the way main does, against a stub
// directory server, with an authenticated session already open.
func newTestEnv(t *testing.T, online bool) *testEnv {
	t.Helper()

	directory := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet && r.URL.Path == "/user" {
			json.NewEncoder(w).Encode([]domain.User{
				{ID: "2", Name: "Budi", AccountNumber: "222", Balance: decimal.NewFromInt(20000)},
			})
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(directory.Close)

	store := storage.NewMemoryStore()
	sender := &domain.User{ID: "1", Name: "Ayu", AccountNumber: "111", Balance: decimal.NewFromInt(100000)}
	require.NoError(t, store.SaveUser(sender))

	token, hash, err := security.GenerateSessionToken()
	require.NoError(t, err)
	require.NoError(t, store.SaveSession(hash))

	client := remote.NewClient(directory.URL)
	monitor := connectivity.NewMonitor(online)
	transferWizard := wizard.New(client, store, monitor.Online)

	transferHandler := &TransferHandler{Wizard: transferWizard, Remote: client, Store: store}
	networkHandler := &NetworkHandler{Monitor: monitor, Store: store}

	app := fiber.New()
	private := app.Group("/v1").Use(middleware.Protected(store))
	private.Get("/transfer", transferHandler.State)
	private.Post("/transfer/recipient", transferHandler.Recipient)
	private.Post("/transfer/amount", transferHandler.Amount)
	private.Post("/transfer/confirm", middleware.Idempotency(store), transferHandler.Confirm)
	private.Post("/transfer/reset", transferHandler.Reset)
	private.Get("/network", networkHandler.Status)

	return &testEnv{app: app, store: store, monitor: monitor, token: token}
}

func (e *testEnv) request(t *testing.T, method, path string, body any, headers map[string]string) (*http.Response, wizard.State) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Authorization", "Bearer "+e.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var state wizard.State
	json.Unmarshal(raw, &state)
	return resp, state
}

func TestTransferRoutes_RequireSession(t *testing.T) {
	env := newTestEnv(t, true)

	req := httptest.NewRequest(http.MethodGet, "/v1/transfer", nil)
	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req = httptest.NewRequest(http.MethodGet, "/v1/transfer", nil)
	req.Header.Set("Authorization", "Bearer bt_session_wrong")
	resp, err = env.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestOfflineConfirm_QueuesAndReportsPending(t *testing.T) {
	env := newTestEnv(t, false)

	resp, state := env.request(t, http.MethodPost, "/v1/transfer/recipient", map[string]string{"accountNumber": "222"}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, wizard.StepAmount, state.Step)

	resp, state = env.request(t, http.MethodPost, "/v1/transfer/amount", map[string]string{"amount": "50000", "notes": "rent"}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, wizard.StepConfirm, state.Step)

	resp, state = env.request(t, http.MethodPost, "/v1/transfer/confirm", map[string]string{}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, wizard.StepResult, state.Step)
	assert.Equal(t, wizard.StatusSuccess, state.Status)

	pending, err := env.store.ListPending()
	require.NoError(t, err)
	require.Len(t, pending, 1)

	var status struct {
		Online       bool `json:"online"`
		PendingCount int  `json:"pendingCount"`
	}
	req := httptest.NewRequest(http.MethodGet, "/v1/network", nil)
	req.Header.Set("Authorization", "Bearer "+env.token)
	netResp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	require.NoError(t, json.NewDecoder(netResp.Body).Decode(&status))
	assert.False(t, status.Online)
	assert.Equal(t, 1, status.PendingCount)
}

func TestConfirm_IdempotencyKeyBlocksDoubleSubmission(t *testing.T) {
	env := newTestEnv(t, false)
	headers := map[string]string{"Idempotency-Key": "once-only"}

	env.request(t, http.MethodPost, "/v1/transfer/recipient", map[string]string{"accountNumber": "222"}, nil)
	env.request(t, http.MethodPost, "/v1/transfer/amount", map[string]string{"amount": "1000"}, nil)

	resp, _ := env.request(t, http.MethodPost, "/v1/transfer/confirm", map[string]string{}, headers)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, resp.Header.Get("X-Idempotency-Hit"))

	// The retry replays the cached response instead of reaching the wizard.
	resp, _ = env.request(t, http.MethodPost, "/v1/transfer/confirm", map[string]string{}, headers)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "true", resp.Header.Get("X-Idempotency-Hit"))

	pending, err := env.store.ListPending()
	require.NoError(t, err)
	assert.Len(t, pending, 1, "one transfer despite the retried confirm")
}

func TestRecipientValidationErrorsOverHTTP(t *testing.T) {
	env := newTestEnv(t, true)

	// Self transfer
	resp, state := env.request(t, http.MethodPost, "/v1/transfer/recipient", map[string]string{"accountNumber": "111"}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "You cannot send money to your own account.", state.ErrorMessage)

	// Unknown recipient
	resp, state = env.request(t, http.MethodPost, "/v1/transfer/recipient", map[string]string{"accountNumber": "999"}, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Recipient account not found.", state.ErrorMessage)

	// Reset clears everything
	resp, state = env.request(t, http.MethodPost, "/v1/transfer/reset", map[string]string{}, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, wizard.StepRecipient, state.Step)
	assert.Empty(t, state.ErrorMessage)
}
