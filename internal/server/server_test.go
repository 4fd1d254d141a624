package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slh-community/slh-bot/internal/apperrors"
	"github.com/slh-community/slh-bot/internal/command"
	"github.com/slh-community/slh-bot/internal/command/handlers"
	"github.com/slh-community/slh-bot/internal/health"
	"github.com/slh-community/slh-bot/internal/ledger"
	"github.com/slh-community/slh-bot/internal/orders"
	"github.com/slh-community/slh-bot/internal/store/memory"
	"github.com/slh-community/slh-bot/internal/user"
	"github.com/slh-community/slh-bot/internal/usercache"
)

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	st := memory.New()

	router := command.NewRouter(log)
	handlers.RegisterAll(router, handlers.Deps{
		Users: user.NewService(st, usercache.NewCache(nil), log),
		Ledger: ledger.NewService(st, ledger.Config{
			FaucetToken:  "SLH",
			FaucetAmount: decimal.NewFromInt(100),
		}, log),
		Orders: orders.NewService(st, log),
		Errors: apperrors.NewHandler(log, false),
		Log:    log,
	})

	return NewHandler(router, health.NewChecker(log), log)
}

func TestHealthz(t *testing.T) {
	handler := newTestHandler(t)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
}

func TestCommandEndpoint(t *testing.T) {
	handler := newTestHandler(t)

	body := `{"chat_id": 100, "username": "alice", "text": "/faucet"}`
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/command", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp CommandResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Reply, "Received 100 SLH")
}

func TestCommandEndpointRejectsBadJSON(t *testing.T) {
	handler := newTestHandler(t)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/command", strings.NewReader("not json")))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCommandEndpointRequiresChatIDAndText(t *testing.T) {
	handler := newTestHandler(t)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/command", strings.NewReader(`{"text": "/start"}`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCommandEndpointValidationRepliesAreOK(t *testing.T) {
	handler := newTestHandler(t)

	body := `{"chat_id": 100, "text": "/deposit -5"}`
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/command", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp CommandResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Amount must be greater than zero.", resp.Reply)
}
