package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvloznov/expense-ledger/internal/api/handlers"
	"github.com/dvloznov/expense-ledger/internal/domain"
	"github.com/dvloznov/expense-ledger/internal/extract"
	"github.com/dvloznov/expense-ledger/internal/store/memory"
)

// stubExtractor returns fixed drafts or a fixed error.
type stubExtractor struct {
	drafts []domain.Draft
	err    error
}

func (s *stubExtractor) Extract(ctx context.Context, req extract.Request) ([]domain.Draft, error) {
	return s.drafts, s.err
}

func newTestServer(t *testing.T, ex handlers.TransactionExtractor) *httptest.Server {
	t.Helper()
	log := zerolog.Nop()
	router := NewRouter(
		handlers.NewTransactionsHandler(memory.New(), log),
		handlers.NewExtractHandler(ex, log),
		log,
	)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, map[string]interface{}) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "user-1")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var decoded map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		decoded = nil
	}
	return resp, decoded
}

func TestTransactionLifecycleOverHTTP(t *testing.T) {
	srv := newTestServer(t, &stubExtractor{})

	// Create unconfirmed.
	resp, created := doJSON(t, http.MethodPost, srv.URL+"/api/v1/transactions", map[string]any{
		"date":        "2025-01-15T00:00:00Z",
		"amount":      12550,
		"category":    "food",
		"description": "lunch",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id := created["id"].(string)
	require.NotEmpty(t, id)
	assert.Equal(t, false, created["isConfirmed"])

	// Appears in the unconfirmed partition.
	resp, list := doJSON(t, http.MethodGet, srv.URL+"/api/v1/transactions?isConfirmed=false", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), list["totalCount"])

	// Confirm.
	resp, _ = doJSON(t, http.MethodPut, srv.URL+"/api/v1/transactions/"+id, map[string]any{
		"isConfirmed": true,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Moved partitions.
	_, list = doJSON(t, http.MethodGet, srv.URL+"/api/v1/transactions?isConfirmed=false", nil)
	assert.Equal(t, float64(0), list["totalCount"])
	_, list = doJSON(t, http.MethodGet, srv.URL+"/api/v1/transactions?isConfirmed=true", nil)
	assert.Equal(t, float64(1), list["totalCount"])

	// Confirmation is one-way.
	resp, _ = doJSON(t, http.MethodPut, srv.URL+"/api/v1/transactions/"+id, map[string]any{
		"isConfirmed": false,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Hard delete.
	resp, body := doJSON(t, http.MethodDelete, srv.URL+"/api/v1/transactions/"+id, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), body["deletedCount"])

	resp, _ = doJSON(t, http.MethodDelete, srv.URL+"/api/v1/transactions/"+id, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestBulkCreate_AtomicOverHTTP(t *testing.T) {
	srv := newTestServer(t, &stubExtractor{})

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/v1/transactions/bulk", map[string]any{
		"transactions": []map[string]any{
			{"date": "2025-01-01", "amount": 100, "category": "food", "description": "tea"},
			{"date": "2025-01-02", "amount": 100, "category": "", "description": "no category"},
		},
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, float64(1), body["index"])

	// Nothing persisted.
	_, list := doJSON(t, http.MethodGet, srv.URL+"/api/v1/transactions", nil)
	assert.Equal(t, float64(0), list["totalCount"])
}

func TestCreate_ValidationDetails(t *testing.T) {
	srv := newTestServer(t, &stubExtractor{})

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/v1/transactions", map[string]any{
		"date":   "bogus",
		"amount": 10.5,
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	details := body["details"].([]interface{})
	assert.Len(t, details, 4)
}

func TestExtractEndpoint(t *testing.T) {
	amount := float64(50000)
	srv := newTestServer(t, &stubExtractor{
		drafts: []domain.Draft{{Date: "2025-06-01", Amount: &amount, Category: "food", Description: "groceries"}},
	})

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/v1/extract", map[string]any{
		"transactionsDescription": "bought groceries for 500 rupees",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	txs := body["transactions"].([]interface{})
	require.Len(t, txs, 1)
	first := txs[0].(map[string]interface{})
	assert.Equal(t, float64(50000), first["amount"])

	// Nothing reached the store.
	_, list := doJSON(t, http.MethodGet, srv.URL+"/api/v1/transactions", nil)
	assert.Equal(t, float64(0), list["totalCount"])
}

func TestExtractEndpoint_Refusal(t *testing.T) {
	srv := newTestServer(t, &stubExtractor{
		err: &extract.RefusalError{Reason: "no expense data found"},
	})

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/v1/extract", map[string]any{
		"transactionsDescription": "the weather is nice today",
	})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "no expense data found", body["error"])
}

func TestExtractEndpoint_ServiceError(t *testing.T) {
	srv := newTestServer(t, &stubExtractor{
		err: extract.ErrService,
	})

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/v1/extract", map[string]any{
		"transactionsDescription": "cab 300",
	})
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

// stubGenerator feeds canned model output to a real extractor.
type stubGenerator struct {
	out string
}

func (s *stubGenerator) Generate(ctx context.Context, instructions, userText string) (string, error) {
	return s.out, nil
}

func TestExtractEndpoint_SchemaViolationIsUpstreamFailure(t *testing.T) {
	// A fractional-paise candidate breaks the model's output contract. The
	// user's input was fine, so this must map to a retryable 502, not a
	// validation 400.
	ex := extract.New(&stubGenerator{
		out: `{"transactions":[{"date":"2025-06-01","amount":125.5,"category":"food","description":"lunch"}]}`,
	}, zerolog.Nop())
	srv := newTestServer(t, ex)

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/v1/extract", map[string]any{
		"transactionsDescription": "lunch for 1.255 rupees",
	})
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.NotContains(t, body, "details")
}

func TestExtractEndpoint_EmptyTextIsClientError(t *testing.T) {
	ex := extract.New(&stubGenerator{out: `{"transactions":[]}`}, zerolog.Nop())
	srv := newTestServer(t, ex)

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/v1/extract", map[string]any{
		"transactionsDescription": "",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Validation failed", body["error"])
}

func TestMissingUserIdentity(t *testing.T) {
	srv := newTestServer(t, &stubExtractor{})

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/v1/transactions", nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHealthEndpointUnprotected(t *testing.T) {
	srv := newTestServer(t, &stubExtractor{})

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
