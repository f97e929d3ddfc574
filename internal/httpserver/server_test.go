package httpserver

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grablet/internal/backend"
	"grablet/internal/convo"
	"grablet/internal/repo"
	"grablet/internal/router"
	"grablet/migrations"
)

func newBackendStub(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/sales/summary"):
			json.NewEncoder(w).Encode(router.SalesSummary{Today: "RM1,250", ThisWeek: "RM8,800", VsLastWeek: "+12%"})
		case strings.HasSuffix(r.URL.Path, "/inventory/low-stock"):
			json.NewEncoder(w).Encode([]router.StockItem{{Name: "Chicken Rice", Current: 5}})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestServer(t *testing.T, basePath string) *Server {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)

	store, err := repo.NewSQLite(context.Background(), t.TempDir()+"/test.db", logger)
	require.NoError(t, err)
	t.Cleanup(store.Close)
	require.NoError(t, store.RunMigrations(context.Background(), migrations.Files))

	backendClient := backend.New(backend.Config{BaseURL: newBackendStub(t).URL}, logger, nil, nil)
	engine := convo.New(store, backendClient, nil, logger)

	srv := New(":0", logger, nil, Handlers{}, basePath)
	srv.SetDependencies(Dependencies{
		Repository: store,
		Engine:     engine,
		Backend:    backendClient,
	})
	return srv
}

func doRequest(srv *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, "")
	rec := doRequest(srv, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestChatSales(t *testing.T) {
	srv := newTestServer(t, "")

	body := `{"merchant_id":"ext-1","text":"show me my sales"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/chat", strings.NewReader(body))
	rec := doRequest(srv, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var turn convo.Turn
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &turn))
	assert.Equal(t, router.IntentSales, turn.Reply.Intent)
	assert.Equal(t, router.LangEnglish, turn.Reply.Language)
	require.NotNil(t, turn.Reply.Widget.SalesSummary)
	assert.Equal(t, "RM1,250", turn.Reply.Widget.SalesSummary.Today)
	assert.NotEmpty(t, turn.MerchantID)
}

func TestChatRequiresMerchantID(t *testing.T) {
	srv := newTestServer(t, "")
	req := httptest.NewRequest(http.MethodPost, "/v1/chat", strings.NewReader(`{"text":"hello"}`))
	rec := doRequest(srv, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatActionDismiss(t *testing.T) {
	srv := newTestServer(t, "")

	body := `{"merchant_id":"ext-1","action":"dismiss","language":"english"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/chat/action", strings.NewReader(body))
	rec := doRequest(srv, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var turn convo.Turn
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &turn))
	assert.Equal(t, "No problem! Let me know if you need anything else.", turn.Reply.MessageText)
}

func TestChatHistoryRoundTrip(t *testing.T) {
	srv := newTestServer(t, "")

	req := httptest.NewRequest(http.MethodPost, "/v1/chat", strings.NewReader(`{"merchant_id":"ext-1","text":"help"}`))
	rec := doRequest(srv, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var turn convo.Turn
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &turn))

	histReq := httptest.NewRequest(http.MethodGet, "/v1/chat/history?merchant_id="+turn.MerchantID, nil)
	histRec := doRequest(srv, histReq)
	require.Equal(t, http.StatusOK, histRec.Code)

	var hist struct {
		Messages []repo.MessageRecord `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(histRec.Body.Bytes(), &hist))
	assert.Len(t, hist.Messages, 2)
}

func TestSynthesizeUnavailableWithoutSpeech(t *testing.T) {
	srv := newTestServer(t, "")
	req := httptest.NewRequest(http.MethodPost, "/v1/speech/synthesize", strings.NewReader(`{"text":"hello"}`))
	rec := doRequest(srv, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestReloadSnapshotCacheRequiresMerchantID(t *testing.T) {
	srv := newTestServer(t, "")
	req := httptest.NewRequest(http.MethodPost, "/admin/reload-snapshot-cache", nil)
	rec := doRequest(srv, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBasePathMounting(t *testing.T) {
	srv := newTestServer(t, "/bot")

	rec := doRequest(srv, httptest.NewRequest(http.MethodGet, "/bot/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(srv, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(srv, httptest.NewRequest(http.MethodGet, "/botlegs/healthz", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
