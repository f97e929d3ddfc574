package backend

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grablet/internal/metrics"
)

type recordingProcessor struct {
	events []WebhookEvent
	err    error
}

func (p *recordingProcessor) HandleBackendEvent(_ context.Context, event WebhookEvent) error {
	p.events = append(p.events, event)
	return p.err
}

func newWebhookTest(processor WebhookProcessor) *WebhookHandler {
	// md5("alerts") / md5("secret")
	return NewWebhookHandler(
		slog.New(slog.DiscardHandler),
		metrics.Registry("grablet_test"),
		md5Hex("alerts"),
		md5Hex("secret"),
		processor,
	)
}

func TestWebhookRejectsMissingAuth(t *testing.T) {
	handler := newWebhookTest(nil)
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader("{}"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestWebhookRejectsWrongCredentials(t *testing.T) {
	handler := newWebhookTest(nil)
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader("{}"))
	req.SetBasicAuth("alerts", "wrong")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestWebhookForwardsEvent(t *testing.T) {
	processor := &recordingProcessor{}
	handler := newWebhookTest(processor)

	body := `{"event_type":"inventory.low_stock","merchant_id":"m-1"}`
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	req.SetBasicAuth("alerts", "secret")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, processor.events, 1)
	assert.Equal(t, "inventory.low_stock", processor.events[0].Type)
	assert.JSONEq(t, body, string(processor.events[0].Payload))
}

func TestWebhookEventTypeFromHeader(t *testing.T) {
	processor := &recordingProcessor{}
	handler := newWebhookTest(processor)

	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader("{}"))
	req.SetBasicAuth("alerts", "secret")
	req.Header.Set("X-Grablet-Event", "merchant.updated")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, processor.events, 1)
	assert.Equal(t, "merchant.updated", processor.events[0].Type)
}

func TestWebhookMethodNotAllowed(t *testing.T) {
	handler := newWebhookTest(nil)
	req := httptest.NewRequest(http.MethodGet, "/webhook", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
