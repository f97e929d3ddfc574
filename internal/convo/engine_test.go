package convo

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grablet/internal/repo"
	"grablet/internal/router"
)

type fakeStore struct {
	merchants map[string]*repo.Merchant
	messages  []repo.MessageRecord
	upsertErr error
	insertErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{merchants: map[string]*repo.Merchant{}}
}

func (s *fakeStore) Close() {}

func (s *fakeStore) Ping(context.Context) error { return nil }

func (s *fakeStore) RunMigrations(context.Context, fs.FS) error { return nil }

func (s *fakeStore) UpsertMerchant(_ context.Context, profile repo.MerchantProfile) (*repo.Merchant, error) {
	if s.upsertErr != nil {
		return nil, s.upsertErr
	}
	if m, ok := s.merchants[profile.ExternalID]; ok {
		return m, nil
	}
	m := &repo.Merchant{
		ID:         "merchant-" + profile.ExternalID,
		ExternalID: profile.ExternalID,
	}
	s.merchants[profile.ExternalID] = m
	return m, nil
}

func (s *fakeStore) GetMerchantByID(_ context.Context, id string) (*repo.Merchant, error) {
	for _, m := range s.merchants {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, errors.New("not found")
}

func (s *fakeStore) InsertMessage(_ context.Context, msg repo.MessageRecord) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	s.messages = append(s.messages, msg)
	return nil
}

func (s *fakeStore) ListRecentMessages(_ context.Context, merchantID string, limit int) ([]repo.MessageRecord, error) {
	var out []repo.MessageRecord
	for i := len(s.messages) - 1; i >= 0 && len(out) < limit; i-- {
		if s.messages[i].MerchantID == merchantID {
			out = append(out, s.messages[i])
		}
	}
	return out, nil
}

type fakeBackend struct {
	sales    *router.SalesSummary
	lowStock []router.StockItem
	profile  *router.ProfileCard
	advice   string
	err      error
}

func (b *fakeBackend) SalesSummary(context.Context, string) (*router.SalesSummary, error) {
	return b.sales, b.err
}

func (b *fakeBackend) LowStock(context.Context, string) ([]router.StockItem, error) {
	return b.lowStock, b.err
}

func (b *fakeBackend) Profile(context.Context, string) (*router.ProfileCard, error) {
	return b.profile, b.err
}

func (b *fakeBackend) AskAdvice(context.Context, string, string, router.Language) (string, error) {
	return b.advice, b.err
}

func newTestEngine(store repo.Store, backend Backend) *Engine {
	return New(store, backend, nil, slog.New(slog.DiscardHandler))
}

func TestHandleUtteranceSales(t *testing.T) {
	store := newFakeStore()
	backend := &fakeBackend{sales: &router.SalesSummary{Today: "RM1,250", ThisWeek: "RM8,800", VsLastWeek: "+12%"}}
	engine := newTestEngine(store, backend)

	turn, err := engine.HandleUtterance(context.Background(), "ext-1", "http", "show me my sales")
	require.NoError(t, err)

	assert.Equal(t, router.IntentSales, turn.Reply.Intent)
	require.NotNil(t, turn.Reply.Widget.SalesSummary)
	assert.Equal(t, "RM1,250", turn.Reply.Widget.SalesSummary.Today)

	// Both sides of the turn are persisted.
	require.Len(t, store.messages, 2)
	assert.Equal(t, repo.DirectionIn, store.messages[0].Direction)
	assert.Equal(t, repo.DirectionOut, store.messages[1].Direction)
	require.NotNil(t, store.messages[1].Intent)
	assert.Equal(t, "sales", *store.messages[1].Intent)
}

func TestHandleUtteranceAdviceForwardsQuestion(t *testing.T) {
	backend := &fakeBackend{advice: "Bundle your best sellers on rainy days."}
	engine := newTestEngine(newFakeStore(), backend)

	turn, err := engine.HandleUtterance(context.Background(), "ext-1", "http", "any advice for keeping customers?")
	require.NoError(t, err)
	assert.Equal(t, router.IntentAdvice, turn.Reply.Intent)
	assert.Contains(t, turn.Reply.MessageText, "Bundle your best sellers")
}

func TestHandleUtteranceBackendFailureDegrades(t *testing.T) {
	backend := &fakeBackend{err: errors.New("backend down")}
	engine := newTestEngine(newFakeStore(), backend)

	turn, err := engine.HandleUtterance(context.Background(), "ext-1", "http", "show me my sales")
	require.NoError(t, err)
	assert.Equal(t, router.LangEnglish, turn.Reply.Language)
	assert.Equal(t, router.WidgetQuickActions, turn.Reply.Widget.Type)
	assert.True(t, strings.HasPrefix(turn.Reply.MessageText, "Sorry,"))
}

func TestHandleUtterancePersistFailureStillReplies(t *testing.T) {
	store := newFakeStore()
	store.insertErr = errors.New("disk full")
	engine := newTestEngine(store, &fakeBackend{})

	turn, err := engine.HandleUtterance(context.Background(), "ext-1", "http", "help")
	require.NoError(t, err)
	assert.Equal(t, router.IntentHelp, turn.Reply.Intent)
}

func TestHandleUtteranceUpsertFailureStillReplies(t *testing.T) {
	store := newFakeStore()
	store.upsertErr = errors.New("db unreachable")
	engine := newTestEngine(store, &fakeBackend{})

	turn, err := engine.HandleUtterance(context.Background(), "ext-1", "http", "what can you do")
	require.NoError(t, err)
	assert.Empty(t, turn.MerchantID)
	assert.Equal(t, router.IntentHelp, turn.Reply.Intent)
}

func TestHandleActionSales(t *testing.T) {
	backend := &fakeBackend{sales: &router.SalesSummary{Today: "RM500"}}
	engine := newTestEngine(newFakeStore(), backend)

	turn, err := engine.HandleAction(context.Background(), "ext-1", "http", router.ActionSales, router.LangMalay)
	require.NoError(t, err)
	assert.Equal(t, router.IntentSales, turn.Reply.Intent)
	assert.Equal(t, router.LangMalay, turn.Reply.Language)
	require.NotNil(t, turn.Reply.Widget.SalesSummary)
	assert.Equal(t, "RM500", turn.Reply.Widget.SalesSummary.Today)
}

func TestHandleActionDismiss(t *testing.T) {
	engine := newTestEngine(newFakeStore(), &fakeBackend{})

	turn, err := engine.HandleAction(context.Background(), "ext-1", "http", router.ActionDismiss, router.LangEnglish)
	require.NoError(t, err)
	assert.Equal(t, "No problem! Let me know if you need anything else.", turn.Reply.MessageText)
	assert.Equal(t, router.WidgetNone, turn.Reply.Widget.Type)
}

func TestHistory(t *testing.T) {
	store := newFakeStore()
	engine := newTestEngine(store, &fakeBackend{})

	_, err := engine.HandleUtterance(context.Background(), "ext-1", "http", "show my sales")
	require.NoError(t, err)

	records, err := engine.History(context.Background(), "merchant-ext-1", 0)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}
