// Package convo drives one conversation turn end to end: resolve the
// utterance, fetch the data the reply widget needs, compose the reply,
// and record both sides of the exchange.
package convo

import (
	"context"
	"log/slog"

	"grablet/internal/metrics"
	"grablet/internal/repo"
	"grablet/internal/router"
)

const defaultHistoryLimit = 10

// Backend supplies the merchant data that reply widgets render.
type Backend interface {
	SalesSummary(ctx context.Context, merchantID string) (*router.SalesSummary, error)
	LowStock(ctx context.Context, merchantID string) ([]router.StockItem, error)
	Profile(ctx context.Context, merchantID string) (*router.ProfileCard, error)
	AskAdvice(ctx context.Context, merchantID, question string, lang router.Language) (string, error)
}

// Engine orchestrates conversation turns.
type Engine struct {
	store   repo.Store
	backend Backend
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// New creates a conversation engine.
func New(store repo.Store, backend Backend, metricRegistry *metrics.Metrics, logger *slog.Logger) *Engine {
	return &Engine{
		store:   store,
		backend: backend,
		metrics: metricRegistry,
		logger:  logger.With("component", "convo"),
	}
}

// Turn is the outcome of one handled utterance or action.
type Turn struct {
	MerchantID string       `json:"merchant_id"`
	Reply      router.Reply `json:"reply"`
}

// HandleUtterance routes a merchant utterance to a reply. The reply is
// always produced: data fetch failures degrade to an apology, and
// persistence failures are logged but never block the answer.
func (e *Engine) HandleUtterance(ctx context.Context, externalID, channel, text string) (*Turn, error) {
	if e.metrics != nil {
		e.metrics.ChatRequests.WithLabelValues(channel).Inc()
	}

	merchant := e.upsertMerchant(ctx, externalID)

	intent, lang := router.Resolve(text)
	if e.metrics != nil {
		e.metrics.IntentMatches.WithLabelValues(string(intent), string(lang)).Inc()
	}

	snapshots, fetchErr := e.fetchSnapshots(ctx, merchant, intent, text, lang)

	var reply router.Reply
	if fetchErr != nil {
		e.logger.Warn("snapshot fetch failed, degrading reply",
			"intent", intent, "merchant", externalID, "error", fetchErr)
		if e.metrics != nil {
			e.metrics.Errors.WithLabelValues("convo_snapshot").Inc()
		}
		reply = apologyReply()
	} else {
		reply = router.Compose(intent, lang, snapshots)
	}

	e.recordTurn(ctx, merchant, channel, text, reply)
	return &Turn{MerchantID: merchantID(merchant), Reply: reply}, nil
}

// HandleAction routes a quick-reply action tap to a reply.
func (e *Engine) HandleAction(ctx context.Context, externalID, channel, action string, lang router.Language) (*Turn, error) {
	if e.metrics != nil {
		e.metrics.ChatRequests.WithLabelValues(channel).Inc()
	}

	merchant := e.upsertMerchant(ctx, externalID)

	var snapshots router.Snapshots
	if e.backend != nil && merchant != nil {
		switch action {
		case router.ActionSales:
			if summary, err := e.backend.SalesSummary(ctx, merchant.ID); err == nil {
				snapshots.Sales = summary
			}
		case router.ActionInventory:
			if items, err := e.backend.LowStock(ctx, merchant.ID); err == nil {
				snapshots.LowStock = items
			}
		}
	}

	reply := router.ComposeAction(action, lang, snapshots)
	e.recordTurn(ctx, merchant, channel, "[action] "+action, reply)
	return &Turn{MerchantID: merchantID(merchant), Reply: reply}, nil
}

// History returns the merchant's recent conversation turns.
func (e *Engine) History(ctx context.Context, merchantID string, limit int) ([]repo.MessageRecord, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	return e.store.ListRecentMessages(ctx, merchantID, limit)
}

func (e *Engine) fetchSnapshots(ctx context.Context, merchant *repo.Merchant, intent router.Intent, text string, lang router.Language) (router.Snapshots, error) {
	var snapshots router.Snapshots
	if e.backend == nil || merchant == nil {
		return snapshots, nil
	}

	switch intent {
	case router.IntentSales:
		summary, err := e.backend.SalesSummary(ctx, merchant.ID)
		if err != nil {
			return snapshots, err
		}
		snapshots.Sales = summary
	case router.IntentInventory:
		items, err := e.backend.LowStock(ctx, merchant.ID)
		if err != nil {
			return snapshots, err
		}
		snapshots.LowStock = items
	case router.IntentProfile:
		card, err := e.backend.Profile(ctx, merchant.ID)
		if err != nil {
			return snapshots, err
		}
		snapshots.Profile = card
	case router.IntentAdvice:
		advice, err := e.backend.AskAdvice(ctx, merchant.ID, text, lang)
		if err != nil {
			return snapshots, err
		}
		snapshots.Advice = advice
	}
	return snapshots, nil
}

func (e *Engine) upsertMerchant(ctx context.Context, externalID string) *repo.Merchant {
	if e.store == nil {
		return nil
	}
	merchant, err := e.store.UpsertMerchant(ctx, repo.MerchantProfile{ExternalID: externalID})
	if err != nil {
		e.logger.Warn("upsert merchant failed", "external_id", externalID, "error", err)
		if e.metrics != nil {
			e.metrics.Errors.WithLabelValues("convo_merchant").Inc()
		}
		return nil
	}
	return merchant
}

func (e *Engine) recordTurn(ctx context.Context, merchant *repo.Merchant, channel, inText string, reply router.Reply) {
	if e.store == nil || merchant == nil {
		return
	}

	intent := string(reply.Intent)
	lang := string(reply.Language)
	widget := string(reply.Widget.Type)
	outText := reply.MessageText

	records := []repo.MessageRecord{
		{
			MerchantID: merchant.ID,
			Direction:  repo.DirectionIn,
			Channel:    channel,
			Content:    &inText,
		},
		{
			MerchantID: merchant.ID,
			Direction:  repo.DirectionOut,
			Channel:    channel,
			Intent:     &intent,
			Language:   &lang,
			WidgetType: &widget,
			Content:    &outText,
		},
	}
	for _, rec := range records {
		if err := e.store.InsertMessage(ctx, rec); err != nil {
			e.logger.Warn("persist message failed", "direction", rec.Direction, "error", err)
			if e.metrics != nil {
				e.metrics.Errors.WithLabelValues("convo_persist").Inc()
			}
		}
	}
}

func merchantID(m *repo.Merchant) string {
	if m == nil {
		return ""
	}
	return m.ID
}

// apologyReply is the fixed degraded answer when merchant data cannot
// be fetched. It stays in English so it is always renderable.
func apologyReply() router.Reply {
	reply := router.Compose(router.IntentNone, router.LangEnglish, router.Snapshots{})
	reply.MessageText = "Sorry, I couldn't reach your business data just now. Please try again in a moment."
	return reply
}
