// Package handlers processes backend push events.
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"grablet/internal/backend"
	"grablet/internal/metrics"
	"grablet/internal/router"
	"grablet/internal/wa"
)

// SnapshotInvalidator drops cached widget data for a merchant.
type SnapshotInvalidator interface {
	InvalidateSnapshots(ctx context.Context, merchantID string) error
}

// Notifier pushes a proactive text message to a merchant channel.
type Notifier interface {
	SendTextTo(ctx context.Context, externalID, text string) error
}

// BackendWebhookProcessor reacts to backend events: cache invalidation
// on data changes, and proactive low-stock alerts when a notifier is
// configured.
type BackendWebhookProcessor struct {
	invalidator SnapshotInvalidator
	notifier    Notifier
	metrics     *metrics.Metrics
	logger      *slog.Logger
}

// NewBackendWebhookProcessor creates the processor. Notifier may be nil
// when no push channel is connected.
func NewBackendWebhookProcessor(invalidator SnapshotInvalidator, notifier Notifier, metricRegistry *metrics.Metrics, logger *slog.Logger) *BackendWebhookProcessor {
	return &BackendWebhookProcessor{
		invalidator: invalidator,
		notifier:    notifier,
		metrics:     metricRegistry,
		logger:      logger.With("component", "webhook_processor"),
	}
}

type lowStockEvent struct {
	MerchantID string             `json:"merchant_id"`
	ExternalID string             `json:"external_id"`
	Language   string             `json:"language"`
	Items      []router.StockItem `json:"items"`
}

type merchantEvent struct {
	MerchantID string `json:"merchant_id"`
}

// HandleBackendEvent satisfies backend.WebhookProcessor.
func (p *BackendWebhookProcessor) HandleBackendEvent(ctx context.Context, event backend.WebhookEvent) error {
	switch event.Type {
	case "inventory.low_stock":
		return p.handleLowStock(ctx, event.Payload)
	case "merchant.updated", "sales.updated":
		return p.handleDataChanged(ctx, event.Payload)
	default:
		p.logger.Info("ignoring webhook event", "event", event.Type)
		return nil
	}
}

func (p *BackendWebhookProcessor) handleLowStock(ctx context.Context, payload json.RawMessage) error {
	var event lowStockEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("decode low stock event: %w", err)
	}
	if event.MerchantID == "" {
		return fmt.Errorf("low stock event missing merchant_id")
	}

	if p.invalidator != nil {
		if err := p.invalidator.InvalidateSnapshots(ctx, event.MerchantID); err != nil {
			p.logger.Warn("invalidate snapshots failed", "merchant", event.MerchantID, "error", err)
		}
	}

	if p.notifier == nil || event.ExternalID == "" || len(event.Items) == 0 {
		return nil
	}

	lang := router.Language(strings.ToLower(event.Language))
	reply := router.Compose(router.IntentInventory, lang, router.Snapshots{LowStock: event.Items})
	if err := p.notifier.SendTextTo(ctx, event.ExternalID, wa.RenderReply(reply)); err != nil {
		if p.metrics != nil {
			p.metrics.Errors.WithLabelValues("webhook_notify").Inc()
		}
		return fmt.Errorf("notify merchant: %w", err)
	}
	p.logger.Info("low stock alert sent", "merchant", event.MerchantID, "items", len(event.Items))
	return nil
}

func (p *BackendWebhookProcessor) handleDataChanged(ctx context.Context, payload json.RawMessage) error {
	var event merchantEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("decode merchant event: %w", err)
	}
	if event.MerchantID == "" || p.invalidator == nil {
		return nil
	}
	if err := p.invalidator.InvalidateSnapshots(ctx, event.MerchantID); err != nil {
		return fmt.Errorf("invalidate snapshots: %w", err)
	}
	return nil
}
