package wa

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"go.mau.fi/whatsmeow/types/events"

	"grablet/internal/convo"
	"grablet/internal/metrics"
	"grablet/internal/router"
)

// ChatService answers merchant utterances. Satisfied by convo.Engine.
type ChatService interface {
	HandleUtterance(ctx context.Context, externalID, channel, text string) (*convo.Turn, error)
}

// Transcriber converts voice notes into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error)
}

// DialogProcessor bridges inbound WhatsApp messages to the chat
// service and renders replies as plain text.
type DialogProcessor struct {
	client      *Client
	chat        ChatService
	transcriber Transcriber
	metrics     *metrics.Metrics
	logger      *slog.Logger
}

// NewDialogProcessor creates the processor. The transcriber is
// optional; without it voice notes get a short notice instead.
func NewDialogProcessor(client *Client, chat ChatService, transcriber Transcriber, metricRegistry *metrics.Metrics, logger *slog.Logger) *DialogProcessor {
	return &DialogProcessor{
		client:      client,
		chat:        chat,
		transcriber: transcriber,
		metrics:     metricRegistry,
		logger:      logger.With("component", "wa_dialog"),
	}
}

// ProcessMessage satisfies MessageProcessor.
func (p *DialogProcessor) ProcessMessage(ctx context.Context, evt *events.Message) {
	if evt == nil || evt.Message == nil || evt.Info.IsFromMe {
		return
	}

	text, ok := p.extractText(ctx, evt)
	if !ok {
		return
	}

	chatJID := evt.Info.Chat
	externalID := evt.Info.Sender.ToNonAD().String()

	turn, err := p.chat.HandleUtterance(ctx, externalID, "whatsapp", text)
	if err != nil {
		p.logger.Error("handle utterance failed", "from", externalID, "error", err)
		if p.metrics != nil {
			p.metrics.Errors.WithLabelValues("wa_dialog").Inc()
		}
		return
	}

	replyCtx := WithReply(ctx, evt)
	if err := p.client.SendText(replyCtx, chatJID, RenderReply(turn.Reply)); err != nil {
		p.logger.Error("send reply failed", "to", chatJID.String(), "error", err)
		if p.metrics != nil {
			p.metrics.Errors.WithLabelValues("wa_send").Inc()
		}
	}
}

func (p *DialogProcessor) extractText(ctx context.Context, evt *events.Message) (string, bool) {
	msg := evt.Message
	switch {
	case msg.GetConversation() != "":
		return msg.GetConversation(), true
	case msg.ExtendedTextMessage != nil:
		return msg.GetExtendedTextMessage().GetText(), true
	case msg.AudioMessage != nil && msg.GetAudioMessage().GetPTT():
		return p.transcribeVoiceNote(ctx, evt)
	default:
		return "", false
	}
}

func (p *DialogProcessor) transcribeVoiceNote(ctx context.Context, evt *events.Message) (string, bool) {
	if p.transcriber == nil {
		return "", false
	}
	audio, mimeType, err := p.client.DownloadMedia(ctx, evt.Message)
	if err != nil {
		p.logger.Error("download voice note failed", "error", err)
		if p.metrics != nil {
			p.metrics.Errors.WithLabelValues("wa_media").Inc()
		}
		return "", false
	}
	text, err := p.transcriber.Transcribe(ctx, audio, mimeType)
	if err != nil {
		p.logger.Error("transcribe voice note failed", "error", err)
		if p.metrics != nil {
			p.metrics.Errors.WithLabelValues("wa_transcribe").Inc()
		}
		return "", false
	}
	return text, text != ""
}

// RenderReply flattens a structured reply into WhatsApp plain text:
// message bubble, widget body, then numbered quick replies.
func RenderReply(reply router.Reply) string {
	var b strings.Builder
	b.WriteString(reply.MessageText)

	switch reply.Widget.Type {
	case router.WidgetSalesSummary:
		if s := reply.Widget.SalesSummary; s != nil {
			fmt.Fprintf(&b, "\n\nToday: %s\nThis week: %s\nvs last week: %s", s.Today, s.ThisWeek, s.VsLastWeek)
			if s.TopItem != "" {
				fmt.Fprintf(&b, "\nTop item: %s", s.TopItem)
			}
			if s.PeakHour != "" {
				fmt.Fprintf(&b, "\nPeak hour: %s", s.PeakHour)
			}
		}
	case router.WidgetInventoryAlert:
		if a := reply.Widget.InventoryAlert; a != nil {
			if a.EmptyState != "" {
				b.WriteString("\n\n" + a.EmptyState)
			}
			for _, item := range a.Items {
				fmt.Fprintf(&b, "\n• %s: %d left", item.Name, item.Current)
			}
		}
	case router.WidgetInsightChart:
		if c := reply.Widget.InsightChart; c != nil && c.Highlight != "" {
			b.WriteString("\n\n" + c.Highlight)
		}
	case router.WidgetProfileCard:
		if card := reply.Widget.ProfileCard; card != nil {
			fmt.Fprintf(&b, "\n\n%s (%s)\nSince %s · %.1f★ · %d orders",
				card.Name, card.Category, card.Since, card.Rating, card.Orders)
		}
	}

	if reply.FollowUpPrompt != "" {
		b.WriteString("\n\n" + reply.FollowUpPrompt)
	}

	options := reply.Widget.QuickActions
	if len(options) == 0 {
		options = reply.Widget.QuickReplies
	}
	if len(options) == 0 {
		options = reply.FollowUpReplies
	}
	for i, opt := range options {
		fmt.Fprintf(&b, "\n%d. %s", i+1, opt.Label)
	}

	return b.String()
}
