package router

// WidgetType discriminates which payload field of a Widget is populated.
type WidgetType string

const (
	WidgetNone           WidgetType = "none"
	WidgetSalesSummary   WidgetType = "sales_summary"
	WidgetInventoryAlert WidgetType = "inventory_alert"
	WidgetInsightChart   WidgetType = "insight_chart"
	WidgetProfileCard    WidgetType = "profile_card"
	WidgetQuickActions   WidgetType = "quick_actions"
	WidgetQuickReplies   WidgetType = "quick_replies"
)

// QuickReply is a tappable suggested response offered alongside a reply.
type QuickReply struct {
	Label  string `json:"label"`
	Action string `json:"action"`
}

// SalesSummary holds aggregated sales figures for the summary card.
type SalesSummary struct {
	Today      string `json:"today"`
	ThisWeek   string `json:"this_week"`
	VsLastWeek string `json:"vs_last_week"`
	TopItem    string `json:"top_item,omitempty"`
	PeakHour   string `json:"peak_hour,omitempty"`
}

// StockItem is one low-stock entry in the inventory alert card.
type StockItem struct {
	Name    string `json:"name"`
	Current int    `json:"current"`
}

// InventoryAlert lists items running low. EmptyState is set instead of
// Items when nothing is below threshold.
type InventoryAlert struct {
	Items      []StockItem `json:"items,omitempty"`
	EmptyState string      `json:"empty_state,omitempty"`
}

// InsightChart references a pre-rendered chart plus a one-line highlight.
type InsightChart struct {
	ChartRef  string `json:"chart_ref"`
	Highlight string `json:"highlight"`
}

// ProfileCard summarises the merchant profile.
type ProfileCard struct {
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Since    string  `json:"since"`
	Rating   float64 `json:"rating"`
	Orders   int     `json:"orders"`
	YearsOn  string  `json:"years_on"`
}

// Widget is a tagged union: exactly the field matching Type is set.
type Widget struct {
	Type           WidgetType      `json:"type"`
	SalesSummary   *SalesSummary   `json:"sales_summary,omitempty"`
	InventoryAlert *InventoryAlert `json:"inventory_alert,omitempty"`
	InsightChart   *InsightChart   `json:"insight_chart,omitempty"`
	ProfileCard    *ProfileCard    `json:"profile_card,omitempty"`
	QuickActions   []QuickReply    `json:"quick_actions,omitempty"`
	QuickReplies   []QuickReply    `json:"quick_replies,omitempty"`
}

// Reply is the composed response handed back to the caller. The router
// never retains it.
type Reply struct {
	MessageText         string       `json:"message_text"`
	Language            Language     `json:"language"`
	Intent              Intent       `json:"intent"`
	Widget              Widget       `json:"widget"`
	SuggestedNavigation string       `json:"suggested_navigation,omitempty"`
	FollowUpPrompt      string       `json:"follow_up_prompt,omitempty"`
	FollowUpReplies     []QuickReply `json:"follow_up_replies,omitempty"`
}

// Snapshots carries optional context data fetched by the caller. Every
// field may be nil or empty; composition falls back to placeholders.
type Snapshots struct {
	Sales    *SalesSummary
	LowStock []StockItem
	Advice   string
	Profile  *ProfileCard
}
