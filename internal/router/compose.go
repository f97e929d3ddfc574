package router

// chartPlaceholderRef is the static chart preview the client renders
// for insight replies; the real chart lives behind the Insight screen.
const chartPlaceholderRef = "assets/chart-preview.png"

const insightHighlightDefault = "Sales are up 12% this week"

// Compose builds the reply for a resolved intent. It is a pure function
// of its inputs: missing snapshot data degrades to placeholders or
// empty states and never produces an error.
func Compose(intent Intent, lang Language, snap Snapshots) Reply {
	tpl, ok := templates[intent]
	if !ok {
		tpl = templates[IntentNone]
		intent = IntentNone
	}
	if _, ok := tpl.strings[lang]; !ok {
		lang = LangEnglish
	}
	ts := tpl.strings[lang]

	reply := Reply{
		MessageText:         ts.message,
		Language:            lang,
		Intent:              intent,
		Widget:              Widget{Type: tpl.widget},
		SuggestedNavigation: tpl.navigation,
	}

	switch tpl.widget {
	case WidgetSalesSummary:
		reply.Widget.SalesSummary = salesOrPlaceholder(snap.Sales)
	case WidgetInventoryAlert:
		reply.Widget.InventoryAlert = inventoryOrEmptyState(snap.LowStock, lang)
	case WidgetInsightChart:
		reply.Widget.InsightChart = &InsightChart{
			ChartRef:  chartPlaceholderRef,
			Highlight: insightHighlightDefault,
		}
	case WidgetProfileCard:
		reply.Widget.ProfileCard = profileOrPlaceholder(snap.Profile)
	case WidgetQuickActions:
		reply.Widget.QuickActions = quickActionsFor(lang)
	case WidgetQuickReplies:
		reply.Widget.QuickReplies = affirmDeclinePair(tpl, ts)
	}

	if intent == IntentAdvice {
		advice := snap.Advice
		if advice == "" {
			advice = adviceFallback[lang]
		}
		reply.MessageText = ts.message + "\n\n" + advice
	}

	if ts.followUp != "" {
		reply.FollowUpPrompt = ts.followUp
		reply.FollowUpReplies = affirmDeclinePair(tpl, ts)
	}

	return reply
}

// ComposeAction builds the reply for a tapped quick-reply or quick-action
// identifier. Unknown actions get the generic fallback with the standard
// quick actions attached.
func ComposeAction(action string, lang Language, snap Snapshots) Reply {
	if _, ok := dismissAck[lang]; !ok {
		lang = LangEnglish
	}
	switch action {
	case ActionSales:
		return Compose(IntentSales, lang, snap)
	case ActionInventory:
		return navigationReply(IntentInventory, lang, NavInventory)
	case ActionInsight:
		return navigationReply(IntentInsights, lang, NavInsight)
	case ActionAdvice:
		return Compose(IntentAdvice, lang, snap)
	case ActionProfile:
		return navigationReply(IntentProfile, lang, NavProfile)
	case ActionLeaderboard:
		return navigationReply(IntentLeaderboard, lang, NavLeaderboard)
	case ActionPromotion:
		return navigationReply(IntentPromotion, lang, NavPromoBuilder)
	case ActionDismiss:
		return Reply{
			MessageText: dismissAck[lang],
			Language:    lang,
			Intent:      IntentNone,
			Widget:      Widget{Type: WidgetNone},
		}
	default:
		return Reply{
			MessageText: unknownActionText[lang],
			Language:    lang,
			Intent:      IntentNone,
			Widget: Widget{
				Type:         WidgetQuickActions,
				QuickActions: quickActionsFor(lang),
			},
		}
	}
}

func navigationReply(intent Intent, lang Language, target string) Reply {
	return Reply{
		MessageText:         templates[intent].strings[lang].message,
		Language:            lang,
		Intent:              intent,
		Widget:              Widget{Type: WidgetNone},
		SuggestedNavigation: target,
	}
}

func salesOrPlaceholder(snap *SalesSummary) *SalesSummary {
	if snap != nil {
		copied := *snap
		return &copied
	}
	return &SalesSummary{Today: "N/A", ThisWeek: "N/A", VsLastWeek: "N/A"}
}

func inventoryOrEmptyState(items []StockItem, lang Language) *InventoryAlert {
	if len(items) == 0 {
		return &InventoryAlert{EmptyState: lowStockEmptyState[lang]}
	}
	copied := make([]StockItem, len(items))
	copy(copied, items)
	return &InventoryAlert{Items: copied}
}

func profileOrPlaceholder(snap *ProfileCard) *ProfileCard {
	if snap != nil {
		copied := *snap
		return &copied
	}
	return &ProfileCard{
		Name:     "Warung Makan Sedap",
		Category: "Restaurant",
		Since:    "2018",
		Rating:   4.8,
		Orders:   12480,
		YearsOn:  "5 yrs",
	}
}

func quickActionsFor(lang Language) []QuickReply {
	actions := make([]QuickReply, 0, len(capabilityActions))
	for _, ca := range capabilityActions {
		actions = append(actions, QuickReply{Label: ca.labels[lang], Action: ca.action})
	}
	return actions
}

func affirmDeclinePair(tpl intentTemplate, ts templateStrings) []QuickReply {
	return []QuickReply{
		{Label: ts.affirm, Action: tpl.affirmAction},
		{Label: ts.decline, Action: ActionDismiss},
	}
}
