package router

import "fmt"

// Navigation target names understood by the client shell.
const (
	NavInventory    = "Inventory"
	NavInsight      = "Insight"
	NavAdvice       = "Advice"
	NavProfile      = "Profile"
	NavLeaderboard  = "Leaderboard"
	NavPromoBuilder = "PromoBuilder"
)

// Quick-reply action identifiers.
const (
	ActionSales       = "sales"
	ActionInventory   = "inventory"
	ActionInsight     = "insight"
	ActionAdvice      = "advice"
	ActionProfile     = "profile"
	ActionLeaderboard = "leaderboard"
	ActionPromotion   = "promobuilder"
	ActionDismiss     = "dismiss"
)

type templateStrings struct {
	message string
	// followUp, affirm and decline are set together when the intent
	// offers a quick-reply pair after the main bubble.
	followUp string
	affirm   string
	decline  string
}

type intentTemplate struct {
	widget       WidgetType
	navigation   string
	affirmAction string
	strings      map[Language]templateStrings
}

var templates = map[Intent]intentTemplate{
	IntentSales: {
		widget:     WidgetSalesSummary,
		navigation: NavInsight,
		strings: map[Language]templateStrings{
			LangEnglish: {message: "Here's a summary of your recent sales performance:"},
			LangMalay:   {message: "Ini ringkasan prestasi jualan terkini anda:"},
			LangChinese: {message: "这是您最近的销售表现摘要："},
		},
	},
	IntentInventory: {
		widget:       WidgetInventoryAlert,
		navigation:   NavInventory,
		affirmAction: ActionInventory,
		strings: map[Language]templateStrings{
			LangEnglish: {
				message:  "I noticed some items in your inventory are running low:",
				followUp: "Would you like to see your full inventory?",
				affirm:   "View Inventory",
				decline:  "Not now",
			},
			LangMalay: {
				message:  "Saya perasan beberapa barang dalam inventori anda hampir habis:",
				followUp: "Mahu lihat inventori penuh anda?",
				affirm:   "Lihat Inventori",
				decline:  "Tidak sekarang",
			},
			LangChinese: {
				message:  "我注意到您库存中的一些商品即将售罄：",
				followUp: "要查看完整库存吗？",
				affirm:   "查看库存",
				decline:  "暂时不用",
			},
		},
	},
	IntentInsights: {
		widget:       WidgetInsightChart,
		navigation:   NavInsight,
		affirmAction: ActionInsight,
		strings: map[Language]templateStrings{
			LangEnglish: {
				message:  "Here's your latest business performance data:",
				followUp: "Would you like to see more detailed insights?",
				affirm:   "View Insights",
				decline:  "Not now",
			},
			LangMalay: {
				message:  "Ini data prestasi perniagaan terkini anda:",
				followUp: "Mahu lihat analisis yang lebih terperinci?",
				affirm:   "Lihat Analisis",
				decline:  "Tidak sekarang",
			},
			LangChinese: {
				message:  "这是您最新的业务表现数据：",
				followUp: "要查看更详细的分析吗？",
				affirm:   "查看分析",
				decline:  "暂时不用",
			},
		},
	},
	IntentAdvice: {
		widget:       WidgetNone,
		navigation:   NavAdvice,
		affirmAction: ActionAdvice,
		strings: map[Language]templateStrings{
			LangEnglish: {
				message:  "Based on your recent performance, here's my advice:",
				followUp: "Would you like to see more business advice?",
				affirm:   "View Advice",
				decline:  "Not now",
			},
			LangMalay: {
				message:  "Berdasarkan prestasi terkini anda, ini nasihat saya:",
				followUp: "Mahu lihat lebih banyak nasihat perniagaan?",
				affirm:   "Lihat Nasihat",
				decline:  "Tidak sekarang",
			},
			LangChinese: {
				message:  "根据您最近的表现，这是我的建议：",
				followUp: "要查看更多经营建议吗？",
				affirm:   "查看建议",
				decline:  "暂时不用",
			},
		},
	},
	IntentProfile: {
		widget:     WidgetProfileCard,
		navigation: NavProfile,
		strings: map[Language]templateStrings{
			LangEnglish: {message: "Here's your profile information:"},
			LangMalay:   {message: "Ini maklumat profil anda:"},
			LangChinese: {message: "这是您的账户资料："},
		},
	},
	IntentLeaderboard: {
		widget:       WidgetQuickReplies,
		navigation:   NavLeaderboard,
		affirmAction: ActionLeaderboard,
		strings: map[Language]templateStrings{
			LangEnglish: {
				message: "Would you like to see this week's merchant leaderboard?",
				affirm:  "View Leaderboard",
				decline: "Not now",
			},
			LangMalay: {
				message: "Mahu lihat papan pendahulu peniaga minggu ini?",
				affirm:  "Lihat Papan Pendahulu",
				decline: "Tidak sekarang",
			},
			LangChinese: {
				message: "要查看本周的商家排行榜吗？",
				affirm:  "查看排行榜",
				decline: "暂时不用",
			},
		},
	},
	IntentPromotion: {
		widget:       WidgetQuickReplies,
		navigation:   NavPromoBuilder,
		affirmAction: ActionPromotion,
		strings: map[Language]templateStrings{
			LangEnglish: {
				message: "Want help setting up a new promotion for your store?",
				affirm:  "Create Promotion",
				decline: "Not now",
			},
			LangMalay: {
				message: "Mahu bantuan menyediakan promosi baharu untuk kedai anda?",
				affirm:  "Cipta Promosi",
				decline: "Tidak sekarang",
			},
			LangChinese: {
				message: "需要帮您为店铺设置新的促销活动吗？",
				affirm:  "创建促销",
				decline: "暂时不用",
			},
		},
	},
	IntentHelp: {
		widget: WidgetQuickActions,
		strings: map[Language]templateStrings{
			LangEnglish: {message: "I can help you with many things! Here are some options:"},
			LangMalay:   {message: "Saya boleh bantu dengan banyak perkara! Ini beberapa pilihan:"},
			LangChinese: {message: "我可以帮您做很多事情！这里有一些选项："},
		},
	},
	IntentNone: {
		widget: WidgetQuickActions,
		strings: map[Language]templateStrings{
			LangEnglish: {message: "I can help you manage your business. Try asking about your sales, inventory, or insights!"},
			LangMalay:   {message: "Saya boleh bantu urus perniagaan anda. Cuba tanya tentang jualan, inventori atau analisis!"},
			LangChinese: {message: "我可以帮您管理生意。试着问问您的销售、库存或数据分析！"},
		},
	},
}

// dismissAck is sent when a quick-reply offer is declined.
var dismissAck = map[Language]string{
	LangEnglish: "No problem! Let me know if you need anything else.",
	LangMalay:   "Tiada masalah! Beritahu saya jika anda perlukan apa-apa lagi.",
	LangChinese: "没问题！有其他需要随时告诉我。",
}

// unknownActionText answers quick-reply actions that have no handler.
var unknownActionText = map[Language]string{
	LangEnglish: "I'm not sure how to help with that yet. Is there something else you'd like to know?",
	LangMalay:   "Saya belum pasti bagaimana membantu dengan itu. Ada perkara lain yang anda mahu tahu?",
	LangChinese: "我还不确定如何帮您处理这个。还有其他想了解的吗？",
}

// adviceFallback is used when no advice snapshot is supplied.
var adviceFallback = map[Language]string{
	LangEnglish: "Consider adding more spicy options to your menu. 85% of customers in your area prefer spicy food, and restaurants with spicy options see 18% higher repeat orders in your region.",
	LangMalay:   "Pertimbangkan untuk menambah pilihan pedas pada menu anda. 85% pelanggan di kawasan anda gemar makanan pedas, dan restoran dengan pilihan pedas mencatat 18% lebih banyak pesanan ulang.",
	LangChinese: "建议在菜单中增加更多辣味选项。您所在地区85%的顾客偏好辣味食物，提供辣味选项的餐厅复购率高出18%。",
}

// lowStockEmptyState renders when the low-stock list is empty.
var lowStockEmptyState = map[Language]string{
	LangEnglish: "No low stock items found",
	LangMalay:   "Tiada barang yang hampir habis",
	LangChinese: "没有发现低库存商品",
}

type capabilityAction struct {
	action string
	labels map[Language]string
}

// capabilityActions populates the quick_actions widget, one entry per
// top-level capability.
var capabilityActions = []capabilityAction{
	{ActionSales, map[Language]string{LangEnglish: "Show Sales", LangMalay: "Tunjuk Jualan", LangChinese: "查看销售"}},
	{ActionInsight, map[Language]string{LangEnglish: "View Insights", LangMalay: "Lihat Analisis", LangChinese: "查看分析"}},
	{ActionAdvice, map[Language]string{LangEnglish: "Get Advice", LangMalay: "Dapatkan Nasihat", LangChinese: "获取建议"}},
	{ActionInventory, map[Language]string{LangEnglish: "Check Inventory", LangMalay: "Semak Inventori", LangChinese: "检查库存"}},
	{ActionLeaderboard, map[Language]string{LangEnglish: "View Leaderboard", LangMalay: "Lihat Papan Pendahulu", LangChinese: "查看排行榜"}},
	{ActionPromotion, map[Language]string{LangEnglish: "Promotions", LangMalay: "Promosi", LangChinese: "促销活动"}},
}

var allLanguages = []Language{LangEnglish, LangMalay, LangChinese}

var allIntents = []Intent{
	IntentSales, IntentInventory, IntentInsights, IntentAdvice,
	IntentProfile, IntentHelp, IntentLeaderboard, IntentPromotion, IntentNone,
}

// ValidateTemplates checks the static tables for completeness: every
// intent must carry all three language variants, and intents that offer
// a follow-up or quick-reply pair must have the full label set. The
// tables are fixed at compile time, so a failure here is a programming
// error and callers should treat it as fatal.
func ValidateTemplates() error {
	for _, intent := range allIntents {
		tpl, ok := templates[intent]
		if !ok {
			return fmt.Errorf("intent %q has no template", intent)
		}
		for _, lang := range allLanguages {
			ts, ok := tpl.strings[lang]
			if !ok {
				return fmt.Errorf("intent %q missing %s variant", intent, lang)
			}
			if ts.message == "" {
				return fmt.Errorf("intent %q has empty %s message", intent, lang)
			}
			needsReplies := tpl.widget == WidgetQuickReplies || ts.followUp != ""
			if needsReplies && (ts.affirm == "" || ts.decline == "") {
				return fmt.Errorf("intent %q missing %s quick-reply labels", intent, lang)
			}
			if needsReplies && tpl.affirmAction == "" {
				return fmt.Errorf("intent %q has quick replies but no affirm action", intent)
			}
		}
	}
	for _, table := range []map[Language]string{dismissAck, unknownActionText, adviceFallback, lowStockEmptyState} {
		for _, lang := range allLanguages {
			if table[lang] == "" {
				return fmt.Errorf("auxiliary string table missing %s variant", lang)
			}
		}
	}
	for _, ca := range capabilityActions {
		for _, lang := range allLanguages {
			if ca.labels[lang] == "" {
				return fmt.Errorf("capability %q missing %s label", ca.action, lang)
			}
		}
	}
	return nil
}
