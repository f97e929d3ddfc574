package router

import "strings"

// Intent is the classified purpose of an utterance.
type Intent string

const (
	IntentSales       Intent = "sales"
	IntentInventory   Intent = "inventory"
	IntentInsights    Intent = "insights"
	IntentAdvice      Intent = "advice"
	IntentProfile     Intent = "profile"
	IntentHelp        Intent = "help"
	IntentLeaderboard Intent = "leaderboard"
	IntentPromotion   Intent = "promotion"
	IntentNone        Intent = "none"
)

// intentRule maps a set of trigger keywords to an intent. Rules are
// evaluated top to bottom and the first keyword hit wins, so several
// rules may share an intent without changing the priority of the
// groups between them.
type intentRule struct {
	intent   Intent
	keywords []string
}

var intentRules = map[Language][]intentRule{
	LangEnglish: {
		{IntentSales, []string{"sales", "revenue", "earning", "income"}},
		{IntentInventory, []string{"item", "product"}},
		{IntentAdvice, []string{"customer", "retention", "advice", "tip", "suggest", "recommend"}},
		{IntentInventory, []string{"inventory", "stock"}},
		{IntentInsights, []string{"insight", "chart", "data", "analytics", "performance"}},
		{IntentLeaderboard, []string{"leaderboard", "ranking", "rank", "top merchant"}},
		{IntentPromotion, []string{"promotion", "promo", "discount", "voucher"}},
		{IntentHelp, []string{"help", "what can you do", "feature", "function"}},
		{IntentProfile, []string{"profile", "account", "setting", "my info"}},
	},
	LangMalay: {
		{IntentSales, []string{"jualan", "pendapatan", "untung", "hasil"}},
		{IntentInventory, []string{"barang", "produk"}},
		{IntentAdvice, []string{"pelanggan", "nasihat", "petua", "cadangan"}},
		{IntentInventory, []string{"stok", "inventori"}},
		{IntentInsights, []string{"analisis", "carta", "prestasi", "laporan"}},
		{IntentLeaderboard, []string{"papan pendahulu", "kedudukan", "ranking"}},
		{IntentPromotion, []string{"promosi", "diskaun", "baucar"}},
		{IntentHelp, []string{"bantuan", "tolong", "apa boleh"}},
		{IntentProfile, []string{"profil", "akaun", "tetapan"}},
	},
	LangChinese: {
		{IntentSales, []string{"销售", "营业", "营收", "收入", "销量"}},
		{IntentInventory, []string{"商品", "产品"}},
		{IntentAdvice, []string{"客户", "顾客", "建议", "回头客"}},
		{IntentInventory, []string{"库存", "存货"}},
		{IntentInsights, []string{"分析", "图表", "数据", "表现"}},
		{IntentLeaderboard, []string{"排行", "排名", "榜"}},
		{IntentPromotion, []string{"促销", "折扣", "优惠"}},
		{IntentHelp, []string{"帮助", "帮忙", "功能"}},
		{IntentProfile, []string{"资料", "账户", "账号", "设置"}},
	},
}

// Classify resolves the intent of an utterance for the detected
// language. It is total: unknown or empty text maps to IntentNone.
func Classify(text string, lang Language) Intent {
	lowered := strings.ToLower(text)
	rules, ok := intentRules[lang]
	if !ok {
		rules = intentRules[LangEnglish]
	}
	for _, rule := range rules {
		for _, keyword := range rule.keywords {
			if strings.Contains(lowered, keyword) {
				return rule.intent
			}
		}
	}
	return IntentNone
}
