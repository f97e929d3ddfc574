package router

import "testing"

func TestClassifyEnglish(t *testing.T) {
	cases := []struct {
		text string
		want Intent
	}{
		{"Show me my sales insights", IntentSales},
		{"how is my revenue doing", IntentSales},
		{"check my inventory please", IntentInventory},
		{"which items are low", IntentInventory},
		{"show me the analytics", IntentInsights},
		{"tips for customer retention", IntentAdvice},
		{"where am I on the leaderboard", IntentLeaderboard},
		{"set up a discount", IntentPromotion},
		{"what can you do", IntentHelp},
		{"open my account settings", IntentProfile},
		{"asdkjfh random text", IntentNone},
		{"", IntentNone},
	}
	for _, tc := range cases {
		if got := Classify(tc.text, LangEnglish); got != tc.want {
			t.Fatalf("Classify(%q) = %s, want %s", tc.text, got, tc.want)
		}
	}
}

func TestClassifyMalay(t *testing.T) {
	cases := []struct {
		text string
		want Intent
	}{
		{"jualan saya macam mana?", IntentSales},
		{"stok barang dapur", IntentInventory},
		{"petua untuk pelanggan", IntentAdvice},
		{"tunjukkan analisis prestasi", IntentInsights},
		{"ada promosi baru?", IntentPromotion},
	}
	for _, tc := range cases {
		if got := Classify(tc.text, LangMalay); got != tc.want {
			t.Fatalf("Classify(%q) = %s, want %s", tc.text, got, tc.want)
		}
	}
}

func TestClassifyChinese(t *testing.T) {
	cases := []struct {
		text string
		want Intent
	}{
		{"库存情况如何", IntentInventory},
		{"显示销售数据", IntentSales},
		{"本周排行榜", IntentLeaderboard},
		{"有什么优惠", IntentPromotion},
	}
	for _, tc := range cases {
		if got := Classify(tc.text, LangChinese); got != tc.want {
			t.Fatalf("Classify(%q) = %s, want %s", tc.text, got, tc.want)
		}
	}
}

func TestClassifyFirstRuleWins(t *testing.T) {
	// "sales" and "inventory" both match; the sales group is declared
	// earlier so it wins.
	if got := Classify("compare sales with inventory", LangEnglish); got != IntentSales {
		t.Fatalf("expected sales to win, got %s", got)
	}
	// "item" is declared before "stock"; both map to inventory, and a
	// text matching either still resolves to inventory.
	if got := Classify("best item in stock", LangEnglish); got != IntentInventory {
		t.Fatalf("expected inventory, got %s", got)
	}
	// "customer" is declared before "stock": the advice group sits
	// between the item/product and inventory/stock groups.
	if got := Classify("customer stock question", LangEnglish); got != IntentAdvice {
		t.Fatalf("expected advice to win over inventory, got %s", got)
	}
}

func TestClassifyUnknownLanguageFallsBack(t *testing.T) {
	if got := Classify("show my sales", Language("klingon")); got != IntentSales {
		t.Fatalf("expected english table fallback, got %s", got)
	}
}
