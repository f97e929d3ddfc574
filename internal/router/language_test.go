package router

import "testing"

func TestDetectDefaultsToEnglish(t *testing.T) {
	cases := []string{"", "   ", "Show me my sales insights", "asdkjfh random text", "🎉🎉🎉"}
	for _, text := range cases {
		if lang := Detect(text); lang != LangEnglish {
			t.Fatalf("Detect(%q) = %s, want english", text, lang)
		}
	}
}

func TestDetectMalayMarkers(t *testing.T) {
	cases := []string{
		"jualan saya macam mana?",
		"Tolong semak stok saya",
		"Berapa pendapatan minggu ini",
	}
	for _, text := range cases {
		if lang := Detect(text); lang != LangMalay {
			t.Fatalf("Detect(%q) = %s, want malay", text, lang)
		}
	}
}

func TestDetectChineseScript(t *testing.T) {
	cases := []string{"库存情况如何", "显示我的销售分析", "帮帮我"}
	for _, text := range cases {
		if lang := Detect(text); lang != LangChinese {
			t.Fatalf("Detect(%q) = %s, want chinese", text, lang)
		}
	}
}

func TestDetectMalayBeforeEnglish(t *testing.T) {
	// Both a Malay marker ("saya") and an English trigger word
	// ("sales") are present; the Malay set is checked first.
	if lang := Detect("saya want to see sales"); lang != LangMalay {
		t.Fatalf("expected malay priority, got %s", lang)
	}
}

func TestDetectMalayBeforeChinese(t *testing.T) {
	// Marker sets are evaluated in declared order, Malay first.
	if lang := Detect("jualan 销售"); lang != LangMalay {
		t.Fatalf("expected malay priority over chinese, got %s", lang)
	}
}
