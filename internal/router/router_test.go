package router

import (
	"reflect"
	"strings"
	"testing"
)

func TestRouteTotality(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		strings.Repeat("very long input ", 5000),
		"mixed 库存 and stok and stock",
		"🍜🔥💰",
		"\x00\x01weird bytes",
	}
	for _, text := range inputs {
		reply := Route(text, Snapshots{})
		if reply.MessageText == "" {
			t.Fatalf("Route(%.30q) returned empty message", text)
		}
		if reply.Widget.Type == "" {
			t.Fatalf("Route(%.30q) returned reply without widget type", text)
		}
	}
}

func TestRouteDeterminism(t *testing.T) {
	snap := Snapshots{Sales: &SalesSummary{Today: "RM900", ThisWeek: "RM5,100", VsLastWeek: "-3%"}}
	first := Route("how are my sales", snap)
	second := Route("how are my sales", snap)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("identical input produced different replies:\n%+v\n%+v", first, second)
	}
}

func TestRouteStartOverOverride(t *testing.T) {
	for _, text := range []string{"start over", "Start Over", "  START OVER  "} {
		reply := Route(text, Snapshots{})
		if reply.Intent != IntentHelp {
			t.Fatalf("Route(%q) intent = %s, want help", text, reply.Intent)
		}
		if reply.Widget.Type != WidgetQuickActions {
			t.Fatalf("Route(%q) widget = %s, want quick_actions", text, reply.Widget.Type)
		}
	}
	// Not an exact match: classified normally.
	if reply := Route("start over my sales", Snapshots{}); reply.Intent != IntentSales {
		t.Fatalf("padded command should classify normally, got %s", reply.Intent)
	}
}

func TestRouteEnglishSalesScenario(t *testing.T) {
	reply := Route("Show me my sales insights", Snapshots{})
	if reply.Language != LangEnglish {
		t.Fatalf("language = %s, want english", reply.Language)
	}
	if reply.Intent != IntentSales {
		t.Fatalf("intent = %s, want sales", reply.Intent)
	}
	if reply.Widget.Type != WidgetSalesSummary {
		t.Fatalf("widget = %s, want sales_summary", reply.Widget.Type)
	}
}

func TestRouteMalaySalesScenario(t *testing.T) {
	reply := Route("jualan saya macam mana?", Snapshots{})
	if reply.Language != LangMalay {
		t.Fatalf("language = %s, want malay", reply.Language)
	}
	if reply.Intent != IntentSales {
		t.Fatalf("intent = %s, want sales", reply.Intent)
	}
	if reply.MessageText != templates[IntentSales].strings[LangMalay].message {
		t.Fatalf("expected malay template, got %q", reply.MessageText)
	}
}

func TestRouteChineseInventoryScenario(t *testing.T) {
	reply := Route("库存情况如何", Snapshots{})
	if reply.Language != LangChinese {
		t.Fatalf("language = %s, want chinese", reply.Language)
	}
	if reply.Intent != IntentInventory {
		t.Fatalf("intent = %s, want inventory", reply.Intent)
	}
	if reply.Widget.Type != WidgetInventoryAlert {
		t.Fatalf("widget = %s, want inventory_alert", reply.Widget.Type)
	}
}

func TestRouteGibberishScenario(t *testing.T) {
	reply := Route("asdkjfh random text", Snapshots{})
	if reply.Language != LangEnglish || reply.Intent != IntentNone {
		t.Fatalf("got language=%s intent=%s, want english/none", reply.Language, reply.Intent)
	}
	if reply.Widget.Type != WidgetQuickActions {
		t.Fatalf("widget = %s, want quick_actions", reply.Widget.Type)
	}
}
