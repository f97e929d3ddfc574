package router

import "regexp"

// Language identifies the reply language resolved for an utterance.
type Language string

const (
	LangEnglish Language = "english"
	LangMalay   Language = "malay"
	LangChinese Language = "chinese"
)

// languageMarkers is evaluated in order; the first matching set wins.
// Malay is checked before Chinese. The Chinese marker is a Han script
// range, so the two sets never overlap in practice, but the order is
// part of the contract and covered by tests.
var languageMarkers = []struct {
	lang    Language
	pattern *regexp.Regexp
}{
	{
		lang: LangMalay,
		pattern: regexp.MustCompile(`(?i)\b(saya|anda|awak|kita|macam mana|bagaimana|berapa|jualan|pendapatan|untung|hasil|barang|produk|stok|inventori|tolong|boleh|terima kasih|petua|pelanggan|laris|tunjukkan|analisis|prestasi|nasihat|cadangan|promosi|diskaun|baucar|kedudukan|bantuan|akaun|tetapan)\b`),
	},
	{
		lang:    LangChinese,
		pattern: regexp.MustCompile(`\p{Han}`),
	},
}

// Detect classifies an utterance into a language tag. Text with no
// recognised markers, including the empty string, maps to English.
func Detect(text string) Language {
	if text == "" {
		return LangEnglish
	}
	for _, marker := range languageMarkers {
		if marker.pattern.MatchString(text) {
			return marker.lang
		}
	}
	return LangEnglish
}
