package models

const (
	LangArabic  = "ar"
	LangEnglish = "en"
)

// Localized holds the Arabic and English variants of a user-facing string
type Localized struct {
	AR string
	EN string
}

// In picks the variant for lang, falling back to Arabic, the platform default
func (l Localized) In(lang string) string {
	if lang == LangEnglish && l.EN != "" {
		return l.EN
	}
	return l.AR
}
