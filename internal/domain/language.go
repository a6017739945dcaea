package domain

import "fmt"

// Language is a supported interface language code
type Language string

const (
	LanguageAmharic Language = "am"
	LanguageOromo   Language = "om"
	LanguageEnglish Language = "en"

	DefaultLanguage = LanguageEnglish
)

// Languages returns supported languages in the order they are offered to users
func Languages() []Language {
	return []Language{LanguageAmharic, LanguageOromo, LanguageEnglish}
}

// ParseLanguage validates a language code
func ParseLanguage(code string) (Language, error) {
	for _, l := range Languages() {
		if string(l) == code {
			return l, nil
		}
	}
	return "", fmt.Errorf("unsupported language code %q", code)
}

// Label returns the name shown on the language selection button
func (l Language) Label() string {
	switch l {
	case LanguageAmharic:
		return "አማርኛ (Amharic)"
	case LanguageOromo:
		return "ኦሮመኛ (Oromo)"
	case LanguageEnglish:
		return "English"
	}
	return string(l)
}
