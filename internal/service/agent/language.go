package agent

import (
	"strings"
	"unicode"

	"truthfinder/internal/service/ai"
)

// maxContentRunes caps how much of a submission survives sanitization.
const maxContentRunes = 2000

// romanUrduWords are common Urdu/Hindi function words written in Latin
// script. Two token hits tip detection, so stray English substrings do not.
var romanUrduWords = map[string]struct{}{
	"hai": {}, "hy": {}, "aur": {}, "ka": {}, "ki": {}, "ke": {},
	"se": {}, "mein": {}, "kya": {}, "yeh": {}, "wo": {}, "hum": {},
	"tum": {}, "ap": {}, "koi": {}, "sab": {},
}

// SanitizeContent strips angle brackets and double quotes, trims surrounding
// whitespace, and caps the result at maxContentRunes runes.
func SanitizeContent(text string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '<', '>', '"':
			return -1
		}
		return r
	}, text)
	cleaned = strings.TrimSpace(cleaned)
	if runes := []rune(cleaned); len(runes) > maxContentRunes {
		cleaned = string(runes[:maxContentRunes])
	}
	return cleaned
}

// DetectLanguage guesses between English and Urdu/Hindi. Any Arabic or
// Devanagari script character decides immediately; otherwise two Roman-Urdu
// word matches do.
func DetectLanguage(text string) string {
	for _, r := range text {
		if unicode.Is(unicode.Arabic, r) || unicode.Is(unicode.Devanagari, r) {
			return ai.LanguageUrduHindi
		}
	}
	hits := 0
	for _, token := range strings.Fields(strings.ToLower(text)) {
		token = strings.Trim(token, ".,!?;:'()[]")
		if _, ok := romanUrduWords[token]; ok {
			hits++
			if hits >= 2 {
				return ai.LanguageUrduHindi
			}
		}
	}
	return ai.LanguageEnglish
}

// resolveLanguage normalizes a requested language, falling back to detection
// when the request is blank or unrecognized.
func resolveLanguage(language, content string) string {
	switch strings.ToLower(strings.TrimSpace(language)) {
	case ai.LanguageEnglish:
		return ai.LanguageEnglish
	case ai.LanguageUrduHindi, "urdu", "hindi", "roman_urdu":
		return ai.LanguageUrduHindi
	default:
		return DetectLanguage(content)
	}
}
