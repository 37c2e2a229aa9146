package ai

import (
	"regexp"
	"strconv"
	"strings"

	"truthfinder/internal/models"
)

// DefaultConfidence is reported when the model response carries no explicit
// confidence figure.
const DefaultConfidence = 50

var confidencePattern = regexp.MustCompile(`confidence[:\s]*(\d+)`)

// Keyword lists include Roman-Urdu terms so bilingual analyses classify the
// same way as English ones. Scan order matters: fake beats propaganda beats
// real, and no hit at all reads as suspicious.
var (
	fakeKeywords       = []string{"fake", "false", "misinformation", "untrue", "jhoot", "galat", "incorrect"}
	propagandaKeywords = []string{"propaganda", "biased", "agenda", "misleading", "partial", "manipulated"}
	realKeywords       = []string{"real", "true", "verified", "credible", "sach", "authentic", "accurate"}
)

// ExtractConfidence pulls the first "confidence: N" figure out of a model
// response, clamped to [0,100]. Absent or unparsable figures yield the
// default.
func ExtractConfidence(response string) int {
	match := confidencePattern.FindStringSubmatch(strings.ToLower(response))
	if match == nil {
		return DefaultConfidence
	}
	confidence, err := strconv.Atoi(match[1])
	if err != nil {
		return DefaultConfidence
	}
	if confidence < 0 {
		return 0
	}
	if confidence > 100 {
		return 100
	}
	return confidence
}

// DetermineVerdict scans a model response for verdict keywords.
func DetermineVerdict(response string) models.Verdict {
	lower := strings.ToLower(response)
	if containsAny(lower, fakeKeywords) {
		return models.VerdictFake
	}
	if containsAny(lower, propagandaKeywords) {
		return models.VerdictPropaganda
	}
	if containsAny(lower, realKeywords) {
		return models.VerdictReal
	}
	return models.VerdictSuspicious
}

// ParseSentiment reads a classification reply, tolerating extra prose around
// the label. Anything unexpected reads as neutral.
func ParseSentiment(response string) models.Sentiment {
	upper := strings.ToUpper(strings.TrimSpace(response))
	switch {
	case strings.Contains(upper, "POSITIVE"):
		return models.SentimentPositive
	case strings.Contains(upper, "NEGATIVE"):
		return models.SentimentNegative
	default:
		return models.SentimentNeutral
	}
}

func containsAny(text string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}
