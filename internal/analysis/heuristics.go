package analysis

import (
	"strings"
	"unicode"

	"policyinsight/internal/types"
)

var spamPatterns = []string{"http://", "https://", "buy now", "free $$$", "click here", "www."}

var (
	legalKeywords      = []string{"non-compliance", "penalty", "violate", "risk", "litigation", "lawsuit", "legal", "regulation", "fine"}
	complianceKeywords = []string{"complex", "difficult", "burden", "cost", "ambiguous", "unclear", "confusing", "challenging"}
	growthKeywords     = []string{"growth", "innovation", "revenue", "invest", "expand", "opportunity", "competitive", "market"}
)

var (
	sarcasmEnglish = []string{"yeah right", "sure", "as if", "great, another", "just what we needed", "oh wonderful", "obviously", "thanks a lot", "what a relief"}
	sarcasmHindi   = []string{"बिल्कुल सही", "वाह", "बहुत बढ़िया", "क्या बात है", "मज़ाक", "क्या फायदा"}
	politeEnglish  = []string{"respectfully", "with due respect", "may not", "might not"}
	politeHindi    = []string{"सादर", "आदरपूर्वक"}
)

const (
	scorePerHit     = 20
	spamRunLength   = 6
	upperRatioLimit = 0.7
	shortWordCount  = 5
)

// DetectLanguage returns Hindi iff any rune falls in the Devanagari block.
func DetectLanguage(text string) types.Language {
	for _, r := range text {
		if r >= 0x0900 && r <= 0x097F {
			return types.LanguageHindi
		}
	}
	return types.LanguageEnglish
}

// DetectSpam flags very short text, blacklisted substrings, long runs of
// one character, and shouting.
func DetectSpam(text string) bool {
	lower := strings.ToLower(text)
	if len([]rune(lower)) < 3 {
		return true
	}
	for _, p := range spamPatterns {
		if strings.Contains(lower, p) {
			return true
		}
	}
	if hasRun(lower, spamRunLength) {
		return true
	}
	if len([]rune(text)) > 10 {
		var letters, upper int
		for _, r := range text {
			if !unicode.IsLetter(r) {
				continue
			}
			letters++
			if unicode.IsUpper(r) {
				upper++
			}
		}
		if letters > 0 && float64(upper)/float64(letters) > upperRatioLimit {
			return true
		}
	}
	return false
}

func hasRun(s string, n int) bool {
	var prev rune
	run := 0
	for i, r := range s {
		if i > 0 && r == prev {
			run++
		} else {
			run = 1
		}
		if run >= n {
			return true
		}
		prev = r
	}
	return false
}

// ComputeScores counts case-insensitive, non-overlapping keyword hits per
// category, 20 points each, clamped to [0,100].
func ComputeScores(text string) types.Scores {
	lower := strings.ToLower(text)
	return types.Scores{
		LegalRisk:            keywordScore(lower, legalKeywords),
		ComplianceDifficulty: keywordScore(lower, complianceKeywords),
		BusinessGrowth:       keywordScore(lower, growthKeywords),
	}
}

func keywordScore(lower string, keywords []string) int {
	hits := 0
	for _, kw := range keywords {
		hits += strings.Count(lower, kw)
	}
	return clampScore(hits * scorePerHit)
}

func clampScore(v int) int {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	}
	return v
}

// DetectNuances returns every nuance tag that applies. Tags may co-occur.
func DetectNuances(text string, lang types.Language) []string {
	lower := strings.ToLower(text)
	nuances := []string{}

	sarcasm, haystack := sarcasmEnglish, lower
	if lang == types.LanguageHindi {
		sarcasm, haystack = sarcasmHindi, text
	}
	if containsAny(haystack, sarcasm) {
		nuances = append(nuances, types.NuanceSarcasm)
	}

	mixedEnglish := strings.Contains(lower, "but") && (strings.Contains(lower, "good") || strings.Contains(lower, "improve"))
	mixedHindi := strings.Contains(text, "लेकिन") && strings.Contains(text, "अच्छा")
	if mixedEnglish || mixedHindi {
		nuances = append(nuances, types.NuanceMixedSentiment)
	}

	if containsAny(lower, politeEnglish) || containsAny(text, politeHindi) {
		nuances = append(nuances, types.NuancePoliteDisagreement)
	}

	if len(strings.Fields(text)) < shortWordCount {
		nuances = append(nuances, types.NuanceShortAmbiguous)
	}
	return nuances
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// NormalizeSentiment maps a free-text label onto the three polarities.
// "pos" wins over "neg"; anything else is Neutral.
func NormalizeSentiment(label string) types.Sentiment {
	lower := strings.ToLower(label)
	switch {
	case strings.Contains(lower, "pos"):
		return types.SentimentPositive
	case strings.Contains(lower, "neg"):
		return types.SentimentNegative
	default:
		return types.SentimentNeutral
	}
}
