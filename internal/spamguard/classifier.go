package spamguard

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Classifier rejection reasons.
const (
	ReasonRepeatedChars = "Message contains excessive repeated characters"
	ReasonTooManyURLs   = "Message contains too many URLs"
	ReasonSpamKeywords  = "Message contains spam keywords"
	ReasonAllCaps       = "Message is in all caps"
)

var spamKeywords = []string{
	"buy now", "click here", "limited time", "act now",
	"earn money", "work from home", "free money",
	"click link", "visit website", "pornography",
	"adult content", "xxx",
}

// Classify runs the heuristic spam checks against a plain-text message body.
// Checks run in order and short-circuit on the first match. Attachment
// payloads must not be passed through here.
func Classify(text string) (isSpam bool, reason string) {
	if hasRepeatedCharFlood(text) {
		return true, ReasonRepeatedChars
	}

	// Phishing / link-spam heuristic.
	urlCount := strings.Count(text, "http://") + strings.Count(text, "https://")
	if urlCount > 2 {
		return true, ReasonTooManyURLs
	}

	lower := strings.ToLower(text)
	for _, kw := range spamKeywords {
		if strings.Contains(lower, kw) {
			return true, ReasonSpamKeywords
		}
	}

	if utf8.RuneCountInString(text) > 20 && isAllUpper(text) {
		return true, ReasonAllCaps
	}

	return false, ""
}

// hasRepeatedCharFlood reports whether any single character makes up more
// than 70% of the message.
func hasRepeatedCharFlood(text string) bool {
	total := utf8.RuneCountInString(text)
	if total == 0 {
		return false
	}

	counts := make(map[rune]int)
	for _, r := range text {
		counts[r]++
	}
	threshold := float64(total) * 0.7
	for _, n := range counts {
		if float64(n) > threshold {
			return true
		}
	}
	return false
}

// isAllUpper reports whether the text contains at least one cased character
// and no lowercase ones.
func isAllUpper(text string) bool {
	hasCased := false
	for _, r := range text {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) {
			hasCased = true
		}
	}
	return hasCased
}
