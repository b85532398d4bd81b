package spamguard

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		spam   bool
		reason string
	}{
		{
			name: "normal message passes",
			text: "hey, are we still on for lunch tomorrow?",
			spam: false,
		},
		{
			name: "empty message passes",
			text: "",
			spam: false,
		},
		{
			name:   "single character flood",
			text:   strings.Repeat("a", 30),
			spam:   true,
			reason: ReasonRepeatedChars,
		},
		{
			name:   "dominant character above seventy percent",
			text:   strings.Repeat("A", 15) + "BBBBB",
			spam:   true,
			reason: ReasonRepeatedChars,
		},
		{
			name: "even split is not a flood",
			text: "ababababab",
			spam: false,
		},
		{
			name: "two links are fine",
			text: "see https://example.com and http://example.org",
			spam: false,
		},
		{
			name:   "three links are not",
			text:   "https://a.com https://b.com http://c.com",
			spam:   true,
			reason: ReasonTooManyURLs,
		},
		{
			name:   "spam keyword",
			text:   "Buy NOW while supplies last",
			spam:   true,
			reason: ReasonSpamKeywords,
		},
		{
			name:   "keyword inside a sentence",
			text:   "you could earn money working from your couch",
			spam:   true,
			reason: ReasonSpamKeywords,
		},
		{
			name:   "long shouting",
			text:   "WHY ARE YOU IGNORING ME RIGHT NOW",
			spam:   true,
			reason: ReasonAllCaps,
		},
		{
			name: "short shouting is tolerated",
			text: "STOP IT",
			spam: false,
		},
		{
			name: "long uppercase with digits only is not cased",
			text: "1234567890 1234567890 12",
			spam: false,
		},
		{
			name: "mixed case long message passes",
			text: "This Is A Perfectly Normal Longer Message",
			spam: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spam, reason := Classify(tt.text)
			assert.Equal(t, tt.spam, spam)
			assert.Equal(t, tt.reason, reason)
		})
	}
}

func TestClassifyChecksShortCircuitInOrder(t *testing.T) {
	// Floods of a spam keyword report the flood, not the keyword.
	spam, reason := Classify(strings.Repeat("x", 80))
	assert.True(t, spam)
	assert.Equal(t, ReasonRepeatedChars, reason)
}
