// Package llm holds the prompt shared by the summarizer backends.
package llm

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/kirillkom/pdf-digest/internal/core/domain"
)

const SystemInstruction = "You are a summarization engine. Reply with the summary text only: no preamble, no headings, no markdown."

// SummaryPrompt asks for an abstractive summary within the given bounds.
func SummaryPrompt(text string, bounds domain.SummaryLengthBounds) string {
	return fmt.Sprintf(`Summarize the document below.
The summary must be between %d and %d words long.

Document:
%s`, bounds.MinLength, bounds.MaxLength, text)
}

// TokenBudget is the generation cap passed to the backend for a summary.
func TokenBudget(bounds domain.SummaryLengthBounds) int {
	return bounds.MaxLength * 2
}

// TruncateInput cuts text to at most maxChars runes. Zero or negative
// maxChars disables truncation.
func TruncateInput(text string, maxChars int) (string, bool) {
	if maxChars <= 0 || utf8.RuneCountInString(text) <= maxChars {
		return text, false
	}
	count := 0
	for idx := range text {
		if count == maxChars {
			return strings.TrimSpace(text[:idx]), true
		}
		count++
	}
	return text, false
}
