package analysis

import (
	"context"
	"strings"
)

// LeadSummarizer is an extractive summarizer that keeps the opening sentences
// of a text. It needs no model and never fails.
type LeadSummarizer struct {
	MaxSentences int
	MaxWords     int
}

func NewLeadSummarizer() *LeadSummarizer {
	return &LeadSummarizer{MaxSentences: 3, MaxWords: 60}
}

// Summarize returns the leading sentences of text, stopping at whichever
// bound is reached first.
func (l *LeadSummarizer) Summarize(ctx context.Context, text string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	words := strings.Fields(strings.TrimSuffix(text, ellipsis))
	if len(words) == 0 {
		return "", nil
	}

	var (
		out       []string
		sentences int
	)
	for _, w := range words {
		out = append(out, w)
		if endsSentence(w) {
			sentences++
			if l.MaxSentences > 0 && sentences >= l.MaxSentences {
				break
			}
		}
		if l.MaxWords > 0 && len(out) >= l.MaxWords {
			break
		}
	}

	summary := strings.Join(out, " ")
	if !endsSentence(summary) {
		summary += ellipsis
	}
	return summary, nil
}

func endsSentence(w string) bool {
	w = strings.TrimRight(w, `"')]`)
	return strings.HasSuffix(w, ".") || strings.HasSuffix(w, "!") || strings.HasSuffix(w, "?")
}
