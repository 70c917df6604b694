package analysis

import "strings"

// Sentiment labels.
const (
	SentimentPositive = "positive"
	SentimentNeutral  = "neutral"
	SentimentNegative = "negative"
)

// sentimentAliases maps the labels emitted by common classifiers, including
// the three-class LABEL_n scheme of RoBERTa sentiment models.
var sentimentAliases = map[string]string{
	"positive": SentimentPositive,
	"pos":      SentimentPositive,
	"label_2":  SentimentPositive,
	"neutral":  SentimentNeutral,
	"neu":      SentimentNeutral,
	"label_1":  SentimentNeutral,
	"negative": SentimentNegative,
	"neg":      SentimentNegative,
	"label_0":  SentimentNegative,
}

// ParseSentiment normalises a classifier label. Unknown labels, and replies
// that wrap a label in punctuation or prose, resolve to the first known word
// or to neutral.
func ParseSentiment(label string) string {
	clean := strings.ToLower(strings.TrimSpace(label))
	if s, ok := sentimentAliases[clean]; ok {
		return s
	}
	for _, word := range strings.FieldsFunc(clean, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '_')
	}) {
		if s, ok := sentimentAliases[word]; ok {
			return s
		}
	}
	return SentimentNeutral
}
