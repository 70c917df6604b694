package analysis

// Prompts shared by the model-backed summarizers and classifiers.
const (
	SummaryPrompt = `You summarize web pages. Write a neutral summary of the provided page text in at most three sentences.

Rules:
- Return only the summary, no preamble or markdown.
- Do not invent facts that are not in the text.`

	SentimentPrompt = `You classify the overall sentiment of web page text.

Reply with exactly one word: positive, neutral or negative.`
)
