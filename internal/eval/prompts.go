// internal/eval/prompts.go
package eval

import "fmt"

// Labels is the fixed classification label set.
var Labels = []string{"finance", "science", "sports", "other"}

const classificationSystemPrompt = "You are a text classifier. You MUST answer with exactly one of the " +
	"following labels: finance, science, sports, other.\n" +
	"Answer with the label only. No explanation."

const summarizationSystemPrompt = "You are a summarization assistant. " +
	"Your goal is to maximize ROUGE-1 F1 overlap with a reference summary.\n\n" +
	"Rules:\n" +
	"- Use key phrases from the article.\n" +
	"- Preserve important nouns and named entities.\n" +
	"- Avoid synonyms unless necessary.\n" +
	"- Keep meaning faithful.\n" +
	"- Write 2–3 sentences.\n"

const extractionSystemPrompt = "You extract ONLY the time expression that describes work or study " +
	"experience from the text. Return ONLY that expression."

func classificationUserPrompt(text string) string {
	return fmt.Sprintf("Text: %s\nLabel:", text)
}

func summarizationUserPrompt(text string) string {
	return fmt.Sprintf("Article:\n\n%s\n\nSummary:", text)
}

// The extraction prompt passes the raw input as the user message.
func extractionUserPrompt(text string) string {
	return text
}
