package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/insightpilot/insightpilot-api/internal/core"
	"github.com/insightpilot/insightpilot-api/internal/models"
)

func sectionSystemPrompt(section string, maxScore int) string {
	return fmt.Sprintf(
		"You are an expert business analyst. Based on the following answers for the '%s' section "+
			"of a business idea validation questionnaire, provide:\n"+
			"1. A detailed insight (2-3 sentences).\n"+
			"2. Two specific, actionable recommendations.\n"+
			"3. A score out of %d based on the completeness and quality of the answers.\n"+
			"4. A brief reasoning for the score.\n\n"+
			"Respond ONLY with a valid JSON object in the following format (no other text before or after):\n"+
			"{\n"+
			"    \"insight\": \"your detailed insight here\",\n"+
			"    \"recommendations\": [\"recommendation 1\", \"recommendation 2\"],\n"+
			"    \"score\": <integer between 0 and %d>,\n"+
			"    \"reasoning\": \"brief explanation of the score\"\n"+
			"}",
		section, maxScore, maxScore)
}

func sectionUserPrompt(section string, items []core.QA) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Section: %s\n", section)
	b.WriteString("Questions and Answers:\n")
	b.WriteString(strings.Repeat("-", 20) + "\n")
	for i, item := range items {
		fmt.Fprintf(&b, "Q%d: %s\n", i+1, item.Question)
		fmt.Fprintf(&b, "A%d: %s\n\n", i+1, answerText(item.Answer))
	}
	return b.String()
}

func overviewSystemPrompt() string {
	return "You are an expert business strategist.\n" +
		"Given the idea name and analyses of various sections of a business validation questionnaire, " +
		"provide an overall strategic analysis.\n" +
		"Respond ONLY with a valid JSON object in the following format:\n" +
		"{\n" +
		"    \"overview\": \"A concise overall summary of the business idea's potential based on the section analyses (3-4 sentences).\",\n" +
		"    \"strategic_next_steps\": [\"3-5 actionable strategic next steps for the user to pursue.\"],\n" +
		"    \"key_strengths\": [\"List 2-3 key strengths identified from the analyses.\"],\n" +
		"    \"key_challenges\": [\"List 2-3 key challenges or weaknesses identified.\"]\n" +
		"}"
}

func overviewUserPrompt(ideaName string, sections []models.ReportSection) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Business Idea Name: %s\n\nSection Analyses Summary:\n", ideaName)
	for i, s := range sections {
		fmt.Fprintf(&b, "\nSection %d: %s\n", i+1, s.Category)
		fmt.Fprintf(&b, "  Score: %d/%d\n", s.Score, s.MaxScore)
		fmt.Fprintf(&b, "  Insight: %s\n", s.Insight)
		fmt.Fprintf(&b, "  Recommendations: %s\n", strings.Join(s.Recommendations, ", "))
	}
	return b.String()
}

// answerText renders a stored answer payload as prompt text. Payloads arrive
// as plain strings, choice arrays, or {"type": ..., "value": ...} envelopes.
func answerText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "Not answered"
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return string(raw)
	}
	return renderAnswerValue(v)
}

func renderAnswerValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []any:
		parts := make([]string, 0, len(t))
		for _, e := range t {
			parts = append(parts, renderAnswerValue(e))
		}
		return strings.Join(parts, ", ")
	case map[string]any:
		if inner, ok := t["value"]; ok {
			return renderAnswerValue(inner)
		}
		out, _ := json.Marshal(t)
		return string(out)
	case nil:
		return "Not answered"
	default:
		return fmt.Sprintf("%v", t)
	}
}
