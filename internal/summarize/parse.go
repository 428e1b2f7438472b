package summarize

import (
	"encoding/json"
	"strings"
)

// stripFences removes a surrounding ```json ... ``` (or plain ```) markdown
// fence, which chat models routinely add around JSON payloads.
func stripFences(s string) string {
	clean := strings.TrimSpace(s)
	if strings.HasPrefix(clean, "```json") {
		clean = strings.TrimSpace(clean[len("```json"):])
	} else if strings.HasPrefix(clean, "```") {
		clean = strings.TrimSpace(clean[len("```"):])
	}
	if strings.HasSuffix(clean, "```") {
		clean = strings.TrimSpace(clean[:len(clean)-len("```")])
	}
	return clean
}

// ParseSummary turns a model response into a storable summary record. The
// result is always a valid JSON object: unparseable responses become
// {"error": ..., "raw_response": ...}.
func ParseSummary(response string) json.RawMessage {
	clean := stripFences(response)
	var obj map[string]any
	if err := json.Unmarshal([]byte(clean), &obj); err == nil && obj != nil {
		return json.RawMessage(clean)
	}
	fallback, _ := json.Marshal(map[string]string{
		"error":        "AI response was not valid JSON after cleaning",
		"raw_response": response,
	})
	return fallback
}

// ParseAnalysis turns a model response into a change Analysis plus the raw
// record to persist. Unparseable responses yield the UNKNOWN-risk fallback;
// unrecognized risk levels are coerced to UNKNOWN.
func ParseAnalysis(response string) (Analysis, json.RawMessage) {
	clean := stripFences(response)
	var a Analysis
	if err := json.Unmarshal([]byte(clean), &a); err != nil {
		a = Analysis{
			Error:        "AI response was not valid JSON after cleaning",
			RawResponse:  response,
			ShortSummary: "Could not analyze changes due to an AI response error.",
			RiskLevel:    RiskUnknown,
		}
		record, _ := json.Marshal(a)
		return a, record
	}
	a.RiskLevel = normalizeRisk(a.RiskLevel)
	if a.ShortSummary == "" {
		a.ShortSummary = "Analysis could not be summarized."
	}
	return a, json.RawMessage(clean)
}

func normalizeRisk(level string) string {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case RiskLow:
		return RiskLow
	case RiskMedium:
		return RiskMedium
	case RiskHigh:
		return RiskHigh
	default:
		return RiskUnknown
	}
}

// SummaryText extracts the human-readable sentence used in new-resource
// notifications from a stored summary record.
func SummaryText(record json.RawMessage) string {
	if len(record) == 0 {
		return "Summary was not generated for this new file."
	}
	var obj map[string]any
	if err := json.Unmarshal(record, &obj); err != nil {
		return "Summary was generated but could not be parsed."
	}
	if errMsg, ok := obj["error"].(string); ok && errMsg != "" {
		return "Could not generate summary: " + errMsg
	}
	if concise, ok := obj["concise_summary"].(string); ok && concise != "" {
		return concise
	}
	return "Summary was generated but could not be parsed."
}
