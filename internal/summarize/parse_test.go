package summarize

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripFences(t *testing.T) {
	cases := map[string]string{
		"```json\n{\"a\":1}\n```":  `{"a":1}`,
		"```\n{\"a\":1}\n```":      `{"a":1}`,
		"  {\"a\":1}  ":            `{"a":1}`,
		"{\"a\":1}":                `{"a":1}`,
		"```json\n{\"a\":1}\n```\n": `{"a":1}`,
	}
	for in, want := range cases {
		assert.Equal(t, want, stripFences(in))
	}
}

func TestParseSummaryValidObject(t *testing.T) {
	record := ParseSummary("```json\n{\"concise_summary\": \"analytics bootstrap\"}\n```")
	var obj map[string]any
	require.NoError(t, json.Unmarshal(record, &obj))
	assert.Equal(t, "analytics bootstrap", obj["concise_summary"])
}

func TestParseSummaryFallback(t *testing.T) {
	record := ParseSummary("Sorry, I cannot answer that.")
	var obj map[string]string
	require.NoError(t, json.Unmarshal(record, &obj), "fallback must itself be valid JSON")
	assert.NotEmpty(t, obj["error"])
	assert.Equal(t, "Sorry, I cannot answer that.", obj["raw_response"])
}

func TestParseAnalysisHappyPath(t *testing.T) {
	a, record := ParseAnalysis("```json\n" + `{
		"short_summary": "tracking endpoint swapped",
		"risk_level": "high",
		"detailed_analysis": {"security_impact": "new exfil host"}
	}` + "\n```")
	assert.Equal(t, "tracking endpoint swapped", a.ShortSummary)
	assert.Equal(t, RiskHigh, a.RiskLevel, "risk level is case-normalized")
	assert.Equal(t, "new exfil host", a.DetailedAnalysis["security_impact"])
	assert.NotEmpty(t, record)
}

func TestParseAnalysisFallback(t *testing.T) {
	a, record := ParseAnalysis("not json at all")
	assert.Equal(t, RiskUnknown, a.RiskLevel)
	assert.NotEmpty(t, a.Error)
	assert.Equal(t, "not json at all", a.RawResponse)
	assert.NotEmpty(t, a.ShortSummary)

	var roundTrip Analysis
	require.NoError(t, json.Unmarshal(record, &roundTrip))
	assert.Equal(t, RiskUnknown, roundTrip.RiskLevel)
}

func TestParseAnalysisUnknownRiskCoerced(t *testing.T) {
	a, _ := ParseAnalysis(`{"short_summary": "minor", "risk_level": "CATASTROPHIC"}`)
	assert.Equal(t, RiskUnknown, a.RiskLevel)
}

func TestSummaryText(t *testing.T) {
	assert.Equal(t, "Summary was not generated for this new file.", SummaryText(nil))
	assert.Equal(t, "loads the checkout widget", SummaryText(json.RawMessage(`{"concise_summary":"loads the checkout widget"}`)))
	assert.Equal(t, "Could not generate summary: quota exceeded", SummaryText(json.RawMessage(`{"error":"quota exceeded"}`)))
	assert.Equal(t, "Summary was generated but could not be parsed.", SummaryText(json.RawMessage(`{"something_else":1}`)))
	assert.Equal(t, "Summary was generated but could not be parsed.", SummaryText(json.RawMessage(`broken`)))
}
