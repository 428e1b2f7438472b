package summarize

import "os"

// loadPrompt reads a template file, falling back to the built-in default
// when the path is empty or unreadable.
func loadPrompt(path, fallback string) string {
	if path == "" {
		return fallback
	}
	b, err := os.ReadFile(path)
	if err != nil || len(b) == 0 {
		return fallback
	}
	return string(b)
}

const defaultSummaryPrompt = `You are a security-minded reviewer of JavaScript served by production websites.
Summarize the JavaScript code below. Respond with a single JSON object and
nothing else, using this shape:

{
  "concise_summary": "one or two sentences describing what the code does",
  "purpose": "the apparent role of this file in the site",
  "notable_endpoints": ["API endpoints or URLs referenced by the code"],
  "sensitive_operations": ["authentication, storage, crypto or tracking behavior worth noting"]
}

The code follows:`

const defaultAnalysisPrompt = `You are a security-minded reviewer of JavaScript served by production websites.
A monitored file at {js_url} changed. Review the unified diff in the context
of the file's original summary and assess the change.

Original file summary:
{file_summary}

Unified diff (normalized formatting, previous vs current):
{diff_content}

Respond with a single JSON object and nothing else, using this shape:

{
  "short_summary": "one or two sentences describing the change",
  "risk_level": "LOW | MEDIUM | HIGH",
  "detailed_analysis": {
    "functional_changes": "what behavior changed",
    "security_impact": "new endpoints, credentials, eval/injection surface, exfiltration risk",
    "recommended_action": "what a reviewer should do next"
  }
}`
