// Package summarize wraps an OpenAI-compatible chat-completion service to
// produce structured JavaScript summaries and change analyses.
//
// The service boundary is deliberately forgiving: responses may arrive
// wrapped in markdown fences, and responses that fail to parse as the
// expected structure are replaced by a well-defined fallback record with
// risk level UNKNOWN instead of surfacing a parse failure.
package summarize

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// Risk levels attached to a change analysis.
const (
	RiskLow     = "LOW"
	RiskMedium  = "MEDIUM"
	RiskHigh    = "HIGH"
	RiskUnknown = "UNKNOWN"
)

// Analysis is the structured result of an AI change review.
type Analysis struct {
	ShortSummary     string         `json:"short_summary"`
	RiskLevel        string         `json:"risk_level"`
	DetailedAnalysis map[string]any `json:"detailed_analysis,omitempty"`
	Error            string         `json:"error,omitempty"`
	RawResponse      string         `json:"raw_response,omitempty"`
}

// Config wires the summarizer to an OpenAI-compatible endpoint.
type Config struct {
	APIKey  string
	BaseURL string // optional; local gateways welcome
	Model   string

	// Optional prompt template files; built-in defaults apply when empty
	// or unreadable.
	SummaryPromptPath  string
	AnalysisPromptPath string

	// AuditDir receives one JSON file per AI response when non-empty.
	AuditDir string
}

// Summarizer talks to the model. Construct once and share; the underlying
// client is safe for concurrent use.
type Summarizer struct {
	client         *openai.Client
	model          string
	summaryPrompt  string
	analysisPrompt string
	auditDir       string
}

// New validates cfg and builds the client.
func New(cfg Config) (*Summarizer, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("summarizer API key not configured")
	}
	model := cfg.Model
	if model == "" {
		model = openai.GPT4oMini
	}
	cc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		cc.BaseURL = cfg.BaseURL
	}
	return &Summarizer{
		client:         openai.NewClientWithConfig(cc),
		model:          model,
		summaryPrompt:  loadPrompt(cfg.SummaryPromptPath, defaultSummaryPrompt),
		analysisPrompt: loadPrompt(cfg.AnalysisPromptPath, defaultAnalysisPrompt),
		auditDir:       cfg.AuditDir,
	}, nil
}

// Summarize asks the model for a structured summary of a newly enrolled
// file. The returned record is always a valid JSON object (the fallback
// record when the response does not parse); the error covers transport
// failures only.
func (s *Summarizer) Summarize(ctx context.Context, url, fp string, content []byte) (json.RawMessage, error) {
	prompt := s.summaryPrompt + "\n\n" + string(content)
	text, err := s.complete(ctx, prompt, 0.5, 4096)
	if err != nil {
		return nil, fmt.Errorf("summarize %s: %w", url, err)
	}
	record := ParseSummary(text)
	s.audit("summary", url, fp, record)
	return record, nil
}

// AnalyzeChange asks the model to review a unified diff in the context of
// the resource's initial summary. The Analysis is always usable: parse
// failures yield the UNKNOWN-risk fallback, never an error.
func (s *Summarizer) AnalyzeChange(ctx context.Context, url, fp, priorSummary, unifiedDiff string) (Analysis, json.RawMessage, error) {
	prompt := strings.NewReplacer(
		"{file_summary}", priorSummary,
		"{diff_content}", unifiedDiff,
		"{js_url}", url,
	).Replace(s.analysisPrompt)

	text, err := s.complete(ctx, prompt, 0.7, 8192)
	if err != nil {
		return Analysis{}, nil, fmt.Errorf("analyze change for %s: %w", url, err)
	}
	analysis, record := ParseAnalysis(text)
	s.audit("change_analysis", url, fp, record)
	return analysis, record, nil
}

func (s *Summarizer) complete(ctx context.Context, prompt string, temperature float32, maxTokens int) (string, error) {
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("model returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
