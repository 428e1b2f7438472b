package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

const slackAPIBase = "https://slack.com/api"

// Slack delivers events through the Slack Web API using a bot token:
// chat.postMessage for the text, files.upload for the HTML artifacts.
type Slack struct {
	token     string
	channelID string
	hc        *http.Client
	baseURL   string
}

// NewSlack constructs the channel.
func NewSlack(token, channelID string) (*Slack, error) {
	if token == "" || channelID == "" {
		return nil, fmt.Errorf("slack token and channel id must be configured")
	}
	return &Slack{
		token:     token,
		channelID: channelID,
		hc:        &http.Client{Timeout: 30 * time.Second},
		baseURL:   slackAPIBase,
	}, nil
}

func (s *Slack) Name() string { return "slack" }

func (s *Slack) SendNew(ctx context.Context, url, summary string) error {
	msg := fmt.Sprintf("✅ *New JavaScript File Enrolled*\n\n*File URL:* %s\n\n*Summary:*\n```%s```", url, summary)
	return s.postMessage(ctx, msg)
}

func (s *Slack) SendChange(ctx context.Context, change Change) error {
	msg := fmt.Sprintf("%s *JavaScript Change Analysis*\n\n*File URL:* %s\n\n*Risk Level:* %s\n\n%s",
		riskEmoji(change.RiskLevel), change.URL, change.RiskLevel, change.ShortSummary)
	if err := s.postMessage(ctx, msg); err != nil {
		return err
	}
	if err := s.uploadFile(ctx, "diff.html", change.DiffHTML, "Diff for "+change.URL); err != nil {
		return err
	}
	return s.uploadFile(ctx, "summary.html", change.SummaryHTML, "Summary for "+change.URL)
}

// slackResponse is the envelope every Web API call returns.
type slackResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

func (s *Slack) postMessage(ctx context.Context, text string) error {
	payload, err := json.Marshal(map[string]any{
		"channel": s.channelID,
		"text":    text,
		"mrkdwn":  true,
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/chat.postMessage", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Authorization", "Bearer "+s.token)
	return s.do(req)
}

func (s *Slack) uploadFile(ctx context.Context, filename string, content []byte, title string) error {
	if len(content) == 0 {
		return nil
	}
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	fields := map[string]string{
		"channels": s.channelID,
		"filename": filename,
		"filetype": "html",
		"title":    title,
		"content":  string(content),
	}
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return err
		}
	}
	if err := w.Close(); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/files.upload", &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+s.token)
	return s.do(req)
}

// do executes the request and surfaces Slack's in-band error field: the Web
// API reports most failures with HTTP 200 and ok=false.
func (s *Slack) do(req *http.Request) error {
	resp, err := s.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("slack API status %s", resp.Status)
	}
	var sr slackResponse
	if err := json.Unmarshal(raw, &sr); err != nil {
		return fmt.Errorf("decode slack response: %w", err)
	}
	if !sr.OK {
		return fmt.Errorf("slack API error: %s", sr.Error)
	}
	return nil
}
