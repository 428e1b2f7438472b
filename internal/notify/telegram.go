package notify

import (
	"bytes"
	"context"
	"fmt"
	"html"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// Telegram delivers events to a single chat, messages in HTML parse mode
// with the diff and summary artifacts attached as documents.
type Telegram struct {
	bot    *tgbot.Bot
	chatID string
}

// NewTelegram constructs the channel. GetMe is skipped so construction does
// not require network access.
func NewTelegram(token, chatID string) (*Telegram, error) {
	if token == "" || chatID == "" {
		return nil, fmt.Errorf("telegram token and chat id must be configured")
	}
	b, err := tgbot.New(token, tgbot.WithSkipGetMe())
	if err != nil {
		return nil, fmt.Errorf("build telegram bot: %w", err)
	}
	return &Telegram{bot: b, chatID: chatID}, nil
}

func (t *Telegram) Name() string { return "telegram" }

func (t *Telegram) SendNew(ctx context.Context, url, summary string) error {
	msg := fmt.Sprintf("✅ <b>New JavaScript File Enrolled</b>\n\n<b>File URL:</b> %s\n\n<b>Summary:</b>\n%s",
		html.EscapeString(url), html.EscapeString(summary))
	_, err := t.bot.SendMessage(ctx, &tgbot.SendMessageParams{
		ChatID:    t.chatID,
		Text:      msg,
		ParseMode: models.ParseModeHTML,
	})
	return err
}

func (t *Telegram) SendChange(ctx context.Context, change Change) error {
	msg := fmt.Sprintf("%s <b>JavaScript Change Analysis</b>\n\n<b>File URL:</b> %s\n\n<b>Risk Level:</b> %s\n\n%s",
		riskEmoji(change.RiskLevel),
		html.EscapeString(change.URL),
		html.EscapeString(change.RiskLevel),
		html.EscapeString(change.ShortSummary))
	_, err := t.bot.SendMessage(ctx, &tgbot.SendMessageParams{
		ChatID:    t.chatID,
		Text:      msg,
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		return err
	}
	if err := t.sendDocument(ctx, "diff.html", change.DiffHTML, "Diff file for "+change.URL); err != nil {
		return err
	}
	return t.sendDocument(ctx, "summary.html", change.SummaryHTML, "Summary of changes for "+change.URL)
}

func (t *Telegram) sendDocument(ctx context.Context, filename string, content []byte, caption string) error {
	if len(content) == 0 {
		return nil
	}
	_, err := t.bot.SendDocument(ctx, &tgbot.SendDocumentParams{
		ChatID: t.chatID,
		Document: &models.InputFileUpload{
			Filename: filename,
			Data:     bytes.NewReader(content),
		},
		Caption: caption,
	})
	return err
}
