package notify

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/jonathan/job-funnel/internal/types"
)

// telegramChannel pushes a short job summary to a chat.
type telegramChannel struct {
	api    *tgbotapi.BotAPI
	chatID int64
}

func newTelegramChannel(cfg map[string]any) (Channel, error) {
	token, _ := cfg["bot_token"].(string)
	if token == "" {
		return nil, fmt.Errorf("no bot_token configured")
	}
	chatID, ok := asInt64(cfg["chat_id"])
	if !ok {
		return nil, fmt.Errorf("no chat_id configured")
	}

	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	return &telegramChannel{api: api, chatID: chatID}, nil
}

func (t *telegramChannel) Name() string { return "telegram" }

func (t *telegramChannel) Send(_ context.Context, job *types.CanonicalJob) error {
	text := fmt.Sprintf("*%s*\n", escapeMarkdown(job.Title))
	text += fmt.Sprintf("[View Job](%s)\n", job.URL)
	text += fmt.Sprintf("Budget: %s\n", escapeMarkdown(fmt.Sprintf("%.2f", job.Budget)))
	if len(job.Skills) > 0 {
		text += fmt.Sprintf("Skills: %s\n", escapeMarkdown(strings.Join(job.Skills, ", ")))
	}
	if job.Client.Name != "" {
		text += fmt.Sprintf("Client: %s\n", escapeMarkdown(job.Client.Name))
	}

	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	msg.DisableWebPagePreview = true

	_, err := t.api.Send(msg)
	return err
}

func escapeMarkdown(text string) string {
	replacer := strings.NewReplacer(
		"_", "\\_", "*", "\\*", "[", "\\[", "]", "\\]", "(", "\\(",
		")", "\\)", "~", "\\~", "`", "\\`", ">", "\\>", "#", "\\#",
		"+", "\\+", "-", "\\-", "=", "\\=", "|", "\\|", "{", "\\{",
		"}", "\\}", ".", "\\.", "!", "\\!",
	)
	return replacer.Replace(text)
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	case string:
		var out int64
		if _, err := fmt.Sscanf(n, "%d", &out); err == nil {
			return out, true
		}
	}
	return 0, false
}
