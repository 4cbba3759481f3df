package botkit

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Ответ в чат в разметке MarkdownV2. Текст уже должен быть экранирован
func ReplyMarkdown(api API, chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	msg.DisableWebPagePreview = true

	_, err := api.Send(msg)
	return err
}

// Ответ обычным текстом
func Reply(api API, chatID int64, text string) error {
	_, err := api.Send(tgbotapi.NewMessage(chatID, text))
	return err
}
