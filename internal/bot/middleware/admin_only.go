package middleware

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/samber/lo"

	"github.com/kovalyov-valentin/kids-news-feed/internal/botkit"
)

// Пропускает к view только администраторов канала
func AdminOnly(channelID int64, next botkit.ViewFunc) botkit.ViewFunc {
	return func(ctx context.Context, bot botkit.API, update tgbotapi.Update) error {
		if update.Message.From == nil {
			return nil
		}

		admins, err := bot.GetChatAdministrators(
			tgbotapi.ChatAdministratorsConfig{
				ChatConfig: tgbotapi.ChatConfig{
					ChatID: channelID,
				},
			},
		)
		if err != nil {
			return err
		}

		isAdmin := lo.ContainsBy(admins, func(admin tgbotapi.ChatMember) bool {
			return admin.User != nil && admin.User.ID == update.Message.From.ID
		})
		if isAdmin {
			return next(ctx, bot, update)
		}

		return botkit.Reply(bot, update.Message.Chat.ID, "Эта команда только для администраторов")
	}
}
