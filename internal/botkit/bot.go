package botkit

import (
	"context"
	"log"
	"runtime/debug"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Часть *tgbotapi.BotAPI, которой пользуются view
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetChatAdministrators(config tgbotapi.ChatAdministratorsConfig) ([]tgbotapi.ChatMember, error)
}

// Реакция на конкретную команду
type ViewFunc func(ctx context.Context, bot API, update tgbotapi.Update) error

var commandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "kidsnews_bot_commands_total",
	Help: "Bot commands handled, by command and result.",
}, []string{"command", "result"})

type Bot struct {
	api *tgbotapi.BotAPI
	// Команда -> view
	cmdViews map[string]ViewFunc
	// Сколько времени даем одной команде
	updateTimeout time.Duration
}

func New(api *tgbotapi.BotAPI) *Bot {
	return &Bot{
		api:           api,
		updateTimeout: 10 * time.Second,
	}
}

func (b *Bot) RegisterCmdView(cmd string, view ViewFunc) {
	if b.cmdViews == nil {
		b.cmdViews = make(map[string]ViewFunc)
	}

	b.cmdViews[cmd] = view
}

func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case update := <-updates:
			updateCtx, updateCancel := context.WithTimeout(ctx, b.updateTimeout)
			b.HandleUpdate(updateCtx, b.api, update)
			updateCancel()
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Роутит команду на ее view. Паника во view не роняет бота
func (b *Bot) HandleUpdate(ctx context.Context, api API, update tgbotapi.Update) {
	defer func() {
		if p := recover(); p != nil {
			log.Printf("[ERROR] panic recovered: %v\n%s", p, string(debug.Stack()))
		}
	}()

	if update.Message == nil || !update.Message.IsCommand() {
		return
	}

	cmd := update.Message.Command()

	view, ok := b.cmdViews[cmd]
	if !ok {
		return
	}

	if err := view(ctx, api, update); err != nil {
		commandsTotal.WithLabelValues(cmd, "error").Inc()
		log.Printf("[ERROR] failed to handle command %s: %v", cmd, err)

		if _, err := api.Send(
			tgbotapi.NewMessage(update.Message.Chat.ID, "Что-то пошло не так, попробуйте еще раз"),
		); err != nil {
			log.Printf("[ERROR] failed to send message: %v", err)
		}
		return
	}

	commandsTotal.WithLabelValues(cmd, "ok").Inc()
}
