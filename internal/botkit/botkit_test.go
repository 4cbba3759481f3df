package botkit

import (
	"context"
	"errors"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	sent []tgbotapi.MessageConfig
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, msg)
	}
	return tgbotapi.Message{}, nil
}

func (f *fakeAPI) GetChatAdministrators(tgbotapi.ChatAdministratorsConfig) ([]tgbotapi.ChatMember, error) {
	return nil, nil
}

func command(text string) tgbotapi.Update {
	cmdLen := len(text)
	for i, r := range text {
		if r == ' ' {
			cmdLen = i
			break
		}
	}

	return tgbotapi.Update{
		Message: &tgbotapi.Message{
			Text:     text,
			Chat:     &tgbotapi.Chat{ID: 42},
			Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: cmdLen}},
		},
	}
}

func TestBot_HandleUpdate(t *testing.T) {
	var b Bot
	var got []string

	b.RegisterCmdView("echo", func(_ context.Context, api API, update tgbotapi.Update) error {
		got = Args(update)
		return Reply(api, update.Message.Chat.ID, "ok")
	})
	b.RegisterCmdView("fail", func(context.Context, API, tgbotapi.Update) error {
		return errors.New("boom")
	})
	b.RegisterCmdView("panic", func(context.Context, API, tgbotapi.Update) error {
		panic("oops")
	})

	api := &fakeAPI{}
	ctx := context.Background()

	b.HandleUpdate(ctx, api, command("/echo one  two"))
	assert.Equal(t, []string{"one", "two"}, got)
	require.Len(t, api.sent, 1)
	assert.Equal(t, "ok", api.sent[0].Text)

	b.HandleUpdate(ctx, api, command("/fail"))
	require.Len(t, api.sent, 2)
	assert.Equal(t, int64(42), api.sent[1].ChatID)

	assert.NotPanics(t, func() { b.HandleUpdate(ctx, api, command("/panic")) })
	b.HandleUpdate(ctx, api, command("/unknown"))
	b.HandleUpdate(ctx, api, tgbotapi.Update{})
	assert.Len(t, api.sent, 2)
}

func TestIntArg(t *testing.T) {
	n, err := IntArg(command("/answer 3"))
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	_, err = IntArg(command("/answer"))
	require.Error(t, err)

	_, err = IntArg(command("/answer x"))
	require.Error(t, err)

	assert.Empty(t, FirstArg(command("/latest")))
}
