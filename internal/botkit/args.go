package botkit

import (
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Аргументы команды, разделенные пробелами
func Args(update tgbotapi.Update) []string {
	return strings.Fields(update.Message.CommandArguments())
}

// Первый аргумент команды, пусто если его нет
func FirstArg(update tgbotapi.Update) string {
	args := Args(update)
	if len(args) == 0 {
		return ""
	}

	return args[0]
}

func IntArg(update tgbotapi.Update) (int, error) {
	arg := FirstArg(update)
	if arg == "" {
		return 0, fmt.Errorf("argument is required")
	}

	n, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("argument %q is not a number", arg)
	}

	return n, nil
}
