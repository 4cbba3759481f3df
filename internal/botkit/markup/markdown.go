package markup

import "strings"

// Символы, которые разметка MarkdownV2 телеграма требует экранировать в обычном тексте
const specialChars = "\\_*[]()~`>#+-=|{}.!"

var replacer = strings.NewReplacer(escapePairs()...)

func escapePairs() []string {
	pairs := make([]string, 0, 2*len(specialChars))
	for _, r := range specialChars {
		pairs = append(pairs, string(r), "\\"+string(r))
	}
	return pairs
}

// Экранирует текст для сообщений с ParseMode MarkdownV2
func EscapeForMarkdown(src string) string {
	return replacer.Replace(src)
}
