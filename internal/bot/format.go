package bot

import (
	"fmt"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/samber/lo"

	"github.com/kovalyov-valentin/kids-news-feed/internal/botkit/markup"
	"github.com/kovalyov-valentin/kids-news-feed/internal/feed"
	"github.com/kovalyov-valentin/kids-news-feed/internal/model"
	"github.com/kovalyov-valentin/kids-news-feed/internal/quiz"
	"github.com/kovalyov-valentin/kids-news-feed/internal/search"
)

// Лимит телеграма 4096 символов, оставляем запас под заголовок и экранирование
const maxContentRunes = 2500

var strictPolicy = bluemonday.StrictPolicy()

var statusNames = map[model.VideoStatus]string{
	model.VideoStatusProcessing: "обрабатывается",
	model.VideoStatusReady:      "готово",
	model.VideoStatusFailed:     "ошибка",
}

func esc(s string) string {
	return markup.EscapeForMarkdown(s)
}

func formatArticleLine(a model.Article) string {
	var marks string
	if a.IsBreaking {
		marks += "🔥 "
	}
	if a.IsTrending {
		marks += "📈 "
	}

	return fmt.Sprintf("%s*%s*\n%s", marks, esc(a.Title), esc(fmt.Sprintf("%s · /article %s", a.Category, a.ID)))
}

func formatArticleList(title string, articles []model.Article) string {
	if len(articles) == 0 {
		return esc(title) + "\n\n" + esc("Здесь пока пусто.")
	}

	lines := lo.Map(articles, func(a model.Article, _ int) string {
		return formatArticleLine(a)
	})

	return esc(title) + "\n\n" + strings.Join(lines, "\n\n")
}

func formatArticle(a model.Article, bookmarked bool) string {
	var b strings.Builder

	if bookmarked {
		b.WriteString("⭐ ")
	}
	fmt.Fprintf(&b, "*%s*\n", esc(a.Title))
	if a.Headline != "" {
		fmt.Fprintf(&b, "_%s_\n", esc(a.Headline))
	}

	meta := lo.Filter([]string{a.Category, a.Author, readTime(a.ReadTime)}, func(s string, _ int) bool {
		return s != ""
	})
	fmt.Fprintf(&b, "%s\n\n", esc(strings.Join(meta, " · ")))

	text := plainText(a.Content)
	if text == "" {
		text = a.Summary
	}
	b.WriteString(esc(shorten(text, maxContentRunes)))

	fmt.Fprintf(&b, "\n\n%s", esc(fmt.Sprintf("/quiz %s  /bookmark %s", a.ID, a.ID)))

	return b.String()
}

func formatQuestion(position, total int, q model.QuizQuestion) string {
	options := lo.Map(q.Options, func(o string, i int) string {
		return fmt.Sprintf("%d\\. %s", i+1, esc(o))
	})

	return fmt.Sprintf(
		"Вопрос %d из %d\n*%s*\n\n%s\n\n%s",
		position,
		total,
		esc(q.Question),
		strings.Join(options, "\n"),
		esc("Ответ: /answer <номер>"),
	)
}

func formatOutcome(o quiz.Outcome) string {
	var text string
	if o.Correct {
		text = "✅ Верно!"
	} else {
		text = fmt.Sprintf("❌ Неверно. Правильный ответ: %s", o.Answer)
	}
	if o.Explanation != "" {
		text += "\n" + o.Explanation
	}

	return esc(text)
}

func formatScore(correct, total int) string {
	return esc(fmt.Sprintf("🏁 Викторина окончена: %d из %d", correct, total))
}

func formatSearch(st search.State) string {
	query := st.Query.Text

	if st.Error != "" {
		return esc(fmt.Sprintf("Поиск «%s» не удался: %s", query, st.Error))
	}

	res := st.Result
	if len(res.Articles) == 0 && len(res.Videos) == 0 {
		return esc(fmt.Sprintf("По запросу «%s» ничего не нашлось", query))
	}

	parts := []string{esc(fmt.Sprintf("🔎 «%s»: найдено %d", query, res.Total))}
	parts = append(parts, lo.Map(res.Articles, func(a model.Article, _ int) string {
		return formatArticleLine(a)
	})...)
	parts = append(parts, lo.Map(res.Videos, func(v model.Video, _ int) string {
		return formatVideoLine(v)
	})...)

	return strings.Join(parts, "\n\n")
}

func formatVideoLine(v model.Video) string {
	return fmt.Sprintf(
		"🎬 *%s*\n%s",
		esc(v.Title),
		esc(fmt.Sprintf("%s · %s · /video %s", formatDuration(v.Duration), statusName(v.Status), v.ID)),
	)
}

func formatVideo(v model.Video) string {
	text := formatVideoLine(v)
	if v.Description != "" {
		text += "\n\n" + esc(v.Description)
	}
	if v.Status == model.VideoStatusReady && v.FilePath != "" {
		text += "\n\n" + esc(v.FilePath)
	}

	return text
}

func formatHome(home feed.Home) string {
	parts := []string{esc(fmt.Sprintf("👋 Привет! Свежие новости (всего %d):", home.TotalArticles))}
	parts = append(parts, lo.Map(home.Articles, func(a model.Article, _ int) string {
		return formatArticleLine(a)
	})...)

	if len(home.Videos) > 0 {
		parts = append(parts, esc("Видео:"))
		parts = append(parts, lo.Map(home.Videos, func(v model.Video, _ int) string {
			return formatVideoLine(v)
		})...)
	}

	parts = append(parts, esc("Команды: /latest [категория], /more, /search <текст>, /bookmarks, /videos"))

	return strings.Join(parts, "\n\n")
}

func statusName(s model.VideoStatus) string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return s.String()
}

func formatDuration(seconds float64) string {
	total := int(seconds)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

func readTime(minutes int) string {
	if minutes <= 0 {
		return ""
	}
	return fmt.Sprintf("%d мин", minutes)
}

// Текст статьи без html тегов
func plainText(content string) string {
	return strings.TrimSpace(html.UnescapeString(strictPolicy.Sanitize(content)))
}

func shorten(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}

	return strings.TrimSpace(string(runes[:limit])) + "…"
}
