package notifier

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/go-shiori/go-readability"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/microcosm-cc/bluemonday"
	"github.com/samber/lo"
	"github.com/tomakado/containers/set"

	"github.com/kovalyov-valentin/kids-news-feed/internal/api"
	"github.com/kovalyov-valentin/kids-news-feed/internal/botkit/markup"
	"github.com/kovalyov-valentin/kids-news-feed/internal/model"
)

// Сколько свежих статей просматриваем за один проход
const defaultLookup = 20

// Если пересказа нет, обрезаем текст до этой длины
const maxPlainSummary = 400

type ArticleSource interface {
	Articles(ctx context.Context, q api.ArticlesQuery) (model.Page[model.Article], error)
}

type PostedStorage interface {
	PostedIDs(ctx context.Context, ids []model.ID) ([]model.ID, error)
	MarkPosted(ctx context.Context, id model.ID) error
}

type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// Достаточно метода Send от *tgbotapi.BotAPI
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Публикует срочные новости в канал, каждую не больше одного раза
type Notifier struct {
	articles   ArticleSource
	posted     PostedStorage
	summarizer Summarizer
	bot        Sender
	// Как часто проверяем, появились ли срочные новости
	sendInterval time.Duration
	channelID    int64
	lookup       int
}

func New(
	articles ArticleSource,
	posted PostedStorage,
	summarizer Summarizer,
	bot Sender,
	sendInterval time.Duration,
	channelID int64,
) *Notifier {
	return &Notifier{
		articles:     articles,
		posted:       posted,
		summarizer:   summarizer,
		bot:          bot,
		sendInterval: sendInterval,
		channelID:    channelID,
		lookup:       defaultLookup,
	}
}

func (n *Notifier) Start(ctx context.Context) error {
	ticker := time.NewTicker(n.sendInterval)
	defer ticker.Stop()

	n.tick(ctx)

	for {
		select {
		case <-ticker.C:
			n.tick(ctx)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// API может быть временно недоступно, это не повод останавливать воркер
func (n *Notifier) tick(ctx context.Context) {
	if err := n.SelectAndSendArticle(ctx); err != nil && ctx.Err() == nil {
		log.Printf("[ERROR] failed to send breaking article: %v", err)
	}
}

// Выбирает одну еще не опубликованную срочную новость и отправляет ее в канал
func (n *Notifier) SelectAndSendArticle(ctx context.Context) error {
	page, err := n.articles.Articles(ctx, api.ArticlesQuery{Limit: n.lookup})
	if err != nil {
		return fmt.Errorf("fetch articles: %w", err)
	}

	breaking := lo.Filter(page.Items, func(a model.Article, _ int) bool {
		return a.IsBreaking
	})
	if len(breaking) == 0 {
		return nil
	}

	posted, err := n.posted.PostedIDs(ctx, lo.Map(breaking, func(a model.Article, _ int) model.ID {
		return a.ID
	}))
	if err != nil {
		return fmt.Errorf("posted ids: %w", err)
	}

	postedSet := set.New(posted...)
	article, ok := lo.Find(breaking, func(a model.Article) bool {
		return !postedSet.Contains(a.ID)
	})
	if !ok {
		return nil
	}

	summary, err := n.extractSummary(ctx, article)
	if err != nil {
		return err
	}

	if err := n.sendArticle(article, summary); err != nil {
		return err
	}

	log.Printf("[INFO] breaking article %s posted", article.ID)

	return n.posted.MarkPosted(ctx, article.ID)
}

// Текст для пересказа: готовое краткое содержание статьи, иначе текст статьи без разметки.
// Если пересказ выключен или пустой, берем сам текст
func (n *Notifier) extractSummary(ctx context.Context, article model.Article) (string, error) {
	text := strings.TrimSpace(article.Summary)
	if text == "" {
		text = plainText(article.Content)
	}

	summary, err := n.summarizer.Summarize(ctx, text)
	if err != nil {
		return "", fmt.Errorf("summarize article %s: %w", article.ID, err)
	}
	if summary != "" {
		return summary, nil
	}

	return shorten(text, maxPlainSummary), nil
}

func (n *Notifier) sendArticle(article model.Article, summary string) error {
	const msgFormat = "🔥 *%s*\n\n%s\n\n%s"

	msg := tgbotapi.NewMessage(n.channelID, fmt.Sprintf(
		msgFormat,
		markup.EscapeForMarkdown(article.Title),
		markup.EscapeForMarkdown(summary),
		markup.EscapeForMarkdown(fmt.Sprintf("Читать: /article %s", article.ID)),
	))
	msg.ParseMode = tgbotapi.ModeMarkdownV2

	_, err := n.bot.Send(msg)
	return err
}

var (
	// readability оставляет много пустых строк, схлопываем их
	redundantNewLines = regexp.MustCompile(`\n{3,}`)
	strictPolicy      = bluemonday.StrictPolicy()
)

// Текст статьи без html. readability на коротких фрагментах иногда ничего не находит,
// тогда просто вырезаем все теги
func plainText(content string) string {
	doc, err := readability.FromReader(strings.NewReader(content), nil)
	if err == nil && strings.TrimSpace(doc.TextContent) != "" {
		return cleanText(doc.TextContent)
	}

	return cleanText(strictPolicy.Sanitize(content))
}

func cleanText(text string) string {
	return strings.TrimSpace(redundantNewLines.ReplaceAllString(text, "\n"))
}

func shorten(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}

	return strings.TrimSpace(string(runes[:limit])) + "…"
}
