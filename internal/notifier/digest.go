package notifier

import (
	"context"
	"fmt"
	"log"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/robfig/cron/v3"
	"github.com/samber/lo"

	"github.com/kovalyov-valentin/kids-news-feed/internal/api"
	"github.com/kovalyov-valentin/kids-news-feed/internal/botkit/markup"
	"github.com/kovalyov-valentin/kids-news-feed/internal/model"
)

// Каждый день в 8 утра, формат с секундами
const DefaultDigestSchedule = "0 0 8 * * *"

const digestSize = 5

// Ежедневная подборка популярных статей
type Digest struct {
	articles  ArticleSource
	bot       Sender
	schedule  string
	channelID int64
}

func NewDigest(articles ArticleSource, bot Sender, schedule string, channelID int64) *Digest {
	if schedule == "" {
		schedule = DefaultDigestSchedule
	}

	return &Digest{
		articles:  articles,
		bot:       bot,
		schedule:  schedule,
		channelID: channelID,
	}
}

// Работает до отмены контекста. Неверное расписание - ошибка сразу
func (d *Digest) Start(ctx context.Context) error {
	c := cron.New(cron.WithSeconds())

	if _, err := c.AddFunc(d.schedule, func() {
		if err := d.Send(ctx); err != nil && ctx.Err() == nil {
			log.Printf("[ERROR] failed to send digest: %v", err)
		}
	}); err != nil {
		return fmt.Errorf("digest schedule %q: %w", d.schedule, err)
	}

	c.Start()
	<-ctx.Done()
	// Ждем, пока закончится уже запущенная отправка
	<-c.Stop().Done()

	return ctx.Err()
}

func (d *Digest) Send(ctx context.Context) error {
	page, err := d.articles.Articles(ctx, api.ArticlesQuery{Limit: defaultLookup})
	if err != nil {
		return fmt.Errorf("fetch articles: %w", err)
	}

	trending := lo.Filter(page.Items, func(a model.Article, _ int) bool {
		return a.IsTrending
	})
	if len(trending) == 0 {
		return nil
	}
	if len(trending) > digestSize {
		trending = trending[:digestSize]
	}

	msg := tgbotapi.NewMessage(d.channelID, formatDigest(trending))
	msg.ParseMode = tgbotapi.ModeMarkdownV2

	if _, err := d.bot.Send(msg); err != nil {
		return err
	}

	log.Printf("[INFO] digest with %d articles posted", len(trending))

	return nil
}

func formatDigest(articles []model.Article) string {
	lines := lo.Map(articles, func(a model.Article, i int) string {
		return fmt.Sprintf(
			"%d\\. *%s*\n%s",
			i+1,
			markup.EscapeForMarkdown(a.Title),
			markup.EscapeForMarkdown(fmt.Sprintf("/article %s", a.ID)),
		)
	})

	return "📰 *Популярное сегодня*\n\n" + strings.Join(lines, "\n\n")
}
