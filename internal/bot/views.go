package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/kovalyov-valentin/kids-news-feed/internal/api"
	"github.com/kovalyov-valentin/kids-news-feed/internal/botkit"
	"github.com/kovalyov-valentin/kids-news-feed/internal/feed"
	"github.com/kovalyov-valentin/kids-news-feed/internal/model"
	"github.com/kovalyov-valentin/kids-news-feed/internal/pager"
	"github.com/kovalyov-valentin/kids-news-feed/internal/quiz"
	"github.com/kovalyov-valentin/kids-news-feed/internal/resource"
)

const (
	homeSize     = 5
	stillLoading = "Новости еще загружаются, подождите"
)

// Сколько ждем готовности видео, прежде чем перестать следить
const videoWatchTimeout = 30 * time.Minute

type VideoWatcher interface {
	Watch(ctx context.Context, id model.ID, onFinal func(model.Video)) error
}

// Ошибку загрузки показываем в чате, подмены на заглушки нет
func replyFailure(bot botkit.API, chatID int64, what string, err error) error {
	return botkit.Reply(bot, chatID, fmt.Sprintf("Не удалось %s: %v", what, err))
}

func ViewCmdStart(sessions *Sessions) botkit.ViewFunc {
	return func(ctx context.Context, bot botkit.API, update tgbotapi.Update) error {
		chatID := update.Message.Chat.ID

		home, err := feed.LoadHome(ctx, sessions.Client(), homeSize)
		if err != nil {
			return replyFailure(bot, chatID, "загрузить новости", err)
		}

		return botkit.ReplyMarkdown(bot, chatID, formatHome(home))
	}
}

// /latest [категория] - первая страница ленты, смена категории сбрасывает ленту
func ViewCmdLatest(sessions *Sessions) botkit.ViewFunc {
	return func(ctx context.Context, bot botkit.API, update tgbotapi.Update) error {
		var (
			chatID   = update.Message.Chat.ID
			session  = sessions.Get(chatID)
			category = botkit.FirstArg(update)
			err      error
		)

		if session.Articles.State().Category != category {
			err = session.Articles.SetCategory(ctx, category)
		} else {
			err = session.Articles.Refetch(ctx, true)
		}
		if err != nil {
			return replyFailure(bot, chatID, "загрузить ленту", err)
		}

		st := session.Articles.State()
		title := "Последние новости"
		if category != "" {
			title = fmt.Sprintf("Новости: %s", category)
		}
		if st.HasMore {
			title += " (дальше: /more)"
		}

		return botkit.ReplyMarkdown(bot, chatID, formatArticleList(title, st.Items))
	}
}

func ViewCmdMore(sessions *Sessions) botkit.ViewFunc {
	return func(ctx context.Context, bot botkit.API, update tgbotapi.Update) error {
		var (
			chatID  = update.Message.Chat.ID
			session = sessions.Get(chatID)
			before  = session.Articles.State()
		)

		if before.Loading {
			return botkit.Reply(bot, chatID, stillLoading)
		}
		if !before.HasMore {
			return botkit.Reply(bot, chatID, "Больше новостей нет")
		}

		if err := session.Articles.LoadMore(ctx); err != nil {
			return replyFailure(bot, chatID, "загрузить еще", err)
		}

		st := session.Articles.State()
		if len(st.Items) <= len(before.Items) {
			// LoadMore мог пропустить запрос, потому что параллельно уже идет загрузка
			if st.Loading && st.HasMore {
				return botkit.Reply(bot, chatID, stillLoading)
			}
			return botkit.Reply(bot, chatID, "Больше новостей нет")
		}

		title := fmt.Sprintf("Еще новости (%d из %d)", len(st.Items), st.Total)
		if st.HasMore {
			title += " (дальше: /more)"
		}

		return botkit.ReplyMarkdown(bot, chatID, formatArticleList(title, st.Items[len(before.Items):]))
	}
}

func ViewCmdArticle(sessions *Sessions) botkit.ViewFunc {
	return func(ctx context.Context, bot botkit.API, update tgbotapi.Update) error {
		chatID := update.Message.Chat.ID

		id := botkit.FirstArg(update)
		if id == "" {
			return botkit.Reply(bot, chatID, "Укажите номер статьи: /article <id>")
		}

		r := feed.Article(ctx, sessions.Client(), model.ID(id),
			resource.WithOnChange[model.ID, model.Article](func(st resource.State[model.Article]) {
				if !st.Loading && st.Error != "" {
					log.Printf("[ERROR] failed to load article %s for chat %d: %s", id, chatID, st.Error)
				}
			}),
		)
		defer r.Close()

		if err := r.Refetch(ctx); err != nil {
			return replyFailure(bot, chatID, "загрузить статью", err)
		}

		article := r.State().Data
		store := sessions.Get(chatID).Bookmarks
		if err := store.EnsureLoaded(ctx); err != nil {
			log.Printf("[ERROR] failed to read bookmarks of chat %d: %v", chatID, err)
		}

		return botkit.ReplyMarkdown(bot, chatID, formatArticle(article, store.Has(article.ID)))
	}
}

func ViewCmdQuiz(sessions *Sessions) botkit.ViewFunc {
	return func(ctx context.Context, bot botkit.API, update tgbotapi.Update) error {
		chatID := update.Message.Chat.ID

		id := botkit.FirstArg(update)
		if id == "" {
			return botkit.Reply(bot, chatID, "Укажите номер статьи: /quiz <id>")
		}

		r := feed.ArticleQuiz(ctx, sessions.Client(), model.ID(id))
		defer r.Close()

		if err := r.Refetch(ctx); err != nil {
			return replyFailure(bot, chatID, "загрузить викторину", err)
		}

		q := sessions.Get(chatID).StartQuiz(r.State().Data)
		question, _ := q.Current()
		_, total := q.Score()

		return botkit.ReplyMarkdown(bot, chatID, formatQuestion(q.Position(), total, question))
	}
}

func ViewCmdAnswer(sessions *Sessions) botkit.ViewFunc {
	return func(_ context.Context, bot botkit.API, update tgbotapi.Update) error {
		chatID := update.Message.Chat.ID

		q := sessions.Get(chatID).Quiz()
		if q == nil || q.Done() {
			return botkit.Reply(bot, chatID, "Сейчас нет викторины. Начните ее командой /quiz <id>")
		}

		n, err := botkit.IntArg(update)
		if err != nil {
			return botkit.Reply(bot, chatID, "Укажите номер варианта: /answer <номер>")
		}

		outcome, err := q.AnswerIndex(n)
		if err != nil {
			if errors.Is(err, quiz.ErrUnknownOption) {
				return botkit.Reply(bot, chatID, "Такого варианта нет")
			}
			return err
		}

		text := formatOutcome(outcome)
		if next, ok := q.Current(); ok {
			_, total := q.Score()
			text += "\n\n" + formatQuestion(q.Position(), total, next)
		} else {
			text += "\n\n" + formatScore(q.Score())
		}

		return botkit.ReplyMarkdown(bot, chatID, text)
	}
}

// /search <текст>. Запрос уйдет после паузы, результат придет отдельным сообщением
func ViewCmdSearch(sessions *Sessions) botkit.ViewFunc {
	return func(_ context.Context, bot botkit.API, update tgbotapi.Update) error {
		var (
			chatID = update.Message.Chat.ID
			text   = update.Message.CommandArguments()
		)

		sessions.Get(chatID).Search.SetQuery(api.SearchQuery{Text: text})

		if strings.TrimSpace(text) == "" {
			return botkit.Reply(bot, chatID, "Поиск очищен")
		}

		return nil
	}
}

func ViewCmdBookmark(sessions *Sessions) botkit.ViewFunc {
	return func(ctx context.Context, bot botkit.API, update tgbotapi.Update) error {
		chatID := update.Message.Chat.ID

		id := botkit.FirstArg(update)
		if id == "" {
			return botkit.Reply(bot, chatID, "Укажите номер статьи: /bookmark <id>")
		}

		on, err := sessions.Get(chatID).Bookmarks.Toggle(ctx, model.ID(id))
		if err != nil {
			return replyFailure(bot, chatID, "сохранить закладку", err)
		}

		if on {
			return botkit.Reply(bot, chatID, fmt.Sprintf("⭐ Статья %s в закладках", id))
		}
		return botkit.Reply(bot, chatID, fmt.Sprintf("Статья %s убрана из закладок", id))
	}
}

// Закладки хранятся локально как номера статей, заголовки догружаем
func ViewCmdBookmarks(sessions *Sessions) botkit.ViewFunc {
	return func(ctx context.Context, bot botkit.API, update tgbotapi.Update) error {
		chatID := update.Message.Chat.ID

		store := sessions.Get(chatID).Bookmarks
		if err := store.EnsureLoaded(ctx); err != nil {
			return replyFailure(bot, chatID, "прочитать закладки", err)
		}

		ids := store.IDs()
		if len(ids) == 0 {
			return botkit.Reply(bot, chatID, "Закладок пока нет. Добавить: /bookmark <id>")
		}

		articles := make([]model.Article, len(ids))
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(4)

		for i, id := range ids {
			g.Go(func() error {
				a, err := sessions.Client().Article(gctx, id)
				if err != nil {
					// Статью могли удалить, показываем хотя бы номер
					log.Printf("[ERROR] failed to load bookmarked article %s: %v", id, err)
					a = model.Article{ID: id, Title: fmt.Sprintf("Статья %s", id)}
				}
				articles[i] = a
				return nil
			})
		}
		_ = g.Wait()

		return botkit.ReplyMarkdown(bot, chatID, formatArticleList(fmt.Sprintf("Закладки (%d)", len(ids)), articles))
	}
}

// /videos [категория] - первая страница всех видео
func ViewCmdVideos(sessions *Sessions, pageSize int) botkit.ViewFunc {
	return func(ctx context.Context, bot botkit.API, update tgbotapi.Update) error {
		chatID := update.Message.Chat.ID

		p := feed.Videos(ctx, sessions.Client(), "", pageSize, pager.WithCategory[model.Video](botkit.FirstArg(update)))
		defer p.Close()

		if err := p.Refetch(ctx, true); err != nil {
			return replyFailure(bot, chatID, "загрузить видео", err)
		}

		videos := p.State().Items
		if len(videos) == 0 {
			return botkit.Reply(bot, chatID, "Видео пока нет")
		}

		lines := lo.Map(videos, func(v model.Video, _ int) string {
			return formatVideoLine(v)
		})

		return botkit.ReplyMarkdown(bot, chatID, esc("Видео:")+"\n\n"+strings.Join(lines, "\n\n"))
	}
}

// /video <id>. Если видео еще обрабатывается, следим за ним и пишем, когда статус станет финальным
func ViewCmdVideo(sessions *Sessions, watcher VideoWatcher) botkit.ViewFunc {
	return func(ctx context.Context, bot botkit.API, update tgbotapi.Update) error {
		chatID := update.Message.Chat.ID

		id := botkit.FirstArg(update)
		if id == "" {
			return botkit.Reply(bot, chatID, "Укажите номер видео: /video <id>")
		}

		video, err := sessions.Client().Video(ctx, model.ID(id))
		if err != nil {
			return replyFailure(bot, chatID, "загрузить видео", err)
		}

		if err := botkit.ReplyMarkdown(bot, chatID, formatVideo(video)); err != nil {
			return err
		}

		if video.Status.IsFinal() {
			return nil
		}

		go func() {
			watchCtx, cancel := context.WithTimeout(sessions.Context(), videoWatchTimeout)
			defer cancel()

			err := watcher.Watch(watchCtx, video.ID, func(v model.Video) {
				if err := botkit.ReplyMarkdown(bot, chatID, esc("Видео обновилось:")+"\n\n"+formatVideo(v)); err != nil {
					log.Printf("[ERROR] failed to send video update to chat %d: %v", chatID, err)
				}
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("[INFO] stopped watching video %s: %v", video.ID, err)
			}
		}()

		return botkit.Reply(bot, chatID, "Видео еще обрабатывается, я напишу, когда оно будет готово")
	}
}

func ViewCmdHealth(sessions *Sessions) botkit.ViewFunc {
	return func(ctx context.Context, bot botkit.API, update tgbotapi.Update) error {
		chatID := update.Message.Chat.ID

		r := feed.Health(ctx, sessions.Client())
		defer r.Close()

		started := time.Now()
		if err := r.Refetch(ctx); err != nil {
			return replyFailure(bot, chatID, "проверить API", err)
		}

		return botkit.Reply(bot, chatID, fmt.Sprintf("API: %s (%s)", r.State().Data.Status, time.Since(started).Round(time.Millisecond)))
	}
}
