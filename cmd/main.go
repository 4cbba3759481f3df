package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/kovalyov-valentin/kids-news-feed/internal/api"
	"github.com/kovalyov-valentin/kids-news-feed/internal/bookmarks"
	"github.com/kovalyov-valentin/kids-news-feed/internal/bot"
	"github.com/kovalyov-valentin/kids-news-feed/internal/bot/middleware"
	"github.com/kovalyov-valentin/kids-news-feed/internal/botkit"
	"github.com/kovalyov-valentin/kids-news-feed/internal/config"
	"github.com/kovalyov-valentin/kids-news-feed/internal/httpserver"
	"github.com/kovalyov-valentin/kids-news-feed/internal/notifier"
	"github.com/kovalyov-valentin/kids-news-feed/internal/storage"
	"github.com/kovalyov-valentin/kids-news-feed/internal/summary"
	"github.com/kovalyov-valentin/kids-news-feed/internal/watcher"
)

func main() {
	cfg := config.Get()

	botAPI, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		log.Printf("[ERROR] failed to create bot: %v", err)
		return
	}

	db, err := sqlx.Connect("postgres", cfg.DatabaseDSN)
	if err != nil {
		log.Printf("[ERROR] failed to connect to database: %v", err)
		return
	}
	defer db.Close()

	client, err := api.New(
		cfg.APIBaseURL,
		api.WithTimeout(cfg.APITimeout),
		api.WithRateLimit(cfg.APIRateLimit),
	)
	if err != nil {
		log.Printf("[ERROR] failed to create api client: %v", err)
		return
	}

	var kv bookmarks.KV
	switch cfg.BookmarksBackend {
	case config.BookmarksBackendPostgres:
		kv = storage.NewKVPostgresStorage(db)
	case config.BookmarksBackendRedis:
		redisKV, err := storage.NewKVRedisStorage(cfg.RedisURL)
		if err != nil {
			log.Printf("[ERROR] failed to create redis storage: %v", err)
			return
		}
		defer redisKV.Close()
		kv = redisKV
	default:
		log.Printf("[ERROR] unknown bookmarks backend %q", cfg.BookmarksBackend)
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var (
		sessions = bot.NewSessions(ctx, client, kv, botAPI, bot.SessionConfig{
			PageSize:    cfg.PageSize,
			SearchDelay: cfg.SearchDebounce,
			SearchLimit: cfg.SearchLimit,
		})
		videoWatcher   = watcher.New(client, cfg.VideoPollInterval)
		breakingPoster = notifier.New(
			client,
			storage.NewPostedPostgresStorage(db),
			summary.NewOpenAISummarizer(cfg.OpenAIKey, cfg.OpenAIPrompt),
			botAPI,
			cfg.NotificationInterval,
			cfg.TelegramChannelID,
		)
		digest = notifier.NewDigest(client, botAPI, cfg.DigestSchedule, cfg.TelegramChannelID)
	)
	defer sessions.Close()

	newsBot := botkit.New(botAPI)
	newsBot.RegisterCmdView("start", bot.ViewCmdStart(sessions))
	newsBot.RegisterCmdView("latest", bot.ViewCmdLatest(sessions))
	newsBot.RegisterCmdView("more", bot.ViewCmdMore(sessions))
	newsBot.RegisterCmdView("article", bot.ViewCmdArticle(sessions))
	newsBot.RegisterCmdView("quiz", bot.ViewCmdQuiz(sessions))
	newsBot.RegisterCmdView("answer", bot.ViewCmdAnswer(sessions))
	newsBot.RegisterCmdView("search", bot.ViewCmdSearch(sessions))
	newsBot.RegisterCmdView("bookmark", bot.ViewCmdBookmark(sessions))
	newsBot.RegisterCmdView("bookmarks", bot.ViewCmdBookmarks(sessions))
	newsBot.RegisterCmdView("videos", bot.ViewCmdVideos(sessions, cfg.PageSize))
	newsBot.RegisterCmdView("video", bot.ViewCmdVideo(sessions, videoWatcher))
	newsBot.RegisterCmdView(
		"health",
		middleware.AdminOnly(
			cfg.TelegramChannelID,
			bot.ViewCmdHealth(sessions),
		),
	)

	// Воркер срочных новостей
	go func(ctx context.Context) {
		if err := breakingPoster.Start(ctx); err != nil {
			if !errors.Is(err, context.Canceled) {
				log.Printf("[ERROR] failed to start notifier: %v", err)
				return
			}

			log.Println("[INFO] notifier stopped")
		}
	}(ctx)

	// Вытеснение сессий простаивающих чатов
	go func(ctx context.Context) {
		if err := sessions.StartJanitor(ctx, cfg.SessionSweep, cfg.SessionIdle); err != nil {
			if !errors.Is(err, context.Canceled) {
				log.Printf("[ERROR] failed to start session janitor: %v", err)
				return
			}

			log.Println("[INFO] session janitor stopped")
		}
	}(ctx)

	// Ежедневная подборка
	go func(ctx context.Context) {
		if err := digest.Start(ctx); err != nil {
			if !errors.Is(err, context.Canceled) {
				log.Printf("[ERROR] failed to start digest: %v", err)
				return
			}

			log.Println("[INFO] digest stopped")
		}
	}(ctx)

	// Метрики и проверка здоровья
	go func(ctx context.Context) {
		router := httpserver.NewMetricsRouter(func(ctx context.Context) error {
			_, err := client.Health(ctx)
			return err
		})

		if err := httpserver.Serve(ctx, cfg.MetricsAddr, router); err != nil {
			if !errors.Is(err, context.Canceled) {
				log.Printf("[ERROR] failed to start metrics server: %v", err)
				return
			}

			log.Println("[INFO] metrics server stopped")
		}
	}(ctx)

	if err := newsBot.Run(ctx); err != nil {
		if !errors.Is(err, context.Canceled) {
			log.Printf("[ERROR] failed to start bot: %v", err)
			return
		}

		log.Println("[INFO] bot stopped")
	}
}
