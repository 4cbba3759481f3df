package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/cristalhq/aconfig"
	"github.com/gin-gonic/gin"

	"github.com/kovalyov-valentin/kids-news-feed/internal/httpserver"
	"github.com/kovalyov-valentin/kids-news-feed/internal/mockapi"
)

// Локальная замена API новостей с тестовым каталогом
func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var cfg struct {
		Addr string `env:"MOCK_API_ADDR" default:":8081"`
	}
	// Боту нужен полный конфиг, моку хватает адреса из окружения
	if err := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix:        "KNF",
		SkipFiles:        true,
		SkipFlags:        true,
		AllowUnknownEnvs: true,
	}).Load(); err != nil {
		log.Printf("[ERROR] failed to load config: %v", err)
		return
	}

	gin.SetMode(gin.ReleaseMode)
	router := mockapi.NewRouter(mockapi.SampleCatalog())

	if err := httpserver.Serve(ctx, cfg.Addr, router); err != nil {
		if !errors.Is(err, context.Canceled) {
			log.Printf("[ERROR] failed to start mock api: %v", err)
			return
		}

		log.Println("[INFO] mock api stopped")
	}
}
