package watcher

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/samber/lo"

	"github.com/kovalyov-valentin/kids-news-feed/internal/model"
)

type VideoProvider interface {
	Video(ctx context.Context, id model.ID) (model.Video, error)
}

// Статусом видео управляет сервер, клиент только перезапрашивает его,
// пока видео не станет готовым или не упадет
type Watcher struct {
	videos VideoProvider
	// Как часто перезапрашиваем видео
	pollInterval time.Duration
}

func New(videos VideoProvider, pollInterval time.Duration) *Watcher {
	return &Watcher{
		videos:       videos,
		pollInterval: pollInterval,
	}
}

// Опрашивает видео до финального статуса. Первый запрос уходит сразу.
// Ошибки отдельных запросов не прерывают опрос
func (w *Watcher) Watch(ctx context.Context, id model.ID, onFinal func(model.Video)) error {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	if done := w.poll(ctx, id, onFinal); done {
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if done := w.poll(ctx, id, onFinal); done {
				return nil
			}
		}
	}
}

// Опрос нескольких видео параллельно, чтобы медленное видео не задерживало остальные.
// Возвращается когда все видео дошли до финального статуса или отменен контекст
func (w *Watcher) WatchAll(ctx context.Context, ids []model.ID, onFinal func(model.Video)) error {
	var wg sync.WaitGroup

	for _, id := range lo.Uniq(ids) {
		wg.Add(1)

		go func(id model.ID) {
			defer wg.Done()

			if err := w.Watch(ctx, id, onFinal); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("[ERROR] Watching video %s: %v", id, err)
			}
		}(id)
	}

	wg.Wait()

	return ctx.Err()
}

func (w *Watcher) poll(ctx context.Context, id model.ID, onFinal func(model.Video)) bool {
	video, err := w.videos.Video(ctx, id)
	if err != nil {
		if ctx.Err() == nil {
			log.Printf("[ERROR] Fetching video %s: %v", id, err)
		}
		return false
	}

	if !video.Status.IsFinal() {
		return false
	}

	if onFinal != nil {
		onFinal(video)
	}

	return true
}
