// Package feed связывает методы клиента API с ресурсами, пейджерами и поиском.
package feed

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kovalyov-valentin/kids-news-feed/internal/api"
	"github.com/kovalyov-valentin/kids-news-feed/internal/model"
	"github.com/kovalyov-valentin/kids-news-feed/internal/pager"
	"github.com/kovalyov-valentin/kids-news-feed/internal/resource"
	"github.com/kovalyov-valentin/kids-news-feed/internal/search"
)

type Client interface {
	Articles(ctx context.Context, q api.ArticlesQuery) (model.Page[model.Article], error)
	Article(ctx context.Context, id model.ID) (model.Article, error)
	ArticleQuiz(ctx context.Context, id model.ID) (model.Quiz, error)
	Videos(ctx context.Context, q api.VideosQuery) (model.Page[model.Video], error)
	Video(ctx context.Context, id model.ID) (model.Video, error)
	Search(ctx context.Context, q api.SearchQuery) (model.SearchResult, error)
	Bookmarks(ctx context.Context) ([]model.Article, error)
	Health(ctx context.Context) (model.Health, error)
}

func Article(
	ctx context.Context,
	c Client,
	id model.ID,
	opts ...resource.Option[model.ID, model.Article],
) *resource.Resource[model.ID, model.Article] {
	return resource.New(ctx, c.Article, id, opts...)
}

func ArticleQuiz(
	ctx context.Context,
	c Client,
	id model.ID,
	opts ...resource.Option[model.ID, model.Quiz],
) *resource.Resource[model.ID, model.Quiz] {
	return resource.New(ctx, c.ArticleQuiz, id, opts...)
}

func Bookmarks(ctx context.Context, c Client) *resource.Resource[struct{}, []model.Article] {
	// Зависимостей нет, ключ всегда один
	return resource.New(ctx, func(ctx context.Context, _ struct{}) ([]model.Article, error) {
		return c.Bookmarks(ctx)
	}, struct{}{})
}

func Health(ctx context.Context, c Client) *resource.Resource[struct{}, model.Health] {
	return resource.New(ctx, func(ctx context.Context, _ struct{}) (model.Health, error) {
		return c.Health(ctx)
	}, struct{}{})
}

// Пейджер по статьям
func Articles(ctx context.Context, c Client, pageSize int, opts ...pager.Option[model.Article]) *pager.Pager[model.Article] {
	fetch := func(ctx context.Context, q pager.Query) (model.Page[model.Article], error) {
		return c.Articles(ctx, api.ArticlesQuery{
			Category: q.Category,
			Limit:    q.Limit,
			Offset:   q.Offset,
		})
	}

	return pager.New(ctx, fetch, append([]pager.Option[model.Article]{pager.WithPageSize[model.Article](pageSize)}, opts...)...)
}

// Пейджер по видео. Пустой статус - все видео
func Videos(
	ctx context.Context,
	c Client,
	status model.VideoStatus,
	pageSize int,
	opts ...pager.Option[model.Video],
) *pager.Pager[model.Video] {
	fetch := func(ctx context.Context, q pager.Query) (model.Page[model.Video], error) {
		return c.Videos(ctx, api.VideosQuery{
			Category: q.Category,
			Status:   status,
			Limit:    q.Limit,
			Offset:   q.Offset,
		})
	}

	return pager.New(ctx, fetch, append([]pager.Option[model.Video]{pager.WithPageSize[model.Video](pageSize)}, opts...)...)
}

func Search(ctx context.Context, c Client, delay time.Duration, limit int, opts ...search.Option) *search.Searcher {
	return search.New(ctx, c.Search, append([]search.Option{search.WithDelay(delay), search.WithLimit(limit)}, opts...)...)
}

// Главная: первые статьи и готовые видео
type Home struct {
	Articles      []model.Article
	TotalArticles int
	Videos        []model.Video
}

// Загружает главную. Статьи и видео запрашиваются параллельно,
// ошибка любого из запросов отменяет второй
func LoadHome(ctx context.Context, c Client, n int) (Home, error) {
	var (
		home Home
		g, gctx = errgroup.WithContext(ctx)
	)

	g.Go(func() error {
		page, err := c.Articles(gctx, api.ArticlesQuery{Limit: n})
		if err != nil {
			return err
		}
		home.Articles = page.Items
		home.TotalArticles = page.Total
		return nil
	})

	g.Go(func() error {
		page, err := c.Videos(gctx, api.VideosQuery{Status: model.VideoStatusReady, Limit: n})
		if err != nil {
			return err
		}
		home.Videos = page.Items
		return nil
	})

	if err := g.Wait(); err != nil {
		return Home{}, err
	}

	return home, nil
}
