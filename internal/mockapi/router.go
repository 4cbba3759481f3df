package mockapi

import (
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/kovalyov-valentin/kids-news-feed/internal/model"
)

const defaultLimit = 10

// Каталог, который раздает мок API. Все поля можно менять на лету (под мьютексом)
type Catalog struct {
	mu        sync.RWMutex
	articles  []model.Article
	videos    []model.Video
	quizzes   map[model.ID]model.Quiz
	bookmarks []model.ID

	// Счетчик запросов по пути, нужен в тестах чтобы убедиться что запроса не было
	hits map[string]int
}

func NewCatalog(articles []model.Article, videos []model.Video, quizzes map[model.ID]model.Quiz) *Catalog {
	if quizzes == nil {
		quizzes = make(map[model.ID]model.Quiz)
	}

	return &Catalog{
		articles: articles,
		videos:   videos,
		quizzes:  quizzes,
		hits:     make(map[string]int),
	}
}

func (c *Catalog) SetBookmarks(ids ...model.ID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.bookmarks = ids
}

func (c *Catalog) SetVideoStatus(id model.ID, status model.VideoStatus) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.videos {
		if c.videos[i].ID == id {
			c.videos[i].Status = status
		}
	}
}

func (c *Catalog) Hits(path string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.hits[path]
}

func NewRouter(c *Catalog) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), c.countHits)

	router.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	{
		api.GET("/articles", c.listArticles)
		api.GET("/articles/:id", c.getArticle)
		api.GET("/articles/:id/quiz", c.getQuiz)
		api.GET("/videos", c.listVideos)
		api.GET("/videos/:id", c.getVideo)
		api.GET("/search", c.search)
		api.GET("/bookmarks", c.listBookmarks)
	}

	return router
}

func (c *Catalog) countHits(ctx *gin.Context) {
	c.mu.Lock()
	c.hits[ctx.Request.URL.Path]++
	c.mu.Unlock()

	ctx.Next()
}

func (c *Catalog) listArticles(ctx *gin.Context) {
	category := ctx.Query("category")
	limit, offset := pagination(ctx)

	c.mu.RLock()
	filtered := lo.Filter(c.articles, func(a model.Article, _ int) bool {
		return category == "" || strings.EqualFold(a.Category, category)
	})
	c.mu.RUnlock()

	ctx.JSON(http.StatusOK, gin.H{
		"success":  true,
		"articles": window(filtered, offset, limit),
		"total":    len(filtered),
	})
}

func (c *Catalog) getArticle(ctx *gin.Context) {
	c.mu.RLock()
	article, ok := lo.Find(c.articles, func(a model.Article) bool {
		return a.ID.String() == ctx.Param("id")
	})
	c.mu.RUnlock()

	if !ok {
		notFound(ctx, "article not found")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "article": article})
}

func (c *Catalog) getQuiz(ctx *gin.Context) {
	c.mu.RLock()
	quiz, ok := c.quizzes[model.ID(ctx.Param("id"))]
	c.mu.RUnlock()

	if !ok {
		notFound(ctx, "quiz not found")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "quiz": quiz})
}

func (c *Catalog) listVideos(ctx *gin.Context) {
	var (
		category = ctx.Query("category")
		status   = ctx.Query("status")
	)
	limit, offset := pagination(ctx)

	c.mu.RLock()
	// У видео нет своей категории, берем категорию статьи, к которой оно привязано
	categories := lo.Associate(c.articles, func(a model.Article) (model.ID, string) {
		return a.ID, a.Category
	})
	filtered := lo.Filter(c.videos, func(v model.Video, _ int) bool {
		if status != "" && v.Status.String() != status {
			return false
		}
		return category == "" || strings.EqualFold(categories[v.ArticleID], category)
	})
	c.mu.RUnlock()

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"videos":  window(filtered, offset, limit),
		"total":   len(filtered),
	})
}

func (c *Catalog) getVideo(ctx *gin.Context) {
	c.mu.RLock()
	video, ok := lo.Find(c.videos, func(v model.Video) bool {
		return v.ID.String() == ctx.Param("id")
	})
	c.mu.RUnlock()

	if !ok {
		notFound(ctx, "video not found")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "video": video})
}

func (c *Catalog) search(ctx *gin.Context) {
	var (
		text     = strings.ToLower(strings.TrimSpace(ctx.Query("q")))
		category = ctx.Query("category")
		kind     = ctx.Query("type")
	)
	limit, _ := pagination(ctx)

	if text == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "query is required"})
		return
	}

	articles := []model.Article{}
	videos := []model.Video{}

	c.mu.RLock()
	if kind == "" || kind == "article" {
		articles = lo.Filter(c.articles, func(a model.Article, _ int) bool {
			if category != "" && !strings.EqualFold(a.Category, category) {
				return false
			}
			return containsFold(text, a.Title, a.Headline, a.Summary)
		})
	}
	if kind == "" || kind == "video" {
		videos = lo.Filter(c.videos, func(v model.Video, _ int) bool {
			return containsFold(text, v.Title, v.Description)
		})
	}
	c.mu.RUnlock()

	total := len(articles) + len(videos)

	ctx.JSON(http.StatusOK, gin.H{
		"success":  true,
		"articles": window(articles, 0, limit),
		"videos":   window(videos, 0, limit),
		"total":    total,
	})
}

func (c *Catalog) listBookmarks(ctx *gin.Context) {
	c.mu.RLock()
	articles := lo.Filter(c.articles, func(a model.Article, _ int) bool {
		return lo.Contains(c.bookmarks, a.ID)
	})
	c.mu.RUnlock()

	ctx.JSON(http.StatusOK, gin.H{"success": true, "articles": articles})
}

func pagination(ctx *gin.Context) (limit, offset int) {
	limit, err := strconv.Atoi(ctx.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
	if err != nil || limit < 1 || limit > 100 {
		limit = defaultLimit
	}

	offset, err = strconv.Atoi(ctx.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	return limit, offset
}

// Кусок слайса [offset, offset+limit), всегда не nil, чтобы в JSON был массив
func window[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return []T{}
	}

	end := offset + limit
	if end > len(items) {
		end = len(items)
	}

	return append([]T{}, items[offset:end]...)
}

func containsFold(needle string, fields ...string) bool {
	return lo.ContainsBy(fields, func(f string) bool {
		return strings.Contains(strings.ToLower(f), needle)
	})
}

func notFound(ctx *gin.Context, msg string) {
	ctx.JSON(http.StatusNotFound, gin.H{"success": false, "error": msg})
}
