package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kovalyov-valentin/kids-news-feed/internal/mockapi"
	"github.com/kovalyov-valentin/kids-news-feed/internal/model"
)

func setupTestClient(t *testing.T) (*Client, *mockapi.Catalog) {
	t.Helper()

	gin.SetMode(gin.TestMode)
	catalog := mockapi.SampleCatalog()
	srv := httptest.NewServer(mockapi.NewRouter(catalog))
	t.Cleanup(srv.Close)

	c, err := New(srv.URL, WithHTTPClient(srv.Client()), WithRateLimit(0))
	require.NoError(t, err)

	return c, catalog
}

func rawServer(t *testing.T, status int, body string) *Client {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	c, err := New(srv.URL, WithRateLimit(0))
	require.NoError(t, err)

	return c
}

func TestNew(t *testing.T) {
	t.Run("rejects relative url", func(t *testing.T) {
		_, err := New("/api")
		require.Error(t, err)
	})

	t.Run("accepts absolute url", func(t *testing.T) {
		c, err := New("https://news.example.com")
		require.NoError(t, err)
		assert.Equal(t, "news.example.com", c.baseURL.Host)
	})
}

func TestWithTimeout_CopiesInjectedClient(t *testing.T) {
	hc := &http.Client{Timeout: time.Minute}

	c, err := New("https://news.example.com", WithHTTPClient(hc), WithTimeout(time.Second))
	require.NoError(t, err)

	assert.Equal(t, time.Second, c.http.Timeout)
	assert.Equal(t, time.Minute, hc.Timeout, "injected client is left as is")
	assert.NotSame(t, hc, c.http)

	c, err = New("https://news.example.com", WithHTTPClient(hc))
	require.NoError(t, err)
	assert.Same(t, hc, c.http)
}

func TestClient_Articles(t *testing.T) {
	c, _ := setupTestClient(t)
	ctx := context.Background()

	t.Run("first page of a category", func(t *testing.T) {
		page, err := c.Articles(ctx, ArticlesQuery{Category: "science", Limit: 3})

		require.NoError(t, err)
		assert.Len(t, page.Items, 3)
		assert.Equal(t, 5, page.Total)
		for _, a := range page.Items {
			assert.Equal(t, "science", a.Category)
		}
	})

	t.Run("offset past the end", func(t *testing.T) {
		page, err := c.Articles(ctx, ArticlesQuery{Limit: 10, Offset: 100})

		require.NoError(t, err)
		assert.Empty(t, page.Items)
		assert.Equal(t, 25, page.Total)
	})
}

func TestClient_ArticleAndQuiz(t *testing.T) {
	c, _ := setupTestClient(t)
	ctx := context.Background()

	article, err := c.Article(ctx, "3")
	require.NoError(t, err)
	assert.Equal(t, model.ID("3"), article.ID)

	quiz, err := c.ArticleQuiz(ctx, "3")
	require.NoError(t, err)
	assert.Equal(t, model.ID("3"), quiz.ArticleID)
	assert.NotEmpty(t, quiz.Questions)

	_, err = c.Article(ctx, "missing")
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, KindStatus, apiErr.Kind)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
}

func TestClient_Videos(t *testing.T) {
	c, _ := setupTestClient(t)
	ctx := context.Background()

	page, err := c.Videos(ctx, VideosQuery{Status: model.VideoStatusReady, Limit: 10})
	require.NoError(t, err)
	require.NotEmpty(t, page.Items)
	for _, v := range page.Items {
		assert.Equal(t, model.VideoStatusReady, v.Status)
	}

	video, err := c.Video(ctx, "v8")
	require.NoError(t, err)
	assert.Equal(t, model.VideoStatusProcessing, video.Status)
}

func TestClient_SearchBookmarksHealth(t *testing.T) {
	c, catalog := setupTestClient(t)
	ctx := context.Background()

	res, err := c.Search(ctx, SearchQuery{Text: "story 1", Type: "article", Limit: 20})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Articles)
	assert.Empty(t, res.Videos)

	catalog.SetBookmarks("1", "2")
	bookmarks, err := c.Bookmarks(ctx)
	require.NoError(t, err)
	assert.Len(t, bookmarks, 2)

	health, err := c.Health(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ok", health.Status)
}

func TestClient_ErrorKinds(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		status int
		body   string
		kind   Kind
	}{
		{name: "server error", status: http.StatusInternalServerError, body: `{}`, kind: KindStatus},
		{name: "broken json", status: http.StatusOK, body: `{"success": tru`, kind: KindDecode},
		{name: "success false", status: http.StatusOK, body: `{"success": false, "error": "boom"}`, kind: KindPayload},
		{name: "missing array", status: http.StatusOK, body: `{"success": true}`, kind: KindPayload},
		{name: "article without title", status: http.StatusOK, body: `{"success": true, "articles": [{"id": 1}]}`, kind: KindPayload},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := rawServer(t, tt.status, tt.body)

			_, err := c.Articles(ctx, ArticlesQuery{Limit: 10})

			var apiErr *Error
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.kind, apiErr.Kind)
			assert.NotEmpty(t, err.Error())
		})
	}

	t.Run("payload error keeps server message", func(t *testing.T) {
		c := rawServer(t, http.StatusOK, `{"success": false, "error": "boom"}`)

		_, err := c.Articles(ctx, ArticlesQuery{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "boom")
	})

	t.Run("network error", func(t *testing.T) {
		c, err := New("http://127.0.0.1:1", WithRateLimit(0), WithTimeout(time.Second))
		require.NoError(t, err)

		_, err = c.Health(ctx)

		var apiErr *Error
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, KindNetwork, apiErr.Kind)
	})

	t.Run("canceled context", func(t *testing.T) {
		c, _ := setupTestClient(t)
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		_, err := c.Articles(cctx, ArticlesQuery{})
		require.Error(t, err)
		assert.True(t, errors.Is(err, context.Canceled))
	})
}

func TestClient_SendsQueryParams(t *testing.T) {
	var got *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		_, _ = w.Write([]byte(`{"success": true, "articles": [], "videos": [], "total": 0}`))
	}))
	t.Cleanup(srv.Close)

	c, err := New(srv.URL, WithRateLimit(0))
	require.NoError(t, err)

	_, err = c.Search(context.Background(), SearchQuery{Text: "pandas", Category: "animals", Limit: 5})
	require.NoError(t, err)

	require.NotNil(t, got)
	assert.Equal(t, "/api/search", got.URL.Path)
	assert.Equal(t, "pandas", got.URL.Query().Get("q"))
	assert.Equal(t, "animals", got.URL.Query().Get("category"))
	assert.Equal(t, "5", got.URL.Query().Get("limit"))
	assert.False(t, got.URL.Query().Has("type"))
	assert.NotEmpty(t, got.Header.Get("X-Request-ID"))
}
