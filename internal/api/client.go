package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/kovalyov-valentin/kids-news-feed/internal/model"
)

const (
	defaultTimeout   = 15 * time.Second
	defaultRateLimit = 5
	// Ограничение на размер тела ответа, чтобы сломанный сервер не съел всю память
	maxBodySize = 8 << 20
)

// Клиент к API новостей.
// Все методы ходят GET запросами на один базовый URL и проверяют конверт ответа
type Client struct {
	baseURL  *url.URL
	http     *http.Client
	limiter  *rate.Limiter
	validate *validator.Validate
}

type Option func(c *Client)

// Свой http клиент, например в тестах
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// Таймаут ставится на копию клиента, переданный через WithHTTPClient не меняется
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		hc := *c.http
		hc.Timeout = timeout
		c.http = &hc
	}
}

// Ограничение запросов в секунду. Ноль и меньше - без ограничений
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", baseURL)
	}

	validate := validator.New()
	// В сообщениях об ошибках показываем имена полей как в JSON
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	c := &Client{
		baseURL:  u,
		http:     &http.Client{Timeout: defaultTimeout},
		limiter:  rate.NewLimiter(rate.Limit(defaultRateLimit), 1),
		validate: validate,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

type ArticlesQuery struct {
	Category string
	Limit    int
	Offset   int
}

type VideosQuery struct {
	Category string
	Status   model.VideoStatus
	Limit    int
	Offset   int
}

type SearchQuery struct {
	Text     string
	Category string
	// article или video, пусто - все
	Type  string
	Limit int
}

func (c *Client) Articles(ctx context.Context, q ArticlesQuery) (model.Page[model.Article], error) {
	params := url.Values{}
	setString(params, "category", q.Category)
	setInt(params, "limit", q.Limit)
	setInt(params, "offset", q.Offset)

	var env articlesEnvelope
	if err := c.get(ctx, "articles", "/api/articles", params, &env); err != nil {
		return model.Page[model.Article]{}, err
	}

	return model.Page[model.Article]{Items: env.Articles, Total: env.Total}, nil
}

func (c *Client) Article(ctx context.Context, id model.ID) (model.Article, error) {
	var env articleEnvelope
	if err := c.get(ctx, "article", "/api/articles/"+url.PathEscape(id.String()), nil, &env); err != nil {
		return model.Article{}, err
	}

	return *env.Article, nil
}

func (c *Client) ArticleQuiz(ctx context.Context, id model.ID) (model.Quiz, error) {
	var env quizEnvelope
	if err := c.get(ctx, "article_quiz", "/api/articles/"+url.PathEscape(id.String())+"/quiz", nil, &env); err != nil {
		return model.Quiz{}, err
	}

	quiz := *env.Quiz
	if quiz.ArticleID == "" {
		quiz.ArticleID = id
	}

	return quiz, nil
}

func (c *Client) Videos(ctx context.Context, q VideosQuery) (model.Page[model.Video], error) {
	params := url.Values{}
	setString(params, "category", q.Category)
	setString(params, "status", q.Status.String())
	setInt(params, "limit", q.Limit)
	setInt(params, "offset", q.Offset)

	var env videosEnvelope
	if err := c.get(ctx, "videos", "/api/videos", params, &env); err != nil {
		return model.Page[model.Video]{}, err
	}

	return model.Page[model.Video]{Items: env.Videos, Total: env.Total}, nil
}

func (c *Client) Video(ctx context.Context, id model.ID) (model.Video, error) {
	var env videoEnvelope
	if err := c.get(ctx, "video", "/api/videos/"+url.PathEscape(id.String()), nil, &env); err != nil {
		return model.Video{}, err
	}

	return *env.Video, nil
}

func (c *Client) Search(ctx context.Context, q SearchQuery) (model.SearchResult, error) {
	params := url.Values{}
	params.Set("q", q.Text)
	setString(params, "category", q.Category)
	setString(params, "type", q.Type)
	setInt(params, "limit", q.Limit)

	var env searchEnvelope
	if err := c.get(ctx, "search", "/api/search", params, &env); err != nil {
		return model.SearchResult{}, err
	}

	return model.SearchResult{
		Articles: env.Articles,
		Videos:   env.Videos,
		Total:    env.Total,
	}, nil
}

// Закладки пользователя на сервере
func (c *Client) Bookmarks(ctx context.Context) ([]model.Article, error) {
	var env articlesEnvelope
	if err := c.get(ctx, "bookmarks", "/api/bookmarks", nil, &env); err != nil {
		return nil, err
	}

	return env.Articles, nil
}

func (c *Client) Health(ctx context.Context) (model.Health, error) {
	var env healthEnvelope
	if err := c.get(ctx, "health", "/health", nil, &env); err != nil {
		return model.Health{}, err
	}

	return model.Health{Status: env.Status}, nil
}

// Общий путь любого запроса: лимитер, запрос, проверка статуса, декодирование и валидация конверта
func (c *Client) get(ctx context.Context, op, path string, params url.Values, out envelope) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return &Error{Kind: KindNetwork, Op: op, Err: err}
	}

	u := c.baseURL.JoinPath(path)
	if len(params) > 0 {
		u.RawQuery = params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return &Error{Kind: KindNetwork, Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	start := time.Now()
	resp, err := c.http.Do(req)
	requestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		requestsTotal.WithLabelValues(op, "error").Inc()
		return &Error{Kind: KindNetwork, Op: op, Err: err}
	}
	defer resp.Body.Close()

	requestsTotal.WithLabelValues(op, strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Тело не нужно, но дочитываем, чтобы соединение вернулось в пул
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))
		return &Error{Kind: KindStatus, Op: op, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return &Error{Kind: KindNetwork, Op: op, Err: err}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &Error{Kind: KindDecode, Op: op, Err: err}
	}

	if err := out.failure(); err != nil {
		return &Error{Kind: KindPayload, Op: op, Err: err}
	}

	if err := c.validate.Struct(out); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			err = fmt.Errorf("field %s failed %q check", verrs[0].Namespace(), verrs[0].Tag())
		}
		return &Error{Kind: KindPayload, Op: op, Err: err}
	}

	return nil
}

func setString(params url.Values, key, value string) {
	if value != "" {
		params.Set(key, value)
	}
}

func setInt(params url.Values, key string, value int) {
	if value > 0 {
		params.Set(key, strconv.Itoa(value))
	}
}
