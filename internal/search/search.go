// Package search превращает частые изменения строки поиска в один запрос на паузу в наборе.
package search

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/kovalyov-valentin/kids-news-feed/internal/api"
	"github.com/kovalyov-valentin/kids-news-feed/internal/model"
)

const DefaultDelay = 500 * time.Millisecond

type Func func(ctx context.Context, q api.SearchQuery) (model.SearchResult, error)

type State struct {
	Query   api.SearchQuery
	Result  model.SearchResult
	Loading bool
	Error   string
}

type Searcher struct {
	search   Func
	delay    time.Duration
	limit    int
	onChange func(State)

	ctx    context.Context
	cancel context.CancelFunc

	mu    sync.Mutex
	state State
	timer *time.Timer
	// Поколение таймера: сработавший, но уже перезапущенный таймер ничего не отправляет
	gen uint64
	// Номер последнего отправленного запроса, применяем только его ответ
	seq      uint64
	inflight context.CancelFunc
}

type Option func(s *Searcher)

func WithDelay(delay time.Duration) Option {
	return func(s *Searcher) {
		if delay > 0 {
			s.delay = delay
		}
	}
}

// Лимит результатов, если в самом запросе он не задан
func WithLimit(limit int) Option {
	return func(s *Searcher) {
		s.limit = limit
	}
}

// Наблюдатель. Вызывается в том числе из горутины таймера
func WithOnChange(fn func(State)) Option {
	return func(s *Searcher) {
		s.onChange = fn
	}
}

func New(ctx context.Context, search Func, opts ...Option) *Searcher {
	ctx, cancel := context.WithCancel(ctx)

	s := &Searcher{
		search: search,
		delay:  DefaultDelay,
		ctx:    ctx,
		cancel: cancel,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Новое значение строки поиска. Перезапускает таймер, запрос уйдет только если за delay
// не придет следующее значение. Пустая строка сразу очищает результаты без запроса
func (s *Searcher) SetQuery(q api.SearchQuery) {
	if s.ctx.Err() != nil {
		return
	}

	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.gen++
	gen := s.gen

	if strings.TrimSpace(q.Text) == "" {
		// Ответ на уже отправленный запрос тоже больше не нужен
		s.seq++
		if s.inflight != nil {
			s.inflight()
			s.inflight = nil
		}
		s.state = State{Query: q}
		snapshot := s.state
		s.mu.Unlock()

		s.notify(snapshot)
		return
	}

	// Ответ на предыдущую строку уже не нужен, иначе он окажется под новой строкой
	s.seq++
	if s.inflight != nil {
		s.inflight()
		s.inflight = nil
	}
	s.state.Loading = false
	s.state.Query = q
	s.timer = time.AfterFunc(s.delay, func() {
		s.dispatch(gen, q)
	})
	s.mu.Unlock()
}

func (s *Searcher) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state
}

func (s *Searcher) Close() {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.gen++
	s.seq++
	s.inflight = nil
	s.mu.Unlock()

	s.cancel()
}

func (s *Searcher) dispatch(gen uint64, q api.SearchQuery) {
	if q.Limit == 0 {
		q.Limit = s.limit
	}

	ctx, cancel := context.WithCancel(s.ctx)
	defer cancel()

	s.mu.Lock()
	if gen != s.gen || s.ctx.Err() != nil {
		s.mu.Unlock()
		return
	}
	// Предыдущий запрос в полете больше не интересен
	if s.inflight != nil {
		s.inflight()
	}
	s.timer = nil
	s.seq++
	seq := s.seq
	s.inflight = cancel
	s.state.Loading = true
	s.state.Error = ""
	snapshot := s.state
	s.mu.Unlock()

	s.notify(snapshot)

	result, err := s.search(ctx, q)

	s.mu.Lock()
	if seq != s.seq {
		s.mu.Unlock()
		return
	}

	s.inflight = nil
	s.state.Query = q
	s.state.Loading = false
	if err != nil {
		s.state.Error = err.Error()
	} else {
		s.state.Result = result
	}
	snapshot = s.state
	s.mu.Unlock()

	s.notify(snapshot)
}

func (s *Searcher) notify(st State) {
	if s.onChange != nil {
		s.onChange(st)
	}
}
