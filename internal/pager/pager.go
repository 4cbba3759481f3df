// Package pager накапливает страницы списка (статьи, видео) с курсором по смещению.
package pager

import (
	"context"
	"sync"

	"github.com/kovalyov-valentin/kids-news-feed/internal/model"
)

const DefaultPageSize = 10

type Query struct {
	Category string
	Limit    int
	Offset   int
}

type PageFunc[T any] func(ctx context.Context, q Query) (model.Page[T], error)

type State[T any] struct {
	Items    []T
	Category string
	Offset   int
	// Эвристика: последняя страница пришла полной, значит, возможно, есть еще
	HasMore bool
	Total   int
	Loading bool
	Error   string
}

type Pager[T any] struct {
	fetch    PageFunc[T]
	pageSize int
	onChange func(State[T])

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	category string
	items    []T
	offset   int
	hasMore  bool
	total    int
	loading  bool
	err      string
	seq      uint64
}

type Option[T any] func(p *Pager[T])

func WithPageSize[T any](size int) Option[T] {
	return func(p *Pager[T]) {
		if size > 0 {
			p.pageSize = size
		}
	}
}

func WithCategory[T any](category string) Option[T] {
	return func(p *Pager[T]) {
		p.category = category
	}
}

func WithOnChange[T any](fn func(State[T])) Option[T] {
	return func(p *Pager[T]) {
		p.onChange = fn
	}
}

func New[T any](ctx context.Context, fetch PageFunc[T], opts ...Option[T]) *Pager[T] {
	ctx, cancel := context.WithCancel(ctx)

	p := &Pager[T]{
		fetch:    fetch,
		pageSize: DefaultPageSize,
		ctx:      ctx,
		cancel:   cancel,
		hasMore:  true,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Перезапрос. reset=true: с нулевого смещения, список заменяется. reset=false: с текущего смещения, результат дописывается
func (p *Pager[T]) Refetch(ctx context.Context, reset bool) error {
	return p.load(ctx, reset, false)
}

// Следующая страница. Если больше нет или уже грузим - ничего не делаем
func (p *Pager[T]) LoadMore(ctx context.Context) error {
	return p.load(ctx, false, true)
}

// Смена категории сбрасывает список и грузит первую страницу заново
func (p *Pager[T]) SetCategory(ctx context.Context, category string) error {
	p.mu.Lock()
	if p.category == category {
		p.mu.Unlock()
		return nil
	}
	p.category = category
	p.mu.Unlock()

	return p.Refetch(ctx, true)
}

func (p *Pager[T]) State() State[T] {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.snapshot()
}

func (p *Pager[T]) Close() {
	p.mu.Lock()
	p.seq++
	p.mu.Unlock()

	p.cancel()
}

// guarded - режим LoadMore: пропускаем, если страниц больше нет или запрос уже идет
func (p *Pager[T]) load(ctx context.Context, reset, guarded bool) error {
	if err := p.ctx.Err(); err != nil {
		return err
	}

	p.mu.Lock()
	if guarded && (!p.hasMore || p.loading) {
		p.mu.Unlock()
		return nil
	}

	p.seq++
	seq := p.seq
	q := Query{
		Category: p.category,
		Limit:    p.pageSize,
		Offset:   p.offset,
	}
	if reset {
		q.Offset = 0
	}
	p.loading = true
	p.err = ""
	snapshot := p.snapshot()
	p.mu.Unlock()

	p.notify(snapshot)

	reqCtx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(p.ctx, cancel)
	page, err := p.fetch(reqCtx, q)
	stop()
	cancel()

	p.mu.Lock()
	if seq != p.seq {
		// Результат устарел: после нас стартовал другой запрос или пейджер закрыли
		p.mu.Unlock()
		return err
	}

	p.loading = false
	if err != nil {
		// Список, смещение и hasMore остаются как были
		p.err = err.Error()
	} else {
		if reset {
			p.items = append([]T(nil), page.Items...)
		} else {
			p.items = append(p.items, page.Items...)
		}
		p.offset = q.Offset + p.pageSize
		p.hasMore = len(page.Items) == p.pageSize
		p.total = page.Total
	}
	snapshot = p.snapshot()
	p.mu.Unlock()

	p.notify(snapshot)

	return err
}

// Вызывать под мьютексом
func (p *Pager[T]) snapshot() State[T] {
	return State[T]{
		Items:    append([]T(nil), p.items...),
		Category: p.category,
		Offset:   p.offset,
		HasMore:  p.hasMore,
		Total:    p.total,
		Loading:  p.loading,
		Error:    p.err,
	}
}

func (p *Pager[T]) notify(s State[T]) {
	if p.onChange != nil {
		p.onChange(s)
	}
}
