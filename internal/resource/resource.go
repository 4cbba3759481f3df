// Package resource держит состояние одного асинхронно загружаемого значения:
// данные, флаг загрузки и текст ошибки.
package resource

import (
	"context"
	"sync"
)

// Функция, которая достает значение по ключу. Ключ - это "зависимости":
// при его смене значение перезапрашивается
type Producer[K comparable, T any] func(ctx context.Context, key K) (T, error)

// Снимок состояния
type State[T any] struct {
	Data T
	// Было ли хоть одно успешное получение данных
	Loaded  bool
	Loading bool
	// Текст ошибки последнего запроса, пусто если ошибки нет
	Error string
}

type Resource[K comparable, T any] struct {
	produce  Producer[K, T]
	onChange func(State[T])

	// Время жизни ресурса, отменяется в Close
	ctx    context.Context
	cancel context.CancelFunc

	mu    sync.Mutex
	key   K
	state State[T]
	// Номер последнего запущенного запроса. Результат применяется только если номер совпадает
	seq uint64
	// Отмена последнего запроса
	inflight context.CancelFunc
}

type Option[K comparable, T any] func(r *Resource[K, T])

// Наблюдатель, вызывается после каждого изменения состояния
func WithOnChange[K comparable, T any](fn func(State[T])) Option[K, T] {
	return func(r *Resource[K, T]) {
		r.onChange = fn
	}
}

func New[K comparable, T any](ctx context.Context, produce Producer[K, T], key K, opts ...Option[K, T]) *Resource[K, T] {
	ctx, cancel := context.WithCancel(ctx)

	r := &Resource[K, T]{
		produce: produce,
		ctx:     ctx,
		cancel:  cancel,
		key:     key,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Первая загрузка в фоне, аналог монтирования экрана
func (r *Resource[K, T]) Mount() {
	go func() {
		_ = r.Refetch(r.ctx)
	}()
}

// Повторяет загрузку по текущему ключу
func (r *Resource[K, T]) Refetch(ctx context.Context) error {
	r.mu.Lock()
	key := r.key
	r.mu.Unlock()

	return r.fetch(ctx, key)
}

// Смена зависимостей. Если ключ не поменялся - ничего не делаем
func (r *Resource[K, T]) SetKey(ctx context.Context, key K) error {
	r.mu.Lock()
	if r.key == key {
		r.mu.Unlock()
		return nil
	}
	r.key = key
	r.mu.Unlock()

	return r.fetch(ctx, key)
}

func (r *Resource[K, T]) State() State[T] {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.state
}

// Аналог размонтирования: отменяем запрос в полете, поздние результаты игнорируются
func (r *Resource[K, T]) Close() {
	// Сначала инвалидируем номер, потом отменяем, иначе отмененный запрос успеет записать ошибку
	r.mu.Lock()
	r.seq++
	r.inflight = nil
	r.mu.Unlock()

	r.cancel()
}

func (r *Resource[K, T]) fetch(ctx context.Context, key K) error {
	if err := r.ctx.Err(); err != nil {
		return err
	}

	// Запрос живет пока жив и вызывающий, и сам ресурс
	reqCtx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(r.ctx, cancel)
	defer func() {
		stop()
		cancel()
	}()

	r.mu.Lock()
	if r.inflight != nil {
		r.inflight()
	}
	r.seq++
	seq := r.seq
	r.inflight = cancel
	r.state.Loading = true
	r.state.Error = ""
	snapshot := r.state
	r.mu.Unlock()

	r.notify(snapshot)

	data, err := r.produce(reqCtx, key)

	r.mu.Lock()
	if seq != r.seq {
		// Пока мы ждали, запустили более свежий запрос или ресурс закрыли
		r.mu.Unlock()
		return err
	}

	r.inflight = nil
	r.state.Loading = false
	if err != nil {
		// Данные от прошлого успешного запроса не трогаем
		r.state.Error = err.Error()
	} else {
		r.state.Data = data
		r.state.Loaded = true
	}
	snapshot = r.state
	r.mu.Unlock()

	r.notify(snapshot)

	return err
}

func (r *Resource[K, T]) notify(s State[T]) {
	if r.onChange != nil {
		r.onChange(s)
	}
}
