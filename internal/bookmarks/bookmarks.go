package bookmarks

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/samber/lo"

	"github.com/kovalyov-valentin/kids-news-feed/internal/model"
)

// Ключ, под которым лежит массив id в хранилище по умолчанию
const DefaultKey = "bookmarks"

// Хранилище ключ-значение. Реализации - в пакете storage
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// Набор закладок. Читается из хранилища один раз, пишется целиком на каждое переключение
type Store struct {
	kv  KV
	key string

	mu     sync.Mutex
	ids    []model.ID
	loaded bool
}

func New(kv KV, key string) *Store {
	if key == "" {
		key = DefaultKey
	}

	return &Store{kv: kv, key: key}
}

func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load(ctx)
}

// Читает хранилище, только если еще не читали
func (s *Store) EnsureLoaded(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loaded {
		return nil
	}
	return s.load(ctx)
}

// Переключает закладку и возвращает новое состояние: true - статья теперь в закладках
func (s *Store) Toggle(ctx context.Context, id model.ID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		if err := s.load(ctx); err != nil {
			return false, err
		}
	}

	prev := s.ids
	bookmarked := !lo.Contains(prev, id)

	if bookmarked {
		s.ids = append(append([]model.ID{}, prev...), id)
	} else {
		s.ids = lo.Without(prev, id)
	}

	if err := s.save(ctx); err != nil {
		// Не смогли записать - откатываем, чтобы память не расходилась с хранилищем
		s.ids = prev
		return !bookmarked, err
	}

	return bookmarked, nil
}

func (s *Store) Has(id model.ID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return lo.Contains(s.ids, id)
}

// id в порядке добавления
func (s *Store) IDs() []model.ID {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]model.ID{}, s.ids...)
}

// Вызывать под мьютексом
func (s *Store) load(ctx context.Context) error {
	raw, ok, err := s.kv.Get(ctx, s.key)
	if err != nil {
		return fmt.Errorf("read bookmarks: %w", err)
	}

	var ids []model.ID
	if ok && raw != "" {
		if err := json.Unmarshal([]byte(raw), &ids); err != nil {
			return fmt.Errorf("decode bookmarks: %w", err)
		}
	}

	s.ids = lo.Uniq(ids)
	s.loaded = true

	return nil
}

func (s *Store) save(ctx context.Context) error {
	ids := s.ids
	if ids == nil {
		ids = []model.ID{}
	}

	raw, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("encode bookmarks: %w", err)
	}

	if err := s.kv.Set(ctx, s.key, string(raw)); err != nil {
		return fmt.Errorf("write bookmarks: %w", err)
	}

	return nil
}
