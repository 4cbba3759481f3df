package search

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kovalyov-valentin/kids-news-feed/internal/api"
	"github.com/kovalyov-valentin/kids-news-feed/internal/model"
)

type call struct {
	query api.SearchQuery
	at    time.Time
}

type fakeSearch struct {
	mu    sync.Mutex
	calls []call
	// Задержка ответа по тексту запроса
	delays map[string]time.Duration
	fail   map[string]bool
}

func (f *fakeSearch) search(ctx context.Context, q api.SearchQuery) (model.SearchResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, call{query: q, at: time.Now()})
	delay := f.delays[q.Text]
	fail := f.fail[q.Text]
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			// Имитируем клиент, который не уважает отмену: ответ все равно приходит
		}
	}

	if fail {
		return model.SearchResult{}, errors.New("search failed")
	}

	return model.SearchResult{
		Articles: []model.Article{{ID: "1", Title: q.Text}},
		Total:    1,
	}, nil
}

func (f *fakeSearch) snapshot() []call {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]call{}, f.calls...)
}

func TestSearcher_Debounce(t *testing.T) {
	f := &fakeSearch{}
	s := New(context.Background(), f.search)
	defer s.Close()

	start := time.Now()
	s.SetQuery(api.SearchQuery{Text: "a"})
	time.Sleep(100 * time.Millisecond)
	s.SetQuery(api.SearchQuery{Text: "ab"})
	time.Sleep(100 * time.Millisecond)
	s.SetQuery(api.SearchQuery{Text: "abc"})

	require.Eventually(t, func() bool { return len(f.snapshot()) == 1 }, 2*time.Second, 10*time.Millisecond)
	// Дадим шанс лишним вызовам проявиться
	time.Sleep(200 * time.Millisecond)

	calls := f.snapshot()
	require.Len(t, calls, 1)
	assert.Equal(t, "abc", calls[0].query.Text)
	assert.GreaterOrEqual(t, calls[0].at.Sub(start), 700*time.Millisecond)

	require.Eventually(t, func() bool { return !s.State().Loading }, time.Second, 10*time.Millisecond)
	assert.Equal(t, "abc", s.State().Result.Articles[0].Title)
}

func TestSearcher_EmptyQueryClearsWithoutCall(t *testing.T) {
	f := &fakeSearch{}
	s := New(context.Background(), f.search, WithDelay(20*time.Millisecond))
	defer s.Close()

	s.SetQuery(api.SearchQuery{Text: "pandas"})
	require.Eventually(t, func() bool { return s.State().Result.Total == 1 }, time.Second, 5*time.Millisecond)

	s.SetQuery(api.SearchQuery{Text: "ze"})
	s.SetQuery(api.SearchQuery{Text: "   "})

	st := s.State()
	assert.Empty(t, st.Result.Articles)
	assert.False(t, st.Loading)

	time.Sleep(80 * time.Millisecond)
	assert.Len(t, f.snapshot(), 1)
}

func TestSearcher_StaleResponseIsDropped(t *testing.T) {
	f := &fakeSearch{delays: map[string]time.Duration{"slow": 300 * time.Millisecond}}

	var (
		mu     sync.Mutex
		titles []string
	)
	s := New(context.Background(), f.search, WithDelay(10*time.Millisecond), WithOnChange(func(st State) {
		if st.Loading || len(st.Result.Articles) == 0 {
			return
		}
		mu.Lock()
		titles = append(titles, st.Result.Articles[0].Title)
		mu.Unlock()
	}))
	defer s.Close()

	s.SetQuery(api.SearchQuery{Text: "slow"})
	require.Eventually(t, func() bool { return len(f.snapshot()) == 1 }, time.Second, 5*time.Millisecond)

	s.SetQuery(api.SearchQuery{Text: "fast"})
	require.Eventually(t, func() bool { return len(f.snapshot()) == 2 }, time.Second, 5*time.Millisecond)

	// Ждем пока медленный ответ точно придет
	time.Sleep(400 * time.Millisecond)

	assert.Equal(t, "fast", s.State().Result.Articles[0].Title)
	mu.Lock()
	assert.Equal(t, []string{"fast"}, titles)
	mu.Unlock()
}

func TestSearcher_ResultMatchesQuery(t *testing.T) {
	f := &fakeSearch{delays: map[string]time.Duration{"slow": 150 * time.Millisecond}}

	var (
		mu        sync.Mutex
		published []State
	)
	s := New(context.Background(), f.search, WithDelay(100*time.Millisecond), WithOnChange(func(st State) {
		if st.Loading {
			return
		}
		mu.Lock()
		published = append(published, st)
		mu.Unlock()
	}))
	defer s.Close()

	s.SetQuery(api.SearchQuery{Text: "slow"})
	require.Eventually(t, func() bool { return len(f.snapshot()) == 1 }, time.Second, 5*time.Millisecond)

	// Ответ на slow пришел бы раньше, чем уйдет запрос fast
	s.SetQuery(api.SearchQuery{Text: "fast"})
	require.Eventually(t, func() bool {
		st := s.State()
		return !st.Loading && len(st.Result.Articles) > 0 && st.Result.Articles[0].Title == "fast"
	}, time.Second, 5*time.Millisecond)

	time.Sleep(200 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, published)
	for _, st := range published {
		require.NotEmpty(t, st.Result.Articles)
		assert.Equal(t, st.Query.Text, st.Result.Articles[0].Title)
	}
	assert.Equal(t, "fast", published[len(published)-1].Query.Text)
}

func TestSearcher_ErrorKeepsPreviousResult(t *testing.T) {
	f := &fakeSearch{fail: map[string]bool{"bad": true}}
	s := New(context.Background(), f.search, WithDelay(10*time.Millisecond), WithLimit(15))
	defer s.Close()

	s.SetQuery(api.SearchQuery{Text: "good"})
	require.Eventually(t, func() bool { return s.State().Result.Total == 1 }, time.Second, 5*time.Millisecond)

	s.SetQuery(api.SearchQuery{Text: "bad"})
	require.Eventually(t, func() bool { return s.State().Error != "" }, time.Second, 5*time.Millisecond)

	st := s.State()
	assert.Equal(t, "search failed", st.Error)
	assert.Equal(t, "good", st.Result.Articles[0].Title)

	calls := f.snapshot()
	assert.Equal(t, 15, calls[0].query.Limit)
}

func TestSearcher_CloseCancelsPendingTimer(t *testing.T) {
	f := &fakeSearch{}
	s := New(context.Background(), f.search, WithDelay(20*time.Millisecond))

	s.SetQuery(api.SearchQuery{Text: "pandas"})
	s.Close()
	s.SetQuery(api.SearchQuery{Text: "koalas"})

	time.Sleep(80 * time.Millisecond)
	assert.Empty(t, f.snapshot())
}
