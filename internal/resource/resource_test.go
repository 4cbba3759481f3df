package resource

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder[T any] struct {
	mu     sync.Mutex
	states []State[T]
}

func (r *recorder[T]) record(s State[T]) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.states = append(r.states, s)
}

func (r *recorder[T]) all() []State[T] {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]State[T]{}, r.states...)
}

func TestResource_Refetch(t *testing.T) {
	t.Run("success clears loading once and sets data", func(t *testing.T) {
		rec := &recorder[string]{}
		r := New(context.Background(), func(_ context.Context, key int) (string, error) {
			return "value", nil
		}, 1, WithOnChange[int, string](rec.record))
		defer r.Close()

		require.NoError(t, r.Refetch(context.Background()))

		states := rec.all()
		require.Len(t, states, 2)
		assert.True(t, states[0].Loading)
		assert.False(t, states[1].Loading)

		st := r.State()
		assert.Equal(t, "value", st.Data)
		assert.True(t, st.Loaded)
		assert.Empty(t, st.Error)
	})

	t.Run("failure keeps previous data", func(t *testing.T) {
		var fail atomic.Bool
		r := New(context.Background(), func(_ context.Context, _ int) (string, error) {
			if fail.Load() {
				return "", errors.New("network is down")
			}
			return "first", nil
		}, 1)
		defer r.Close()

		require.NoError(t, r.Refetch(context.Background()))

		fail.Store(true)
		err := r.Refetch(context.Background())
		require.Error(t, err)

		st := r.State()
		assert.Equal(t, "first", st.Data)
		assert.Equal(t, "network is down", st.Error)
		assert.False(t, st.Loading)
	})

	t.Run("error is cleared by the next success", func(t *testing.T) {
		var calls atomic.Int32
		r := New(context.Background(), func(_ context.Context, _ int) (int, error) {
			if calls.Add(1) == 1 {
				return 0, errors.New("oops")
			}
			return 7, nil
		}, 1)
		defer r.Close()

		require.Error(t, r.Refetch(context.Background()))
		require.NoError(t, r.Refetch(context.Background()))

		st := r.State()
		assert.Equal(t, 7, st.Data)
		assert.Empty(t, st.Error)
	})
}

func TestResource_SetKey(t *testing.T) {
	var calls atomic.Int32
	r := New(context.Background(), func(_ context.Context, key string) (string, error) {
		calls.Add(1)
		return "article " + key, nil
	}, "1")
	defer r.Close()

	require.NoError(t, r.Refetch(context.Background()))
	require.NoError(t, r.SetKey(context.Background(), "1"))
	assert.EqualValues(t, 1, calls.Load())

	require.NoError(t, r.SetKey(context.Background(), "2"))
	assert.EqualValues(t, 2, calls.Load())
	assert.Equal(t, "article 2", r.State().Data)
}

func TestResource_StaleResultIsDropped(t *testing.T) {
	release := make(chan struct{})
	r := New(context.Background(), func(ctx context.Context, key string) (string, error) {
		if key == "slow" {
			select {
			case <-release:
			case <-ctx.Done():
			}
			return "slow", nil
		}
		return "fast", nil
	}, "slow")
	defer r.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = r.Refetch(context.Background())
	}()

	require.Eventually(t, func() bool { return r.State().Loading }, time.Second, 5*time.Millisecond)

	require.NoError(t, r.SetKey(context.Background(), "fast"))
	close(release)
	<-done

	st := r.State()
	assert.Equal(t, "fast", st.Data)
	assert.False(t, st.Loading)
}

func TestResource_CloseIgnoresLateResult(t *testing.T) {
	started := make(chan struct{})
	r := New(context.Background(), func(ctx context.Context, _ int) (string, error) {
		close(started)
		<-ctx.Done()
		return "late", ctx.Err()
	}, 1)

	errCh := make(chan error, 1)
	go func() {
		errCh <- r.Refetch(context.Background())
	}()

	<-started
	r.Close()

	err := <-errCh
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, r.State().Data)
	assert.Empty(t, r.State().Error)

	require.ErrorIs(t, r.Refetch(context.Background()), context.Canceled)
}

func TestResource_Mount(t *testing.T) {
	r := New(context.Background(), func(_ context.Context, _ struct{}) (string, error) {
		return "ok", nil
	}, struct{}{})
	defer r.Close()

	r.Mount()

	require.Eventually(t, func() bool { return r.State().Loaded }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "ok", r.State().Data)
}
