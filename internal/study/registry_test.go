package study_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/phrazzld/flashgen/internal/generation"
	"github.com/phrazzld/flashgen/internal/mocks"
	"github.com/phrazzld/flashgen/internal/study"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	t.Parallel()

	factoryFor := func(client generation.Client, opts ...study.Option) study.StoreFactory {
		return func(sessionID string) (*study.Store, error) {
			return study.NewStore(client, discardLogger(), append(opts, study.WithSource(sessionID))...)
		}
	}

	t.Run("GetOrCreate returns the same store per session", func(t *testing.T) {
		t.Parallel()

		registry := study.NewRegistry(factoryFor(&mocks.MockClient{}), discardLogger())

		first, err := registry.GetOrCreate("session-a")
		require.NoError(t, err)
		again, err := registry.GetOrCreate("session-a")
		require.NoError(t, err)
		other, err := registry.GetOrCreate("session-b")
		require.NoError(t, err)

		assert.Same(t, first, again)
		assert.NotSame(t, first, other)
		assert.Equal(t, 2, registry.Len())

		got, ok := registry.Get("session-a")
		assert.True(t, ok)
		assert.Same(t, first, got)

		_, ok = registry.Get("missing")
		assert.False(t, ok)
	})

	t.Run("sessions are isolated", func(t *testing.T) {
		t.Parallel()

		registry := study.NewRegistry(factoryFor(&mocks.MockClient{}), discardLogger())
		a, err := registry.GetOrCreate("a")
		require.NoError(t, err)
		b, err := registry.GetOrCreate("b")
		require.NoError(t, err)

		a.SetInputText(context.Background(), "only in a")

		assert.Equal(t, "only in a", a.Snapshot().InputText)
		assert.Equal(t, "", b.Snapshot().InputText)
	})

	t.Run("empty session id", func(t *testing.T) {
		t.Parallel()

		registry := study.NewRegistry(factoryFor(&mocks.MockClient{}), discardLogger())
		_, err := registry.GetOrCreate("")
		assert.ErrorIs(t, err, study.ErrInvalidSession)
	})

	t.Run("factory error is returned", func(t *testing.T) {
		t.Parallel()

		factoryErr := errors.New("factory failed")
		registry := study.NewRegistry(func(string) (*study.Store, error) {
			return nil, factoryErr
		}, discardLogger())

		_, err := registry.GetOrCreate("x")
		assert.ErrorIs(t, err, factoryErr)
		assert.Equal(t, 0, registry.Len())
	})

	t.Run("Sweep removes idle stores only", func(t *testing.T) {
		t.Parallel()

		idle := func() time.Time { return time.Now().Add(-2 * time.Hour) }
		registry := study.NewRegistry(func(sessionID string) (*study.Store, error) {
			if sessionID == "idle" {
				return study.NewStore(&mocks.MockClient{}, discardLogger(), study.WithClock(idle))
			}
			return study.NewStore(&mocks.MockClient{}, discardLogger())
		}, discardLogger())

		_, err := registry.GetOrCreate("idle")
		require.NoError(t, err)
		_, err = registry.GetOrCreate("active")
		require.NoError(t, err)

		removed := registry.Sweep(time.Hour)

		assert.Equal(t, 1, removed)
		_, ok := registry.Get("idle")
		assert.False(t, ok)
		_, ok = registry.Get("active")
		assert.True(t, ok)
	})

	t.Run("GetOrCreate keeps a returning session from being swept", func(t *testing.T) {
		t.Parallel()

		var mu sync.Mutex
		current := time.Now().Add(-2 * time.Hour)
		clock := func() time.Time {
			mu.Lock()
			defer mu.Unlock()
			return current
		}
		registry := study.NewRegistry(func(string) (*study.Store, error) {
			return study.NewStore(&mocks.MockClient{}, discardLogger(), study.WithClock(clock))
		}, discardLogger())

		_, err := registry.GetOrCreate("returning")
		require.NoError(t, err)

		mu.Lock()
		current = time.Now()
		mu.Unlock()

		store, err := registry.GetOrCreate("returning")
		require.NoError(t, err)

		assert.Equal(t, 0, registry.Sweep(time.Hour))
		got, ok := registry.Get("returning")
		require.True(t, ok)
		assert.Same(t, store, got)
	})

	t.Run("Remove abandons the in-flight generation", func(t *testing.T) {
		t.Parallel()

		started := make(chan struct{})
		client := &mocks.MockClient{
			SendPromptFn: func(ctx context.Context, _, _ string, _ generation.ChunkHandler) error {
				close(started)
				<-ctx.Done()
				return ctx.Err()
			},
		}
		registry := study.NewRegistry(factoryFor(client), discardLogger())
		store, err := registry.GetOrCreate("s")
		require.NoError(t, err)
		store.SetInputText(context.Background(), "notes")

		errCh := make(chan error, 1)
		go func() { errCh <- store.Generate(context.Background()) }()
		<-started

		registry.Remove("s")

		select {
		case err := <-errCh:
			assert.ErrorIs(t, err, study.ErrSuperseded)
		case <-time.After(5 * time.Second):
			t.Fatal("Generate did not return after Remove")
		}
		assert.Equal(t, 0, registry.Len())
	})

	t.Run("CloseAll empties the registry", func(t *testing.T) {
		t.Parallel()

		registry := study.NewRegistry(factoryFor(&mocks.MockClient{}), discardLogger())
		for _, id := range []string{"a", "b", "c"} {
			_, err := registry.GetOrCreate(id)
			require.NoError(t, err)
		}

		assert.Equal(t, 3, registry.CloseAll())
		assert.Equal(t, 0, registry.Len())
		assert.Equal(t, 0, registry.CloseAll())
	})

	t.Run("RunSweeper stops with its context", func(t *testing.T) {
		t.Parallel()

		registry := study.NewRegistry(factoryFor(&mocks.MockClient{}), discardLogger())
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			registry.RunSweeper(ctx, time.Millisecond, time.Hour)
			close(done)
		}()

		cancel()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("RunSweeper did not stop")
		}
	})

	t.Run("constructor panics without dependencies", func(t *testing.T) {
		t.Parallel()

		assert.Panics(t, func() { study.NewRegistry(nil, discardLogger()) })
		assert.Panics(t, func() { study.NewRegistry(factoryFor(&mocks.MockClient{}), nil) })
	})
}
