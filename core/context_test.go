package core

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextKeys(t *testing.T) {
	ctx := context.Background()
	assert.False(t, shouldSuppressHeader(ctx))
	assert.True(t, shouldSuppressHeader(WithSuppressHeader(ctx)))

	_, ok := getRunID(ctx)
	assert.False(t, ok)
	_, ok = getRunID(withRunID(ctx, 0))
	assert.False(t, ok)

	id, ok := getRunID(withRunID(ctx, 42))
	assert.True(t, ok)
	assert.Equal(t, int64(42), id)
}

func TestWatchInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "issues.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"components":[]}`), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	called := make(chan struct{}, 1)
	done := make(chan error, 1)
	go func() {
		done <- WatchInput(ctx, path, func(context.Context) error {
			select {
			case called <- struct{}{}:
			default:
			}
			return nil
		})
	}()

	// Keep writing until the watcher is registered and reports a change
	deadline := time.After(5 * time.Second)
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
loop:
	for {
		select {
		case <-called:
			break loop
		case <-ticker.C:
			require.NoError(t, os.WriteFile(path, []byte(`{"components":[]}`), 0o644))
		case <-deadline:
			t.Fatal("watcher did not report a change")
		}
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop after cancel")
	}
}

func TestWatchInputMissingFile(t *testing.T) {
	err := WatchInput(context.Background(), filepath.Join(t.TempDir(), "missing.json"), func(context.Context) error {
		return nil
	})
	assert.Error(t, err)
}
