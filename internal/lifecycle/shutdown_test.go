package lifecycle

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestExecuteRunsAllHooks(t *testing.T) {
	sd := NewShutdown(testLogger())

	var ran atomic.Int32
	for i := 0; i < 3; i++ {
		sd.Register("hook", func(context.Context) error {
			ran.Add(1)
			return nil
		})
	}

	require.NoError(t, sd.Execute(context.Background()))
	assert.Equal(t, int32(3), ran.Load())
}

func TestExecuteCollectsHookErrors(t *testing.T) {
	sd := NewShutdown(testLogger())

	boom := errors.New("close failed")
	sd.Register("redis", func(context.Context) error { return boom })

	var listenerClosed atomic.Bool
	sd.Register("listener", func(context.Context) error {
		listenerClosed.Store(true)
		return nil
	})

	err := sd.Execute(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "redis")
	assert.True(t, listenerClosed.Load())
}

func TestRegisterIgnoresNilHook(t *testing.T) {
	sd := NewShutdown(testLogger())
	sd.Register("noop", nil)

	require.NoError(t, sd.Execute(context.Background()))
}
