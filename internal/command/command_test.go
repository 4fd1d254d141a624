package command

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slh-community/slh-bot/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestParse(t *testing.T) {
	identity := domain.Identity{ChatID: 1}

	testCases := []struct {
		name        string
		text        string
		wantCommand string
		wantArgs    []string
	}{
		{name: "bare command", text: "/wallet", wantCommand: "/wallet"},
		{name: "command with args", text: "/send @bob 10", wantCommand: "/send", wantArgs: []string{"@bob", "10"}},
		{name: "uppercase command", text: "/WALLET", wantCommand: "/wallet"},
		{name: "bot mention stripped", text: "/faucet@slh_bot", wantCommand: "/faucet"},
		{name: "extra whitespace", text: "  /deposit   5  ", wantCommand: "/deposit", wantArgs: []string{"5"}},
		{name: "plain text", text: "hello there", wantCommand: ""},
		{name: "empty", text: "", wantCommand: ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := Parse(identity, tc.text)
			assert.Equal(t, tc.wantCommand, req.Command)
			assert.Equal(t, identity, req.Identity)
			if len(tc.wantArgs) == 0 {
				assert.Empty(t, req.Args)
			} else {
				assert.Equal(t, tc.wantArgs, req.Args)
			}
		})
	}
}

func TestRouterDispatch(t *testing.T) {
	router := NewRouter(testLogger())
	router.Register("/ping", func(ctx context.Context, req Request) (string, error) {
		return "pong", nil
	})

	reply, err := router.Route(context.Background(), domain.Identity{ChatID: 1}, "/ping")
	require.NoError(t, err)
	assert.Equal(t, "pong", reply)
}

func TestRouterFallsBackToDefault(t *testing.T) {
	router := NewRouter(testLogger())
	router.SetDefault(func(ctx context.Context, req Request) (string, error) {
		return "help text", nil
	})

	for _, text := range []string{"/unknown", "plain message"} {
		reply, err := router.Route(context.Background(), domain.Identity{ChatID: 1}, text)
		require.NoError(t, err)
		assert.Equal(t, "help text", reply)
	}
}

func TestRouterWithoutHandlersIgnoresMessage(t *testing.T) {
	router := NewRouter(testLogger())

	reply, err := router.Route(context.Background(), domain.Identity{ChatID: 1}, "/missing")
	require.NoError(t, err)
	assert.Empty(t, reply)
}

func TestRouterMiddlewareOrder(t *testing.T) {
	router := NewRouter(testLogger())

	var order []string
	mw := func(name string) Middleware {
		return func(next Handler) Handler {
			return func(ctx context.Context, req Request) (string, error) {
				order = append(order, name)
				return next(ctx, req)
			}
		}
	}

	router.Use(mw("first"))
	router.Use(mw("second"))
	router.Register("/ping", func(ctx context.Context, req Request) (string, error) {
		order = append(order, "handler")
		return "pong", nil
	})

	_, err := router.Route(context.Background(), domain.Identity{ChatID: 1}, "/ping")
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second", "handler"}, order)
}

func TestRouterPropagatesHandlerError(t *testing.T) {
	router := NewRouter(testLogger())
	wantErr := errors.New("boom")
	router.Register("/fail", func(ctx context.Context, req Request) (string, error) {
		return "sorry", wantErr
	})

	reply, err := router.Route(context.Background(), domain.Identity{ChatID: 1}, "/fail")
	assert.ErrorIs(t, err, wantErr)
	assert.Equal(t, "sorry", reply)
}
