package command

import (
	"context"
	"log/slog"
	"sync"

	"github.com/slh-community/slh-bot/internal/domain"
)

// Router dispatches parsed commands to registered handlers through the
// middleware chain.
type Router struct {
	mu             sync.RWMutex
	commands       map[string]Handler
	defaultHandler Handler
	middlewares    []Middleware
	log            *slog.Logger
}

// NewRouter builds a Router with empty registries.
func NewRouter(log *slog.Logger) *Router {
	if log == nil {
		log = slog.Default()
	}

	return &Router{
		commands:    make(map[string]Handler),
		middlewares: make([]Middleware, 0),
		log:         log,
	}
}

// Register registers a handler for a command.
func (r *Router) Register(cmd string, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands[cmd] = h
}

// Use appends a middleware to the chain.
func (r *Router) Use(mw Middleware) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.middlewares = append(r.middlewares, mw)
}

// SetDefault sets the fallback handler for unmatched input.
func (r *Router) SetDefault(h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.defaultHandler = h
}

// Route parses the message text and executes the matching handler,
// falling back to the default handler for unknown commands or plain
// text. An empty reply with nil error means the message was ignored.
func (r *Router) Route(ctx context.Context, identity domain.Identity, text string) (string, error) {
	req := Parse(identity, text)

	handler := r.getHandler(req.Command)
	if handler == nil {
		handler = r.getDefaultHandler()
	}
	if handler == nil {
		r.log.Debug("no handler for message",
			slog.Int64("chat_id", identity.ChatID),
			slog.String("command", req.Command),
		)
		return "", nil
	}

	return r.applyMiddlewares(handler)(ctx, req)
}

func (r *Router) getHandler(cmd string) Handler {
	if cmd == "" {
		return nil
	}

	r.mu.RLock()
	handler := r.commands[cmd]
	r.mu.RUnlock()
	return handler
}

func (r *Router) getDefaultHandler() Handler {
	r.mu.RLock()
	handler := r.defaultHandler
	r.mu.RUnlock()
	return handler
}

// applyMiddlewares wraps the handler with all registered middlewares.
func (r *Router) applyMiddlewares(h Handler) Handler {
	middlewares := r.middlewaresSnapshot()

	wrapped := h
	for i := len(middlewares) - 1; i >= 0; i-- {
		wrapped = middlewares[i](wrapped)
	}

	return wrapped
}

func (r *Router) middlewaresSnapshot() []Middleware {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.middlewares) == 0 {
		return nil
	}

	snapshot := make([]Middleware, len(r.middlewares))
	copy(snapshot, r.middlewares)
	return snapshot
}
