// Package lifecycle coordinates teardown of the bot's outer resources
// (HTTP listener, database pool, Redis client) on SIGTERM.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Hook is a named cleanup step.
type Hook struct {
	Name string
	Fn   func(ctx context.Context) error
}

// Shutdown runs registered hooks in parallel when the process stops.
// Hooks are independent, so one slow or failing close cannot hold the
// others hostage.
type Shutdown struct {
	mu    sync.Mutex
	hooks []Hook
	log   *slog.Logger
}

// NewShutdown constructs an empty coordinator.
func NewShutdown(log *slog.Logger) *Shutdown {
	if log == nil {
		log = slog.Default()
	}

	return &Shutdown{log: log}
}

// Register queues a cleanup step. Nil functions are ignored.
func (s *Shutdown) Register(name string, fn func(context.Context) error) {
	if fn == nil {
		return
	}

	s.mu.Lock()
	s.hooks = append(s.hooks, Hook{Name: name, Fn: fn})
	s.mu.Unlock()
}

// Execute runs every registered hook concurrently, bounded by ctx, and
// returns the joined errors of the ones that failed.
func (s *Shutdown) Execute(ctx context.Context) error {
	s.mu.Lock()
	hooks := append([]Hook(nil), s.hooks...)
	s.mu.Unlock()

	s.log.Info("shutting down", slog.Int("hooks", len(hooks)))
	start := time.Now()

	errCh := make(chan error, len(hooks))

	var wg sync.WaitGroup
	for _, hook := range hooks {
		wg.Add(1)
		go func(h Hook) {
			defer wg.Done()

			if err := h.Fn(ctx); err != nil {
				s.log.Error("shutdown hook failed",
					slog.String("hook", h.Name),
					slog.Any("error", err),
				)
				errCh <- fmt.Errorf("%s: %w", h.Name, err)
				return
			}

			s.log.Debug("shutdown hook done", slog.String("hook", h.Name))
		}(hook)
	}
	wg.Wait()
	close(errCh)

	errs := make([]error, 0, len(hooks))
	for err := range errCh {
		errs = append(errs, err)
	}

	s.log.Info("shutdown complete",
		slog.Duration("elapsed", time.Since(start)),
		slog.Int("failed", len(errs)),
	)

	return errors.Join(errs...)
}
