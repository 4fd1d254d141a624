// Package orders records demo buy/sell intents. There is no matching
// engine, settlement, or cancellation; orders stay open once placed.
package orders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/slh-community/slh-bot/internal/domain"
	"github.com/slh-community/slh-bot/internal/ledger"
	"github.com/slh-community/slh-bot/internal/store"
	"github.com/slh-community/slh-bot/pkg/metrics"
)

// ErrInvalidSide rejects an order side outside {buy, sell}.
var ErrInvalidSide = errors.New(`side must be "buy" or "sell"`)

// OpenOrdersLimit caps how many open orders a listing returns.
const OpenOrdersLimit = 50

// Service provides order placement and listing.
type Service struct {
	store store.Store
	log   *slog.Logger
}

// NewService constructs an order Service.
func NewService(st store.Store, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}

	return &Service{store: st, log: log}
}

// Create validates and records an open order. Side is matched
// case-insensitively and stored lowercase; amount and price must both
// be positive.
func (s *Service) Create(ctx context.Context, user *domain.User, side, tokenSymbol string, amount, price decimal.Decimal) (*domain.Order, error) {
	normalized := domain.OrderSide(strings.ToLower(side))
	if normalized != domain.SideBuy && normalized != domain.SideSell {
		metrics.RecordValidationFailure("create_order", "invalid_side")
		return nil, ErrInvalidSide
	}

	if !amount.IsPositive() || !price.IsPositive() {
		metrics.RecordValidationFailure("create_order", "invalid_amount")
		return nil, ledger.ErrInvalidAmount
	}

	order, err := s.store.CreateOrder(ctx, store.OrderParams{
		UserID:      user.ID,
		Side:        normalized,
		TokenSymbol: strings.ToUpper(tokenSymbol),
		Amount:      amount,
		Price:       price,
	})
	if err != nil {
		metrics.RecordLedgerOp("create_order", metrics.StatusError)
		s.log.Error("order placement failed",
			slog.Int64("user_id", user.ID),
			slog.Any("error", err),
		)
		return nil, fmt.Errorf("create order: %w", err)
	}

	metrics.RecordLedgerOp("create_order", metrics.StatusOK)
	s.log.Info("order placed",
		slog.Int64("order_id", order.ID),
		slog.Int64("user_id", user.ID),
		slog.String("side", string(order.Side)),
		slog.String("amount", order.Amount.String()),
		slog.String("price", order.Price.String()),
	)

	return order, nil
}

// ListOpen returns open orders, most recent first, capped at
// OpenOrdersLimit.
func (s *Service) ListOpen(ctx context.Context) ([]domain.Order, error) {
	orders, err := s.store.ListOpenOrders(ctx, OpenOrdersLimit)
	if err != nil {
		return nil, fmt.Errorf("list open orders: %w", err)
	}

	return orders, nil
}

// IsValidation reports whether err is an expected order validation
// outcome.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidSide) || errors.Is(err, ledger.ErrInvalidAmount)
}
