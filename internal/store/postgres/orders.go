package postgres

import (
	"context"
	"fmt"

	"github.com/slh-community/slh-bot/internal/domain"
	"github.com/slh-community/slh-bot/internal/store"
)

const orderColumns = `id, user_id, side, token_symbol, amount::text, price::text, open, created_at`

// CreateOrder records a new open order.
func (s *Store) CreateOrder(ctx context.Context, params store.OrderParams) (*domain.Order, error) {
	query := `
		INSERT INTO orders (user_id, side, token_symbol, amount, price)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + orderColumns

	order, err := scanOrder(s.db.QueryRowContext(ctx, query,
		params.UserID,
		string(params.Side),
		params.TokenSymbol,
		params.Amount.String(),
		params.Price.String(),
	))
	if err != nil {
		s.log.Error("failed to insert order", "user_id", params.UserID, "error", err)
		return nil, fmt.Errorf("insert order: %w", err)
	}

	return order, nil
}

// ListOpenOrders returns open orders, most recent first.
func (s *Store) ListOpenOrders(ctx context.Context, limit int) ([]domain.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE open
		ORDER BY id DESC
		LIMIT $1
	`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("select open orders: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			s.log.Warn("failed to close order rows", "error", cerr)
		}
	}()

	var orders []domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, *order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order rows: %w", err)
	}

	return orders, nil
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var (
		order     domain.Order
		amountStr string
		priceStr  string
	)
	if err := row.Scan(
		&order.ID,
		&order.UserID,
		&order.Side,
		&order.TokenSymbol,
		&amountStr,
		&priceStr,
		&order.Open,
		&order.CreatedAt,
	); err != nil {
		return nil, err
	}

	amount, err := parseDecimal(amountStr, "amount")
	if err != nil {
		return nil, err
	}
	price, err := parseDecimal(priceStr, "price")
	if err != nil {
		return nil, err
	}
	order.Amount = amount
	order.Price = price

	return &order, nil
}
