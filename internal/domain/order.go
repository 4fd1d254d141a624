package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderSide is the direction of a demo order.
type OrderSide string

const (
	SideBuy  OrderSide = "buy"
	SideSell OrderSide = "sell"
)

// Order is a recorded buy/sell intent. There is no matching engine;
// orders stay open until some future process closes them.
type Order struct {
	ID          int64
	UserID      int64
	Side        OrderSide
	TokenSymbol string
	Amount      decimal.Decimal
	Price       decimal.Decimal
	Open        bool
	CreatedAt   time.Time
}
