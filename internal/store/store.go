// Package store defines the persistence contract shared by all backends.
package store

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/slh-community/slh-bot/internal/domain"
)

// Sentinel errors shared across all backend implementations.
var (
	ErrUserNotFound        = errors.New("user not found")
	ErrWalletNotFound      = errors.New("wallet not found")
	ErrInsufficientBalance = errors.New("insufficient balance")
)

// CreditParams describes a single-wallet balance credit (deposit or
// faucet). Amount must already be validated as positive by the caller.
type CreditParams struct {
	WalletID    int64
	Amount      decimal.Decimal
	Type        domain.TxType
	TransferRef string
	Description string
}

// TransferParams describes an atomic wallet-to-wallet move. Both balance
// changes and both log rows commit together or not at all.
type TransferParams struct {
	FromWalletID int64
	ToWalletID   int64
	Amount       decimal.Decimal
	TokenSymbol  string
	TransferRef  string
}

// OrderParams describes a new open order.
type OrderParams struct {
	UserID      int64
	Side        domain.OrderSide
	TokenSymbol string
	Amount      decimal.Decimal
	Price       decimal.Decimal
}

// Store is the contract every backend (PostgreSQL, in-memory) satisfies.
type Store interface {
	// Users
	GetOrCreateUser(ctx context.Context, identity domain.Identity) (*domain.User, error)
	GetUserByChatID(ctx context.Context, chatID int64) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)

	// Wallets
	GetOrCreateWallet(ctx context.Context, user *domain.User, tokenSymbol string) (*domain.Wallet, error)
	GetWallet(ctx context.Context, walletID int64) (*domain.Wallet, error)

	// Transactions
	Credit(ctx context.Context, params CreditParams) (*domain.Tx, error)
	Transfer(ctx context.Context, params TransferParams) (*domain.Tx, *domain.Tx, error)
	TransactionsByWallet(ctx context.Context, walletID int64, limit int) ([]domain.Tx, error)
	SumTransactionsByWallet(ctx context.Context, walletID int64) (decimal.Decimal, error)

	// Orders
	CreateOrder(ctx context.Context, params OrderParams) (*domain.Order, error)
	ListOpenOrders(ctx context.Context, limit int) ([]domain.Order, error)
	ListWallets(ctx context.Context) ([]domain.Wallet, error)

	// Lifecycle
	Close() error
}
