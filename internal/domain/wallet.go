package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Wallet is a per-user, per-token balance-holding account.
// There is exactly one wallet per (user, token symbol) pair and its
// balance never goes below zero.
type Wallet struct {
	ID          int64
	UserID      int64
	TokenSymbol string
	Address     string
	Balance     decimal.Decimal
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// WalletAddress derives the logical wallet address for a chat id and
// token symbol. The derivation is deterministic so the same wallet
// always resolves to the same address.
func WalletAddress(chatID int64, tokenSymbol string) string {
	return fmt.Sprintf("SLH-%d-%s", chatID, strings.ToUpper(tokenSymbol))
}
