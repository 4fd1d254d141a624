package ledger

import (
	"errors"

	"github.com/slh-community/slh-bot/internal/store"
)

// Validation errors returned by ledger operations. They are expected
// outcomes the caller reports back to the user, as opposed to wrapped
// infrastructure faults, which propagate.
var (
	// ErrInvalidAmount rejects a non-positive amount.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrSelfTransfer rejects a transfer whose source and destination
	// wallets are the same.
	ErrSelfTransfer = errors.New("cannot transfer to the same wallet")

	// ErrCurrencyMismatch rejects a transfer between wallets holding
	// different token symbols.
	ErrCurrencyMismatch = errors.New("wallet token symbols do not match")

	// ErrInsufficientBalance rejects a debit that would drive the
	// balance negative. It aliases the store sentinel because the check
	// happens under the row lock inside the backend.
	ErrInsufficientBalance = store.ErrInsufficientBalance
)

// IsValidation reports whether err is an expected validation outcome
// rather than an infrastructure fault.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrSelfTransfer) ||
		errors.Is(err, ErrCurrencyMismatch) ||
		errors.Is(err, ErrInsufficientBalance)
}
