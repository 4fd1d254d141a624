// Package handlers implements the chat commands on top of the user,
// ledger, and orders services.
package handlers

import (
	"context"
	"errors"
	"log/slog"

	"github.com/slh-community/slh-bot/internal/apperrors"
	"github.com/slh-community/slh-bot/internal/command"
	"github.com/slh-community/slh-bot/internal/domain"
	"github.com/slh-community/slh-bot/internal/ledger"
	"github.com/slh-community/slh-bot/internal/orders"
	"github.com/slh-community/slh-bot/internal/store"
	"github.com/slh-community/slh-bot/internal/user"
)

// Deps bundles the services the command handlers need.
type Deps struct {
	Users  *user.Service
	Ledger *ledger.Service
	Orders *orders.Service
	Errors *apperrors.Handler
	Log    *slog.Logger
}

// RegisterAll wires every command handler into the router. The start
// handler doubles as the fallback for unrecognized input.
func RegisterAll(router *command.Router, deps Deps) {
	if deps.Log == nil {
		deps.Log = slog.Default()
	}

	router.Register(command.CommandStart, startHandler())
	router.Register(command.CommandHelp, startHandler())
	router.Register(command.CommandWhoami, whoamiHandler(deps))
	router.Register(command.CommandWallet, walletHandler(deps))
	router.Register(command.CommandDeposit, depositHandler(deps))
	router.Register(command.CommandFaucet, faucetHandler(deps))
	router.Register(command.CommandSend, sendHandler(deps))
	router.Register(command.CommandOrder, orderHandler(deps))
	router.Register(command.CommandOrders, ordersHandler(deps))
	router.SetDefault(startHandler())
}

// currentUser resolves the sender to a registered user, upserting the
// profile on every command.
func (d Deps) currentUser(ctx context.Context, identity domain.Identity) (*domain.User, error) {
	return d.Users.GetOrCreate(ctx, identity)
}

// fail routes err through the error handler and replies with the
// user-facing message it produced.
func (d Deps) fail(ctx context.Context, err error) (string, error) {
	msg, _ := d.Errors.Handle(ctx, err)
	return msg, err
}

// reject replies with the validation message matching err. The error is
// still returned so middleware can classify the outcome.
func (d Deps) reject(err error) (string, error) {
	return validationMessage(err), err
}

func validationMessage(err error) string {
	switch {
	case errors.Is(err, ledger.ErrInvalidAmount):
		return "Amount must be greater than zero."
	case errors.Is(err, ledger.ErrSelfTransfer):
		return "You cannot send tokens to yourself."
	case errors.Is(err, ledger.ErrCurrencyMismatch):
		return "Both wallets must hold the same token."
	case errors.Is(err, ledger.ErrInsufficientBalance):
		return "Insufficient balance."
	case errors.Is(err, orders.ErrInvalidSide):
		return `Side must be "buy" or "sell".`
	case errors.Is(err, store.ErrUserNotFound):
		return "Recipient not found. They need to message the bot first."
	default:
		return "Invalid input."
	}
}

// isRejection reports whether err is an expected validation outcome
// rather than a fault.
func isRejection(err error) bool {
	return ledger.IsValidation(err) ||
		orders.IsValidation(err) ||
		errors.Is(err, store.ErrUserNotFound)
}
