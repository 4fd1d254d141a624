package handlers

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/slh-community/slh-bot/internal/command"
)

const depositUsage = "Usage: /deposit <amount> [token]"

func depositHandler(deps Deps) command.Handler {
	return func(ctx context.Context, req command.Request) (string, error) {
		if len(req.Args) < 1 {
			return depositUsage, nil
		}

		amount, err := decimal.NewFromString(req.Args[0])
		if err != nil {
			return "Amount must be a number.", nil
		}

		tokenSymbol := ""
		if len(req.Args) > 1 {
			tokenSymbol = req.Args[1]
		}

		usr, err := deps.currentUser(ctx, req.Identity)
		if err != nil {
			return deps.fail(ctx, err)
		}

		wallet, err := deps.Ledger.GetOrCreateWallet(ctx, usr, tokenSymbol)
		if err != nil {
			return deps.fail(ctx, err)
		}

		updated, tx, err := deps.Ledger.Deposit(ctx, wallet, amount)
		if err != nil {
			if isRejection(err) {
				return deps.reject(err)
			}
			return deps.fail(ctx, err)
		}

		return fmt.Sprintf("Deposited %s %s. New balance: %s",
			tx.Amount.String(), tx.TokenSymbol, updated.Balance.String()), nil
	}
}
