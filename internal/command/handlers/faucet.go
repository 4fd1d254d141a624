package handlers

import (
	"context"
	"fmt"

	"github.com/slh-community/slh-bot/internal/command"
)

func faucetHandler(deps Deps) command.Handler {
	return func(ctx context.Context, req command.Request) (string, error) {
		usr, err := deps.currentUser(ctx, req.Identity)
		if err != nil {
			return deps.fail(ctx, err)
		}

		wallet, err := deps.Ledger.GetOrCreateWallet(ctx, usr, "")
		if err != nil {
			return deps.fail(ctx, err)
		}

		updated, tx, err := deps.Ledger.Faucet(ctx, wallet)
		if err != nil {
			if isRejection(err) {
				return deps.reject(err)
			}
			return deps.fail(ctx, err)
		}

		return fmt.Sprintf("Received %s %s. Balance: %s",
			tx.Amount.String(), tx.TokenSymbol, updated.Balance.String()), nil
	}
}
