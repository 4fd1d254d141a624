package handlers

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/slh-community/slh-bot/internal/command"
)

const sendUsage = "Usage: /send <@username|chat_id> <amount>"

func sendHandler(deps Deps) command.Handler {
	return func(ctx context.Context, req command.Request) (string, error) {
		if len(req.Args) != 2 {
			return sendUsage, nil
		}

		target := req.Args[0]
		amount, err := decimal.NewFromString(req.Args[1])
		if err != nil {
			return "Amount must be a number.", nil
		}

		sender, err := deps.currentUser(ctx, req.Identity)
		if err != nil {
			return deps.fail(ctx, err)
		}

		recipient, err := deps.Users.Resolve(ctx, target)
		if err != nil {
			if isRejection(err) {
				return deps.reject(err)
			}
			return deps.fail(ctx, err)
		}

		fromWallet, err := deps.Ledger.GetOrCreateWallet(ctx, sender, "")
		if err != nil {
			return deps.fail(ctx, err)
		}
		toWallet, err := deps.Ledger.GetOrCreateWallet(ctx, recipient, "")
		if err != nil {
			return deps.fail(ctx, err)
		}

		result, err := deps.Ledger.Transfer(ctx, fromWallet, toWallet, amount)
		if err != nil {
			if isRejection(err) {
				return deps.reject(err)
			}
			return deps.fail(ctx, err)
		}

		return fmt.Sprintf("Sent %s %s to %s. Your balance: %s",
			amount.String(), fromWallet.TokenSymbol,
			recipient.DisplayName(), result.From.Balance.String()), nil
	}
}
