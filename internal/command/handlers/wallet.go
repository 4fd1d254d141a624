package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/slh-community/slh-bot/internal/command"
	"github.com/slh-community/slh-bot/internal/domain"
)

func walletHandler(deps Deps) command.Handler {
	return func(ctx context.Context, req command.Request) (string, error) {
		usr, err := deps.currentUser(ctx, req.Identity)
		if err != nil {
			return deps.fail(ctx, err)
		}

		tokenSymbol := ""
		if len(req.Args) > 0 {
			tokenSymbol = req.Args[0]
		}

		wallet, err := deps.Ledger.GetOrCreateWallet(ctx, usr, tokenSymbol)
		if err != nil {
			return deps.fail(ctx, err)
		}

		var b strings.Builder
		fmt.Fprintf(&b, "Wallet address: %s\n", wallet.Address)
		fmt.Fprintf(&b, "Balance: %s %s", wallet.Balance.String(), wallet.TokenSymbol)

		history, err := deps.Ledger.History(ctx, wallet, 0)
		if err != nil {
			return deps.fail(ctx, err)
		}
		if len(history) > 0 {
			b.WriteString("\n\nRecent transactions:")
			for _, tx := range history {
				b.WriteString("\n" + formatTx(tx))
			}
		}

		return b.String(), nil
	}
}

func formatTx(tx domain.Tx) string {
	return fmt.Sprintf("#%d %s %s %s", tx.ID, tx.Type, tx.Signed().String(), tx.TokenSymbol)
}
