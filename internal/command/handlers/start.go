package handlers

import (
	"context"

	"github.com/slh-community/slh-bot/internal/command"
)

const welcomeText = `Welcome to the SLH community demo!
Available commands:
/whoami - your user details
/wallet - create a wallet and show balance
/deposit <amount> - demo deposit
/order <buy|sell> <token> <amount> <price> - place an order
/orders - view open orders
/faucet - receive free tokens
/send <@user|chat_id> <amount> - send SLH to another user`

func startHandler() command.Handler {
	return func(ctx context.Context, req command.Request) (string, error) {
		return welcomeText, nil
	}
}
