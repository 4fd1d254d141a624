package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/slh-community/slh-bot/internal/command"
)

const orderUsage = "Usage: /order <buy|sell> <token> <amount> <price>"

func orderHandler(deps Deps) command.Handler {
	return func(ctx context.Context, req command.Request) (string, error) {
		if len(req.Args) != 4 {
			return orderUsage, nil
		}

		side, tokenSymbol := req.Args[0], req.Args[1]

		amount, err := decimal.NewFromString(req.Args[2])
		if err != nil {
			return "Amount and price must be numbers.", nil
		}
		price, err := decimal.NewFromString(req.Args[3])
		if err != nil {
			return "Amount and price must be numbers.", nil
		}

		usr, err := deps.currentUser(ctx, req.Identity)
		if err != nil {
			return deps.fail(ctx, err)
		}

		order, err := deps.Orders.Create(ctx, usr, side, tokenSymbol, amount, price)
		if err != nil {
			if isRejection(err) {
				return deps.reject(err)
			}
			return deps.fail(ctx, err)
		}

		return fmt.Sprintf("Order created:\nID: %d\nSide: %s\nToken: %s\nAmount: %s\nPrice: %s",
			order.ID, order.Side, order.TokenSymbol,
			order.Amount.String(), order.Price.String()), nil
	}
}

func ordersHandler(deps Deps) command.Handler {
	return func(ctx context.Context, req command.Request) (string, error) {
		open, err := deps.Orders.ListOpen(ctx)
		if err != nil {
			return deps.fail(ctx, err)
		}

		if len(open) == 0 {
			return "No open orders.", nil
		}

		lines := []string{"Open orders:"}
		for _, o := range open {
			lines = append(lines, fmt.Sprintf("#%d %s %s %s @ %s",
				o.ID, strings.ToUpper(string(o.Side)),
				o.Amount.String(), o.TokenSymbol, o.Price.String()))
		}

		return strings.Join(lines, "\n"), nil
	}
}
