package handlers

import (
	"context"
	"fmt"

	"github.com/slh-community/slh-bot/internal/command"
)

func whoamiHandler(deps Deps) command.Handler {
	return func(ctx context.Context, req command.Request) (string, error) {
		usr, err := deps.currentUser(ctx, req.Identity)
		if err != nil {
			return deps.fail(ctx, err)
		}

		username := "(none)"
		if usr.Username != "" {
			username = "@" + usr.Username
		}

		return fmt.Sprintf("Internal ID: %d\nChat ID: %d\nUsername: %s",
			usr.ID, usr.ChatID, username), nil
	}
}
