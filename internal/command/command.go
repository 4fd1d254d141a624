// Package command routes chat commands to their handlers, independent
// of the transport that delivered them.
package command

import (
	"context"
	"strings"

	"github.com/slh-community/slh-bot/internal/domain"
)

// Request is one incoming chat command with the sender's identity.
type Request struct {
	Identity domain.Identity
	Command  string
	Args     []string
}

// Handler processes a request and returns the reply text.
type Handler func(ctx context.Context, req Request) (string, error)

// Middleware wraps a Handler with cross-cutting behavior.
type Middleware func(Handler) Handler

// Parse splits raw message text into a command and its arguments. The
// command keeps its leading slash and is lowercased; a "@botname"
// suffix is stripped. Non-command text yields an empty Command.
func Parse(identity domain.Identity, text string) Request {
	req := Request{Identity: identity}

	fields := strings.Fields(text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return req
	}

	cmd := strings.ToLower(fields[0])
	if at := strings.Index(cmd, "@"); at > 0 {
		cmd = cmd[:at]
	}

	req.Command = cmd
	req.Args = fields[1:]

	return req
}
