package bridge

import (
	"errors"
	"strings"
)

// Prefix marks command strings addressed to the bridge. Anything else on the
// channel belongs to other link handlers.
const Prefix = "ankidroidjs:"

// Parse errors. Both are protocol-level: no response is ever delivered for
// them.
var (
	ErrNotBridgeCommand = errors.New("not a bridge command")
	ErrMalformedCommand = errors.New("malformed bridge command")
)

// Command is one decoded wire envelope:
//
//	"ankidroidjs:" callbackId ":" functionName [":" argsJson]
//
// It exists only for the duration of a single dispatch.
type Command struct {
	CallbackID string
	Function   string
	ArgsJSON   string
}

// ParseCommand decodes a raw wire string. The args segment may itself contain
// colons, so the split is capped at four parts. A missing or empty args
// segment defaults to "{}".
func ParseCommand(raw string) (Command, error) {
	if !strings.HasPrefix(raw, Prefix) {
		return Command{}, ErrNotBridgeCommand
	}

	parts := strings.SplitN(raw, ":", 4)
	if len(parts) < 3 {
		return Command{}, ErrMalformedCommand
	}

	cmd := Command{
		CallbackID: parts[1],
		Function:   parts[2],
		ArgsJSON:   "{}",
	}
	if len(parts) == 4 && parts[3] != "" {
		cmd.ArgsJSON = parts[3]
	}
	return cmd, nil
}
