package link

import (
	"errors"
	"fmt"
)

var (
	// ErrRestartRequested indicates the peer asked the bridge to restart.
	// It's terminal: the link stops processing input once returned.
	ErrRestartRequested = errors.New("restart requested")
	// ErrCommandEmpty indicates an empty control command.
	ErrCommandEmpty = errors.New("empty command")
)

// CommandTooLongError rejects control commands exceeding MaxCommandLen.
type CommandTooLongError struct {
	Len int
}

// Error implements error.
func (e *CommandTooLongError) Error() string {
	return fmt.Sprintf("command too long: %d > %d", e.Len, MaxCommandLen)
}
