package oxidb

import (
	"errors"
	"fmt"
)

// ErrBroken is returned by every call on a client whose connection was
// closed or lost sync with the server.
var ErrBroken = errors.New("oxidb: connection broken")

// Error is returned when the OxiDB server returns an error response.
type Error struct {
	Cmd string
	Msg string
}

func (e *Error) Error() string {
	if e.Cmd == "" {
		return fmt.Sprintf("oxidb: %s", e.Msg)
	}
	return fmt.Sprintf("oxidb: %s: %s", e.Cmd, e.Msg)
}
