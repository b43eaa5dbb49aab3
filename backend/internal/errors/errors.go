package errors

import (
	"errors"
	"fmt"
	"strings"
)

var (
	NotFound            = errors.New("Not found")
	ErrRoomAccessDenied = errors.New("not allowed to access room")
	ErrInvalidUser      = errors.New("invalid user")
)

// Is reports whether err is an instance of T.
func Is[T error](err error) bool {
	var target T
	return errors.As(err, &target)
}

// ValidationError lists every problem found in a caller-supplied payload.
type ValidationError struct {
	Message string
	Fields  []string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("Validation error: %s", e.Message)
	}
	return fmt.Sprintf("Validation error: %s (%s)", e.Message, strings.Join(e.Fields, ", "))
}
