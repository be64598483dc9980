package ledger

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownParticipant   = errors.New("unknown participant")
	ErrDuplicateParticipant = errors.New("duplicate participant")
	ErrInvalidParticipant   = errors.New("invalid participant")
	ErrInvalidSplit         = errors.New("invalid split")
	ErrInvalidAmount        = errors.New("invalid amount")
)

// Error carries one of the sentinel kinds above plus the offending detail.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Msg == "" {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind.Error(), e.Msg)
}

func (e *Error) Unwrap() error { return e.Kind }

func unknownParticipant(id string) error {
	return &Error{Kind: ErrUnknownParticipant, Msg: fmt.Sprintf("%q", id)}
}

func invalidSplitf(format string, args ...any) error {
	return &Error{Kind: ErrInvalidSplit, Msg: fmt.Sprintf(format, args...)}
}

func invalidAmountf(format string, args ...any) error {
	return &Error{Kind: ErrInvalidAmount, Msg: fmt.Sprintf(format, args...)}
}
