package codec

import (
	"errors"
	"fmt"
)

// ErrFormat is matched by every FormatError.
var ErrFormat = errors.New("malformed ledger data")

// FormatError reports a payload that is not a ledger collection.
type FormatError struct {
	Op  string // "decode", "read", ...
	Err error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s ledger: %v", e.Op, e.Err)
}

func (e *FormatError) Unwrap() []error {
	return []error{ErrFormat, e.Err}
}

func formatErr(op string, format string, args ...any) error {
	return &FormatError{Op: op, Err: fmt.Errorf(format, args...)}
}
