package parser

import (
	"errors"
	"fmt"
)

// ErrSyntax is matched by every *SyntaxError via errors.Is.
var ErrSyntax = errors.New("syntax error")

// SyntaxError is a positioned parse failure. Any syntax error is fatal for
// the whole compile.
type SyntaxError struct {
	Pos     Pos
	Message string
}

func newSyntaxError(pos Pos, format string, args ...any) *SyntaxError {
	return &SyntaxError{Pos: pos, Message: fmt.Sprintf(format, args...)}
}

func (e *SyntaxError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s: %s", e.Pos, e.Message)
	}
	return e.Message
}

func (e *SyntaxError) Is(target error) bool {
	return target == ErrSyntax
}
