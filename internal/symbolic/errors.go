package symbolic

import (
	"errors"
	"fmt"
)

var (
	// ErrSyntax indicates text that could not be parsed into an expression.
	ErrSyntax = errors.New("symbolic: syntax error")

	// ErrDimensionMismatch indicates incompatible matrix shapes.
	ErrDimensionMismatch = errors.New("symbolic: dimension mismatch")
)

// SyntaxError carries the offending input and position.
type SyntaxError struct {
	Input string
	Pos   int
	Msg   string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%v: %s at offset %d in %q", ErrSyntax, e.Msg, e.Pos, e.Input)
}

func (e *SyntaxError) Unwrap() error {
	return ErrSyntax
}
