package record

import (
	"errors"
	"fmt"
)

var (
	// ErrDecode matches every *DecodeError via errors.Is.
	ErrDecode    = errors.New("decode record")
	ErrMissing   = errors.New("missing field")
	ErrEmpty     = errors.New("empty field")
	ErrNotFinite = errors.New("not a finite number")
)

type DecodeError struct {
	// Line is the 1-based line of the payload, or 0 when unknown.
	Line   int
	Column string
	Err    error
}

func (e *DecodeError) Error() string {
	switch {
	case e.Line > 0 && len(e.Column) > 0:
		return fmt.Sprintf("line %d: column %s: %v", e.Line, e.Column, e.Err)
	case e.Line > 0:
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	case len(e.Column) > 0:
		return fmt.Sprintf("column %s: %v", e.Column, e.Err)
	default:
		return e.Err.Error()
	}
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func (e *DecodeError) Is(target error) bool {
	return target == ErrDecode
}
