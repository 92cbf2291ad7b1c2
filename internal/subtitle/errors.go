package subtitle

import (
	"errors"
	"fmt"
)

var (
	ErrBadIndex     = errors.New("bad index")
	ErrBadTimestamp = errors.New("bad timestamp")
	ErrTruncated    = errors.New("truncated block")
	ErrEmptySegment = errors.New("empty segment")
)

// decode failure kinds
type ParseErrorKind int

const (
	BadIndex ParseErrorKind = iota + 1
	BadTimestamp
	Truncated
)

func (k ParseErrorKind) String() string {
	switch k {
	case BadIndex:
		return "bad index"
	case BadTimestamp:
		return "bad timestamp"
	case Truncated:
		return "truncated block"
	default:
		return "unknown"
	}
}

// returned by Decode; Line is 1-based in the source
type ParseError struct {
	Kind ParseErrorKind
	Line int
	Text string
}

func (e *ParseError) Error() string {
	if e.Text == "" {
		return fmt.Sprintf("line %d: %s", e.Line, e.Kind)
	}
	return fmt.Sprintf("line %d: %s: %q", e.Line, e.Kind, e.Text)
}

func (e *ParseError) Unwrap() error {
	switch e.Kind {
	case BadIndex:
		return ErrBadIndex
	case BadTimestamp:
		return ErrBadTimestamp
	case Truncated:
		return ErrTruncated
	default:
		return nil
	}
}

// returned by Encode when a segment has no visible text
type ValidationError struct {
	ID int
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("segment %d has no content", e.ID)
}

func (e *ValidationError) Unwrap() error {
	return ErrEmptySegment
}
