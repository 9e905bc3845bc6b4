package model

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Every error returned while loading a graph wraps exactly one
// of these, so callers can test for them with errors.Is.
var (
	ErrMalformedPathDescriptor   = errors.New("malformed path descriptor")
	ErrInvalidOrientationMarker  = errors.New("invalid orientation marker")
	ErrTruncatedLine             = errors.New("truncated line")
	ErrDuplicateSegmentName      = errors.New("duplicate segment name")
	ErrDuplicatePathName         = errors.New("duplicate path name")
	ErrReferencedSegmentNotFound = errors.New("referenced segment not found")
	ErrInvalidSequenceSymbol     = errors.New("invalid sequence symbol")
	ErrInvalidCoordinate         = errors.New("invalid walk coordinate")
)

// Error describes a load failure. Line is 1-based; it is 0 when the error
// was produced outside of a file scan (e.g. by the descriptor parser alone).
type Error struct {
	Kind   error
	Line   int
	Tag    string // line type, e.g. "S", "P", "W"
	Name   string // segment or path name, when known
	Detail string
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Line > 0 {
		fmt.Fprintf(&b, "line %d: ", e.Line)
	}
	if e.Tag != "" {
		fmt.Fprintf(&b, "%s-line: ", e.Tag)
	}
	if e.Name != "" {
		fmt.Fprintf(&b, "%q: ", e.Name)
	}
	b.WriteString(e.Kind.Error())
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Kind
}
