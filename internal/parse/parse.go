// Package parse decodes the segment lists of GFA P-lines and W-lines.
//
// The two line types use different grammars. A P-line lists comma-separated
// names, each followed by an orientation suffix:
//
//	s1+,s2-,s3+
//
// A W-line concatenates names with no delimiter, each preceded by an
// orientation prefix:
//
//	>s1<s2>s3
//
// Both decode to the same ordered []model.SegmentRef.
package parse

import (
	"fmt"
	"strings"

	"github.com/phobologic/gfapath2fa/internal/model"
)

// Encoding selects the path descriptor grammar.
type Encoding int

const (
	EncodingP Encoding = iota // comma-separated, trailing +/-
	EncodingW                 // undelimited, leading >/<
)

// EncodingFor returns the grammar used by lines with the given tag.
func EncodingFor(tag string) (Encoding, bool) {
	switch tag {
	case "P":
		return EncodingP, true
	case "W":
		return EncodingW, true
	}
	return 0, false
}

// Parse decodes s with the grammar selected by e.
func (e Encoding) Parse(s string) ([]model.SegmentRef, error) {
	if e == EncodingW {
		return ParseW(s)
	}
	return ParseP(s)
}

// ParseP decodes a P-line segment list such as "s1+,s2-".
func ParseP(s string) ([]model.SegmentRef, error) {
	if s == "" {
		return nil, &model.Error{Kind: model.ErrMalformedPathDescriptor, Detail: "empty segment list"}
	}

	tokens := strings.Split(s, ",")
	refs := make([]model.SegmentRef, 0, len(tokens))
	for i, tok := range tokens {
		if tok == "" {
			return nil, &model.Error{
				Kind:   model.ErrInvalidOrientationMarker,
				Detail: fmt.Sprintf("empty token at position %d", i+1),
			}
		}

		var o model.Orientation
		switch tok[len(tok)-1] {
		case '+':
			o = model.Forward
		case '-':
			o = model.Reverse
		default:
			return nil, &model.Error{
				Kind:   model.ErrInvalidOrientationMarker,
				Detail: fmt.Sprintf("token %q does not end in + or -", tok),
			}
		}

		name := tok[:len(tok)-1]
		if name == "" {
			return nil, &model.Error{
				Kind:   model.ErrMalformedPathDescriptor,
				Detail: fmt.Sprintf("token %q has no segment name", tok),
			}
		}
		refs = append(refs, model.SegmentRef{Name: name, Orientation: o})
	}
	return refs, nil
}

// ParseW decodes a W-line walk such as ">s1<s2". Every '>' or '<' ends the
// previous name and starts the next; the last name runs to end of string.
func ParseW(s string) ([]model.SegmentRef, error) {
	if s == "" {
		return nil, &model.Error{Kind: model.ErrMalformedPathDescriptor, Detail: "empty walk"}
	}
	if !isWalkMarker(s[0]) {
		return nil, &model.Error{
			Kind:   model.ErrInvalidOrientationMarker,
			Detail: fmt.Sprintf("walk must start with > or <, got %q", s[0]),
		}
	}

	var refs []model.SegmentRef
	start := 0
	for i := 1; i <= len(s); i++ {
		if i < len(s) && !isWalkMarker(s[i]) {
			continue
		}
		name := s[start+1 : i]
		if name == "" {
			return nil, &model.Error{
				Kind:   model.ErrInvalidOrientationMarker,
				Detail: fmt.Sprintf("empty segment name at offset %d", start),
			}
		}
		o := model.Forward
		if s[start] == '<' {
			o = model.Reverse
		}
		refs = append(refs, model.SegmentRef{Name: name, Orientation: o})
		start = i
	}
	return refs, nil
}

// FormatP is the inverse of ParseP.
func FormatP(refs []model.SegmentRef) string {
	var b strings.Builder
	for i, r := range refs {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(r.Name)
		b.WriteString(r.Orientation.String())
	}
	return b.String()
}

// FormatW is the inverse of ParseW.
func FormatW(refs []model.SegmentRef) string {
	var b strings.Builder
	for _, r := range refs {
		if r.Orientation == model.Reverse {
			b.WriteByte('<')
		} else {
			b.WriteByte('>')
		}
		b.WriteString(r.Name)
	}
	return b.String()
}

func isWalkMarker(c byte) bool {
	return c == '>' || c == '<'
}
