// Package seq provides DNA sequence utilities.
//
// Reverse complement maps A<->T, C<->G and N<->N, preserving case. Any other
// symbol (IUPAC ambiguity codes, gaps, '*', non-ASCII runes) is passed
// through unchanged by ReverseComplement and rejected by
// ReverseComplementStrict.
package seq

import (
	"fmt"
	"unicode/utf8"
)

var complement [256]byte

// strictOK marks the bytes accepted in strict mode.
var strictOK [256]bool

func init() {
	for i := range complement {
		complement[i] = byte(i)
	}
	pairs := []struct{ a, b byte }{
		{'A', 'T'}, {'C', 'G'}, {'N', 'N'},
		{'a', 't'}, {'c', 'g'}, {'n', 'n'},
	}
	for _, p := range pairs {
		complement[p.a] = p.b
		complement[p.b] = p.a
		strictOK[p.a] = true
		strictOK[p.b] = true
	}
}

// SymbolError reports a byte outside {A,C,G,T,N} (either case).
// Pos is the 0-based offset in the input sequence.
type SymbolError struct {
	Symbol byte
	Pos    int
}

func (e *SymbolError) Error() string {
	return fmt.Sprintf("symbol %q at position %d", e.Symbol, e.Pos)
}

// ReverseComplement returns the reverse complement of s. Multibyte UTF-8
// symbols keep their byte order.
func ReverseComplement(s string) string {
	if !isASCII(s) {
		return reverseComplementRunes(s)
	}
	n := len(s)
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		out[n-1-i] = complement[s[i]]
	}
	return string(out)
}

func reverseComplementRunes(s string) string {
	runes := []rune(s)
	out := make([]byte, 0, len(s))
	for i := len(runes) - 1; i >= 0; i-- {
		r := runes[i]
		if r < utf8.RuneSelf {
			out = append(out, complement[byte(r)])
			continue
		}
		out = utf8.AppendRune(out, r)
	}
	return string(out)
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// ReverseComplementStrict is like ReverseComplement but fails on the first
// byte outside {A,C,G,T,N} (either case).
func ReverseComplementStrict(s string) (string, error) {
	if err := Validate(s); err != nil {
		return "", err
	}
	return ReverseComplement(s), nil
}

// Validate returns a *SymbolError for the first byte of s outside
// {A,C,G,T,N} (either case), or nil.
func Validate(s string) error {
	for i := 0; i < len(s); i++ {
		if !strictOK[s[i]] {
			return &SymbolError{Symbol: s[i], Pos: i}
		}
	}
	return nil
}
