// Package fasta writes resolved paths as FASTA records.
package fasta

import (
	"bufio"
	"io"

	"github.com/phobologic/gfapath2fa/internal/model"
)

// A Writer writes records in FASTA format: a ">name" header line followed
// by the sequence. The header is never wrapped.
type Writer struct {
	// Columns is the width at which sequence lines are wrapped.
	// A value <= 0 writes each sequence on a single line.
	Columns int
	buf     *bufio.Writer
}

// NewWriter creates a Writer with wrapping disabled.
func NewWriter(w io.Writer) *Writer {
	return &Writer{buf: bufio.NewWriter(w)}
}

// Write writes a single record. Call Flush when done.
func (w *Writer) Write(rec model.Record) error {
	if err := w.buf.WriteByte('>'); err != nil {
		return err
	}
	if _, err := w.buf.WriteString(rec.Name); err != nil {
		return err
	}
	if err := w.buf.WriteByte('\n'); err != nil {
		return err
	}

	s := rec.Sequence
	if w.Columns <= 0 || len(s) <= w.Columns {
		if _, err := w.buf.WriteString(s); err != nil {
			return err
		}
		return w.buf.WriteByte('\n')
	}
	for start := 0; start < len(s); start += w.Columns {
		end := min(start+w.Columns, len(s))
		if _, err := w.buf.WriteString(s[start:end]); err != nil {
			return err
		}
		if err := w.buf.WriteByte('\n'); err != nil {
			return err
		}
	}
	return nil
}

// Flush writes any buffered data to the underlying io.Writer.
func (w *Writer) Flush() error {
	return w.buf.Flush()
}

// WriteAll writes every record and flushes.
func (w *Writer) WriteAll(records []model.Record) error {
	for _, rec := range records {
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return w.Flush()
}
