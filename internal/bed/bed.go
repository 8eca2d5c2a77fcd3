// Package bed formats window results as six-column BED-like records and
// writes them to an output sink.
package bed

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"github.com/klauspost/compress/gzip"
)

// Framing selects how formatted records are written to the sink. It is an
// explicit configuration value provided by the caller; this package never
// inspects filenames.
type Framing int

const (
	// FramingPlain writes records as plain tab-separated text.
	FramingPlain Framing = iota
	// FramingGzipPerLine wraps each record line in its own complete gzip
	// member and concatenates the members. A multistream gzip reader
	// recovers the plain text. This unusual layout is kept for
	// compatibility with existing output consumers.
	FramingGzipPerLine
)

// Record is one window's annotation: 0-based half-open coordinates, the
// uppercased window text, its compressibility ratio, and the forward strand.
type Record struct {
	Chrom string
	Start int
	End   int
	Seq   []byte
	Ratio float64
}

// AppendText appends the record's tab-separated line to dst, including the
// trailing newline, and returns the extended slice.
func (r Record) AppendText(dst []byte) []byte {
	dst = append(dst, r.Chrom...)
	dst = append(dst, '\t')
	dst = strconv.AppendInt(dst, int64(r.Start), 10)
	dst = append(dst, '\t')
	dst = strconv.AppendInt(dst, int64(r.End), 10)
	dst = append(dst, '\t')
	dst = append(dst, r.Seq...)
	dst = append(dst, '\t')
	dst = strconv.AppendFloat(dst, r.Ratio, 'g', -1, 64)
	dst = append(dst, '\t', '+', '\n')
	return dst
}

// Encode produces the on-the-wire bytes for a single record under the given
// framing. Each call is independent, so records can be encoded out of order
// and still concatenate into a valid output stream.
func Encode(rec Record, framing Framing) ([]byte, error) {
	line := rec.AppendText(nil)
	if framing == FramingPlain {
		return line, nil
	}

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write(line); err != nil {
		return nil, fmt.Errorf("compressing record: %w", err)
	}
	if err := gz.Close(); err != nil {
		return nil, fmt.Errorf("compressing record: %w", err)
	}
	return buf.Bytes(), nil
}

// Writer emits records to a sink in strict call order. It reuses internal
// buffers across records; not safe for concurrent use.
type Writer struct {
	w       io.Writer
	framing Framing
	line    []byte
	gzbuf   bytes.Buffer
	gz      *gzip.Writer
}

// NewWriter creates a Writer targeting w with the given framing.
func NewWriter(w io.Writer, framing Framing) *Writer {
	bw := &Writer{w: w, framing: framing}
	if framing == FramingGzipPerLine {
		bw.gz = gzip.NewWriter(&bw.gzbuf)
	}
	return bw
}

// Write formats rec and appends it to the sink.
func (w *Writer) Write(rec Record) error {
	w.line = rec.AppendText(w.line[:0])

	if w.framing == FramingPlain {
		if _, err := w.w.Write(w.line); err != nil {
			return fmt.Errorf("writing record: %w", err)
		}
		return nil
	}

	w.gzbuf.Reset()
	w.gz.Reset(&w.gzbuf)
	if _, err := w.gz.Write(w.line); err != nil {
		return fmt.Errorf("compressing record: %w", err)
	}
	if err := w.gz.Close(); err != nil {
		return fmt.Errorf("compressing record: %w", err)
	}
	if _, err := w.w.Write(w.gzbuf.Bytes()); err != nil {
		return fmt.Errorf("writing record: %w", err)
	}
	return nil
}
