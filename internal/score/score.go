// Package score computes per-window compressibility ratios.
//
// A window's text is compressed with gzip at maximum effort and the ratio is
// the uncompressed length divided by the compressed payload length. A gzip
// member carries a fixed 10-byte header that is independent of the payload,
// so it is subtracted from the raw compressed length first; otherwise short
// windows would be dominated by envelope cost rather than content.
package score

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/klauspost/compress/gzip"
)

// EnvelopeOverhead is the fixed size of a gzip member header in bytes.
const EnvelopeOverhead = 10

// ErrEnvelopeUnderflow reports a compressed length at or below the envelope
// overhead, for which no meaningful payload length exists.
var ErrEnvelopeUnderflow = errors.New("compressed length does not exceed envelope overhead")

// Result is the compressibility measurement for one window.
type Result struct {
	UncompressedLen int
	PayloadLen      int // compressed length minus EnvelopeOverhead
	Ratio           float64
}

// Scorer compresses windows and derives their compressibility ratio.
// It reuses a single encoder and buffer across calls; not safe for
// concurrent use.
type Scorer struct {
	buf bytes.Buffer
	zw  *gzip.Writer
}

// New creates a Scorer configured for maximum compression effort.
func New() (*Scorer, error) {
	s := &Scorer{}
	zw, err := gzip.NewWriterLevel(&s.buf, gzip.BestCompression)
	if err != nil {
		return nil, fmt.Errorf("creating gzip encoder: %w", err)
	}
	s.zw = zw
	return s, nil
}

// Score compresses seq and returns the overhead-corrected ratio.
// seq is read-only; no reference to it is retained.
func (s *Scorer) Score(seq []byte) (Result, error) {
	s.buf.Reset()
	s.zw.Reset(&s.buf)

	if _, err := s.zw.Write(seq); err != nil {
		return Result{}, fmt.Errorf("compressing window: %w", err)
	}
	if err := s.zw.Close(); err != nil {
		return Result{}, fmt.Errorf("compressing window: %w", err)
	}

	payload, err := payloadLen(s.buf.Len())
	if err != nil {
		return Result{}, err
	}

	return Result{
		UncompressedLen: len(seq),
		PayloadLen:      payload,
		Ratio:           float64(len(seq)) / float64(payload),
	}, nil
}

// payloadLen subtracts the envelope overhead from a raw compressed length.
// The subtraction is checked: a result of zero or less is an error, never a
// wrapped or negative length.
func payloadLen(compressedLen int) (int, error) {
	payload := compressedLen - EnvelopeOverhead
	if payload <= 0 {
		return 0, fmt.Errorf("%w: %d <= %d", ErrEnvelopeUnderflow, compressedLen, EnvelopeOverhead)
	}
	return payload, nil
}
