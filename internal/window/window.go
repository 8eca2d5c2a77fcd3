// Package window slices per-chromosome residue streams into fixed-length,
// non-overlapping windows.
package window

import "errors"

// ErrInvalidLength reports a non-positive window length.
var ErrInvalidLength = errors.New("window length must be a positive integer")

// Window is a fixed-length slice of a chromosome's residues.
type Window struct {
	Seq   []byte // exactly seqlen residues, owned by the caller after emit
	Index int    // 0-based, per chromosome
}

// Accumulator buffers residues for the active chromosome and extracts
// full-length windows as they become available. Residues shorter than the
// window length are held until more arrive, or discarded on Reset.
type Accumulator struct {
	seqlen int
	buf    []byte
	index  int
}

// New creates an Accumulator for the given window length.
func New(seqlen int) (*Accumulator, error) {
	if seqlen <= 0 {
		return nil, ErrInvalidLength
	}
	return &Accumulator{
		seqlen: seqlen,
		buf:    make([]byte, 0, 2*seqlen),
	}, nil
}

// Append adds residues to the buffer and emits every full window now
// available. A single long chunk can produce multiple windows; emission
// stops at the first emit error.
func (a *Accumulator) Append(chunk []byte, emit func(Window) error) error {
	a.buf = append(a.buf, chunk...)

	for len(a.buf) >= a.seqlen {
		seq := make([]byte, a.seqlen)
		copy(seq, a.buf[:a.seqlen])

		if err := emit(Window{Seq: seq, Index: a.index}); err != nil {
			return err
		}

		a.buf = a.buf[:copy(a.buf, a.buf[a.seqlen:])]
		a.index++
	}
	return nil
}

// Reset discards any buffered partial tail and rewinds the window index.
// It never emits: short tails are dropped, not flushed.
func (a *Accumulator) Reset() {
	a.buf = a.buf[:0]
	a.index = 0
}

// Pending reports how many residues are buffered but not yet emitted.
func (a *Accumulator) Pending() int {
	return len(a.buf)
}
