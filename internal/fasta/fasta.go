// Package fasta provides streaming FASTA parsing.
package fasta

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
)

// ErrEmptyLine reports a zero-length line, which cannot be classified as
// either a header or a sequence line.
var ErrEmptyLine = errors.New("empty line")

// Event is a single parsed line of a FASTA stream: either a record header
// or a chunk of sequence characters belonging to the current record.
type Event struct {
	Header bool
	Name   string // header name, everything after '>', verbatim
	Seq    []byte // uppercased sequence chunk; valid until the next Next call
}

// Scanner reads FASTA events from an input stream.
type Scanner struct {
	reader  *bufio.Reader
	line    []byte // reusable buffer for reading lines
	seq     []byte // reusable buffer for uppercased sequence chunks
	lineNum int
}

// NewScanner creates a new FASTA scanner.
func NewScanner(r io.Reader) *Scanner {
	return &Scanner{
		reader: bufio.NewReaderSize(r, 1<<20), // 1MB buffer
		line:   make([]byte, 0, 512),
		seq:    make([]byte, 0, 512),
	}
}

// Next reads and classifies the next line.
// Returns io.EOF when no more lines are available.
func (s *Scanner) Next() (Event, error) {
	line, err := s.readLine()
	if err != nil {
		return Event{}, err
	}
	s.lineNum++

	if len(line) == 0 {
		return Event{}, fmt.Errorf("line %d: %w", s.lineNum, ErrEmptyLine)
	}

	if line[0] == '>' {
		return Event{Header: true, Name: string(line[1:])}, nil
	}

	s.seq = append(s.seq[:0], line...)
	upperASCII(s.seq)
	return Event{Seq: s.seq}, nil
}

// readLine reads a line from the input, stripping the newline.
// Reuses an internal buffer to minimize allocations.
func (s *Scanner) readLine() ([]byte, error) {
	s.line = s.line[:0]

	for {
		segment, isPrefix, err := s.reader.ReadLine()
		if err != nil {
			return nil, err
		}

		s.line = append(s.line, segment...)

		if !isPrefix {
			break
		}
	}

	// Trim any trailing CR (for Windows line endings)
	s.line = bytes.TrimSuffix(s.line, []byte{'\r'})

	return s.line, nil
}

func upperASCII(b []byte) {
	for i, c := range b {
		if 'a' <= c && c <= 'z' {
			b[i] = c - ('a' - 'A')
		}
	}
}
