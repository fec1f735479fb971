package utils

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"unsafe"

	"github.com/rs/zerolog/log"
)

var ErrLineTooLong = errors.New("line longer than read buffer")

func CreateFile(path string) (*os.File, error) {
	file, err := os.Create(path)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create file: " + path)
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	return file, nil
}

// Decimal unsigned parse without allocation. ok is false on an empty string,
// a non-digit byte or overflow.
func ParseUint64(s string) (n uint64, ok bool) {
	if s == "" {
		return 0, false
	}
	for i := 0; i < len(s); i++ {
		d := s[i] - '0'
		if d > 9 || n > (math.MaxUint64-uint64(d))/10 {
			return 0, false
		}
		n = n*10 + uint64(d)
	}
	return n, true
}

var asciiSpace = [256]bool{'\t': true, '\n': true, '\v': true, '\f': true, '\r': true, ' ': true}

// Splits an ASCII line on whitespace into dst, returning how many fields were set.
// The strings alias line, so they are only valid until the line's buffer is reused.
// Fields past len(dst) are dropped.
func SplitFields(dst []string, line []byte) (n int) {
	for i := 0; i < len(line) && n < len(dst); {
		for i < len(line) && asciiSpace[line[i]] {
			i++
		}
		start := i
		for i < len(line) && !asciiSpace[line[i]] {
			i++
		}
		if i > start {
			b := line[start:i]
			dst[n] = *(*string)(Noescape(unsafe.Pointer(&b)))
			n++
		}
	}
	return n
}

// Reads newline-terminated lines into one fixed buffer. Lines returned by Scan
// point into that buffer and are overwritten by the next call.
type LineScanner struct {
	r          io.Reader
	buf        []byte
	start, end int
	err        error
}

func NewLineScanner(r io.Reader, size int) *LineScanner {
	return &LineScanner{r: r, buf: make([]byte, size)}
}

// The next line without its newline, or nil when input is exhausted or failed (see Err).
func (s *LineScanner) Scan() []byte {
	for {
		if i := bytes.IndexByte(s.buf[s.start:s.end], '\n'); i >= 0 {
			line := s.buf[s.start : s.start+i]
			s.start += i + 1
			return line
		}
		if s.err != nil {
			if s.start < s.end && s.err == io.EOF {
				line := s.buf[s.start:s.end]
				s.start = s.end
				return line
			}
			return nil
		}
		if s.start > 0 {
			s.end = copy(s.buf, s.buf[s.start:s.end])
			s.start = 0
		}
		if s.end == len(s.buf) {
			s.err = ErrLineTooLong
			return nil
		}
		n, err := s.r.Read(s.buf[s.end:])
		s.end += n
		if err != nil {
			s.err = err
		}
	}
}

// The error that stopped Scan; nil at a clean end of input.
func (s *LineScanner) Err() error {
	if s.err == io.EOF {
		return nil
	}
	return s.err
}
