package tfrecord

import (
	"errors"
	"io"
)

// Frame layout: length(8) | length token(4) | payload | payload token(4)
const (
	lengthSize = 8
	tokenSize  = 4
	headerSize = lengthSize + tokenSize

	// FrameOverhead is the number of framing bytes around every payload
	FrameOverhead = headerSize + tokenSize

	// Payloads larger than this are read in growing steps rather than
	// reserved up front from an untrusted length.
	eagerGrowLimit = 16 << 20
)

type readStatus int

const (
	endOfStream readStatus = iota // nothing was available
	partial                       // some but not all bytes were available
	full                          // dst was filled
	failed                        // the source returned an error other than EOF
)

type readResult struct {
	status readStatus
	n      int
	err    error
}

// readFull reads exactly len(dst) bytes and classifies the outcome. A zero
// length dst is always full.
func readFull(r io.Reader, dst []byte) readResult {
	n, err := io.ReadFull(r, dst)
	switch {
	case err == nil:
		return readResult{status: full, n: n}
	case errors.Is(err, io.ErrUnexpectedEOF):
		return readResult{status: partial, n: n}
	case err == io.EOF && n == 0:
		return readResult{status: endOfStream}
	default:
		return readResult{status: failed, n: n, err: err}
	}
}

// scratch is the reusable payload buffer. It grows to max(n, 2*cap) and
// never shrinks.
type scratch struct {
	buf []byte
}

func newScratch(size int) scratch {
	if size <= 0 {
		return scratch{}
	}
	return scratch{buf: make([]byte, size)}
}

// grow returns a slice of exactly n bytes backed by the scratch buffer
func (s *scratch) grow(n int) []byte {
	return s.resize(n, 0)
}

// resize is grow that preserves the first keep bytes across a reallocation
func (s *scratch) resize(n, keep int) []byte {
	if s.buf == nil {
		s.buf = []byte{}
	}
	if n > cap(s.buf) {
		size := 2 * cap(s.buf)
		if size < n {
			size = n
		}
		buf := make([]byte, size)
		copy(buf, s.buf[:keep])
		s.buf = buf
	}
	return s.buf[:n]
}

func (s *scratch) capacity() int {
	return cap(s.buf)
}

func (s *scratch) release() {
	s.buf = nil
}
