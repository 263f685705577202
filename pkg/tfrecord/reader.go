package tfrecord

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"iter"
	"math"
	"os"

	"github.com/ssargent/tfrecord/pkg/checksum"
)

// Reader decodes records from a container, one at a time.
//
// A Reader is not safe for concurrent use. The slice returned by Read aliases
// an internal buffer and is only valid until the next call to Read.
type Reader struct {
	raw     io.Reader // the source as handed to us, used for Seek
	src     io.Reader // raw, possibly behind a bufio.Reader
	closer  io.Closer // non-nil when the reader owns the source
	path    string
	bufSize int

	verify        checksum.Checksum // nil when validation is off
	maxRecordSize uint64

	header  [headerSize]byte
	trailer [tokenSize]byte
	scratch scratch

	offset int64 // offset of the next record boundary
	record int64 // records consumed since open or the last Seek
	eof    bool
	err    error // sticky framing or source error
	closed bool
}

// Open opens the container at path for sequential reading
func Open(path string, validate bool) (*Reader, error) {
	return OpenReader(ReaderConfig{FilePath: path, ValidateIntegrity: validate})
}

// OpenReader opens the container named by config.FilePath. The returned
// Reader owns the file and closes it on Close.
func OpenReader(config ReaderConfig) (*Reader, error) {
	file, err := os.Open(config.FilePath)
	if err != nil {
		return nil, &IOError{Op: "open", Path: config.FilePath, Err: err}
	}

	if config.StartOffset > 0 {
		if _, err := file.Seek(config.StartOffset, io.SeekStart); err != nil {
			file.Close()
			return nil, &IOError{Op: "seek", Path: config.FilePath, Err: err}
		}
	}

	r := NewReader(file, config)
	r.closer = file
	return r, nil
}

// NewReader creates a reader over src. The caller keeps ownership of src;
// Close does not close it. config.StartOffset is recorded as the current
// offset but src is not repositioned.
func NewReader(src io.Reader, config ReaderConfig) *Reader {
	bufSize := config.BufferSize
	if bufSize == 0 {
		bufSize = defaultBufferSize
	}

	r := &Reader{
		raw:           src,
		path:          config.FilePath,
		bufSize:       bufSize,
		maxRecordSize: config.MaxRecordSize,
		scratch:       newScratch(config.InitialBufferSize),
		offset:        config.StartOffset,
	}
	r.src = r.buffered(src)

	if config.ValidateIntegrity {
		r.verify = config.Checksum
		if r.verify == nil {
			r.verify = checksum.Default
		}
	}
	return r
}

func (r *Reader) buffered(src io.Reader) io.Reader {
	if r.bufSize < 0 {
		return src
	}
	return bufio.NewReaderSize(src, r.bufSize)
}

// Read returns the next record. ok is false once the container is exhausted
// at a record boundary, and stays false on every later call. Any framing or
// checksum failure is returned as an error and repeated by later calls.
func (r *Reader) Read() (record []byte, ok bool, err error) {
	if r.closed {
		return nil, false, ErrClosed
	}
	if r.err != nil {
		return nil, false, r.err
	}
	if r.eof {
		return nil, false, nil
	}

	start := r.offset

	res := readFull(r.src, r.header[:lengthSize])
	switch res.status {
	case endOfStream:
		r.eof = true
		return nil, false, nil
	case partial:
		return r.fail(r.shortRead(FieldLength, start, lengthSize, res.n))
	case failed:
		return r.fail(r.sourceError(res.err))
	}

	res = readFull(r.src, r.header[lengthSize:])
	if res.status != full {
		return r.fail(r.framingError(res, FieldLengthToken, start, tokenSize))
	}

	lengthBytes := r.header[:lengthSize]
	if r.verify != nil {
		stored := binary.LittleEndian.Uint32(r.header[lengthSize:])
		// Check before sizing the buffer so a garbled prefix never drives an allocation.
		if got := r.verify.Sum(lengthBytes); got != stored {
			return r.fail(r.mismatch(FieldLengthToken, start, stored, got))
		}
	}

	length := binary.LittleEndian.Uint64(lengthBytes)
	if length > math.MaxInt || (r.maxRecordSize > 0 && length > r.maxRecordSize) {
		return r.fail(&CorruptError{
			Field:  FieldLength,
			Record: r.record,
			Offset: start,
			Reason: r.oversizeReason(length),
		})
	}

	payload, res := r.readPayload(int(length))
	if res.status != full {
		return r.fail(r.framingError(res, FieldPayload, start, int(length)))
	}

	res = readFull(r.src, r.trailer[:])
	if res.status != full {
		return r.fail(r.framingError(res, FieldPayloadToken, start, tokenSize))
	}

	if r.verify != nil {
		stored := binary.LittleEndian.Uint32(r.trailer[:])
		if got := r.verify.Sum(payload); got != stored {
			return r.fail(r.mismatch(FieldPayloadToken, start, stored, got))
		}
	}

	r.offset += int64(FrameOverhead) + int64(length)
	r.record++
	return payload, true, nil
}

// readPayload fills the scratch buffer with n payload bytes. Buffers up to
// eagerGrowLimit, or already large enough, are filled in one read.
func (r *Reader) readPayload(n int) ([]byte, readResult) {
	if n <= eagerGrowLimit || n <= r.scratch.capacity() {
		payload := r.scratch.grow(n)
		return payload, readFull(r.src, payload)
	}

	filled := 0
	for filled < n {
		step := max(2*filled, eagerGrowLimit)
		step = min(step, n)
		buf := r.scratch.resize(step, filled)
		res := readFull(r.src, buf[filled:step])
		filled += res.n
		if res.status != full {
			if res.status == endOfStream && filled > 0 {
				res.status = partial
			}
			res.n = filled
			return nil, res
		}
	}
	return r.scratch.grow(n), readResult{status: full, n: n}
}

// Records returns a single-use sequence over the remaining records. An error
// is yielded once with a nil record and ends the sequence. Records are only
// valid for the duration of the loop body.
func (r *Reader) Records() iter.Seq2[[]byte, error] {
	return func(yield func([]byte, error) bool) {
		for {
			record, ok, err := r.Read()
			if err != nil {
				yield(nil, err)
				return
			}
			if !ok {
				return
			}
			if !yield(record, nil) {
				return
			}
		}
	}
}

// Iterator returns a streaming iterator for records
func (r *Reader) Iterator() RecordIterator {
	return &recordIterator{reader: r}
}

// Count exhausts the reader and returns the number of records read
func (r *Reader) Count() (int, error) {
	n := 0
	for {
		_, ok, err := r.Read()
		if err != nil {
			return n, err
		}
		if !ok {
			return n, nil
		}
		n++
	}
}

// Offset returns the byte offset of the next record boundary
func (r *Reader) Offset() int64 {
	return r.offset
}

// Position returns the number of records read since open or the last Seek
func (r *Reader) Position() int64 {
	return r.record
}

// BufferCapacity returns the current scratch buffer capacity
func (r *Reader) BufferCapacity() int {
	return r.scratch.capacity()
}

// Validating reports whether tokens are checked
func (r *Reader) Validating() bool {
	return r.verify != nil
}

// ChecksumName returns the token algorithm in use, or "" when not validating
func (r *Reader) ChecksumName() string {
	if r.verify == nil {
		return ""
	}
	return r.verify.Name()
}

// Seek repositions the reader at offset, which must be a record boundary.
// It clears end-of-stream and any previous error.
func (r *Reader) Seek(offset int64) error {
	if r.closed {
		return ErrClosed
	}
	seeker, ok := r.raw.(io.Seeker)
	if !ok {
		return ErrNotSeekable
	}
	if _, err := seeker.Seek(offset, io.SeekStart); err != nil {
		return &IOError{Op: "seek", Path: r.path, Err: err}
	}

	r.src = r.buffered(r.raw) // Recreate reader to clear buffer
	r.offset = offset
	r.record = 0
	r.eof = false
	r.err = nil
	return nil
}

// Close releases the source if the reader owns it. Calling Close more than
// once is a no-op.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	r.scratch.release()
	r.src = nil

	if r.closer == nil {
		return nil
	}
	if err := r.closer.Close(); err != nil {
		return &IOError{Op: "close", Path: r.path, Err: err}
	}
	return nil
}

func (r *Reader) fail(err error) ([]byte, bool, error) {
	r.err = err
	return nil, false, err
}

func (r *Reader) framingError(res readResult, field Field, start int64, want int) error {
	if res.status == failed {
		return r.sourceError(res.err)
	}
	// endOfStream here means zero bytes of a field that was required
	return r.shortRead(field, start, want, res.n)
}

func (r *Reader) shortRead(field Field, start int64, want, got int) error {
	return &CorruptError{
		Field:  field,
		Record: r.record,
		Offset: start,
		Want:   want,
		Got:    got,
	}
}

func (r *Reader) sourceError(err error) error {
	return &IOError{Op: "read", Path: r.path, Err: err}
}

func (r *Reader) mismatch(field Field, start int64, want, got uint32) error {
	return &ChecksumError{
		Field:     field,
		Record:    r.record,
		Offset:    start,
		Algorithm: r.verify.Name(),
		Want:      want,
		Got:       got,
	}
}

func (r *Reader) oversizeReason(length uint64) string {
	if r.maxRecordSize > 0 && length > r.maxRecordSize {
		return fmt.Sprintf("record size %d exceeds limit %d", length, r.maxRecordSize)
	}
	return fmt.Sprintf("record size %d does not fit in memory", length)
}

// recordIterator implements RecordIterator on top of Read
type recordIterator struct {
	reader *Reader
	record []byte
	err    error
}

func (it *recordIterator) Next() bool {
	var ok bool
	it.record, ok, it.err = it.reader.Read()
	return ok
}

func (it *recordIterator) Record() []byte {
	return it.record
}

func (it *recordIterator) Err() error {
	return it.err
}

func (it *recordIterator) Close() error {
	// Don't close the underlying reader as it's owned by the caller
	return nil
}
