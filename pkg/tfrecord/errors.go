package tfrecord

import (
	"errors"
	"fmt"
)

// Errors
var (
	ErrCorruptContainer = errors.New("tfrecord: corrupt container")
	ErrChecksumMismatch = errors.New("tfrecord: checksum mismatch")
	ErrClosed           = errors.New("tfrecord: reader is closed")
	ErrNotSeekable      = errors.New("tfrecord: source is not seekable")
)

// Field identifies one of the four framed fields of a record
type Field int

const (
	FieldLength Field = iota
	FieldLengthToken
	FieldPayload
	FieldPayloadToken
)

func (f Field) String() string {
	switch f {
	case FieldLength:
		return "length"
	case FieldLengthToken:
		return "length token"
	case FieldPayload:
		return "payload"
	case FieldPayloadToken:
		return "payload token"
	default:
		return fmt.Sprintf("field(%d)", int(f))
	}
}

// shortReadMessage describes a truncated field
func (f Field) shortReadMessage() string {
	switch f {
	case FieldLength:
		return "failed to read the record size"
	case FieldLengthToken:
		return "failed to read the start token"
	case FieldPayload:
		return "failed to read the record"
	case FieldPayloadToken:
		return "failed to read the end token"
	default:
		return "failed to read " + f.String()
	}
}

// CorruptError reports a container whose framing cannot be decoded: a field
// was cut short, or the declared length is unusable.
type CorruptError struct {
	Field  Field
	Record int64 // zero-based record number since open or the last Seek
	Offset int64 // byte offset of the record's length field
	Want   int   // bytes the field needed
	Got    int   // bytes actually available
	Reason string
}

func (e *CorruptError) Error() string {
	msg := e.Reason
	if msg == "" {
		msg = fmt.Sprintf("%s (got %d of %d bytes)", e.Field.shortReadMessage(), e.Got, e.Want)
	}
	return fmt.Sprintf("%s: record %d at offset %d: %s", ErrCorruptContainer, e.Record, e.Offset, msg)
}

func (e *CorruptError) Is(target error) bool {
	return target == ErrCorruptContainer
}

// ChecksumError reports a stored integrity token that does not match the
// recomputed one. Field is FieldLengthToken or FieldPayloadToken.
type ChecksumError struct {
	Field     Field
	Record    int64
	Offset    int64
	Algorithm string
	Want      uint32 // token stored in the container
	Got       uint32 // token computed from the data
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("%s: record %d at offset %d: %s %s %#08x != %#08x",
		ErrChecksumMismatch, e.Record, e.Offset, e.Field, e.Algorithm, e.Want, e.Got)
}

func (e *ChecksumError) Is(target error) bool {
	return target == ErrChecksumMismatch
}

// IOError wraps a failure of the underlying byte source that is unrelated to
// the container framing.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("tfrecord: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("tfrecord: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}
