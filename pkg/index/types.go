package index

import (
	"errors"

	"github.com/hashicorp/go-hclog"
	"github.com/segmentio/ksuid"

	"github.com/ssargent/tfrecord/pkg/tfrecord"
)

const defaultBatchSize = 4096

// Errors
var (
	ErrNotFound = errors.New("index: record not found")
	ErrNoIndex  = errors.New("index: no index metadata")
	ErrStale    = errors.New("index: entry does not match container")
)

// Entry locates one record inside a container
type Entry struct {
	Record int64  // Zero-based record number
	Offset int64  // Byte offset of the record's length field
	Length uint64 // Payload length in bytes
}

// FrameSize returns the on-disk size of the record including framing
func (e Entry) FrameSize() int64 {
	return int64(e.Length) + tfrecord.FrameOverhead
}

// Meta describes a completed index build
type Meta struct {
	BuildID        ksuid.KSUID
	Count          int64  // Number of indexed records
	ContainerBytes int64  // Offset just past the last indexed record
	Validated      bool   // Whether tokens were checked during the build
	Checksum       string // Token algorithm used when Validated
}

// BuildConfig holds configuration for an index build
type BuildConfig struct {
	Dir       string       // Pebble directory to (re)create the index in
	BatchSize int          // Entries per committed batch
	Logger    hclog.Logger // Optional; discards output when nil
}
