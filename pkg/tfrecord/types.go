package tfrecord

import "github.com/ssargent/tfrecord/pkg/checksum"

const defaultBufferSize = 64 * 1024

// ReaderConfig holds configuration for a record reader
type ReaderConfig struct {
	FilePath          string            // Path to the container (OpenReader only)
	StartOffset       int64             // Offset of the first record to read; must be a record boundary
	ValidateIntegrity bool              // Verify both tokens of every record
	Checksum          checksum.Checksum // Token algorithm; checksum.Default when nil
	BufferSize        int               // Read buffer size (0 = 64KiB, negative = unbuffered)
	InitialBufferSize int               // Initial scratch capacity
	MaxRecordSize     uint64            // Largest accepted payload (0 = unlimited)
}

// RecordIterator provides streaming access to records
type RecordIterator interface {
	Next() bool
	Record() []byte
	Err() error
	Close() error
}
