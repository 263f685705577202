package api

import (
	"context"

	"github.com/ssargent/tfrecord/pkg/index"
)

// RecordSource is the read-only view of a container that the server exposes
type RecordSource interface {
	// Meta describes the index the source serves from
	Meta() index.Meta

	// Record returns a copy of record n
	Record(n int64) ([]byte, error)

	// Verify scans the whole container with validation enabled
	Verify(ctx context.Context) (int, error)
}
