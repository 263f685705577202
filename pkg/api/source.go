package api

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"github.com/ssargent/tfrecord/pkg/index"
	"github.com/ssargent/tfrecord/pkg/tfrecord"
)

// ContainerSource serves records from one container file through its
// offset index. Random reads share a single reader under a mutex; Verify
// opens its own handle.
type ContainerSource struct {
	config tfrecord.ReaderConfig
	index  *index.Index

	mu     sync.Mutex
	reader *tfrecord.Reader
}

// NewContainerSource opens config.FilePath for random access through ix
func NewContainerSource(config tfrecord.ReaderConfig, ix *index.Index) (*ContainerSource, error) {
	config.StartOffset = 0
	reader, err := tfrecord.OpenReader(config)
	if err != nil {
		return nil, err
	}
	return &ContainerSource{config: config, index: ix, reader: reader}, nil
}

func (s *ContainerSource) Meta() index.Meta {
	return s.index.Meta()
}

func (s *ContainerSource) Record(n int64) ([]byte, error) {
	e, err := s.index.Lookup(n)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := index.ReadAt(s.reader, e)
	if err != nil {
		return nil, err
	}
	return bytes.Clone(record), nil
}

func (s *ContainerSource) Verify(ctx context.Context) (int, error) {
	config := s.config
	config.ValidateIntegrity = true

	reader, err := tfrecord.OpenReader(config)
	if err != nil {
		return 0, err
	}
	defer reader.Close()

	n := 0
	for _, err := range reader.Records() {
		if err != nil {
			return n, err
		}
		n++
		if n%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return n, err
			}
		}
	}
	if n != int(s.index.Count()) {
		return n, fmt.Errorf("%w: container has %d records, index has %d", index.ErrStale, n, s.index.Count())
	}
	return n, nil
}

// Close closes the shared reader
func (s *ContainerSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reader.Close()
}
