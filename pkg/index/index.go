package index

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"iter"

	"github.com/cockroachdb/pebble"
	"github.com/hashicorp/go-hclog"
	"github.com/segmentio/ksuid"

	"github.com/ssargent/tfrecord/pkg/logging"
	"github.com/ssargent/tfrecord/pkg/tfrecord"
)

var (
	entryPrefix = []byte("r/")
	entryEnd    = []byte("r0") // '0' sorts right after '/'
	metaKey     = []byte("m/build")
)

// Index maps record numbers to their location in a container
type Index struct {
	db     *pebble.DB
	meta   Meta
	logger hclog.Logger
}

// Build scans every remaining record of r and stores its location. Any
// previous index in config.Dir is replaced. Cancellation is checked between
// records.
func Build(ctx context.Context, r *tfrecord.Reader, config BuildConfig) (*Index, error) {
	logger := logging.OrNull(config.Logger)
	batchSize := config.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	db, err := pebble.Open(config.Dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open index: %w", err)
	}

	ix := &Index{db: db, logger: logger}
	meta, err := ix.scan(ctx, r, batchSize)
	if err != nil {
		db.Close()
		return nil, err
	}
	ix.meta = meta

	logger.Info("index built", "build_id", meta.BuildID.String(), "records", meta.Count, "bytes", meta.ContainerBytes)
	return ix, nil
}

func (ix *Index) scan(ctx context.Context, r *tfrecord.Reader, batchSize int) (Meta, error) {
	batch := ix.db.NewBatch()
	defer func() { batch.Close() }()

	if err := batch.DeleteRange(entryPrefix, entryEnd, nil); err != nil {
		return Meta{}, fmt.Errorf("failed to clear index: %w", err)
	}
	if err := batch.Delete(metaKey, nil); err != nil {
		return Meta{}, fmt.Errorf("failed to clear index metadata: %w", err)
	}

	var n int64
	pending := 0
	for {
		if err := ctx.Err(); err != nil {
			return Meta{}, err
		}

		offset := r.Offset()
		record, ok, err := r.Read()
		if err != nil {
			return Meta{}, fmt.Errorf("failed to index record %d: %w", n, err)
		}
		if !ok {
			break
		}

		e := Entry{Record: n, Offset: offset, Length: uint64(len(record))}
		if err := batch.Set(entryKey(n), encodeEntry(e), nil); err != nil {
			return Meta{}, fmt.Errorf("failed to stage entry %d: %w", n, err)
		}
		n++
		pending++

		if pending >= batchSize {
			if err := batch.Commit(pebble.NoSync); err != nil {
				return Meta{}, fmt.Errorf("failed to commit index batch: %w", err)
			}
			batch.Close()
			batch = ix.db.NewBatch()
			ix.logger.Debug("committed index batch", "records", n)
			pending = 0
		}
	}

	meta := Meta{
		BuildID:        ksuid.New(),
		Count:          n,
		ContainerBytes: r.Offset(),
		Validated:      r.Validating(),
	}
	if meta.Validated {
		meta.Checksum = r.ChecksumName()
	}
	if err := batch.Set(metaKey, encodeMeta(meta), nil); err != nil {
		return Meta{}, fmt.Errorf("failed to stage index metadata: %w", err)
	}
	if err := batch.Commit(pebble.Sync); err != nil {
		return Meta{}, fmt.Errorf("failed to commit index: %w", err)
	}
	return meta, nil
}

// Open opens an index previously written by Build
func Open(dir string, logger hclog.Logger) (*Index, error) {
	logger = logging.OrNull(logger)
	db, err := pebble.Open(dir, &pebble.Options{ErrorIfNotExists: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open index: %w", err)
	}

	data, closer, err := db.Get(metaKey)
	if err != nil {
		db.Close()
		if err == pebble.ErrNotFound {
			return nil, ErrNoIndex
		}
		return nil, fmt.Errorf("failed to read index metadata: %w", err)
	}
	meta, err := decodeMeta(data)
	closer.Close()
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Index{db: db, meta: meta, logger: logger}, nil
}

// Lookup returns the location of record n
func (ix *Index) Lookup(n int64) (Entry, error) {
	if n < 0 || n >= ix.meta.Count {
		return Entry{}, fmt.Errorf("%w: %d of %d", ErrNotFound, n, ix.meta.Count)
	}

	data, closer, err := ix.db.Get(entryKey(n))
	if err != nil {
		if err == pebble.ErrNotFound {
			return Entry{}, fmt.Errorf("%w: %d", ErrNotFound, n)
		}
		return Entry{}, fmt.Errorf("failed to read entry %d: %w", n, err)
	}
	defer closer.Close()

	return decodeEntry(n, data)
}

// Entries returns every entry in record order
func (ix *Index) Entries() iter.Seq2[Entry, error] {
	return func(yield func(Entry, error) bool) {
		it, err := ix.db.NewIter(&pebble.IterOptions{LowerBound: entryPrefix, UpperBound: entryEnd})
		if err != nil {
			yield(Entry{}, fmt.Errorf("failed to iterate index: %w", err))
			return
		}
		defer it.Close()

		for valid := it.First(); valid; valid = it.Next() {
			n := int64(binary.BigEndian.Uint64(it.Key()[len(entryPrefix):]))
			e, err := decodeEntry(n, it.Value())
			if !yield(e, err) || err != nil {
				return
			}
		}
		if err := it.Error(); err != nil {
			yield(Entry{}, err)
		}
	}
}

// Count returns the number of indexed records
func (ix *Index) Count() int64 {
	return ix.meta.Count
}

// Meta returns the build metadata
func (ix *Index) Meta() Meta {
	return ix.meta
}

// Close closes the underlying database
func (ix *Index) Close() error {
	return ix.db.Close()
}

// ReadAt positions r at e and reads that record. The returned slice aliases
// the reader's buffer.
func ReadAt(r *tfrecord.Reader, e Entry) ([]byte, error) {
	if err := r.Seek(e.Offset); err != nil {
		return nil, err
	}
	record, ok, err := r.Read()
	if err != nil {
		return nil, err
	}
	if !ok || uint64(len(record)) != e.Length {
		return nil, fmt.Errorf("%w: record %d at offset %d", ErrStale, e.Record, e.Offset)
	}
	return record, nil
}

// WriteText writes one "offset length" line per record, the plain-text
// index layout used by tfrecord2idx. Length here is the full frame size.
func WriteText(w io.Writer, ix *Index) error {
	for e, err := range ix.Entries() {
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "%d %d\n", e.Offset, e.FrameSize()); err != nil {
			return err
		}
	}
	return nil
}

func entryKey(n int64) []byte {
	key := make([]byte, len(entryPrefix)+8)
	copy(key, entryPrefix)
	binary.BigEndian.PutUint64(key[len(entryPrefix):], uint64(n))
	return key
}

// entry value: offset(8) | length(8), little-endian
func encodeEntry(e Entry) []byte {
	buf := make([]byte, 16)
	binary.LittleEndian.PutUint64(buf[0:], uint64(e.Offset))
	binary.LittleEndian.PutUint64(buf[8:], e.Length)
	return buf
}

func decodeEntry(n int64, data []byte) (Entry, error) {
	if len(data) != 16 {
		return Entry{}, fmt.Errorf("index entry %d: bad size %d", n, len(data))
	}
	return Entry{
		Record: n,
		Offset: int64(binary.LittleEndian.Uint64(data[0:])),
		Length: binary.LittleEndian.Uint64(data[8:]),
	}, nil
}

// meta value: build id(20) | count(8) | container bytes(8) | validated(1) | checksum name
func encodeMeta(m Meta) []byte {
	buf := make([]byte, 0, len(ksuid.Nil.Bytes())+17+len(m.Checksum))
	buf = append(buf, m.BuildID.Bytes()...)
	buf = binary.LittleEndian.AppendUint64(buf, uint64(m.Count))
	buf = binary.LittleEndian.AppendUint64(buf, uint64(m.ContainerBytes))
	if m.Validated {
		buf = append(buf, 1)
	} else {
		buf = append(buf, 0)
	}
	return append(buf, m.Checksum...)
}

func decodeMeta(data []byte) (Meta, error) {
	idSize := len(ksuid.Nil.Bytes())
	if len(data) < idSize+17 {
		return Meta{}, fmt.Errorf("index metadata too short: %d bytes", len(data))
	}
	id, err := ksuid.FromBytes(data[:idSize])
	if err != nil {
		return Meta{}, fmt.Errorf("index metadata: %w", err)
	}
	rest := data[idSize:]
	return Meta{
		BuildID:        id,
		Count:          int64(binary.LittleEndian.Uint64(rest[0:])),
		ContainerBytes: int64(binary.LittleEndian.Uint64(rest[8:])),
		Validated:      rest[16] == 1,
		Checksum:       string(rest[17:]),
	}, nil
}
