//go:build fuzz
// +build fuzz

package tfrecord

import (
	"bytes"
	"errors"
	"testing"

	"github.com/ssargent/tfrecord/internal/tfrecordtest"
)

// FuzzReader_RoundTrip checks that framed payloads come back unchanged
func FuzzReader_RoundTrip(f *testing.F) {
	f.Add([]byte(""), []byte(""))
	f.Add([]byte("hello"), []byte("world"))
	f.Add([]byte{0x00, 0x01, 0x02}, bytes.Repeat([]byte{0xFF}, 300))

	f.Fuzz(func(t *testing.T, a, b []byte) {
		data := tfrecordtest.Encode(nil, a, b)
		r := NewReader(bytes.NewReader(data), ReaderConfig{ValidateIntegrity: true})

		for i, want := range [][]byte{a, b} {
			got, ok, err := r.Read()
			if err != nil || !ok {
				t.Fatalf("record %d: ok=%v err=%v", i, ok, err)
			}
			if !bytes.Equal(got, want) {
				t.Fatalf("record %d: got %x want %x", i, got, want)
			}
		}
		if _, ok, err := r.Read(); ok || err != nil {
			t.Fatalf("expected end of stream, ok=%v err=%v", ok, err)
		}
	})
}

// FuzzReader_ArbitraryInput checks that garbage never panics and only
// produces the documented error kinds
func FuzzReader_ArbitraryInput(f *testing.F) {
	f.Add([]byte{})
	f.Add([]byte{1, 2, 3})
	f.Add(tfrecordtest.Strings(nil, "seed"))

	f.Fuzz(func(t *testing.T, data []byte) {
		for _, validate := range []bool{false, true} {
			r := NewReader(bytes.NewReader(data), ReaderConfig{ValidateIntegrity: validate, MaxRecordSize: 1 << 20})
			for {
				_, ok, err := r.Read()
				if err != nil {
					if !errors.Is(err, ErrCorruptContainer) && !errors.Is(err, ErrChecksumMismatch) {
						t.Fatalf("unexpected error kind: %v", err)
					}
					break
				}
				if !ok {
					break
				}
			}
		}
	})
}
