// Package tfrecordtest builds container fixtures for tests.
package tfrecordtest

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/ssargent/tfrecord/pkg/checksum"
)

// AppendRecord appends payload framed as one record to dst
func AppendRecord(dst, payload []byte, sum checksum.Checksum) []byte {
	if sum == nil {
		sum = checksum.Default
	}
	var length [8]byte
	binary.LittleEndian.PutUint64(length[:], uint64(len(payload)))

	dst = append(dst, length[:]...)
	dst = binary.LittleEndian.AppendUint32(dst, sum.Sum(length[:]))
	dst = append(dst, payload...)
	dst = binary.LittleEndian.AppendUint32(dst, sum.Sum(payload))
	return dst
}

// Encode frames every payload in order
func Encode(sum checksum.Checksum, payloads ...[]byte) []byte {
	var out []byte
	for _, p := range payloads {
		out = AppendRecord(out, p, sum)
	}
	return out
}

// Strings is Encode for string payloads
func Strings(sum checksum.Checksum, payloads ...string) []byte {
	bs := make([][]byte, len(payloads))
	for i, p := range payloads {
		bs[i] = []byte(p)
	}
	return Encode(sum, bs...)
}

// WriteFile writes data to a file in a per-test temp dir and returns its path
func WriteFile(t testing.TB, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

// Frame holds the byte ranges of each field of a record starting at off
// whose payload is n bytes long.
type Frame struct {
	Length       [2]int
	LengthToken  [2]int
	Payload      [2]int
	PayloadToken [2]int
}

// FrameAt returns the field ranges of a record at off with an n byte payload
func FrameAt(off, n int) Frame {
	return Frame{
		Length:       [2]int{off, off + 8},
		LengthToken:  [2]int{off + 8, off + 12},
		Payload:      [2]int{off + 12, off + 12 + n},
		PayloadToken: [2]int{off + 12 + n, off + 16 + n},
	}
}
