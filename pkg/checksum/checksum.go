package checksum

import (
	"errors"
	"fmt"
	"hash/crc32"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/dgryski/go-farm"
	"github.com/spaolacci/murmur3"
)

// crcMaskDelta is added after rotating the CRC so that checksums of data
// that itself embeds CRCs do not collapse.
const crcMaskDelta = 0xa282ead8

var castagnoliTable = crc32.MakeTable(crc32.Castagnoli)

// ErrUnknownChecksum is returned by Lookup for an unregistered name
var ErrUnknownChecksum = errors.New("unknown checksum")

// Checksum computes the 4-byte integrity token stored next to a framed field
type Checksum interface {
	// Name is the registry name used in configuration and on the command line
	Name() string
	// Sum returns the token for p
	Sum(p []byte) uint32
}

// Func adapts a plain function into a Checksum
type Func struct {
	ID string
	Fn func(p []byte) uint32
}

func (f Func) Name() string        { return f.ID }
func (f Func) Sum(p []byte) uint32 { return f.Fn(p) }

// Built-in strategies
var (
	// MaskedCRC32C is the token used by TensorFlow's TFRecord writer and the default
	MaskedCRC32C Checksum = Func{ID: "crc32c", Fn: maskedCRC32C}
	// CRC32IEEE is an unmasked IEEE CRC-32
	CRC32IEEE Checksum = Func{ID: "crc32", Fn: crc32.ChecksumIEEE}
	// Farm keeps the low 32 bits of FarmHash64
	Farm Checksum = Func{ID: "farm", Fn: func(p []byte) uint32 { return uint32(farm.Hash64(p)) }}
	// Murmur3 is the 32-bit MurmurHash3 with a zero seed
	Murmur3 Checksum = Func{ID: "murmur3", Fn: murmur3.Sum32}
	// XXHash keeps the low 32 bits of XXH64
	XXHash Checksum = Func{ID: "xxhash", Fn: func(p []byte) uint32 { return uint32(xxhash.Sum64(p)) }}
)

// Default is the strategy used when none is configured
var Default = MaskedCRC32C

var registry = map[string]Checksum{}

func init() {
	for _, c := range []Checksum{MaskedCRC32C, CRC32IEEE, Farm, Murmur3, XXHash} {
		registry[c.Name()] = c
	}
}

// Lookup returns the registered checksum with the given name. The empty
// string resolves to Default.
func Lookup(name string) (Checksum, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return Default, nil
	}
	c, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (known: %s)", ErrUnknownChecksum, name, strings.Join(Names(), ", "))
	}
	return c, nil
}

// Names returns the registered checksum names in sorted order
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Mask rotates crc right by 15 bits and adds a constant.
func Mask(crc uint32) uint32 {
	return ((crc >> 15) | (crc << 17)) + crcMaskDelta
}

// Unmask inverts Mask
func Unmask(masked uint32) uint32 {
	rot := masked - crcMaskDelta
	return (rot >> 17) | (rot << 15)
}

func maskedCRC32C(p []byte) uint32 {
	return Mask(crc32.Checksum(p, castagnoliTable))
}
