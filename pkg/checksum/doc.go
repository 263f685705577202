// Package checksum provides the integrity token strategies used by the
// tfrecord reader.
//
// Every framed field in a container is followed by a 4-byte token computed
// over that field. The reader does not care which algorithm produced the
// token; it is handed a Checksum at construction time and compares its Sum
// against the stored value.
//
// # Strategies
//
//   - crc32c: CRC-32C (Castagnoli), masked. This is what TensorFlow writes
//     and is the default.
//   - crc32: plain IEEE CRC-32.
//   - farm: low 32 bits of FarmHash64.
//   - murmur3: MurmurHash3 x86 32-bit, seed 0.
//   - xxhash: low 32 bits of XXH64.
//
// Strategies are looked up by name with Lookup, which is how the
// configuration file and the command line select them.
package checksum
