// Package tfrecord reads length-delimited, checksummed record containers.
//
// # Container Format
//
// A container is a plain concatenation of records, each framed as:
//
//	[Length(8)][LengthToken(4)][Payload(Length)][PayloadToken(4)]
//
// Fields:
//   - Length: unsigned 64-bit payload size (little-endian)
//   - LengthToken: 32-bit integrity token over the 8 length bytes (little-endian)
//   - Payload: opaque record bytes
//   - PayloadToken: 32-bit integrity token over the payload (little-endian)
//
// The tokens are produced by a checksum.Checksum. TensorFlow writes masked
// CRC-32C tokens, which is the default.
//
// A container may only end on a record boundary. Running out of bytes
// anywhere inside a record yields an error matching ErrCorruptContainer.
//
// # Usage
//
//	r, err := tfrecord.Open("train.tfrecord", true)
//	if err != nil {
//	    return err
//	}
//	defer r.Close()
//
//	for record, err := range r.Records() {
//	    if err != nil {
//	        return err
//	    }
//	    process(record) // record is reused by the next iteration
//	}
//
// # Error Handling
//
//   - *IOError: the source could not be opened or read
//   - *CorruptError (ErrCorruptContainer): a field was truncated or the length is unusable
//   - *ChecksumError (ErrChecksumMismatch): a token did not match, only when validating
//   - ErrClosed: the reader was used after Close
//
// Once Read reports an error the reader stays failed until Seek.
//
// # Thread Safety
//
// A Reader mutates its buffer and source cursor on every Read and must not be
// shared between goroutines without external locking. Independent readers of
// the same file each need their own handle.
package tfrecord
