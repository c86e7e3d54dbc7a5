// Package gzp provides order-preserving parallel compression and
// decompression of byte streams.
//
// Callers write to a Writer exactly as they would to any sequential
// io.Writer. Internally the writer fans the stream out across a pool of
// worker goroutines, each of which independently compresses one
// fixed-size chunk, and a single writer goroutine that serializes the
// compressed chunks back to the underlying sink in the exact order they
// were submitted. For the two block-framed formats (Mgzip and Bgzf)
// decompression is parallelized the same way, across block boundaries.
//
// Supported formats: Gzip, Zlib, RawDeflate, Snappy, Mgzip, Bgzf, Lz4.
//
// # Known differences from pigz-style parallel gzip
//
//   - Every chunk is its own self-contained codec member/frame, so the
//     number of worker threads never changes the bytes written for a
//     given input and BufferSize (it only changes wall-clock time).
//   - There is no continual dictionary across the whole file; chunk N+1
//     is primed with the trailing DictSize bytes of chunk N (for the
//     formats that use a preset dictionary at all), not a continuously
//     updated compression window.
package gzp

import "io"

// DictSize is the size, in bytes, of the deflate preset dictionary
// carried from one chunk to the next for formats whose NeedsDict
// reports true.
const DictSize = 32 * 1024

// DefaultBufferSize is the default chunk size for stream formats (Gzip,
// Zlib, RawDeflate, Snappy, Lz4).
const DefaultBufferSize = 128 * 1024

// Format is the capability set every compression format implements: it
// can build a reusable per-worker Encoder and knows its own framing
// rules (dictionary use, buffer-size bounds, file-level wrapper bytes).
type Format interface {
	// Name identifies the format in error messages.
	Name() string

	// NeedsDict reports whether chunk N+1 should be primed with the
	// trailing DictSize bytes of chunk N. False for independent-block
	// formats and for formats whose compressor has no preset-dictionary
	// concept to exploit.
	NeedsDict() bool

	// DefaultBufferSize is the chunk size used when a builder doesn't
	// override BufferSize.
	DefaultBufferSize() int

	// MinBufferSize and MaxBufferSize bound the buffer_size builder
	// option; a value outside this range fails construction with
	// ConfigurationError. MaxBufferSize of 0 means unbounded.
	MinBufferSize() int
	MaxBufferSize() int

	// Header returns the bytes (possibly empty) written once before the
	// first chunk. Every format in this package returns an empty
	// header: the codec profile table has no format with file-level
	// header bytes.
	Header(level int) []byte

	// Footer returns the bytes (possibly empty) written once after the
	// last chunk has been emitted. Only Bgzf returns non-empty bytes
	// here (the canonical empty EOF member).
	Footer() []byte

	// NewEncoder constructs a reusable per-worker encoder at the given
	// compression level.
	NewEncoder(level int) (Encoder, error)
}

// Encoder compresses one chunk into a complete framed block: header (if
// the format frames per block), codec payload, footer (checksum,
// length) if the format frames per block. It is created once per
// worker and Reset between chunks to avoid per-chunk allocator churn.
type Encoder interface {
	// Encode appends the framed block for input to dst and returns the
	// extended slice. dict is the trailing DictSize bytes of the
	// previous chunk, or nil if the format doesn't use one or this is
	// the first chunk. last is true for the final chunk of the stream
	// (formats that need to finalize their deflate stream differently
	// on the last chunk use this; independent-block formats ignore it).
	Encode(dst, input, dict []byte, last bool) ([]byte, error)

	// Reset prepares the encoder to encode another, unrelated chunk.
	Reset()
}

// BlockFormat is a Format whose blocks are independently decompressible
// (Mgzip, Bgzf): the file is a sequence of self-contained framed
// blocks, so decompression can be parallelized by dispatching each
// block to its own worker goroutine, symmetric to compression.
type BlockFormat interface {
	Format

	// HeaderSize is the fixed number of bytes at the start of every
	// block that must be read before BlockSize can be computed.
	HeaderSize() int

	// CheckHeader validates the first HeaderSize bytes of a block:
	// magic bytes, the extra-field flag, and the format's subfield ID.
	CheckHeader(hdr []byte) error

	// BlockSize returns the total framed length of the block (header
	// through footer inclusive) given its first HeaderSize bytes.
	BlockSize(hdr []byte) (int, error)

	// MaxBlockSize bounds the total framed length of one block; 0 means
	// unbounded. Only Bgzf bounds this, at 65536.
	MaxBlockSize() int

	// NewDecoder constructs a reusable per-worker decoder.
	NewDecoder() Decoder
}

// Decoder decompresses one framed block (the portion after its
// HeaderSize-byte header, through and including its footer) back to
// the original chunk bytes, verifying the block's embedded checksum.
type Decoder interface {
	// Decode returns the decompressed payload of body, which must be
	// exactly the bytes between a block's header and the end of the
	// block (its footer is included so the decoder can verify the
	// embedded checksum against the decompressed result).
	Decode(body []byte) ([]byte, error)

	// Reset prepares the decoder to decode another, unrelated block.
	Reset()
}

// chunk is one indexed, owned slice of input bytes produced by a
// chunker and consumed by exactly one worker.
type chunk struct {
	index int64
	data  []byte
	dict  []byte
	last  bool
}

// result is one indexed, framed output block (or error) produced by a
// worker and consumed by exactly one writer/emitter.
type result struct {
	index int64
	data  []byte
	err   error
}

// sink is the minimal contract this package requires of the user's
// underlying writer: sequential Write calls, nothing else assumed about
// seekability or buffering.
type sink = io.Writer

// source is the minimal contract this package requires of the user's
// underlying reader for decompression.
type source = io.Reader
