package gzp

import (
	"bufio"
	"compress/gzip"
	"io"
)

// DefaultPeekSize is the amount of decompressed data IsProbablyMultiGzip
// reads before giving up and calling a stream single-member.
const DefaultPeekSize = DefaultBufferSize * 2

// IsProbablyMultiGzip reports whether r looks like the output of this
// package's Gzip format: a concatenation of independent gzip members
// rather than one large one. It reads up to peeksize bytes of
// decompressed data from the first member only, stopping as soon as
// that member ends; if the member ends before peeksize is exhausted
// and a second valid gzip header immediately follows, the stream is
// considered multi-member.
//
// A single member larger than peeksize is reported as not multi-gzip:
// the purpose of this check is deciding whether seeking via Offset is
// worth attempting, and an oversized single member gives no seek
// benefit either way.
func IsProbablyMultiGzip(r io.Reader, peeksize int64) bool {
	// gzip multistream requires buffered I/O to stop exactly at the
	// stream boundary.
	buf := bufio.NewReader(r)
	gz, err := gzip.NewReader(buf)
	if err != nil {
		return false
	}
	gz.Multistream(false)

	n, err := io.CopyN(io.Discard, gz, peeksize)
	if err != io.EOF || n == peeksize {
		return false
	}

	// Short read: try to find a gzip header immediately following it.
	return gz.Reset(buf) == nil
}
