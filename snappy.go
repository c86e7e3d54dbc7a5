package gzp

import (
	"bytes"

	"github.com/golang/snappy"
)

// Snappy frames each chunk as an independent Snappy framing-format
// stream (github.com/golang/snappy): every chunk gets its own stream
// identifier chunk, so concatenated output is readable by any framed
// Snappy reader that tolerates a repeated stream identifier, per the
// framing format spec. Snappy's own per-block CRC32C already covers
// integrity, so no extra footer is added here.
type Snappy struct{}

func (Snappy) Name() string             { return "snappy" }
func (Snappy) NeedsDict() bool          { return false }
func (Snappy) DefaultBufferSize() int   { return DefaultBufferSize }
func (Snappy) MinBufferSize() int       { return 1 }
func (Snappy) MaxBufferSize() int       { return 0 }
func (Snappy) Header(level int) []byte { return nil }
func (Snappy) Footer() []byte          { return nil }

func (s Snappy) NewEncoder(level int) (Encoder, error) {
	return &snappyEncoder{}, nil
}

type snappyEncoder struct {
	buf bytes.Buffer
}

func (e *snappyEncoder) Reset() { e.buf.Reset() }

func (e *snappyEncoder) Encode(dst, input, dict []byte, last bool) ([]byte, error) {
	e.buf.Reset()
	sw := snappy.NewBufferedWriter(&e.buf)
	if _, err := sw.Write(input); err != nil {
		return dst, newFormatErr(CodecError, "snappy", "compress chunk", err)
	}
	if err := sw.Close(); err != nil {
		return dst, newFormatErr(CodecError, "snappy", "close chunk stream", err)
	}
	return append(dst, e.buf.Bytes()...), nil
}
