package gzp

import (
	"bytes"
	"encoding/binary"

	"github.com/pierrec/lz4/v4"
)

// lz4FooterSize is this package's own trailer appended after every LZ4
// frame: the low 32 bits of the xxhash64 digest of the uncompressed
// chunk plus its 4-byte length, mirroring the CRC32/ISIZE trailer the
// deflate-based formats use. No checksum option is applied to the LZ4
// writer, so the frame's own checksum setting is the library default.
const lz4FooterSize = 8

// Lz4 is not part of the required codec profile table; it is carried
// as an extra format exercising the wider compression stack the
// examples pull in (github.com/pierrec/lz4/v4 for the frame codec,
// github.com/cespare/xxhash/v2 for the trailer checksum). Each chunk
// is one independent LZ4 frame followed by this package's own footer,
// so — like RawDeflate — decoding this format requires this package's
// own reader rather than a stock LZ4 frame decoder.
type Lz4 struct{}

func (Lz4) Name() string             { return "lz4" }
func (Lz4) NeedsDict() bool          { return false }
func (Lz4) DefaultBufferSize() int   { return DefaultBufferSize }
func (Lz4) MinBufferSize() int       { return 1 }
func (Lz4) MaxBufferSize() int       { return 0 }
func (Lz4) Header(level int) []byte { return nil }
func (Lz4) Footer() []byte          { return nil }

func (l Lz4) NewEncoder(level int) (Encoder, error) {
	zw := lz4.NewWriter(nil)
	if level > 0 {
		if err := zw.Apply(lz4.CompressionLevelOption(lz4.CompressionLevel(level))); err != nil {
			return nil, newFormatErr(ConfigurationError, "lz4", "apply level", err)
		}
	}
	return &lz4Encoder{zw: zw, checker: newXXHashChecker()}, nil
}

type lz4Encoder struct {
	zw      *lz4.Writer
	checker Checker
	buf     bytes.Buffer
}

func (e *lz4Encoder) Reset() { e.checker.Reset() }

func (e *lz4Encoder) Encode(dst, input, dict []byte, last bool) ([]byte, error) {
	e.buf.Reset()
	e.zw.Reset(&e.buf)
	if _, err := e.zw.Write(input); err != nil {
		return dst, newFormatErr(CodecError, "lz4", "compress chunk", err)
	}
	if err := e.zw.Close(); err != nil {
		return dst, newFormatErr(CodecError, "lz4", "close frame", err)
	}

	e.checker.Reset()
	_, _ = e.checker.Write(input)

	dst = append(dst, e.buf.Bytes()...)
	var tail [lz4FooterSize]byte
	binary.LittleEndian.PutUint32(tail[0:4], e.checker.Sum())
	binary.LittleEndian.PutUint32(tail[4:8], e.checker.Amount())
	return append(dst, tail[:]...), nil
}

// DecodeLz4Chunk reverses one Lz4-framed chunk produced by Encode,
// verifying the trailing xxhash/length footer. There is no Decoder
// registration for Lz4 in this package because it is not a
// BlockFormat: like RawDeflate, sequential decoding of a whole stream
// of concatenated chunks needs external bookkeeping of chunk
// boundaries that this bonus format doesn't otherwise define.
func DecodeLz4Chunk(block []byte) ([]byte, error) {
	if len(block) < lz4FooterSize {
		return nil, newFormatErr(FramingError, "lz4", "short block", nil)
	}
	payload := block[:len(block)-lz4FooterSize]
	footer := block[len(block)-lz4FooterSize:]

	zr := lz4.NewReader(bytes.NewReader(payload))
	var out bytes.Buffer
	if _, err := out.ReadFrom(zr); err != nil {
		return nil, newFormatErr(CodecError, "lz4", "decompress chunk", err)
	}

	wantSum := binary.LittleEndian.Uint32(footer[0:4])
	wantLen := binary.LittleEndian.Uint32(footer[4:8])
	c := newXXHashChecker()
	_, _ = c.Write(out.Bytes())
	if c.Sum() != wantSum || c.Amount() != wantLen {
		return nil, newFormatErr(FramingError, "lz4", "checksum mismatch", nil)
	}
	return out.Bytes(), nil
}
