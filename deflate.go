package gzp

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/klauspost/compress/flate"
)

// deflateCompress runs one input chunk through a fresh raw-deflate stream
// at level and returns the complete, terminated deflate bitstream.
//
// Gzip/Zlib/RawDeflate members in this package are always self-contained:
// every chunk gets its own independently decodable stream so that the
// concatenation of chunks is readable by an ordinary standard-library
// decoder in multi-member mode. That rules out priming the deflate
// window with the previous chunk's tail the way a single continuous
// stream could: a preset dictionary produces back-references a plain
// decoder has no way to resolve. So, unlike the block formats' shared
// Format contract might suggest, none of these three formats requests
// one; see NeedsDict on each.
func deflateCompress(level int, input []byte) ([]byte, error) {
	var buf bytes.Buffer
	fw, err := flate.NewWriter(&buf, level)
	if err != nil {
		return nil, err
	}
	if len(input) > 0 {
		if _, err := fw.Write(input); err != nil {
			return nil, err
		}
	}
	if err := fw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// inflateRaw decompresses one complete raw-deflate stream produced by
// deflateCompress, used by the block-format decoders (Mgzip, Bgzf)
// which frame their own header/footer around the same raw engine.
func inflateRaw(payload []byte) ([]byte, error) {
	fr := flate.NewReader(bytes.NewReader(payload))
	defer fr.Close()
	return io.ReadAll(fr)
}

// gzipXFL maps a compression level to the gzip header's XFL byte: 2 for
// the slowest/best setting, 4 for the fastest, 0 otherwise.
func gzipXFL(level int) byte {
	switch {
	case level == flate.BestCompression:
		return 2
	case level == flate.BestSpeed:
		return 4
	default:
		return 0
	}
}

// Gzip is the standard gzip format (RFC 1952): each chunk becomes its
// own complete gzip member with a 10-byte header and an 8-byte
// CRC32/ISIZE footer, so the concatenated output is an ordinary
// multi-member gzip stream.
type Gzip struct{}

func (Gzip) Name() string             { return "gzip" }
func (Gzip) NeedsDict() bool          { return false }
func (Gzip) DefaultBufferSize() int   { return DefaultBufferSize }
func (Gzip) MinBufferSize() int       { return 1 }
func (Gzip) MaxBufferSize() int       { return 0 }
func (Gzip) Header(level int) []byte { return nil }
func (Gzip) Footer() []byte          { return nil }

func (g Gzip) NewEncoder(level int) (Encoder, error) {
	return &gzipEncoder{level: level, checker: newCRC32Checker()}, nil
}

type gzipEncoder struct {
	level   int
	checker Checker
}

func (e *gzipEncoder) Reset() { e.checker.Reset() }

func (e *gzipEncoder) Encode(dst, input, dict []byte, last bool) ([]byte, error) {
	payload, err := deflateCompress(e.level, input)
	if err != nil {
		return dst, newFormatErr(CodecError, "gzip", "deflate chunk", err)
	}
	e.checker.Reset()
	_, _ = e.checker.Write(input)

	dst = append(dst, 0x1f, 0x8b, 8, 0, 0, 0, 0, 0, gzipXFL(e.level), 255)
	dst = append(dst, payload...)
	var tail [8]byte
	binary.LittleEndian.PutUint32(tail[0:4], e.checker.Sum())
	binary.LittleEndian.PutUint32(tail[4:8], e.checker.Amount())
	dst = append(dst, tail[:]...)
	return dst, nil
}

// Zlib is RFC 1950: each chunk becomes its own zlib stream with a 2-byte
// header and a 4-byte big-endian Adler-32 footer.
type Zlib struct{}

func (Zlib) Name() string             { return "zlib" }
func (Zlib) NeedsDict() bool          { return false }
func (Zlib) DefaultBufferSize() int   { return DefaultBufferSize }
func (Zlib) MinBufferSize() int       { return 1 }
func (Zlib) MaxBufferSize() int       { return 0 }
func (Zlib) Header(level int) []byte { return nil }
func (Zlib) Footer() []byte          { return nil }

func (z Zlib) NewEncoder(level int) (Encoder, error) {
	return &zlibEncoder{level: level, checker: newAdler32Checker()}, nil
}

type zlibEncoder struct {
	level   int
	checker Checker
}

func (e *zlibEncoder) Reset() { e.checker.Reset() }

// zlibHeader builds the 2-byte CMF/FLG header for a 32K-window deflate
// stream, choosing FLEVEL from the compression level the way zlib itself
// does, then padding FCHECK so the pair is a multiple of 31. The preset
// dictionary bit is never set: nothing in this package relies on it.
func zlibHeader(level int) []byte {
	const cmf = 0x78
	var flevel byte
	switch {
	case level == 0 || level == flate.BestSpeed || level == flate.HuffmanOnly:
		flevel = 0
	case level >= 2 && level <= 5:
		flevel = 1
	case level == 6 || level < 0:
		flevel = 2
	default:
		flevel = 3
	}
	flg := flevel << 6
	rem := (int(cmf)*256 + int(flg)) % 31
	if rem != 0 {
		flg += byte(31 - rem)
	}
	return []byte{cmf, flg}
}

func (e *zlibEncoder) Encode(dst, input, dict []byte, last bool) ([]byte, error) {
	payload, err := deflateCompress(e.level, input)
	if err != nil {
		return dst, newFormatErr(CodecError, "zlib", "deflate chunk", err)
	}
	e.checker.Reset()
	_, _ = e.checker.Write(input)

	dst = append(dst, zlibHeader(e.level)...)
	dst = append(dst, payload...)
	var tail [4]byte
	binary.BigEndian.PutUint32(tail[:], e.checker.Sum())
	dst = append(dst, tail[:]...)
	return dst, nil
}

// RawDeflate emits nothing but the raw deflate stream per chunk: no
// header, no footer, no checksum. Concatenation is only meaningful to a
// reader that already knows the chunk boundaries out of band.
type RawDeflate struct{}

func (RawDeflate) Name() string             { return "raw_deflate" }
func (RawDeflate) NeedsDict() bool          { return false }
func (RawDeflate) DefaultBufferSize() int   { return DefaultBufferSize }
func (RawDeflate) MinBufferSize() int       { return 1 }
func (RawDeflate) MaxBufferSize() int       { return 0 }
func (RawDeflate) Header(level int) []byte { return nil }
func (RawDeflate) Footer() []byte          { return nil }

func (r RawDeflate) NewEncoder(level int) (Encoder, error) {
	return &rawDeflateEncoder{level: level}, nil
}

type rawDeflateEncoder struct {
	level int
}

func (e *rawDeflateEncoder) Reset() {}

func (e *rawDeflateEncoder) Encode(dst, input, dict []byte, last bool) ([]byte, error) {
	payload, err := deflateCompress(e.level, input)
	if err != nil {
		return dst, newFormatErr(CodecError, "raw_deflate", "deflate chunk", err)
	}
	return append(dst, payload...), nil
}
