package gzp

import "encoding/binary"

// bgzfHeaderSize is the 10-byte gzip header plus a 2-byte XLEN plus a
// 6-byte "BC" extra subfield (2-byte ID, 2-byte length, 2-byte value).
const bgzfHeaderSize = 18

// bgzfFooterSize is the CRC32 + ISIZE trailer every block carries.
const bgzfFooterSize = 8

// maxBgzfBlockSize is the hard ceiling on one block's total framed
// length (header through footer, inclusive): BSIZE is a 16-bit field.
const maxBgzfBlockSize = 65536

// bgzfEOF is the canonical empty BGZF end-of-stream member: the bytes
// are fixed across every BGZF-producing implementation, not just this
// one, so they are reproduced verbatim rather than built from an empty
// deflateCompress call.
var bgzfEOF = []byte{
	0x1f, 0x8b, 0x08, 0x04, 0x00, 0x00, 0x00, 0x00, 0x00, 0xff,
	0x06, 0x00, 0x42, 0x43, 0x02, 0x00, 0x1b, 0x00,
	0x03, 0x00,
	0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00,
}

// Bgzf is the BGZF block format used by htslib-family bioinformatics
// tools: every block is an independently decompressible gzip member
// whose FEXTRA subfield "BC" carries BSIZE = total framed length − 1,
// bounded to 65 536 bytes total. The stream must end with the
// canonical empty EOF member (bgzfEOF), which this package treats as
// the format's file-level Footer.
type Bgzf struct{}

func (Bgzf) Name() string             { return "bgzf" }
func (Bgzf) NeedsDict() bool          { return false }
func (Bgzf) DefaultBufferSize() int   { return 60 * 1024 }
func (Bgzf) MinBufferSize() int       { return 1 }
func (Bgzf) MaxBufferSize() int       { return maxBgzfBlockSize - bgzfHeaderSize - bgzfFooterSize - 64 }
func (Bgzf) Header(level int) []byte  { return nil }
func (Bgzf) Footer() []byte           { return bgzfEOF }
func (Bgzf) HeaderSize() int          { return bgzfHeaderSize }
func (Bgzf) MaxBlockSize() int        { return maxBgzfBlockSize }

func (Bgzf) CheckHeader(hdr []byte) error {
	return checkGzipExtraHeader(hdr, bgzfHeaderSize, 'B', 'C', 2)
}

func (Bgzf) BlockSize(hdr []byte) (int, error) {
	if len(hdr) < bgzfHeaderSize {
		return 0, newFormatErr(FramingError, "bgzf", "short header", nil)
	}
	return int(binary.LittleEndian.Uint16(hdr[16:18])) + 1, nil
}

func (b Bgzf) NewEncoder(level int) (Encoder, error) {
	return &bgzfEncoder{level: level, checker: newCRC32Checker()}, nil
}

func (b Bgzf) NewDecoder() Decoder {
	return &gzipExtraDecoder{format: "bgzf", footerSize: bgzfFooterSize}
}

type bgzfEncoder struct {
	level   int
	checker Checker
}

func (e *bgzfEncoder) Reset() { e.checker.Reset() }

func (e *bgzfEncoder) Encode(dst, input, dict []byte, last bool) ([]byte, error) {
	payload, err := deflateCompress(e.level, input)
	if err != nil {
		return dst, newFormatErr(CodecError, "bgzf", "deflate block", err)
	}
	total := bgzfHeaderSize + len(payload) + bgzfFooterSize
	if total > maxBgzfBlockSize {
		return dst, newFormatErr(FramingError, "bgzf", "block exceeds 65536 bytes", nil)
	}
	e.checker.Reset()
	_, _ = e.checker.Write(input)

	dst = appendGzipExtraHeader(dst, e.level, 'B', 'C', 2, uint32(total-1))
	dst = append(dst, payload...)
	var tail [bgzfFooterSize]byte
	binary.LittleEndian.PutUint32(tail[0:4], e.checker.Sum())
	binary.LittleEndian.PutUint32(tail[4:8], e.checker.Amount())
	return append(dst, tail[:]...), nil
}
