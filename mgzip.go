package gzp

import "encoding/binary"

// mgzipHeaderSize is the fixed length of an Mgzip block header: the
// standard 10-byte gzip header, plus a 2-byte XLEN, plus an 8-byte "IG"
// extra subfield (2-byte ID, 2-byte length, 4-byte value).
const mgzipHeaderSize = 20

// mgzipFooterSize is the CRC32 + ISIZE trailer every block carries.
const mgzipFooterSize = 8

// Mgzip is a gzip-compatible block format: every block is an
// independently decompressible gzip member whose FEXTRA subfield "IG"
// carries the block's total framed length (header through footer,
// inclusive), so a reader can size its read without first inflating
// anything. Blocks carry no dictionary and have no file-level
// header/footer; there is no mandated end-of-stream sentinel (Footer
// returns nil).
type Mgzip struct{}

func (Mgzip) Name() string             { return "mgzip" }
func (Mgzip) NeedsDict() bool          { return false }
func (Mgzip) DefaultBufferSize() int   { return DefaultBufferSize }
func (Mgzip) MinBufferSize() int       { return 1 }
func (Mgzip) MaxBufferSize() int       { return 0 }
func (Mgzip) Header(level int) []byte { return nil }
func (Mgzip) Footer() []byte          { return nil }
func (Mgzip) HeaderSize() int         { return mgzipHeaderSize }
func (Mgzip) MaxBlockSize() int       { return 0 }

func (Mgzip) CheckHeader(hdr []byte) error {
	return checkGzipExtraHeader(hdr, mgzipHeaderSize, 'I', 'G', 4)
}

func (Mgzip) BlockSize(hdr []byte) (int, error) {
	if len(hdr) < mgzipHeaderSize {
		return 0, newFormatErr(FramingError, "mgzip", "short header", nil)
	}
	return int(binary.LittleEndian.Uint32(hdr[16:20])), nil
}

func (m Mgzip) NewEncoder(level int) (Encoder, error) {
	return &mgzipEncoder{level: level, checker: newCRC32Checker()}, nil
}

func (m Mgzip) NewDecoder() Decoder {
	return &gzipExtraDecoder{format: "mgzip", footerSize: mgzipFooterSize}
}

type mgzipEncoder struct {
	level   int
	checker Checker
}

func (e *mgzipEncoder) Reset() { e.checker.Reset() }

func (e *mgzipEncoder) Encode(dst, input, dict []byte, last bool) ([]byte, error) {
	payload, err := deflateCompress(e.level, input)
	if err != nil {
		return dst, newFormatErr(CodecError, "mgzip", "deflate block", err)
	}
	e.checker.Reset()
	_, _ = e.checker.Write(input)

	total := mgzipHeaderSize + len(payload) + mgzipFooterSize
	dst = appendGzipExtraHeader(dst, e.level, 'I', 'G', 4, uint32(total))
	dst = append(dst, payload...)
	var tail [mgzipFooterSize]byte
	binary.LittleEndian.PutUint32(tail[0:4], e.checker.Sum())
	binary.LittleEndian.PutUint32(tail[4:8], e.checker.Amount())
	return append(dst, tail[:]...), nil
}

// appendGzipExtraHeader appends a 10-byte gzip header plus a single
// FEXTRA subfield identified by (si1, si2) whose payload is a
// subfieldLen-byte little-endian value, shared by Mgzip and Bgzf.
func appendGzipExtraHeader(dst []byte, level int, si1, si2 byte, subfieldLen int, value uint32) []byte {
	dst = append(dst, 0x1f, 0x8b, 8, 0x04, 0, 0, 0, 0, gzipXFL(level), 255)
	var xlen [2]byte
	binary.LittleEndian.PutUint16(xlen[:], uint16(4+subfieldLen))
	dst = append(dst, xlen[:]...)
	dst = append(dst, si1, si2)
	var slen [2]byte
	binary.LittleEndian.PutUint16(slen[:], uint16(subfieldLen))
	dst = append(dst, slen[:]...)
	switch subfieldLen {
	case 2:
		var v [2]byte
		binary.LittleEndian.PutUint16(v[:], uint16(value))
		dst = append(dst, v[:]...)
	case 4:
		var v [4]byte
		binary.LittleEndian.PutUint32(v[:], value)
		dst = append(dst, v[:]...)
	}
	return dst
}

// checkGzipExtraHeader validates the shared gzip+FEXTRA header shape
// used by Mgzip and Bgzf.
func checkGzipExtraHeader(hdr []byte, headerSize int, si1, si2 byte, subfieldLen int) error {
	if len(hdr) < headerSize {
		return newFormatErr(FramingError, "", "short header", nil)
	}
	if hdr[0] != 0x1f || hdr[1] != 0x8b {
		return newFormatErr(FramingError, "", "bad gzip magic", nil)
	}
	if hdr[2] != 8 {
		return newFormatErr(FramingError, "", "unsupported compression method", nil)
	}
	if hdr[3]&0x04 == 0 {
		return newFormatErr(FramingError, "", "missing FEXTRA flag", nil)
	}
	xlen := binary.LittleEndian.Uint16(hdr[10:12])
	if int(xlen) != 4+subfieldLen {
		return newFormatErr(FramingError, "", "unexpected extra field length", nil)
	}
	if hdr[12] != si1 || hdr[13] != si2 {
		return newFormatErr(FramingError, "", "unexpected extra subfield id", nil)
	}
	slen := binary.LittleEndian.Uint16(hdr[14:16])
	if int(slen) != subfieldLen {
		return newFormatErr(FramingError, "", "unexpected subfield length", nil)
	}
	return nil
}

// gzipExtraDecoder decodes the shared block body (raw deflate payload
// followed by a CRC32+ISIZE footer) used by Mgzip and Bgzf.
type gzipExtraDecoder struct {
	format     string
	footerSize int
}

func (d *gzipExtraDecoder) Reset() {}

func (d *gzipExtraDecoder) Decode(body []byte) ([]byte, error) {
	if len(body) < d.footerSize {
		return nil, newFormatErr(FramingError, d.format, "short block body", nil)
	}
	payload := body[:len(body)-d.footerSize]
	footer := body[len(body)-d.footerSize:]
	out, err := inflateRaw(payload)
	if err != nil {
		return nil, newFormatErr(CodecError, d.format, "inflate block", err)
	}
	wantCRC := binary.LittleEndian.Uint32(footer[0:4])
	wantLen := binary.LittleEndian.Uint32(footer[4:8])
	c := newCRC32Checker()
	_, _ = c.Write(out)
	if c.Sum() != wantCRC || c.Amount() != wantLen {
		return nil, newFormatErr(FramingError, d.format, "checksum mismatch", nil)
	}
	return out, nil
}
