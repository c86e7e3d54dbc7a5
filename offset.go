package gzp

import (
	"errors"
	"io"
)

// errShortSeek is returned when Seek's target Offset does not land on
// a block boundary this reader actually produced.
var errShortSeek = errors.New("gzp: offset does not match a block boundary")

// Offset marks a position in an OffsetReader's decompressed output:
// the file byte position where the block containing that position
// starts, and how far into that block's decompressed bytes the
// position is. Record one with OffsetReader.Offset at a point of
// interest and later jump back to it with Seek, without needing to
// decode everything in between.
//
// This is deliberately not a persisted random-access index: it only
// helps a reader that is replaying blocks it (or an earlier pass) has
// already visited in this process.
type Offset struct {
	Block int64
	Off   int64
}

// OffsetReader decodes a BlockFormat stream (Mgzip or Bgzf) from an
// io.ReadSeeker block by block, exposing the file/decompressed
// position pair needed to jump back into the stream cheaply. Unlike
// ParDecompress/SyncDecompress it never parallelizes, since its whole
// purpose is precise position tracking rather than throughput.
type OffsetReader struct {
	format BlockFormat
	r      io.ReadSeeker
	dec    Decoder

	blockStart int64
	buf        []byte
	consumed   int64
	err        error
}

// NewOffsetReader wraps r for sequential or seek-assisted reading of a
// format-framed stream.
func NewOffsetReader(r io.ReadSeeker, format BlockFormat) (*OffsetReader, error) {
	return &OffsetReader{format: format, r: r, dec: format.NewDecoder()}, nil
}

func (or *OffsetReader) fetchBlock() error {
	pos, err := or.r.Seek(0, io.SeekCurrent)
	if err != nil {
		return err
	}
	headerSize := or.format.HeaderSize()
	hdr := make([]byte, headerSize)
	n, err := io.ReadFull(or.r, hdr)
	if err != nil && n == 0 {
		return io.EOF
	}
	if err != nil {
		return newFormatErr(FramingError, or.format.Name(), "truncated block header", err)
	}
	if err := or.format.CheckHeader(hdr); err != nil {
		return err
	}
	total, err := or.format.BlockSize(hdr)
	if err != nil {
		return err
	}
	rest := make([]byte, total-headerSize)
	if _, err := io.ReadFull(or.r, rest); err != nil {
		return newFormatErr(FramingError, or.format.Name(), "truncated block body", err)
	}
	if _, isBgzf := or.format.(Bgzf); isBgzf && total == len(bgzfEOF) {
		return io.EOF
	}
	or.dec.Reset()
	out, err := or.dec.Decode(rest)
	if err != nil {
		return err
	}
	or.blockStart = pos
	or.buf = out
	or.consumed = 0
	return nil
}

func (or *OffsetReader) Read(p []byte) (int, error) {
	if or.err != nil {
		return 0, or.err
	}
	for or.consumed >= int64(len(or.buf)) {
		if err := or.fetchBlock(); err != nil {
			if err != io.EOF {
				or.err = err
			}
			return 0, err
		}
	}
	n := copy(p, or.buf[or.consumed:])
	or.consumed += int64(n)
	return n, nil
}

// Offset reports the position of the next byte Read will return.
func (or *OffsetReader) Offset() Offset {
	return Offset{Block: or.blockStart, Off: or.consumed}
}

// Seek jumps to a previously recorded Offset, re-fetching and
// decoding the target block if it isn't the one currently buffered.
func (or *OffsetReader) Seek(o Offset) error {
	or.err = nil
	if o.Block == or.blockStart && or.buf != nil {
		if o.Off < 0 || o.Off > int64(len(or.buf)) {
			return errShortSeek
		}
		or.consumed = o.Off
		return nil
	}
	if _, err := or.r.Seek(o.Block, io.SeekStart); err != nil {
		return err
	}
	if err := or.fetchBlock(); err != nil {
		return err
	}
	if or.blockStart != o.Block || o.Off > int64(len(or.buf)) {
		return errShortSeek
	}
	or.consumed = o.Off
	return nil
}
