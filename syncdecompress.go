package gzp

import (
	"bytes"
	"io"
)

// SyncDecompress implements the same Reader contract as ParDecompress
// but reads and decodes one block at a time on the caller's goroutine.
type SyncDecompress struct {
	format BlockFormat
	source source
	dec    Decoder

	leftover  []byte
	sawSealed bool
	terminal  error
	done      bool
}

func newSyncDecompress(cfg decompressConfig) *SyncDecompress {
	return &SyncDecompress{
		format: cfg.format,
		source: cfg.source,
		dec:    cfg.format.NewDecoder(),
	}
}

func (d *SyncDecompress) nextBlock() ([]byte, error) {
	headerSize := d.format.HeaderSize()
	_, isBgzf := d.format.(Bgzf)

	hdr := make([]byte, headerSize)
	n, err := io.ReadFull(d.source, hdr)
	if err != nil && n == 0 {
		if err != io.EOF {
			return nil, newErr(SourceError, "read block header", err)
		}
		if isBgzf && !d.sawSealed {
			return nil, newErr(MissingEofBlock, "stream ended without BGZF EOF member", nil)
		}
		return nil, io.EOF
	}
	if err != nil {
		return nil, newFormatErr(FramingError, d.format.Name(), "truncated block header", err)
	}
	if err := d.format.CheckHeader(hdr); err != nil {
		return nil, err
	}
	total, err := d.format.BlockSize(hdr)
	if err != nil {
		return nil, err
	}
	if total < headerSize {
		return nil, newFormatErr(FramingError, d.format.Name(), "block size smaller than header", nil)
	}
	rest := make([]byte, total-headerSize)
	if _, err := io.ReadFull(d.source, rest); err != nil {
		return nil, newFormatErr(FramingError, d.format.Name(), "truncated block body", err)
	}

	if isBgzf {
		full := append(append([]byte{}, hdr...), rest...)
		if bytes.Equal(full, bgzfEOF) {
			d.sawSealed = true
			return d.nextBlock()
		}
	}

	d.dec.Reset()
	out, err := d.dec.Decode(rest)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Close is a no-op: SyncDecompress runs entirely on the caller's
// goroutine, so there is nothing to cancel or join.
func (d *SyncDecompress) Close() error {
	return nil
}

func (d *SyncDecompress) Read(p []byte) (int, error) {
	for len(d.leftover) == 0 {
		if d.done {
			if d.terminal != nil {
				return 0, d.terminal
			}
			return 0, io.EOF
		}
		block, err := d.nextBlock()
		if err != nil {
			d.done = true
			if err != io.EOF {
				d.terminal = err
			}
			continue
		}
		d.leftover = block
	}
	n := copy(p, d.leftover)
	d.leftover = d.leftover[n:]
	return n, nil
}
