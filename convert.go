package gzp

import (
	"compress/gzip"
	"io"
)

// ConvertMode selects the target framing Convert re-encodes a plain
// gzip file into.
type ConvertMode int

const (
	// ConvertToMgzip re-encodes as fixed-size Mgzip blocks.
	ConvertToMgzip ConvertMode = iota
	// ConvertToRsyncableGzip re-encodes as a self-contained-member-per-
	// chunk Gzip stream using content-defined chunk boundaries, the
	// same trade-off "gzip --rsyncable" makes.
	ConvertToRsyncableGzip
)

// Convert decompresses a plain gzip file read from r and re-encodes it
// under one of this package's own framings, run single-threaded so the
// two ends of the pipe stay in lock-step. It approximates the source
// file's original compression level from its header's XFL byte, the
// same heuristic gzip --list-style tools use, since the gzip format
// doesn't otherwise expose it.
func Convert(w io.Writer, r io.ReadSeeker, mode ConvertMode) error {
	var gzhead [10]byte
	if _, err := io.ReadFull(r, gzhead[:]); err != nil {
		return err
	}
	level := gzip.DefaultCompression
	switch gzhead[8] {
	case 2:
		level = gzip.BestCompression
	case 4:
		level = gzip.BestSpeed
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return err
	}

	fz, err := gzip.NewReader(r)
	if err != nil {
		return err
	}
	defer fz.Close()

	var format Format
	rsyncable := false
	switch mode {
	case ConvertToMgzip:
		format = Mgzip{}
	case ConvertToRsyncableGzip:
		format = Gzip{}
		rsyncable = true
	default:
		return newErr(ConfigurationError, "unknown convert mode", nil)
	}

	oz, err := NewCompressBuilder(format).Level(level).Rsyncable(rsyncable).Build(w)
	if err != nil {
		return err
	}
	if _, err := io.Copy(oz, fz); err != nil {
		return err
	}
	return oz.Finish()
}
