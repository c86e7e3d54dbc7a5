package gzp

import (
	"hash"
	"hash/adler32"
	"hash/crc32"

	"github.com/cespare/xxhash/v2"
)

// Checker accumulates a running checksum plus a byte count, mirroring
// the per-format check column of the codec profile table: CRC32 for
// gzip/mgzip/bgzf, Adler32 for zlib, xxhash for lz4, and a pass-through
// no-op for formats (raw deflate, snappy) whose container carries no
// redundant length/checksum footer of its own.
type Checker interface {
	// Write folds more bytes into the running checksum. It never fails.
	Write(p []byte) (int, error)
	// Sum returns the current checksum value.
	Sum() uint32
	// Amount returns the number of bytes folded in so far.
	Amount() uint32
	// Reset clears the checksum and byte count for reuse on the next block.
	Reset()
}

// crc32Checker is the gzip/mgzip/bgzf check, using the IEEE polynomial
// exactly as gzip itself does.
type crc32Checker struct {
	sum    uint32
	amount uint32
}

func newCRC32Checker() Checker { return &crc32Checker{} }

func (c *crc32Checker) Write(p []byte) (int, error) {
	c.sum = crc32.Update(c.sum, crc32.IEEETable, p)
	c.amount += uint32(len(p))
	return len(p), nil
}

func (c *crc32Checker) Sum() uint32    { return c.sum }
func (c *crc32Checker) Amount() uint32 { return c.amount }
func (c *crc32Checker) Reset()         { c.sum, c.amount = 0, 0 }

// adler32Checker is the zlib check.
type adler32Checker struct {
	h      hash.Hash32
	amount uint32
}

func newAdler32Checker() Checker { return &adler32Checker{h: adler32.New()} }

func (c *adler32Checker) Write(p []byte) (int, error) {
	n, err := c.h.Write(p)
	c.amount += uint32(len(p))
	return n, err
}

func (c *adler32Checker) Sum() uint32    { return c.h.Sum32() }
func (c *adler32Checker) Amount() uint32 { return c.amount }
func (c *adler32Checker) Reset()         { c.h.Reset(); c.amount = 0 }

// xxhashChecker backs the Lz4 format: LZ4 frames carry an xxhash32
// content checksum, so this is the one check kind not mirrored from a
// stdlib hash package.
type xxhashChecker struct {
	d      *xxhash.Digest
	amount uint32
}

func newXXHashChecker() Checker {
	return &xxhashChecker{d: xxhash.New()}
}

func (c *xxhashChecker) Write(p []byte) (int, error) {
	c.amount += uint32(len(p))
	return c.d.Write(p)
}

func (c *xxhashChecker) Sum() uint32 {
	return uint32(c.d.Sum64())
}

func (c *xxhashChecker) Amount() uint32 { return c.amount }

func (c *xxhashChecker) Reset() {
	c.d.Reset()
	c.amount = 0
}

// passThroughChecker performs no calculation; it backs formats whose
// own container format already carries the integrity check it needs
// (raw deflate has none at all, snappy's frame format has its own
// per-chunk crc32c that this package does not need to duplicate).
type passThroughChecker struct{}

func newPassThroughChecker() Checker { return passThroughChecker{} }

func (passThroughChecker) Write(p []byte) (int, error) { return len(p), nil }
func (passThroughChecker) Sum() uint32                 { return 0 }
func (passThroughChecker) Amount() uint32              { return 0 }
func (passThroughChecker) Reset()                      {}
