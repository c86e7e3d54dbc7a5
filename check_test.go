package gzp

import (
	"hash/adler32"
	"hash/crc32"
	"testing"

	"github.com/cespare/xxhash/v2"
)

func TestCRC32CheckerMatchesStdlib(t *testing.T) {
	c := newCRC32Checker()
	data := []byte("crc32 checker payload")
	c.Write(data)
	if want := crc32.ChecksumIEEE(data); c.Sum() != want {
		t.Errorf("Sum() = %d, want %d", c.Sum(), want)
	}
	if c.Amount() != uint32(len(data)) {
		t.Errorf("Amount() = %d, want %d", c.Amount(), len(data))
	}
	c.Reset()
	if c.Sum() != 0 || c.Amount() != 0 {
		t.Error("Reset did not clear state")
	}
}

func TestAdler32CheckerMatchesStdlib(t *testing.T) {
	c := newAdler32Checker()
	data := []byte("adler32 checker payload")
	c.Write(data)
	if want := adler32.Checksum(data); c.Sum() != want {
		t.Errorf("Sum() = %d, want %d", c.Sum(), want)
	}
	c.Reset()
	if c.Sum() != 1 {
		t.Errorf("Reset should leave the seeded value 1, got %d", c.Sum())
	}
}

func TestXXHashCheckerMatchesLibrary(t *testing.T) {
	c := newXXHashChecker()
	data := []byte("xxhash checker payload")
	c.Write(data)
	want := uint32(xxhash.Sum64(data))
	if c.Sum() != want {
		t.Errorf("Sum() = %d, want %d", c.Sum(), want)
	}
}

func TestPassThroughCheckerIsNoop(t *testing.T) {
	c := newPassThroughChecker()
	n, err := c.Write([]byte("ignored"))
	if err != nil || n != len("ignored") {
		t.Fatalf("Write() = (%d, %v)", n, err)
	}
	if c.Sum() != 0 || c.Amount() != 0 {
		t.Error("pass-through checker should report zero sum and amount")
	}
}
