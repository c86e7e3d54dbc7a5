package gzp

import (
	"bytes"
	"testing"
)

func TestBgzfEncodeDecodeRoundtrip(t *testing.T) {
	enc, err := Bgzf{}.NewEncoder(-1)
	if err != nil {
		t.Fatalf("NewEncoder: %v", err)
	}
	input := bytes.Repeat([]byte("bgzf block contents\n"), 300)
	block, err := enc.Encode(nil, input, nil, false)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	hdr := block[:bgzfHeaderSize]
	if err := (Bgzf{}).CheckHeader(hdr); err != nil {
		t.Fatalf("CheckHeader: %v", err)
	}
	total, err := Bgzf{}.BlockSize(hdr)
	if err != nil {
		t.Fatalf("BlockSize: %v", err)
	}
	if total != len(block) {
		t.Fatalf("BlockSize reported %d, actual block is %d bytes", total, len(block))
	}

	dec := Bgzf{}.NewDecoder()
	out, err := dec.Decode(block[bgzfHeaderSize:])
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !bytes.Equal(out, input) {
		t.Fatal("roundtrip mismatch")
	}
}

func TestBgzfEOFSentinelBytes(t *testing.T) {
	if len(bgzfEOF) != 28 {
		t.Fatalf("expected the canonical 28-byte EOF marker, got %d bytes", len(bgzfEOF))
	}
	if err := (Bgzf{}).CheckHeader(bgzfEOF[:bgzfHeaderSize]); err != nil {
		t.Fatalf("EOF marker header should itself validate as a bgzf header: %v", err)
	}
	total, err := Bgzf{}.BlockSize(bgzfEOF[:bgzfHeaderSize])
	if err != nil {
		t.Fatalf("BlockSize: %v", err)
	}
	if total != len(bgzfEOF) {
		t.Fatalf("EOF marker's own BSIZE field reports %d, want %d", total, len(bgzfEOF))
	}
}

func TestBgzfRejectsOversizedBlock(t *testing.T) {
	enc, _ := Bgzf{}.NewEncoder(0) // uncompressed/fast level to guarantee expansion
	huge := bytes.Repeat([]byte{0x00, 0x01, 0x02, 0x03}, 20000)
	if _, err := enc.Encode(nil, huge, nil, false); err == nil {
		t.Fatal("expected a FramingError for a block exceeding 65536 bytes")
	}
}

func TestBgzfMaxBufferSizeStaysUnderCeiling(t *testing.T) {
	// A worst-case (incompressible) chunk of MaxBufferSize bytes must
	// still fit within the 64KiB BSIZE-addressable block.
	enc, _ := Bgzf{}.NewEncoder(0)
	input := make([]byte, Bgzf{}.MaxBufferSize())
	for i := range input {
		input[i] = byte(i)
	}
	block, err := enc.Encode(nil, input, nil, false)
	if err != nil {
		t.Fatalf("Encode at MaxBufferSize: %v", err)
	}
	if len(block) > maxBgzfBlockSize {
		t.Fatalf("block of %d bytes exceeds the %d ceiling", len(block), maxBgzfBlockSize)
	}
}
