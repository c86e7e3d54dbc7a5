package gzp

import (
	"bytes"
	"io"
	"testing"

	"github.com/golang/snappy"
)

func TestSnappyStandardDecoder(t *testing.T) {
	enc, err := Snappy{}.NewEncoder(-1)
	if err != nil {
		t.Fatalf("NewEncoder: %v", err)
	}
	input := bytes.Repeat([]byte("snappy framed payload\n"), 1000)
	block, err := enc.Encode(nil, input, nil, false)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	sr := snappy.NewReader(bytes.NewReader(block))
	got, err := io.ReadAll(sr)
	if err != nil {
		t.Fatalf("snappy.NewReader read: %v", err)
	}
	if !bytes.Equal(got, input) {
		t.Fatal("roundtrip mismatch")
	}
}

func TestSnappyConcatenatedChunksReadAsOneStream(t *testing.T) {
	var all []byte
	inputs := [][]byte{[]byte("chunk one"), []byte("chunk two, a bit longer")}
	for _, in := range inputs {
		enc, _ := Snappy{}.NewEncoder(-1)
		block, err := enc.Encode(nil, in, nil, false)
		if err != nil {
			t.Fatalf("Encode: %v", err)
		}
		all = append(all, block...)
	}

	sr := snappy.NewReader(bytes.NewReader(all))
	var want []byte
	for _, in := range inputs {
		want = append(want, in...)
	}
	got, err := io.ReadAll(sr)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("got %q, want %q", got, want)
	}
}
