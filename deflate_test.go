package gzp

import (
	"bytes"
	"compress/gzip"
	"compress/zlib"
	"io"
	"testing"
)

func roundtripStream(t *testing.T, format Format, input []byte, bufferSize int) []byte {
	t.Helper()
	var buf bytes.Buffer
	w, err := NewCompressBuilder(format).BufferSize(bufferSize).Build(&buf)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if _, err := w.Write(input); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := w.Finish(); err != nil {
		t.Fatalf("finish: %v", err)
	}
	return buf.Bytes()
}

func TestGzipStandardDecoder(t *testing.T) {
	input := bytes.Repeat([]byte("the quick brown fox jumps over the lazy dog\n"), 2000)
	out := roundtripStream(t, Gzip{}, input, 4096)

	gz, err := gzip.NewReader(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("gzip.NewReader: %v", err)
	}
	got, err := io.ReadAll(gz)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(got, input) {
		t.Fatal("roundtrip mismatch")
	}
}

func TestGzipMultiMember(t *testing.T) {
	input := bytes.Repeat([]byte("a"), 100)
	out := roundtripStream(t, Gzip{}, input, 16)

	n := 0
	r := bytes.NewReader(out)
	for r.Len() > 0 {
		gz, err := gzip.NewReader(r)
		if err != nil {
			t.Fatalf("member %d: %v", n, err)
		}
		gz.Multistream(false)
		if _, err := io.Copy(io.Discard, gz); err != nil {
			t.Fatalf("member %d body: %v", n, err)
		}
		n++
	}
	if n < 2 {
		t.Fatalf("expected multiple gzip members, got %d", n)
	}
}

func TestZlibStandardDecoder(t *testing.T) {
	input := bytes.Repeat([]byte("zlib payload bytes\n"), 500)
	out := roundtripStream(t, Zlib{}, input, 8192)

	// Every chunk is its own zlib stream and zlib.Reader stops at the end
	// of one stream, so decode the streams one after another.
	var got []byte
	r := bytes.NewReader(out)
	for r.Len() > 0 {
		zr, err := zlib.NewReader(r)
		if err != nil {
			t.Fatalf("zlib.NewReader: %v", err)
		}
		part, err := io.ReadAll(zr)
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		got = append(got, part...)
	}
	if !bytes.Equal(got, input) {
		t.Fatal("roundtrip mismatch")
	}
}

func TestRawDeflateNoFraming(t *testing.T) {
	input := []byte("no header no footer")
	out := roundtripStream(t, RawDeflate{}, input, 64)
	decoded, err := inflateRaw(out)
	if err != nil {
		t.Fatalf("inflateRaw: %v", err)
	}
	if !bytes.Equal(decoded, input) {
		t.Fatal("roundtrip mismatch")
	}
}

func TestGzipXFL(t *testing.T) {
	cases := []struct {
		level int
		want  byte
	}{
		{gzip.BestCompression, 2},
		{gzip.BestSpeed, 4},
		{gzip.DefaultCompression, 0},
		{6, 0},
	}
	for _, c := range cases {
		if got := gzipXFL(c.level); got != c.want {
			t.Errorf("gzipXFL(%d) = %d, want %d", c.level, got, c.want)
		}
	}
}

func TestZlibHeaderChecksum(t *testing.T) {
	for level := -1; level <= 9; level++ {
		hdr := zlibHeader(level)
		if len(hdr) != 2 {
			t.Fatalf("level %d: want 2-byte header, got %d", level, len(hdr))
		}
		if (int(hdr[0])*256+int(hdr[1]))%31 != 0 {
			t.Errorf("level %d: header %v not a multiple of 31", level, hdr)
		}
	}
}

func TestFinishWithNoWritesProducesNoBlock(t *testing.T) {
	// A Finish with no preceding Write has no partial chunk to seal, so
	// it emits no codec member at all rather than an empty one.
	out := roundtripStream(t, Gzip{}, nil, 4096)
	if len(out) != 0 {
		t.Fatalf("expected zero bytes, got %d", len(out))
	}
}
