package gzp

import (
	"bytes"
	"compress/gzip"
	"testing"
)

func TestIsProbablyMultiGzipDetectsChunkedGzipStream(t *testing.T) {
	input := bytes.Repeat([]byte("multi-member detection payload\n"), 3000)
	out := roundtripStream(t, Gzip{}, input, 4096)

	if !IsProbablyMultiGzip(bytes.NewReader(out), DefaultPeekSize) {
		t.Fatal("expected a chunked Gzip-format stream to be detected as multi-member")
	}
}

func TestIsProbablyMultiGzipRejectsSingleMember(t *testing.T) {
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	if _, err := gw.Write(bytes.Repeat([]byte("single member, one gzip.Writer\n"), 3000)); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := gw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	if IsProbablyMultiGzip(bytes.NewReader(buf.Bytes()), DefaultPeekSize) {
		t.Fatal("expected a single-member stream not to be detected as multi-gzip")
	}
}

func TestIsProbablyMultiGzipOversizedSingleMember(t *testing.T) {
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	if _, err := gw.Write(bytes.Repeat([]byte("x"), int(DefaultPeekSize)*2)); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := gw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	if IsProbablyMultiGzip(bytes.NewReader(buf.Bytes()), DefaultPeekSize) {
		t.Fatal("a single member larger than peeksize should not report as multi-gzip")
	}
}
