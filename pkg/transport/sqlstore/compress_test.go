package sqlstore

import (
	"bytes"
	"testing"
)

func TestCompressDecompressBlobRoundTrip(t *testing.T) {
	original := bytes.Repeat([]byte("hexswarm-snapshot-payload"), 64)

	compressed, err := compressBlob(original)
	if err != nil {
		t.Fatalf("compress: %v", err)
	}
	if len(compressed) == 0 {
		t.Fatal("expected non-empty compressed payload")
	}

	decompressed, err := decompressBlob(compressed)
	if err != nil {
		t.Fatalf("decompress: %v", err)
	}
	if !bytes.Equal(decompressed, original) {
		t.Fatal("expected decompressed blob to match the original exactly")
	}
}

func TestCompressBlobEmptyInput(t *testing.T) {
	compressed, err := compressBlob(nil)
	if err != nil {
		t.Fatalf("compress: %v", err)
	}
	decompressed, err := decompressBlob(compressed)
	if err != nil {
		t.Fatalf("decompress: %v", err)
	}
	if len(decompressed) != 0 {
		t.Fatalf("expected empty round trip, got %d bytes", len(decompressed))
	}
}
