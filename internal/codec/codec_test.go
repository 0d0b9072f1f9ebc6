package codec_test

import (
	"bytes"
	"strings"
	"testing"

	"furnishAi/internal/codec"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	payloads := [][]byte{
		nil,
		{},
		[]byte("x"),
		[]byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a},
		bytes.Repeat([]byte{0x00, 0xff, 0x7f}, 1024),
	}
	for _, p := range payloads {
		got, err := codec.Decode(codec.Encode(p))
		if err != nil {
			t.Fatalf("Decode(Encode(%d bytes)): %v", len(p), err)
		}
		if !bytes.Equal(got, p) {
			t.Fatalf("round trip mismatch for %d byte payload", len(p))
		}
	}
}

func TestDecodeMalformed(t *testing.T) {
	if _, err := codec.Decode("not***base64"); err == nil {
		t.Fatal("expected error for malformed input")
	}
}

func TestDataURI(t *testing.T) {
	uri := codec.DataURI("image/jpeg", []byte{1, 2, 3})
	if !strings.HasPrefix(uri, "data:image/jpeg;base64,") {
		t.Fatalf("unexpected prefix: %s", uri)
	}

	mime, data, err := codec.ParseDataURI(uri)
	if err != nil {
		t.Fatalf("ParseDataURI: %v", err)
	}
	if mime != "image/jpeg" {
		t.Fatalf("mime = %q", mime)
	}
	if !bytes.Equal(data, []byte{1, 2, 3}) {
		t.Fatalf("data = %v", data)
	}
}

func TestDataURIDefaultsToPNG(t *testing.T) {
	uri := codec.DataURI("", []byte("img"))
	if !strings.HasPrefix(uri, "data:image/png;base64,") {
		t.Fatalf("unexpected prefix: %s", uri)
	}
}

func TestParseDataURIPlainBase64(t *testing.T) {
	mime, data, err := codec.ParseDataURI(codec.Encode([]byte("raw")))
	if err != nil {
		t.Fatalf("ParseDataURI: %v", err)
	}
	if mime != "" {
		t.Fatalf("mime = %q, want empty", mime)
	}
	if string(data) != "raw" {
		t.Fatalf("data = %q", data)
	}
}
