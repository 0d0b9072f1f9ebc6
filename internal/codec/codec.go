// Package codec converts binary image payloads to and from the text encodings
// used at storage and transport boundaries.
package codec

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// Encode returns the base64 text form of raw image bytes.
func Encode(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// Decode reverses Encode. Malformed input is the only failure mode.
func Decode(text string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(text)
	if err != nil {
		return nil, fmt.Errorf("codec: decode image data: %w", err)
	}
	return data, nil
}

// DataURI renders an inline data URI for the given payload. An empty mime
// falls back to image/png, matching what the model reports for most renders.
func DataURI(mimeType string, data []byte) string {
	if strings.TrimSpace(mimeType) == "" {
		mimeType = "image/png"
	}
	return fmt.Sprintf("data:%s;base64,%s", mimeType, Encode(data))
}

// ParseDataURI splits a data URI into its mime type and decoded payload.
// Plain base64 without the data: prefix is accepted for stored records that
// predate the URI form.
func ParseDataURI(uri string) (string, []byte, error) {
	if !strings.HasPrefix(uri, "data:") {
		data, err := Decode(uri)
		return "", data, err
	}
	head, encoded, ok := strings.Cut(uri, ",")
	if !ok {
		return "", nil, fmt.Errorf("codec: malformed data URI")
	}
	mimeType := strings.TrimPrefix(head, "data:")
	mimeType = strings.TrimSuffix(mimeType, ";base64")
	data, err := Decode(encoded)
	if err != nil {
		return "", nil, err
	}
	return mimeType, data, nil
}
