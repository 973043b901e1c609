package mediacodec

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// DecodeBase64 decodes standard base64 text, tolerating missing padding.
func DecodeBase64(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return []byte{}, nil
	}
	out, err := base64.StdEncoding.DecodeString(s)
	if err == nil {
		return out, nil
	}
	if raw, rawErr := base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "=")); rawErr == nil {
		return raw, nil
	}
	return nil, fmt.Errorf("decode base64: %w", err)
}

func EncodeBase64(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

// Concat joins parts in order with a single allocation.
// A lone part is returned as-is.
func Concat(parts ...[]byte) []byte {
	switch len(parts) {
	case 0:
		return []byte{}
	case 1:
		return parts[0]
	}
	total := 0
	for _, p := range parts {
		total += len(p)
	}
	out := make([]byte, total)
	off := 0
	for _, p := range parts {
		off += copy(out[off:], p)
	}
	return out
}
