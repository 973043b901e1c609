package mediacodec

import (
	"errors"
	"fmt"
	stdmime "mime"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const (
	defaultPCMBits = 16
	defaultPCMRate = 24000
)

// ErrContainerMime reports that a MIME type names an already-encoded container.
var ErrContainerMime = errors.New("mime type names an encoded container")

// BaseType lowercases and strips parameters from a MIME type.
func BaseType(mimeType string) string {
	base := mimeType
	if i := strings.Index(base, ";"); i >= 0 {
		base = base[:i]
	}
	return strings.ToLower(strings.TrimSpace(base))
}

func isRawPCM(base string) bool {
	if base == "audio/pcm" || base == "audio/raw" {
		return true
	}
	if !strings.HasPrefix(base, "audio/l") {
		return false
	}
	_, err := strconv.Atoi(strings.TrimPrefix(base, "audio/l"))
	return err == nil
}

// IsContainerMime reports whether mimeType maps to a file format with a known extension.
func IsContainerMime(mimeType string) bool {
	base := BaseType(mimeType)
	if base == "" || isRawPCM(base) {
		return false
	}
	if m := mimetype.Lookup(base); m != nil && m.Extension() != "" {
		return true
	}
	exts, _ := stdmime.ExtensionsByType(base)
	return len(exts) > 0
}

// ExtensionForMime returns a file extension without the leading dot, "bin" when unknown.
func ExtensionForMime(mimeType string) string {
	base := BaseType(mimeType)
	switch base {
	case "audio/wav", "audio/x-wav", "audio/wave":
		return "wav"
	case "audio/mpeg", "audio/mp3":
		return "mp3"
	}
	if m := mimetype.Lookup(base); m != nil && m.Extension() != "" {
		return strings.TrimPrefix(m.Extension(), ".")
	}
	if exts, _ := stdmime.ExtensionsByType(base); len(exts) > 0 {
		return strings.TrimPrefix(exts[0], ".")
	}
	return "bin"
}

// SniffMime detects a MIME type from content.
func SniffMime(b []byte) string {
	return BaseType(mimetype.Detect(b).String())
}

// ParseAudioMimeParams reads PCM parameters from types like "audio/L16;codec=pcm;rate=24000".
// Container types return ErrContainerMime.
func ParseAudioMimeParams(mimeType string) (PCMParams, error) {
	p := PCMParams{NumChannels: 1, SampleRateHz: defaultPCMRate, BitsPerSample: defaultPCMBits}
	if IsContainerMime(mimeType) {
		return p, fmt.Errorf("%q: %w", mimeType, ErrContainerMime)
	}

	parts := strings.Split(mimeType, ";")
	base := strings.TrimSpace(parts[0])
	if i := strings.Index(base, "/"); i >= 0 {
		format := base[i+1:]
		if strings.HasPrefix(format, "L") || strings.HasPrefix(format, "l") {
			if bits, err := strconv.Atoi(format[1:]); err == nil {
				p.BitsPerSample = bits
			}
		}
	}

	for _, param := range parts[1:] {
		k, v, ok := strings.Cut(param, "=")
		if !ok {
			continue
		}
		k = strings.ToLower(strings.TrimSpace(k))
		v = strings.TrimSpace(v)
		switch k {
		case "rate":
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				return p, fmt.Errorf("parse audio mime %q: invalid rate %q", mimeType, v)
			}
			p.SampleRateHz = n
		case "channels":
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				return p, fmt.Errorf("parse audio mime %q: invalid channels %q", mimeType, v)
			}
			p.NumChannels = n
		}
	}
	if p.BitsPerSample <= 0 || p.BitsPerSample%8 != 0 {
		return p, fmt.Errorf("parse audio mime %q: unsupported sample width %d", mimeType, p.BitsPerSample)
	}
	return p, nil
}
