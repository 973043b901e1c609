package blobstore

import (
	"context"
	"io"
	"strings"
	"time"
)

// Entry is one listing result. Prefix entries stand for "directories" one level below the listed prefix.
type Entry struct {
	Key     string
	Prefix  bool
	Size    int64
	Updated time.Time
}

// Store is durable, path-addressed blob storage. Upload overwrites existing objects.
type Store interface {
	Upload(ctx context.Context, key, contentType string, r io.Reader) (string, error)
	// List returns objects and sub-prefixes directly under prefix.
	List(ctx context.Context, prefix string) ([]Entry, error)
	PublicURL(key string) string
}

// ContentTypeForKey guesses a Content-Type from the key's extension.
func ContentTypeForKey(key string) string {
	s := strings.ToLower(strings.TrimSpace(key))
	if s == "" {
		return ""
	}
	if i := strings.Index(s, "?"); i >= 0 {
		s = s[:i]
	}
	switch {
	case strings.HasSuffix(s, ".png"):
		return "image/png"
	case strings.HasSuffix(s, ".jpg"), strings.HasSuffix(s, ".jpeg"):
		return "image/jpeg"
	case strings.HasSuffix(s, ".webp"):
		return "image/webp"
	case strings.HasSuffix(s, ".mp4"), strings.HasSuffix(s, ".m4v"):
		return "video/mp4"
	case strings.HasSuffix(s, ".webm"):
		return "video/webm"
	case strings.HasSuffix(s, ".wav"):
		return "audio/wav"
	case strings.HasSuffix(s, ".mp3"):
		return "audio/mpeg"
	case strings.HasSuffix(s, ".ogg"):
		return "audio/ogg"
	case strings.HasSuffix(s, ".html"), strings.HasSuffix(s, ".htm"):
		return "text/html; charset=utf-8"
	case strings.HasSuffix(s, ".json"):
		return "application/json"
	default:
		return ""
	}
}

// CleanKey trims whitespace and leading slashes.
func CleanKey(key string) string {
	return strings.TrimLeft(strings.TrimSpace(key), "/")
}

// GroupListing turns a flat key list into one level of entries below prefix.
func GroupListing(prefix string, objects []Entry) []Entry {
	seen := map[string]bool{}
	var out []Entry
	for _, o := range objects {
		if !strings.HasPrefix(o.Key, prefix) {
			continue
		}
		rest := strings.TrimPrefix(o.Key, prefix)
		if rest == "" {
			continue
		}
		if i := strings.Index(rest, "/"); i >= 0 {
			dir := prefix + rest[:i+1]
			if !seen[dir] {
				seen[dir] = true
				out = append(out, Entry{Key: dir, Prefix: true})
			}
			continue
		}
		out = append(out, o)
	}
	return out
}
