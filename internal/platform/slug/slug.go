package slug

import (
	"fmt"
	"regexp"
	"strings"
	"sync/atomic"
	"time"
)

var (
	disallowed = regexp.MustCompile(`[^a-z0-9\s-]`)
	whitespace = regexp.MustCompile(`\s+`)
	hyphens    = regexp.MustCompile(`-+`)

	fallbackSeq atomic.Uint64
	now         = time.Now
)

// Make derives a lowercase, hyphenated, URL-safe name from s.
// Input that reduces to nothing yields a fallback unique within the process.
func Make(s string) string {
	if out := Clean(s); out != "" {
		return out
	}
	return Fallback()
}

// Clean applies the slug rules without the fallback; it returns "" when nothing survives.
func Clean(s string) string {
	out := strings.ToLower(s)
	out = disallowed.ReplaceAllString(out, "")
	out = whitespace.ReplaceAllString(strings.TrimSpace(out), "-")
	out = hyphens.ReplaceAllString(out, "-")
	return strings.Trim(out, "-")
}

// Fallback returns "untitled-lecture-{unixmillis}-{seq}".
func Fallback() string {
	return fmt.Sprintf("untitled-lecture-%d-%d", now().UnixMilli(), fallbackSeq.Add(1))
}
