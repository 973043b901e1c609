package httpx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

type HTTPStatusCoder interface {
	HTTPStatusCode() int
}

// HTTPError carries status/body for non-2xx responses so callers can decide whether to retry.
type HTTPError struct {
	Method     string
	URL        string
	StatusCode int
	Status     string
	Body       []byte
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("http %s %s: status=%d body=%s", e.Method, e.URL, e.StatusCode, Snippet(e.Body, 600))
}

func (e *HTTPError) HTTPStatusCode() int {
	if e == nil {
		return 0
	}
	return e.StatusCode
}

func Snippet(b []byte, max int) string {
	s := strings.TrimSpace(string(b))
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

func IsRetryableHTTPStatus(code int) bool {
	if code == http.StatusRequestTimeout || code == http.StatusTooManyRequests {
		return true
	}
	return code >= 500 && code <= 599
}

func IsRetryableError(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var sc HTTPStatusCoder
	if errors.As(err, &sc) {
		return IsRetryableHTTPStatus(sc.HTTPStatusCode())
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "connection reset") || strings.Contains(msg, "broken pipe") || strings.Contains(msg, "unexpected eof")
}

// RetryDelay reads a server retry hint, capped at max. The hint may be a Retry-After value
// (seconds or HTTP date) or a duration string such as Google's RetryInfo "3s".
func RetryDelay(hint string, fallback, max time.Duration) time.Duration {
	sleepFor := fallback
	if hint = strings.TrimSpace(hint); hint != "" {
		if secs, err := strconv.Atoi(hint); err == nil && secs > 0 {
			sleepFor = time.Duration(secs) * time.Second
		} else if d, err := time.ParseDuration(hint); err == nil && d > 0 {
			sleepFor = d
		} else if t, err := http.ParseTime(hint); err == nil {
			if d := time.Until(t); d > 0 {
				sleepFor = d
			}
		}
	}
	if max > 0 && sleepFor > max {
		sleepFor = max
	}
	return sleepFor
}

// JitterSleep spreads base by +/-20%.
func JitterSleep(base time.Duration) time.Duration {
	if base <= 0 {
		return 0
	}
	delta := base.Seconds() * 0.2
	low := base.Seconds() - delta
	high := base.Seconds() + delta
	if low < 0 {
		low = 0
	}
	v := low + rand.Float64()*(high-low)
	return time.Duration(v * float64(time.Second))
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// GetBytes performs a single GET and returns the body and its Content-Type.
// Non-2xx responses come back as *HTTPError.
func GetBytes(ctx context.Context, client *http.Client, rawURL string, maxBytes int64) ([]byte, string, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := client.Do(req)
	if err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			urlErr.URL = RedactURL(req.URL)
		}
		return nil, "", err
	}
	defer resp.Body.Close()

	var r io.Reader = resp.Body
	if maxBytes > 0 {
		r = io.LimitReader(resp.Body, maxBytes+1)
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", &HTTPError{
			Method:     req.Method,
			URL:        RedactURL(req.URL),
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       body,
		}
	}
	if maxBytes > 0 && int64(len(body)) > maxBytes {
		return nil, "", fmt.Errorf("response from %s exceeds %d bytes", RedactURL(req.URL), maxBytes)
	}
	return body, strings.TrimSpace(resp.Header.Get("Content-Type")), nil
}

var secretQueryParams = []string{"key", "api_key", "access_token"}

// RedactURL masks userinfo and credential query parameters.
func RedactURL(u *url.URL) string {
	if u == nil {
		return ""
	}
	q := u.Query()
	changed := false
	for _, name := range secretQueryParams {
		if q.Has(name) {
			q.Set(name, "REDACTED")
			changed = true
		}
	}
	if !changed {
		return u.Redacted()
	}
	clone := *u
	clone.RawQuery = q.Encode()
	return clone.Redacted()
}
