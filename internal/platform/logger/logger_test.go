package logger

import (
	"errors"
	"testing"
)

func TestSanitizeKVsRedactsCredentialKeys(t *testing.T) {
	t.Setenv("LOG_REDACTION_ENABLED", "true")

	got := sanitizeKVs([]interface{}{"api_key", "AIza-secret", "stage", "2/4", "key", "abc"})
	if got[1] != "[REDACTED]" {
		t.Fatalf("api_key: want=%q got=%v", "[REDACTED]", got[1])
	}
	if got[3] != "2/4" {
		t.Fatalf("stage: want=%q got=%v", "2/4", got[3])
	}
	if got[5] != "[REDACTED]" {
		t.Fatalf("key: want=%q got=%v", "[REDACTED]", got[5])
	}
}

func TestScrubURLMasksKeyParam(t *testing.T) {
	in := "https://generativelanguage.googleapis.com/v1beta/files/abc:download?alt=media&key=AIza123"
	want := "https://generativelanguage.googleapis.com/v1beta/files/abc:download?alt=media&key=[REDACTED]"
	if got := ScrubURL(in); got != want {
		t.Fatalf("ScrubURL: want=%q got=%q", want, got)
	}
	if got := ScrubURL("no params here"); got != "no params here" {
		t.Fatalf("ScrubURL passthrough: got=%q", got)
	}
}

func TestSanitizeValueScrubsErrors(t *testing.T) {
	err := errors.New(`Get "https://host/video?alt=media&key=AIza123": dial tcp: timeout`)
	got, ok := sanitizeValue("error", err).(string)
	if !ok {
		t.Fatalf("sanitizeValue: expected scrubbed string")
	}
	if got != `Get "https://host/video?alt=media&key=[REDACTED]": dial tcp: timeout` {
		t.Fatalf("sanitizeValue: got=%q", got)
	}
}
