package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// InvalidKeyMessage replaces upstream "entity not found" failures, which indicate a revoked key.
const InvalidKeyMessage = "Your API key is invalid or expired. Please select a new key and try again."

const entityNotFoundMarker = "Requested entity was not found."

// IsEntityNotFound reports whether err carries the upstream "entity not found" text.
func IsEntityNotFound(err error) bool {
	return err != nil && strings.Contains(err.Error(), entityNotFoundMarker)
}

// PlanParseError reports an unusable lesson plan document.
type PlanParseError struct {
	Source string
	Err    error
}

func (e *PlanParseError) Error() string {
	return fmt.Sprintf("parse lesson plan %s: %v", e.Source, e.Err)
}
func (e *PlanParseError) Unwrap() error { return e.Err }
func (e *PlanParseError) UserMessage() string {
	return "The lesson plan could not be read. Check that it is valid JSON with at least one topic."
}

// PlanFetchError reports that a remote plan or seed image could not be retrieved.
type PlanFetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *PlanFetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}
func (e *PlanFetchError) Unwrap() error { return e.Err }
func (e *PlanFetchError) UserMessage() string {
	return "The lesson plan could not be downloaded. Check your network connection and try again."
}

type MediaGenerationError struct {
	Kind   MediaKind
	Detail string
	Err    error
}

func (e *MediaGenerationError) Error() string {
	msg := fmt.Sprintf("%s generation failed", e.Kind)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}
func (e *MediaGenerationError) Unwrap() error { return e.Err }
func (e *MediaGenerationError) UserMessage() string {
	if e.Detail != "" {
		return fmt.Sprintf("Failed to generate %s: %s", e.Kind, e.Detail)
	}
	return fmt.Sprintf("Failed to generate %s.", e.Kind)
}

func NewMediaGenerationError(kind MediaKind, detail string, err error) *MediaGenerationError {
	return &MediaGenerationError{Kind: kind, Detail: detail, Err: err}
}

// CredentialError reports a missing or rejected API key. The operator must supply a new one.
type CredentialError struct {
	Message string
	Err     error
}

func (e *CredentialError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("credential: %s: %v", e.msg(), e.Err)
	}
	return "credential: " + e.msg()
}
func (e *CredentialError) Unwrap() error { return e.Err }
func (e *CredentialError) UserMessage() string { return e.msg() }
func (e *CredentialError) msg() string {
	if e.Message == "" {
		return "No API key is configured."
	}
	return e.Message
}

type QuizGenerationError struct {
	Detail string
	Err    error
}

func (e *QuizGenerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("quiz generation: %s: %v", e.Detail, e.Err)
	}
	return "quiz generation: " + e.Detail
}
func (e *QuizGenerationError) Unwrap() error { return e.Err }
func (e *QuizGenerationError) UserMessage() string {
	return "Failed to generate the quiz. Please try again."
}

type UploadError struct {
	Path string
	Err  error
}

func (e *UploadError) Error() string { return fmt.Sprintf("upload %s: %v", e.Path, e.Err) }
func (e *UploadError) Unwrap() error { return e.Err }
func (e *UploadError) UserMessage() string {
	return "Failed to upload media to storage."
}

type PublishError struct {
	Path string
	Err  error
}

func (e *PublishError) Error() string { return fmt.Sprintf("publish %s: %v", e.Path, e.Err) }
func (e *PublishError) Unwrap() error { return e.Err }
func (e *PublishError) UserMessage() string {
	return "Failed to publish the lecture."
}

// TimeoutError reports an operation that exceeded its deadline.
type TimeoutError struct {
	Op    string
	After time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s timed out after %s", e.Op, e.After)
}
func (e *TimeoutError) UserMessage() string {
	return fmt.Sprintf("The %s took too long and was stopped.", e.Op)
}

type userMessager interface {
	UserMessage() string
}

// UserMessage returns the most specific operator-facing message carried by err.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var um userMessager
	if errors.As(err, &um) {
		return um.UserMessage()
	}
	return err.Error()
}
