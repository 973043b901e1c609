package services

import (
	"context"
	"errors"
	"strings"

	"github.com/yungbote/lecture-studio/internal/domain"
	"github.com/yungbote/lecture-studio/internal/platform/gemini"
)

// mediaError maps a generation client failure into the domain taxonomy.
// Errors already in the taxonomy and context cancellation pass through.
func mediaError(kind domain.MediaKind, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var (
		credErr  *domain.CredentialError
		mediaErr *domain.MediaGenerationError
		quizErr  *domain.QuizGenerationError
		timeout  *domain.TimeoutError
	)
	if errors.As(err, &credErr) || errors.As(err, &mediaErr) || errors.As(err, &quizErr) || errors.As(err, &timeout) {
		return err
	}
	if errors.Is(err, gemini.ErrMissingKey) {
		return &domain.CredentialError{Err: err}
	}
	var apiErr *gemini.APIError
	if errors.As(err, &apiErr) {
		return domain.NewMediaGenerationError(kind, strings.TrimSpace(apiErr.Message), err)
	}
	return domain.NewMediaGenerationError(kind, "", err)
}
