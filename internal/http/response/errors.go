package response

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/lecture-studio/internal/domain"
	"github.com/yungbote/lecture-studio/internal/platform/apierr"
)

// Classify maps a pipeline error onto an HTTP status and error code.
func Classify(err error) *apierr.Error {
	var ae *apierr.Error
	if errors.As(err, &ae) {
		return ae
	}
	var (
		parseErr   *domain.PlanParseError
		fetchErr   *domain.PlanFetchError
		credErr    *domain.CredentialError
		mediaErr   *domain.MediaGenerationError
		quizErr    *domain.QuizGenerationError
		uploadErr  *domain.UploadError
		publishErr *domain.PublishError
		timeoutErr *domain.TimeoutError
	)
	switch {
	case errors.As(err, &credErr):
		return apierr.New(http.StatusUnauthorized, "credential_error", err)
	case errors.As(err, &parseErr):
		return apierr.New(http.StatusBadRequest, "plan_parse_error", err)
	case errors.As(err, &fetchErr):
		return apierr.New(http.StatusBadGateway, "plan_fetch_error", err)
	// Storage failures stay 502 even when the cause is an expired context.
	case errors.As(err, &uploadErr):
		return apierr.New(http.StatusBadGateway, "upload_error", err)
	case errors.As(err, &publishErr):
		return apierr.New(http.StatusBadGateway, "publish_error", err)
	case errors.As(err, &timeoutErr), errors.Is(err, context.DeadlineExceeded):
		return apierr.New(http.StatusGatewayTimeout, "timeout", err)
	case errors.As(err, &mediaErr):
		return apierr.New(http.StatusBadGateway, "media_generation_error", err)
	case errors.As(err, &quizErr):
		return apierr.New(http.StatusBadGateway, "quiz_generation_error", err)
	default:
		return apierr.New(http.StatusInternalServerError, "internal", err)
	}
}

// RespondDomainError writes err using its classified status and the operator-facing message.
func RespondDomainError(c *gin.Context, err error) {
	ae := Classify(err)
	_ = c.Error(err)
	writeError(c, ae.Status, ae.Code, domain.UserMessage(err))
}
