package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/lecture-studio/internal/platform/ctxutil"
	"github.com/yungbote/lecture-studio/internal/platform/logger"
)

// APIError carries the ids an operator quotes when reporting a failed run.
type APIError struct {
	Message   string `json:"message"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
	RunID     string `json:"run_id,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// RespondError writes err as the error envelope. Credential query params are masked in the message.
func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		_ = c.Error(err)
		msg = err.Error()
	}
	writeError(c, status, code, msg)
}

func writeError(c *gin.Context, status int, code, msg string) {
	apiErr := APIError{Message: logger.ScrubURL(msg), Code: code}
	if td := ctxutil.GetTraceData(c.Request.Context()); td != nil {
		apiErr.RequestID = td.RequestID
		apiErr.RunID = td.RunID
	}
	c.JSON(status, ErrorEnvelope{Error: apiErr})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// RespondAccepted answers a request that started background work.
func RespondAccepted(c *gin.Context, payload any) {
	c.JSON(http.StatusAccepted, payload)
}
