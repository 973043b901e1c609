package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/lecture-studio/internal/http/response"
	"github.com/yungbote/lecture-studio/internal/platform/credentials"
	"github.com/yungbote/lecture-studio/internal/platform/logger"
	"github.com/yungbote/lecture-studio/internal/sse"
)

type CredentialHandler struct {
	log   *logger.Logger
	creds credentials.Provider
	hub   *sse.SSEHub
}

func NewCredentialHandler(log *logger.Logger, creds credentials.Provider, hub *sse.SSEHub) *CredentialHandler {
	return &CredentialHandler{log: log.With("handler", "CredentialHandler"), creds: creds, hub: hub}
}

// GET /api/credentials
func (h *CredentialHandler) Status(c *gin.Context) {
	_, ok := h.creds.Get()
	response.RespondOK(c, gin.H{"configured": ok})
}

// PUT /api/credentials
func (h *CredentialHandler) Set(c *gin.Context) {
	var req struct {
		APIKey string `json:"api_key"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.APIKey) == "" {
		response.RespondError(c, http.StatusBadRequest, "invalid_api_key", errors.New("api_key is required"))
		return
	}
	if err := h.creds.Set(req.APIKey); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, credentials.ErrReadOnly) {
			status = http.StatusConflict
		}
		response.RespondError(c, status, "set_api_key_failed", err)
		return
	}
	h.changed(true)
	response.RespondOK(c, gin.H{"configured": true})
}

// DELETE /api/credentials
func (h *CredentialHandler) Clear(c *gin.Context) {
	if err := h.creds.Clear(); err != nil {
		response.RespondError(c, http.StatusInternalServerError, "clear_api_key_failed", err)
		return
	}
	h.changed(false)
	response.RespondOK(c, gin.H{"configured": false})
}

func (h *CredentialHandler) changed(configured bool) {
	h.log.Info("api key updated", "configured", configured)
	if h.hub != nil {
		h.hub.Broadcast(sse.SSEMessage{
			Channel: sse.RunChannel,
			Event:   sse.SSEEventCredentialChanged,
			Data:    map[string]any{"configured": configured},
		})
	}
}
