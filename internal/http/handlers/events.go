package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/lecture-studio/internal/platform/logger"
	"github.com/yungbote/lecture-studio/internal/sse"
)

type EventsHandler struct {
	log *logger.Logger
	hub *sse.SSEHub
}

func NewEventsHandler(log *logger.Logger, hub *sse.SSEHub) *EventsHandler {
	return &EventsHandler{log: log.With("handler", "EventsHandler"), hub: hub}
}

// GET /api/runs/events
func (h *EventsHandler) Stream(c *gin.Context) {
	client := h.hub.NewSSEClient()
	h.hub.AddChannel(client, sse.RunChannel)
	h.log.Debug("SSE stream open", "client_id", client.ID.String())

	h.hub.ServeHTTP(c.Writer, c.Request, client)

	h.hub.CloseClient(client)
	h.log.Debug("SSE stream closed", "client_id", client.ID.String())
}
