package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/lecture-studio/internal/platform/ctxutil"
)

const (
	HeaderTraceID   = "X-Trace-Id"
	HeaderRequestID = "X-Request-Id"
	HeaderRunID     = "X-Run-Id"

	ctxKeyTraceID   = "trace_id"
	ctxKeyRequestID = "request_id"
	ctxKeyRunID     = "run_id"
)

// AttachTraceContext gives every request a request id and trace id, echoed in the response headers.
// A well-formed X-Run-Id from the operator UI tags the request with the run it follows.
func AttachTraceContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		td := &ctxutil.TraceData{
			RequestID: headerOr(c, HeaderRequestID, ""),
			TraceID:   headerOr(c, HeaderTraceID, spanTraceID(c)),
		}
		ctx := ctxutil.WithTraceData(c.Request.Context(), td)
		if id, err := uuid.Parse(strings.TrimSpace(c.GetHeader(HeaderRunID))); err == nil && id != uuid.Nil {
			ctx = ctxutil.WithRunID(ctx, id)
			stamp(c, td, id)
		}
		c.Request = c.Request.WithContext(ctx)
		c.Set(ctxKeyTraceID, td.TraceID)
		c.Set(ctxKeyRequestID, td.RequestID)
		c.Writer.Header().Set(HeaderTraceID, td.TraceID)
		c.Writer.Header().Set(HeaderRequestID, td.RequestID)
		c.Next()
	}
}

// StampRunID records the run a handler acted on so the response header and request log name it.
func StampRunID(c *gin.Context, id uuid.UUID) {
	if c == nil || id == uuid.Nil {
		return
	}
	td := ctxutil.GetTraceData(c.Request.Context())
	if td == nil {
		td = &ctxutil.TraceData{}
		c.Request = c.Request.WithContext(ctxutil.WithTraceData(c.Request.Context(), td))
	}
	stamp(c, td, id)
}

func stamp(c *gin.Context, td *ctxutil.TraceData, id uuid.UUID) {
	td.RunID = id.String()
	c.Set(ctxKeyRunID, td.RunID)
	c.Writer.Header().Set(HeaderRunID, td.RunID)
}

func headerOr(c *gin.Context, name, fallback string) string {
	if v := strings.TrimSpace(c.GetHeader(name)); v != "" {
		return v
	}
	if fallback != "" {
		return fallback
	}
	return uuid.New().String()
}

func spanTraceID(c *gin.Context) string {
	if sc := trace.SpanContextFromContext(c.Request.Context()); sc.HasTraceID() {
		return sc.TraceID().String()
	}
	return ""
}
