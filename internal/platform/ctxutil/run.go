package ctxutil

import (
	"context"

	"github.com/google/uuid"
)

type (
	runIDKey     struct{}
	traceDataKey struct{}
)

// Default treats a nil ctx as context.Background().
func Default(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

// WithRunID tags ctx with the generation run it belongs to.
func WithRunID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(Default(ctx), runIDKey{}, id)
}

func RunID(ctx context.Context) (uuid.UUID, bool) {
	if ctx == nil {
		return uuid.Nil, false
	}
	id, ok := ctx.Value(runIDKey{}).(uuid.UUID)
	return id, ok && id != uuid.Nil
}

// TraceData is the per-request correlation the HTTP layer echoes in headers and log lines.
// RunID is set when the request names a generation run.
type TraceData struct {
	TraceID   string
	RequestID string
	RunID     string
}

func WithTraceData(ctx context.Context, td *TraceData) context.Context {
	return context.WithValue(Default(ctx), traceDataKey{}, td)
}

func GetTraceData(ctx context.Context) *TraceData {
	if ctx == nil {
		return nil
	}
	td, _ := ctx.Value(traceDataKey{}).(*TraceData)
	return td
}
