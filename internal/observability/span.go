package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/lecture-studio/internal/platform/ctxutil"
)

const tracerName = "github.com/yungbote/lecture-studio"

const AttrRunID = attribute.Key("lecture.run_id")

// StartSpan starts a span on the global tracer provider. It is a no-op until InitOTel runs.
// Spans started under a generation run carry its id.
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	ctx = ctxutil.Default(ctx)
	if id, ok := ctxutil.RunID(ctx); ok {
		attrs = append(attrs, AttrRunID.String(id.String()))
	}
	return otel.Tracer(tracerName).Start(ctx, name, trace.WithAttributes(attrs...))
}

// EndSpan records err on span (when non-nil) and ends it.
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
