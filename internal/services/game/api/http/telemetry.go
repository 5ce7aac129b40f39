package http

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// annotateSpan tags the active server span with the session being operated
// on. No-op when tracing is disabled or the span is not recording.
func annotateSpan(ctx context.Context, sessionID string) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.SetAttributes(attribute.String("killchain.session_id", sessionID))
}
