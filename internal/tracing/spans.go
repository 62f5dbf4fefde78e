package tracing

import (
	"context"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span names.
const (
	SpanDecorate   = "engine.decorate"
	SpanParse      = "engine.parse"
	SpanWalk       = "engine.walk"
	SpanPrefixHTTP = "http."
)

// Span attribute keys.
const (
	AttrResultID        = "result.id"
	AttrSourceBytes     = "source.bytes"
	AttrRenderingMode   = "render.mode"
	AttrOutsideMath     = "render.outside_math"
	AttrNodeCount       = "syntax.nodes"
	AttrDecorationCount = "decoration.count"
	AttrSpanCount       = "decoration.spans"
	AttrCacheHit        = "cache.hit"
	AttrWalkErrors      = "walk.errors"

	AttrHTTPMethod = "http.method"
	AttrHTTPRoute  = "http.route"
	AttrHTTPStatus = "http.status_code"
)

// Fail marks span as failed with err.
func Fail(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// TraceID returns the trace ID of the span in ctx, or "" when ctx carries
// no sampled span.
func TraceID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return ""
	}
	return sc.TraceID().String()
}
