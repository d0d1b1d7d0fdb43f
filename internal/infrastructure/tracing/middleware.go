package tracing

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// HTTPMiddleware opens one span per request, continuing the caller's trace
// when it sends X-Trace-ID, and echoes the ids in the response headers
func HTTPMiddleware(tracer *Tracer) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := WithRemoteContext(c.Request.Context(), c.Request.Header)

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		span, ctx := tracer.StartSpan(ctx, c.Request.Method+" "+route)
		span.SetTag("http.method", c.Request.Method)
		span.SetTag("http.route", route)
		c.Request = c.Request.WithContext(ctx)

		c.Header(HeaderTraceID, string(span.TraceID))
		c.Header(HeaderSpanID, string(span.SpanID))

		c.Next()

		span.SetStatus(c.Writer.Status())
		if len(c.Errors) > 0 {
			span.SetError(c.Errors.Last())
		}
		tracer.End(span)
	}
}

// WithRemoteContext seeds ctx with the trace ids in h
func WithRemoteContext(ctx context.Context, h http.Header) context.Context {
	if traceID := h.Get(HeaderTraceID); traceID != "" {
		ctx = context.WithValue(ctx, traceIDKey, TraceID(traceID))
	}
	if parentID := h.Get(HeaderSpanID); parentID != "" {
		ctx = context.WithValue(ctx, spanIDKey, SpanID(parentID))
	}
	return ctx
}

// Trace runs fn inside a child span named name. A nil tracer runs fn untraced.
func Trace(ctx context.Context, tracer *Tracer, name string, fn func(ctx context.Context) error) error {
	if tracer == nil {
		return fn(ctx)
	}

	span, ctx := tracer.StartSpan(ctx, name)
	err := fn(ctx)
	if err != nil {
		span.SetError(err)
	}
	tracer.End(span)
	return err
}
