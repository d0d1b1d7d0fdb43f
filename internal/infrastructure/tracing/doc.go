/*
Package tracing provides lightweight request tracing for the desktop backend.

Spans carry a trace id shared by everything done on behalf of one HTTP
request or WebSocket message, and are reported through zap once finished.

# Usage

	tracer := tracing.New("stellar", logger)
	defer tracer.Close()

	router.Use(tracing.HTTPMiddleware(tracer))

	err := tracing.Trace(ctx, tracer, "blob.upload", func(ctx context.Context) error {
		return store.Put(ctx, path, body)
	})

# Trace Format

Traces use standard HTTP headers for propagation:
- X-Trace-ID: Unique identifier for entire request flow
- X-Span-ID: Identifier for current operation
*/
package tracing
