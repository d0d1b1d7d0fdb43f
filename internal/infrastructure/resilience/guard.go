package resilience

import (
	"context"
	"errors"
	"time"

	"github.com/AxonInnova/StellarFluxOs/internal/infrastructure/monitoring"
	"github.com/AxonInnova/StellarFluxOs/internal/infrastructure/tracing"
	"go.uber.org/zap"
)

// Guard wraps calls to one external collaborator (blob store, metadata
// database, auth store) with a breaker, metrics and logging.
type Guard struct {
	service string
	breaker *Breaker
	metrics *monitoring.Metrics
	tracer  *tracing.Tracer
	logger  *zap.Logger
}

// CollaboratorSettings returns breaker settings tuned for local collaborators:
// trip after five consecutive failures, probe again after ten seconds.
func CollaboratorSettings(logger *zap.Logger) Settings {
	return Settings{
		Probes:   1,
		Window:   time.Minute,
		Cooldown: 10 * time.Second,
		ShouldTrip: func(counts Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to State) {
			if logger != nil {
				logger.Warn("circuit breaker state change",
					zap.String("breaker", name),
					zap.String("from", from.String()),
					zap.String("to", to.String()),
				)
			}
		},
	}
}

// NewGuard creates a guard for service
func NewGuard(service string, logger *zap.Logger) *Guard {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Guard{
		service: service,
		breaker: New(service, CollaboratorSettings(logger)),
		logger:  logger,
	}
}

// WithMetrics adds metrics tracking to the guard
func (g *Guard) WithMetrics(metrics *monitoring.Metrics) *Guard {
	g.metrics = metrics
	return g
}

// WithTracer records each call as a child span of the caller's trace
func (g *Guard) WithTracer(tracer *tracing.Tracer) *Guard {
	g.tracer = tracer
	return g
}

// Breaker exposes the underlying breaker
func (g *Guard) Breaker() *Breaker {
	return g.breaker
}

// Run executes fn for method through the breaker. Context cancellation is
// reported without counting against the collaborator.
func (g *Guard) Run(ctx context.Context, method string, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	start := time.Now()
	err := tracing.Trace(ctx, g.tracer, g.service+"."+method, func(ctx context.Context) error {
		return g.breaker.Call(func() error {
			err := fn(ctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	})
	if err == nil {
		err = ctx.Err()
	}

	g.record(method, start, err)
	return err
}

// Do runs fn through g and returns its typed result
func Do[T any](ctx context.Context, g *Guard, method string, fn func(ctx context.Context) (T, error)) (T, error) {
	var out T
	err := g.Run(ctx, method, func(ctx context.Context) error {
		v, err := fn(ctx)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	return out, err
}

func (g *Guard) record(method string, start time.Time, err error) {
	status := "success"
	switch {
	case errors.Is(err, ErrCircuitOpen), errors.Is(err, ErrTooManyRequests):
		status = "rejected"
	case err != nil:
		status = "error"
	}

	if err != nil && status == "error" {
		g.logger.Debug("collaborator call failed",
			zap.String("service", g.service),
			zap.String("method", method),
			zap.Error(err),
		)
	}

	if g.metrics == nil {
		return
	}
	g.metrics.RecordServiceCall(g.service, method, status, time.Since(start))
	if err != nil {
		g.metrics.RecordServiceError(g.service, method, status)
	}
}
