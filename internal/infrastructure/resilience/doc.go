/*
Package resilience provides the circuit breaker that fronts the desktop's
collaborators (blob files, metadata database, auth store).

When a collaborator keeps failing, the breaker opens and callers fail fast;
the desktop itself keeps working and the failure surfaces as an error result.
Business misses (wrong password, unknown file) should be returned outside
the guarded call so they never count as failures.

# Usage

	guard := resilience.NewGuard("blob", logger).WithMetrics(metrics)

	err := guard.Run(ctx, "delete_metadata", func(ctx context.Context) error {
		_, err := db.ExecContext(ctx, query, fileID)
		return err
	})

	usage, err := resilience.Do(ctx, guard, "usage", func(ctx context.Context) (int64, error) {
		return meta.Usage(ctx, userID)
	})

A bare breaker:

	breaker := resilience.New("auth", resilience.Settings{
		Cooldown: 30 * time.Second,
		ShouldTrip: func(c resilience.Counts) bool {
			return c.ConsecutiveFailures >= 5
		},
	})
	err := breaker.Call(func() error { return store.Ping(ctx) })

# States

	Closed --[ShouldTrip]--> Open --[Cooldown]--> Half-Open --[Probes successes]--> Closed
	                                                  |
	                                              [failure]
	                                                  v
	                                                Open

Counts reset on every transition and at the end of each closed Window.
Outcomes of calls that started before a reset are discarded.
*/
package resilience
