// Package profile implements the per-user profile record. EnsureProfile is
// an idempotent get-or-create; UpdateField merges a partial patch into the
// JSON preferences. Failures are logged and reported as a nil profile.
package profile
