// Package providers groups the collaborators the desktop depends on.
//
// Each collaborator is its own subpackage, backed by the shared SQLite
// database and wrapped in a resilience guard:
//   - auth: Sign up, sign in, guest sessions, session lookup and auth events
//   - profile: Get-or-create user profiles and partial device-spec updates
//   - blob: Quota-checked file uploads, listing, deletion and signed downloads
//
// Example Usage:
//
//	users := auth.NewProvider(db, cfg.Auth.TokenTTL, logger).WithGuard(guard)
//	res := users.SignInAsGuest(ctx)
package providers
