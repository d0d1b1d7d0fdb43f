// Package types provides shared data structures for the StellarFlux backend.
//
// This package defines core types used across all backend components,
// ensuring type safety and consistent data structures.
//
// Core Types:
//   - WindowEntry, WindowView, RegistryState: Window registry records
//   - Frame, DockItem: Rendered surface and launcher output
//   - Descriptor, Manifest: Application catalog
//   - User, AuthSession, AuthResult, Profile: Auth and profile collaborators
//   - FileRecord, QuotaCheck, UploadResult: Blob storage collaborator
//   - Session, Workspace: Workspace snapshots
//
// Example Usage:
//
//	entry := types.WindowEntry{
//	    ID:       "terminal",
//	    Position: types.WindowPosition{X: 120, Y: 80},
//	    Size:     types.WindowSize{Width: 600, Height: 400},
//	}
package types
