package desktop

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/AxonInnova/StellarFluxOs/internal/infrastructure/monitoring"
	"github.com/AxonInnova/StellarFluxOs/internal/infrastructure/persist"
	"github.com/AxonInnova/StellarFluxOs/internal/shared/id"
	"github.com/AxonInnova/StellarFluxOs/internal/shared/types"
	"go.uber.org/zap"
)

// Manager owns the live desktop of every user and their saved workspaces
type Manager struct {
	opts       Options
	workspaces persist.WorkspaceStore
	metrics    *monitoring.Metrics
	logger     *zap.Logger

	mu           sync.RWMutex
	desktops     map[string]*Desktop // Protected by mu
	lastSaved    *time.Time          // Protected by mu
	lastRestored *time.Time          // Protected by mu
}

// NewManager creates a desktop manager
func NewManager(opts Options, workspaces persist.WorkspaceStore) *Manager {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if workspaces == nil {
		workspaces = persist.NewMemoryWorkspaces()
	}
	return &Manager{
		opts:       opts,
		workspaces: workspaces,
		logger:     opts.Logger,
		desktops:   make(map[string]*Desktop),
	}
}

// WithMetrics adds metrics tracking to the manager and its desktops
func (m *Manager) WithMetrics(metrics *monitoring.Metrics) *Manager {
	m.metrics = metrics
	return m
}

// Get returns the desktop for userID, creating it on first use
func (m *Manager) Get(userID, identity string) *Desktop {
	m.mu.RLock()
	d, ok := m.desktops[userID]
	m.mu.RUnlock()
	if ok {
		return d
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if d, ok := m.desktops[userID]; ok {
		return d
	}

	d = New(userID, identity, m.opts, m.metrics)
	m.desktops[userID] = d
	m.recordDesktops()
	m.logger.Debug("Desktop created", zap.String("user_id", userID))
	return d
}

// Lookup returns the live desktop for userID without creating one
func (m *Manager) Lookup(userID string) (*Desktop, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.desktops[userID]
	return d, ok
}

// Release closes and forgets the desktop for userID
func (m *Manager) Release(userID string) bool {
	m.mu.Lock()
	d, ok := m.desktops[userID]
	delete(m.desktops, userID)
	m.recordDesktops()
	m.mu.Unlock()

	if ok {
		d.Close()
	}
	return ok
}

// Save snapshots the user's current workspace under name
func (m *Manager) Save(ctx context.Context, userID, name, description string) (*types.Session, error) {
	d, ok := m.Lookup(userID)
	if !ok {
		return nil, fmt.Errorf("no desktop for user %s", userID)
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = "default"
	}

	now := time.Now()
	session := &types.Session{
		ID:          id.NewSessionID().String(),
		UserID:      userID,
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
		Workspace:   d.Workspace(),
		Metadata:    map[string]interface{}{},
	}

	if err := m.workspaces.Put(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save workspace: %w", err)
	}

	m.mu.Lock()
	m.lastSaved = &now
	m.mu.Unlock()

	if m.metrics != nil {
		m.metrics.IncSessionsSaved()
	}
	return session, nil
}

// Restore applies a saved workspace to the user's desktop
func (m *Manager) Restore(ctx context.Context, userID, sessionID string) (*types.Session, error) {
	d, ok := m.Lookup(userID)
	if !ok {
		return nil, fmt.Errorf("no desktop for user %s", userID)
	}

	session, err := m.workspaces.Get(ctx, userID, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load workspace: %w", err)
	}

	d.ApplyWorkspace(session.Workspace)

	now := time.Now()
	m.mu.Lock()
	m.lastRestored = &now
	m.mu.Unlock()

	if m.metrics != nil {
		m.metrics.IncSessionsRestored()
	}
	return session, nil
}

// List returns the user's saved workspaces, newest first
func (m *Manager) List(ctx context.Context, userID string) ([]types.SessionMetadata, error) {
	sessions, err := m.workspaces.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	metadata := make([]types.SessionMetadata, 0, len(sessions))
	for _, session := range sessions {
		metadata = append(metadata, session.ToMetadata())
	}
	return metadata, nil
}

// Delete removes a saved workspace
func (m *Manager) Delete(ctx context.Context, userID, sessionID string) error {
	return m.workspaces.Delete(ctx, userID, sessionID)
}

// Stats returns manager statistics
func (m *Manager) Stats() types.SessionStats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return types.SessionStats{
		ActiveDesktops: len(m.desktops),
		LastSaved:      m.lastSaved,
		LastRestored:   m.lastRestored,
	}
}

// Close closes every live desktop, flushing pending writes
func (m *Manager) Close() {
	m.mu.Lock()
	desktops := m.desktops
	m.desktops = make(map[string]*Desktop)
	m.recordDesktops()
	m.mu.Unlock()

	for _, d := range desktops {
		d.Close()
	}
}

// recordDesktops publishes the live desktop count (must hold mu)
func (m *Manager) recordDesktops() {
	if m.metrics != nil {
		m.metrics.SetDesktops(len(m.desktops))
	}
}
