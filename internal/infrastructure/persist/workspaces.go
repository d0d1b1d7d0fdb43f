package persist

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/AxonInnova/StellarFluxOs/internal/shared/types"
	"github.com/bytedance/sonic"
)

// ErrWorkspaceNotFound is returned when a snapshot id is unknown for the user
var ErrWorkspaceNotFound = errors.New("workspace not found")

// WorkspaceStore holds saved workspace snapshots per user
type WorkspaceStore interface {
	Put(ctx context.Context, session *types.Session) error
	Get(ctx context.Context, userID, id string) (*types.Session, error)
	List(ctx context.Context, userID string) ([]*types.Session, error)
	Delete(ctx context.Context, userID, id string) error
}

// SQLWorkspaces stores snapshots in the workspaces table
type SQLWorkspaces struct {
	db *sql.DB
}

// NewSQLWorkspaces creates a snapshot store over an opened database
func NewSQLWorkspaces(db *sql.DB) *SQLWorkspaces {
	return &SQLWorkspaces{db: db}
}

// Put inserts or replaces a snapshot
func (s *SQLWorkspaces) Put(ctx context.Context, session *types.Session) error {
	data, err := sonic.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal workspace: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO workspaces (id, user_id, name, data, created_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, data = excluded.data`,
		session.ID, session.UserID, session.Name, data, session.CreatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to write workspace: %w", err)
	}
	return nil
}

// Get loads one snapshot owned by userID
func (s *SQLWorkspaces) Get(ctx context.Context, userID, id string) (*types.Session, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT data FROM workspaces WHERE id = ? AND user_id = ?", id, userID,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrWorkspaceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read workspace: %w", err)
	}
	return decodeWorkspace(id, data)
}

// List returns the user's snapshots, newest first
func (s *SQLWorkspaces) List(ctx context.Context, userID string) ([]*types.Session, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, data FROM workspaces WHERE user_id = ? ORDER BY created_at DESC, id DESC", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list workspaces: %w", err)
	}
	defer rows.Close()

	var sessions []*types.Session
	for rows.Next() {
		var id string
		var data []byte
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("failed to scan workspace: %w", err)
		}
		session, err := decodeWorkspace(id, data)
		if err != nil {
			continue
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

// Delete removes one snapshot
func (s *SQLWorkspaces) Delete(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM workspaces WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete workspace: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrWorkspaceNotFound
	}
	return nil
}

func decodeWorkspace(id string, data []byte) (*types.Session, error) {
	var session types.Session
	if err := sonic.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal workspace %s: %w", id, err)
	}
	if session.ID == "" {
		return nil, fmt.Errorf("workspace %s has empty ID field", id)
	}
	return &session, nil
}

// MemoryWorkspaces keeps snapshots in memory
type MemoryWorkspaces struct {
	sessions sync.Map // id -> *types.Session
}

// NewMemoryWorkspaces creates an empty in-memory snapshot store
func NewMemoryWorkspaces() *MemoryWorkspaces {
	return &MemoryWorkspaces{}
}

// Put stores a copy of session
func (m *MemoryWorkspaces) Put(_ context.Context, session *types.Session) error {
	cp := *session
	m.sessions.Store(session.ID, &cp)
	return nil
}

// Get returns a copy of the snapshot
func (m *MemoryWorkspaces) Get(_ context.Context, userID, id string) (*types.Session, error) {
	v, ok := m.sessions.Load(id)
	if !ok || v.(*types.Session).UserID != userID {
		return nil, ErrWorkspaceNotFound
	}
	cp := *v.(*types.Session)
	return &cp, nil
}

// List returns the user's snapshots, newest first
func (m *MemoryWorkspaces) List(_ context.Context, userID string) ([]*types.Session, error) {
	var sessions []*types.Session
	m.sessions.Range(func(_, value interface{}) bool {
		if s := value.(*types.Session); s.UserID == userID {
			cp := *s
			sessions = append(sessions, &cp)
		}
		return true
	})
	sort.Slice(sessions, func(i, j int) bool {
		if sessions[i].CreatedAt.Equal(sessions[j].CreatedAt) {
			return sessions[i].ID > sessions[j].ID
		}
		return sessions[i].CreatedAt.After(sessions[j].CreatedAt)
	})
	return sessions, nil
}

// Delete removes one snapshot
func (m *MemoryWorkspaces) Delete(_ context.Context, userID, id string) error {
	v, ok := m.sessions.Load(id)
	if !ok || v.(*types.Session).UserID != userID {
		return ErrWorkspaceNotFound
	}
	m.sessions.Delete(id)
	return nil
}
