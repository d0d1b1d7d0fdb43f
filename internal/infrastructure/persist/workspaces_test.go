package persist

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/AxonInnova/StellarFluxOs/internal/shared/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkspaceStores(t *testing.T) {
	stores := map[string]func(t *testing.T) WorkspaceStore{
		"sqlite": func(t *testing.T) WorkspaceStore {
			db, err := OpenDB(filepath.Join(t.TempDir(), "ws.db"))
			require.NoError(t, err)
			t.Cleanup(func() { db.Close() })
			return NewSQLWorkspaces(db)
		},
		"memory": func(*testing.T) WorkspaceStore { return NewMemoryWorkspaces() },
	}

	for name, open := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := open(t)
			base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

			older := &types.Session{
				ID: "sess_a", UserID: "u1", Name: "morning", CreatedAt: base,
				Workspace: types.Workspace{Registry: types.RegistryState{
					Windows:    map[string]types.WindowEntry{"terminal": {ID: "terminal"}},
					FocusOrder: []string{"terminal"},
				}},
			}
			newer := &types.Session{ID: "sess_b", UserID: "u1", Name: "evening", CreatedAt: base.Add(time.Hour)}
			foreign := &types.Session{ID: "sess_c", UserID: "u2", Name: "theirs", CreatedAt: base}

			for _, session := range []*types.Session{older, newer, foreign} {
				require.NoError(t, s.Put(ctx, session))
			}

			list, err := s.List(ctx, "u1")
			require.NoError(t, err)
			require.Len(t, list, 2)
			assert.Equal(t, "sess_b", list[0].ID)
			assert.Equal(t, "sess_a", list[1].ID)

			got, err := s.Get(ctx, "u1", "sess_a")
			require.NoError(t, err)
			assert.Equal(t, []string{"terminal"}, got.Workspace.Registry.FocusOrder)

			_, err = s.Get(ctx, "u1", "sess_c")
			assert.ErrorIs(t, err, ErrWorkspaceNotFound, "snapshots are private to their owner")

			require.NoError(t, s.Delete(ctx, "u1", "sess_a"))
			assert.ErrorIs(t, s.Delete(ctx, "u1", "sess_a"), ErrWorkspaceNotFound)
		})
	}
}
