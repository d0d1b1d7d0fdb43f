package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/AxonInnova/StellarFluxOs/internal/infrastructure/config"
	"github.com/AxonInnova/StellarFluxOs/internal/infrastructure/persist"
	"github.com/AxonInnova/StellarFluxOs/internal/providers/blob"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandHasSubcommands(t *testing.T) {
	found := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		found[c.Name()] = true
	}

	for _, name := range []string{"serve", "reset", "version"} {
		assert.True(t, found[name], "missing subcommand %q", name)
	}
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version"})
	defer rootCmd.SetArgs(nil)

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), version)
}

func TestResetClearsUserState(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DB_PATH", "")

	storage := config.StorageConfig{DataDir: dir}
	db, err := persist.OpenDB(storage.DatabasePath())
	require.NoError(t, err)

	ctx := context.Background()
	store := persist.NewSQLStore(db)
	require.NoError(t, store.Set(ctx, "alice", persist.KeyNotepadContent, []byte(`"draft"`)))
	require.NoError(t, store.Set(ctx, "bob", persist.KeyNotepadContent, []byte(`"keep"`)))

	blobs, err := blob.NewProvider(db, blob.Config{Root: storage.BlobDir(), SigningKey: []byte("k")}, nil)
	require.NoError(t, err)
	res := blobs.Upload(ctx, "alice", "notes.txt", strings.NewReader("hello"), 5)
	require.True(t, res.Success, res.Error)
	require.NoError(t, blobs.Close())
	require.NoError(t, db.Close())

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"reset", "--user", "alice", "--files", "--data-dir", dir})
	defer rootCmd.SetArgs(nil)
	require.NoError(t, rootCmd.Execute())

	assert.Contains(t, out.String(), "cleared 1 saved keys for alice")
	assert.Contains(t, out.String(), "deleted 1 files for alice")

	db, err = persist.OpenDB(storage.DatabasePath())
	require.NoError(t, err)
	defer db.Close()

	store = persist.NewSQLStore(db)
	keys, err := store.Keys(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, keys)

	_, ok, err := store.Get(ctx, "bob", persist.KeyNotepadContent)
	require.NoError(t, err)
	assert.True(t, ok, "other users are untouched")
}
