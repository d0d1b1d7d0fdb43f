package main

import (
	"context"
	"fmt"

	"github.com/AxonInnova/StellarFluxOs/internal/infrastructure/persist"
	"github.com/AxonInnova/StellarFluxOs/internal/providers/blob"
	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear a user's saved desktop state",
	Long:  "Clears the persisted window layout, terminal history and notepad of one user. With --files the user's uploaded files are deleted too. Run it while the server is stopped.",
	RunE:  runReset,
}

func init() {
	rootCmd.AddCommand(resetCmd)
	resetCmd.Flags().String("user", "local", "User id whose desktop to reset")
	resetCmd.Flags().Bool("files", false, "Also delete the user's uploaded files")
}

func runReset(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	userID, _ := cmd.Flags().GetString("user")
	withFiles, _ := cmd.Flags().GetBool("files")

	db, err := persist.OpenDB(cfg.Storage.DatabasePath())
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()
	store := persist.NewSQLStore(db)
	keys, err := store.Keys(ctx, userID)
	if err != nil {
		return err
	}
	if err := store.Clear(ctx, userID); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "cleared %d saved keys for %s\n", len(keys), userID)

	if !withFiles {
		return nil
	}

	blobs, err := blob.NewProvider(db, blob.Config{
		Root:       cfg.Storage.BlobDir(),
		Quota:      cfg.Storage.QuotaBytes,
		SigningKey: []byte(cfg.Auth.SigningKey),
	}, nil)
	if err != nil {
		return err
	}
	defer blobs.Close()

	removed, err := blobs.AdminReset(ctx, userID)
	if err != nil {
		return fmt.Errorf("file reset incomplete: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "deleted %d files for %s\n", removed, userID)
	return nil
}
