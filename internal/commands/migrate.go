package commands

import (
	"context"
	"log"

	"github.com/spf13/cobra"

	"library-backend/internal/platform/config"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create tables and indexes for the configured store",
	Long: `Create the books / loans / students collections and their indexes.

SQL backends get one (doc_key, doc) table per collection plus doc_counters.
MongoDB gets the unique and lookup indexes. Safe to run repeatedly.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMigrate(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(ctx context.Context) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return err
	}
	backend, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer backend.Close(context.Background())

	if err := backend.EnsureSchema(ctx, schemas...); err != nil {
		return err
	}
	for _, s := range schemas {
		log.Printf("[INFO] migrated %s (%d indexes)", s.Name, len(s.Indexes))
	}
	return nil
}
