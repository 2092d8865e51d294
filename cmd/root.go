package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hawaii-osds/mpat-cli/internal/config"
	"github.com/hawaii-osds/mpat-cli/internal/store"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "mpat",
	Short: "Master Parcel Attribute Table derivation pipeline",
	Long:  "Joins the OSDS inventory to Hawaii parcels, derives site constraints (proximity, terrain, regulatory overlays) per parcel, and emits versioned CSV, shapefile, and XLSX artifacts.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

// initStore opens the configured build ledger backend.
func initStore(ctx context.Context) (store.Store, error) {
	if cfg.Store.Driver == "postgres" {
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
	}
	return store.NewSQLite(cfg.Store.SQLitePath)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
