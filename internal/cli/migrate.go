package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vietddude/linkpay/internal/infra/storage/postgres"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	Run:   runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) {
	cfg := loadConfig()

	ctx := context.Background()
	db, err := postgres.NewDB(ctx, cfg.Database)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := postgres.Migrate(ctx, db.DB.DB); err != nil {
		slog.Error("Failed to migrate database", "error", err)
		os.Exit(1)
	}

	version, err := postgres.MigrationVersion(ctx, db.DB.DB)
	if err != nil {
		slog.Error("Failed to read migration version", "error", err)
		os.Exit(1)
	}
	fmt.Printf("Database at migration version %d\n", version)
}
