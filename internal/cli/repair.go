package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vietddude/linkpay/internal/core/collection"
	"github.com/vietddude/linkpay/internal/core/domain"
	"github.com/vietddude/linkpay/internal/infra/storage/postgres"
)

var repairCmd = &cobra.Command{
	Use:   "repair [owner_id] [collection...]",
	Short: "Rewrite an owner's stored positions as 0..N-1",
	Long: `Repairs gaps and duplicate positions left by failed writes. Without a
collection argument every collection of the owner is repaired.`,
	Args: cobra.MinimumNArgs(1),
	Run:  runRepair,
}

func init() {
	rootCmd.AddCommand(repairCmd)
}

func runRepair(cmd *cobra.Command, args []string) {
	ownerID := args[0]

	collections := domain.CollectionTypes
	if len(args) > 1 {
		collections = nil
		for _, arg := range args[1:] {
			c, err := domain.ParseCollectionType(arg)
			if err != nil {
				slog.Error("Invalid collection", "error", err)
				os.Exit(1)
			}
			collections = append(collections, c)
		}
	}

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

	manager := collection.NewManager(postgres.NewItemRepo(db))

	failed := false
	for _, c := range collections {
		repaired, err := manager.Repair(ctx, ownerID, c)
		if err != nil {
			slog.Error("Failed to repair collection", "owner", ownerID, "collection", c, "error", err)
			failed = true
			continue
		}
		if repaired {
			fmt.Printf("Repaired %s for %s\n", c, ownerID)
		} else {
			fmt.Printf("%s for %s already canonical\n", c, ownerID)
		}
	}
	if failed {
		os.Exit(1)
	}
}
