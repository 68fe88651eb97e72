package cli

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vietddude/linkpay/internal/core/domain"
)

var listCmd = &cobra.Command{
	Use:   "list [collection]",
	Short: "List a collection of the signed-in owner in display order",
	Args:  cobra.ExactArgs(1),
	Run:   runList,
}

func init() {
	addRemoteFlags(listCmd)
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) {
	collection, err := domain.ParseCollectionType(args[0])
	if err != nil {
		slog.Error("Invalid collection", "error", err)
		os.Exit(1)
	}

	items, err := newClient().ListItems(context.Background(), collection)
	if err != nil {
		slog.Error("Failed to list items", "collection", collection, "error", err)
		os.Exit(1)
	}
	printItems(os.Stdout, items)
}
