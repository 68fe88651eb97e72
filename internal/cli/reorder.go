package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/vietddude/linkpay/internal/core/config"
	"github.com/vietddude/linkpay/internal/core/domain"
	"github.com/vietddude/linkpay/internal/core/ordering"
)

var moves []string

var reorderCmd = &cobra.Command{
	Use:   "reorder [collection]",
	Short: "Move items of a collection and sync the new order",
	Long: `Applies one or more drag gestures, given as --move from:to index pairs,
to the current order. A single move is persisted at once; several moves are
coalesced into one batch.`,
	Args: cobra.ExactArgs(1),
	Run:  runReorder,
}

func init() {
	addRemoteFlags(reorderCmd)
	reorderCmd.Flags().StringArrayVar(&moves, "move", nil, "gesture as from:to (repeatable)")
	_ = reorderCmd.MarkFlagRequired("move")
	rootCmd.AddCommand(reorderCmd)
}

type gesture struct {
	from, to int
}

func parseMove(s string) (gesture, error) {
	fromStr, toStr, ok := strings.Cut(s, ":")
	if !ok {
		return gesture{}, fmt.Errorf("invalid move %q, expected from:to", s)
	}
	from, err := strconv.Atoi(fromStr)
	if err != nil {
		return gesture{}, fmt.Errorf("invalid move %q: %w", s, err)
	}
	to, err := strconv.Atoi(toStr)
	if err != nil {
		return gesture{}, fmt.Errorf("invalid move %q: %w", s, err)
	}
	return gesture{from: from, to: to}, nil
}

// view holds the order currently shown to the user.
type view struct {
	mu    sync.Mutex
	items []domain.OrderedItem
}

func (v *view) update(items []domain.OrderedItem) {
	v.mu.Lock()
	v.items = items
	v.mu.Unlock()
}

func (v *view) current() []domain.OrderedItem {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.items
}

// applyGestures runs gestures against persist and returns the final shown order.
func applyGestures(
	ctx context.Context,
	items []domain.OrderedItem,
	gestures []gesture,
	collection domain.CollectionType,
	persist ordering.Persister,
	debounce *ordering.Debouncer,
) ([]domain.OrderedItem, error) {
	v := &view{items: items}

	if len(gestures) == 1 {
		g := gestures[0]
		err := ordering.ApplyReorder(ctx, items, g.from, g.to, collection, persist, v.update)
		return v.current(), err
	}

	for _, g := range gestures {
		if err := debounce.Apply(ctx, v.current(), g.from, g.to, collection, persist, v.update); err != nil {
			debounce.Stop()
			return v.current(), err
		}
	}
	err := debounce.Flush(ctx)
	return v.current(), err
}

// newDebouncer builds the gesture debouncer from the sync settings.
func newDebouncer(cfg config.SyncConfig) *ordering.Debouncer {
	return ordering.NewDebouncer(cfg.Debounce,
		ordering.WithPersistTimeout(cfg.PersistTimeout),
		ordering.WithLogger(slog.Default()),
	)
}

func runReorder(cmd *cobra.Command, args []string) {
	cfg := loadConfig()

	collection, err := domain.ParseCollectionType(args[0])
	if err != nil {
		slog.Error("Invalid collection", "error", err)
		os.Exit(1)
	}

	gestures := make([]gesture, 0, len(moves))
	for _, m := range moves {
		g, err := parseMove(m)
		if err != nil {
			slog.Error("Invalid move", "error", err)
			os.Exit(1)
		}
		gestures = append(gestures, g)
	}

	ctx := context.Background()
	c := newClient()

	items, err := c.ListItems(ctx, collection)
	if err != nil {
		slog.Error("Failed to load items", "collection", collection, "error", err)
		os.Exit(1)
	}

	final, err := applyGestures(ctx, items, gestures, collection, c, newDebouncer(cfg.Sync))
	if err != nil {
		slog.Error("Reorder failed, order restored", "collection", collection, "error", err)
		printItems(os.Stdout, final)
		os.Exit(1)
	}

	fmt.Printf("Saved %s order\n", collection)
	printItems(os.Stdout, final)
}
