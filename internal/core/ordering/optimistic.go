package ordering

import (
	"context"
	"errors"
	"fmt"

	"github.com/vietddude/linkpay/internal/core/domain"
	"github.com/vietddude/linkpay/internal/metrics"
)

var errNilPersister = errors.New("ordering: nil persister")

// Persister stores a full-scope position batch for one collection.
// The batch must be applied atomically or not at all.
type Persister interface {
	PersistOrder(ctx context.Context, collection domain.CollectionType, updates []domain.PositionUpdate) error
}

// PersistFunc adapts a function to Persister.
type PersistFunc func(ctx context.Context, collection domain.CollectionType, updates []domain.PositionUpdate) error

// PersistOrder calls f.
func (f PersistFunc) PersistOrder(ctx context.Context, collection domain.CollectionType, updates []domain.PositionUpdate) error {
	return f(ctx, collection, updates)
}

// UpdateFunc receives the list the caller should display.
type UpdateFunc func(items []domain.OrderedItem)

// RollbackError is returned when persisting failed and the caller's view
// was restored to the pre-gesture list.
type RollbackError struct {
	Collection domain.CollectionType
	Err        error
}

func (e *RollbackError) Error() string {
	return fmt.Sprintf("persist %s order failed, rolled back: %v", e.Collection, e.Err)
}

func (e *RollbackError) Unwrap() error {
	return e.Err
}

// ApplyReorder moves the item at from to to, shows the new order through
// onUpdate before any I/O, then persists it. When persisting fails onUpdate
// is called once more with items and a *RollbackError is returned.
// Failures are not retried. A gesture that changes nothing is ignored.
func ApplyReorder(
	ctx context.Context,
	items []domain.OrderedItem,
	from, to int,
	collection domain.CollectionType,
	persist Persister,
	onUpdate UpdateFunc,
) error {
	if persist == nil {
		return errNilPersister
	}

	newItems := Reorder(items, from, to)
	if isNoop(items, newItems) {
		return nil
	}

	onUpdate(newItems)
	return persistOrRollback(ctx, collection, newItems, items, persist, onUpdate)
}

func persistOrRollback(
	ctx context.Context,
	collection domain.CollectionType,
	current, baseline []domain.OrderedItem,
	persist Persister,
	onUpdate UpdateFunc,
) error {
	err := persist.PersistOrder(ctx, collection, domain.Positions(current))
	if err == nil {
		metrics.ReorderPersisted.WithLabelValues(string(collection), "success").Inc()
		return nil
	}

	onUpdate(baseline)
	metrics.ReorderPersisted.WithLabelValues(string(collection), "failure").Inc()
	metrics.ReorderRollbacks.WithLabelValues(string(collection)).Inc()
	return &RollbackError{Collection: collection, Err: err}
}

// isNoop reports whether Reorder handed back its input untouched.
func isNoop(before, after []domain.OrderedItem) bool {
	return len(before) == 0 || (len(before) == len(after) && &before[0] == &after[0])
}
