package ordering

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/vietddude/linkpay/internal/core/domain"
	"github.com/vietddude/linkpay/internal/metrics"
)

// DefaultDebounce is used when NewDebouncer is given a non-positive delay.
const DefaultDebounce = 500 * time.Millisecond

// Debouncer coalesces bursts of reorder gestures into a single persist call
// per collection. Every gesture is shown immediately; only the last list of
// a burst is persisted, and a failure rolls back to the list that was shown
// before the burst began.
type Debouncer struct {
	delay   time.Duration
	timeout time.Duration
	onError func(domain.CollectionType, error)
	log     *slog.Logger

	mu      sync.Mutex
	pending map[domain.CollectionType]*burst
}

type burst struct {
	baseline []domain.OrderedItem
	latest   []domain.OrderedItem
	persist  Persister
	onUpdate UpdateFunc
	ctx      context.Context
	timer    *time.Timer
	gen      uint64
	gestures int
}

// DebounceOption configures a Debouncer.
type DebounceOption func(*Debouncer)

// WithErrorHandler sets the function that receives errors from timer-driven
// persists. Errors are always *RollbackError.
func WithErrorHandler(fn func(domain.CollectionType, error)) DebounceOption {
	return func(d *Debouncer) { d.onError = fn }
}

// WithPersistTimeout bounds each timer-driven persist call.
func WithPersistTimeout(timeout time.Duration) DebounceOption {
	return func(d *Debouncer) { d.timeout = timeout }
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) DebounceOption {
	return func(d *Debouncer) { d.log = log }
}

// NewDebouncer creates a Debouncer that waits delay after the last gesture.
func NewDebouncer(delay time.Duration, opts ...DebounceOption) *Debouncer {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	d := &Debouncer{
		delay:   delay,
		pending: make(map[domain.CollectionType]*burst),
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Delay returns the quiet period after which a burst is persisted.
func (d *Debouncer) Delay() time.Duration {
	return d.delay
}

// Apply has the signature of ApplyReorder. It shows the new order through
// onUpdate synchronously and (re)arms the collection's timer. Persist
// failures surface through the error handler, not the return value.
func (d *Debouncer) Apply(
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

	d.mu.Lock()
	defer d.mu.Unlock()

	b, ok := d.pending[collection]
	if !ok {
		b = &burst{baseline: items}
		d.pending[collection] = b
	} else {
		b.timer.Stop()
		metrics.ReorderCoalesced.WithLabelValues(string(collection)).Inc()
	}

	b.latest = newItems
	b.persist = persist
	b.onUpdate = onUpdate
	b.ctx = context.WithoutCancel(ctx)
	b.gestures++
	b.gen++

	gen := b.gen
	b.timer = time.AfterFunc(d.delay, func() {
		d.fire(collection, b, gen)
	})
	return nil
}

// Flush persists every pending burst now and returns their errors joined.
func (d *Debouncer) Flush(ctx context.Context) error {
	bursts := d.takeAll()

	var errs []error
	for collection, b := range bursts {
		if err := d.persist(ctx, collection, b); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Stop cancels pending timers without persisting. Lists already shown to
// the caller stay as they are.
func (d *Debouncer) Stop() {
	bursts := d.takeAll()
	for collection, b := range bursts {
		d.log.Debug("Dropped pending reorder", "collection", collection, "gestures", b.gestures)
	}
}

// Pending reports whether a burst is waiting for collection.
func (d *Debouncer) Pending(collection domain.CollectionType) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.pending[collection]
	return ok
}

func (d *Debouncer) takeAll() map[domain.CollectionType]*burst {
	d.mu.Lock()
	defer d.mu.Unlock()

	bursts := d.pending
	for _, b := range bursts {
		b.timer.Stop()
		b.gen++
	}
	d.pending = make(map[domain.CollectionType]*burst)
	return bursts
}

func (d *Debouncer) fire(collection domain.CollectionType, b *burst, gen uint64) {
	d.mu.Lock()
	if d.pending[collection] != b || b.gen != gen {
		// superseded or flushed
		d.mu.Unlock()
		return
	}
	delete(d.pending, collection)
	d.mu.Unlock()

	if err := d.persist(b.ctx, collection, b); err != nil {
		if d.onError != nil {
			d.onError(collection, err)
			return
		}
		d.log.Error("Debounced reorder failed", "collection", collection, "error", err)
	}
}

func (d *Debouncer) persist(ctx context.Context, collection domain.CollectionType, b *burst) error {
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	d.log.Debug("Persisting reorder burst",
		"collection", collection,
		"gestures", b.gestures,
		"items", len(b.latest),
	)
	return persistOrRollback(ctx, collection, b.latest, b.baseline, b.persist, b.onUpdate)
}
