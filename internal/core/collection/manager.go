package collection

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/vietddude/linkpay/internal/core/domain"
	"github.com/vietddude/linkpay/internal/core/ordering"
	"github.com/vietddude/linkpay/internal/infra/storage"
	"github.com/vietddude/linkpay/internal/metrics"
)

// Manager handles an owner's reorderable collections, keeping stored
// positions canonical.
type Manager interface {
	// List returns the owner's items ordered by position, repaired if needed.
	List(ctx context.Context, ownerID string, collection domain.CollectionType) ([]domain.OrderedItem, error)

	// Create appends a new item and returns it.
	Create(ctx context.Context, ownerID string, payload domain.Payload) (*domain.OrderedItem, error)

	// Update replaces an item's payload.
	Update(ctx context.Context, ownerID, id string, payload domain.Payload) error

	// Delete removes an item and closes the gap it leaves.
	Delete(ctx context.Context, ownerID string, collection domain.CollectionType, id string) error

	// Reorder persists a full position batch for one collection.
	Reorder(ctx context.Context, ownerID string, collection domain.CollectionType, updates []domain.PositionUpdate) error

	// Repair rewrites stored positions when they are not canonical.
	Repair(ctx context.Context, ownerID string, collection domain.CollectionType) (bool, error)
}

// DefaultManager implements Manager on an ItemRepository with optional cache.
type DefaultManager struct {
	repo  storage.ItemRepository
	cache storage.ListingCache
	group singleflight.Group
	log   *slog.Logger
	newID func() string
}

// Option configures a DefaultManager.
type Option func(*DefaultManager)

// WithCache enables listing caching.
func WithCache(cache storage.ListingCache) Option {
	return func(m *DefaultManager) { m.cache = cache }
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(m *DefaultManager) { m.log = log }
}

// WithIDGenerator overrides id generation.
func WithIDGenerator(fn func() string) Option {
	return func(m *DefaultManager) { m.newID = fn }
}

// NewManager creates a new collection manager.
func NewManager(repo storage.ItemRepository, opts ...Option) *DefaultManager {
	m := &DefaultManager{
		repo:  repo,
		log:   slog.Default(),
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// List returns the owner's items, served from cache when possible.
// Concurrent misses for the same listing share one store read.
func (m *DefaultManager) List(
	ctx context.Context,
	ownerID string,
	collection domain.CollectionType,
) ([]domain.OrderedItem, error) {
	if !collection.Valid() {
		return nil, fmt.Errorf("%w: %q", storage.ErrUnknownCollection, collection)
	}

	if m.cache != nil {
		items, ok, err := m.cache.Get(ctx, ownerID, collection)
		if err != nil {
			m.log.Warn("Listing cache read failed", "owner", ownerID, "collection", collection, "error", err)
		}
		if ok {
			metrics.CacheLookups.WithLabelValues("hit").Inc()
			return items, nil
		}
		metrics.CacheLookups.WithLabelValues("miss").Inc()
	}

	// The load is shared, so one caller giving up must not fail the others.
	loadCtx := context.WithoutCancel(ctx)
	key := ownerID + "/" + string(collection)
	v, err, _ := m.group.Do(key, func() (any, error) {
		items, err := m.load(loadCtx, ownerID, collection)
		if err != nil {
			return nil, err
		}
		if m.cache != nil {
			if err := m.cache.Set(loadCtx, ownerID, collection, items); err != nil {
				m.log.Warn("Listing cache write failed", "owner", ownerID, "collection", collection, "error", err)
			}
		}
		return items, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.OrderedItem), nil
}

// load reads from the store and repairs the sequence for display.
func (m *DefaultManager) load(
	ctx context.Context,
	ownerID string,
	collection domain.CollectionType,
) ([]domain.OrderedItem, error) {
	items, err := m.repo.List(ctx, ownerID, collection)
	if err != nil {
		return nil, err
	}
	if !ordering.IsCanonical(items) {
		m.log.Debug("Repairing non-canonical listing on read",
			"owner", ownerID,
			"collection", collection,
			"items", len(items),
		)
		metrics.SequenceRepairs.WithLabelValues(string(collection)).Inc()
		return ordering.Repair(items), nil
	}
	return ordering.SortByPosition(items), nil
}

// Create appends a new item at the end of its collection.
func (m *DefaultManager) Create(ctx context.Context, ownerID string, payload domain.Payload) (*domain.OrderedItem, error) {
	if payload == nil {
		return nil, fmt.Errorf("create item: missing payload")
	}
	collection := payload.Collection()

	items, err := m.repo.List(ctx, ownerID, collection)
	if err != nil {
		return nil, err
	}

	item := domain.OrderedItem{
		ID:       m.newID(),
		Position: ordering.NextAppendPosition(items),
		Payload:  payload,
	}
	if err := m.repo.Insert(ctx, ownerID, item); err != nil {
		return nil, err
	}

	m.invalidate(ctx, ownerID, collection)
	m.log.Info("Item created", "owner", ownerID, "collection", collection, "id", item.ID, "position", item.Position)
	return &item, nil
}

// Update replaces an item's payload; the position is left untouched.
func (m *DefaultManager) Update(ctx context.Context, ownerID, id string, payload domain.Payload) error {
	if payload == nil {
		return fmt.Errorf("update item: missing payload")
	}
	if err := m.repo.Update(ctx, ownerID, domain.OrderedItem{ID: id, Payload: payload}); err != nil {
		return err
	}
	m.invalidate(ctx, ownerID, payload.Collection())
	return nil
}

// Delete removes the item and resequences the remaining ones.
func (m *DefaultManager) Delete(ctx context.Context, ownerID string, collection domain.CollectionType, id string) error {
	items, err := m.repo.List(ctx, ownerID, collection)
	if err != nil {
		return err
	}

	remaining := ordering.RemoveAndRepair(items, id)
	if len(remaining) == len(items) {
		return storage.ErrNotFound
	}

	if err := m.repo.Delete(ctx, ownerID, collection, id, domain.Positions(remaining)); err != nil {
		return err
	}

	m.invalidate(ctx, ownerID, collection)
	m.log.Info("Item deleted", "owner", ownerID, "collection", collection, "id", id, "remaining", len(remaining))
	return nil
}

// Reorder validates and persists a position batch.
func (m *DefaultManager) Reorder(
	ctx context.Context,
	ownerID string,
	collection domain.CollectionType,
	updates []domain.PositionUpdate,
) error {
	if !collection.Valid() {
		return fmt.Errorf("%w: %q", storage.ErrUnknownCollection, collection)
	}
	if err := ValidateBatch(updates); err != nil {
		return err
	}
	if len(updates) == 0 {
		return nil
	}

	if err := m.repo.UpdatePositions(ctx, ownerID, collection, updates); err != nil {
		return err
	}

	m.invalidate(ctx, ownerID, collection)
	m.log.Debug("Reorder persisted", "owner", ownerID, "collection", collection, "items", len(updates))
	return nil
}

// Repair rewrites stored positions to 0..N-1 when needed.
func (m *DefaultManager) Repair(ctx context.Context, ownerID string, collection domain.CollectionType) (bool, error) {
	items, err := m.repo.List(ctx, ownerID, collection)
	if err != nil {
		return false, err
	}
	if ordering.IsCanonical(items) {
		return false, nil
	}

	repaired := ordering.Repair(items)
	if err := m.repo.UpdatePositions(ctx, ownerID, collection, domain.Positions(repaired)); err != nil {
		return false, fmt.Errorf("failed to persist repaired sequence: %w", err)
	}

	metrics.SequenceRepairs.WithLabelValues(string(collection)).Inc()
	m.invalidate(ctx, ownerID, collection)
	m.log.Info("Sequence repaired", "owner", ownerID, "collection", collection, "items", len(repaired))
	return true, nil
}

// ValidateBatch rejects duplicate ids and negative positions.
func ValidateBatch(updates []domain.PositionUpdate) error {
	seen := make(map[string]struct{}, len(updates))
	for _, u := range updates {
		if u.ID == "" {
			return fmt.Errorf("%w: empty id", storage.ErrInvalidPositions)
		}
		if u.Position < 0 {
			return fmt.Errorf("%w: negative position for %s", storage.ErrInvalidPositions, u.ID)
		}
		if _, dup := seen[u.ID]; dup {
			return fmt.Errorf("%w: duplicate id %s", storage.ErrInvalidPositions, u.ID)
		}
		seen[u.ID] = struct{}{}
	}
	return nil
}

func (m *DefaultManager) invalidate(ctx context.Context, ownerID string, collection domain.CollectionType) {
	if m.cache == nil {
		return
	}
	collections := []domain.CollectionType{collection}
	if collection.CascadesToQR() {
		collections = append(collections, domain.CollectionQRCodes)
	}
	if err := m.cache.Invalidate(ctx, ownerID, collections...); err != nil {
		m.log.Warn("Listing cache invalidation failed", "owner", ownerID, "collection", collection, "error", err)
	}
}
