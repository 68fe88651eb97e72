package storage

import (
	"context"
	"errors"

	"github.com/vietddude/linkpay/internal/core/domain"
)

var (
	// ErrNotFound is returned when a row doesn't exist for the owner
	ErrNotFound = errors.New("item not found")

	// ErrNotOwned is returned when a batch references a row the owner doesn't own
	ErrNotOwned = errors.New("item not owned by caller")

	// ErrInvalidPositions is returned for malformed position batches
	ErrInvalidPositions = errors.New("invalid position batch")

	// ErrUnknownCollection is returned for an unrecognised collection type
	ErrUnknownCollection = errors.New("unknown collection type")
)

// ItemRepository stores the reorderable collections of every owner.
type ItemRepository interface {
	// List returns the owner's items of a collection ordered by position
	List(ctx context.Context, ownerID string, collection domain.CollectionType) ([]domain.OrderedItem, error)

	// Get retrieves one item, nil if absent
	Get(ctx context.Context, ownerID string, collection domain.CollectionType, id string) (*domain.OrderedItem, error)

	// Insert stores a new item
	Insert(ctx context.Context, ownerID string, item domain.OrderedItem) error

	// Update replaces the payload of an existing item, keeping its position
	Update(ctx context.Context, ownerID string, item domain.OrderedItem) error

	// Delete removes an item and applies resequence in the same transaction
	Delete(
		ctx context.Context,
		ownerID string,
		collection domain.CollectionType,
		id string,
		resequence []domain.PositionUpdate,
	) error

	// UpdatePositions applies a position batch atomically. Every id must be
	// owned by ownerID within collection. QR codes linked to a reordered
	// social link or payment method take its new position.
	UpdatePositions(
		ctx context.Context,
		ownerID string,
		collection domain.CollectionType,
		updates []domain.PositionUpdate,
	) error
}

// ListingCache caches ordered listings per owner and collection.
type ListingCache interface {
	Get(ctx context.Context, ownerID string, collection domain.CollectionType) ([]domain.OrderedItem, bool, error)
	Set(ctx context.Context, ownerID string, collection domain.CollectionType, items []domain.OrderedItem) error
	Invalidate(ctx context.Context, ownerID string, collections ...domain.CollectionType) error
}
