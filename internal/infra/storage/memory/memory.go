package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/vietddude/linkpay/internal/core/domain"
	"github.com/vietddude/linkpay/internal/infra/storage"
)

type scopeKey struct {
	ownerID    string
	collection domain.CollectionType
}

type row struct {
	item domain.OrderedItem
	seq  uint64 // insertion order, breaks position ties like created_at
}

// MemoryStorage keeps every owner's collections in process memory.
type MemoryStorage struct {
	scopes map[scopeKey]map[string]*row
	seq    uint64
	mu     sync.RWMutex
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		scopes: make(map[scopeKey]map[string]*row),
	}
}

// -----------------------------------------------------------------------------
// Item Repository
// -----------------------------------------------------------------------------

type ItemRepo struct {
	store *MemoryStorage
}

var _ storage.ItemRepository = (*ItemRepo)(nil)

func NewItemRepo(store *MemoryStorage) *ItemRepo {
	return &ItemRepo{store: store}
}

func (r *ItemRepo) List(ctx context.Context, ownerID string, collection domain.CollectionType) ([]domain.OrderedItem, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	rows := make([]*row, 0, len(r.store.scopes[scopeKey{ownerID, collection}]))
	for _, rw := range r.store.scopes[scopeKey{ownerID, collection}] {
		rows = append(rows, rw)
	}
	slices.SortFunc(rows, func(a, b *row) int {
		if c := cmp.Compare(a.item.Position, b.item.Position); c != 0 {
			return c
		}
		return cmp.Compare(a.seq, b.seq)
	})

	items := make([]domain.OrderedItem, len(rows))
	for i, rw := range rows {
		items[i] = rw.item
	}
	return items, nil
}

func (r *ItemRepo) Get(ctx context.Context, ownerID string, collection domain.CollectionType, id string) (*domain.OrderedItem, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	rw, ok := r.store.scopes[scopeKey{ownerID, collection}][id]
	if !ok {
		return nil, nil
	}
	item := rw.item
	return &item, nil
}

func (r *ItemRepo) Insert(ctx context.Context, ownerID string, item domain.OrderedItem) error {
	collection := item.Collection()
	if !collection.Valid() {
		return fmt.Errorf("insert item %s: missing payload", item.ID)
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	key := scopeKey{ownerID, collection}
	if r.store.scopes[key] == nil {
		r.store.scopes[key] = make(map[string]*row)
	}
	if _, exists := r.store.scopes[key][item.ID]; exists {
		return fmt.Errorf("insert item %s: duplicate id", item.ID)
	}
	r.store.seq++
	r.store.scopes[key][item.ID] = &row{item: item, seq: r.store.seq}
	return nil
}

func (r *ItemRepo) Update(ctx context.Context, ownerID string, item domain.OrderedItem) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	rw, ok := r.store.scopes[scopeKey{ownerID, item.Collection()}][item.ID]
	if !ok {
		return storage.ErrNotFound
	}
	rw.item.Payload = item.Payload
	return nil
}

func (r *ItemRepo) Delete(
	ctx context.Context,
	ownerID string,
	collection domain.CollectionType,
	id string,
	resequence []domain.PositionUpdate,
) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	scope := r.store.scopes[scopeKey{ownerID, collection}]
	if _, ok := scope[id]; !ok {
		return storage.ErrNotFound
	}
	for _, u := range resequence {
		if u.ID == id {
			return fmt.Errorf("%w: deleted id %s in resequence", storage.ErrInvalidPositions, id)
		}
		if _, ok := scope[u.ID]; !ok {
			return storage.ErrNotOwned
		}
	}

	delete(scope, id)
	r.unlinkQRLocked(ownerID, collection, id)
	r.applyLocked(ownerID, collection, resequence)
	return nil
}

// unlinkQRLocked clears QR links to a deleted item, like ON DELETE SET NULL.
func (r *ItemRepo) unlinkQRLocked(ownerID string, collection domain.CollectionType, id string) {
	if !collection.CascadesToQR() {
		return
	}
	for _, rw := range r.store.scopes[scopeKey{ownerID, domain.CollectionQRCodes}] {
		qr, ok := rw.item.Payload.(domain.QRCode)
		if !ok {
			continue
		}
		switch {
		case collection == domain.CollectionSocialLinks && qr.LinkedSocialLinkID == id:
			qr.LinkedSocialLinkID = ""
		case collection == domain.CollectionPaymentMethods && qr.LinkedPaymentMethodID == id:
			qr.LinkedPaymentMethodID = ""
		default:
			continue
		}
		rw.item.Payload = qr
	}
}

func (r *ItemRepo) UpdatePositions(
	ctx context.Context,
	ownerID string,
	collection domain.CollectionType,
	updates []domain.PositionUpdate,
) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	scope := r.store.scopes[scopeKey{ownerID, collection}]
	for _, u := range updates {
		if _, ok := scope[u.ID]; !ok {
			return storage.ErrNotOwned
		}
	}

	r.applyLocked(ownerID, collection, updates)
	return nil
}

// applyLocked writes positions and cascades them to linked QR codes.
// Caller holds the write lock and has validated ownership.
func (r *ItemRepo) applyLocked(ownerID string, collection domain.CollectionType, updates []domain.PositionUpdate) {
	scope := r.store.scopes[scopeKey{ownerID, collection}]
	newPos := make(map[string]int, len(updates))
	for _, u := range updates {
		scope[u.ID].item.Position = u.Position
		newPos[u.ID] = u.Position
	}

	if !collection.CascadesToQR() {
		return
	}
	for _, rw := range r.store.scopes[scopeKey{ownerID, domain.CollectionQRCodes}] {
		qr, ok := rw.item.Payload.(domain.QRCode)
		if !ok {
			continue
		}
		linked := qr.LinkedSocialLinkID
		if collection == domain.CollectionPaymentMethods {
			linked = qr.LinkedPaymentMethodID
		}
		if pos, ok := newPos[linked]; ok && linked != "" {
			rw.item.Position = pos
		}
	}
}
