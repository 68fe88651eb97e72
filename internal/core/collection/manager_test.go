package collection

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/vietddude/linkpay/internal/core/domain"
	"github.com/vietddude/linkpay/internal/core/ordering"
	"github.com/vietddude/linkpay/internal/infra/storage"
	"github.com/vietddude/linkpay/internal/infra/storage/memory"
)

// =============================================================================
// Fakes
// =============================================================================

type fakeCache struct {
	mu          sync.Mutex
	entries     map[string][]domain.OrderedItem
	invalidated []domain.CollectionType
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string][]domain.OrderedItem)}
}

func (c *fakeCache) Get(ctx context.Context, owner string, coll domain.CollectionType) ([]domain.OrderedItem, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	items, ok := c.entries[owner+string(coll)]
	return items, ok, nil
}

func (c *fakeCache) Set(ctx context.Context, owner string, coll domain.CollectionType, items []domain.OrderedItem) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[owner+string(coll)] = items
	return nil
}

func (c *fakeCache) Invalidate(ctx context.Context, owner string, colls ...domain.CollectionType) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, coll := range colls {
		delete(c.entries, owner+string(coll))
		c.invalidated = append(c.invalidated, coll)
	}
	return nil
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func newTestManager(opts ...Option) (*DefaultManager, *memory.ItemRepo) {
	repo := memory.NewItemRepo(memory.NewMemoryStorage())
	opts = append([]Option{WithIDGenerator(sequentialIDs())}, opts...)
	return NewManager(repo, opts...), repo
}

func ids(items []domain.OrderedItem) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = fmt.Sprintf("%s@%d", item.ID, item.Position)
	}
	return out
}

// =============================================================================
// Tests
// =============================================================================

func TestManager_CreateAppends(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager()

	for _, platform := range []string{"instagram", "tiktok", "youtube"} {
		if _, err := m.Create(ctx, "u1", domain.SocialLink{Platform: platform}); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	items, err := m.List(ctx, "u1", domain.CollectionSocialLinks)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if fmt.Sprint(ids(items)) != "[id-1@0 id-2@1 id-3@2]" {
		t.Errorf("unexpected listing: %v", ids(items))
	}
	if !ordering.IsCanonical(items) {
		t.Error("listing not canonical")
	}
}

func TestManager_DeleteRepairs(t *testing.T) {
	ctx := context.Background()
	m, repo := newTestManager()

	for i := 0; i < 3; i++ {
		_, _ = m.Create(ctx, "u1", domain.PaymentMethod{Provider: "venmo"})
	}

	if err := m.Delete(ctx, "u1", domain.CollectionPaymentMethods, "id-2"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	stored, _ := repo.List(ctx, "u1", domain.CollectionPaymentMethods)
	if fmt.Sprint(ids(stored)) != "[id-1@0 id-3@1]" {
		t.Errorf("unexpected stored positions: %v", ids(stored))
	}

	err := m.Delete(ctx, "u1", domain.CollectionPaymentMethods, "id-2")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestManager_ReorderValidation(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager()

	tests := []struct {
		name    string
		coll    domain.CollectionType
		updates []domain.PositionUpdate
		wantErr error
	}{
		{"duplicate id", domain.CollectionSocialLinks, []domain.PositionUpdate{{ID: "a", Position: 0}, {ID: "a", Position: 1}}, storage.ErrInvalidPositions},
		{"negative position", domain.CollectionSocialLinks, []domain.PositionUpdate{{ID: "a", Position: -1}}, storage.ErrInvalidPositions},
		{"empty id", domain.CollectionSocialLinks, []domain.PositionUpdate{{Position: 0}}, storage.ErrInvalidPositions},
		{"unknown collection", domain.CollectionType("tip_goals"), nil, storage.ErrUnknownCollection},
		{"not owned", domain.CollectionSocialLinks, []domain.PositionUpdate{{ID: "ghost", Position: 0}}, storage.ErrNotOwned},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := m.Reorder(ctx, "u1", tt.coll, tt.updates)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Reorder() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestManager_ReorderInvalidatesCascade(t *testing.T) {
	ctx := context.Background()
	cache := newFakeCache()
	m, _ := newTestManager(WithCache(cache))

	a, _ := m.Create(ctx, "u1", domain.SocialLink{Platform: "a"})
	b, _ := m.Create(ctx, "u1", domain.SocialLink{Platform: "b"})
	qr, _ := m.Create(ctx, "u1", domain.QRCode{TargetURL: "https://x", LinkedSocialLinkID: a.ID})

	// warm the cache
	if _, err := m.List(ctx, "u1", domain.CollectionQRCodes); err != nil {
		t.Fatal(err)
	}

	cache.invalidated = nil
	err := m.Reorder(ctx, "u1", domain.CollectionSocialLinks, []domain.PositionUpdate{
		{ID: b.ID, Position: 0},
		{ID: a.ID, Position: 1},
	})
	if err != nil {
		t.Fatalf("Reorder failed: %v", err)
	}
	if fmt.Sprint(cache.invalidated) != "[social_links qr_codes]" {
		t.Errorf("unexpected invalidations: %v", cache.invalidated)
	}

	qrs, err := m.List(ctx, "u1", domain.CollectionQRCodes)
	if err != nil {
		t.Fatal(err)
	}
	// single QR code follows a to position 1, then is repaired for display
	if len(qrs) != 1 || qrs[0].ID != qr.ID || qrs[0].Position != 0 {
		t.Errorf("unexpected qr listing: %v", ids(qrs))
	}
}

func TestManager_ListServesCache(t *testing.T) {
	ctx := context.Background()
	cache := newFakeCache()
	m, _ := newTestManager(WithCache(cache))

	cached := []domain.OrderedItem{{ID: "cached", Position: 0, Payload: domain.SocialLink{}}}
	_ = cache.Set(ctx, "u1", domain.CollectionSocialLinks, cached)

	items, err := m.List(ctx, "u1", domain.CollectionSocialLinks)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0].ID != "cached" {
		t.Errorf("expected cached listing, got %v", ids(items))
	}
}

func TestManager_Repair(t *testing.T) {
	ctx := context.Background()
	m, repo := newTestManager()

	_ = repo.Insert(ctx, "u1", domain.OrderedItem{ID: "a", Position: 5, Payload: domain.SocialLink{}})
	_ = repo.Insert(ctx, "u1", domain.OrderedItem{ID: "b", Position: 5, Payload: domain.SocialLink{}})

	changed, err := m.Repair(ctx, "u1", domain.CollectionSocialLinks)
	if err != nil {
		t.Fatalf("Repair failed: %v", err)
	}
	if !changed {
		t.Fatal("expected repair to change positions")
	}

	stored, _ := repo.List(ctx, "u1", domain.CollectionSocialLinks)
	if fmt.Sprint(ids(stored)) != "[a@0 b@1]" {
		t.Errorf("unexpected stored positions: %v", ids(stored))
	}

	changed, err = m.Repair(ctx, "u1", domain.CollectionSocialLinks)
	if err != nil || changed {
		t.Errorf("second repair should be a no-op, changed=%v err=%v", changed, err)
	}
}

func TestManager_UpdateKeepsOrder(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager()

	_, _ = m.Create(ctx, "u1", domain.SocialLink{Platform: "a"})
	second, _ := m.Create(ctx, "u1", domain.SocialLink{Platform: "b"})

	if err := m.Update(ctx, "u1", second.ID, domain.SocialLink{Platform: "bluesky"}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	items, _ := m.List(ctx, "u1", domain.CollectionSocialLinks)
	if items[1].ID != second.ID || items[1].Payload.(domain.SocialLink).Platform != "bluesky" {
		t.Errorf("unexpected listing: %+v", items)
	}

	err := m.Update(ctx, "u2", second.ID, domain.SocialLink{})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound for foreign owner, got %v", err)
	}
}

// cancelAwareRepo fails reads made with a cancelled context.
type cancelAwareRepo struct {
	storage.ItemRepository
}

func (r cancelAwareRepo) List(ctx context.Context, owner string, coll domain.CollectionType) ([]domain.OrderedItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.ItemRepository.List(ctx, owner, coll)
}

func TestManager_ListSharedLoadIgnoresCallerCancel(t *testing.T) {
	repo := memory.NewItemRepo(memory.NewMemoryStorage())
	if err := repo.Insert(context.Background(), "u1", domain.OrderedItem{
		ID: "a", Position: 0, Payload: domain.SocialLink{Platform: "a"},
	}); err != nil {
		t.Fatal(err)
	}
	m := NewManager(cancelAwareRepo{repo})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	items, err := m.List(ctx, "u1", domain.CollectionSocialLinks)
	if err != nil {
		t.Fatalf("shared load failed with caller's cancellation: %v", err)
	}
	if len(items) != 1 {
		t.Errorf("expected 1 item, got %d", len(items))
	}
}
