package ordering

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/vietddude/linkpay/internal/core/domain"
)

// =============================================================================
// Recording fakes
// =============================================================================

type recordingPersister struct {
	calls []persistCall
	err   error
}

type persistCall struct {
	collection domain.CollectionType
	updates    []domain.PositionUpdate
}

func (p *recordingPersister) PersistOrder(ctx context.Context, c domain.CollectionType, u []domain.PositionUpdate) error {
	p.calls = append(p.calls, persistCall{collection: c, updates: u})
	return p.err
}

type updateRecorder struct {
	lists [][]domain.OrderedItem
}

func (r *updateRecorder) onUpdate(items []domain.OrderedItem) {
	r.lists = append(r.lists, items)
}

// =============================================================================
// ApplyReorder
// =============================================================================

func TestApplyReorder_Success(t *testing.T) {
	start := items("a", "b", "c")
	persister := &recordingPersister{}
	rec := &updateRecorder{}

	err := ApplyReorder(context.Background(), start, 0, 2, domain.CollectionSocialLinks, persister, rec.onUpdate)
	if err != nil {
		t.Fatalf("ApplyReorder failed: %v", err)
	}

	if len(rec.lists) != 1 {
		t.Fatalf("expected 1 update, got %d", len(rec.lists))
	}
	assertOrder(t, rec.lists[0], "b:0 c:1 a:2 ")

	if len(persister.calls) != 1 {
		t.Fatalf("expected 1 persist call, got %d", len(persister.calls))
	}
	call := persister.calls[0]
	if call.collection != domain.CollectionSocialLinks {
		t.Errorf("wrong collection: %s", call.collection)
	}
	want := []domain.PositionUpdate{{ID: "b", Position: 0}, {ID: "c", Position: 1}, {ID: "a", Position: 2}}
	if !reflect.DeepEqual(call.updates, want) {
		t.Errorf("payload = %+v, want %+v", call.updates, want)
	}
}

func TestApplyReorder_RollbackOnFailure(t *testing.T) {
	start := items("a", "b", "c")
	persistErr := errors.New("not owner")
	persister := &recordingPersister{err: persistErr}
	rec := &updateRecorder{}

	err := ApplyReorder(context.Background(), start, 0, 2, domain.CollectionPaymentMethods, persister, rec.onUpdate)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, persistErr) {
		t.Errorf("expected persist error to be wrapped, got %v", err)
	}
	var rbErr *RollbackError
	if !errors.As(err, &rbErr) || rbErr.Collection != domain.CollectionPaymentMethods {
		t.Errorf("expected *RollbackError, got %T", err)
	}

	if len(rec.lists) != 2 {
		t.Fatalf("expected optimistic update then rollback, got %d updates", len(rec.lists))
	}
	assertOrder(t, rec.lists[0], "b:0 c:1 a:2 ")
	if !reflect.DeepEqual(rec.lists[1], start) {
		t.Errorf("rollback list = %s, want %s", order(rec.lists[1]), order(start))
	}
	if len(persister.calls) != 1 {
		t.Errorf("expected exactly one persist attempt, got %d", len(persister.calls))
	}
}

func TestApplyReorder_UpdateBeforePersist(t *testing.T) {
	var events []string
	persist := PersistFunc(func(ctx context.Context, c domain.CollectionType, u []domain.PositionUpdate) error {
		events = append(events, "persist")
		return nil
	})
	onUpdate := func([]domain.OrderedItem) { events = append(events, "update") }

	if err := ApplyReorder(context.Background(), items("a", "b"), 1, 0, domain.CollectionQRCodes, persist, onUpdate); err != nil {
		t.Fatalf("ApplyReorder failed: %v", err)
	}
	if !reflect.DeepEqual(events, []string{"update", "persist"}) {
		t.Errorf("events = %v", events)
	}
}

func TestApplyReorder_NoopGesture(t *testing.T) {
	persister := &recordingPersister{}
	rec := &updateRecorder{}

	if err := ApplyReorder(context.Background(), items("a", "b"), 1, 1, domain.CollectionQRCodes, persister, rec.onUpdate); err != nil {
		t.Fatalf("ApplyReorder failed: %v", err)
	}
	if len(rec.lists) != 0 || len(persister.calls) != 0 {
		t.Errorf("expected no update and no persist, got %d/%d", len(rec.lists), len(persister.calls))
	}
}

func TestApplyReorder_NilPersister(t *testing.T) {
	rec := &updateRecorder{}
	err := ApplyReorder(context.Background(), items("a", "b"), 0, 1, domain.CollectionQRCodes, nil, rec.onUpdate)
	if err == nil {
		t.Fatal("expected error for nil persister")
	}
	if len(rec.lists) != 0 {
		t.Error("no update expected when persister is missing")
	}
}
