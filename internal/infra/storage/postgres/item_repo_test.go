package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/vietddude/linkpay/internal/core/domain"
	"github.com/vietddude/linkpay/internal/infra/storage"
)

func newMockRepo(t *testing.T) (*ItemRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewItemRepo(WrapDB(db)), mock
}

func TestItemRepo_List(t *testing.T) {
	repo, mock := newMockRepo(t)

	rows := sqlmock.NewRows([]string{"id", "owner_id", "position", "platform", "url", "label"}).
		AddRow("a", "u1", 0, "instagram", "https://instagram.com/me", "").
		AddRow("b", "u1", 1, "tiktok", "https://tiktok.com/@me", "TikTok")
	mock.ExpectQuery(regexp.QuoteMeta("FROM social_links WHERE owner_id = $1 ORDER BY position")).
		WithArgs("u1").
		WillReturnRows(rows)

	items, err := repo.List(context.Background(), "u1", domain.CollectionSocialLinks)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	link, ok := items[1].Payload.(domain.SocialLink)
	if !ok || link.Label != "TikTok" || items[1].Position != 1 {
		t.Errorf("unexpected item: %+v", items[1])
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestItemRepo_GetQRCode(t *testing.T) {
	repo, mock := newMockRepo(t)

	rows := sqlmock.NewRows([]string{
		"id", "owner_id", "position", "label", "target_url", "linked_social_link_id", "linked_payment_method_id",
	}).AddRow("q1", "u1", 3, "Tip me", "https://venmo.com/me", nil, "p1")
	mock.ExpectQuery(regexp.QuoteMeta("FROM qr_codes WHERE owner_id = $1 AND id = $2")).
		WithArgs("u1", "q1").
		WillReturnRows(rows)

	item, err := repo.Get(context.Background(), "u1", domain.CollectionQRCodes, "q1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	qr := item.Payload.(domain.QRCode)
	if qr.LinkedPaymentMethodID != "p1" || qr.LinkedSocialLinkID != "" {
		t.Errorf("unexpected links: %+v", qr)
	}
}

func TestItemRepo_GetMissing(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM payment_methods WHERE owner_id = $1 AND id = $2")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	item, err := repo.Get(context.Background(), "u1", domain.CollectionPaymentMethods, "nope")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if item != nil {
		t.Errorf("expected nil item, got %+v", item)
	}
}

func TestItemRepo_UpdatePositions_Cascades(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM payment_methods WHERE owner_id = $1 AND id = ANY($2) FOR UPDATE")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("p1").AddRow("p2"))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE payment_methods AS t SET position = u.position")).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE qr_codes AS q SET position = u.position")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.UpdatePositions(context.Background(), "u1", domain.CollectionPaymentMethods, []domain.PositionUpdate{
		{ID: "p2", Position: 0},
		{ID: "p1", Position: 1},
	})
	if err != nil {
		t.Fatalf("UpdatePositions failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestItemRepo_UpdatePositions_NoCascadeForQR(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM qr_codes")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("q1"))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE qr_codes AS t SET position = u.position")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.UpdatePositions(context.Background(), "u1", domain.CollectionQRCodes, []domain.PositionUpdate{
		{ID: "q1", Position: 0},
	})
	if err != nil {
		t.Fatalf("UpdatePositions failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestItemRepo_UpdatePositions_NotOwnedRollsBack(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM social_links")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("a"))
	mock.ExpectRollback()

	err := repo.UpdatePositions(context.Background(), "u1", domain.CollectionSocialLinks, []domain.PositionUpdate{
		{ID: "a", Position: 1},
		{ID: "someone-elses", Position: 0},
	})
	if !errors.Is(err, storage.ErrNotOwned) {
		t.Fatalf("expected ErrNotOwned, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestItemRepo_DeleteNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM social_links WHERE owner_id = $1 AND id = $2")).
		WithArgs("u1", "gone").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Delete(context.Background(), "u1", domain.CollectionSocialLinks, "gone", nil)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestItemRepo_Insert(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO payment_methods")).
		WithArgs("p1", "u1", 2, "paypal", "", "https://paypal.me/me", "PayPal").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Insert(context.Background(), "u1", domain.OrderedItem{
		ID:       "p1",
		Position: 2,
		Payload:  domain.PaymentMethod{Provider: "paypal", URL: "https://paypal.me/me", Label: "PayPal"},
	})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
