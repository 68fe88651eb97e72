package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vietddude/linkpay/internal/core/domain"
	"github.com/vietddude/linkpay/internal/infra/storage"
)

// ItemRepo implements storage.ItemRepository using PostgreSQL.
type ItemRepo struct {
	db *DB
}

var _ storage.ItemRepository = (*ItemRepo)(nil)

// NewItemRepo creates a new PostgreSQL item repository.
func NewItemRepo(db *DB) *ItemRepo {
	return &ItemRepo{db: db}
}

// List retrieves the owner's items of a collection ordered by position.
func (r *ItemRepo) List(
	ctx context.Context,
	ownerID string,
	collection domain.CollectionType,
) ([]domain.OrderedItem, error) {
	q, ok := queries[collection]
	if !ok {
		return nil, fmt.Errorf("unknown collection %q", collection)
	}

	var (
		items []domain.OrderedItem
		err   error
	)
	switch collection {
	case domain.CollectionSocialLinks:
		var rows []socialLinkRow
		err = r.db.SelectContext(ctx, &rows, q.list, ownerID)
		items = toItems(rows)
	case domain.CollectionPaymentMethods:
		var rows []paymentMethodRow
		err = r.db.SelectContext(ctx, &rows, q.list, ownerID)
		items = toItems(rows)
	case domain.CollectionQRCodes:
		var rows []qrCodeRow
		err = r.db.SelectContext(ctx, &rows, q.list, ownerID)
		items = toItems(rows)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", collection, err)
	}
	return items, nil
}

// Get retrieves one item by id.
func (r *ItemRepo) Get(
	ctx context.Context,
	ownerID string,
	collection domain.CollectionType,
	id string,
) (*domain.OrderedItem, error) {
	q, ok := queries[collection]
	if !ok {
		return nil, fmt.Errorf("unknown collection %q", collection)
	}

	var (
		row itemRow
		err error
	)
	switch collection {
	case domain.CollectionSocialLinks:
		var dst socialLinkRow
		err = r.db.GetContext(ctx, &dst, q.get, ownerID, id)
		row = dst
	case domain.CollectionPaymentMethods:
		var dst paymentMethodRow
		err = r.db.GetContext(ctx, &dst, q.get, ownerID, id)
		row = dst
	case domain.CollectionQRCodes:
		var dst qrCodeRow
		err = r.db.GetContext(ctx, &dst, q.get, ownerID, id)
		row = dst
	}
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s item: %w", collection, err)
	}

	item := row.toItem()
	return &item, nil
}

// Insert saves a new item.
func (r *ItemRepo) Insert(ctx context.Context, ownerID string, item domain.OrderedItem) error {
	q, ok := queries[item.Collection()]
	if !ok {
		return fmt.Errorf("insert item %s: missing payload", item.ID)
	}
	row, err := rowFor(ownerID, item)
	if err != nil {
		return err
	}
	if _, err := r.db.NamedExecContext(ctx, q.insert, row); err != nil {
		return fmt.Errorf("failed to insert %s item: %w", item.Collection(), err)
	}
	return nil
}

// Update replaces an item's payload.
func (r *ItemRepo) Update(ctx context.Context, ownerID string, item domain.OrderedItem) error {
	q, ok := queries[item.Collection()]
	if !ok {
		return fmt.Errorf("update item %s: missing payload", item.ID)
	}
	row, err := rowFor(ownerID, item)
	if err != nil {
		return err
	}
	res, err := r.db.NamedExecContext(ctx, q.update, row)
	if err != nil {
		return fmt.Errorf("failed to update %s item: %w", item.Collection(), err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// Delete removes an item and resequences the rest in one transaction.
func (r *ItemRepo) Delete(
	ctx context.Context,
	ownerID string,
	collection domain.CollectionType,
	id string,
	resequence []domain.PositionUpdate,
) error {
	table, ok := tableFor[collection]
	if !ok {
		return fmt.Errorf("unknown collection %q", collection)
	}

	uow, err := r.db.NewUnitOfWork(ctx)
	if err != nil {
		return err
	}
	defer uow.Rollback()

	found, err := uow.DeleteOwned(ctx, table, ownerID, id)
	if err != nil {
		return err
	}
	if !found {
		return storage.ErrNotFound
	}

	if err := r.applyPositions(ctx, uow, table, ownerID, collection, resequence); err != nil {
		return err
	}
	return uow.Commit()
}

// UpdatePositions applies a position batch atomically with ownership check
// and QR cascade.
func (r *ItemRepo) UpdatePositions(
	ctx context.Context,
	ownerID string,
	collection domain.CollectionType,
	updates []domain.PositionUpdate,
) error {
	table, ok := tableFor[collection]
	if !ok {
		return fmt.Errorf("unknown collection %q", collection)
	}

	uow, err := r.db.NewUnitOfWork(ctx)
	if err != nil {
		return err
	}
	defer uow.Rollback()

	if err := r.applyPositions(ctx, uow, table, ownerID, collection, updates); err != nil {
		return err
	}
	return uow.Commit()
}

func (r *ItemRepo) applyPositions(
	ctx context.Context,
	uow *UnitOfWork,
	table, ownerID string,
	collection domain.CollectionType,
	updates []domain.PositionUpdate,
) error {
	if len(updates) == 0 {
		return nil
	}

	ids, _ := splitUpdates(updates)
	owned, err := uow.LockOwned(ctx, table, ownerID, ids)
	if err != nil {
		return err
	}
	if owned != len(ids) {
		return storage.ErrNotOwned
	}

	if err := uow.ApplyPositions(ctx, table, ownerID, updates); err != nil {
		return err
	}
	if linkColumn, ok := qrLinkColumn[collection]; ok {
		return uow.CascadeQRPositions(ctx, linkColumn, ownerID, updates)
	}
	return nil
}
