package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/vietddude/linkpay/internal/core/domain"
	"github.com/vietddude/linkpay/internal/metrics"
)

// UnitOfWork bundles position writes into a single database transaction,
// ensuring atomicity (all succeed or all fail).
type UnitOfWork struct {
	db *DB
	tx *sqlx.Tx
}

// NewUnitOfWork creates a new unit of work with an active transaction.
func (db *DB) NewUnitOfWork(ctx context.Context) (*UnitOfWork, error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &UnitOfWork{db: db, tx: tx}, nil
}

// Commit commits the transaction.
func (u *UnitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("transaction already completed")
	}
	err := u.tx.Commit()
	u.tx = nil
	return err
}

// Rollback rolls back the transaction. Safe to call multiple times.
func (u *UnitOfWork) Rollback() error {
	if u.tx == nil {
		return nil // Already committed or rolled back
	}
	err := u.tx.Rollback()
	u.tx = nil
	return err
}

// LockOwned locks the owner's rows among ids and returns how many exist.
func (u *UnitOfWork) LockOwned(ctx context.Context, table, ownerID string, ids []string) (int, error) {
	query := fmt.Sprintf(`SELECT id FROM %s WHERE owner_id = $1 AND id = ANY($2) FOR UPDATE`, table)

	var owned []string
	if err := u.tx.SelectContext(ctx, &owned, query, ownerID, pq.Array(ids)); err != nil {
		return 0, fmt.Errorf("failed to lock rows: %w", err)
	}
	return len(owned), nil
}

// ApplyPositions writes a position batch with a single UPDATE ... FROM unnest.
func (u *UnitOfWork) ApplyPositions(ctx context.Context, table, ownerID string, updates []domain.PositionUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	ids, positions := splitUpdates(updates)

	metrics.DBBatchSize.WithLabelValues("apply_positions").Observe(float64(len(updates)))

	query := fmt.Sprintf(`UPDATE %s AS t SET position = u.position, updated_at = now()
		FROM unnest($2::text[], $3::int[]) AS u(id, position)
		WHERE t.owner_id = $1 AND t.id = u.id`, table)
	if _, err := u.tx.ExecContext(ctx, query, ownerID, pq.Array(ids), pq.Array(positions)); err != nil {
		return fmt.Errorf("failed to update positions: %w", err)
	}
	return nil
}

// CascadeQRPositions gives QR codes linked through linkColumn the position of
// the item they reference.
func (u *UnitOfWork) CascadeQRPositions(ctx context.Context, linkColumn, ownerID string, updates []domain.PositionUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	ids, positions := splitUpdates(updates)

	query := fmt.Sprintf(`UPDATE qr_codes AS q SET position = u.position, updated_at = now()
		FROM unnest($2::text[], $3::int[]) AS u(id, position)
		WHERE q.owner_id = $1 AND q.%s = u.id`, linkColumn)
	if _, err := u.tx.ExecContext(ctx, query, ownerID, pq.Array(ids), pq.Array(positions)); err != nil {
		return fmt.Errorf("failed to cascade qr positions: %w", err)
	}
	return nil
}

// DeleteOwned deletes one owned row and reports whether it existed.
func (u *UnitOfWork) DeleteOwned(ctx context.Context, table, ownerID, id string) (bool, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE owner_id = $1 AND id = $2`, table)
	res, err := u.tx.ExecContext(ctx, query, ownerID, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete row: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return n > 0, nil
}

func splitUpdates(updates []domain.PositionUpdate) ([]string, []int64) {
	ids := make([]string, len(updates))
	positions := make([]int64, len(updates))
	for i, upd := range updates {
		ids[i] = upd.ID
		positions[i] = int64(upd.Position)
	}
	return ids, positions
}
