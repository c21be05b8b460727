package repository

import (
	"database/sql"
	"time"

	"context"

	"github.com/google/uuid"
	"github.com/inkwms/warehouse/internal/warehouse/domain"
	"github.com/inkwms/warehouse/pkg/database"
	"github.com/inkwms/warehouse/pkg/errors"
	"github.com/lib/pq"
)

// BatchRepository persists Batch rows and the FEFO-ordered queries over them.
type BatchRepository struct {
	db *database.DB
}

func NewBatchRepository(db *database.DB) *BatchRepository {
	return &BatchRepository{db: db}
}

func (r *BatchRepository) Create(ctx context.Context, b *domain.Batch) error {
	b.ID = uuid.New().String()
	b.Version = 1

	query := `
		INSERT INTO batches (
			id, item_id, location_id, batch_number, supplier_batch_number,
			quantity_received, quantity_available, receipt_date, expiration_date,
			status, notes, version
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12
		)
		RETURNING created_at, updated_at`

	row := r.db.QueryRowContext(ctx, query,
		b.ID, b.ItemID, b.LocationID, b.BatchNumber, b.SupplierBatchNumber,
		b.QuantityReceived, b.QuantityAvailable, b.ReceiptDate, b.ExpirationDate,
		b.Status, b.Notes, b.Version,
	)
	if err := row.Scan(&b.CreatedAt, &b.UpdatedAt); err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return errors.Wrap(err, "INTERNAL_ERROR", "failed to create batch", 500)
	}
	return nil
}

func (r *BatchRepository) GetByID(ctx context.Context, id string) (*domain.Batch, error) {
	var b domain.Batch
	query := `SELECT * FROM batches WHERE id = $1`
	if err := r.db.GetContext(ctx, &b, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFound("batch")
		}
		return nil, errors.Wrap(err, "INTERNAL_ERROR", "failed to get batch", 500)
	}
	return &b, nil
}

// GetByIDForUpdate locks the batch row for the lifetime of the caller's
// transaction (propagated via ctx through pkg/database.WithTx). This is the
// sole concurrency primitive for mutating quantity_available.
func (r *BatchRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Batch, error) {
	var b domain.Batch
	query := `SELECT * FROM batches WHERE id = $1 FOR UPDATE`
	if err := r.db.GetContext(ctx, &b, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFound("batch")
		}
		return nil, errors.Wrap(err, "INTERNAL_ERROR", "failed to lock batch", 500)
	}
	return &b, nil
}

// GetManyForUpdate locks multiple batch rows in ascending id order, the
// deterministic lock-ordering rule that prevents cross-operation deadlocks
// when a delivery note or multi-item receipt touches several batches.
func (r *BatchRepository) GetManyForUpdate(ctx context.Context, ids []string) ([]domain.Batch, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	sorted := append([]string(nil), ids...)
	sortStrings(sorted)

	var batches []domain.Batch
	query := `SELECT * FROM batches WHERE id = ANY($1) ORDER BY id FOR UPDATE`
	if err := r.db.SelectContext(ctx, &batches, query, pq.Array(sorted)); err != nil {
		return nil, errors.Wrap(err, "INTERNAL_ERROR", "failed to lock batches", 500)
	}
	return batches, nil
}

func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

// UpdateQuantityAndStatus persists the mutated quantity, status and bumps
// version, failing with a Conflict if the expected version no longer matches
// (optimistic concurrency on top of the row lock).
func (r *BatchRepository) UpdateQuantityAndStatus(ctx context.Context, b *domain.Batch, expectedVersion int) error {
	query := `
		UPDATE batches SET
			quantity_available = $2, status = $3, notes = $4,
			version = version + 1, updated_at = now()
		WHERE id = $1 AND version = $5
		RETURNING version, updated_at`

	row := r.db.QueryRowContext(ctx, query, b.ID, b.QuantityAvailable, b.Status, b.Notes, expectedVersion)
	if err := row.Scan(&b.Version, &b.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return errors.Conflict("batch was modified concurrently")
		}
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return errors.Wrap(err, "INTERNAL_ERROR", "failed to update batch", 500)
	}
	return nil
}

// FindAvailableForPicking returns ACTIVE, non-empty batches for an item
// ordered FEFO (earliest expiration first).
func (r *BatchRepository) FindAvailableForPicking(ctx context.Context, itemID string, excludeExpired bool, now time.Time) ([]domain.Batch, error) {
	query := `
		SELECT * FROM batches
		WHERE item_id = $1 AND status = 'ACTIVE' AND quantity_available > 0`
	args := []interface{}{itemID}

	if excludeExpired {
		query += ` AND expiration_date >= $2`
		args = append(args, now)
	}
	query += ` ORDER BY expiration_date ASC`

	var batches []domain.Batch
	if err := r.db.SelectContext(ctx, &batches, query, args...); err != nil {
		return nil, errors.Wrap(err, "INTERNAL_ERROR", "failed to list available batches", 500)
	}
	return batches, nil
}

// FindEarlierExpiring returns active, unexpired batches for the same item
// that expire strictly before refExpiration — used to flag FEFO violations.
func (r *BatchRepository) FindEarlierExpiring(ctx context.Context, itemID, excludeBatchID string, refExpiration, now time.Time) ([]domain.Batch, error) {
	query := `
		SELECT * FROM batches
		WHERE item_id = $1 AND status = 'ACTIVE' AND quantity_available > 0
		  AND expiration_date < $2 AND expiration_date >= $3 AND id != $4
		ORDER BY expiration_date ASC`

	var batches []domain.Batch
	if err := r.db.SelectContext(ctx, &batches, query, itemID, refExpiration, now, excludeBatchID); err != nil {
		return nil, errors.Wrap(err, "INTERNAL_ERROR", "failed to list earlier-expiring batches", 500)
	}
	return batches, nil
}

// ListExpiringWithin returns ACTIVE batches expiring within (now, now+days].
func (r *BatchRepository) ListExpiringWithin(ctx context.Context, days int, now time.Time) ([]domain.Batch, error) {
	threshold := now.AddDate(0, 0, days)
	query := `
		SELECT * FROM batches
		WHERE status = 'ACTIVE' AND expiration_date <= $1 AND expiration_date > $2`

	var batches []domain.Batch
	if err := r.db.SelectContext(ctx, &batches, query, threshold, now); err != nil {
		return nil, errors.Wrap(err, "INTERNAL_ERROR", "failed to list expiring batches", 500)
	}
	return batches, nil
}

// ListExpired returns ACTIVE batches whose expiration date has already passed.
func (r *BatchRepository) ListExpired(ctx context.Context, now time.Time) ([]domain.Batch, error) {
	query := `SELECT * FROM batches WHERE status = 'ACTIVE' AND expiration_date < $1`

	var batches []domain.Batch
	if err := r.db.SelectContext(ctx, &batches, query, now); err != nil {
		return nil, errors.Wrap(err, "INTERNAL_ERROR", "failed to list expired batches", 500)
	}
	return batches, nil
}

// ListByItem returns all batches for an item regardless of status.
func (r *BatchRepository) ListByItem(ctx context.Context, itemID string) ([]domain.Batch, error) {
	query := `SELECT * FROM batches WHERE item_id = $1 ORDER BY expiration_date ASC`

	var batches []domain.Batch
	if err := r.db.SelectContext(ctx, &batches, query, itemID); err != nil {
		return nil, errors.Wrap(err, "INTERNAL_ERROR", "failed to list item batches", 500)
	}
	return batches, nil
}

// MaxBatchNumberWithPrefix returns the lexicographically highest batch_number
// matching prefix%, or "" if none exist — the basis for deterministic
// document numbering (GR-YYMMDD-NNN and friends).
func (r *BatchRepository) MaxBatchNumberWithPrefix(ctx context.Context, likePattern string) (string, error) {
	var max sql.NullString
	query := `SELECT MAX(batch_number) FROM batches WHERE batch_number LIKE $1`
	if err := r.db.GetContext(ctx, &max, query, likePattern); err != nil {
		return "", errors.Wrap(err, "INTERNAL_ERROR", "failed to find max batch number", 500)
	}
	return max.String, nil
}
