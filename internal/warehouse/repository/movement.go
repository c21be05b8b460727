package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/inkwms/warehouse/internal/warehouse/domain"
	"github.com/inkwms/warehouse/pkg/database"
	"github.com/inkwms/warehouse/pkg/errors"
)

// MovementRepository appends to and reads the movement ledger. Rows are
// never updated or deleted once written (spec §2).
type MovementRepository struct {
	db *database.DB
}

func NewMovementRepository(db *database.DB) *MovementRepository {
	return &MovementRepository{db: db}
}

func (r *MovementRepository) Create(ctx context.Context, m *domain.Movement) error {
	m.ID = uuid.New().String()

	query := `
		INSERT INTO movements (
			id, batch_id, user_id, movement_type, quantity,
			quantity_before, quantity_after, reference_number, notes
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9
		)
		RETURNING timestamp`

	row := r.db.QueryRowContext(ctx, query,
		m.ID, m.BatchID, m.PerformedBy, m.Type, m.Quantity,
		m.QuantityBefore, m.QuantityAfter, m.ReferenceNumber, m.Notes,
	)
	if err := row.Scan(&m.Timestamp); err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return errors.Wrap(err, "INTERNAL_ERROR", "failed to record movement", 500)
	}
	return nil
}

// MovementFilter narrows Search's result set; every field is optional.
type MovementFilter struct {
	BatchID      string
	ItemID       string
	MovementType domain.MovementType
	Start        *time.Time
	End          *time.Time
	Limit        int
}

// Search returns movements matching filter, newest first, mirroring the
// original's get_movements_history filter surface (batch, item-via-join,
// type, date window, each independently optional).
func (r *MovementRepository) Search(ctx context.Context, filter MovementFilter) ([]domain.Movement, error) {
	var b strings.Builder
	var args []interface{}
	joinBatches := filter.ItemID != ""

	b.WriteString("SELECT m.* FROM movements m ")
	if joinBatches {
		b.WriteString("JOIN batches b ON b.id = m.batch_id ")
	}
	b.WriteString("WHERE 1=1 ")

	if filter.BatchID != "" {
		args = append(args, filter.BatchID)
		fmt.Fprintf(&b, "AND m.batch_id = $%d ", len(args))
	}
	if joinBatches {
		args = append(args, filter.ItemID)
		fmt.Fprintf(&b, "AND b.item_id = $%d ", len(args))
	}
	if filter.MovementType != "" {
		args = append(args, filter.MovementType)
		fmt.Fprintf(&b, "AND m.movement_type = $%d ", len(args))
	}
	if filter.Start != nil {
		args = append(args, *filter.Start)
		fmt.Fprintf(&b, "AND m.timestamp >= $%d ", len(args))
	}
	if filter.End != nil {
		args = append(args, *filter.End)
		fmt.Fprintf(&b, "AND m.timestamp <= $%d ", len(args))
	}

	b.WriteString("ORDER BY m.timestamp DESC ")
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	if limit > 500 {
		limit = 500
	}
	args = append(args, limit)
	fmt.Fprintf(&b, "LIMIT $%d", len(args))

	var movements []domain.Movement
	if err := r.db.SelectContext(ctx, &movements, b.String(), args...); err != nil {
		return nil, errors.Wrap(err, "INTERNAL_ERROR", "failed to search movements", 500)
	}
	return movements, nil
}

// LatestTimestampForItem returns the most recent movement timestamp across
// the item's ACTIVE batches, or an invalid (NULL) sql.NullTime if the item
// has never moved stock, used by the dead-stock check.
func (r *MovementRepository) LatestTimestampForItem(ctx context.Context, itemID string) (sql.NullTime, error) {
	var ts sql.NullTime
	query := `
		SELECT MAX(m.timestamp) FROM movements m
		JOIN batches b ON b.id = m.batch_id
		WHERE b.item_id = $1 AND b.status = 'ACTIVE'`
	if err := r.db.GetContext(ctx, &ts, query, itemID); err != nil {
		return ts, errors.Wrap(err, "INTERNAL_ERROR", "failed to load last movement timestamp", 500)
	}
	return ts, nil
}
