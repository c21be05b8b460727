package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/inkwms/warehouse/internal/warehouse/domain"
	"github.com/inkwms/warehouse/pkg/database"
	"github.com/inkwms/warehouse/pkg/errors"
)

// AlertRepository persists alerts raised by the scanner and supports the
// same-day/same-week dedup queries it depends on.
type AlertRepository struct {
	db *database.DB
}

func NewAlertRepository(db *database.DB) *AlertRepository {
	return &AlertRepository{db: db}
}

func (r *AlertRepository) Create(ctx context.Context, a *domain.Alert) error {
	a.ID = uuid.New().String()

	query := `
		INSERT INTO alerts (
			id, alert_type, severity, batch_id, item_id, title, message, is_read, is_dismissed
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9
		)
		RETURNING created_at`

	row := r.db.QueryRowContext(ctx, query,
		a.ID, a.Type, a.Severity, a.BatchID, a.ItemID, a.Title, a.Message, a.IsRead, a.IsDismissed,
	)
	if err := row.Scan(&a.CreatedAt); err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return errors.Wrap(err, "INTERNAL_ERROR", "failed to create alert", 500)
	}
	return nil
}

// ExistsForBatchSince reports whether an alert of this severity already
// exists for the batch since the given cutoff (dedup window, e.g. start of
// today) — the expiring-batch check's dedup key is (batch, severity), not
// alert type, since a single batch can legitimately receive alerts of
// several distinct severities as it crosses successive threshold bands.
func (r *AlertRepository) ExistsForBatchSince(ctx context.Context, batchID string, severity domain.AlertSeverity, since time.Time) (bool, error) {
	var count int
	query := `
		SELECT COUNT(*) FROM alerts
		WHERE batch_id = $1 AND severity = $2 AND created_at >= $3`
	if err := r.db.GetContext(ctx, &count, query, batchID, severity, since); err != nil {
		return false, errors.Wrap(err, "INTERNAL_ERROR", "failed to check existing alert", 500)
	}
	return count > 0, nil
}

// ExistsForItemSince reports whether an alert of this type already exists
// for the item since the given cutoff — used by low-stock and dead-stock
// checks which key on item rather than batch.
func (r *AlertRepository) ExistsForItemSince(ctx context.Context, itemID string, alertType domain.AlertType, since time.Time) (bool, error) {
	var count int
	query := `
		SELECT COUNT(*) FROM alerts
		WHERE item_id = $1 AND alert_type = $2 AND created_at >= $3`
	if err := r.db.GetContext(ctx, &count, query, itemID, alertType, since); err != nil {
		return false, errors.Wrap(err, "INTERNAL_ERROR", "failed to check existing alert", 500)
	}
	return count > 0, nil
}

func (r *AlertRepository) ListUnread(ctx context.Context) ([]domain.Alert, error) {
	var alerts []domain.Alert
	query := `SELECT * FROM alerts WHERE is_read = false AND is_dismissed = false ORDER BY created_at DESC`
	if err := r.db.SelectContext(ctx, &alerts, query); err != nil {
		return nil, errors.Wrap(err, "INTERNAL_ERROR", "failed to list alerts", 500)
	}
	return alerts, nil
}

func (r *AlertRepository) MarkRead(ctx context.Context, id string) error {
	query := `UPDATE alerts SET is_read = true WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return errors.Wrap(err, "INTERNAL_ERROR", "failed to mark alert read", 500)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return errors.NotFound("alert")
	}
	return nil
}

func (r *AlertRepository) GetByID(ctx context.Context, id string) (*domain.Alert, error) {
	var a domain.Alert
	query := `SELECT * FROM alerts WHERE id = $1`
	if err := r.db.GetContext(ctx, &a, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFound("alert")
		}
		return nil, errors.Wrap(err, "INTERNAL_ERROR", "failed to get alert", 500)
	}
	return &a, nil
}
