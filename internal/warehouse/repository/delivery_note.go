package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/inkwms/warehouse/internal/warehouse/domain"
	"github.com/inkwms/warehouse/pkg/database"
	"github.com/inkwms/warehouse/pkg/errors"
)

// DeliveryNoteRepository persists delivery notes and their line items.
type DeliveryNoteRepository struct {
	db *database.DB
}

func NewDeliveryNoteRepository(db *database.DB) *DeliveryNoteRepository {
	return &DeliveryNoteRepository{db: db}
}

func (r *DeliveryNoteRepository) Create(ctx context.Context, dn *domain.DeliveryNote) error {
	dn.ID = uuid.New().String()

	query := `
		INSERT INTO delivery_notes (
			id, delivery_note_number, customer_id, created_by, status,
			issue_date, delivery_date, is_consignment, notes
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9
		)
		RETURNING created_at, updated_at`

	row := r.db.QueryRowContext(ctx, query,
		dn.ID, dn.Number, dn.CustomerID, dn.CreatedBy, dn.Status,
		dn.IssueDate, dn.DeliveryDate, dn.IsConsignment, dn.Notes,
	)
	if err := row.Scan(&dn.CreatedAt, &dn.UpdatedAt); err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return errors.Wrap(err, "INTERNAL_ERROR", "failed to create delivery note", 500)
	}

	for i := range dn.Items {
		if err := r.addItem(ctx, dn.ID, &dn.Items[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *DeliveryNoteRepository) addItem(ctx context.Context, deliveryNoteID string, item *domain.DeliveryNoteItem) error {
	item.ID = uuid.New().String()
	item.DeliveryNoteID = deliveryNoteID

	query := `
		INSERT INTO delivery_note_items (id, delivery_note_id, item_id, batch_id, quantity)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.ExecContext(ctx, query, item.ID, item.DeliveryNoteID, item.ItemID, item.BatchID, item.Quantity)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return errors.Wrap(err, "INTERNAL_ERROR", "failed to add delivery note item", 500)
	}
	return nil
}

func (r *DeliveryNoteRepository) GetByID(ctx context.Context, id string) (*domain.DeliveryNote, error) {
	var dn domain.DeliveryNote
	query := `SELECT * FROM delivery_notes WHERE id = $1`
	if err := r.db.GetContext(ctx, &dn, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFound("delivery note")
		}
		return nil, errors.Wrap(err, "INTERNAL_ERROR", "failed to get delivery note", 500)
	}

	items, err := r.itemsFor(ctx, id)
	if err != nil {
		return nil, err
	}
	dn.Items = items
	return &dn, nil
}

func (r *DeliveryNoteRepository) itemsFor(ctx context.Context, deliveryNoteID string) ([]domain.DeliveryNoteItem, error) {
	var items []domain.DeliveryNoteItem
	query := `SELECT * FROM delivery_note_items WHERE delivery_note_id = $1`
	if err := r.db.SelectContext(ctx, &items, query, deliveryNoteID); err != nil {
		return nil, errors.Wrap(err, "INTERNAL_ERROR", "failed to load delivery note items", 500)
	}
	return items, nil
}

// UpdateStatus applies a validated status transition (domain.CanTransition
// is checked by the caller before this is reached).
func (r *DeliveryNoteRepository) UpdateStatus(ctx context.Context, id string, status domain.DeliveryNoteStatus, issueDate, deliveryDate *sql.NullTime) error {
	query := `
		UPDATE delivery_notes SET status = $2, issue_date = COALESCE($3, issue_date),
			delivery_date = COALESCE($4, delivery_date), updated_at = now()
		WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, status, issueDate, deliveryDate)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return errors.Wrap(err, "INTERNAL_ERROR", "failed to update delivery note status", 500)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return errors.NotFound("delivery note")
	}
	return nil
}

// MaxNumberWithPrefix returns the lexicographically highest delivery note
// number matching likePattern.
func (r *DeliveryNoteRepository) MaxNumberWithPrefix(ctx context.Context, likePattern string) (string, error) {
	var max sql.NullString
	query := `SELECT MAX(delivery_note_number) FROM delivery_notes WHERE delivery_note_number LIKE $1`
	if err := r.db.GetContext(ctx, &max, query, likePattern); err != nil {
		return "", errors.Wrap(err, "INTERNAL_ERROR", "failed to find max delivery note number", 500)
	}
	return max.String, nil
}

// ListByStatus returns delivery notes in a given status, newest first.
func (r *DeliveryNoteRepository) ListByStatus(ctx context.Context, status domain.DeliveryNoteStatus) ([]domain.DeliveryNote, error) {
	var notes []domain.DeliveryNote
	query := `SELECT * FROM delivery_notes WHERE status = $1 ORDER BY created_at DESC`
	if err := r.db.SelectContext(ctx, &notes, query, status); err != nil {
		return nil, errors.Wrap(err, "INTERNAL_ERROR", "failed to list delivery notes", 500)
	}
	return notes, nil
}
