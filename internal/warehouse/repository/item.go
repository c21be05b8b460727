package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/inkwms/warehouse/internal/warehouse/domain"
	"github.com/inkwms/warehouse/pkg/database"
	"github.com/inkwms/warehouse/pkg/errors"
)

// ItemRepository persists the Item master table.
type ItemRepository struct {
	db *database.DB
}

func NewItemRepository(db *database.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

func (r *ItemRepository) Create(ctx context.Context, item *domain.Item) error {
	item.ID = uuid.New().String()

	query := `
		INSERT INTO items (
			id, sku, name, description, supplier, unit_of_measure,
			cost_price, currency, reorder_point, min_stock, max_stock, is_active
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12
		)
		RETURNING created_at, updated_at`

	row := r.db.QueryRowContext(ctx, query,
		item.ID, item.SKU, item.Name, item.Description, item.Supplier, item.Unit,
		item.CostPrice, item.Currency, item.ReorderPoint, item.MinStock, item.MaxStock, item.IsActive,
	)
	if err := row.Scan(&item.CreatedAt, &item.UpdatedAt); err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return errors.Wrap(err, "INTERNAL_ERROR", "failed to create item", 500)
	}
	return nil
}

func (r *ItemRepository) GetByID(ctx context.Context, id string) (*domain.Item, error) {
	var item domain.Item
	query := `SELECT * FROM items WHERE id = $1`
	if err := r.db.GetContext(ctx, &item, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFound("item")
		}
		return nil, errors.Wrap(err, "INTERNAL_ERROR", "failed to get item", 500)
	}
	return &item, nil
}

func (r *ItemRepository) GetBySKU(ctx context.Context, sku string) (*domain.Item, error) {
	var item domain.Item
	query := `SELECT * FROM items WHERE sku = $1`
	if err := r.db.GetContext(ctx, &item, query, sku); err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFound("item")
		}
		return nil, errors.Wrap(err, "INTERNAL_ERROR", "failed to get item", 500)
	}
	return &item, nil
}

func (r *ItemRepository) ListActive(ctx context.Context) ([]domain.Item, error) {
	var items []domain.Item
	query := `SELECT * FROM items WHERE is_active = true ORDER BY sku`
	if err := r.db.SelectContext(ctx, &items, query); err != nil {
		return nil, errors.Wrap(err, "INTERNAL_ERROR", "failed to list items", 500)
	}
	return items, nil
}

func (r *ItemRepository) Update(ctx context.Context, item *domain.Item) error {
	query := `
		UPDATE items SET
			name = $2, description = $3, supplier = $4, unit_of_measure = $5,
			cost_price = $6, currency = $7, reorder_point = $8, min_stock = $9,
			max_stock = $10, is_active = $11, updated_at = now()
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query,
		item.ID, item.Name, item.Description, item.Supplier, item.Unit,
		item.CostPrice, item.Currency, item.ReorderPoint, item.MinStock, item.MaxStock, item.IsActive,
	)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return errors.Wrap(err, "INTERNAL_ERROR", "failed to update item", 500)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return errors.NotFound("item")
	}
	return nil
}

// Delete removes an item master record. Items with any batch on file,
// regardless of status, cannot be deleted; deactivate via Update instead.
func (r *ItemRepository) Delete(ctx context.Context, id string) error {
	var hasBatches bool
	if err := r.db.GetContext(ctx, &hasBatches, `SELECT EXISTS(SELECT 1 FROM batches WHERE item_id = $1)`, id); err != nil {
		return errors.Wrap(err, "INTERNAL_ERROR", "failed to check item batches", 500)
	}
	if hasBatches {
		return errors.Conflict("item has one or more batches on file and cannot be deleted")
	}

	result, err := r.db.ExecContext(ctx, `DELETE FROM items WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "INTERNAL_ERROR", "failed to delete item", 500)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return errors.NotFound("item")
	}
	return nil
}
