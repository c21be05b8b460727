package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/inkwms/warehouse/internal/warehouse/domain"
	"github.com/inkwms/warehouse/pkg/database"
	"github.com/inkwms/warehouse/pkg/errors"
)

// LocationRepository persists warehouse storage locations.
type LocationRepository struct {
	db *database.DB
}

func NewLocationRepository(db *database.DB) *LocationRepository {
	return &LocationRepository{db: db}
}

func (r *LocationRepository) Create(ctx context.Context, l *domain.Location) error {
	l.ID = uuid.New().String()
	l.LocationCode = domain.GenerateLocationCode(l.Warehouse, l.Shelf, l.Position)

	query := `
		INSERT INTO locations (id, warehouse, shelf, position, location_code, description, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`

	row := r.db.QueryRowContext(ctx, query,
		l.ID, l.Warehouse, l.Shelf, l.Position, l.LocationCode, l.Description, l.IsActive,
	)
	if err := row.Scan(&l.CreatedAt); err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return errors.Wrap(err, "INTERNAL_ERROR", "failed to create location", 500)
	}
	return nil
}

func (r *LocationRepository) GetByID(ctx context.Context, id string) (*domain.Location, error) {
	var l domain.Location
	query := `SELECT * FROM locations WHERE id = $1`
	if err := r.db.GetContext(ctx, &l, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFound("location")
		}
		return nil, errors.Wrap(err, "INTERNAL_ERROR", "failed to get location", 500)
	}
	return &l, nil
}

func (r *LocationRepository) ListActive(ctx context.Context) ([]domain.Location, error) {
	var locations []domain.Location
	query := `SELECT * FROM locations WHERE is_active = true ORDER BY location_code`
	if err := r.db.SelectContext(ctx, &locations, query); err != nil {
		return nil, errors.Wrap(err, "INTERNAL_ERROR", "failed to list locations", 500)
	}
	return locations, nil
}
