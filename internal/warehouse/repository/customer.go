package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/inkwms/warehouse/internal/warehouse/domain"
	"github.com/inkwms/warehouse/pkg/database"
	"github.com/inkwms/warehouse/pkg/errors"
)

// CustomerRepository persists customers (VMI or ordinary dispatch targets).
type CustomerRepository struct {
	db *database.DB
}

func NewCustomerRepository(db *database.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

func (r *CustomerRepository) Create(ctx context.Context, c *domain.Customer) error {
	c.ID = uuid.New().String()

	query := `
		INSERT INTO customers (id, name, email, phone, address, contact_person, is_active, is_vmi_customer)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at`

	row := r.db.QueryRowContext(ctx, query,
		c.ID, c.Name, c.Email, c.Phone, c.Address, c.ContactPerson, c.IsActive, c.IsVMICustomer,
	)
	if err := row.Scan(&c.CreatedAt); err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return errors.Wrap(err, "INTERNAL_ERROR", "failed to create customer", 500)
	}
	return nil
}

func (r *CustomerRepository) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	var c domain.Customer
	query := `SELECT * FROM customers WHERE id = $1`
	if err := r.db.GetContext(ctx, &c, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFound("customer")
		}
		return nil, errors.Wrap(err, "INTERNAL_ERROR", "failed to get customer", 500)
	}
	return &c, nil
}

func (r *CustomerRepository) ListActive(ctx context.Context) ([]domain.Customer, error) {
	var customers []domain.Customer
	query := `SELECT * FROM customers WHERE is_active = true ORDER BY name`
	if err := r.db.SelectContext(ctx, &customers, query); err != nil {
		return nil, errors.Wrap(err, "INTERNAL_ERROR", "failed to list customers", 500)
	}
	return customers, nil
}
