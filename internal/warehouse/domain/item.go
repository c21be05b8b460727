package domain

import "time"

// Item is the ink product master record.
type Item struct {
	ID           string    `db:"id" json:"id"`
	SKU          string    `db:"sku" json:"sku"`
	Name         string    `db:"name" json:"name"`
	Description  string    `db:"description" json:"description,omitempty"`
	Supplier     string    `db:"supplier" json:"supplier"`
	Unit         string    `db:"unit_of_measure" json:"unit_of_measure"`
	CostPrice    Money     `db:"cost_price" json:"cost_price"`
	Currency     string    `db:"currency" json:"currency"`
	ReorderPoint Quantity  `db:"reorder_point" json:"reorder_point"`
	MinStock     Quantity  `db:"min_stock" json:"min_stock"`
	MaxStock     Quantity  `db:"max_stock" json:"max_stock"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Location is a warehouse storage slot a batch can be assigned to.
type Location struct {
	ID           string    `db:"id" json:"id"`
	Warehouse    string    `db:"warehouse" json:"warehouse"`
	Shelf        string    `db:"shelf" json:"shelf"`
	Position     string    `db:"position" json:"position"`
	LocationCode string    `db:"location_code" json:"location_code"`
	Description  string    `db:"description" json:"description,omitempty"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// GenerateLocationCode builds the canonical "<warehouse>-<shelf>-<position>" code.
func GenerateLocationCode(warehouse, shelf, position string) string {
	return warehouse + "-" + shelf + "-" + position
}

// Customer is a delivery-note recipient.
type Customer struct {
	ID            string    `db:"id" json:"id"`
	Name          string    `db:"name" json:"name"`
	Email         string    `db:"email" json:"email,omitempty"`
	Phone         string    `db:"phone" json:"phone,omitempty"`
	Address       string    `db:"address" json:"address,omitempty"`
	ContactPerson string    `db:"contact_person" json:"contact_person,omitempty"`
	IsActive      bool      `db:"is_active" json:"is_active"`
	IsVMICustomer bool      `db:"is_vmi_customer" json:"is_vmi_customer"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}
