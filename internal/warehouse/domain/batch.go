package domain

import "time"

// BatchStatus is the lifecycle state of a received batch.
type BatchStatus string

const (
	BatchActive   BatchStatus = "ACTIVE"
	BatchScrap    BatchStatus = "SCRAP"
	BatchDepleted BatchStatus = "DEPLETED"
)

// Batch is a single receipt of an Item, tracked independently for FEFO
// picking (spec §2, invariant: quantity_available never negative).
type Batch struct {
	ID                   string      `db:"id" json:"id"`
	ItemID               string      `db:"item_id" json:"item_id"`
	LocationID           *string     `db:"location_id" json:"location_id,omitempty"`
	BatchNumber          string      `db:"batch_number" json:"batch_number"`
	SupplierBatchNumber  string      `db:"supplier_batch_number" json:"supplier_batch_number,omitempty"`
	QuantityReceived     Quantity    `db:"quantity_received" json:"quantity_received"`
	QuantityAvailable    Quantity    `db:"quantity_available" json:"quantity_available"`
	ReceiptDate          time.Time   `db:"receipt_date" json:"receipt_date"`
	ExpirationDate       time.Time   `db:"expiration_date" json:"expiration_date"`
	Status               BatchStatus `db:"status" json:"status"`
	Notes                string      `db:"notes" json:"notes,omitempty"`
	Version              int         `db:"version" json:"version"`
	CreatedAt            time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time   `db:"updated_at" json:"updated_at"`
}

// IsExpired reports whether the batch's expiration date has passed as of now.
func (b *Batch) IsExpired(now time.Time) bool {
	return b.ExpirationDate.Before(truncateToDate(now))
}

// DaysUntilExpiration returns the signed day count to expiration (negative
// once expired). Both dates are truncated to midnight before the diff.
func (b *Batch) DaysUntilExpiration(now time.Time) int {
	today := truncateToDate(now)
	exp := truncateToDate(b.ExpirationDate)
	return int(exp.Sub(today).Hours() / 24)
}

// IsDepleted reports whether the batch has no quantity left to pick.
func (b *Batch) IsDepleted() bool {
	return !b.QuantityAvailable.IsPositive()
}

// CanPick reports whether qty can legally be picked from this batch right now.
func (b *Batch) CanPick(qty Quantity, now time.Time) bool {
	return b.Status == BatchActive && !b.IsExpired(now) && b.QuantityAvailable.GreaterThanOrEqual(qty)
}

func truncateToDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
