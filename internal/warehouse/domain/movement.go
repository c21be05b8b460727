package domain

import "time"

// MovementType classifies a ledger entry (spec §2).
type MovementType string

const (
	MovementReceipt    MovementType = "RECEIPT"
	MovementDispatch   MovementType = "DISPATCH"
	MovementAdjustment MovementType = "ADJUSTMENT"
	MovementScrap      MovementType = "SCRAP"
	MovementTransfer   MovementType = "TRANSFER"
)

// IsInbound reports whether this movement type increases quantity_available.
func (t MovementType) IsInbound() bool {
	return t == MovementReceipt || t == MovementAdjustment
}

// IsOutbound reports whether this movement type decreases quantity_available.
func (t MovementType) IsOutbound() bool {
	return t == MovementDispatch || t == MovementScrap || t == MovementTransfer
}

// Movement is one append-only ledger entry against a Batch (spec §2: the
// sole source of truth for quantity_available, per the conservation
// invariant quantity_available = quantity_received + sum(signed movements)).
type Movement struct {
	ID              string       `db:"id" json:"id"`
	BatchID         string       `db:"batch_id" json:"batch_id"`
	PerformedBy     string       `db:"user_id" json:"performed_by"`
	Type            MovementType `db:"movement_type" json:"type"`
	Quantity        Quantity     `db:"quantity" json:"quantity"`
	QuantityBefore  Quantity     `db:"quantity_before" json:"quantity_before"`
	QuantityAfter   Quantity     `db:"quantity_after" json:"quantity_after"`
	ReferenceNumber string       `db:"reference_number" json:"reference_number,omitempty"`
	Timestamp       time.Time    `db:"timestamp" json:"timestamp"`
	Notes           string       `db:"notes" json:"notes,omitempty"`
}
