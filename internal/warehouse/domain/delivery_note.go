package domain

import "time"

// DeliveryNoteStatus is the dispatch-document lifecycle state (spec §2).
type DeliveryNoteStatus string

const (
	DeliveryNoteDraft     DeliveryNoteStatus = "DRAFT"
	DeliveryNoteIssued    DeliveryNoteStatus = "ISSUED"
	DeliveryNoteDelivered DeliveryNoteStatus = "DELIVERED"
	DeliveryNoteInvoiced  DeliveryNoteStatus = "INVOICED"
	DeliveryNoteCancelled DeliveryNoteStatus = "CANCELLED"
)

// legalTransitions enumerates the allowed DeliveryNoteStatus edges. The
// original Python just overwrites dn.status with whatever the caller passes;
// this table is the Go-native replacement that rejects illegal jumps
// (e.g. DRAFT -> INVOICED) instead of silently accepting them.
var legalTransitions = map[DeliveryNoteStatus][]DeliveryNoteStatus{
	DeliveryNoteDraft:     {DeliveryNoteIssued, DeliveryNoteCancelled},
	DeliveryNoteIssued:    {DeliveryNoteDelivered, DeliveryNoteCancelled},
	DeliveryNoteDelivered: {DeliveryNoteInvoiced},
	DeliveryNoteInvoiced:  {},
	DeliveryNoteCancelled: {},
}

// CanTransition reports whether moving from this status to next is legal.
func (s DeliveryNoteStatus) CanTransition(next DeliveryNoteStatus) bool {
	for _, allowed := range legalTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// DeliveryNote (dispatch document) groups one or more batch picks bound for
// a single customer.
type DeliveryNote struct {
	ID           string             `db:"id" json:"id"`
	Number       string             `db:"delivery_note_number" json:"delivery_note_number"`
	CustomerID   string             `db:"customer_id" json:"customer_id"`
	CreatedBy    string             `db:"created_by" json:"created_by"`
	Status       DeliveryNoteStatus `db:"status" json:"status"`
	IssueDate    *time.Time         `db:"issue_date" json:"issue_date,omitempty"`
	DeliveryDate *time.Time         `db:"delivery_date" json:"delivery_date,omitempty"`
	IsConsignment bool              `db:"is_consignment" json:"is_consignment"`
	Notes        string             `db:"notes" json:"notes,omitempty"`
	CreatedAt    time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `db:"updated_at" json:"updated_at"`

	Items []DeliveryNoteItem `db:"-" json:"items,omitempty"`
}

// DeliveryNoteItem is one batch/quantity line on a DeliveryNote.
type DeliveryNoteItem struct {
	ID             string   `db:"id" json:"id"`
	DeliveryNoteID string   `db:"delivery_note_id" json:"delivery_note_id"`
	ItemID         string   `db:"item_id" json:"item_id"`
	BatchID        string   `db:"batch_id" json:"batch_id"`
	Quantity       Quantity `db:"quantity" json:"quantity"`
}

// TotalQuantity sums the quantity across every line item.
func (dn *DeliveryNote) TotalQuantity() Quantity {
	total := ZeroQuantity
	for _, item := range dn.Items {
		total = total.Add(item.Quantity)
	}
	return total
}
