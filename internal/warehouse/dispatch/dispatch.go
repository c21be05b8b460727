// Package dispatch implements the delivery-note lifecycle: creation against
// picked batches, DISPATCH movements, and the validated status state
// machine (DRAFT -> ISSUED -> DELIVERED -> INVOICED, with CANCELLED as a
// terminal side-exit that reverses any stock already picked).
package dispatch

import (
	"database/sql"
	"fmt"
	"time"

	"context"

	"github.com/inkwms/warehouse/internal/warehouse/domain"
	"github.com/inkwms/warehouse/internal/warehouse/ledger"
	"github.com/inkwms/warehouse/internal/warehouse/receiving"
	"github.com/inkwms/warehouse/internal/warehouse/repository"
	"github.com/inkwms/warehouse/pkg/database"
	"github.com/inkwms/warehouse/pkg/errors"
)

// LineItem is one batch/quantity pick requested for a delivery note.
type LineItem struct {
	BatchID  string
	Quantity domain.Quantity
}

// Service drives the delivery-note state machine.
type Service struct {
	db        *database.DB
	notes     *repository.DeliveryNoteRepository
	batches   *repository.BatchRepository
	customers *repository.CustomerRepository
	ledger    *ledger.Ledger
	now       func() time.Time
}

func NewService(db *database.DB, notes *repository.DeliveryNoteRepository, batches *repository.BatchRepository, customers *repository.CustomerRepository, l *ledger.Ledger) *Service {
	return &Service{db: db, notes: notes, batches: batches, customers: customers, ledger: l, now: time.Now}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// GenerateNumber mints a delivery note number: DN-YYMMDD-NNNN (a wider
// 4-digit counter than batch/GRN numbers, matching higher expected volume).
func (s *Service) GenerateNumber(ctx context.Context) (string, error) {
	return receiving.NextNumber(ctx, s.notes.MaxNumberWithPrefix, "DN", s.now(), 4)
}

// Create validates the customer and each referenced batch, builds a DRAFT
// delivery note, and immediately picks stock against each line item via the
// ledger (a DISPATCH movement per line), consistent with FEFO validation
// run ahead of time by the caller.
func (s *Service) Create(ctx context.Context, customerID string, items []LineItem, performedBy string, isConsignment bool, notes string) (*domain.DeliveryNote, error) {
	if len(items) == 0 {
		return nil, errors.BadRequest("a delivery note requires at least one line item")
	}
	if _, err := s.customers.GetByID(ctx, customerID); err != nil {
		return nil, err
	}

	dn := &domain.DeliveryNote{
		CustomerID:    customerID,
		CreatedBy:     performedBy,
		Status:        domain.DeliveryNoteDraft,
		IsConsignment: isConsignment,
		Notes:         notes,
	}

	number, err := s.GenerateNumber(ctx)
	if err != nil {
		return nil, err
	}
	dn.Number = number

	for _, li := range items {
		batch, err := s.batches.GetByID(ctx, li.BatchID)
		if err != nil {
			return nil, err
		}
		dn.Items = append(dn.Items, domain.DeliveryNoteItem{
			ItemID:   batch.ItemID,
			BatchID:  li.BatchID,
			Quantity: li.Quantity,
		})
	}

	if err := s.notes.Create(ctx, dn); err != nil {
		return nil, err
	}

	for _, item := range dn.Items {
		if _, err := s.ledger.RecordMovement(ctx, item.BatchID, domain.MovementDispatch, item.Quantity, performedBy, dn.Number, fmt.Sprintf("dispatch for %s", dn.Number)); err != nil {
			return nil, err
		}
	}

	return dn, nil
}

// Get fetches a delivery note by id.
func (s *Service) Get(ctx context.Context, id string) (*domain.DeliveryNote, error) {
	return s.notes.GetByID(ctx, id)
}

// Issue transitions a DRAFT delivery note to ISSUED, stamping issue_date if
// unset.
func (s *Service) Issue(ctx context.Context, id string) (*domain.DeliveryNote, error) {
	return s.transition(ctx, id, domain.DeliveryNoteIssued)
}

// Deliver transitions an ISSUED delivery note to DELIVERED, stamping
// delivery_date if unset.
func (s *Service) Deliver(ctx context.Context, id string) (*domain.DeliveryNote, error) {
	return s.transition(ctx, id, domain.DeliveryNoteDelivered)
}

// Invoice transitions a DELIVERED delivery note to INVOICED.
func (s *Service) Invoice(ctx context.Context, id string) (*domain.DeliveryNote, error) {
	return s.transition(ctx, id, domain.DeliveryNoteInvoiced)
}

func (s *Service) transition(ctx context.Context, id string, next domain.DeliveryNoteStatus) (*domain.DeliveryNote, error) {
	dn, err := s.notes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !dn.Status.CanTransition(next) {
		return nil, errors.BadRequest(fmt.Sprintf("cannot transition delivery note from %s to %s", dn.Status, next))
	}

	now := s.now()
	var issueDate, deliveryDate sql.NullTime
	if next == domain.DeliveryNoteIssued && dn.IssueDate == nil {
		issueDate = sql.NullTime{Time: now, Valid: true}
	}
	if next == domain.DeliveryNoteDelivered && dn.DeliveryDate == nil {
		deliveryDate = sql.NullTime{Time: now, Valid: true}
	}

	if err := s.notes.UpdateStatus(ctx, id, next, &issueDate, &deliveryDate); err != nil {
		return nil, err
	}
	return s.notes.GetByID(ctx, id)
}

// Cancel transitions a delivery note to CANCELLED. Any stock already picked
// via DISPATCH movements is restored with one compensating RECEIPT movement
// per line item, sorted by ascending batch id to match the deterministic
// lock-ordering rule used elsewhere for multi-batch operations.
func (s *Service) Cancel(ctx context.Context, id string, performedBy string) (*domain.DeliveryNote, error) {
	dn, err := s.notes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !dn.Status.CanTransition(domain.DeliveryNoteCancelled) {
		return nil, errors.BadRequest(fmt.Sprintf("cannot cancel delivery note in status %s", dn.Status))
	}

	items := append([]domain.DeliveryNoteItem(nil), dn.Items...)
	sortItemsByBatchID(items)

	for _, item := range items {
		note := fmt.Sprintf("cancellation of %s", dn.Number)
		if _, err := s.ledger.RecordMovement(ctx, item.BatchID, domain.MovementReceipt, item.Quantity, performedBy, dn.Number, note); err != nil {
			return nil, err
		}
	}

	var noTime sql.NullTime
	if err := s.notes.UpdateStatus(ctx, id, domain.DeliveryNoteCancelled, &noTime, &noTime); err != nil {
		return nil, err
	}
	return s.notes.GetByID(ctx, id)
}

func sortItemsByBatchID(items []domain.DeliveryNoteItem) {
	for i := 1; i < len(items); i++ {
		for j := i; j > 0 && items[j-1].BatchID > items[j].BatchID; j-- {
			items[j-1], items[j] = items[j], items[j-1]
		}
	}
}
