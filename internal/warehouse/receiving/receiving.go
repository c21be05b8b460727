// Package receiving implements goods-receipt intake: batch creation, GRN
// numbering, and the receipt-side RECEIPT movement.
package receiving

import (
	"context"
	"time"

	"github.com/inkwms/warehouse/internal/warehouse/domain"
	"github.com/inkwms/warehouse/internal/warehouse/ledger"
	"github.com/inkwms/warehouse/internal/warehouse/repository"
	"github.com/inkwms/warehouse/pkg/database"
	"github.com/inkwms/warehouse/pkg/errors"
)

const maxBatchNumberRetries = 3

// Receipt is one item line to receive; Service.ReceiveMultiple takes a
// batch of these under a single GRN.
type Receipt struct {
	ItemID              string
	Quantity            domain.Quantity
	ExpirationDate      time.Time
	BatchNumber         string // optional, generated if empty
	SupplierBatchNumber string
	LocationID          *string
	ReceiptDate         *time.Time
	Notes               string
}

// Result pairs a created batch with the movement that funded it, and the
// expiration warning (if any) raised at receipt time.
type Result struct {
	Batch    *domain.Batch
	Movement *domain.Movement
	Warning  *ExpirationWarning
}

// ExpirationWarningLevel grades how urgently a receipt's expiration date
// should be surfaced to the receiving clerk.
type ExpirationWarningLevel string

const (
	ExpirationLevelCritical ExpirationWarningLevel = "CRITICAL"
	ExpirationLevelWarning  ExpirationWarningLevel = "WARNING"
	ExpirationLevelInfo     ExpirationWarningLevel = "INFO"
)

// ExpirationWarning is the result of CheckExpirationWarning.
type ExpirationWarning struct {
	Level   ExpirationWarningLevel `json:"level"`
	Message string                 `json:"message"`
	Days    int                    `json:"days"`
}

// CheckExpirationWarning is a pure function gating UI warnings at receipt
// time: critical under 30 days, warning under 60, info under 180, nil
// beyond that. It never touches the database and never creates an Alert;
// that's the scanner's job, run on a schedule against batches already in
// stock, not at the moment of receipt.
func CheckExpirationWarning(expirationDate, now time.Time) *ExpirationWarning {
	days := int(truncateToDay(expirationDate).Sub(truncateToDay(now)).Hours() / 24)

	switch {
	case days < 30:
		return &ExpirationWarning{Level: ExpirationLevelCritical, Days: days, Message: "expires in less than 30 days"}
	case days < 60:
		return &ExpirationWarning{Level: ExpirationLevelWarning, Days: days, Message: "expires in less than 60 days"}
	case days < 180:
		return &ExpirationWarning{Level: ExpirationLevelInfo, Days: days, Message: "expires in less than 180 days"}
	default:
		return nil
	}
}

// Service receives goods into inventory, grounded on the goods-receipt
// workflow: validate item/location, validate expiration, generate
// deterministic batch/GRN numbers, create the batch, and record the
// founding RECEIPT movement.
type Service struct {
	db        *database.DB
	items     *repository.ItemRepository
	locations *repository.LocationRepository
	batches   *repository.BatchRepository
	ledger    *ledger.Ledger
	now       func() time.Time
}

func NewService(db *database.DB, items *repository.ItemRepository, locations *repository.LocationRepository, batches *repository.BatchRepository, l *ledger.Ledger) *Service {
	return &Service{db: db, items: items, locations: locations, batches: batches, ledger: l, now: time.Now}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// GenerateGRNNumber mints a Goods Receipt Note number: GRN-YYMMDD-NNN.
func (s *Service) GenerateGRNNumber(ctx context.Context) (string, error) {
	return NextNumber(ctx, s.batches.MaxBatchNumberWithPrefix, "GRN", s.now(), 3)
}

func (s *Service) generateBatchNumber(ctx context.Context) (string, error) {
	return NextNumber(ctx, s.batches.MaxBatchNumberWithPrefix, "GR", s.now(), 3)
}

// ReceiveSingle validates and receives one item into a new batch, returning
// the batch, its founding movement, and the GRN number assigned to it.
func (s *Service) ReceiveSingle(ctx context.Context, r Receipt, performedBy string) (*Result, string, error) {
	if _, err := s.items.GetByID(ctx, r.ItemID); err != nil {
		return nil, "", err
	}
	if r.LocationID != nil {
		if _, err := s.locations.GetByID(ctx, *r.LocationID); err != nil {
			return nil, "", err
		}
	}
	if !r.Quantity.IsPositive() {
		return nil, "", errors.BadRequest("quantity must be positive")
	}

	now := s.now()
	if r.ExpirationDate.Before(truncateToDay(now)) {
		return nil, "", errors.BadRequest("expiration date cannot be in the past")
	}

	grnNumber, err := s.GenerateGRNNumber(ctx)
	if err != nil {
		return nil, "", err
	}

	batch, err := s.createBatchWithRetry(ctx, r, now)
	if err != nil {
		return nil, "", err
	}

	movement, err := s.ledger.RecordMovement(ctx, batch.ID, domain.MovementReceipt, r.Quantity, performedBy, grnNumber, "goods receipt")
	if err != nil {
		return nil, "", err
	}

	return &Result{Batch: batch, Movement: movement, Warning: CheckExpirationWarning(r.ExpirationDate, now)}, grnNumber, nil
}

// ReceiveMultiple receives several item lines under a single GRN.
func (s *Service) ReceiveMultiple(ctx context.Context, receipts []Receipt, performedBy string) ([]Result, string, error) {
	if len(receipts) == 0 {
		return nil, "", errors.BadRequest("at least one receipt line is required")
	}

	now := s.now()
	grnNumber, err := s.GenerateGRNNumber(ctx)
	if err != nil {
		return nil, "", err
	}

	results := make([]Result, 0, len(receipts))
	err = s.db.WithTx(ctx, func(txCtx context.Context) error {
		for _, r := range receipts {
			if _, err := s.items.GetByID(txCtx, r.ItemID); err != nil {
				return err
			}
			if r.LocationID != nil {
				if _, err := s.locations.GetByID(txCtx, *r.LocationID); err != nil {
					return err
				}
			}
			if !r.Quantity.IsPositive() {
				return errors.BadRequest("quantity must be positive")
			}
			if r.ExpirationDate.Before(truncateToDay(now)) {
				return errors.BadRequest("expiration date cannot be in the past")
			}

			batch, err := s.createBatchWithRetry(txCtx, r, now)
			if err != nil {
				return err
			}

			movement, err := s.ledger.RecordMovement(txCtx, batch.ID, domain.MovementReceipt, r.Quantity, performedBy, grnNumber, "goods receipt")
			if err != nil {
				return err
			}

			results = append(results, Result{Batch: batch, Movement: movement, Warning: CheckExpirationWarning(r.ExpirationDate, now)})
		}
		return nil
	})
	if err != nil {
		return nil, "", err
	}

	return results, grnNumber, nil
}

// createBatchWithRetry inserts the batch, regenerating the batch number on a
// uniqueness conflict (two concurrent receipts racing for the same
// day-sequence number) rather than failing the whole receipt outright.
func (s *Service) createBatchWithRetry(ctx context.Context, r Receipt, now time.Time) (*domain.Batch, error) {
	receiptDate := now
	if r.ReceiptDate != nil {
		receiptDate = *r.ReceiptDate
	}

	batchNumber := r.BatchNumber
	var lastErr error
	for attempt := 0; attempt < maxBatchNumberRetries; attempt++ {
		if batchNumber == "" {
			generated, err := s.generateBatchNumber(ctx)
			if err != nil {
				return nil, err
			}
			batchNumber = generated
		}

		batch := &domain.Batch{
			ItemID:              r.ItemID,
			LocationID:          r.LocationID,
			BatchNumber:         batchNumber,
			SupplierBatchNumber: r.SupplierBatchNumber,
			QuantityReceived:    r.Quantity,
			QuantityAvailable:   r.Quantity,
			ReceiptDate:         receiptDate,
			ExpirationDate:      r.ExpirationDate,
			Status:              domain.BatchActive,
			Notes:               r.Notes,
		}

		err := s.batches.Create(ctx, batch)
		if err == nil {
			return batch, nil
		}
		if !errors.Is(err, errors.ErrConflict) || r.BatchNumber != "" {
			return nil, err
		}
		lastErr = err
		batchNumber = "" // force regeneration on next attempt
	}
	return nil, lastErr
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
