// Package ledger is the sole writer of batch quantity_available: every
// mutation goes through RecordMovement or AdjustTo inside a row-locked
// transaction and leaves a permanent Movement entry behind it.
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/inkwms/warehouse/internal/warehouse/domain"
	"github.com/inkwms/warehouse/internal/warehouse/events"
	"github.com/inkwms/warehouse/internal/warehouse/repository"
	"github.com/inkwms/warehouse/pkg/database"
	"github.com/inkwms/warehouse/pkg/errors"
)

// Ledger records movements against batches under row-level locking and
// keeps quantity_available in sync with the conservation invariant
// quantity_available = quantity_received + sum(signed movements).
type Ledger struct {
	db        *database.DB
	batches   *repository.BatchRepository
	moves     *repository.MovementRepository
	publisher *events.Publisher
}

func New(db *database.DB, batches *repository.BatchRepository, moves *repository.MovementRepository) *Ledger {
	return &Ledger{db: db, batches: batches, moves: moves}
}

// WithPublisher attaches an event publisher; every successful movement is
// announced on the warehouse events exchange after its transaction commits.
// A nil publisher (the default) makes this a no-op.
func (l *Ledger) WithPublisher(p *events.Publisher) *Ledger {
	l.publisher = p
	return l
}

// RecordMovement applies a signed quantity change to a batch and appends the
// corresponding ledger entry, all within one row-locked transaction. quantity
// must be positive; direction is determined by movementType.
func (l *Ledger) RecordMovement(ctx context.Context, batchID string, movementType domain.MovementType, quantity domain.Quantity, performedBy, referenceNumber, notes string) (*domain.Movement, error) {
	if !quantity.IsPositive() {
		return nil, errors.BadRequest("movement quantity must be positive")
	}

	var movement *domain.Movement
	err := l.db.WithTx(ctx, func(txCtx context.Context) error {
		batch, err := l.batches.GetByIDForUpdate(txCtx, batchID)
		if err != nil {
			return err
		}

		if batch.Status == domain.BatchScrap && movementType != domain.MovementReceipt {
			return errors.BadRequest(fmt.Sprintf("batch %s is scrapped, no outbound movement allowed", batch.BatchNumber))
		}

		before := batch.QuantityAvailable
		var after domain.Quantity

		switch {
		case movementType == domain.MovementReceipt:
			after = before.Add(quantity)

		case movementType == domain.MovementDispatch || movementType == domain.MovementScrap || movementType == domain.MovementTransfer:
			if quantity.GreaterThan(before) {
				return errors.InsufficientStock(before.String(), quantity.String())
			}
			after = before.Sub(quantity)

		default:
			return errors.BadRequest(fmt.Sprintf("unsupported movement type: %s", movementType))
		}

		batch.QuantityAvailable = after
		if after.IsZero() && batch.Status == domain.BatchActive {
			batch.Status = domain.BatchDepleted
		}

		if err := l.batches.UpdateQuantityAndStatus(txCtx, batch, batch.Version); err != nil {
			return err
		}

		movement = &domain.Movement{
			BatchID:         batchID,
			PerformedBy:     performedBy,
			Type:            movementType,
			Quantity:        quantity,
			QuantityBefore:  before,
			QuantityAfter:   after,
			ReferenceNumber: referenceNumber,
			Notes:           notes,
		}
		return l.moves.Create(txCtx, movement)
	})
	if err != nil {
		return nil, err
	}
	l.publisher.PublishMovementRecorded(ctx, movement)
	return movement, nil
}

// AdjustTo sets a batch's quantity_available to an absolute target (e.g.
// after a physical stock count), recording the delta as an ADJUSTMENT
// movement. The delta may be positive or negative but must not drive the
// batch negative.
func (l *Ledger) AdjustTo(ctx context.Context, batchID string, newQuantity domain.Quantity, performedBy, reason string) (*domain.Movement, error) {
	var movement *domain.Movement
	err := l.db.WithTx(ctx, func(txCtx context.Context) error {
		batch, err := l.batches.GetByIDForUpdate(txCtx, batchID)
		if err != nil {
			return err
		}

		if newQuantity.IsNegative() {
			return errors.BadRequest("adjusted quantity cannot be negative")
		}

		before := batch.QuantityAvailable
		delta := newQuantity.Sub(before)

		batch.QuantityAvailable = newQuantity
		if newQuantity.IsZero() && batch.Status == domain.BatchActive {
			batch.Status = domain.BatchDepleted
		}

		if err := l.batches.UpdateQuantityAndStatus(txCtx, batch, batch.Version); err != nil {
			return err
		}

		movement = &domain.Movement{
			BatchID:        batchID,
			PerformedBy:    performedBy,
			Type:           domain.MovementAdjustment,
			Quantity:       delta.Abs(),
			QuantityBefore: before,
			QuantityAfter:  newQuantity,
			Notes:          fmt.Sprintf("stock adjustment: %s", reason),
		}
		return l.moves.Create(txCtx, movement)
	})
	if err != nil {
		return nil, err
	}
	l.publisher.PublishMovementRecorded(ctx, movement)
	return movement, nil
}

// HistoryFilter narrows History's result set; every field is optional.
type HistoryFilter struct {
	BatchID      string
	ItemID       string
	MovementType domain.MovementType
	Start        *time.Time
	End          *time.Time
	Limit        int
}

// History returns movements matching filter, newest first, bounded by
// filter.Limit (defaulting to 100 when unset).
func (l *Ledger) History(ctx context.Context, filter HistoryFilter) ([]domain.Movement, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	return l.moves.Search(ctx, repository.MovementFilter{
		BatchID:      filter.BatchID,
		ItemID:       filter.ItemID,
		MovementType: filter.MovementType,
		Start:        filter.Start,
		End:          filter.End,
		Limit:        limit,
	})
}

// MarkExpiredAsScrap transitions the given batch to SCRAP, appending an
// explanatory note; it does not check status or expiration itself, the
// caller picks the batches. Unlike a pick, this does NOT zero
// quantity_available or emit a Movement — the batch's remaining stock is
// still physically present, merely unsellable, so the ledger's conservation
// invariant is intentionally relaxed for SCRAP status (see SPEC_FULL.md §9,
// resolution 1).
func (l *Ledger) MarkExpiredAsScrap(ctx context.Context, batch *domain.Batch, asOf string) error {
	note := batch.Notes
	if note != "" {
		note += "\n"
	}
	note += fmt.Sprintf("auto-scrapped on expiration: %s", asOf)
	batch.Status = domain.BatchScrap
	batch.Notes = note
	return l.batches.UpdateQuantityAndStatus(ctx, batch, batch.Version)
}
