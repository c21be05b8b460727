// Package fefo implements the First-Expired-First-Out picking engine: batch
// suggestion, pick validation and expiration summaries for a single item.
package fefo

import (
	"context"
	"fmt"
	"time"

	"github.com/inkwms/warehouse/internal/warehouse/domain"
	"github.com/inkwms/warehouse/internal/warehouse/repository"
	"github.com/inkwms/warehouse/pkg/errors"
)

// WarningLevel classifies a batch by days remaining until expiration.
type WarningLevel string

const (
	LevelExpired  WarningLevel = "expired"
	LevelCritical WarningLevel = "critical"
	LevelWarning  WarningLevel = "warning"
	LevelCaution  WarningLevel = "caution"
	LevelSafe     WarningLevel = "safe"
)

// Thresholds, in days, mirroring the warehouse's FEFO classification rules.
const (
	CriticalThresholdDays = 30
	WarningThresholdDays  = 60
	CautionThresholdDays  = 90
)

// WarningLevelFor classifies a number of days until expiration.
func WarningLevelFor(daysUntilExpiration int) WarningLevel {
	switch {
	case daysUntilExpiration <= 0:
		return LevelExpired
	case daysUntilExpiration <= CriticalThresholdDays:
		return LevelCritical
	case daysUntilExpiration <= WarningThresholdDays:
		return LevelWarning
	case daysUntilExpiration <= CautionThresholdDays:
		return LevelCaution
	default:
		return LevelSafe
	}
}

// BatchSuggestion is one line of a picking plan.
type BatchSuggestion struct {
	BatchID               string          `json:"batch_id"`
	BatchNumber           string          `json:"batch_number"`
	QuantityAvailable     domain.Quantity `json:"quantity_available"`
	ExpirationDate        time.Time       `json:"expiration_date"`
	DaysUntilExpiration   int             `json:"days_until_expiration"`
	LocationID            *string         `json:"location_id,omitempty"`
	SuggestedQuantity     domain.Quantity `json:"suggested_quantity"`
	WarningLevel          WarningLevel    `json:"warning_level"`
}

// PickValidation is the result of validating a single batch pick.
type PickValidation struct {
	IsValid  bool
	BatchID  string
	Quantity domain.Quantity
	Errors   []string
	Warnings []string
}

// ExpirationBucket aggregates quantity and batch count for one warning level.
type ExpirationBucket struct {
	Quantity domain.Quantity `json:"quantity"`
	Batches  int             `json:"batches"`
}

// ExpirationSummary is the full expiration breakdown for an item.
type ExpirationSummary struct {
	TotalQuantity domain.Quantity             `json:"total_quantity"`
	TotalBatches  int                         `json:"total_batches"`
	Buckets       map[WarningLevel]*ExpirationBucket `json:"buckets"`
}

// Engine suggests and validates FEFO picks against the batch repository.
type Engine struct {
	batches *repository.BatchRepository
	now     func() time.Time
}

func NewEngine(batches *repository.BatchRepository) *Engine {
	return &Engine{batches: batches, now: time.Now}
}

// WithClock overrides the time source, for deterministic tests.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Suggest returns a picking plan that fulfills quantityNeeded by taking the
// earliest-expiring batches first, stopping once the quantity is satisfied
// or available stock is exhausted (in which case the plan under-fulfills).
func (e *Engine) Suggest(ctx context.Context, itemID string, quantityNeeded domain.Quantity, excludeExpired bool) ([]BatchSuggestion, error) {
	now := e.now()
	batches, err := e.batches.FindAvailableForPicking(ctx, itemID, excludeExpired, now)
	if err != nil {
		return nil, err
	}

	var suggestions []BatchSuggestion
	remaining := quantityNeeded

	for _, b := range batches {
		if !remaining.IsPositive() {
			break
		}
		days := daysUntil(b.ExpirationDate, now)
		pick := domain.Min(b.QuantityAvailable, remaining)
		remaining = remaining.Sub(pick)

		suggestions = append(suggestions, BatchSuggestion{
			BatchID:             b.ID,
			BatchNumber:         b.BatchNumber,
			QuantityAvailable:   b.QuantityAvailable,
			ExpirationDate:      b.ExpirationDate,
			DaysUntilExpiration: days,
			LocationID:          b.LocationID,
			SuggestedQuantity:   pick,
			WarningLevel:        WarningLevelFor(days),
		})
	}

	return suggestions, nil
}

// TotalAvailable sums quantity_available across an item's active, unexpired
// batches.
func (e *Engine) TotalAvailable(ctx context.Context, itemID string) (domain.Quantity, error) {
	batches, err := e.batches.FindAvailableForPicking(ctx, itemID, true, e.now())
	if err != nil {
		return domain.ZeroQuantity, err
	}
	total := domain.ZeroQuantity
	for _, b := range batches {
		total = total.Add(b.QuantityAvailable)
	}
	return total, nil
}

// CanFulfill reports whether an item's available stock can satisfy quantityNeeded.
func (e *Engine) CanFulfill(ctx context.Context, itemID string, quantityNeeded domain.Quantity) (bool, error) {
	total, err := e.TotalAvailable(ctx, itemID)
	if err != nil {
		return false, err
	}
	return total.GreaterThanOrEqual(quantityNeeded), nil
}

// Validate checks whether picking quantity from batchID is legal right now:
// the batch must exist, be ACTIVE, unexpired, and hold enough stock. It also
// surfaces non-fatal warnings — an earlier-expiring sibling batch being
// skipped, or the picked batch itself nearing expiration.
func (e *Engine) Validate(ctx context.Context, batchID string, quantity domain.Quantity) (*PickValidation, error) {
	now := e.now()
	result := &PickValidation{BatchID: batchID, Quantity: quantity}

	b, err := e.batches.GetByID(ctx, batchID)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			result.Errors = append(result.Errors, "batch not found")
			return result, nil
		}
		return nil, err
	}

	if b.IsExpired(now) {
		result.Errors = append(result.Errors, fmt.Sprintf("batch %s is expired", b.BatchNumber))
		return result, nil
	}

	if b.Status != domain.BatchActive {
		result.Errors = append(result.Errors, fmt.Sprintf("batch %s is not active (status: %s)", b.BatchNumber, b.Status))
		return result, nil
	}

	if quantity.GreaterThan(b.QuantityAvailable) {
		result.Errors = append(result.Errors, fmt.Sprintf(
			"insufficient quantity in batch %s: available %s, requested %s",
			b.BatchNumber, b.QuantityAvailable.String(), quantity.String(),
		))
		return result, nil
	}

	earlier, err := e.batches.FindEarlierExpiring(ctx, b.ItemID, b.ID, b.ExpirationDate, now)
	if err != nil {
		return nil, err
	}
	if len(earlier) > 0 {
		result.Warnings = append(result.Warnings, fmt.Sprintf(
			"an earlier-expiring batch %s (expires %s) is available and was skipped",
			earlier[0].BatchNumber, earlier[0].ExpirationDate.Format("2006-01-02"),
		))
	}

	days := daysUntil(b.ExpirationDate, now)
	switch WarningLevelFor(days) {
	case LevelCritical:
		result.Warnings = append(result.Warnings, fmt.Sprintf("batch expires in %d days", days))
	case LevelWarning:
		result.Warnings = append(result.Warnings, fmt.Sprintf("batch expires in %d days", days))
	}

	result.IsValid = true
	return result, nil
}

// Summary buckets an item's full batch inventory (including expired) by
// warning level.
func (e *Engine) Summary(ctx context.Context, itemID string) (*ExpirationSummary, error) {
	now := e.now()
	batches, err := e.batches.FindAvailableForPicking(ctx, itemID, false, now)
	if err != nil {
		return nil, err
	}

	summary := &ExpirationSummary{
		TotalQuantity: domain.ZeroQuantity,
		Buckets: map[WarningLevel]*ExpirationBucket{
			LevelExpired:  {Quantity: domain.ZeroQuantity},
			LevelCritical: {Quantity: domain.ZeroQuantity},
			LevelWarning:  {Quantity: domain.ZeroQuantity},
			LevelCaution:  {Quantity: domain.ZeroQuantity},
			LevelSafe:     {Quantity: domain.ZeroQuantity},
		},
	}

	for _, b := range batches {
		level := WarningLevelFor(daysUntil(b.ExpirationDate, now))
		summary.TotalQuantity = summary.TotalQuantity.Add(b.QuantityAvailable)
		summary.TotalBatches++

		bucket := summary.Buckets[level]
		bucket.Quantity = bucket.Quantity.Add(b.QuantityAvailable)
		bucket.Batches++
	}

	return summary, nil
}

func daysUntil(expiration, now time.Time) int {
	y1, m1, d1 := expiration.Date()
	y2, m2, d2 := now.Date()
	exp := time.Date(y1, m1, d1, 0, 0, 0, 0, time.UTC)
	today := time.Date(y2, m2, d2, 0, 0, 0, 0, time.UTC)
	return int(exp.Sub(today).Hours() / 24)
}
