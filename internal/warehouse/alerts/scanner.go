// Package alerts implements the periodic scan that raises expiration,
// low-stock and dead-stock alerts and auto-scraps expired batches.
package alerts

import (
	"context"
	"fmt"
	"time"

	"github.com/inkwms/warehouse/internal/warehouse/domain"
	"github.com/inkwms/warehouse/internal/warehouse/events"
	"github.com/inkwms/warehouse/internal/warehouse/ledger"
	"github.com/inkwms/warehouse/internal/warehouse/repository"
	"github.com/inkwms/warehouse/pkg/logger"
)

// Thresholds, in days, for the expiring-batch check; each maps to a
// severity per the warehouse's alerting policy.
var expiringThresholds = []struct {
	Days     int
	Severity domain.AlertSeverity
}{
	{120, domain.SeverityInfo},
	{90, domain.SeverityWarning},
	{60, domain.SeverityWarning},
	{30, domain.SeverityCritical},
}

// DefaultDeadStockDays is the default inactivity window before an item is flagged
// dead stock.
const DefaultDeadStockDays = 180

// Summary aggregates one run's alert counts, mirroring run_all_checks.
type Summary struct {
	ExpiringAlerts int `json:"expiring_alerts"`
	ExpiredBatches int `json:"expired_batches"`
	LowStockAlerts int `json:"low_stock_alerts"`
	DeadStockAlerts int `json:"dead_stock_alerts"`
	TotalNewAlerts int `json:"total_new_alerts"`
}

// Scanner runs the four alert checks against the repository layer.
type Scanner struct {
	items         *repository.ItemRepository
	batches       *repository.BatchRepository
	movements     *repository.MovementRepository
	alerts        *repository.AlertRepository
	ledger        *ledger.Ledger
	publisher     *events.Publisher
	log           *logger.Logger
	deadStockDays int
	now           func() time.Time
}

func NewScanner(items *repository.ItemRepository, batches *repository.BatchRepository, movements *repository.MovementRepository, alertRepo *repository.AlertRepository, l *ledger.Ledger, log *logger.Logger) *Scanner {
	return &Scanner{
		items:         items,
		batches:       batches,
		movements:     movements,
		alerts:        alertRepo,
		ledger:        l,
		log:           log.WithComponent("alerts.scanner"),
		deadStockDays: DefaultDeadStockDays,
		now:           time.Now,
	}
}

func (s *Scanner) WithDeadStockDays(days int) *Scanner {
	s.deadStockDays = days
	return s
}

func (s *Scanner) WithClock(now func() time.Time) *Scanner {
	s.now = now
	return s
}

// WithPublisher attaches an event publisher; every created alert is
// announced on the warehouse events exchange. A nil publisher (the
// default) makes this a no-op.
func (s *Scanner) WithPublisher(p *events.Publisher) *Scanner {
	s.publisher = p
	return s
}

// createAlert persists an alert and publishes the corresponding event.
func (s *Scanner) createAlert(ctx context.Context, alert *domain.Alert) error {
	if err := s.alerts.Create(ctx, alert); err != nil {
		return err
	}
	s.publisher.PublishAlertGenerated(ctx, alert)
	return nil
}

// RunAll runs every check in sequence, isolating failures so one check's
// error never prevents the others from running.
func (s *Scanner) RunAll(ctx context.Context) Summary {
	var summary Summary

	if n, err := s.CheckExpiringBatches(ctx); err != nil {
		s.log.Error().Err(err).Msg("expiring batch check failed")
	} else {
		summary.ExpiringAlerts = n
	}

	if n, err := s.CheckExpiredBatches(ctx); err != nil {
		s.log.Error().Err(err).Msg("expired batch check failed")
	} else {
		summary.ExpiredBatches = n
	}

	if n, err := s.CheckLowStock(ctx); err != nil {
		s.log.Error().Err(err).Msg("low stock check failed")
	} else {
		summary.LowStockAlerts = n
	}

	if n, err := s.CheckDeadStock(ctx); err != nil {
		s.log.Error().Err(err).Msg("dead stock check failed")
	} else {
		summary.DeadStockAlerts = n
	}

	summary.TotalNewAlerts = summary.ExpiringAlerts + summary.ExpiredBatches + summary.LowStockAlerts + summary.DeadStockAlerts
	return summary
}

// CheckExpiringBatches raises EXPIRATION_WARNING/EXPIRATION_CRITICAL alerts
// for ACTIVE batches crossing the 120/90/60/30-day thresholds, deduped per
// batch+severity+day.
func (s *Scanner) CheckExpiringBatches(ctx context.Context) (int, error) {
	today := truncateToDay(s.now())
	created := 0

	for _, threshold := range expiringThresholds {
		batches, err := s.batches.ListExpiringWithin(ctx, threshold.Days, today)
		if err != nil {
			return created, err
		}

		for _, b := range batches {
			exists, err := s.alerts.ExistsForBatchSince(ctx, b.ID, threshold.Severity, today)
			if err != nil {
				return created, err
			}
			if exists {
				continue
			}

			daysLeft := b.DaysUntilExpiration(today)
			alertType := domain.AlertExpirationWarning
			if daysLeft <= 30 {
				alertType = domain.AlertExpirationCritical
			}

			item, err := s.items.GetByID(ctx, b.ItemID)
			itemName := "item"
			if err == nil {
				itemName = item.Name
			}

			alert := &domain.Alert{
				Type:     alertType,
				Severity: threshold.Severity,
				BatchID:  &b.ID,
				ItemID:   &b.ItemID,
				Title:    "batch approaching expiration",
				Message: fmt.Sprintf(
					"batch %s of %s expires on %s (%d days)",
					b.BatchNumber, itemName, b.ExpirationDate.Format("2006-01-02"), daysLeft,
				),
			}
			if err := s.createAlert(ctx, alert); err != nil {
				return created, err
			}
			created++
		}
	}

	return created, nil
}

// CheckExpiredBatches scraps any ACTIVE batch past its expiration date and
// raises one EXPIRED/CRITICAL alert per batch. Per the resolved Open
// Question on auto-scrap semantics, quantity_available is left untouched.
func (s *Scanner) CheckExpiredBatches(ctx context.Context) (int, error) {
	today := truncateToDay(s.now())
	expired, err := s.batches.ListExpired(ctx, today)
	if err != nil {
		return 0, err
	}

	created := 0
	for i := range expired {
		batch := &expired[i]

		item, err := s.items.GetByID(ctx, batch.ItemID)
		itemName := "item"
		if err == nil {
			itemName = item.Name
		}

		if err := s.ledger.MarkExpiredAsScrap(ctx, batch, today.Format("2006-01-02")); err != nil {
			return created, err
		}

		alert := &domain.Alert{
			Type:     domain.AlertExpired,
			Severity: domain.SeverityCritical,
			BatchID:  &batch.ID,
			ItemID:   &batch.ItemID,
			Title:    "batch expired - marked as scrap",
			Message: fmt.Sprintf(
				"batch %s of %s expired on %s and was auto-scrapped. quantity: %s",
				batch.BatchNumber, itemName, batch.ExpirationDate.Format("2006-01-02"), batch.QuantityAvailable.String(),
			),
		}
		if err := s.createAlert(ctx, alert); err != nil {
			return created, err
		}
		created++
	}

	return created, nil
}

// CheckLowStock raises a LOW_STOCK alert for any item whose available stock
// (ACTIVE, unexpired batches) falls below its reorder point, CRITICAL if it
// has also fallen below min stock, deduped per item+day.
func (s *Scanner) CheckLowStock(ctx context.Context) (int, error) {
	today := truncateToDay(s.now())
	items, err := s.items.ListActive(ctx)
	if err != nil {
		return 0, err
	}

	created := 0
	for _, item := range items {
		available, err := s.availableStock(ctx, item.ID, today)
		if err != nil {
			return created, err
		}

		if available.GreaterThanOrEqual(item.ReorderPoint) {
			continue
		}

		exists, err := s.alerts.ExistsForItemSince(ctx, item.ID, domain.AlertLowStock, today)
		if err != nil {
			return created, err
		}
		if exists {
			continue
		}

		severity := domain.SeverityWarning
		if available.LessThan(item.MinStock) {
			severity = domain.SeverityCritical
		}

		alert := &domain.Alert{
			Type:     domain.AlertLowStock,
			Severity: severity,
			ItemID:   &item.ID,
			Title:    fmt.Sprintf("low stock: %s", item.SKU),
			Message: fmt.Sprintf(
				"stock for %s (%s) fell below reorder point. current: %s, reorder point: %s",
				item.Name, item.SKU, available.String(), item.ReorderPoint.String(),
			),
		}
		if err := s.createAlert(ctx, alert); err != nil {
			return created, err
		}
		created++
	}

	return created, nil
}

// CheckDeadStock raises a DEAD_STOCK alert for any item whose active
// batches have had no movement in deadStockDays, deduped per item+week.
func (s *Scanner) CheckDeadStock(ctx context.Context) (int, error) {
	today := truncateToDay(s.now())
	threshold := today.AddDate(0, 0, -s.deadStockDays)
	weekAgo := today.AddDate(0, 0, -7)

	items, err := s.items.ListActive(ctx)
	if err != nil {
		return 0, err
	}

	created := 0
	for _, item := range items {
		activeBatches, err := s.batches.FindAvailableForPicking(ctx, item.ID, false, today)
		if err != nil {
			return created, err
		}
		if len(activeBatches) == 0 {
			continue
		}

		lastMoved, err := s.movements.LatestTimestampForItem(ctx, item.ID)
		if err != nil {
			return created, err
		}
		if !lastMoved.Valid || !lastMoved.Time.Before(threshold) {
			continue
		}

		exists, err := s.alerts.ExistsForItemSince(ctx, item.ID, domain.AlertDeadStock, weekAgo)
		if err != nil {
			return created, err
		}
		if exists {
			continue
		}

		total := domain.ZeroQuantity
		for _, b := range activeBatches {
			total = total.Add(b.QuantityAvailable)
		}
		daysInactive := int(today.Sub(truncateToDay(lastMoved.Time)).Hours() / 24)

		alert := &domain.Alert{
			Type:     domain.AlertDeadStock,
			Severity: domain.SeverityWarning,
			ItemID:   &item.ID,
			Title:    fmt.Sprintf("dead stock: %s", item.SKU),
			Message: fmt.Sprintf(
				"item %s (%s) has not moved in %d days. quantity on hand: %s",
				item.Name, item.SKU, daysInactive, total.String(),
			),
		}
		if err := s.createAlert(ctx, alert); err != nil {
			return created, err
		}
		created++
	}

	return created, nil
}

func (s *Scanner) availableStock(ctx context.Context, itemID string, now time.Time) (domain.Quantity, error) {
	batches, err := s.batches.FindAvailableForPicking(ctx, itemID, true, now)
	if err != nil {
		return domain.ZeroQuantity, err
	}
	total := domain.ZeroQuantity
	for _, b := range batches {
		total = total.Add(b.QuantityAvailable)
	}
	return total, nil
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
