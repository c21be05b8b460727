// Package events publishes warehouse domain events (movements, alerts) onto
// the messaging exchange, grounded on the teacher's nil-receiver-safe,
// log-on-publish-error inventory event publisher.
package events

import (
	"context"

	"github.com/inkwms/warehouse/internal/warehouse/domain"
	"github.com/inkwms/warehouse/pkg/logger"
	"github.com/inkwms/warehouse/pkg/messaging"
)

// Publisher publishes warehouse-domain events. A nil *Publisher is safe to
// call methods on — callers that construct the warehouse without RabbitMQ
// configured can pass nil and every Publish* call becomes a no-op.
type Publisher struct {
	publisher *messaging.Publisher
	logger    *logger.Logger
}

// New wraps a messaging.Publisher bound to the warehouse events exchange.
func New(rmq *messaging.RabbitMQ, log *logger.Logger) (*Publisher, error) {
	publisher, err := messaging.NewPublisher(rmq, messaging.ExchangeWarehouseEvents, "warehouse-service", log)
	if err != nil {
		return nil, err
	}
	return &Publisher{publisher: publisher, logger: log}, nil
}

// PublishMovementRecorded publishes a MovementRecordedEvent after a
// successful Ledger.RecordMovement/AdjustTo call.
func (p *Publisher) PublishMovementRecorded(ctx context.Context, m *domain.Movement) {
	if p == nil {
		return
	}

	data := messaging.MovementRecordedEvent{
		MovementID:      m.ID,
		BatchID:         m.BatchID,
		Type:            string(m.Type),
		Quantity:        m.Quantity.String(),
		QuantityBefore:  m.QuantityBefore.String(),
		QuantityAfter:   m.QuantityAfter.String(),
		ReferenceNumber: m.ReferenceNumber,
		PerformedBy:     m.PerformedBy,
	}

	if err := p.publisher.Publish(ctx, messaging.EventMovementRecorded, data); err != nil {
		p.logger.Error().Err(err).Str("movement_id", m.ID).Msg("failed to publish movement recorded event")
	}
}

// PublishAlertGenerated publishes an AlertGeneratedEvent after a successful
// alerts.Scanner alert insert.
func (p *Publisher) PublishAlertGenerated(ctx context.Context, a *domain.Alert) {
	if p == nil {
		return
	}

	itemID := ""
	if a.ItemID != nil {
		itemID = *a.ItemID
	}
	batchID := ""
	if a.BatchID != nil {
		batchID = *a.BatchID
	}

	data := messaging.AlertGeneratedEvent{
		AlertID:  a.ID,
		Type:     string(a.Type),
		Severity: string(a.Severity),
		Message:  a.Message,
		ItemID:   itemID,
		BatchID:  batchID,
	}

	if err := p.publisher.Publish(ctx, messaging.EventAlertGenerated, data); err != nil {
		p.logger.Error().Err(err).Str("alert_id", a.ID).Msg("failed to publish alert generated event")
	}
}
