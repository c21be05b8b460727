package domain

import "time"

// AlertType classifies why an Alert was raised (spec §2, §6).
type AlertType string

const (
	AlertExpirationWarning  AlertType = "EXPIRATION_WARNING"
	AlertExpirationCritical AlertType = "EXPIRATION_CRITICAL"
	AlertExpired            AlertType = "EXPIRED"
	AlertLowStock           AlertType = "LOW_STOCK"
	AlertDeadStock          AlertType = "DEAD_STOCK"
)

// AlertSeverity is the operator-facing urgency level.
type AlertSeverity string

const (
	SeverityInfo     AlertSeverity = "INFO"
	SeverityWarning  AlertSeverity = "WARNING"
	SeverityCritical AlertSeverity = "CRITICAL"
)

// Alert is a system-raised notification surfaced to warehouse operators.
type Alert struct {
	ID           string        `db:"id" json:"id"`
	Type         AlertType     `db:"alert_type" json:"alert_type"`
	Severity     AlertSeverity `db:"severity" json:"severity"`
	BatchID      *string       `db:"batch_id" json:"batch_id,omitempty"`
	ItemID       *string       `db:"item_id" json:"item_id,omitempty"`
	Title        string        `db:"title" json:"title"`
	Message      string        `db:"message" json:"message"`
	IsRead       bool          `db:"is_read" json:"is_read"`
	IsDismissed  bool          `db:"is_dismissed" json:"is_dismissed"`
	CreatedAt    time.Time     `db:"created_at" json:"created_at"`
}
