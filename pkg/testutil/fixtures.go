package testutil

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ItemFixture represents test item master data
type ItemFixture struct {
	ID          string
	SKU         string
	Name        string
	Unit        string
	MinStock    decimal.Decimal
	ReorderQty  decimal.Decimal
	IsActive    bool
	CreatedAt   time.Time
}

// BatchFixture represents test batch data
type BatchFixture struct {
	ID                string
	ItemID            string
	BatchNumber       string
	QuantityReceived  decimal.Decimal
	QuantityAvailable decimal.Decimal
	ExpirationDate    time.Time
	ReceivedDate      time.Time
	Status            string
	Version           int
	CreatedAt         time.Time
}

// CustomerFixture represents test customer data
type CustomerFixture struct {
	ID        string
	Name      string
	Reference string
	IsActive  bool
	CreatedAt time.Time
}

// FixtureFactory creates test fixtures with sensible defaults
type FixtureFactory struct {
	sequence int
}

// NewFixtureFactory creates a new fixture factory
func NewFixtureFactory() *FixtureFactory {
	return &FixtureFactory{sequence: 0}
}

// nextSeq returns the next sequence number for unique values
func (f *FixtureFactory) nextSeq() int {
	f.sequence++
	return f.sequence
}

// Item creates an item fixture with defaults
func (f *FixtureFactory) Item(opts ...func(*ItemFixture)) ItemFixture {
	seq := f.nextSeq()

	item := ItemFixture{
		ID:         uuid.New().String(),
		SKU:        fmt.Sprintf("SKU-%04d", seq),
		Name:       fmt.Sprintf("Test Ink %d", seq),
		Unit:       "L",
		MinStock:   decimal.NewFromInt(10),
		ReorderQty: decimal.NewFromInt(50),
		IsActive:   true,
		CreatedAt:  time.Now(),
	}

	for _, opt := range opts {
		opt(&item)
	}

	return item
}

// WithSKU sets the item SKU
func WithSKU(sku string) func(*ItemFixture) {
	return func(i *ItemFixture) {
		i.SKU = sku
	}
}

// WithItemName sets the item name
func WithItemName(name string) func(*ItemFixture) {
	return func(i *ItemFixture) {
		i.Name = name
	}
}

// WithMinStock sets the item's minimum stock threshold
func WithMinStock(qty decimal.Decimal) func(*ItemFixture) {
	return func(i *ItemFixture) {
		i.MinStock = qty
	}
}

// Batch creates a batch fixture with defaults, expiring 90 days out
func (f *FixtureFactory) Batch(itemID string, opts ...func(*BatchFixture)) BatchFixture {
	seq := f.nextSeq()
	now := time.Now()

	batch := BatchFixture{
		ID:                uuid.New().String(),
		ItemID:            itemID,
		BatchNumber:       fmt.Sprintf("GR-%s-%03d", now.Format("060102"), seq),
		QuantityReceived:  decimal.NewFromInt(100),
		QuantityAvailable: decimal.NewFromInt(100),
		ExpirationDate:    now.AddDate(0, 0, 90),
		ReceivedDate:      now,
		Status:            "ACTIVE",
		Version:           1,
		CreatedAt:         now,
	}

	for _, opt := range opts {
		opt(&batch)
	}

	return batch
}

// WithExpiration sets the batch's expiration date
func WithExpiration(t time.Time) func(*BatchFixture) {
	return func(b *BatchFixture) {
		b.ExpirationDate = t
	}
}

// WithQuantityAvailable sets the batch's available quantity
func WithQuantityAvailable(qty decimal.Decimal) func(*BatchFixture) {
	return func(b *BatchFixture) {
		b.QuantityAvailable = qty
	}
}

// WithBatchStatus sets the batch status
func WithBatchStatus(status string) func(*BatchFixture) {
	return func(b *BatchFixture) {
		b.Status = status
	}
}

// Customer creates a customer fixture with defaults
func (f *FixtureFactory) Customer(opts ...func(*CustomerFixture)) CustomerFixture {
	seq := f.nextSeq()

	customer := CustomerFixture{
		ID:        uuid.New().String(),
		Name:      fmt.Sprintf("Test Customer %d", seq),
		Reference: fmt.Sprintf("CUST-%04d", seq),
		IsActive:  true,
		CreatedAt: time.Now(),
	}

	for _, opt := range opts {
		opt(&customer)
	}

	return customer
}
