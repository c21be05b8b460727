package ledger_test

import (
	"context"
	"testing"
	"time"

	"github.com/inkwms/warehouse/internal/warehouse/domain"
	"github.com/inkwms/warehouse/internal/warehouse/ledger"
	"github.com/inkwms/warehouse/internal/warehouse/repository"
	"github.com/inkwms/warehouse/pkg/database"
	"github.com/inkwms/warehouse/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var batchColumns = []string{
	"id", "item_id", "location_id", "batch_number", "supplier_batch_number",
	"quantity_received", "quantity_available", "receipt_date", "expiration_date",
	"status", "notes", "version", "created_at", "updated_at",
}

func newLedger(t *testing.T) (*ledger.Ledger, *testutil.MockDB) {
	mockDB := testutil.NewMockDB(t)
	db := &database.DB{DB: mockDB.DB}
	batches := repository.NewBatchRepository(db)
	moves := repository.NewMovementRepository(db)
	return ledger.New(db, batches, moves), mockDB
}

func TestLedger_RecordMovement_Receipt(t *testing.T) {
	l, mockDB := newLedger(t)
	defer mockDB.Close()

	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	batchRow := testutil.MockRows(batchColumns...).
		AddRow("batch-1", "item-1", nil, "GR-260101-001", "", "100.000", "20.000", now, now.AddDate(0, 0, 10), "ACTIVE", "", int64(1), now, now)

	mockDB.ExpectBegin()
	mockDB.ExpectQuery("SELECT * FROM batches WHERE id = $1 FOR UPDATE").WillReturnRows(batchRow)
	mockDB.ExpectQuery("UPDATE batches SET").
		WillReturnRows(testutil.MockRows("version", "updated_at").AddRow(int64(2), now))
	mockDB.ExpectQuery("INSERT INTO movements").
		WillReturnRows(testutil.MockRows("timestamp").AddRow(now))
	mockDB.ExpectCommit()

	movement, err := l.RecordMovement(context.Background(), "batch-1", domain.MovementReceipt, domain.QuantityFromInt(30), "user-1", "GRN-1", "goods receipt")
	require.NoError(t, err)
	assert.Equal(t, "20.000", movement.QuantityBefore.String())
	assert.Equal(t, "50.000", movement.QuantityAfter.String())
	mockDB.ExpectationsWereMet(t)
}

func TestLedger_RecordMovement_DispatchInsufficientStock(t *testing.T) {
	l, mockDB := newLedger(t)
	defer mockDB.Close()

	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	batchRow := testutil.MockRows(batchColumns...).
		AddRow("batch-1", "item-1", nil, "GR-260101-001", "", "100.000", "5.000", now, now.AddDate(0, 0, 10), "ACTIVE", "", int64(1), now, now)

	mockDB.ExpectBegin()
	mockDB.ExpectQuery("SELECT * FROM batches WHERE id = $1 FOR UPDATE").WillReturnRows(batchRow)
	mockDB.ExpectRollback()

	_, err := l.RecordMovement(context.Background(), "batch-1", domain.MovementDispatch, domain.QuantityFromInt(10), "user-1", "DN-1", "dispatch")
	require.Error(t, err)
	mockDB.ExpectationsWereMet(t)
}

func TestLedger_RecordMovement_RejectsDispatchAgainstScrapBatch(t *testing.T) {
	l, mockDB := newLedger(t)
	defer mockDB.Close()

	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	batchRow := testutil.MockRows(batchColumns...).
		AddRow("batch-1", "item-1", nil, "GR-260101-001", "", "100.000", "20.000", now, now.AddDate(0, 0, 10), "SCRAP", "", int64(1), now, now)

	mockDB.ExpectBegin()
	mockDB.ExpectQuery("SELECT * FROM batches WHERE id = $1 FOR UPDATE").WillReturnRows(batchRow)
	mockDB.ExpectRollback()

	_, err := l.RecordMovement(context.Background(), "batch-1", domain.MovementDispatch, domain.QuantityFromInt(5), "user-1", "DN-1", "dispatch")
	require.Error(t, err)
	mockDB.ExpectationsWereMet(t)
}

func TestLedger_RecordMovement_AllowsCompensatingReceiptAgainstScrapBatch(t *testing.T) {
	l, mockDB := newLedger(t)
	defer mockDB.Close()

	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	batchRow := testutil.MockRows(batchColumns...).
		AddRow("batch-1", "item-1", nil, "GR-260101-001", "", "100.000", "0.000", now, now.AddDate(0, 0, 10), "SCRAP", "", int64(1), now, now)

	mockDB.ExpectBegin()
	mockDB.ExpectQuery("SELECT * FROM batches WHERE id = $1 FOR UPDATE").WillReturnRows(batchRow)
	mockDB.ExpectQuery("UPDATE batches SET").
		WillReturnRows(testutil.MockRows("version", "updated_at").AddRow(int64(2), now))
	mockDB.ExpectQuery("INSERT INTO movements").
		WillReturnRows(testutil.MockRows("timestamp").AddRow(now))
	mockDB.ExpectCommit()

	movement, err := l.RecordMovement(context.Background(), "batch-1", domain.MovementReceipt, domain.QuantityFromInt(5), "user-1", "DN-1", "cancellation")
	require.NoError(t, err)
	assert.Equal(t, "5.000", movement.QuantityAfter.String())
}

func TestLedger_RecordMovement_RejectsNonPositiveQuantity(t *testing.T) {
	l, mockDB := newLedger(t)
	defer mockDB.Close()

	_, err := l.RecordMovement(context.Background(), "batch-1", domain.MovementReceipt, domain.ZeroQuantity, "user-1", "GRN-1", "")
	assert.Error(t, err)
}

func TestLedger_RecordMovement_DispatchDepletesBatch(t *testing.T) {
	l, mockDB := newLedger(t)
	defer mockDB.Close()

	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	batchRow := testutil.MockRows(batchColumns...).
		AddRow("batch-1", "item-1", nil, "GR-260101-001", "", "100.000", "10.000", now, now.AddDate(0, 0, 10), "ACTIVE", "", int64(1), now, now)

	mockDB.ExpectBegin()
	mockDB.ExpectQuery("SELECT * FROM batches WHERE id = $1 FOR UPDATE").WillReturnRows(batchRow)
	mockDB.ExpectQuery("UPDATE batches SET").
		WillReturnRows(testutil.MockRows("version", "updated_at").AddRow(int64(2), now))
	mockDB.ExpectQuery("INSERT INTO movements").
		WillReturnRows(testutil.MockRows("timestamp").AddRow(now))
	mockDB.ExpectCommit()

	movement, err := l.RecordMovement(context.Background(), "batch-1", domain.MovementDispatch, domain.QuantityFromInt(10), "user-1", "DN-1", "dispatch")
	require.NoError(t, err)
	assert.True(t, movement.QuantityAfter.IsZero())
}

func TestLedger_AdjustTo_RejectsNegativeTarget(t *testing.T) {
	l, mockDB := newLedger(t)
	defer mockDB.Close()

	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	batchRow := testutil.MockRows(batchColumns...).
		AddRow("batch-1", "item-1", nil, "GR-260101-001", "", "100.000", "10.000", now, now.AddDate(0, 0, 10), "ACTIVE", "", int64(1), now, now)

	mockDB.ExpectBegin()
	mockDB.ExpectQuery("SELECT * FROM batches WHERE id = $1 FOR UPDATE").WillReturnRows(batchRow)
	mockDB.ExpectRollback()

	_, err := l.AdjustTo(context.Background(), "batch-1", domain.QuantityFromInt(-1), "user-1", "count correction")
	assert.Error(t, err)
}

func TestLedger_AdjustTo_RecordsDelta(t *testing.T) {
	l, mockDB := newLedger(t)
	defer mockDB.Close()

	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	batchRow := testutil.MockRows(batchColumns...).
		AddRow("batch-1", "item-1", nil, "GR-260101-001", "", "100.000", "10.000", now, now.AddDate(0, 0, 10), "ACTIVE", "", int64(1), now, now)

	mockDB.ExpectBegin()
	mockDB.ExpectQuery("SELECT * FROM batches WHERE id = $1 FOR UPDATE").WillReturnRows(batchRow)
	mockDB.ExpectQuery("UPDATE batches SET").
		WillReturnRows(testutil.MockRows("version", "updated_at").AddRow(int64(2), now))
	mockDB.ExpectQuery("INSERT INTO movements").
		WillReturnRows(testutil.MockRows("timestamp").AddRow(now))
	mockDB.ExpectCommit()

	movement, err := l.AdjustTo(context.Background(), "batch-1", domain.QuantityFromInt(7), "user-1", "physical count")
	require.NoError(t, err)
	assert.Equal(t, domain.MovementAdjustment, movement.Type)
	assert.Equal(t, "3.000", movement.Quantity.String())
	assert.Equal(t, "7.000", movement.QuantityAfter.String())
}

func TestLedger_MarkExpiredAsScrap_LeavesQuantityUnchanged(t *testing.T) {
	l, mockDB := newLedger(t)
	defer mockDB.Close()

	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	batch := &domain.Batch{
		ID:                "batch-1",
		Status:            domain.BatchActive,
		QuantityAvailable: domain.QuantityFromInt(12),
		Version:           1,
	}

	mockDB.ExpectQuery("UPDATE batches SET").
		WillReturnRows(testutil.MockRows("version", "updated_at").AddRow(int64(2), now))

	err := l.MarkExpiredAsScrap(context.Background(), batch, "2026-06-01")
	require.NoError(t, err)
	assert.Equal(t, domain.BatchScrap, batch.Status)
	assert.Equal(t, "12.000", batch.QuantityAvailable.String())
	assert.Contains(t, batch.Notes, "auto-scrapped on expiration: 2026-06-01")
}
