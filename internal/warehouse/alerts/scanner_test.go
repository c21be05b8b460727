package alerts_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/inkwms/warehouse/internal/warehouse/alerts"
	"github.com/inkwms/warehouse/internal/warehouse/ledger"
	"github.com/inkwms/warehouse/internal/warehouse/repository"
	"github.com/inkwms/warehouse/pkg/database"
	"github.com/inkwms/warehouse/pkg/logger"
	"github.com/inkwms/warehouse/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var itemColumns = []string{
	"id", "sku", "name", "description", "supplier", "unit_of_measure",
	"cost_price", "currency", "reorder_point", "min_stock", "max_stock",
	"is_active", "created_at", "updated_at",
}

var batchColumns = []string{
	"id", "item_id", "location_id", "batch_number", "supplier_batch_number",
	"quantity_received", "quantity_available", "receipt_date", "expiration_date",
	"status", "notes", "version", "created_at", "updated_at",
}

func newScanner(t *testing.T, now time.Time) (*alerts.Scanner, *testutil.MockDB) {
	mockDB := testutil.NewMockDB(t)
	db := &database.DB{DB: mockDB.DB}
	items := repository.NewItemRepository(db)
	batches := repository.NewBatchRepository(db)
	moves := repository.NewMovementRepository(db)
	alertRepo := repository.NewAlertRepository(db)
	l := ledger.New(db, batches, moves)
	log := logger.New("warehouse-test", "test")
	s := alerts.NewScanner(items, batches, moves, alertRepo, l, log).WithClock(func() time.Time { return now })
	return s, mockDB
}

func TestScanner_CheckExpiringBatches_CreatesAlertForThresholdHit(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	s, mockDB := newScanner(t, now)
	defer mockDB.Close()

	// Only the 30-day band query (expiration in 25 days) is mocked to return
	// the batch; the 120/90/60-day band queries are mocked to return no rows.
	empty := testutil.MockRows(batchColumns...)
	mockDB.ExpectQuery("SELECT * FROM batches").WillReturnRows(empty)
	mockDB.ExpectQuery("SELECT * FROM batches").WillReturnRows(empty)
	mockDB.ExpectQuery("SELECT * FROM batches").WillReturnRows(empty)

	hit := testutil.MockRows(batchColumns...).
		AddRow("batch-1", "item-1", nil, "GR-260101-001", "", "100.000", "30.000", now, now.AddDate(0, 0, 25), "ACTIVE", "", int64(1), now, now)
	mockDB.ExpectQuery("SELECT * FROM batches").WillReturnRows(hit)
	mockDB.ExpectQuery("SELECT COUNT(*) FROM alerts").WillReturnRows(testutil.MockRows("count").AddRow(int64(0)))
	itemRow := testutil.MockRows(itemColumns...).
		AddRow("item-1", "INK-001", "Cyan Ink", "", "Acme", "L", "10.00", "USD", "5.000", "2.000", "200.000", true, now, now)
	mockDB.ExpectQuery("SELECT * FROM items WHERE id = $1").WillReturnRows(itemRow)
	mockDB.ExpectQuery("INSERT INTO alerts").WillReturnRows(testutil.MockRows("created_at").AddRow(now))

	created, err := s.CheckExpiringBatches(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, created)
}

func TestScanner_CheckExpiringBatches_SkipsWhenAlreadyAlerted(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	s, mockDB := newScanner(t, now)
	defer mockDB.Close()

	empty := testutil.MockRows(batchColumns...)
	mockDB.ExpectQuery("SELECT * FROM batches").WillReturnRows(empty)
	mockDB.ExpectQuery("SELECT * FROM batches").WillReturnRows(empty)
	mockDB.ExpectQuery("SELECT * FROM batches").WillReturnRows(empty)

	hit := testutil.MockRows(batchColumns...).
		AddRow("batch-1", "item-1", nil, "GR-260101-001", "", "100.000", "30.000", now, now.AddDate(0, 0, 25), "ACTIVE", "", int64(1), now, now)
	mockDB.ExpectQuery("SELECT * FROM batches").WillReturnRows(hit)
	mockDB.ExpectQuery("SELECT COUNT(*) FROM alerts").WillReturnRows(testutil.MockRows("count").AddRow(int64(1)))

	created, err := s.CheckExpiringBatches(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, created)
}

// TestScanner_CheckExpiringBatches_SingleBatchInAllFourBands exercises the
// cumulative-range overlap directly: a batch expiring in 25 days falls
// inside every threshold band (120/90/60/30), so it is returned by all four
// ListExpiringWithin calls in one run. Dedup keys on (batch, severity), so
// it should raise exactly one alert per distinct severity it crosses
// (INFO, WARNING, CRITICAL): three total, not four duplicate entries for
// the two bands (60 and 90) that share WARNING severity.
func TestScanner_CheckExpiringBatches_SingleBatchInAllFourBands(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	s, mockDB := newScanner(t, now)
	defer mockDB.Close()

	batchRow := func() *sqlmock.Rows {
		return testutil.MockRows(batchColumns...).
			AddRow("batch-1", "item-1", nil, "GR-260101-001", "", "100.000", "30.000", now, now.AddDate(0, 0, 25), "ACTIVE", "", int64(1), now, now)
	}
	itemRow := testutil.MockRows(itemColumns...).
		AddRow("item-1", "INK-001", "Cyan Ink", "", "Acme", "L", "10.00", "USD", "5.000", "2.000", "200.000", true, now, now)

	// 120-day band: INFO, not yet alerted -> created.
	mockDB.ExpectQuery("SELECT * FROM batches").WillReturnRows(batchRow())
	mockDB.ExpectQuery("SELECT COUNT(*) FROM alerts").WillReturnRows(testutil.MockRows("count").AddRow(int64(0)))
	mockDB.ExpectQuery("SELECT * FROM items WHERE id = $1").WillReturnRows(itemRow)
	mockDB.ExpectQuery("INSERT INTO alerts").WillReturnRows(testutil.MockRows("created_at").AddRow(now))

	// 90-day band: WARNING, not yet alerted -> created.
	mockDB.ExpectQuery("SELECT * FROM batches").WillReturnRows(batchRow())
	mockDB.ExpectQuery("SELECT COUNT(*) FROM alerts").WillReturnRows(testutil.MockRows("count").AddRow(int64(0)))
	mockDB.ExpectQuery("SELECT * FROM items WHERE id = $1").WillReturnRows(itemRow)
	mockDB.ExpectQuery("INSERT INTO alerts").WillReturnRows(testutil.MockRows("created_at").AddRow(now))

	// 60-day band: WARNING again, already alerted this run -> skipped.
	mockDB.ExpectQuery("SELECT * FROM batches").WillReturnRows(batchRow())
	mockDB.ExpectQuery("SELECT COUNT(*) FROM alerts").WillReturnRows(testutil.MockRows("count").AddRow(int64(1)))

	// 30-day band: CRITICAL, not yet alerted -> created.
	mockDB.ExpectQuery("SELECT * FROM batches").WillReturnRows(batchRow())
	mockDB.ExpectQuery("SELECT COUNT(*) FROM alerts").WillReturnRows(testutil.MockRows("count").AddRow(int64(0)))
	mockDB.ExpectQuery("SELECT * FROM items WHERE id = $1").WillReturnRows(itemRow)
	mockDB.ExpectQuery("INSERT INTO alerts").WillReturnRows(testutil.MockRows("created_at").AddRow(now))

	created, err := s.CheckExpiringBatches(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, created)
}

func TestScanner_CheckLowStock_CriticalWhenBelowMinStock(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	s, mockDB := newScanner(t, now)
	defer mockDB.Close()

	itemRow := testutil.MockRows(itemColumns...).
		AddRow("item-1", "INK-001", "Cyan Ink", "", "Acme", "L", "10.00", "USD", "5.000", "2.000", "200.000", true, now, now)
	mockDB.ExpectQuery("SELECT * FROM items WHERE is_active = true").WillReturnRows(itemRow)

	batchRow := testutil.MockRows(batchColumns...).
		AddRow("batch-1", "item-1", nil, "GR-260101-001", "", "100.000", "1.000", now, now.AddDate(0, 0, 90), "ACTIVE", "", int64(1), now, now)
	mockDB.ExpectQuery("SELECT * FROM batches").WillReturnRows(batchRow)

	mockDB.ExpectQuery("SELECT COUNT(*) FROM alerts").WillReturnRows(testutil.MockRows("count").AddRow(int64(0)))
	mockDB.ExpectQuery("INSERT INTO alerts").WillReturnRows(testutil.MockRows("created_at").AddRow(now))

	created, err := s.CheckLowStock(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, created)
}

func TestScanner_CheckLowStock_SkipsWhenAboveReorderPoint(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	s, mockDB := newScanner(t, now)
	defer mockDB.Close()

	itemRow := testutil.MockRows(itemColumns...).
		AddRow("item-1", "INK-001", "Cyan Ink", "", "Acme", "L", "10.00", "USD", "5.000", "2.000", "200.000", true, now, now)
	mockDB.ExpectQuery("SELECT * FROM items WHERE is_active = true").WillReturnRows(itemRow)

	batchRow := testutil.MockRows(batchColumns...).
		AddRow("batch-1", "item-1", nil, "GR-260101-001", "", "100.000", "50.000", now, now.AddDate(0, 0, 90), "ACTIVE", "", int64(1), now, now)
	mockDB.ExpectQuery("SELECT * FROM batches").WillReturnRows(batchRow)

	created, err := s.CheckLowStock(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, created)
}
