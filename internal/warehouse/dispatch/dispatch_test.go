package dispatch_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/inkwms/warehouse/internal/warehouse/dispatch"
	"github.com/inkwms/warehouse/internal/warehouse/domain"
	"github.com/inkwms/warehouse/internal/warehouse/ledger"
	"github.com/inkwms/warehouse/internal/warehouse/repository"
	"github.com/inkwms/warehouse/pkg/database"
	"github.com/inkwms/warehouse/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var customerColumns = []string{
	"id", "name", "email", "phone", "address", "contact_person",
	"is_active", "is_vmi_customer", "created_at",
}

var batchColumns = []string{
	"id", "item_id", "location_id", "batch_number", "supplier_batch_number",
	"quantity_received", "quantity_available", "receipt_date", "expiration_date",
	"status", "notes", "version", "created_at", "updated_at",
}

var deliveryNoteColumns = []string{
	"id", "delivery_note_number", "customer_id", "created_by", "status",
	"issue_date", "delivery_date", "is_consignment", "notes", "created_at", "updated_at",
}

func newDispatchService(t *testing.T, now time.Time) (*dispatch.Service, *testutil.MockDB) {
	mockDB := testutil.NewMockDB(t)
	db := &database.DB{DB: mockDB.DB}
	notes := repository.NewDeliveryNoteRepository(db)
	batches := repository.NewBatchRepository(db)
	customers := repository.NewCustomerRepository(db)
	moves := repository.NewMovementRepository(db)
	l := ledger.New(db, batches, moves)
	svc := dispatch.NewService(db, notes, batches, customers, l).WithClock(func() time.Time { return now })
	return svc, mockDB
}

func TestService_Create_PicksStockPerLineItem(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	svc, mockDB := newDispatchService(t, now)
	defer mockDB.Close()

	customerRow := testutil.MockRows(customerColumns...).
		AddRow("cust-1", "Acme Print Shop", "", "", "", "", true, false, now)
	mockDB.ExpectQuery("SELECT * FROM customers WHERE id = $1").WillReturnRows(customerRow)

	mockDB.ExpectQuery("SELECT MAX(delivery_note_number) FROM delivery_notes WHERE delivery_note_number LIKE $1").
		WillReturnRows(testutil.MockRows("max").AddRow(""))

	batchRow := testutil.MockRows(batchColumns...).
		AddRow("batch-1", "item-1", nil, "GR-260101-001", "", "100.000", "20.000", now, now.AddDate(0, 0, 10), "ACTIVE", "", int64(1), now, now)
	mockDB.ExpectQuery("SELECT * FROM batches WHERE id = $1").WillReturnRows(batchRow)

	mockDB.ExpectQuery("INSERT INTO delivery_notes").
		WillReturnRows(testutil.MockRows("created_at", "updated_at").AddRow(now, now))
	mockDB.ExpectExec("INSERT INTO delivery_note_items").WillReturnResult(sqlmock.NewResult(0, 1))

	mockDB.ExpectBegin()
	batchForUpdate := testutil.MockRows(batchColumns...).
		AddRow("batch-1", "item-1", nil, "GR-260101-001", "", "100.000", "20.000", now, now.AddDate(0, 0, 10), "ACTIVE", "", int64(1), now, now)
	mockDB.ExpectQuery("SELECT * FROM batches WHERE id = $1 FOR UPDATE").WillReturnRows(batchForUpdate)
	mockDB.ExpectQuery("UPDATE batches SET").
		WillReturnRows(testutil.MockRows("version", "updated_at").AddRow(int64(2), now))
	mockDB.ExpectQuery("INSERT INTO movements").
		WillReturnRows(testutil.MockRows("timestamp").AddRow(now))
	mockDB.ExpectCommit()

	dn, err := svc.Create(context.Background(), "cust-1", []dispatch.LineItem{
		{BatchID: "batch-1", Quantity: domain.QuantityFromInt(10)},
	}, "user-1", false, "")
	require.NoError(t, err)
	assert.Equal(t, "DN-260601-0001", dn.Number)
}

func TestService_Create_RejectsPickFromScrapBatch(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	svc, mockDB := newDispatchService(t, now)
	defer mockDB.Close()

	customerRow := testutil.MockRows(customerColumns...).
		AddRow("cust-1", "Acme Print Shop", "", "", "", "", true, false, now)
	mockDB.ExpectQuery("SELECT * FROM customers WHERE id = $1").WillReturnRows(customerRow)

	mockDB.ExpectQuery("SELECT MAX(delivery_note_number) FROM delivery_notes WHERE delivery_note_number LIKE $1").
		WillReturnRows(testutil.MockRows("max").AddRow(""))

	batchRow := testutil.MockRows(batchColumns...).
		AddRow("batch-1", "item-1", nil, "GR-260101-001", "", "100.000", "20.000", now, now.AddDate(0, 0, 10), "SCRAP", "", int64(1), now, now)
	mockDB.ExpectQuery("SELECT * FROM batches WHERE id = $1").WillReturnRows(batchRow)

	mockDB.ExpectQuery("INSERT INTO delivery_notes").
		WillReturnRows(testutil.MockRows("created_at", "updated_at").AddRow(now, now))
	mockDB.ExpectExec("INSERT INTO delivery_note_items").WillReturnResult(sqlmock.NewResult(0, 1))

	mockDB.ExpectBegin()
	batchForUpdate := testutil.MockRows(batchColumns...).
		AddRow("batch-1", "item-1", nil, "GR-260101-001", "", "100.000", "20.000", now, now.AddDate(0, 0, 10), "SCRAP", "", int64(1), now, now)
	mockDB.ExpectQuery("SELECT * FROM batches WHERE id = $1 FOR UPDATE").WillReturnRows(batchForUpdate)
	mockDB.ExpectRollback()

	_, err := svc.Create(context.Background(), "cust-1", []dispatch.LineItem{
		{BatchID: "batch-1", Quantity: domain.QuantityFromInt(10)},
	}, "user-1", false, "")
	assert.Error(t, err)
}

func TestService_Create_RejectsEmptyItems(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	svc, mockDB := newDispatchService(t, now)
	defer mockDB.Close()

	_, err := svc.Create(context.Background(), "cust-1", nil, "user-1", false, "")
	assert.Error(t, err)
}

func TestService_Issue_RejectsIllegalTransition(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	svc, mockDB := newDispatchService(t, now)
	defer mockDB.Close()

	dnRow := testutil.MockRows(deliveryNoteColumns...).
		AddRow("dn-1", "DN-260601-0001", "cust-1", "user-1", "INVOICED", nil, nil, false, "", now, now)
	mockDB.ExpectQuery("SELECT * FROM delivery_notes WHERE id = $1").WillReturnRows(dnRow)
	mockDB.ExpectQuery("SELECT * FROM delivery_note_items WHERE delivery_note_id = $1").
		WillReturnRows(testutil.MockRows("id", "delivery_note_id", "item_id", "batch_id", "quantity"))

	_, err := svc.Issue(context.Background(), "dn-1")
	assert.Error(t, err)
}

func TestService_Cancel_RestoresStockWithCompensatingReceipt(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	svc, mockDB := newDispatchService(t, now)
	defer mockDB.Close()

	dnRow := testutil.MockRows(deliveryNoteColumns...).
		AddRow("dn-1", "DN-260601-0001", "cust-1", "user-1", "ISSUED", now, nil, false, "", now, now)
	mockDB.ExpectQuery("SELECT * FROM delivery_notes WHERE id = $1").WillReturnRows(dnRow)
	mockDB.ExpectQuery("SELECT * FROM delivery_note_items WHERE delivery_note_id = $1").
		WillReturnRows(testutil.MockRows("id", "delivery_note_id", "item_id", "batch_id", "quantity").
			AddRow("line-1", "dn-1", "item-1", "batch-1", "10.000"))

	mockDB.ExpectBegin()
	batchForUpdate := testutil.MockRows(batchColumns...).
		AddRow("batch-1", "item-1", nil, "GR-260101-001", "", "100.000", "10.000", now, now.AddDate(0, 0, 10), "ACTIVE", "", int64(1), now, now)
	mockDB.ExpectQuery("SELECT * FROM batches WHERE id = $1 FOR UPDATE").WillReturnRows(batchForUpdate)
	mockDB.ExpectQuery("UPDATE batches SET").
		WillReturnRows(testutil.MockRows("version", "updated_at").AddRow(int64(2), now))
	mockDB.ExpectQuery("INSERT INTO movements").
		WillReturnRows(testutil.MockRows("timestamp").AddRow(now))
	mockDB.ExpectCommit()

	mockDB.ExpectExec("UPDATE delivery_notes SET").WillReturnResult(sqlmock.NewResult(0, 1))
	dnAfter := testutil.MockRows(deliveryNoteColumns...).
		AddRow("dn-1", "DN-260601-0001", "cust-1", "user-1", "CANCELLED", now, nil, false, "", now, now)
	mockDB.ExpectQuery("SELECT * FROM delivery_notes WHERE id = $1").WillReturnRows(dnAfter)
	mockDB.ExpectQuery("SELECT * FROM delivery_note_items WHERE delivery_note_id = $1").
		WillReturnRows(testutil.MockRows("id", "delivery_note_id", "item_id", "batch_id", "quantity").
			AddRow("line-1", "dn-1", "item-1", "batch-1", "10.000"))

	dn, err := svc.Cancel(context.Background(), "dn-1", "user-1")
	require.NoError(t, err)
	assert.Equal(t, domain.DeliveryNoteCancelled, dn.Status)
}
