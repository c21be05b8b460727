package repository_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/inkwms/warehouse/internal/warehouse/repository"
	"github.com/inkwms/warehouse/pkg/database"
	"github.com/inkwms/warehouse/pkg/errors"
	"github.com/inkwms/warehouse/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var batchColumns = []string{
	"id", "item_id", "location_id", "batch_number", "supplier_batch_number",
	"quantity_received", "quantity_available", "receipt_date", "expiration_date",
	"status", "notes", "version", "created_at", "updated_at",
}

func newBatchRepo(t *testing.T) (*repository.BatchRepository, *testutil.MockDB) {
	mockDB := testutil.NewMockDB(t)
	db := &database.DB{DB: mockDB.DB}
	return repository.NewBatchRepository(db), mockDB
}

func TestBatchRepository_GetManyForUpdate_SortsIDsAscending(t *testing.T) {
	repo, mockDB := newBatchRepo(t)
	defer mockDB.Close()

	now := time.Now()
	rows := testutil.MockRows(batchColumns...).
		AddRow("batch-a", "item-1", nil, "GR-1", "", "10.000", "10.000", now, now.AddDate(0, 0, 10), "ACTIVE", "", int64(1), now, now).
		AddRow("batch-b", "item-1", nil, "GR-2", "", "10.000", "10.000", now, now.AddDate(0, 0, 20), "ACTIVE", "", int64(1), now, now)
	mockDB.ExpectQuery("SELECT * FROM batches WHERE id = ANY($1) ORDER BY id FOR UPDATE").
		WithArgs(`{"batch-a","batch-b"}`).
		WillReturnRows(rows)

	batches, err := repo.GetManyForUpdate(context.Background(), []string{"batch-b", "batch-a"})
	require.NoError(t, err)
	assert.Len(t, batches, 2)
}

func TestBatchRepository_GetManyForUpdate_EmptyIDsNoQuery(t *testing.T) {
	repo, mockDB := newBatchRepo(t)
	defer mockDB.Close()

	batches, err := repo.GetManyForUpdate(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, batches)
}

func TestBatchRepository_UpdateQuantityAndStatus_ConflictOnStaleVersion(t *testing.T) {
	repo, mockDB := newBatchRepo(t)
	defer mockDB.Close()

	now := time.Now()
	batchRow := testutil.MockRows(batchColumns...).
		AddRow("batch-1", "item-1", nil, "GR-1", "", "10.000", "5.000", now, now.AddDate(0, 0, 10), "ACTIVE", "", int64(1), now, now)
	mockDB.ExpectQuery("SELECT * FROM batches WHERE id = $1 FOR UPDATE").WillReturnRows(batchRow)
	locked, err := repo.GetByIDForUpdate(context.Background(), "batch-1")
	require.NoError(t, err)

	mockDB.ExpectQuery("UPDATE batches SET").WillReturnError(sql.ErrNoRows)

	err = repo.UpdateQuantityAndStatus(context.Background(), locked, 1)
	require.Error(t, err)
	appErr, ok := err.(*errors.AppError)
	require.True(t, ok)
	assert.Equal(t, "CONFLICT", appErr.Code)
}

func TestBatchRepository_FindEarlierExpiring_FiltersByItemAndDate(t *testing.T) {
	repo, mockDB := newBatchRepo(t)
	defer mockDB.Close()

	now := time.Now()
	rows := testutil.MockRows(batchColumns...).
		AddRow("batch-earlier", "item-1", nil, "GR-1", "", "10.000", "10.000", now, now.AddDate(0, 0, 5), "ACTIVE", "", int64(1), now, now)
	mockDB.ExpectQuery("SELECT * FROM batches").WillReturnRows(rows)

	batches, err := repo.FindEarlierExpiring(context.Background(), "item-1", "batch-2", now.AddDate(0, 0, 10), now)
	require.NoError(t, err)
	require.Len(t, batches, 1)
	assert.Equal(t, "batch-earlier", batches[0].ID)
}

func TestBatchRepository_MaxBatchNumberWithPrefix_ReturnsEmptyWhenNone(t *testing.T) {
	repo, mockDB := newBatchRepo(t)
	defer mockDB.Close()

	mockDB.ExpectQuery("SELECT MAX(batch_number) FROM batches WHERE batch_number LIKE $1").
		WillReturnRows(testutil.MockRows("max").AddRow(nil))

	max, err := repo.MaxBatchNumberWithPrefix(context.Background(), "GR-260601-%")
	require.NoError(t, err)
	assert.Equal(t, "", max)
}

