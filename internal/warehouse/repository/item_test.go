package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/inkwms/warehouse/internal/warehouse/domain"
	"github.com/inkwms/warehouse/internal/warehouse/repository"
	"github.com/inkwms/warehouse/pkg/database"
	"github.com/inkwms/warehouse/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newItemRepo(t *testing.T) (*repository.ItemRepository, *testutil.MockDB) {
	mockDB := testutil.NewMockDB(t)
	db := &database.DB{DB: mockDB.DB}
	return repository.NewItemRepository(db), mockDB
}

func TestItemRepository_GetByID_NotFound(t *testing.T) {
	repo, mockDB := newItemRepo(t)
	defer mockDB.Close()

	mockDB.ExpectQuery("SELECT * FROM items WHERE id = $1").
		WillReturnRows(testutil.MockRows(itemColumns...))

	_, err := repo.GetByID(context.Background(), "missing")
	assert.Error(t, err)
}

func TestItemRepository_Delete_RejectsWhenBatchesExist(t *testing.T) {
	repo, mockDB := newItemRepo(t)
	defer mockDB.Close()

	mockDB.ExpectQuery("SELECT EXISTS(SELECT 1 FROM batches WHERE item_id = $1)").
		WillReturnRows(testutil.MockRows("exists").AddRow(true))

	err := repo.Delete(context.Background(), "item-1")
	require.Error(t, err)
}

func TestItemRepository_Delete_RemovesWhenNoBatches(t *testing.T) {
	repo, mockDB := newItemRepo(t)
	defer mockDB.Close()

	mockDB.ExpectQuery("SELECT EXISTS(SELECT 1 FROM batches WHERE item_id = $1)").
		WillReturnRows(testutil.MockRows("exists").AddRow(false))
	mockDB.ExpectExec("DELETE FROM items WHERE id = $1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Delete(context.Background(), "item-1")
	require.NoError(t, err)
}

var itemColumns = []string{
	"id", "sku", "name", "description", "supplier", "unit_of_measure",
	"cost_price", "currency", "reorder_point", "min_stock", "max_stock",
	"is_active", "created_at", "updated_at",
}

func TestItemRepository_Update_NotFoundWhenNoRowsAffected(t *testing.T) {
	repo, mockDB := newItemRepo(t)
	defer mockDB.Close()

	now := time.Now()
	item := &domain.Item{
		ID: "item-missing", Name: "Magenta Ink", Unit: "L",
		CostPrice: domain.Money{}, Currency: "USD",
		ReorderPoint: domain.QuantityFromInt(5), MinStock: domain.QuantityFromInt(2), MaxStock: domain.QuantityFromInt(200),
		IsActive: true, CreatedAt: now, UpdatedAt: now,
	}

	mockDB.ExpectExec("UPDATE items SET").WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), item)
	assert.Error(t, err)
}
