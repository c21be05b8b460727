package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/inkwms/warehouse/internal/warehouse/domain"
	"github.com/inkwms/warehouse/internal/warehouse/repository"
	"github.com/inkwms/warehouse/pkg/database"
	"github.com/inkwms/warehouse/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAlertRepo(t *testing.T) (*repository.AlertRepository, *testutil.MockDB) {
	mockDB := testutil.NewMockDB(t)
	db := &database.DB{DB: mockDB.DB}
	return repository.NewAlertRepository(db), mockDB
}

func TestAlertRepository_ExistsForBatchSince_TrueWhenCountPositive(t *testing.T) {
	repo, mockDB := newAlertRepo(t)
	defer mockDB.Close()

	mockDB.ExpectQuery("SELECT COUNT(*) FROM alerts").
		WillReturnRows(testutil.MockRows("count").AddRow(int64(2)))

	exists, err := repo.ExistsForBatchSince(context.Background(), "batch-1", domain.SeverityCritical, time.Now())
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestAlertRepository_ExistsForItemSince_FalseWhenNoneFound(t *testing.T) {
	repo, mockDB := newAlertRepo(t)
	defer mockDB.Close()

	mockDB.ExpectQuery("SELECT COUNT(*) FROM alerts").
		WillReturnRows(testutil.MockRows("count").AddRow(int64(0)))

	exists, err := repo.ExistsForItemSince(context.Background(), "item-1", domain.AlertLowStock, time.Now())
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestAlertRepository_ListUnread_ExcludesReadAndDismissed(t *testing.T) {
	repo, mockDB := newAlertRepo(t)
	defer mockDB.Close()

	now := time.Now()
	rows := testutil.MockRows(alertColumns...).
		AddRow("alert-1", "LOW_STOCK", "WARNING", nil, "item-1", "low stock", "msg", false, false, now)
	mockDB.ExpectQuery("SELECT * FROM alerts WHERE is_read = false AND is_dismissed = false").
		WillReturnRows(rows)

	alerts, err := repo.ListUnread(context.Background())
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, domain.AlertLowStock, alerts[0].Type)
}

var alertColumns = []string{
	"id", "alert_type", "severity", "batch_id", "item_id", "title", "message",
	"is_read", "is_dismissed", "created_at",
}
