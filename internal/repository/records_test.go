package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tariffhub/tariff-ingest/internal/entity"
)

func openTestDB(t *testing.T) RecordRepository {
	t.Helper()
	db, err := OpenSQLite(":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, EnsureSchema(context.Background(), db))
	return NewSQLiteRecordRepository(db, nil)
}

func TestUpsertBatchAndListByChapter(t *testing.T) {
	repo := openTestDB(t)
	ctx := context.Background()
	rate := 26.4

	n, err := repo.UpsertBatch(ctx, "schedule.txt", []entity.TariffRecord{
		{Code: "0101210000", Label: "Pure-bred breeding horses", Unit: "No."},
		{Code: "0202300000", ExtendedCode: "02023000000000", Label: "Boneless bovine cuts, frozen", Rate: &rate},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := repo.ListByChapter(ctx, "01")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "0101210000", got[0].Code)
	assert.Equal(t, "No.", got[0].Unit)
	assert.Nil(t, got[0].Rate)

	got, err = repo.ListByChapter(ctx, "02")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "02023000000000", got[0].ExtendedCode)
	require.NotNil(t, got[0].Rate)
	assert.Equal(t, 26.4, *got[0].Rate)
}

func TestUpsertBatchReplacesByCode(t *testing.T) {
	repo := openTestDB(t)
	ctx := context.Background()

	_, err := repo.UpsertBatch(ctx, "v1.txt", []entity.TariffRecord{
		{Code: "0101210000", Label: "Pure-bre"},
	})
	require.NoError(t, err)

	_, err = repo.UpsertBatch(ctx, "v2.txt", []entity.TariffRecord{
		{Code: "0101210000", Label: "Pure-bred breeding horses", Unit: "No."},
	})
	require.NoError(t, err)

	got, err := repo.ListByChapter(ctx, "01")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Pure-bred breeding horses", got[0].Label)
	assert.Equal(t, "No.", got[0].Unit)
}

func TestListByChapterEmpty(t *testing.T) {
	repo := openTestDB(t)
	got, err := repo.ListByChapter(context.Background(), "85")
	require.NoError(t, err)
	assert.Empty(t, got)
}
