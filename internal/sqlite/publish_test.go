package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/rookeryhq/rookery/internal/rookery"
	"github.com/rookeryhq/rookery/migrations"
)

func newTestRepo(t *testing.T) Repo {
	t.Helper()

	db, err := sqlx.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, migrations.Run(db))

	return New(db)
}

func TestInsertAndFetchRecords(t *testing.T) {
	var (
		repo = newTestRepo(t)
		ctx  = context.Background()
	)

	err := repo.InsertRecords(ctx, []rookery.PublishRecord{
		{Title: "Post A", Platform: "devto", Status: rookery.PublishStatusOK, URL: "https://dev.to/p/a"},
		{Title: "Post A", Platform: "medium", Status: rookery.PublishStatusError, Error: "no credentials"},
	})
	require.NoError(t, err)

	records, err := repo.Records(ctx, rookery.RecordsArgs{})
	require.NoError(t, err)
	require.Len(t, records, 2)
	for _, rec := range records {
		assert.NotEmpty(t, rec.ID)
		assert.NotEmpty(t, rec.CreatedAt)
	}
}

func TestRecordsFilterByPlatform(t *testing.T) {
	var (
		repo = newTestRepo(t)
		ctx  = context.Background()
	)

	require.NoError(t, repo.InsertRecords(ctx, []rookery.PublishRecord{
		{Title: "A", Platform: "devto", Status: rookery.PublishStatusOK},
		{Title: "B", Platform: "hashnode", Status: rookery.PublishStatusOK},
	}))

	records, err := repo.Records(ctx, rookery.RecordsArgs{Platform: "hashnode"})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "B", records[0].Title)
}

func TestRecordsLimit(t *testing.T) {
	var (
		repo = newTestRepo(t)
		ctx  = context.Background()
	)

	var batch []rookery.PublishRecord
	for range 5 {
		batch = append(batch, rookery.PublishRecord{Title: "X", Platform: "devto", Status: rookery.PublishStatusOK})
	}
	require.NoError(t, repo.InsertRecords(ctx, batch))

	records, err := repo.Records(ctx, rookery.RecordsArgs{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestInsertRecordsEmpty(t *testing.T) {
	repo := newTestRepo(t)
	assert.NoError(t, repo.InsertRecords(context.Background(), nil))
}
