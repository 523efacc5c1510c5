package sqlite

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/rookeryhq/rookery/internal/rookery"
)

func (r Repo) InsertRecords(ctx context.Context, records []rookery.PublishRecord) error {
	if len(records) == 0 {
		return nil
	}

	// Create id's for the records
	for i := range records {
		records[i].ID = uuid.NewString()
	}

	const q = `INSERT INTO publish_records (id, title, platform, status, url, error)
	VALUES (:id, :title, :platform, :status, :url, :error);`
	if _, err := r.db.NamedExecContext(ctx, q, records); err != nil {
		return fmt.Errorf("error inserting publish records: %s", err)
	}

	return nil
}

func (r Repo) Records(ctx context.Context, args rookery.RecordsArgs) ([]rookery.PublishRecord, error) {
	q := sq.Select("*").From("publish_records").OrderBy("created_at DESC")
	if args.Platform != "" {
		q = q.Where(sq.Eq{"platform": args.Platform})
	}
	limit := args.Limit
	if limit == 0 {
		limit = 50
	}
	q = q.Limit(limit)

	query, qArgs, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error constructing sql: %s", err)
	}

	var records []rookery.PublishRecord
	if err := r.db.SelectContext(ctx, &records, query, qArgs...); err != nil {
		return nil, fmt.Errorf("error fetching publish records: %s", err)
	}

	return records, nil
}
