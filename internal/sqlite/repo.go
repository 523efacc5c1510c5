// Package sqlite persists the cross-posting publish history.
package sqlite

import (
	"github.com/jmoiron/sqlx"

	"github.com/rookeryhq/rookery/internal/rookery"
)

// Ensure Repo implements the PublishLog interface
var _ rookery.PublishLog = (*Repo)(nil)

type Repo struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) Repo {
	return Repo{db: db}
}
