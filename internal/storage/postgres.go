package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/onegateway/site-notify/internal/config"
	"github.com/onegateway/site-notify/internal/domain"
)

const pgUniqueViolation = "23505"

// PostgresStore inserts records into a Postgres table.
type PostgresStore struct {
	db    *sql.DB
	query string
}

// OpenPostgres opens cfg.DatabaseURL with the pq driver.
func OpenPostgres(cfg config.StorageConfig) (*PostgresStore, error) {
	if cfg.DatabaseURL == "" {
		return nil, errors.New("postgres storage requires database_url")
	}
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("opening postgres: %w", err)
	}
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	return NewPostgresStore(db, cfg.Table)
}

// NewPostgresStore wraps an existing handle.
func NewPostgresStore(db *sql.DB, table string) (*PostgresStore, error) {
	if err := validIdentifier(table); err != nil {
		return nil, err
	}
	return &PostgresStore{
		db: db,
		query: fmt.Sprintf(
			"INSERT INTO %s (%s) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)",
			table, insertColumns,
		),
	}, nil
}

// Insert writes rec as a new row.
func (s *PostgresStore) Insert(ctx context.Context, rec domain.EnrichedRecord) error {
	_, err := s.db.ExecContext(ctx, s.query, toRow(rec).args()...)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation {
		err = fmt.Errorf("%w: %s", ErrDuplicate, rec.ID)
	}
	return persistErr("postgres", err)
}

func (s *PostgresStore) Close() error { return s.db.Close() }
