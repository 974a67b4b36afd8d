package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/alttext-service/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS batch_runs (
	id               UUID PRIMARY KEY,
	site_url         TEXT NOT NULL,
	images_processed INTEGER NOT NULL,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS batch_results (
	run_id         UUID NOT NULL REFERENCES batch_runs(id) ON DELETE CASCADE,
	position       INTEGER NOT NULL,
	url            TEXT NOT NULL,
	selector       TEXT NOT NULL,
	element_id     TEXT NOT NULL,
	generated_text TEXT NOT NULL,
	status         TEXT NOT NULL,
	PRIMARY KEY (run_id, position)
);`

// PostgresStore keeps batch records in PostgreSQL.
type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, connStr string) (*PostgresStore, error) {
	db, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// WriteRecord saves the run and its entries in a single transaction.
func (s *PostgresStore) WriteRecord(ctx context.Context, record *domain.BatchRecord) error {
	_, err := s.SaveRecord(ctx, record)
	return err
}

// SaveRecord is WriteRecord returning the new run id.
func (s *PostgresStore) SaveRecord(ctx context.Context, record *domain.BatchRecord) (uuid.UUID, error) {
	runID := uuid.New()

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`INSERT INTO batch_runs (id, site_url, images_processed) VALUES ($1, $2, $3)`,
		runID, record.SiteURL, record.ImagesProcessed,
	); err != nil {
		return uuid.Nil, fmt.Errorf("failed to insert batch run: %w", err)
	}

	if len(record.Results) > 0 {
		batch := &pgx.Batch{}
		for i, e := range record.Results {
			batch.Queue(`INSERT INTO batch_results
				(run_id, position, url, selector, element_id, generated_text, status)
				VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				runID, i, e.URL, e.Locator, e.ElementID, e.GeneratedText, string(e.Status))
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return uuid.Nil, fmt.Errorf("failed to insert batch results: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, err
	}
	return runID, nil
}

// LoadRecord reads a stored run back, entries in insertion order.
func (s *PostgresStore) LoadRecord(ctx context.Context, runID uuid.UUID) (*domain.BatchRecord, error) {
	record := &domain.BatchRecord{Results: []domain.BatchEntry{}}
	err := s.db.QueryRow(ctx,
		`SELECT site_url, images_processed FROM batch_runs WHERE id = $1`, runID,
	).Scan(&record.SiteURL, &record.ImagesProcessed)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(ctx,
		`SELECT url, selector, element_id, generated_text, status
		 FROM batch_results WHERE run_id = $1 ORDER BY position`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var e domain.BatchEntry
		var status string
		if err := rows.Scan(&e.URL, &e.Locator, &e.ElementID, &e.GeneratedText, &status); err != nil {
			return nil, err
		}
		e.Status = domain.GenerationStatus(status)
		record.Results = append(record.Results, e)
	}
	return record, rows.Err()
}

func (s *PostgresStore) Close() {
	s.db.Close()
}
