package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tariffhub/tariff-ingest/internal/entity"
)

// RecordRepository persists final records. The pipeline only relies on
// "upsert by code is supported"; everything else is the store's business.
type RecordRepository interface {
	UpsertBatch(ctx context.Context, document string, records []entity.TariffRecord) (int, error)
	ListByChapter(ctx context.Context, chapter string) ([]entity.TariffRecord, error)
}

const pgUpsert = `
INSERT INTO tariff_records (code, extended_code, label, unit, rate, notes, source_document, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, now())
ON CONFLICT (code) DO UPDATE SET
  extended_code = EXCLUDED.extended_code,
  label = EXCLUDED.label,
  unit = EXCLUDED.unit,
  rate = EXCLUDED.rate,
  notes = EXCLUDED.notes,
  source_document = EXCLUDED.source_document,
  updated_at = now()`

const pgListByChapter = `
SELECT code, extended_code, label, unit, rate, notes
FROM tariff_records
WHERE code LIKE $1 || '%'
ORDER BY code`

type pgRecordRepository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewRecordRepository(pool *pgxpool.Pool, logger *slog.Logger) RecordRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &pgRecordRepository{pool: pool, logger: logger}
}

func (r *pgRecordRepository) UpsertBatch(ctx context.Context, document string, records []entity.TariffRecord) (int, error) {
	start := time.Now()
	batch := &pgx.Batch{}
	for _, rec := range records {
		batch.Queue(pgUpsert,
			rec.Code, nullStr(rec.ExtendedCode), rec.Label,
			nullStr(rec.Unit), rec.Rate, nullStr(rec.Notes), document)
	}

	br := r.pool.SendBatch(ctx, batch)
	defer func() {
		_ = br.Close()
	}()
	for range records {
		if _, err := br.Exec(); err != nil {
			r.logger.Error("records.upsert.failed", "document", document, "error", err)
			return 0, err
		}
	}

	r.logger.Info("records.upsert.ok",
		"document", document, "rows", len(records),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return len(records), nil
}

func (r *pgRecordRepository) ListByChapter(ctx context.Context, chapter string) ([]entity.TariffRecord, error) {
	rows, err := r.pool.Query(ctx, pgListByChapter, chapter)
	if err != nil {
		r.logger.Error("records.list.failed", "chapter", chapter, "error", err)
		return nil, err
	}
	defer rows.Close()
	return scanRecords(rows.Next, rows.Scan, rows.Err)
}

// sqliteRecordRepository mirrors the Postgres repository for local batch
// runs over database/sql.
type sqliteRecordRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewSQLiteRecordRepository(db *sql.DB, logger *slog.Logger) RecordRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &sqliteRecordRepository{db: db, logger: logger}
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS tariff_records (
  code TEXT PRIMARY KEY,
  extended_code TEXT,
  label TEXT NOT NULL,
  unit TEXT,
  rate REAL,
  notes TEXT,
  source_document TEXT,
  updated_at TEXT NOT NULL DEFAULT (datetime('now'))
)`

const sqliteUpsert = `
INSERT INTO tariff_records (code, extended_code, label, unit, rate, notes, source_document, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, datetime('now'))
ON CONFLICT (code) DO UPDATE SET
  extended_code = excluded.extended_code,
  label = excluded.label,
  unit = excluded.unit,
  rate = excluded.rate,
  notes = excluded.notes,
  source_document = excluded.source_document,
  updated_at = datetime('now')`

const sqliteListByChapter = `
SELECT code, extended_code, label, unit, rate, notes
FROM tariff_records
WHERE code LIKE ? || '%'
ORDER BY code`

// EnsureSchema creates the records table for fresh sqlite files.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, sqliteSchema)
	return err
}

func (r *sqliteRecordRepository) UpsertBatch(ctx context.Context, document string, records []entity.TariffRecord) (int, error) {
	start := time.Now()
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stmt, err := tx.PrepareContext(ctx, sqliteUpsert)
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = stmt.Close()
	}()

	for _, rec := range records {
		if _, err := stmt.ExecContext(ctx,
			rec.Code, nullStr(rec.ExtendedCode), rec.Label,
			nullStr(rec.Unit), rec.Rate, nullStr(rec.Notes), document); err != nil {
			r.logger.Error("records.upsert.failed", "document", document, "error", err)
			return 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}

	r.logger.Info("records.upsert.ok",
		"document", document, "rows", len(records),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return len(records), nil
}

func (r *sqliteRecordRepository) ListByChapter(ctx context.Context, chapter string) ([]entity.TariffRecord, error) {
	rows, err := r.db.QueryContext(ctx, sqliteListByChapter, chapter)
	if err != nil {
		r.logger.Error("records.list.failed", "chapter", chapter, "error", err)
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()
	return scanRecords(rows.Next, rows.Scan, rows.Err)
}

// scanRecords walks a pgx or database/sql cursor; both expose the same
// Next/Scan/Err shape.
func scanRecords(next func() bool, scan func(...any) error, rowsErr func() error) ([]entity.TariffRecord, error) {
	var out []entity.TariffRecord
	for next() {
		var rec entity.TariffRecord
		var extended, unit, notes sql.NullString
		var rate sql.NullFloat64
		if err := scan(&rec.Code, &extended, &rec.Label, &unit, &rate, &notes); err != nil {
			return nil, err
		}
		rec.ExtendedCode = extended.String
		rec.Unit = unit.String
		rec.Notes = notes.String
		if rate.Valid {
			v := rate.Float64
			rec.Rate = &v
		}
		out = append(out, rec)
	}
	if err := rowsErr(); err != nil {
		return nil, err
	}
	return out, nil
}

func nullStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}
