// Package repository stores the extraction audit log. Rows describe that
// an extraction happened and which fields were found, never the values.
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/polisdoc/polisdoc-backend/internal/policy/domain"
	"github.com/polisdoc/polisdoc-backend/pkg/database"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 500
)

const schema = `
CREATE TABLE IF NOT EXISTS policy_extractions (
	id                     UUID PRIMARY KEY,
	request_id             TEXT NOT NULL DEFAULT '',
	source                 TEXT NOT NULL,
	variant                TEXT NOT NULL,
	marker                 TEXT NOT NULL DEFAULT '',
	fields_extracted       TEXT[] NOT NULL DEFAULT '{}',
	text_length            INTEGER NOT NULL DEFAULT 0,
	processing_duration_ms BIGINT NOT NULL DEFAULT 0,
	created_at             TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_policy_extractions_created_at ON policy_extractions (created_at DESC);
`

const insertQuery = `INSERT INTO policy_extractions
	(id, request_id, source, variant, marker, fields_extracted, text_length, processing_duration_ms, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

const listQuery = `SELECT id, request_id, source, variant, marker, fields_extracted, text_length, processing_duration_ms, created_at
	FROM policy_extractions ORDER BY created_at DESC LIMIT $1`

// AuditRepository handles policy_extractions persistence
type AuditRepository struct {
	db *database.DB
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *database.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

type auditRow struct {
	ID                   string         `db:"id"`
	RequestID            string         `db:"request_id"`
	Source               string         `db:"source"`
	Variant              string         `db:"variant"`
	Marker               string         `db:"marker"`
	FieldsExtracted      pq.StringArray `db:"fields_extracted"`
	TextLength           int            `db:"text_length"`
	ProcessingDurationMs int64          `db:"processing_duration_ms"`
	CreatedAt            time.Time      `db:"created_at"`
}

func (r auditRow) toDomain() domain.AuditEntry {
	fields := []string(r.FieldsExtracted)
	if fields == nil {
		fields = []string{}
	}
	return domain.AuditEntry{
		ID:                   r.ID,
		RequestID:            r.RequestID,
		Source:               domain.Source(r.Source),
		Variant:              domain.Variant(r.Variant),
		Marker:               r.Marker,
		FieldsExtracted:      fields,
		TextLength:           r.TextLength,
		ProcessingDurationMs: r.ProcessingDurationMs,
		CreatedAt:            r.CreatedAt,
	}
}

// EnsureSchema creates the audit table if it does not exist
func (r *AuditRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create audit schema: %w", err)
	}
	return nil
}

// Insert stores entry, assigning ID and CreatedAt when they are unset
func (r *AuditRepository) Insert(ctx context.Context, entry *domain.AuditEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	fields := entry.FieldsExtracted
	if fields == nil {
		fields = []string{}
	}

	_, err := r.db.ExecContext(ctx, insertQuery,
		entry.ID,
		entry.RequestID,
		string(entry.Source),
		string(entry.Variant),
		entry.Marker,
		pq.Array(fields),
		entry.TextLength,
		entry.ProcessingDurationMs,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert audit entry: %w", err)
	}
	return nil
}

// ListRecent returns the newest entries first. limit is clamped to
// [1, MaxListLimit]; zero or negative selects DefaultListLimit.
func (r *AuditRepository) ListRecent(ctx context.Context, limit int) ([]domain.AuditEntry, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	var rows []auditRow
	if err := r.db.SelectContext(ctx, &rows, listQuery, limit); err != nil {
		if mapped := database.MapPQError(err); mapped != nil {
			return nil, mapped
		}
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}

	entries := make([]domain.AuditEntry, len(rows))
	for i, row := range rows {
		entries[i] = row.toDomain()
	}
	return entries, nil
}
