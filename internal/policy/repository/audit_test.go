package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polisdoc/polisdoc-backend/internal/policy/domain"
	"github.com/polisdoc/polisdoc-backend/internal/policy/repository"
	"github.com/polisdoc/polisdoc-backend/pkg/database"
	apperrors "github.com/polisdoc/polisdoc-backend/pkg/errors"
	"github.com/polisdoc/polisdoc-backend/pkg/logger"
	"github.com/polisdoc/polisdoc-backend/pkg/testutil"
)

var columns = []string{"id", "request_id", "source", "variant", "marker", "fields_extracted", "text_length", "processing_duration_ms", "created_at"}

func newRepo(t *testing.T) (*repository.AuditRepository, *testutil.MockDB) {
	t.Helper()
	mockDB := testutil.NewMockDB(t)
	log := logger.New("repository-test", "test")
	return repository.NewAuditRepository(database.Wrap(mockDB.DB, log)), mockDB
}

func TestAuditRepository_Insert(t *testing.T) {
	repo, mockDB := newRepo(t)

	mockDB.Mock.ExpectExec("INSERT INTO policy_extractions").
		WithArgs(testutil.AnyUUID{}, "req-1", "pdf", "green_card", "green_card_phrase", sqlmock.AnyArg(), 1200, int64(15), testutil.AnyTime{}).
		WillReturnResult(sqlmock.NewResult(0, 1))

	entry := &domain.AuditEntry{
		RequestID:            "req-1",
		Source:               domain.SourcePDF,
		Variant:              domain.VariantGreenCard,
		Marker:               "green_card_phrase",
		FieldsExtracted:      []string{"price", "policy_number"},
		TextLength:           1200,
		ProcessingDurationMs: 15,
	}
	require.NoError(t, repo.Insert(context.Background(), entry))

	assert.NotEmpty(t, entry.ID)
	assert.False(t, entry.CreatedAt.IsZero())
	mockDB.ExpectationsWereMet(t)
}

func TestAuditRepository_InsertKeepsGivenID(t *testing.T) {
	repo, mockDB := newRepo(t)
	createdAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	mockDB.Mock.ExpectExec("INSERT INTO policy_extractions").
		WithArgs("3f1c1f7e-0c7a-4a43-9a53-5bb1f0d7c001", "", "text", "standard", "", sqlmock.AnyArg(), 0, int64(0), createdAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	entry := &domain.AuditEntry{
		ID:        "3f1c1f7e-0c7a-4a43-9a53-5bb1f0d7c001",
		Source:    domain.SourceText,
		Variant:   domain.VariantStandard,
		CreatedAt: createdAt,
	}
	require.NoError(t, repo.Insert(context.Background(), entry))
	mockDB.ExpectationsWereMet(t)
}

func TestAuditRepository_InsertError(t *testing.T) {
	repo, mockDB := newRepo(t)

	mockDB.Mock.ExpectExec("INSERT INTO policy_extractions").
		WillReturnError(errors.New("connection reset"))

	err := repo.Insert(context.Background(), &domain.AuditEntry{Source: domain.SourceText, Variant: domain.VariantStandard})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestAuditRepository_ListRecent(t *testing.T) {
	createdAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		limit     int
		wantLimit int
	}{
		{"default when zero", 0, repository.DefaultListLimit},
		{"default when negative", -5, repository.DefaultListLimit},
		{"explicit", 10, 10},
		{"clamped", 10000, repository.MaxListLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mockDB := newRepo(t)

			mockDB.Mock.ExpectQuery("SELECT (.+) FROM policy_extractions ORDER BY created_at DESC LIMIT").
				WithArgs(tt.wantLimit).
				WillReturnRows(testutil.MockRows(columns...).
					AddRow("id-1", "req-1", "pdf", "standard", "", "{price,ipn}", 900, 7, createdAt).
					AddRow("id-2", "", "text", "green_card", "ua_policy_number", "{}", 300, 2, createdAt))

			entries, err := repo.ListRecent(context.Background(), tt.limit)
			require.NoError(t, err)
			require.Len(t, entries, 2)

			assert.Equal(t, "id-1", entries[0].ID)
			assert.Equal(t, domain.SourcePDF, entries[0].Source)
			assert.Equal(t, []string{"price", "ipn"}, entries[0].FieldsExtracted)
			assert.Equal(t, domain.VariantGreenCard, entries[1].Variant)
			assert.Equal(t, "ua_policy_number", entries[1].Marker)
			assert.Equal(t, []string{}, entries[1].FieldsExtracted)
			mockDB.ExpectationsWereMet(t)
		})
	}
}

func TestAuditRepository_EnsureSchema(t *testing.T) {
	repo, mockDB := newRepo(t)

	mockDB.Mock.ExpectExec("CREATE TABLE IF NOT EXISTS policy_extractions").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.EnsureSchema(context.Background()))
	mockDB.ExpectationsWereMet(t)
}

func TestAuditRepository_ListRecentMissingTable(t *testing.T) {
	repo, mockDB := newRepo(t)

	mockDB.Mock.ExpectQuery("SELECT (.+) FROM policy_extractions").
		WillReturnError(&pq.Error{Code: "42P01", Message: `relation "policy_extractions" does not exist`})

	_, err := repo.ListRecent(context.Background(), 5)
	var appErr *apperrors.AppError
	require.True(t, apperrors.As(err, &appErr))
	assert.Equal(t, "SERVICE_UNAVAILABLE", appErr.Code)
}
