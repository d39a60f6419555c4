package repository

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/docverify/internal/domain"
)

func sampleVerification() *domain.Verification {
	return &domain.Verification{
		Country:            "USA",
		DocumentType:       "passport",
		Status:             domain.StatusApproved,
		DocumentConfidence: 85,
		FaceConfidence:     90,
		MRZ: &domain.MRZRecord{
			Format:         domain.MRZFormatTD3,
			LastName:       "DOE",
			DocumentNumber: "X12345678",
		},
		LatencyMs: 1003,
	}
}

func TestVerificationRepository_Create(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name      string
		mockSetup func(mock pgxmock.PgxPoolIface)
		wantErr   error
	}{
		{
			name: "successful creation",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`INSERT INTO verifications`).
					WithArgs(pgxmock.AnyArg(), "USA", "passport", "approved", 85.0, 90.0, pgxmock.AnyArg()).
					WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(now))
			},
		},
		{
			name: "duplicate id",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`INSERT INTO verifications`).
					WithArgs(pgxmock.AnyArg(), "USA", "passport", "approved", 85.0, 90.0, pgxmock.AnyArg()).
					WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value"})
			},
			wantErr: ErrDuplicateVerification,
		},
		{
			name: "database error",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`INSERT INTO verifications`).
					WithArgs(pgxmock.AnyArg(), "USA", "passport", "approved", 85.0, 90.0, pgxmock.AnyArg()).
					WillReturnError(errors.New("connection reset"))
			},
			wantErr: errors.New("create verification"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			tt.mockSetup(mock)

			repo := NewVerificationRepository(mock)
			v := sampleVerification()
			err = repo.Create(context.Background(), v)

			if tt.wantErr != nil {
				require.Error(t, err)
				if errors.Is(tt.wantErr, ErrDuplicateVerification) {
					assert.ErrorIs(t, err, ErrDuplicateVerification)
				} else {
					assert.Contains(t, err.Error(), tt.wantErr.Error())
				}
			} else {
				require.NoError(t, err)
				assert.NotEqual(t, uuid.Nil, v.ID, "id is assigned before insert")
				assert.Equal(t, now, v.CreatedAt)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestVerificationRepository_GetByID(t *testing.T) {
	id := uuid.New()
	now := time.Now().UTC()

	report, err := json.Marshal(sampleVerification())
	require.NoError(t, err)

	tests := []struct {
		name      string
		mockSetup func(mock pgxmock.PgxPoolIface)
		wantErr   error
	}{
		{
			name: "found",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT id, report, created_at FROM verifications WHERE id = \$1`).
					WithArgs(id).
					WillReturnRows(pgxmock.NewRows([]string{"id", "report", "created_at"}).AddRow(id, report, now))
			},
		},
		{
			name: "not found",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT id, report, created_at FROM verifications WHERE id = \$1`).
					WithArgs(id).
					WillReturnError(pgx.ErrNoRows)
			},
			wantErr: domain.ErrVerificationNotFound,
		},
		{
			name: "corrupt report",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT id, report, created_at FROM verifications WHERE id = \$1`).
					WithArgs(id).
					WillReturnRows(pgxmock.NewRows([]string{"id", "report", "created_at"}).AddRow(id, []byte("{"), now))
			},
			wantErr: errors.New("decode verification report"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			tt.mockSetup(mock)

			got, err := NewVerificationRepository(mock).GetByID(context.Background(), id)

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.Nil(t, got)
				if errors.Is(tt.wantErr, domain.ErrVerificationNotFound) {
					assert.ErrorIs(t, err, domain.ErrVerificationNotFound)
				} else {
					assert.Contains(t, err.Error(), tt.wantErr.Error())
				}
			} else {
				require.NoError(t, err)
				require.NotNil(t, got)
				assert.Equal(t, id, got.ID)
				assert.Equal(t, now, got.CreatedAt)
				assert.Equal(t, domain.StatusApproved, got.Status)
				require.NotNil(t, got.MRZ)
				assert.Equal(t, "DOE", got.MRZ.LastName)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestVerificationRepository_ListRecent(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	first, second := sampleVerification(), sampleVerification()
	second.Status = domain.StatusReview
	r1, _ := json.Marshal(first)
	r2, _ := json.Marshal(second)
	now := time.Now()

	mock.ExpectQuery(`SELECT id, report, created_at FROM verifications ORDER BY created_at DESC LIMIT \$1`).
		WithArgs(maxListLimit).
		WillReturnRows(pgxmock.NewRows([]string{"id", "report", "created_at"}).
			AddRow(uuid.New(), r2, now).
			AddRow(uuid.New(), r1, now.Add(-time.Minute)))

	got, err := NewVerificationRepository(mock).ListRecent(context.Background(), 500)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, domain.StatusReview, got[0].Status)
	assert.Equal(t, domain.StatusApproved, got[1].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVerificationRepository_ListRecent_Empty(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT id, report, created_at FROM verifications`).
		WithArgs(defaultListLimit).
		WillReturnRows(pgxmock.NewRows([]string{"id", "report", "created_at"}))

	got, err := NewVerificationRepository(mock).ListRecent(context.Background(), 0)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestVerificationRepository_CountByStatus(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT status, COUNT\(\*\) FROM verifications GROUP BY status`).
		WillReturnRows(pgxmock.NewRows([]string{"status", "count"}).
			AddRow("approved", int64(7)).
			AddRow("rejected", int64(2)))

	counts, err := NewVerificationRepository(mock).CountByStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"approved": 7, "rejected": 2}, counts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVerificationRepository_DeleteOlderThan(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(`DELETE FROM verifications WHERE created_at < \$1`).
		WithArgs(pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))

	deleted, err := NewVerificationRepository(mock).DeleteOlderThan(context.Background(), 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsUniqueViolation(t *testing.T) {
	assert.False(t, isUniqueViolation(nil))
	assert.True(t, isUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.True(t, isUniqueViolation(errors.New("ERROR: duplicate key value violates unique constraint")))
	assert.False(t, isUniqueViolation(errors.New("timeout")))
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, defaultListLimit, clampLimit(-1))
	assert.Equal(t, defaultListLimit, clampLimit(0))
	assert.Equal(t, 5, clampLimit(5))
	assert.Equal(t, maxListLimit, clampLimit(maxListLimit+1))
}
