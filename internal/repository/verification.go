package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/saturnino-fabrica-de-software/docverify/internal/domain"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// ErrDuplicateVerification is returned when a report with the same id exists
var ErrDuplicateVerification = errors.New("verification already exists")

// VerificationRepository stores verification reports. The queryable columns
// are denormalized and the full report lives in a JSONB column.
type VerificationRepository struct {
	pool PgxPool
}

var _ VerificationRepositoryInterface = (*VerificationRepository)(nil)

func NewVerificationRepository(pool PgxPool) *VerificationRepository {
	return &VerificationRepository{pool: pool}
}

func (r *VerificationRepository) Create(ctx context.Context, v *domain.Verification) error {
	query := `
		INSERT INTO verifications (id, country, document_type, status, document_confidence, face_confidence, report, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		RETURNING created_at
	`

	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}

	report, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode verification report: %w", err)
	}

	err = r.pool.QueryRow(ctx, query,
		v.ID,
		v.Country,
		v.DocumentType,
		string(v.Status),
		v.DocumentConfidence,
		v.FaceConfidence,
		report,
	).Scan(&v.CreatedAt)

	if isUniqueViolation(err) {
		return fmt.Errorf("create verification %s: %w", v.ID, ErrDuplicateVerification)
	}
	if err != nil {
		return fmt.Errorf("create verification: %w", err)
	}

	return nil
}

func (r *VerificationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Verification, error) {
	query := `
		SELECT id, report, created_at
		FROM verifications
		WHERE id = $1
	`

	v, err := scanVerification(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrVerificationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get verification by id: %w", err)
	}

	return v, nil
}

// ListRecent returns the newest reports first
func (r *VerificationRepository) ListRecent(ctx context.Context, limit int) ([]*domain.Verification, error) {
	query := `
		SELECT id, report, created_at
		FROM verifications
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list verifications: %w", err)
	}
	defer rows.Close()

	verifications := make([]*domain.Verification, 0)
	for rows.Next() {
		v, err := scanVerification(rows)
		if err != nil {
			return nil, fmt.Errorf("scan verification: %w", err)
		}
		verifications = append(verifications, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate verifications: %w", err)
	}

	return verifications, nil
}

func (r *VerificationRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	query := `
		SELECT status, COUNT(*)
		FROM verifications
		GROUP BY status
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("count verifications: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var status string
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan verification count: %w", err)
		}
		counts[status] = n
	}

	return counts, rows.Err()
}

// DeleteOlderThan removes reports created before now minus age
func (r *VerificationRepository) DeleteOlderThan(ctx context.Context, age time.Duration) (int64, error) {
	query := `DELETE FROM verifications WHERE created_at < $1`

	tag, err := r.pool.Exec(ctx, query, time.Now().Add(-age))
	if err != nil {
		return 0, fmt.Errorf("delete old verifications: %w", err)
	}

	return tag.RowsAffected(), nil
}

func scanVerification(row pgx.Row) (*domain.Verification, error) {
	var (
		id        uuid.UUID
		report    []byte
		createdAt time.Time
	)
	if err := row.Scan(&id, &report, &createdAt); err != nil {
		return nil, err
	}

	var v domain.Verification
	if err := json.Unmarshal(report, &v); err != nil {
		return nil, fmt.Errorf("decode verification report: %w", err)
	}
	v.ID = id
	v.CreatedAt = createdAt

	return &v, nil
}
