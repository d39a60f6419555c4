package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/saturnino-fabrica-de-software/docverify/internal/domain"
)

// PgxPool is the subset of *pgxpool.Pool used by the repositories.
// pgxmock.PgxPoolIface satisfies it in tests.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// VerificationRepositoryInterface defines operations for verification report storage
type VerificationRepositoryInterface interface {
	Create(ctx context.Context, v *domain.Verification) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Verification, error)
	ListRecent(ctx context.Context, limit int) ([]*domain.Verification, error)
	CountByStatus(ctx context.Context) (map[string]int64, error)
	DeleteOlderThan(ctx context.Context, age time.Duration) (int64, error)
}
