package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lestercardoz11/haven/internal/domain/enums"
)

type ReportRepo struct {
	pool *pgxpool.Pool
}

func NewReportRepo(pool *pgxpool.Pool) *ReportRepo {
	return &ReportRepo{pool: pool}
}

func (r *ReportRepo) Create(ctx context.Context, reporterID, reportedID int64, reason enums.ReportReason, details string, now time.Time) (int64, error) {
	if reporterID <= 0 || reportedID <= 0 || reporterID == reportedID {
		return 0, fmt.Errorf("invalid report payload")
	}
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}

	var id int64
	err := r.pool.QueryRow(ctx, `
INSERT INTO reports (reporter_id, reported_id, reason, details, created_at)
VALUES ($1, $2, $3, NULLIF($4, ''), $5)
RETURNING id
`, reporterID, reportedID, reason, details, now).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create report: %w", err)
	}

	return id, nil
}
