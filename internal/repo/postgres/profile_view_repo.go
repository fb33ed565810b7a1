package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type ProfileViewRepo struct {
	pool *pgxpool.Pool
}

func NewProfileViewRepo(pool *pgxpool.Pool) *ProfileViewRepo {
	return &ProfileViewRepo{pool: pool}
}

func (r *ProfileViewRepo) Insert(ctx context.Context, viewerID, viewedID int64, now time.Time) error {
	if viewerID <= 0 || viewedID <= 0 || viewerID == viewedID {
		return fmt.Errorf("invalid profile view payload")
	}
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	if _, err := r.pool.Exec(ctx, `
INSERT INTO profile_views (viewer_id, viewed_id, viewed_at)
VALUES ($1, $2, $3)
`, viewerID, viewedID, now); err != nil {
		return fmt.Errorf("record profile view: %w", err)
	}

	return nil
}
