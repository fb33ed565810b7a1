package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type BlockRepo struct {
	pool *pgxpool.Pool
}

func NewBlockRepo(pool *pgxpool.Pool) *BlockRepo {
	return &BlockRepo{pool: pool}
}

func (r *BlockRepo) Upsert(ctx context.Context, blockerID, blockedID int64, now time.Time) error {
	if blockerID <= 0 || blockedID <= 0 || blockerID == blockedID {
		return fmt.Errorf("invalid block payload")
	}
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	if _, err := r.pool.Exec(ctx, `
INSERT INTO blocks (blocker_id, blocked_id, created_at)
VALUES ($1, $2, $3)
ON CONFLICT (blocker_id, blocked_id) DO NOTHING
`, blockerID, blockedID, now); err != nil {
		return fmt.Errorf("create block: %w", err)
	}

	return nil
}

// ListBlockedUserIDs returns ids blocked in either direction. A user a
// blocked never sees the blocker again, and vice versa.
func (r *BlockRepo) ListBlockedUserIDs(ctx context.Context, userID int64) ([]int64, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("invalid user id")
	}
	if r.pool == nil {
		return []int64{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT blocked_id FROM blocks WHERE blocker_id = $1
UNION
SELECT blocker_id FROM blocks WHERE blocked_id = $1
`, userID)
	if err != nil {
		return nil, fmt.Errorf("list blocked users: %w", err)
	}
	defer rows.Close()

	ids := make([]int64, 0, 16)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan blocked user: %w", err)
		}
		ids = append(ids, id)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate blocked users: %w", rows.Err())
	}

	return ids, nil
}

func (r *BlockRepo) ExistsBetween(ctx context.Context, userA, userB int64) (bool, error) {
	if userA <= 0 || userB <= 0 {
		return false, fmt.Errorf("invalid block lookup payload")
	}
	if r.pool == nil {
		return false, nil
	}

	var exists bool
	err := r.pool.QueryRow(ctx, `
SELECT EXISTS (
	SELECT 1 FROM blocks
	WHERE (blocker_id = $1 AND blocked_id = $2)
		OR (blocker_id = $2 AND blocked_id = $1)
)
`, userA, userB).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check block: %w", err)
	}

	return exists, nil
}
