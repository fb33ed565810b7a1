package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lestercardoz11/haven/internal/domain/enums"
)

type MatchRepo struct {
	pool *pgxpool.Pool
}

func NewMatchRepo(pool *pgxpool.Pool) *MatchRepo {
	return &MatchRepo{pool: pool}
}

type MatchRecord struct {
	ID            int64
	UserID        int64
	MatchedUserID int64
	Score         int
	Status        enums.MatchStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type MatchWithProfileRecord struct {
	MatchRecord
	DisplayName  string
	Denomination string
	Age          int
}

// MarkInterested materializes the directional row if needed and moves
// new -> interested. Terminal rows and rows already interested are left
// untouched; the write is conditional so concurrent calls converge.
func (r *MatchRepo) MarkInterested(ctx context.Context, tx pgx.Tx, userID, matchedUserID int64, score int, now time.Time) error {
	if userID <= 0 || matchedUserID <= 0 {
		return fmt.Errorf("invalid match payload")
	}
	if tx == nil {
		return fmt.Errorf("transaction is required")
	}

	if _, err := tx.Exec(ctx, `
INSERT INTO matches (
	user_id,
	matched_user_id,
	score,
	status,
	created_at,
	updated_at
) VALUES ($1, $2, $3, 'interested', $4, $4)
ON CONFLICT (user_id, matched_user_id) DO UPDATE SET
	status = 'interested',
	updated_at = EXCLUDED.updated_at
WHERE matches.status = 'new'
`, userID, matchedUserID, score, now); err != nil {
		return fmt.Errorf("mark match interested: %w", err)
	}

	return nil
}

// MarkPassed moves the one directional row to passed, materializing it
// lazily. The reverse row is never touched: a pass is one-directional.
func (r *MatchRepo) MarkPassed(ctx context.Context, userID, matchedUserID int64, now time.Time) error {
	if userID <= 0 || matchedUserID <= 0 {
		return fmt.Errorf("invalid match payload")
	}
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	if _, err := r.pool.Exec(ctx, `
INSERT INTO matches (
	user_id,
	matched_user_id,
	score,
	status,
	created_at,
	updated_at
) VALUES ($1, $2, 0, 'passed', $3, $3)
ON CONFLICT (user_id, matched_user_id) DO UPDATE SET
	status = 'passed',
	updated_at = EXCLUDED.updated_at
WHERE matches.status = 'new'
`, userID, matchedUserID, now); err != nil {
		return fmt.Errorf("mark match passed: %w", err)
	}

	return nil
}

// connectOrder fixes the upsert sequence for a pair: the row owned by the
// lower user id is always written first. Two transactions connecting the
// same pair from opposite directions then take the row locks in the same
// order instead of deadlocking.
func connectOrder(userA, userB int64) [2][2]int64 {
	lo, hi := userA, userB
	if lo > hi {
		lo, hi = hi, lo
	}
	return [2][2]int64{{lo, hi}, {hi, lo}}
}

// ConnectPair flips both directional rows to connected inside the caller's
// transaction, creating either row when the discovery feed never
// materialized it.
func (r *MatchRepo) ConnectPair(ctx context.Context, tx pgx.Tx, userA, userB int64, score int, now time.Time) error {
	if userA <= 0 || userB <= 0 || userA == userB {
		return fmt.Errorf("invalid match pair payload")
	}
	if tx == nil {
		return fmt.Errorf("transaction is required")
	}

	for _, pair := range connectOrder(userA, userB) {
		if _, err := tx.Exec(ctx, `
INSERT INTO matches (
	user_id,
	matched_user_id,
	score,
	status,
	created_at,
	updated_at
) VALUES ($1, $2, $3, 'connected', $4, $4)
ON CONFLICT (user_id, matched_user_id) DO UPDATE SET
	status = 'connected',
	updated_at = EXCLUDED.updated_at
`, pair[0], pair[1], score, now); err != nil {
			return fmt.Errorf("connect match pair: %w", err)
		}
	}

	return nil
}

// ListMatchedUserIDs returns every candidate id already present as a match
// row for the viewer, regardless of status. This is the exclusion set that
// keeps passed, interested and connected users out of discovery.
func (r *MatchRepo) ListMatchedUserIDs(ctx context.Context, userID int64) ([]int64, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("invalid user id")
	}
	if r.pool == nil {
		return []int64{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT matched_user_id
FROM matches
WHERE user_id = $1
`, userID)
	if err != nil {
		return nil, fmt.Errorf("list matched user ids: %w", err)
	}
	defer rows.Close()

	ids := make([]int64, 0, 64)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan matched user id: %w", err)
		}
		ids = append(ids, id)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate matched user ids: %w", rows.Err())
	}

	return ids, nil
}

func (r *MatchRepo) ListForUser(ctx context.Context, userID int64, status enums.MatchStatus, limit int) ([]MatchWithProfileRecord, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("invalid user id")
	}
	if limit <= 0 {
		limit = 100
	}
	if r.pool == nil {
		return []MatchWithProfileRecord{}, nil
	}

	sql := `
SELECT
	m.id,
	m.user_id,
	m.matched_user_id,
	m.score,
	m.status,
	m.created_at,
	m.updated_at,
	COALESCE(p.display_name, ''),
	COALESCE(p.denomination, ''),
	COALESCE(DATE_PART('year', AGE(NOW(), p.birthdate::timestamp))::int, 0)
FROM matches m
JOIN profiles p ON p.user_id = m.matched_user_id
WHERE m.user_id = $1`
	args := []any{userID}

	if status != "" {
		sql += `
	AND m.status = $2`
		args = append(args, status)
	}

	sql += fmt.Sprintf(`
ORDER BY m.created_at DESC, m.id DESC
LIMIT $%d`, len(args)+1)
	args = append(args, limit)

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	defer rows.Close()

	items := make([]MatchWithProfileRecord, 0, limit)
	for rows.Next() {
		var rec MatchWithProfileRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.UserID,
			&rec.MatchedUserID,
			&rec.Score,
			&rec.Status,
			&rec.CreatedAt,
			&rec.UpdatedAt,
			&rec.DisplayName,
			&rec.Denomination,
			&rec.Age,
		); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		items = append(items, rec)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate matches: %w", rows.Err())
	}

	return items, nil
}
