package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lestercardoz11/haven/internal/domain/enums"
	"github.com/lestercardoz11/haven/internal/domain/model"
)

var (
	ErrDuplicateInterest  = errors.New("interest already exists for pair")
	ErrInterestNotFound   = errors.New("interest not found")
	ErrInterestNotPending = errors.New("interest is not pending")
)

type InterestRepo struct {
	pool *pgxpool.Pool
}

func NewInterestRepo(pool *pgxpool.Pool) *InterestRepo {
	return &InterestRepo{pool: pool}
}

// Create inserts the interest or fails with ErrDuplicateInterest. The unique
// constraint on (sender_id, receiver_id) is the write-time guard: two
// concurrent sends race on the index, not on a prior read.
func (r *InterestRepo) Create(ctx context.Context, tx pgx.Tx, senderID, receiverID int64, message string, now time.Time) (model.Interest, error) {
	if senderID <= 0 || receiverID <= 0 {
		return model.Interest{}, fmt.Errorf("invalid interest payload")
	}
	if tx == nil {
		return model.Interest{}, fmt.Errorf("transaction is required")
	}

	var interest model.Interest
	err := tx.QueryRow(ctx, `
INSERT INTO interests (
	sender_id,
	receiver_id,
	status,
	message,
	sent_at
) VALUES ($1, $2, 'pending', $3, $4)
ON CONFLICT (sender_id, receiver_id) DO NOTHING
RETURNING id, sender_id, receiver_id, status, COALESCE(message, ''), sent_at
`, senderID, receiverID, message, now).Scan(
		&interest.ID,
		&interest.SenderID,
		&interest.ReceiverID,
		&interest.Status,
		&interest.Message,
		&interest.SentAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Interest{}, ErrDuplicateInterest
		}
		return model.Interest{}, fmt.Errorf("create interest: %w", err)
	}

	return interest, nil
}

func (r *InterestRepo) GetByID(ctx context.Context, id int64) (model.Interest, error) {
	if id <= 0 {
		return model.Interest{}, fmt.Errorf("invalid interest id")
	}
	if r.pool == nil {
		return model.Interest{}, fmt.Errorf("postgres pool is nil")
	}

	var interest model.Interest
	err := r.pool.QueryRow(ctx, `
SELECT id, sender_id, receiver_id, status, COALESCE(message, ''), sent_at, responded_at
FROM interests
WHERE id = $1
`, id).Scan(
		&interest.ID,
		&interest.SenderID,
		&interest.ReceiverID,
		&interest.Status,
		&interest.Message,
		&interest.SentAt,
		&interest.RespondedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Interest{}, ErrInterestNotFound
		}
		return model.Interest{}, fmt.Errorf("get interest: %w", err)
	}

	return interest, nil
}

// ResolvePending is the single effective transition for an interest: the
// conditional UPDATE succeeds for exactly one caller, every later attempt
// sees ErrInterestNotPending.
func (r *InterestRepo) ResolvePending(ctx context.Context, tx pgx.Tx, id int64, status enums.InterestStatus, now time.Time) (model.Interest, error) {
	if id <= 0 {
		return model.Interest{}, fmt.Errorf("invalid interest id")
	}
	if !status.Resolved() {
		return model.Interest{}, fmt.Errorf("invalid resolve status %q", status)
	}
	if tx == nil {
		return model.Interest{}, fmt.Errorf("transaction is required")
	}

	var interest model.Interest
	err := tx.QueryRow(ctx, `
UPDATE interests
SET status = $2, responded_at = $3
WHERE id = $1 AND status = 'pending'
RETURNING id, sender_id, receiver_id, status, COALESCE(message, ''), sent_at, responded_at
`, id, status, now).Scan(
		&interest.ID,
		&interest.SenderID,
		&interest.ReceiverID,
		&interest.Status,
		&interest.Message,
		&interest.SentAt,
		&interest.RespondedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Interest{}, ErrInterestNotPending
		}
		return model.Interest{}, fmt.Errorf("resolve interest: %w", err)
	}

	return interest, nil
}
