package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lestercardoz11/haven/internal/domain/model"
)

var ErrConversationNotFound = errors.New("conversation not found")

type ConversationRepo struct {
	pool *pgxpool.Pool
}

func NewConversationRepo(pool *pgxpool.Pool) *ConversationRepo {
	return &ConversationRepo{pool: pool}
}

type ConversationRecord struct {
	model.Conversation
	OtherUserID      int64
	OtherDisplayName string
	UnreadCount      int
}

// UpsertForPair creates the single conversation for an unordered pair, or
// returns the existing one. Participants are stored sorted so the unique
// index on (participant_1_id, participant_2_id) covers both orderings.
func (r *ConversationRepo) UpsertForPair(ctx context.Context, tx pgx.Tx, userA, userB int64, now time.Time) (model.Conversation, bool, error) {
	if userA <= 0 || userB <= 0 || userA == userB {
		return model.Conversation{}, false, fmt.Errorf("invalid conversation pair payload")
	}
	if tx == nil {
		return model.Conversation{}, false, fmt.Errorf("transaction is required")
	}

	p1, p2 := model.SortedPair(userA, userB)

	var conv model.Conversation
	err := tx.QueryRow(ctx, `
INSERT INTO conversations (
	participant_1_id,
	participant_2_id,
	created_at
) VALUES ($1, $2, $3)
ON CONFLICT (participant_1_id, participant_2_id) DO NOTHING
RETURNING id, participant_1_id, participant_2_id, last_message_at, COALESCE(last_message_preview, ''), created_at
`, p1, p2, now).Scan(
		&conv.ID,
		&conv.Participant1ID,
		&conv.Participant2ID,
		&conv.LastMessageAt,
		&conv.LastMessagePreview,
		&conv.CreatedAt,
	)
	if err == nil {
		return conv, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return model.Conversation{}, false, fmt.Errorf("create conversation: %w", err)
	}

	// Lost the insert race or the pair already converses: reuse it.
	err = tx.QueryRow(ctx, `
SELECT id, participant_1_id, participant_2_id, last_message_at, COALESCE(last_message_preview, ''), created_at
FROM conversations
WHERE participant_1_id = $1 AND participant_2_id = $2
`, p1, p2).Scan(
		&conv.ID,
		&conv.Participant1ID,
		&conv.Participant2ID,
		&conv.LastMessageAt,
		&conv.LastMessagePreview,
		&conv.CreatedAt,
	)
	if err != nil {
		return model.Conversation{}, false, fmt.Errorf("load existing conversation: %w", err)
	}

	return conv, false, nil
}

func (r *ConversationRepo) GetByID(ctx context.Context, id int64) (model.Conversation, error) {
	if id <= 0 {
		return model.Conversation{}, fmt.Errorf("invalid conversation id")
	}
	if r.pool == nil {
		return model.Conversation{}, fmt.Errorf("postgres pool is nil")
	}

	var conv model.Conversation
	err := r.pool.QueryRow(ctx, `
SELECT id, participant_1_id, participant_2_id, last_message_at, COALESCE(last_message_preview, ''), created_at
FROM conversations
WHERE id = $1
`, id).Scan(
		&conv.ID,
		&conv.Participant1ID,
		&conv.Participant2ID,
		&conv.LastMessageAt,
		&conv.LastMessagePreview,
		&conv.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Conversation{}, ErrConversationNotFound
		}
		return model.Conversation{}, fmt.Errorf("get conversation: %w", err)
	}

	return conv, nil
}

func (r *ConversationRepo) Touch(ctx context.Context, tx pgx.Tx, id int64, at time.Time, preview string) error {
	if id <= 0 {
		return fmt.Errorf("invalid conversation id")
	}
	if tx == nil {
		return fmt.Errorf("transaction is required")
	}

	if _, err := tx.Exec(ctx, `
UPDATE conversations
SET last_message_at = $2, last_message_preview = $3
WHERE id = $1
`, id, at, preview); err != nil {
		return fmt.Errorf("touch conversation: %w", err)
	}

	return nil
}

func (r *ConversationRepo) ListForUser(ctx context.Context, userID int64, limit int) ([]ConversationRecord, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("invalid user id")
	}
	if limit <= 0 {
		limit = 100
	}
	if r.pool == nil {
		return []ConversationRecord{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT
	c.id,
	c.participant_1_id,
	c.participant_2_id,
	c.last_message_at,
	COALESCE(c.last_message_preview, ''),
	c.created_at,
	CASE WHEN c.participant_1_id = $1 THEN c.participant_2_id ELSE c.participant_1_id END AS other_user_id,
	COALESCE(p.display_name, ''),
	(
		SELECT COUNT(*)
		FROM messages msg
		WHERE msg.conversation_id = c.id
			AND msg.receiver_id = $1
			AND msg.is_read = FALSE
	) AS unread_count
FROM conversations c
JOIN profiles p ON p.user_id = CASE WHEN c.participant_1_id = $1 THEN c.participant_2_id ELSE c.participant_1_id END
WHERE c.participant_1_id = $1 OR c.participant_2_id = $1
ORDER BY c.last_message_at DESC NULLS LAST, c.id DESC
LIMIT $2
`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer rows.Close()

	return collectConversationRecords(rows, limit)
}

// SearchByParticipantName filters the user's conversations by the other
// participant's display name, case-insensitively.
func (r *ConversationRepo) SearchByParticipantName(ctx context.Context, userID int64, query string, limit int) ([]ConversationRecord, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("invalid user id")
	}
	if strings.TrimSpace(query) == "" {
		return r.ListForUser(ctx, userID, limit)
	}
	if limit <= 0 {
		limit = 100
	}
	if r.pool == nil {
		return []ConversationRecord{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT
	c.id,
	c.participant_1_id,
	c.participant_2_id,
	c.last_message_at,
	COALESCE(c.last_message_preview, ''),
	c.created_at,
	CASE WHEN c.participant_1_id = $1 THEN c.participant_2_id ELSE c.participant_1_id END AS other_user_id,
	COALESCE(p.display_name, ''),
	(
		SELECT COUNT(*)
		FROM messages msg
		WHERE msg.conversation_id = c.id
			AND msg.receiver_id = $1
			AND msg.is_read = FALSE
	) AS unread_count
FROM conversations c
JOIN profiles p ON p.user_id = CASE WHEN c.participant_1_id = $1 THEN c.participant_2_id ELSE c.participant_1_id END
WHERE (c.participant_1_id = $1 OR c.participant_2_id = $1)
	AND p.display_name ILIKE '%' || $2 || '%'
ORDER BY c.last_message_at DESC NULLS LAST, c.id DESC
LIMIT $3
`, userID, strings.TrimSpace(query), limit)
	if err != nil {
		return nil, fmt.Errorf("search conversations: %w", err)
	}
	defer rows.Close()

	return collectConversationRecords(rows, limit)
}

func collectConversationRecords(rows pgx.Rows, limit int) ([]ConversationRecord, error) {
	items := make([]ConversationRecord, 0, limit)
	for rows.Next() {
		var rec ConversationRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.Participant1ID,
			&rec.Participant2ID,
			&rec.LastMessageAt,
			&rec.LastMessagePreview,
			&rec.CreatedAt,
			&rec.OtherUserID,
			&rec.OtherDisplayName,
			&rec.UnreadCount,
		); err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		items = append(items, rec)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate conversations: %w", rows.Err())
	}

	return items, nil
}
