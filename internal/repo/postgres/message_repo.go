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

var ErrMessageNotFound = errors.New("message not found")

type MessageRepo struct {
	pool *pgxpool.Pool
}

func NewMessageRepo(pool *pgxpool.Pool) *MessageRepo {
	return &MessageRepo{pool: pool}
}

const messageColumns = `
	id,
	conversation_id,
	sender_id,
	receiver_id,
	COALESCE(text, ''),
	type,
	COALESCE(image_key, ''),
	is_read,
	read_at,
	created_at`

func (r *MessageRepo) Insert(ctx context.Context, tx pgx.Tx, msg model.Message) (model.Message, error) {
	if msg.ConversationID <= 0 || msg.SenderID <= 0 || msg.ReceiverID <= 0 {
		return model.Message{}, fmt.Errorf("invalid message payload")
	}
	if tx == nil {
		return model.Message{}, fmt.Errorf("transaction is required")
	}

	err := tx.QueryRow(ctx, `
INSERT INTO messages (
	conversation_id,
	sender_id,
	receiver_id,
	text,
	type,
	image_key,
	is_read,
	created_at
) VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), FALSE, $7)
RETURNING id, is_read, created_at
`,
		msg.ConversationID,
		msg.SenderID,
		msg.ReceiverID,
		msg.Text,
		msg.Type,
		msg.ImageKey,
		msg.CreatedAt,
	).Scan(&msg.ID, &msg.IsRead, &msg.CreatedAt)
	if err != nil {
		return model.Message{}, fmt.Errorf("insert message: %w", err)
	}

	return msg, nil
}

// ListByConversation returns the ledger in send order. created_at alone is
// not unique, so id breaks ties deterministically.
func (r *MessageRepo) ListByConversation(ctx context.Context, conversationID int64, limit int) ([]model.Message, error) {
	if conversationID <= 0 {
		return nil, fmt.Errorf("invalid conversation id")
	}
	if limit <= 0 {
		limit = 200
	}
	if r.pool == nil {
		return []model.Message{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT`+messageColumns+`
FROM messages
WHERE conversation_id = $1
ORDER BY created_at ASC, id ASC
LIMIT $2
`, conversationID, limit)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	items := make([]model.Message, 0, limit)
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, msg)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate messages: %w", rows.Err())
	}

	return items, nil
}

// MarkRead marks every unread message addressed to readerID in the
// conversation. Re-running it is a no-op.
func (r *MessageRepo) MarkRead(ctx context.Context, conversationID, readerID int64, at time.Time) (int, error) {
	if conversationID <= 0 || readerID <= 0 {
		return 0, fmt.Errorf("invalid mark read payload")
	}
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}

	tag, err := r.pool.Exec(ctx, `
UPDATE messages
SET is_read = TRUE, read_at = $3
WHERE conversation_id = $1
	AND receiver_id = $2
	AND is_read = FALSE
`, conversationID, readerID, at)
	if err != nil {
		return 0, fmt.Errorf("mark messages read: %w", err)
	}

	return int(tag.RowsAffected()), nil
}

func (r *MessageRepo) CountUnreadForUser(ctx context.Context, userID int64) (int, error) {
	if userID <= 0 {
		return 0, fmt.Errorf("invalid user id")
	}
	if r.pool == nil {
		return 0, nil
	}

	var count int
	err := r.pool.QueryRow(ctx, `
SELECT COUNT(*)
FROM messages
WHERE receiver_id = $1 AND is_read = FALSE
`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count unread messages: %w", err)
	}

	return count, nil
}

func scanMessage(row pgx.Row) (model.Message, error) {
	var (
		msg     model.Message
		msgType string
	)
	if err := row.Scan(
		&msg.ID,
		&msg.ConversationID,
		&msg.SenderID,
		&msg.ReceiverID,
		&msg.Text,
		&msgType,
		&msg.ImageKey,
		&msg.IsRead,
		&msg.ReadAt,
		&msg.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Message{}, ErrMessageNotFound
		}
		return model.Message{}, fmt.Errorf("scan message: %w", err)
	}
	msg.Type = enums.MessageType(msgType)

	return msg, nil
}
