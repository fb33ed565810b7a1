package messaging

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/lestercardoz11/haven/internal/domain/enums"
	"github.com/lestercardoz11/haven/internal/domain/model"
	"github.com/lestercardoz11/haven/internal/pkg/validate"
	pgrepo "github.com/lestercardoz11/haven/internal/repo/postgres"
	"github.com/lestercardoz11/haven/internal/services/rate"
)

var (
	ErrValidation         = errors.New("validation error")
	ErrNotFound           = errors.New("conversation not found")
	ErrInvalidParticipant = errors.New("sender is not a conversation participant")
	ErrEmptyMessage       = errors.New("message requires text or an image")
	ErrMessageTooLong     = errors.New("message text exceeds the maximum length")
	ErrRateLimited        = errors.New("message rate limit exceeded")
)

type ConversationStore interface {
	GetByID(ctx context.Context, id int64) (model.Conversation, error)
	ListForUser(ctx context.Context, userID int64, limit int) ([]pgrepo.ConversationRecord, error)
	SearchByParticipantName(ctx context.Context, userID int64, query string, limit int) ([]pgrepo.ConversationRecord, error)
	Touch(ctx context.Context, tx pgx.Tx, id int64, at time.Time, preview string) error
}

type MessageStore interface {
	Insert(ctx context.Context, tx pgx.Tx, msg model.Message) (model.Message, error)
	ListByConversation(ctx context.Context, conversationID int64, limit int) ([]model.Message, error)
	MarkRead(ctx context.Context, conversationID, readerID int64, at time.Time) (int, error)
	CountUnreadForUser(ctx context.Context, userID int64) (int, error)
}

type Publisher interface {
	PublishMessage(ctx context.Context, msg model.Message) error
}

type ImageResolver interface {
	PresignGet(ctx context.Context, objectKey string) (string, error)
}

type RateLimiter interface {
	AllowMessage(ctx context.Context, userID int64) (int64, bool, error)
}

type Config struct {
	MaxMessageLen int
	PreviewLen    int
}

type Service struct {
	pool          *pgxpool.Pool
	conversations ConversationStore
	messages      MessageStore
	publisher     Publisher
	images        ImageResolver
	limiter       RateLimiter
	logger        *zap.Logger
	cfg           Config
	now           func() time.Time
	runTx         func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error
}

type Dependencies struct {
	Pool          *pgxpool.Pool
	Conversations ConversationStore
	Messages      MessageStore
	Publisher     Publisher
	Images        ImageResolver
	Limiter       RateLimiter
	Logger        *zap.Logger
}

type ConversationItem struct {
	ID                 int64
	OtherUserID        int64
	OtherDisplayName   string
	LastMessageAt      *time.Time
	LastMessagePreview string
	UnreadCount        int
	CreatedAt          time.Time
}

func NewService(deps Dependencies, cfg Config) *Service {
	if cfg.MaxMessageLen <= 0 {
		cfg.MaxMessageLen = 2000
	}
	if cfg.PreviewLen <= 0 {
		cfg.PreviewLen = 100
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	s := &Service{
		pool:          deps.Pool,
		conversations: deps.Conversations,
		messages:      deps.Messages,
		publisher:     deps.Publisher,
		images:        deps.Images,
		limiter:       deps.Limiter,
		logger:        deps.Logger,
		cfg:           cfg,
		now:           time.Now,
	}
	s.runTx = func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error {
		return pgrepo.WithTx(ctx, s.pool, fn)
	}
	return s
}

func (s *Service) ListConversations(ctx context.Context, userID int64, limit int) ([]ConversationItem, error) {
	if userID <= 0 {
		return nil, ErrValidation
	}
	if s.conversations == nil {
		return nil, fmt.Errorf("conversation store is nil")
	}

	rows, err := s.conversations.ListForUser(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	return toConversationItems(rows), nil
}

func (s *Service) SearchConversations(ctx context.Context, userID int64, query string, limit int) ([]ConversationItem, error) {
	if userID <= 0 {
		return nil, ErrValidation
	}
	if s.conversations == nil {
		return nil, fmt.Errorf("conversation store is nil")
	}

	rows, err := s.conversations.SearchByParticipantName(ctx, userID, query, limit)
	if err != nil {
		return nil, err
	}
	return toConversationItems(rows), nil
}

// ListMessages returns the full ordered history of a conversation the user
// participates in. Image messages get a short-lived presigned URL attached.
func (s *Service) ListMessages(ctx context.Context, userID, conversationID int64, limit int) ([]model.Message, error) {
	if userID <= 0 || conversationID <= 0 {
		return nil, ErrValidation
	}
	if s.messages == nil {
		return nil, fmt.Errorf("message store is nil")
	}

	if _, err := s.loadForParticipant(ctx, userID, conversationID); err != nil {
		return nil, err
	}

	items, err := s.messages.ListByConversation(ctx, conversationID, limit)
	if err != nil {
		return nil, err
	}

	if s.images != nil {
		for i := range items {
			if items[i].ImageKey == "" {
				continue
			}
			url, err := s.images.PresignGet(ctx, items[i].ImageKey)
			if err != nil {
				s.logger.Warn("presign message image failed",
					zap.Int64("message_id", items[i].ID), zap.Error(err))
				continue
			}
			items[i].ImageURL = url
		}
	}

	return items, nil
}

// Send appends a message to the ledger and refreshes the conversation
// preview in the same transaction. The live-update publish happens after
// commit and is best effort.
func (s *Service) Send(ctx context.Context, senderID, conversationID int64, text, imageKey string) (model.Message, error) {
	if senderID <= 0 || conversationID <= 0 {
		return model.Message{}, ErrValidation
	}
	if s.conversations == nil || s.messages == nil {
		return model.Message{}, fmt.Errorf("messaging dependencies are not configured")
	}

	text = strings.TrimSpace(text)
	imageKey = strings.TrimSpace(imageKey)
	if text == "" && imageKey == "" {
		return model.Message{}, ErrEmptyMessage
	}
	if !validate.MaxLen(text, s.cfg.MaxMessageLen) {
		return model.Message{}, ErrMessageTooLong
	}

	conv, err := s.loadForParticipant(ctx, senderID, conversationID)
	if err != nil {
		return model.Message{}, err
	}

	if s.limiter != nil {
		retryAfter, allowed, err := s.limiter.AllowMessage(ctx, senderID)
		if err != nil {
			return model.Message{}, fmt.Errorf("check message rate: %w", err)
		}
		if !allowed {
			return model.Message{}, fmt.Errorf("%w: %w", ErrRateLimited, &rate.LimitedError{RetryAfterSec: retryAfter})
		}
	}

	now := s.now()
	msgType := enums.MessageTypeText
	if imageKey != "" {
		msgType = enums.MessageTypeImage
	}

	var saved model.Message
	err = s.runTx(ctx, func(txCtx context.Context, tx pgx.Tx) error {
		msg, err := s.messages.Insert(txCtx, tx, model.Message{
			ConversationID: conversationID,
			SenderID:       senderID,
			ReceiverID:     conv.OtherParticipant(senderID),
			Text:           text,
			Type:           msgType,
			ImageKey:       imageKey,
			CreatedAt:      now,
		})
		if err != nil {
			return err
		}
		if err := s.conversations.Touch(txCtx, tx, conversationID, now, s.preview(text, msgType)); err != nil {
			return err
		}
		saved = msg
		return nil
	})
	if err != nil {
		return model.Message{}, err
	}

	if s.publisher != nil {
		if err := s.publisher.PublishMessage(ctx, saved); err != nil {
			s.logger.Warn("publish message event failed",
				zap.Int64("conversation_id", conversationID), zap.Error(err))
		}
	}

	return saved, nil
}

// MarkRead flips every unread message addressed to the user in the
// conversation. Calling it again is a no-op.
func (s *Service) MarkRead(ctx context.Context, userID, conversationID int64) (int, error) {
	if userID <= 0 || conversationID <= 0 {
		return 0, ErrValidation
	}
	if s.messages == nil {
		return 0, fmt.Errorf("message store is nil")
	}

	if _, err := s.loadForParticipant(ctx, userID, conversationID); err != nil {
		return 0, err
	}

	return s.messages.MarkRead(ctx, conversationID, userID, s.now())
}

func (s *Service) UnreadCount(ctx context.Context, userID int64) (int, error) {
	if userID <= 0 {
		return 0, ErrValidation
	}
	if s.messages == nil {
		return 0, fmt.Errorf("message store is nil")
	}

	return s.messages.CountUnreadForUser(ctx, userID)
}

func (s *Service) loadForParticipant(ctx context.Context, userID, conversationID int64) (model.Conversation, error) {
	conv, err := s.conversations.GetByID(ctx, conversationID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrConversationNotFound) {
			return model.Conversation{}, ErrNotFound
		}
		return model.Conversation{}, fmt.Errorf("load conversation: %w", err)
	}
	if !conv.HasParticipant(userID) {
		return model.Conversation{}, ErrInvalidParticipant
	}
	return conv, nil
}

// imagePreview stands in for caption-less image messages in conversation lists.
const imagePreview = "📷 Photo"

func (s *Service) preview(text string, msgType enums.MessageType) string {
	if msgType == enums.MessageTypeImage && text == "" {
		return imagePreview
	}
	runes := []rune(text)
	if len(runes) > s.cfg.PreviewLen {
		return string(runes[:s.cfg.PreviewLen])
	}
	return text
}

func toConversationItems(rows []pgrepo.ConversationRecord) []ConversationItem {
	items := make([]ConversationItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, ConversationItem{
			ID:                 row.ID,
			OtherUserID:        row.OtherUserID,
			OtherDisplayName:   row.OtherDisplayName,
			LastMessageAt:      row.LastMessageAt,
			LastMessagePreview: row.LastMessagePreview,
			UnreadCount:        row.UnreadCount,
			CreatedAt:          row.CreatedAt,
		})
	}
	return items
}
