package messaging

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/lestercardoz11/haven/internal/domain/enums"
	"github.com/lestercardoz11/haven/internal/domain/model"
	pgrepo "github.com/lestercardoz11/haven/internal/repo/postgres"
	"github.com/lestercardoz11/haven/internal/services/rate"
)

var testNow = time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)

type conversationStoreStub struct {
	conv        model.Conversation
	listed      []pgrepo.ConversationRecord
	searched    []pgrepo.ConversationRecord
	lastPreview string
	touches     int
}

func (s *conversationStoreStub) GetByID(_ context.Context, id int64) (model.Conversation, error) {
	if s.conv.ID != id {
		return model.Conversation{}, pgrepo.ErrConversationNotFound
	}
	return s.conv, nil
}

func (s *conversationStoreStub) ListForUser(_ context.Context, _ int64, _ int) ([]pgrepo.ConversationRecord, error) {
	return s.listed, nil
}

func (s *conversationStoreStub) SearchByParticipantName(_ context.Context, _ int64, _ string, _ int) ([]pgrepo.ConversationRecord, error) {
	return s.searched, nil
}

func (s *conversationStoreStub) Touch(_ context.Context, _ pgx.Tx, _ int64, _ time.Time, preview string) error {
	s.touches++
	s.lastPreview = preview
	return nil
}

type messageStoreStub struct {
	nextID   int64
	inserted []model.Message
	history  []model.Message
	marked   int
	unread   int
}

func (s *messageStoreStub) Insert(_ context.Context, _ pgx.Tx, msg model.Message) (model.Message, error) {
	s.nextID++
	msg.ID = s.nextID
	s.inserted = append(s.inserted, msg)
	return msg, nil
}

func (s *messageStoreStub) ListByConversation(_ context.Context, _ int64, _ int) ([]model.Message, error) {
	return s.history, nil
}

func (s *messageStoreStub) MarkRead(_ context.Context, _, _ int64, _ time.Time) (int, error) {
	n := s.marked
	s.marked = 0
	return n, nil
}

func (s *messageStoreStub) CountUnreadForUser(_ context.Context, _ int64) (int, error) {
	return s.unread, nil
}

type publisherStub struct {
	published []model.Message
	err       error
}

func (s *publisherStub) PublishMessage(_ context.Context, msg model.Message) error {
	if s.err != nil {
		return s.err
	}
	s.published = append(s.published, msg)
	return nil
}

type imageResolverStub struct{}

func (imageResolverStub) PresignGet(_ context.Context, objectKey string) (string, error) {
	return "https://media.test/" + objectKey, nil
}

type limiterStub struct {
	retryAfter int64
	allowed    bool
}

func (s limiterStub) AllowMessage(_ context.Context, _ int64) (int64, bool, error) {
	return s.retryAfter, s.allowed, nil
}

func pairConversation() model.Conversation {
	return model.Conversation{ID: 11, Participant1ID: 1, Participant2ID: 2}
}

func newTestService(conversations *conversationStoreStub, messages *messageStoreStub, publisher *publisherStub) *Service {
	deps := Dependencies{
		Conversations: conversations,
		Messages:      messages,
	}
	if publisher != nil {
		deps.Publisher = publisher
	}
	svc := NewService(deps, Config{})
	svc.now = func() time.Time { return testNow }
	svc.runTx = func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error {
		return fn(ctx, nil)
	}
	return svc
}

func TestSendAppendsMessageAndTouchesConversation(t *testing.T) {
	conversations := &conversationStoreStub{conv: pairConversation()}
	messages := &messageStoreStub{}
	publisher := &publisherStub{}
	svc := newTestService(conversations, messages, publisher)

	saved, err := svc.Send(context.Background(), 1, 11, "hello there", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if saved.ReceiverID != 2 {
		t.Fatalf("unexpected receiver: got %d want %d", saved.ReceiverID, 2)
	}
	if saved.Type != enums.MessageTypeText {
		t.Fatalf("unexpected type: got %q want %q", saved.Type, enums.MessageTypeText)
	}
	if conversations.touches != 1 || conversations.lastPreview != "hello there" {
		t.Fatalf("unexpected touch: %d %q", conversations.touches, conversations.lastPreview)
	}
	if len(publisher.published) != 1 || publisher.published[0].ID != saved.ID {
		t.Fatalf("expected one publish of the saved message, got %+v", publisher.published)
	}
}

func TestSendRejectsNonParticipant(t *testing.T) {
	conversations := &conversationStoreStub{conv: pairConversation()}
	svc := newTestService(conversations, &messageStoreStub{}, nil)

	if _, err := svc.Send(context.Background(), 3, 11, "hi", ""); err != ErrInvalidParticipant {
		t.Fatalf("unexpected error: got %v want %v", err, ErrInvalidParticipant)
	}
}

func TestSendUnknownConversation(t *testing.T) {
	svc := newTestService(&conversationStoreStub{}, &messageStoreStub{}, nil)

	if _, err := svc.Send(context.Background(), 1, 11, "hi", ""); err != ErrNotFound {
		t.Fatalf("unexpected error: got %v want %v", err, ErrNotFound)
	}
}

func TestSendRejectsEmptyMessage(t *testing.T) {
	conversations := &conversationStoreStub{conv: pairConversation()}
	svc := newTestService(conversations, &messageStoreStub{}, nil)

	if _, err := svc.Send(context.Background(), 1, 11, "   ", ""); err != ErrEmptyMessage {
		t.Fatalf("unexpected error: got %v want %v", err, ErrEmptyMessage)
	}
}

func TestSendRejectsOverlongText(t *testing.T) {
	conversations := &conversationStoreStub{conv: pairConversation()}
	svc := newTestService(conversations, &messageStoreStub{}, nil)

	if _, err := svc.Send(context.Background(), 1, 11, strings.Repeat("a", 2001), ""); err != ErrMessageTooLong {
		t.Fatalf("unexpected error: got %v want %v", err, ErrMessageTooLong)
	}
}

func TestSendRateLimited(t *testing.T) {
	conversations := &conversationStoreStub{conv: pairConversation()}
	svc := newTestService(conversations, &messageStoreStub{}, nil)
	svc.limiter = limiterStub{retryAfter: 5, allowed: false}

	_, err := svc.Send(context.Background(), 1, 11, "hi", "")
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("unexpected error: got %v want %v", err, ErrRateLimited)
	}

	var limited *rate.LimitedError
	if !errors.As(err, &limited) || limited.RetryAfterSec != 5 {
		t.Fatalf("expected retry_after 5s in error, got %v", err)
	}
}

func TestSendImageMessage(t *testing.T) {
	conversations := &conversationStoreStub{conv: pairConversation()}
	messages := &messageStoreStub{}
	svc := newTestService(conversations, messages, nil)

	saved, err := svc.Send(context.Background(), 1, 11, "", "messages/1/abc.jpg")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if saved.Type != enums.MessageTypeImage {
		t.Fatalf("unexpected type: got %q want %q", saved.Type, enums.MessageTypeImage)
	}
	if conversations.lastPreview != "📷 Photo" {
		t.Fatalf("unexpected preview: got %q want %q", conversations.lastPreview, "📷 Photo")
	}
}

func TestSendPublishFailureDoesNotFailSend(t *testing.T) {
	conversations := &conversationStoreStub{conv: pairConversation()}
	publisher := &publisherStub{err: context.DeadlineExceeded}
	svc := newTestService(conversations, &messageStoreStub{}, publisher)

	if _, err := svc.Send(context.Background(), 1, 11, "hi", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPreviewTruncatesByRunes(t *testing.T) {
	svc := newTestService(&conversationStoreStub{}, &messageStoreStub{}, nil)

	long := strings.Repeat("й", 150)
	got := svc.preview(long, enums.MessageTypeText)
	if len([]rune(got)) != 100 {
		t.Fatalf("unexpected preview length: got %d want %d", len([]rune(got)), 100)
	}
}

func TestListMessagesAttachesImageURLs(t *testing.T) {
	conversations := &conversationStoreStub{conv: pairConversation()}
	messages := &messageStoreStub{history: []model.Message{
		{ID: 1, ConversationID: 11, Text: "hi"},
		{ID: 2, ConversationID: 11, Type: enums.MessageTypeImage, ImageKey: "messages/1/abc.jpg"},
	}}
	svc := newTestService(conversations, messages, nil)
	svc.images = imageResolverStub{}

	items, err := svc.ListMessages(context.Background(), 1, 11, 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if items[0].ImageURL != "" {
		t.Fatalf("text message must not carry an image url, got %q", items[0].ImageURL)
	}
	if items[1].ImageURL != "https://media.test/messages/1/abc.jpg" {
		t.Fatalf("unexpected image url: %q", items[1].ImageURL)
	}
}

func TestListMessagesRejectsNonParticipant(t *testing.T) {
	conversations := &conversationStoreStub{conv: pairConversation()}
	svc := newTestService(conversations, &messageStoreStub{}, nil)

	if _, err := svc.ListMessages(context.Background(), 9, 11, 50); err != ErrInvalidParticipant {
		t.Fatalf("unexpected error: got %v want %v", err, ErrInvalidParticipant)
	}
}

func TestMarkReadIsIdempotent(t *testing.T) {
	conversations := &conversationStoreStub{conv: pairConversation()}
	messages := &messageStoreStub{marked: 3}
	svc := newTestService(conversations, messages, nil)

	first, err := svc.MarkRead(context.Background(), 2, 11)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != 3 {
		t.Fatalf("unexpected marked count: got %d want %d", first, 3)
	}

	second, err := svc.MarkRead(context.Background(), 2, 11)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second != 0 {
		t.Fatalf("repeat mark-read must report zero, got %d", second)
	}
}

func TestListConversations(t *testing.T) {
	at := testNow
	conversations := &conversationStoreStub{listed: []pgrepo.ConversationRecord{
		{
			Conversation: model.Conversation{
				ID:                 11,
				Participant1ID:     1,
				Participant2ID:     2,
				LastMessageAt:      &at,
				LastMessagePreview: "see you Sunday",
			},
			OtherUserID:      2,
			OtherDisplayName: "Grace",
			UnreadCount:      4,
		},
	}}
	svc := newTestService(conversations, &messageStoreStub{}, nil)

	items, err := svc.ListConversations(context.Background(), 1, 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("unexpected item count: got %d want %d", len(items), 1)
	}
	item := items[0]
	if item.OtherDisplayName != "Grace" || item.UnreadCount != 4 || item.LastMessagePreview != "see you Sunday" {
		t.Fatalf("unexpected item: %+v", item)
	}
}

func TestUnreadCount(t *testing.T) {
	svc := newTestService(&conversationStoreStub{}, &messageStoreStub{unread: 7}, nil)

	n, err := svc.UnreadCount(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 7 {
		t.Fatalf("unexpected unread count: got %d want %d", n, 7)
	}
}
