package interests

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/lestercardoz11/haven/internal/domain/enums"
	"github.com/lestercardoz11/haven/internal/domain/model"
	pgrepo "github.com/lestercardoz11/haven/internal/repo/postgres"
	"github.com/lestercardoz11/haven/internal/services/rate"
)

var testNow = time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)

type interestStoreStub struct {
	createErr  error
	stored     model.Interest
	resolveErr error
	resolved   []enums.InterestStatus
}

func (s *interestStoreStub) Create(_ context.Context, _ pgx.Tx, senderID, receiverID int64, message string, now time.Time) (model.Interest, error) {
	if s.createErr != nil {
		return model.Interest{}, s.createErr
	}
	return model.Interest{
		ID:         1,
		SenderID:   senderID,
		ReceiverID: receiverID,
		Message:    message,
		Status:     enums.InterestStatusPending,
		SentAt:     now,
	}, nil
}

func (s *interestStoreStub) GetByID(_ context.Context, id int64) (model.Interest, error) {
	if s.stored.ID != id {
		return model.Interest{}, pgrepo.ErrInterestNotFound
	}
	return s.stored, nil
}

func (s *interestStoreStub) ResolvePending(_ context.Context, _ pgx.Tx, _ int64, status enums.InterestStatus, now time.Time) (model.Interest, error) {
	if s.resolveErr != nil {
		return model.Interest{}, s.resolveErr
	}
	s.resolved = append(s.resolved, status)
	resolved := s.stored
	resolved.Status = status
	resolved.RespondedAt = &now
	return resolved, nil
}

type matchStoreStub struct {
	interested [][2]int64
	passed     [][2]int64
	connected  [][2]int64
	score      int
}

func (s *matchStoreStub) MarkInterested(_ context.Context, _ pgx.Tx, userID, matchedUserID int64, score int, _ time.Time) error {
	s.interested = append(s.interested, [2]int64{userID, matchedUserID})
	s.score = score
	return nil
}

func (s *matchStoreStub) MarkPassed(_ context.Context, userID, matchedUserID int64, _ time.Time) error {
	s.passed = append(s.passed, [2]int64{userID, matchedUserID})
	return nil
}

func (s *matchStoreStub) ConnectPair(_ context.Context, _ pgx.Tx, userA, userB int64, score int, _ time.Time) error {
	s.connected = append(s.connected, [2]int64{userA, userB})
	s.score = score
	return nil
}

type conversationStoreStub struct {
	conv    model.Conversation
	created bool
	calls   int
}

func (s *conversationStoreStub) UpsertForPair(_ context.Context, _ pgx.Tx, userA, userB int64, _ time.Time) (model.Conversation, bool, error) {
	s.calls++
	return s.conv, s.created, nil
}

type profileStoreStub struct {
	profiles map[int64]model.Profile
}

func (s profileStoreStub) GetByUserID(_ context.Context, userID int64) (model.Profile, error) {
	p, ok := s.profiles[userID]
	if !ok {
		return model.Profile{}, pgrepo.ErrProfileNotFound
	}
	return p, nil
}

type blockStoreStub struct {
	blocked bool
}

func (s blockStoreStub) ExistsBetween(_ context.Context, _, _ int64) (bool, error) {
	return s.blocked, nil
}

type limiterStub struct {
	retryAfter int64
	allowed    bool
}

func (s limiterStub) AllowInterest(_ context.Context, _ int64) (int64, bool, error) {
	return s.retryAfter, s.allowed, nil
}

func activeProfile(id int64) model.Profile {
	return model.Profile{UserID: id, Gender: "female", Denomination: "Baptist", Active: true}
}

func newTestService(interests *interestStoreStub, matches *matchStoreStub, conversations *conversationStoreStub, profiles profileStoreStub) *Service {
	svc := NewService(Dependencies{
		Interests:     interests,
		Matches:       matches,
		Conversations: conversations,
		Profiles:      profiles,
	}, Config{})
	svc.now = func() time.Time { return testNow }
	svc.runTx = func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error {
		return fn(ctx, nil)
	}
	return svc
}

func TestSendCreatesPendingInterest(t *testing.T) {
	interests := &interestStoreStub{}
	matches := &matchStoreStub{}
	sender := activeProfile(1)
	sender.Gender = "male"
	profiles := profileStoreStub{profiles: map[int64]model.Profile{
		1: sender,
		2: activeProfile(2),
	}}
	svc := newTestService(interests, matches, &conversationStoreStub{}, profiles)

	created, err := svc.Send(context.Background(), 1, 2, "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.Status != enums.InterestStatusPending {
		t.Fatalf("unexpected status: got %q want %q", created.Status, enums.InterestStatusPending)
	}
	if len(matches.interested) != 1 || matches.interested[0] != [2]int64{1, 2} {
		t.Fatalf("unexpected interested rows: %+v", matches.interested)
	}
	// Both share the denomination, so the stored score carries the 30 points.
	if matches.score != 30 {
		t.Fatalf("unexpected score: got %d want %d", matches.score, 30)
	}
}

func TestSendRejectsSelfTarget(t *testing.T) {
	svc := newTestService(&interestStoreStub{}, &matchStoreStub{}, &conversationStoreStub{}, profileStoreStub{})

	if _, err := svc.Send(context.Background(), 1, 1, ""); err != ErrInvalidTarget {
		t.Fatalf("unexpected error: got %v want %v", err, ErrInvalidTarget)
	}
}

func TestSendSurfacesDuplicate(t *testing.T) {
	interests := &interestStoreStub{createErr: pgrepo.ErrDuplicateInterest}
	profiles := profileStoreStub{profiles: map[int64]model.Profile{
		1: activeProfile(1),
		2: activeProfile(2),
	}}
	svc := newTestService(interests, &matchStoreStub{}, &conversationStoreStub{}, profiles)

	if _, err := svc.Send(context.Background(), 1, 2, ""); !errors.Is(err, ErrDuplicateInterest) {
		t.Fatalf("unexpected error: got %v want %v", err, ErrDuplicateInterest)
	}
}

func TestSendRejectsInactiveReceiver(t *testing.T) {
	inactive := activeProfile(2)
	inactive.Active = false
	profiles := profileStoreStub{profiles: map[int64]model.Profile{
		1: activeProfile(1),
		2: inactive,
	}}
	svc := newTestService(&interestStoreStub{}, &matchStoreStub{}, &conversationStoreStub{}, profiles)

	if _, err := svc.Send(context.Background(), 1, 2, ""); err != ErrInvalidTarget {
		t.Fatalf("unexpected error: got %v want %v", err, ErrInvalidTarget)
	}
}

func TestSendRejectsBlockedPair(t *testing.T) {
	profiles := profileStoreStub{profiles: map[int64]model.Profile{
		1: activeProfile(1),
		2: activeProfile(2),
	}}
	svc := newTestService(&interestStoreStub{}, &matchStoreStub{}, &conversationStoreStub{}, profiles)
	svc.blocks = blockStoreStub{blocked: true}

	if _, err := svc.Send(context.Background(), 1, 2, ""); err != ErrInvalidTarget {
		t.Fatalf("unexpected error: got %v want %v", err, ErrInvalidTarget)
	}
}

func TestSendRateLimited(t *testing.T) {
	profiles := profileStoreStub{profiles: map[int64]model.Profile{
		1: activeProfile(1),
		2: activeProfile(2),
	}}
	svc := newTestService(&interestStoreStub{}, &matchStoreStub{}, &conversationStoreStub{}, profiles)
	svc.limiter = limiterStub{retryAfter: 30, allowed: false}

	_, err := svc.Send(context.Background(), 1, 2, "")
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("unexpected error: got %v want %v", err, ErrRateLimited)
	}

	var limited *rate.LimitedError
	if !errors.As(err, &limited) || limited.RetryAfterSec != 30 {
		t.Fatalf("expected retry_after 30s in error, got %v", err)
	}
}

func TestSendRejectsOverlongMessage(t *testing.T) {
	svc := newTestService(&interestStoreStub{}, &matchStoreStub{}, &conversationStoreStub{}, profileStoreStub{})

	long := make([]rune, 501)
	for i := range long {
		long[i] = 'a'
	}
	if _, err := svc.Send(context.Background(), 1, 2, string(long)); err != ErrValidation {
		t.Fatalf("unexpected error: got %v want %v", err, ErrValidation)
	}
}

func TestAcceptConnectsPairAndCreatesConversation(t *testing.T) {
	interests := &interestStoreStub{stored: model.Interest{
		ID:         7,
		SenderID:   1,
		ReceiverID: 2,
		Status:     enums.InterestStatusPending,
	}}
	matches := &matchStoreStub{}
	conversations := &conversationStoreStub{
		conv:    model.Conversation{ID: 11, Participant1ID: 1, Participant2ID: 2},
		created: true,
	}
	profiles := profileStoreStub{profiles: map[int64]model.Profile{
		1: activeProfile(1),
		2: activeProfile(2),
	}}
	svc := newTestService(interests, matches, conversations, profiles)

	result, err := svc.Accept(context.Background(), 2, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Interest.Status != enums.InterestStatusAccepted {
		t.Fatalf("unexpected status: got %q want %q", result.Interest.Status, enums.InterestStatusAccepted)
	}
	if len(matches.connected) != 1 || matches.connected[0] != [2]int64{1, 2} {
		t.Fatalf("unexpected connected pairs: %+v", matches.connected)
	}
	if conversations.calls != 1 {
		t.Fatalf("unexpected conversation upserts: got %d want %d", conversations.calls, 1)
	}
	if !result.ConversationCreated || result.Conversation.ID != 11 {
		t.Fatalf("unexpected conversation result: %+v", result)
	}
}

func TestAcceptReusesExistingConversation(t *testing.T) {
	interests := &interestStoreStub{stored: model.Interest{
		ID:         7,
		SenderID:   1,
		ReceiverID: 2,
		Status:     enums.InterestStatusPending,
	}}
	conversations := &conversationStoreStub{
		conv:    model.Conversation{ID: 11, Participant1ID: 1, Participant2ID: 2},
		created: false,
	}
	svc := newTestService(interests, &matchStoreStub{}, conversations, profileStoreStub{})

	result, err := svc.Accept(context.Background(), 2, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ConversationCreated {
		t.Fatalf("expected reuse of existing conversation")
	}
	if result.Conversation.ID != 11 {
		t.Fatalf("unexpected conversation id: got %d want %d", result.Conversation.ID, 11)
	}
}

func TestAcceptNotFound(t *testing.T) {
	svc := newTestService(&interestStoreStub{}, &matchStoreStub{}, &conversationStoreStub{}, profileStoreStub{})

	if _, err := svc.Accept(context.Background(), 2, 7); err != ErrNotFound {
		t.Fatalf("unexpected error: got %v want %v", err, ErrNotFound)
	}
}

func TestAcceptRejectsNonReceiver(t *testing.T) {
	interests := &interestStoreStub{stored: model.Interest{
		ID:         7,
		SenderID:   1,
		ReceiverID: 2,
		Status:     enums.InterestStatusPending,
	}}
	svc := newTestService(interests, &matchStoreStub{}, &conversationStoreStub{}, profileStoreStub{})

	if _, err := svc.Accept(context.Background(), 3, 7); err != ErrNotReceiver {
		t.Fatalf("unexpected error: got %v want %v", err, ErrNotReceiver)
	}
	if _, err := svc.Accept(context.Background(), 1, 7); err != ErrNotReceiver {
		t.Fatalf("sender must not respond to own interest, got %v", err)
	}
}

func TestAcceptAlreadyResolved(t *testing.T) {
	interests := &interestStoreStub{stored: model.Interest{
		ID:         7,
		SenderID:   1,
		ReceiverID: 2,
		Status:     enums.InterestStatusAccepted,
	}}
	svc := newTestService(interests, &matchStoreStub{}, &conversationStoreStub{}, profileStoreStub{})

	if _, err := svc.Accept(context.Background(), 2, 7); err != ErrAlreadyResolved {
		t.Fatalf("unexpected error: got %v want %v", err, ErrAlreadyResolved)
	}
}

func TestAcceptLosesConditionalUpdate(t *testing.T) {
	// The row reads pending but another transaction resolves it first. The
	// conditional update reports not-pending and the whole accept rolls up
	// to ErrAlreadyResolved.
	interests := &interestStoreStub{
		stored: model.Interest{
			ID:         7,
			SenderID:   1,
			ReceiverID: 2,
			Status:     enums.InterestStatusPending,
		},
		resolveErr: pgrepo.ErrInterestNotPending,
	}
	matches := &matchStoreStub{}
	conversations := &conversationStoreStub{}
	svc := newTestService(interests, matches, conversations, profileStoreStub{})

	if _, err := svc.Accept(context.Background(), 2, 7); !errors.Is(err, ErrAlreadyResolved) {
		t.Fatalf("unexpected error: got %v want %v", err, ErrAlreadyResolved)
	}
	if len(matches.connected) != 0 || conversations.calls != 0 {
		t.Fatalf("losing accept must not perform side effects: %+v, %d", matches.connected, conversations.calls)
	}
}

func TestRejectResolvesWithoutSideEffects(t *testing.T) {
	interests := &interestStoreStub{stored: model.Interest{
		ID:         7,
		SenderID:   1,
		ReceiverID: 2,
		Status:     enums.InterestStatusPending,
	}}
	matches := &matchStoreStub{}
	conversations := &conversationStoreStub{}
	svc := newTestService(interests, matches, conversations, profileStoreStub{})

	resolved, err := svc.Reject(context.Background(), 2, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolved.Status != enums.InterestStatusRejected {
		t.Fatalf("unexpected status: got %q want %q", resolved.Status, enums.InterestStatusRejected)
	}
	if len(matches.connected) != 0 || conversations.calls != 0 {
		t.Fatalf("reject must not connect the pair: %+v, %d", matches.connected, conversations.calls)
	}
}

func TestPassMarksDirectionalRow(t *testing.T) {
	matches := &matchStoreStub{}
	svc := newTestService(&interestStoreStub{}, matches, &conversationStoreStub{}, profileStoreStub{})

	if err := svc.Pass(context.Background(), 1, 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(matches.passed) != 1 || matches.passed[0] != [2]int64{1, 2} {
		t.Fatalf("unexpected passed rows: %+v", matches.passed)
	}

	if err := svc.Pass(context.Background(), 1, 1); err != ErrInvalidTarget {
		t.Fatalf("unexpected error: got %v want %v", err, ErrInvalidTarget)
	}
}
