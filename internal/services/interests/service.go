package interests

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lestercardoz11/haven/internal/domain/enums"
	"github.com/lestercardoz11/haven/internal/domain/model"
	"github.com/lestercardoz11/haven/internal/pkg/validate"
	pgrepo "github.com/lestercardoz11/haven/internal/repo/postgres"
	"github.com/lestercardoz11/haven/internal/services/rate"
	"github.com/lestercardoz11/haven/internal/services/scoring"
)

var (
	ErrValidation        = errors.New("validation error")
	ErrInvalidTarget     = errors.New("invalid interest target")
	ErrDuplicateInterest = errors.New("interest already exists")
	ErrNotFound          = errors.New("interest not found")
	ErrAlreadyResolved   = errors.New("interest already resolved")
	ErrNotReceiver       = errors.New("only the receiver may respond")
	ErrRateLimited       = errors.New("interest rate limit exceeded")
)

type InterestStore interface {
	Create(ctx context.Context, tx pgx.Tx, senderID, receiverID int64, message string, now time.Time) (model.Interest, error)
	GetByID(ctx context.Context, id int64) (model.Interest, error)
	ResolvePending(ctx context.Context, tx pgx.Tx, id int64, status enums.InterestStatus, now time.Time) (model.Interest, error)
}

type MatchStore interface {
	MarkInterested(ctx context.Context, tx pgx.Tx, userID, matchedUserID int64, score int, now time.Time) error
	MarkPassed(ctx context.Context, userID, matchedUserID int64, now time.Time) error
	ConnectPair(ctx context.Context, tx pgx.Tx, userA, userB int64, score int, now time.Time) error
}

type ConversationStore interface {
	UpsertForPair(ctx context.Context, tx pgx.Tx, userA, userB int64, now time.Time) (model.Conversation, bool, error)
}

type ProfileStore interface {
	GetByUserID(ctx context.Context, userID int64) (model.Profile, error)
}

type BlockStore interface {
	ExistsBetween(ctx context.Context, userA, userB int64) (bool, error)
}

type RateLimiter interface {
	AllowInterest(ctx context.Context, userID int64) (int64, bool, error)
}

type Config struct {
	MaxMessageLen int
}

type Service struct {
	pool          *pgxpool.Pool
	interests     InterestStore
	matches       MatchStore
	conversations ConversationStore
	profiles      ProfileStore
	blocks        BlockStore
	limiter       RateLimiter
	cfg           Config
	now           func() time.Time
	runTx         func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error
}

type Dependencies struct {
	Pool          *pgxpool.Pool
	Interests     InterestStore
	Matches       MatchStore
	Conversations ConversationStore
	Profiles      ProfileStore
	Blocks        BlockStore
	Limiter       RateLimiter
}

type AcceptResult struct {
	Interest            model.Interest
	Conversation        model.Conversation
	ConversationCreated bool
}

func NewService(deps Dependencies, cfg Config) *Service {
	if cfg.MaxMessageLen <= 0 {
		cfg.MaxMessageLen = 500
	}
	s := &Service{
		pool:          deps.Pool,
		interests:     deps.Interests,
		matches:       deps.Matches,
		conversations: deps.Conversations,
		profiles:      deps.Profiles,
		blocks:        deps.Blocks,
		limiter:       deps.Limiter,
		cfg:           cfg,
		now:           time.Now,
	}
	s.runTx = func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error {
		return pgrepo.WithTx(ctx, s.pool, fn)
	}
	return s
}

// Send records a pending interest from sender to receiver and marks the
// sender's directional match row interested. The uniqueness constraint on
// (sender_id, receiver_id) is enforced at the insert, so a double tap or a
// retried request surfaces ErrDuplicateInterest without a second row.
func (s *Service) Send(ctx context.Context, senderID, receiverID int64, message string) (model.Interest, error) {
	if senderID <= 0 || receiverID <= 0 {
		return model.Interest{}, ErrValidation
	}
	if senderID == receiverID {
		return model.Interest{}, ErrInvalidTarget
	}
	if !validate.MaxLen(message, s.cfg.MaxMessageLen) {
		return model.Interest{}, ErrValidation
	}
	if s.interests == nil || s.matches == nil || s.profiles == nil {
		return model.Interest{}, fmt.Errorf("interest dependencies are not configured")
	}

	if s.limiter != nil {
		retryAfter, allowed, err := s.limiter.AllowInterest(ctx, senderID)
		if err != nil {
			return model.Interest{}, fmt.Errorf("check interest rate: %w", err)
		}
		if !allowed {
			return model.Interest{}, fmt.Errorf("%w: %w", ErrRateLimited, &rate.LimitedError{RetryAfterSec: retryAfter})
		}
	}

	sender, err := s.profiles.GetByUserID(ctx, senderID)
	if err != nil {
		return model.Interest{}, fmt.Errorf("load sender profile: %w", err)
	}
	receiver, err := s.profiles.GetByUserID(ctx, receiverID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrProfileNotFound) {
			return model.Interest{}, ErrInvalidTarget
		}
		return model.Interest{}, fmt.Errorf("load receiver profile: %w", err)
	}
	if !receiver.Active {
		return model.Interest{}, ErrInvalidTarget
	}

	if s.blocks != nil {
		blocked, err := s.blocks.ExistsBetween(ctx, senderID, receiverID)
		if err != nil {
			return model.Interest{}, fmt.Errorf("check block state: %w", err)
		}
		if blocked {
			return model.Interest{}, ErrInvalidTarget
		}
	}

	now := s.now()
	score := scoring.Compatibility(sender, receiver, now)

	var created model.Interest
	err = s.runTx(ctx, func(txCtx context.Context, tx pgx.Tx) error {
		interest, err := s.interests.Create(txCtx, tx, senderID, receiverID, message, now)
		if err != nil {
			if errors.Is(err, pgrepo.ErrDuplicateInterest) {
				return ErrDuplicateInterest
			}
			return err
		}
		if err := s.matches.MarkInterested(txCtx, tx, senderID, receiverID, score, now); err != nil {
			return err
		}
		created = interest
		return nil
	})
	if err != nil {
		return model.Interest{}, err
	}

	return created, nil
}

// Accept resolves a pending interest and performs the connection side
// effects in one transaction: both directional match rows flip to connected
// and the pair's single conversation is created or reused. A concurrent
// accept of the same interest loses the conditional update and observes
// ErrAlreadyResolved with no writes.
func (s *Service) Accept(ctx context.Context, receiverID, interestID int64) (AcceptResult, error) {
	if receiverID <= 0 || interestID <= 0 {
		return AcceptResult{}, ErrValidation
	}
	if s.interests == nil || s.matches == nil || s.conversations == nil {
		return AcceptResult{}, fmt.Errorf("interest dependencies are not configured")
	}

	interest, err := s.loadForResponder(ctx, receiverID, interestID)
	if err != nil {
		return AcceptResult{}, err
	}

	score, err := s.pairScore(ctx, interest.SenderID, interest.ReceiverID)
	if err != nil {
		return AcceptResult{}, err
	}

	now := s.now()

	var result AcceptResult
	err = s.runTx(ctx, func(txCtx context.Context, tx pgx.Tx) error {
		resolved, err := s.interests.ResolvePending(txCtx, tx, interestID, enums.InterestStatusAccepted, now)
		if err != nil {
			if errors.Is(err, pgrepo.ErrInterestNotPending) {
				return ErrAlreadyResolved
			}
			return err
		}
		if err := s.matches.ConnectPair(txCtx, tx, resolved.SenderID, resolved.ReceiverID, score, now); err != nil {
			return err
		}
		conv, convCreated, err := s.conversations.UpsertForPair(txCtx, tx, resolved.SenderID, resolved.ReceiverID, now)
		if err != nil {
			return err
		}
		result = AcceptResult{
			Interest:            resolved,
			Conversation:        conv,
			ConversationCreated: convCreated,
		}
		return nil
	})
	if err != nil {
		return AcceptResult{}, err
	}

	return result, nil
}

// Reject resolves a pending interest without side effects on match rows.
func (s *Service) Reject(ctx context.Context, receiverID, interestID int64) (model.Interest, error) {
	if receiverID <= 0 || interestID <= 0 {
		return model.Interest{}, ErrValidation
	}
	if s.interests == nil {
		return model.Interest{}, fmt.Errorf("interest store is nil")
	}

	if _, err := s.loadForResponder(ctx, receiverID, interestID); err != nil {
		return model.Interest{}, err
	}

	now := s.now()

	var resolved model.Interest
	err := s.runTx(ctx, func(txCtx context.Context, tx pgx.Tx) error {
		interest, err := s.interests.ResolvePending(txCtx, tx, interestID, enums.InterestStatusRejected, now)
		if err != nil {
			if errors.Is(err, pgrepo.ErrInterestNotPending) {
				return ErrAlreadyResolved
			}
			return err
		}
		resolved = interest
		return nil
	})
	if err != nil {
		return model.Interest{}, err
	}

	return resolved, nil
}

// Pass moves the viewer's directional match row to passed. It leaves the
// reverse row untouched, the other user can still express interest.
func (s *Service) Pass(ctx context.Context, viewerID, targetID int64) error {
	if viewerID <= 0 || targetID <= 0 {
		return ErrValidation
	}
	if viewerID == targetID {
		return ErrInvalidTarget
	}
	if s.matches == nil {
		return fmt.Errorf("match store is nil")
	}

	return s.matches.MarkPassed(ctx, viewerID, targetID, s.now())
}

func (s *Service) loadForResponder(ctx context.Context, receiverID, interestID int64) (model.Interest, error) {
	interest, err := s.interests.GetByID(ctx, interestID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrInterestNotFound) {
			return model.Interest{}, ErrNotFound
		}
		return model.Interest{}, fmt.Errorf("load interest: %w", err)
	}
	if interest.ReceiverID != receiverID {
		return model.Interest{}, ErrNotReceiver
	}
	if interest.Status.Resolved() {
		return model.Interest{}, ErrAlreadyResolved
	}
	return interest, nil
}

// pairScore recomputes compatibility for the connected match rows. Missing
// profiles degrade to a zero score instead of blocking the acceptance.
func (s *Service) pairScore(ctx context.Context, senderID, receiverID int64) (int, error) {
	if s.profiles == nil {
		return 0, nil
	}
	sender, err := s.profiles.GetByUserID(ctx, senderID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrProfileNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("load sender profile: %w", err)
	}
	receiver, err := s.profiles.GetByUserID(ctx, receiverID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrProfileNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("load receiver profile: %w", err)
	}
	return scoring.Compatibility(sender, receiver, s.now()), nil
}
