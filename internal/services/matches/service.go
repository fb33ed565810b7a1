package matches

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lestercardoz11/haven/internal/domain/enums"
	pgrepo "github.com/lestercardoz11/haven/internal/repo/postgres"
)

var (
	ErrValidation          = errors.New("validation error")
	ErrInvalidStatus       = errors.New("invalid match status filter")
	ErrInvalidReportReason = errors.New("invalid report reason")
)

type MatchStore interface {
	ListForUser(ctx context.Context, userID int64, status enums.MatchStatus, limit int) ([]pgrepo.MatchWithProfileRecord, error)
}

type BlockStore interface {
	Upsert(ctx context.Context, blockerID, blockedID int64, now time.Time) error
}

type ReportStore interface {
	Create(ctx context.Context, reporterID, reportedID int64, reason enums.ReportReason, details string, now time.Time) (int64, error)
}

type MatchItem struct {
	ID            int64
	MatchedUserID int64
	DisplayName   string
	Denomination  string
	Age           int
	Score         int
	Status        enums.MatchStatus
	CreatedAt     time.Time
}

type Service struct {
	matchStore  MatchStore
	blockStore  BlockStore
	reportStore ReportStore
	now         func() time.Time
}

type Dependencies struct {
	MatchStore  MatchStore
	BlockStore  BlockStore
	ReportStore ReportStore
}

func NewService(deps Dependencies) *Service {
	return &Service{
		matchStore:  deps.MatchStore,
		blockStore:  deps.BlockStore,
		reportStore: deps.ReportStore,
		now:         time.Now,
	}
}

// List returns the viewer's match rows, optionally narrowed to one status.
// An empty status string means all statuses.
func (s *Service) List(ctx context.Context, userID int64, status string, limit int) ([]MatchItem, error) {
	if userID <= 0 {
		return nil, ErrValidation
	}
	if s.matchStore == nil {
		return nil, fmt.Errorf("match store is nil")
	}

	filter := enums.MatchStatus(strings.ToLower(strings.TrimSpace(status)))
	if filter != "" && !filter.Valid() {
		return nil, ErrInvalidStatus
	}

	rows, err := s.matchStore.ListForUser(ctx, userID, filter, limit)
	if err != nil {
		return nil, err
	}

	items := make([]MatchItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, MatchItem{
			ID:            row.ID,
			MatchedUserID: row.MatchedUserID,
			DisplayName:   row.DisplayName,
			Denomination:  row.Denomination,
			Age:           row.Age,
			Score:         row.Score,
			Status:        row.Status,
			CreatedAt:     row.CreatedAt,
		})
	}
	return items, nil
}

func (s *Service) Block(ctx context.Context, userID, targetID int64) error {
	if userID <= 0 || targetID <= 0 || userID == targetID {
		return ErrValidation
	}
	if s.blockStore == nil {
		return fmt.Errorf("block store is nil")
	}

	return s.blockStore.Upsert(ctx, userID, targetID, s.now())
}

func (s *Service) Report(ctx context.Context, userID, targetID int64, reason, details string) (int64, error) {
	if userID <= 0 || targetID <= 0 || userID == targetID {
		return 0, ErrValidation
	}
	normalized := enums.ReportReason(strings.ToLower(strings.TrimSpace(reason)))
	if !normalized.Valid() {
		return 0, ErrInvalidReportReason
	}
	if s.reportStore == nil {
		return 0, fmt.Errorf("report store is nil")
	}

	return s.reportStore.Create(ctx, userID, targetID, normalized, details, s.now())
}
