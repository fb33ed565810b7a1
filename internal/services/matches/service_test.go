package matches

import (
	"context"
	"testing"
	"time"

	"github.com/lestercardoz11/haven/internal/domain/enums"
	pgrepo "github.com/lestercardoz11/haven/internal/repo/postgres"
)

type matchStoreStub struct {
	rows       []pgrepo.MatchWithProfileRecord
	lastStatus enums.MatchStatus
}

func (s *matchStoreStub) ListForUser(_ context.Context, _ int64, status enums.MatchStatus, _ int) ([]pgrepo.MatchWithProfileRecord, error) {
	s.lastStatus = status
	return s.rows, nil
}

type blockStoreStub struct {
	upserts [][2]int64
}

func (s *blockStoreStub) Upsert(_ context.Context, blockerID, blockedID int64, _ time.Time) error {
	s.upserts = append(s.upserts, [2]int64{blockerID, blockedID})
	return nil
}

type reportStoreStub struct {
	reason  enums.ReportReason
	details string
}

func (s *reportStoreStub) Create(_ context.Context, _, _ int64, reason enums.ReportReason, details string, _ time.Time) (int64, error) {
	s.reason = reason
	s.details = details
	return 42, nil
}

func TestListPassesStatusFilter(t *testing.T) {
	store := &matchStoreStub{rows: []pgrepo.MatchWithProfileRecord{
		{
			MatchRecord: pgrepo.MatchRecord{
				ID:            1,
				UserID:        1,
				MatchedUserID: 2,
				Score:         51,
				Status:        enums.MatchStatusConnected,
			},
			DisplayName:  "Grace",
			Denomination: "Baptist",
			Age:          28,
		},
	}}
	svc := NewService(Dependencies{MatchStore: store})

	items, err := svc.List(context.Background(), 1, " Connected ", 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.lastStatus != enums.MatchStatusConnected {
		t.Fatalf("unexpected status filter: got %q want %q", store.lastStatus, enums.MatchStatusConnected)
	}
	if len(items) != 1 {
		t.Fatalf("unexpected item count: got %d want %d", len(items), 1)
	}
	item := items[0]
	if item.MatchedUserID != 2 || item.DisplayName != "Grace" || item.Score != 51 {
		t.Fatalf("unexpected item: %+v", item)
	}
}

func TestListEmptyStatusMeansAll(t *testing.T) {
	store := &matchStoreStub{}
	svc := NewService(Dependencies{MatchStore: store})

	if _, err := svc.List(context.Background(), 1, "", 50); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.lastStatus != "" {
		t.Fatalf("expected empty status filter, got %q", store.lastStatus)
	}
}

func TestListRejectsUnknownStatus(t *testing.T) {
	svc := NewService(Dependencies{MatchStore: &matchStoreStub{}})

	if _, err := svc.List(context.Background(), 1, "besties", 50); err != ErrInvalidStatus {
		t.Fatalf("unexpected error: got %v want %v", err, ErrInvalidStatus)
	}
}

func TestBlock(t *testing.T) {
	blocks := &blockStoreStub{}
	svc := NewService(Dependencies{BlockStore: blocks})

	if err := svc.Block(context.Background(), 1, 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(blocks.upserts) != 1 || blocks.upserts[0] != [2]int64{1, 2} {
		t.Fatalf("unexpected upserts: %+v", blocks.upserts)
	}

	if err := svc.Block(context.Background(), 1, 1); err != ErrValidation {
		t.Fatalf("unexpected error: got %v want %v", err, ErrValidation)
	}
}

func TestReportNormalizesReason(t *testing.T) {
	reports := &reportStoreStub{}
	svc := NewService(Dependencies{ReportStore: reports})

	id, err := svc.Report(context.Background(), 1, 2, " Abusive ", "unwanted messages")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != 42 {
		t.Fatalf("unexpected report id: got %d want %d", id, 42)
	}
	if reports.reason != enums.ReportReasonAbusive {
		t.Fatalf("unexpected reason: got %q want %q", reports.reason, enums.ReportReasonAbusive)
	}
}

func TestReportRejectsUnknownReason(t *testing.T) {
	svc := NewService(Dependencies{ReportStore: &reportStoreStub{}})

	if _, err := svc.Report(context.Background(), 1, 2, "vibes", ""); err != ErrInvalidReportReason {
		t.Fatalf("unexpected error: got %v want %v", err, ErrInvalidReportReason)
	}
}
