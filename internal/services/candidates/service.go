package candidates

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/lestercardoz11/haven/internal/domain/model"
	"github.com/lestercardoz11/haven/internal/domain/rules"
	pgrepo "github.com/lestercardoz11/haven/internal/repo/postgres"
	"github.com/lestercardoz11/haven/internal/services/geo"
	"github.com/lestercardoz11/haven/internal/services/scoring"
)

var (
	ErrValidation        = errors.New("validation error")
	ErrViewerNotFound    = errors.New("viewer profile not found")
	ErrCandidateNotFound = errors.New("candidate profile not found")
	ErrInvalidLocation   = errors.New("invalid location filter")
)

type ProfileStore interface {
	GetByUserID(ctx context.Context, userID int64) (model.Profile, error)
	ListEligible(ctx context.Context, q pgrepo.CandidateQuery) ([]model.Profile, error)
}

type MatchStore interface {
	ListMatchedUserIDs(ctx context.Context, userID int64) ([]int64, error)
}

type BlockStore interface {
	ListBlockedUserIDs(ctx context.Context, userID int64) ([]int64, error)
}

type ViewStore interface {
	Insert(ctx context.Context, viewerID, viewedID int64, now time.Time) error
}

type Filters struct {
	AgeMin        int
	AgeMax        int
	Denominations []string
	Lat           *float64
	Lon           *float64
	RadiusKM      int
}

type Candidate struct {
	Profile    model.Profile
	Score      int
	DistanceKM *float64
}

type Config struct {
	DefaultAgeMin   int
	DefaultAgeMax   int
	DefaultRadiusKM int
	MaxRadiusKM     int
	MaxCandidates   int
}

type Service struct {
	profiles ProfileStore
	matches  MatchStore
	blocks   BlockStore
	views    ViewStore
	cfg      Config
	now      func() time.Time
}

type Dependencies struct {
	Profiles ProfileStore
	Matches  MatchStore
	Blocks   BlockStore
	Views    ViewStore
}

func NewService(deps Dependencies, cfg Config) *Service {
	if cfg.DefaultAgeMin <= 0 {
		cfg.DefaultAgeMin = rules.DefaultAgeMin
	}
	if cfg.DefaultAgeMax <= 0 {
		cfg.DefaultAgeMax = rules.DefaultAgeMax
	}
	if cfg.MaxCandidates <= 0 {
		cfg.MaxCandidates = 100
	}
	return &Service{
		profiles: deps.Profiles,
		matches:  deps.Matches,
		blocks:   deps.Blocks,
		views:    deps.Views,
		cfg:      cfg,
		now:      time.Now,
	}
}

// List returns eligible candidates for the viewer ranked by compatibility
// score descending, candidate id ascending on ties.
func (s *Service) List(ctx context.Context, viewerID int64, filters Filters) ([]Candidate, error) {
	if viewerID <= 0 {
		return nil, ErrValidation
	}
	if s.profiles == nil || s.matches == nil {
		return nil, fmt.Errorf("candidate dependencies are not configured")
	}
	if (filters.Lat == nil) != (filters.Lon == nil) {
		return nil, ErrInvalidLocation
	}
	if filters.Lat != nil {
		if err := geo.ValidateCoordinates(*filters.Lat, *filters.Lon); err != nil {
			return nil, ErrInvalidLocation
		}
	}

	viewer, err := s.profiles.GetByUserID(ctx, viewerID)
	if err != nil {
		return nil, fmt.Errorf("load viewer profile: %w", err)
	}

	now := s.now()
	ageMin, ageMax := rules.EffectiveAgeRange(filters.AgeMin, filters.AgeMax, viewer.PreferredAgeMin, viewer.PreferredAgeMax)

	denominations := filters.Denominations
	if len(denominations) == 0 && viewer.MustShareDenomination && viewer.Denomination != "" {
		denominations = []string{viewer.Denomination}
	}

	pool, err := s.profiles.ListEligible(ctx, pgrepo.CandidateQuery{
		ViewerUserID: viewerID,
		// A candidate aged exactly ageMax today was born no earlier than
		// this date, and one aged ageMin no later than the other bound.
		BornOnOrAfter:  now.AddDate(-ageMax-1, 0, 1),
		BornOnOrBefore: now.AddDate(-ageMin, 0, 0),
		Denominations:  denominations,
		Limit:          s.cfg.MaxCandidates * 4,
	})
	if err != nil {
		return nil, fmt.Errorf("list eligible profiles: %w", err)
	}

	excluded, err := s.exclusionSet(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	refLat, refLon, radiusKM := s.locationFilter(viewer, filters)

	items := make([]Candidate, 0, len(pool))
	for _, candidate := range pool {
		if _, skip := excluded[candidate.UserID]; skip {
			continue
		}
		if !genderEligible(viewer, candidate) {
			continue
		}
		if candidate.Birthdate == nil {
			continue
		}
		age := rules.AgeAt(*candidate.Birthdate, now)
		if age < ageMin || age > ageMax {
			continue
		}

		var distance *float64
		if radiusKM > 0 {
			if !candidate.HasLocation() {
				continue
			}
			d := geo.DistanceKM(refLat, refLon, *candidate.Lat, *candidate.Lon)
			if d > float64(radiusKM) {
				continue
			}
			distance = &d
		}

		items = append(items, Candidate{
			Profile:    candidate,
			Score:      scoring.Compatibility(viewer, candidate, now),
			DistanceKM: distance,
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Score != items[j].Score {
			return items[i].Score > items[j].Score
		}
		return items[i].Profile.UserID < items[j].Profile.UserID
	})

	if len(items) > s.cfg.MaxCandidates {
		items = items[:s.cfg.MaxCandidates]
	}
	return items, nil
}

// Get returns one candidate's full profile with the live score and records
// the view. The view write is fire and forget.
func (s *Service) Get(ctx context.Context, viewerID, candidateID int64) (Candidate, error) {
	if viewerID <= 0 || candidateID <= 0 || viewerID == candidateID {
		return Candidate{}, ErrValidation
	}
	if s.profiles == nil {
		return Candidate{}, fmt.Errorf("profile store is nil")
	}

	viewer, err := s.profiles.GetByUserID(ctx, viewerID)
	if err != nil {
		return Candidate{}, fmt.Errorf("load viewer profile: %w", err)
	}

	candidate, err := s.profiles.GetByUserID(ctx, candidateID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrProfileNotFound) {
			return Candidate{}, ErrCandidateNotFound
		}
		return Candidate{}, fmt.Errorf("load candidate profile: %w", err)
	}
	if !candidate.Active {
		return Candidate{}, ErrCandidateNotFound
	}

	if s.views != nil {
		_ = s.views.Insert(ctx, viewerID, candidateID, s.now())
	}

	return Candidate{
		Profile: candidate,
		Score:   scoring.Compatibility(viewer, candidate, s.now()),
	}, nil
}

// RecordView notes that the viewer saw a candidate's profile. Views feed the
// profile activity counters, failures do not block discovery.
func (s *Service) RecordView(ctx context.Context, viewerID, viewedID int64) error {
	if viewerID <= 0 || viewedID <= 0 || viewerID == viewedID {
		return ErrValidation
	}
	if s.views == nil {
		return fmt.Errorf("view store is nil")
	}
	return s.views.Insert(ctx, viewerID, viewedID, s.now())
}

func (s *Service) exclusionSet(ctx context.Context, viewerID int64) (map[int64]struct{}, error) {
	matched, err := s.matches.ListMatchedUserIDs(ctx, viewerID)
	if err != nil {
		return nil, fmt.Errorf("list matched users: %w", err)
	}

	excluded := make(map[int64]struct{}, len(matched))
	for _, id := range matched {
		excluded[id] = struct{}{}
	}

	if s.blocks != nil {
		blocked, err := s.blocks.ListBlockedUserIDs(ctx, viewerID)
		if err != nil {
			return nil, fmt.Errorf("list blocked users: %w", err)
		}
		for _, id := range blocked {
			excluded[id] = struct{}{}
		}
	}

	return excluded, nil
}

func (s *Service) locationFilter(viewer model.Profile, filters Filters) (float64, float64, int) {
	if filters.Lat != nil && filters.Lon != nil {
		radius := filters.RadiusKM
		if radius <= 0 {
			radius = s.cfg.DefaultRadiusKM
		}
		if s.cfg.MaxRadiusKM > 0 && radius > s.cfg.MaxRadiusKM {
			radius = s.cfg.MaxRadiusKM
		}
		return *filters.Lat, *filters.Lon, radius
	}

	if viewer.HasLocation() && viewer.PreferredRadiusKM > 0 {
		radius := viewer.PreferredRadiusKM
		if s.cfg.MaxRadiusKM > 0 && radius > s.cfg.MaxRadiusKM {
			radius = s.cfg.MaxRadiusKM
		}
		return *viewer.Lat, *viewer.Lon, radius
	}

	return 0, 0, 0
}

// genderEligible applies the seeking preference when either side declares
// one, and falls back to the opposite-gender rule otherwise.
func genderEligible(viewer, candidate model.Profile) bool {
	if len(viewer.SeekingGenders) > 0 || len(candidate.SeekingGenders) > 0 {
		return seeks(viewer, candidate.Gender) && seeks(candidate, viewer.Gender)
	}
	vg := strings.ToLower(strings.TrimSpace(viewer.Gender))
	cg := strings.ToLower(strings.TrimSpace(candidate.Gender))
	if vg == "" || cg == "" {
		return false
	}
	return vg != cg
}

func seeks(p model.Profile, gender string) bool {
	target := strings.ToLower(strings.TrimSpace(gender))
	if target == "" {
		return false
	}
	if len(p.SeekingGenders) == 0 {
		own := strings.ToLower(strings.TrimSpace(p.Gender))
		return own != "" && own != target
	}
	for _, g := range p.SeekingGenders {
		if strings.ToLower(strings.TrimSpace(g)) == target {
			return true
		}
	}
	return false
}
