package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lestercardoz11/haven/internal/domain/model"
)

var ErrProfileNotFound = errors.New("profile not found")

type ProfileRepo struct {
	pool *pgxpool.Pool
}

func NewProfileRepo(pool *pgxpool.Pool) *ProfileRepo {
	return &ProfileRepo{pool: pool}
}

// CandidateQuery is the SQL-level slice of the eligibility predicate: the
// parts that are cheap to push down. Gender/seeking, geo radius and scoring
// stay in the candidates service.
type CandidateQuery struct {
	ViewerUserID   int64
	BornOnOrAfter  time.Time
	BornOnOrBefore time.Time
	Denominations  []string
	Limit          int
}

const profileColumns = `
	user_id,
	display_name,
	gender,
	COALESCE(seeking_genders, '{}'),
	birthdate,
	lat,
	lon,
	COALESCE(denomination, ''),
	COALESCE(church_attendance, ''),
	COALESCE(ministry_involvement, '{}'),
	COALESCE(education_level, ''),
	COALESCE(hobbies, '{}'),
	COALESCE(languages, '{}'),
	COALESCE(preferred_age_min, 0),
	COALESCE(preferred_age_max, 0),
	COALESCE(preferred_radius_km, 0),
	COALESCE(preferred_denominations, '{}'),
	must_share_denomination,
	faith_verified,
	marriage_intent_verified,
	active,
	created_at,
	updated_at`

func (r *ProfileRepo) GetByUserID(ctx context.Context, userID int64) (model.Profile, error) {
	if userID <= 0 {
		return model.Profile{}, fmt.Errorf("invalid user id")
	}
	if r.pool == nil {
		return model.Profile{}, fmt.Errorf("postgres pool is nil")
	}

	row := r.pool.QueryRow(ctx, `
SELECT `+profileColumns+`
FROM profiles
WHERE user_id = $1
`, userID)

	profile, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Profile{}, ErrProfileNotFound
		}
		return model.Profile{}, fmt.Errorf("get profile: %w", err)
	}

	return profile, nil
}

// ListEligible returns active, fully verified profiles inside the birthdate
// window, excluding the viewer. Exclusion-set and block filtering happen in
// the candidates service so the predicate stays testable in one place.
func (r *ProfileRepo) ListEligible(ctx context.Context, q CandidateQuery) ([]model.Profile, error) {
	if q.ViewerUserID <= 0 {
		return nil, fmt.Errorf("invalid viewer id")
	}
	if q.Limit <= 0 {
		q.Limit = 500
	}
	if r.pool == nil {
		return []model.Profile{}, nil
	}

	sql := `
SELECT ` + profileColumns + `
FROM profiles
WHERE
	active = TRUE
	AND faith_verified = TRUE
	AND marriage_intent_verified = TRUE
	AND user_id <> $1
	AND birthdate IS NOT NULL
	AND birthdate >= $2
	AND birthdate <= $3`
	args := []any{q.ViewerUserID, q.BornOnOrAfter, q.BornOnOrBefore}

	if len(q.Denominations) > 0 {
		sql += `
	AND denomination = ANY($4)`
		args = append(args, q.Denominations)
	}

	sql += fmt.Sprintf(`
ORDER BY user_id
LIMIT $%d`, len(args)+1)
	args = append(args, q.Limit)

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list eligible profiles: %w", err)
	}
	defer rows.Close()

	items := make([]model.Profile, 0, q.Limit)
	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan eligible profile: %w", err)
		}
		items = append(items, profile)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate eligible profiles: %w", rows.Err())
	}

	return items, nil
}

func (r *ProfileRepo) SaveLocation(ctx context.Context, userID int64, lat, lon float64, at time.Time) error {
	if userID <= 0 {
		return fmt.Errorf("invalid user id")
	}
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	if _, err := r.pool.Exec(ctx, `
UPDATE profiles
SET lat = $2, lon = $3, updated_at = $4
WHERE user_id = $1
`, userID, lat, lon, at); err != nil {
		return fmt.Errorf("save profile location: %w", err)
	}

	return nil
}

type profileScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row profileScanner) (model.Profile, error) {
	var p model.Profile
	err := row.Scan(
		&p.UserID,
		&p.DisplayName,
		&p.Gender,
		&p.SeekingGenders,
		&p.Birthdate,
		&p.Lat,
		&p.Lon,
		&p.Denomination,
		&p.ChurchAttendance,
		&p.MinistryInvolvement,
		&p.EducationLevel,
		&p.Hobbies,
		&p.Languages,
		&p.PreferredAgeMin,
		&p.PreferredAgeMax,
		&p.PreferredRadiusKM,
		&p.PreferredDenominations,
		&p.MustShareDenomination,
		&p.FaithVerified,
		&p.MarriageIntentVerified,
		&p.Active,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}
