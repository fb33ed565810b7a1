package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lestercardoz11/haven/internal/domain/rules"
	authsvc "github.com/lestercardoz11/haven/internal/services/auth"
	candidatesvc "github.com/lestercardoz11/haven/internal/services/candidates"
	"github.com/lestercardoz11/haven/internal/services/rate"
	"github.com/lestercardoz11/haven/internal/transport/http/dto"
	httperrors "github.com/lestercardoz11/haven/internal/transport/http/errors"
)

type CandidateHandler struct {
	service *candidatesvc.Service
}

func NewCandidateHandler(service *candidatesvc.Service) *CandidateHandler {
	return &CandidateHandler{service: service}
}

func (h *CandidateHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "CANDIDATES_SERVICE_UNAVAILABLE", "candidates service is unavailable")
		return
	}

	filters, err := parseCandidateFilters(r)
	if err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid candidate filters")
		return
	}

	items, err := h.service.List(r.Context(), identity.UserID, filters)
	if err != nil {
		switch {
		case errors.Is(err, candidatesvc.ErrValidation), errors.Is(err, candidatesvc.ErrInvalidLocation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid candidates request")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to load candidates")
		}
		return
	}

	now := time.Now()
	responseItems := make([]dto.CandidateItemResponse, 0, len(items))
	for _, item := range items {
		age := 0
		if item.Profile.Birthdate != nil {
			age = rules.AgeAt(*item.Profile.Birthdate, now)
		}
		responseItems = append(responseItems, dto.CandidateItemResponse{
			Profile: dto.CandidateProfileResponse{
				UserID:           item.Profile.UserID,
				DisplayName:      item.Profile.DisplayName,
				Age:              age,
				Denomination:     item.Profile.Denomination,
				ChurchAttendance: item.Profile.ChurchAttendance,
				EducationLevel:   item.Profile.EducationLevel,
				Hobbies:          item.Profile.Hobbies,
				Languages:        item.Profile.Languages,
			},
			Score:      item.Score,
			DistanceKM: item.DistanceKM,
		})
	}

	httperrors.Write(w, http.StatusOK, dto.CandidatesResponse{Items: responseItems})
}

func (h *CandidateHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "CANDIDATES_SERVICE_UNAVAILABLE", "candidates service is unavailable")
		return
	}

	candidateID, err := strconv.ParseInt(chi.URLParam(r, "user_id"), 10, 64)
	if err != nil || candidateID <= 0 {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid candidate id")
		return
	}

	item, err := h.service.Get(r.Context(), identity.UserID, candidateID)
	if err != nil {
		switch {
		case errors.Is(err, candidatesvc.ErrCandidateNotFound):
			writeNotFound(w, "NOT_FOUND", "candidate not found")
		case errors.Is(err, candidatesvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid candidate request")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to load candidate")
		}
		return
	}

	age := 0
	if item.Profile.Birthdate != nil {
		age = rules.AgeAt(*item.Profile.Birthdate, time.Now())
	}
	httperrors.Write(w, http.StatusOK, dto.CandidateDetailResponse{
		UserID:                 item.Profile.UserID,
		DisplayName:            item.Profile.DisplayName,
		Age:                    age,
		Denomination:           item.Profile.Denomination,
		ChurchAttendance:       item.Profile.ChurchAttendance,
		MinistryInvolvement:    item.Profile.MinistryInvolvement,
		EducationLevel:         item.Profile.EducationLevel,
		Hobbies:                item.Profile.Hobbies,
		Languages:              item.Profile.Languages,
		PreferredDenominations: item.Profile.PreferredDenominations,
		FaithVerified:          item.Profile.FaithVerified,
		MarriageIntentVerified: item.Profile.MarriageIntentVerified,
		Score:                  item.Score,
	})
}

func (h *CandidateHandler) RecordView(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "CANDIDATES_SERVICE_UNAVAILABLE", "candidates service is unavailable")
		return
	}

	var req dto.ProfileViewRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	if err := h.service.RecordView(r.Context(), identity.UserID, req.ViewedUserID); err != nil {
		switch {
		case errors.Is(err, candidatesvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid profile view request")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to record profile view")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.OKResponse{OK: true})
}

func parseCandidateFilters(r *http.Request) (candidatesvc.Filters, error) {
	q := r.URL.Query()
	filters := candidatesvc.Filters{
		AgeMin:   parseIntOrDefault(q.Get("age_min"), 0),
		AgeMax:   parseIntOrDefault(q.Get("age_max"), 0),
		RadiusKM: parseIntOrDefault(q.Get("radius_km"), 0),
	}

	if raw := strings.TrimSpace(q.Get("denominations")); raw != "" {
		parts := strings.Split(raw, ",")
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				filters.Denominations = append(filters.Denominations, p)
			}
		}
	}

	latRaw := strings.TrimSpace(q.Get("lat"))
	lonRaw := strings.TrimSpace(q.Get("lon"))
	if latRaw != "" || lonRaw != "" {
		lat, err := strconv.ParseFloat(latRaw, 64)
		if err != nil {
			return candidatesvc.Filters{}, err
		}
		lon, err := strconv.ParseFloat(lonRaw, 64)
		if err != nil {
			return candidatesvc.Filters{}, err
		}
		filters.Lat = &lat
		filters.Lon = &lon
	}

	return filters, nil
}

func decodeJSON(r *http.Request, target any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(target)
}

func writeBadRequest(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusBadRequest, httperrors.APIError{Code: code, Message: message})
}

func writeUnauthorized(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusUnauthorized, httperrors.APIError{Code: code, Message: message})
}

func writeForbidden(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusForbidden, httperrors.APIError{Code: code, Message: message})
}

func writeNotFound(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusNotFound, httperrors.APIError{Code: code, Message: message})
}

func writeConflict(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusConflict, httperrors.APIError{Code: code, Message: message})
}

func writeInternal(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusInternalServerError, httperrors.APIError{Code: code, Message: message})
}

func writeRateLimited(w http.ResponseWriter, err error, message string) {
	var limited *rate.LimitedError
	retryAfter := int64(0)
	if errors.As(err, &limited) {
		retryAfter = limited.RetryAfterSec
	}
	if retryAfter > 0 {
		w.Header().Set("Retry-After", strconv.FormatInt(retryAfter, 10))
	}
	httperrors.Write(w, http.StatusTooManyRequests, httperrors.RateLimitError{
		Code:          "RATE_LIMITED",
		Message:       message,
		RetryAfterSec: retryAfter,
	})
}

func parseIntOrDefault(raw string, fallback int) int {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fallback
	}
	return value
}
