package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/lestercardoz11/haven/internal/domain/model"
	authsvc "github.com/lestercardoz11/haven/internal/services/auth"
	interestsvc "github.com/lestercardoz11/haven/internal/services/interests"
	"github.com/lestercardoz11/haven/internal/transport/http/dto"
	httperrors "github.com/lestercardoz11/haven/internal/transport/http/errors"
)

type InterestHandler struct {
	service *interestsvc.Service
}

func NewInterestHandler(service *interestsvc.Service) *InterestHandler {
	return &InterestHandler{service: service}
}

func (h *InterestHandler) Send(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "INTERESTS_SERVICE_UNAVAILABLE", "interests service is unavailable")
		return
	}

	var req dto.SendInterestRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	interest, err := h.service.Send(r.Context(), identity.UserID, req.ReceiverID, req.Message)
	if err != nil {
		switch {
		case errors.Is(err, interestsvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid interest request")
		case errors.Is(err, interestsvc.ErrInvalidTarget):
			writeBadRequest(w, "INVALID_TARGET", "interest target is not valid")
		case errors.Is(err, interestsvc.ErrDuplicateInterest):
			writeConflict(w, "DUPLICATE_INTEREST", "interest already sent to this user")
		case errors.Is(err, interestsvc.ErrRateLimited):
			writeRateLimited(w, err, "too many interests, slow down")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to send interest")
		}
		return
	}

	httperrors.Write(w, http.StatusCreated, toInterestResponse(interest))
}

func (h *InterestHandler) Respond(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "INTERESTS_SERVICE_UNAVAILABLE", "interests service is unavailable")
		return
	}

	interestID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || interestID <= 0 {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid interest id")
		return
	}

	var req dto.RespondInterestRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	if req.Accept {
		result, err := h.service.Accept(r.Context(), identity.UserID, interestID)
		if err != nil {
			writeRespondError(w, err)
			return
		}
		httperrors.Write(w, http.StatusOK, dto.AcceptInterestResponse{
			Interest:            toInterestResponse(result.Interest),
			ConversationID:      result.Conversation.ID,
			ConversationCreated: result.ConversationCreated,
		})
		return
	}

	interest, err := h.service.Reject(r.Context(), identity.UserID, interestID)
	if err != nil {
		writeRespondError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, toInterestResponse(interest))
}

func (h *InterestHandler) Pass(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "INTERESTS_SERVICE_UNAVAILABLE", "interests service is unavailable")
		return
	}

	var req dto.PassRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	if err := h.service.Pass(r.Context(), identity.UserID, req.TargetUserID); err != nil {
		switch {
		case errors.Is(err, interestsvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid pass request")
		case errors.Is(err, interestsvc.ErrInvalidTarget):
			writeBadRequest(w, "INVALID_TARGET", "pass target is not valid")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to pass candidate")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.OKResponse{OK: true})
}

func writeRespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, interestsvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", "invalid respond request")
	case errors.Is(err, interestsvc.ErrNotFound):
		writeNotFound(w, "NOT_FOUND", "interest not found")
	case errors.Is(err, interestsvc.ErrNotReceiver):
		writeForbidden(w, "FORBIDDEN", "only the receiver may respond to an interest")
	case errors.Is(err, interestsvc.ErrAlreadyResolved):
		writeConflict(w, "ALREADY_RESOLVED", "interest is already resolved")
	default:
		writeInternal(w, "INTERNAL_ERROR", "failed to respond to interest")
	}
}

func toInterestResponse(interest model.Interest) dto.InterestResponse {
	return dto.InterestResponse{
		ID:          interest.ID,
		SenderID:    interest.SenderID,
		ReceiverID:  interest.ReceiverID,
		Status:      string(interest.Status),
		Message:     interest.Message,
		SentAt:      interest.SentAt,
		RespondedAt: interest.RespondedAt,
	}
}
