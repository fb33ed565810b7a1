package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/lestercardoz11/haven/internal/pkg/validate"
	authsvc "github.com/lestercardoz11/haven/internal/services/auth"
	mediasvc "github.com/lestercardoz11/haven/internal/services/media"
	"github.com/lestercardoz11/haven/internal/transport/http/dto"
	httperrors "github.com/lestercardoz11/haven/internal/transport/http/errors"
)

type MediaHandler struct {
	service *mediasvc.Service
}

func NewMediaHandler(service *mediasvc.Service) *MediaHandler {
	return &MediaHandler{service: service}
}

func (h *MediaHandler) MessageImageUpload(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "MEDIA_SERVICE_UNAVAILABLE", "media service is unavailable")
		return
	}

	var req dto.MessageImageUploadRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}
	if !validate.Required(req.ContentType) {
		writeBadRequest(w, "VALIDATION_ERROR", "content_type is required")
		return
	}

	ticket, err := h.service.PrepareMessageImageUpload(r.Context(), identity.UserID, req.ContentType)
	if err != nil {
		switch {
		case errors.Is(err, mediasvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid upload request")
		case errors.Is(err, mediasvc.ErrUnsupportedContent):
			writeBadRequest(w, "UNSUPPORTED_CONTENT_TYPE", "content type is not supported")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to prepare upload")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.MessageImageUploadResponse{
		ObjectKey:    ticket.ObjectKey,
		UploadURL:    ticket.UploadURL,
		ExpiresInSec: int64(ticket.ExpiresIn / time.Second),
	})
}
