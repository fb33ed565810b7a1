package handlers

import (
	"context"
	"net/http"
	"time"

	authsvc "github.com/lestercardoz11/haven/internal/services/auth"
	geosvc "github.com/lestercardoz11/haven/internal/services/geo"
	"github.com/lestercardoz11/haven/internal/transport/http/dto"
	httperrors "github.com/lestercardoz11/haven/internal/transport/http/errors"
)

type LocationStore interface {
	SaveLocation(ctx context.Context, userID int64, lat, lon float64, at time.Time) error
}

type LocationHandler struct {
	store LocationStore
}

func NewLocationHandler(store LocationStore) *LocationHandler {
	return &LocationHandler{store: store}
}

func (h *LocationHandler) Save(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.store == nil {
		writeInternal(w, "LOCATION_STORE_UNAVAILABLE", "location store is unavailable")
		return
	}

	var req dto.LocationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	if err := geosvc.ValidateCoordinates(req.Lat, req.Lon); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "coordinates are out of range")
		return
	}

	if err := h.store.SaveLocation(r.Context(), identity.UserID, req.Lat, req.Lon, time.Now()); err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to save location")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.OKResponse{OK: true})
}
