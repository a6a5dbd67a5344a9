package http

import (
	"net/http"

	"assettrack/internal/domain"
	"assettrack/internal/dto"
	"assettrack/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type assetHandlers struct {
	assets service.AssetService
}

// assetID parses the path parameter into the canonical identifier type; every
// id spelling from the client funnels through here.
func assetID(r *http.Request) (domain.AssetID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, domain.ErrValidation
	}
	return id, nil
}

func (h *assetHandlers) list(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		writeError(w, r, domain.ErrInvalidToken)
		return
	}
	res, err := h.assets.List(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *assetHandlers) create(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		writeError(w, r, domain.ErrInvalidToken)
		return
	}
	var req dto.AssetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.assets.Create(r.Context(), claims.UserID, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *assetHandlers) get(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		writeError(w, r, domain.ErrInvalidToken)
		return
	}
	id, err := assetID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.assets.Get(r.Context(), claims.UserID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *assetHandlers) update(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		writeError(w, r, domain.ErrInvalidToken)
		return
	}
	id, err := assetID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req dto.AssetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.assets.Update(r.Context(), claims.UserID, id, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *assetHandlers) delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		writeError(w, r, domain.ErrInvalidToken)
		return
	}
	id, err := assetID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.assets.Delete(r.Context(), claims.UserID, id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
