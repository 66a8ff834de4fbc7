package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/craftlink/marketplace-api/internal/domain"
	mw "github.com/craftlink/marketplace-api/internal/http/middleware"
	"github.com/craftlink/marketplace-api/internal/http/response"
	"github.com/craftlink/marketplace-api/internal/repo/postgres"
	"github.com/craftlink/marketplace-api/internal/service"
	"github.com/craftlink/marketplace-api/pkg/logger"
)

type ProviderHandler struct {
	Providers postgres.ProviderRepo
}

func NewProviderHandler(providers postgres.ProviderRepo) *ProviderHandler {
	return &ProviderHandler{Providers: providers}
}

func (h *ProviderHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	ps, err := h.Providers.List(r.Context(), limit, offset)
	if err != nil {
		logger.ErrorContext(r.Context(), "Failed to list providers", "error", err)
		response.InternalError(w, "internal error")
		return
	}

	out := service.SanitizeAllForViewer(ps, mw.CallerID(r))
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}

func (h *ProviderHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "invalid id")
		return
	}

	p, err := h.Providers.GetByID(r.Context(), id)
	if err != nil {
		logger.ErrorContext(r.Context(), "Failed to load provider", "error", err, "provider_id", id)
		response.InternalError(w, "internal error")
		return
	}
	if p == nil {
		response.NotFound(w, "provider not found")
		return
	}

	out := service.SanitizeForViewer(*p, mw.CallerID(r))
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}

func (h *ProviderHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	callerID := mw.CallerID(r)

	p, err := h.Providers.GetByUserID(r.Context(), callerID)
	if err != nil {
		logger.ErrorContext(r.Context(), "Failed to load provider", "error", err, "user_id", callerID)
		response.InternalError(w, "internal error")
		return
	}
	if p == nil {
		response.Forbidden(w, domain.ErrNotProvider.Error())
		return
	}

	var patch domain.ProviderPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		response.BadRequest(w, "invalid json")
		return
	}

	updated, err := h.Providers.Update(r.Context(), p.ID, patch)
	if err != nil {
		logger.ErrorContext(r.Context(), "Failed to update provider", "error", err, "provider_id", p.ID)
		response.InternalError(w, "internal error")
		return
	}

	out := service.SanitizeForViewer(*updated, callerID)
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}
