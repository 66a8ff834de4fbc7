package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/craftlink/marketplace-api/internal/domain"
	mw "github.com/craftlink/marketplace-api/internal/http/middleware"
	"github.com/craftlink/marketplace-api/internal/http/response"
	"github.com/craftlink/marketplace-api/internal/service"
)

type SubscriptionHandler struct {
	Subs service.SubscriptionService
}

func NewSubscriptionHandler(subs service.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{Subs: subs}
}

func providerParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil
}

func (h *SubscriptionHandler) Create(w http.ResponseWriter, r *http.Request) {
	id, ok := providerParam(r)
	if !ok {
		response.BadRequest(w, "invalid id")
		return
	}

	var in domain.CreateSubscriptionReq
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.BadRequest(w, "invalid json")
		return
	}
	if in.PlanType == "" {
		response.BadRequest(w, "plan_type is required")
		return
	}

	sub, err := h.Subs.Create(r.Context(), id, mw.CallerID(r), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(sub)
}

func (h *SubscriptionHandler) Status(w http.ResponseWriter, r *http.Request) {
	id, ok := providerParam(r)
	if !ok {
		response.BadRequest(w, "invalid id")
		return
	}

	sub, err := h.Subs.Status(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if sub == nil {
		response.NotFound(w, "provider has never subscribed")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(sub)
}

func (h *SubscriptionHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := providerParam(r)
	if !ok {
		response.BadRequest(w, "invalid id")
		return
	}

	sub, err := h.Subs.Cancel(r.Context(), id, mw.CallerID(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(sub)
}

func (h *SubscriptionHandler) UpgradeTier(w http.ResponseWriter, r *http.Request) {
	id, ok := providerParam(r)
	if !ok {
		response.BadRequest(w, "invalid id")
		return
	}

	callerID := mw.CallerID(r)
	profile, err := h.Subs.UpgradeTier(r.Context(), id, callerID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := service.SanitizeForViewer(*profile, callerID)
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}
