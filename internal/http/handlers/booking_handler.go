package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/craftlink/marketplace-api/internal/http/middleware"
	"github.com/craftlink/marketplace-api/internal/http/response"
	"github.com/craftlink/marketplace-api/internal/repo/postgres"
	"github.com/craftlink/marketplace-api/internal/service"
	"github.com/craftlink/marketplace-api/pkg/logger"
)

type BookingHandler struct {
	Bookings postgres.BookingRepo
	Ledger   service.BanLedger
}

func NewBookingHandler(bookings postgres.BookingRepo, ledger service.BanLedger) *BookingHandler {
	return &BookingHandler{Bookings: bookings, Ledger: ledger}
}

type cancelBookingReq struct {
	Reason string `json:"reason"`
}

// Cancel flips the booking to canceled and feeds the ban ledger. The
// booking lifecycle itself is owned elsewhere; ownership of the booking
// is trusted from the caller per the collaboration contract.
func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "invalid id")
		return
	}

	var in cancelBookingReq
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&in)
	}

	b, err := h.Bookings.GetByID(r.Context(), id)
	if err != nil {
		logger.ErrorContext(r.Context(), "Failed to load booking", "error", err, "booking_id", id)
		response.InternalError(w, "internal error")
		return
	}
	if b == nil {
		response.NotFound(w, "booking not found")
		return
	}

	ok, err := h.Bookings.Cancel(r.Context(), id)
	if err != nil {
		logger.ErrorContext(r.Context(), "Failed to cancel booking", "error", err, "booking_id", id)
		response.InternalError(w, "internal error")
		return
	}
	if !ok {
		response.Conflict(w, "booking cannot be canceled")
		return
	}

	result, err := h.Ledger.RecordCancellation(r.Context(), middleware.CallerID(r), id, in.Reason)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(result)
}
