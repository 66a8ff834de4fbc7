package handlers

import (
	"encoding/json"
	"net/http"

	mw "github.com/craftlink/marketplace-api/internal/http/middleware"
	"github.com/craftlink/marketplace-api/internal/service"
)

type TrustHandler struct {
	Ledger service.BanLedger
}

func NewTrustHandler(ledger service.BanLedger) *TrustHandler {
	return &TrustHandler{Ledger: ledger}
}

// MyBanStatus lets a caller see their own standing. Read-only, so it
// bypasses the access gate: banned users may check when the ban lifts.
func (h *TrustHandler) MyBanStatus(w http.ResponseWriter, r *http.Request) {
	status := h.Ledger.CheckBan(r.Context(), mw.CallerID(r))

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(status)
}
