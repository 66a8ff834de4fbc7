package handlers

import (
	"errors"
	"net/http"

	"github.com/craftlink/marketplace-api/internal/domain"
	"github.com/craftlink/marketplace-api/internal/http/response"
	"github.com/craftlink/marketplace-api/pkg/logger"
)

// writeServiceError maps service errors onto the HTTP taxonomy: policy
// rejections and not-found are returned with their reason, anything else
// is logged and surfaced as an opaque internal failure.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotSelf):
		response.Forbidden(w, err.Error())
	case errors.Is(err, domain.ErrNotProvider):
		response.Forbidden(w, err.Error())
	case errors.Is(err, domain.ErrUnknownPlan):
		response.BadRequest(w, err.Error())
	case errors.Is(err, domain.ErrAlreadySubscribed):
		response.Conflict(w, err.Error())
	case errors.Is(err, domain.ErrNoActiveSubscription):
		response.Conflict(w, err.Error())
	case errors.Is(err, domain.ErrBookingNotCancellable):
		response.Conflict(w, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		response.NotFound(w, err.Error())
	default:
		logger.ErrorContext(r.Context(), "Internal failure", "error", err, "path", r.URL.Path)
		response.InternalError(w, "internal error")
	}
}
