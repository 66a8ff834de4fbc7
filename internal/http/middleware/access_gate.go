package middleware

import (
	"context"
	"net/http"

	"github.com/craftlink/marketplace-api/internal/domain"
	"github.com/craftlink/marketplace-api/internal/http/response"
)

// BanChecker is the slice of the ban ledger the gate needs.
type BanChecker interface {
	CheckBan(ctx context.Context, userID int64) domain.BanStatus
}

// AccessGate rejects mutating requests from banned users before the
// underlying operation runs. Read-only routes must not be wrapped:
// banned users can still browse.
func AccessGate(checker BanChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := Claims(r)
			if claims == nil {
				response.Unauthorized(w, "authentication required")
				return
			}

			status := checker.CheckBan(r.Context(), claims.Sub)
			if status.Banned {
				response.Banned(w, status)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
