package response

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/craftlink/marketplace-api/internal/domain"
)

// ErrorResponse represents a structured JSON error response
type ErrorResponse struct {
	Error   string   `json:"error"`
	Code    string   `json:"code,omitempty"`
	Details string   `json:"details,omitempty"`
	Ban     *BanInfo `json:"ban,omitempty"`
}

// BanInfo carries the ban metadata a rejected caller needs to explain
// the wait to the end user.
type BanInfo struct {
	Kind      string     `json:"kind"`
	Reason    string     `json:"reason,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// WriteError writes a structured JSON error response
func WriteError(w http.ResponseWriter, statusCode int, message string, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	errResp := ErrorResponse{
		Error: message,
		Code:  code,
	}

	if err := json.NewEncoder(w).Encode(errResp); err != nil {
		log.Printf("failed to encode error response: %v", err)
	}
}

// Common error codes
const (
	CodeInvalidInput  = "INVALID_INPUT"
	CodeUnauthorized  = "UNAUTHORIZED"
	CodeForbidden     = "FORBIDDEN"
	CodeNotFound      = "NOT_FOUND"
	CodeConflict      = "CONFLICT"
	CodeBanned        = "BANNED"
	CodeInternalError = "INTERNAL_ERROR"
)

// Convenience functions for common errors
func BadRequest(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, message, CodeInvalidInput)
}

func Unauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, message, CodeUnauthorized)
}

func Forbidden(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusForbidden, message, CodeForbidden)
}

func NotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, message, CodeNotFound)
}

func Conflict(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusConflict, message, CodeConflict)
}

func InternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, message, CodeInternalError)
}

// Banned rejects a write attempt from a banned user, attaching the ban
// kind, a human-readable message and the expiry for temporary bans.
func Banned(w http.ResponseWriter, status domain.BanStatus) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)

	message := "Your account is permanently banned."
	if status.Kind == domain.BanTemporary && status.ExpiresAt != nil {
		message = "Your account is temporarily banned until " + status.ExpiresAt.Format(time.RFC3339) + "."
	}

	errResp := ErrorResponse{
		Error: message,
		Code:  CodeBanned,
		Ban: &BanInfo{
			Kind:      string(status.Kind),
			Reason:    status.Reason,
			ExpiresAt: status.ExpiresAt,
		},
	}

	if err := json.NewEncoder(w).Encode(errResp); err != nil {
		log.Printf("failed to encode error response: %v", err)
	}
}
