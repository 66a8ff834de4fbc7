package domain

import "time"

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCompleted BookingStatus = "completed"
	BookingCanceled  BookingStatus = "canceled"
)

func ParseBookingStatus(s string) (BookingStatus, bool) {
	switch BookingStatus(s) {
	case BookingPending, BookingConfirmed, BookingCompleted, BookingCanceled:
		return BookingStatus(s), true
	default:
		return "", false
	}
}

// Booking is the projection of the externally owned booking record that
// the cancellation flow needs. The booking lifecycle itself lives in
// another service; this core only flips status to canceled and trusts
// that the booking belongs to the caller.
type Booking struct {
	ID          int64         `json:"id"`
	ClientID    int64         `json:"client_id"`
	ProviderID  int64         `json:"provider_id"`
	Status      BookingStatus `json:"status"`
	ScheduledAt time.Time     `json:"scheduled_at"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}
