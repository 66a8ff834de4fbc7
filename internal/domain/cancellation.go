package domain

import "time"

// CancellationRecord logs one booking cancellation. Records are written
// once and only ever read in aggregate for strike counting.
type CancellationRecord struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	BookingID int64     `json:"booking_id"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}
