package domain

import "errors"

// Policy rejections: preconditions not met, safe to show the caller.
var (
	ErrNotSelf               = errors.New("operation is self-service only")
	ErrNotProvider           = errors.New("user is not registered as a provider")
	ErrAlreadySubscribed     = errors.New("an active subscription already exists")
	ErrNoActiveSubscription  = errors.New("no active subscription")
	ErrUnknownPlan           = errors.New("unknown subscription plan")
	ErrBookingNotCancellable = errors.New("booking cannot be canceled")
)

// ErrNotFound covers absent providers, bookings, and subscriptions.
var ErrNotFound = errors.New("not found")
