package domain

import "errors"

// Sentinel errors for registration outcomes.
// Services and adapters wrap these so handlers can map them to HTTP status codes.
var (
	ErrUserAlreadyRegistered = errors.New("user already registered")
	ErrEmailDeliveryFailed   = errors.New("registration email delivery failed")
	ErrUserNotFound          = errors.New("user not found")
	ErrMissingDestination    = errors.New("registration email has no destination address")
	ErrBadRequest            = errors.New("bad request")
)
