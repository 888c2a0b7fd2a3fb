package event

import "errors"

var (
	ErrEventNotFound = errors.New("event not found")
	ErrItemNotFound  = errors.New("signup item not found")
)

var (
	ErrValidation      = errors.New("validation error")
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")
)

var (
	// ErrMalformedRecord marks a remote record the decoder rejected. It is
	// absorbed at the sync layer and never aborts a snapshot batch.
	ErrMalformedRecord = errors.New("malformed event record")

	ErrRemoteUnavailable = errors.New("remote store unavailable")
)
