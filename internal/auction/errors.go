package auction

import "errors"

// Category sentinels. Every engine failure wraps exactly one of these so
// the HTTP layer can map it with errors.Is: ErrNotFound → 404,
// ErrForbidden → 403, ErrInvalidState and ErrInvalidInput → 422.
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidState = errors.New("invalid state")
	ErrInvalidInput = errors.New("invalid input")
)
