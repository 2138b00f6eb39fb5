// Package apperr holds the sentinel errors shared across services and
// handlers. Handlers translate these into HTTP status codes; anything not
// listed here is an internal fault and must not reach the client verbatim.
package apperr

import "errors"

var (
	// ErrForgedSignature means an inbound notification's md5sig did not
	// match the locally recomputed digest. No field of the payload may be
	// trusted after this.
	ErrForgedSignature = errors.New("invalid payment signature")

	// ErrUnknownOrder means a notification referenced an order id we never
	// issued. Forged or stale; no placeholder is created.
	ErrUnknownOrder = errors.New("order not found")

	// ErrOrderPending means the order exists but has not reached a terminal
	// state yet. Informational, not a failure.
	ErrOrderPending = errors.New("order still pending")

	// ErrUnauthorized covers missing, unknown and inactive API keys alike.
	ErrUnauthorized = errors.New("invalid or inactive api key")

	// ErrQuotaExhausted means the API key is valid but has no requests
	// left. Deliberately distinct from ErrUnauthorized so it can map to a
	// rate-limit response.
	ErrQuotaExhausted = errors.New("quota exhausted")

	ErrNotFound       = errors.New("not found")
	ErrEmailTaken     = errors.New("email already registered")
	ErrBadCredentials = errors.New("invalid credentials")
)
