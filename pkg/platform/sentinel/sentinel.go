package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Clients, token codecs and stores
// return these (optionally wrapped) so services can translate them into domain
// errors.
//
//   - ErrNotFound: the upstream resource does not exist
//   - ErrExpired: a resource token outlived its TTL
//   - ErrScopeMismatch: a resource token was issued for another identity
//   - ErrMalformed: a resource token could not be decoded or authenticated
//   - ErrInvalidState: the operation is not valid for the current state
//   - ErrUnavailable: the upstream system or a store is temporarily unreachable
//
// For validation errors (bad input, missing fields), use pkg/domain-errors directly.
var (
	ErrNotFound      = errors.New("not found")
	ErrExpired       = errors.New("expired")
	ErrScopeMismatch = errors.New("scope mismatch")
	ErrMalformed     = errors.New("malformed")
	ErrInvalidState  = errors.New("invalid state")
	ErrUnavailable   = errors.New("unavailable")
)
