package auth

import "errors"

// Verification failure taxonomy. Callers map these to HTTP statuses at
// the edge; the distinction matters for logging and tests, the caller
// response is 401 for all of them.
var (
	// ErrMissingToken indicates no bearer token was presented.
	ErrMissingToken = errors.New("missing bearer token")
	// ErrMalformedToken indicates the token does not split into three
	// non-empty segments or carries an undecodable payload.
	ErrMalformedToken = errors.New("malformed token")
	// ErrBadSignature indicates the recomputed HMAC does not match.
	ErrBadSignature = errors.New("invalid token signature")
	// ErrExpired indicates the embedded expiry is in the past.
	ErrExpired = errors.New("token expired")
	// ErrWrongKind indicates a syntactically valid token of a kind other
	// than anonymous.
	ErrWrongKind = errors.New("unexpected token kind")
)
