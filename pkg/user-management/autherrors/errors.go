package autherrors

import (
	"errors"
	"net/http"
)

// Internal error set for the auth core. Handlers log the specific error and
// map it through StatusFor/MessageFor at the API boundary, so the response
// does not reveal which check failed.
var (
	ErrValidation         = errors.New("invalid input")
	ErrWeakPassword       = errors.New("password does not fulfill requirements")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountLocked      = errors.New("account locked")

	ErrMissingCredentials = errors.New("no token provided")
	ErrMalformedClaims    = errors.New("token claims incomplete")
	ErrTamperedToken      = errors.New("token envelope did not authenticate")
	ErrInvalidSignature   = errors.New("token signature invalid")
	ErrTokenExpired       = errors.New("token expired")
	ErrSessionRevoked     = errors.New("session revoked")
	ErrAccountNotFound    = errors.New("account not found")

	ErrInvalidOrExpiredToken = errors.New("invalid or expired token")
	ErrSamePassword          = errors.New("new password must differ from the old one")
)

// StatusFor flattens the internal error set to the external status codes.
// All token verification failures collapse to 401 on purpose.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, ErrValidation),
		errors.Is(err, ErrWeakPassword),
		errors.Is(err, ErrInvalidOrExpiredToken),
		errors.Is(err, ErrSamePassword):
		return http.StatusBadRequest
	case errors.Is(err, ErrAccountLocked):
		return http.StatusLocked
	case errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrMissingCredentials),
		errors.Is(err, ErrMalformedClaims),
		errors.Is(err, ErrTamperedToken),
		errors.Is(err, ErrInvalidSignature),
		errors.Is(err, ErrTokenExpired),
		errors.Is(err, ErrSessionRevoked),
		errors.Is(err, ErrAccountNotFound):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// MessageFor returns the boundary message for an internal error. Everything
// that maps to 401 shares one message (anti-enumeration), except the lockout
// reply which discloses the lock on purpose.
func MessageFor(err error) string {
	switch StatusFor(err) {
	case http.StatusLocked:
		return "account locked, try again later"
	case http.StatusUnauthorized:
		if errors.Is(err, ErrInvalidCredentials) {
			return "invalid email or password"
		}
		return "authentication failed"
	case http.StatusBadRequest:
		return err.Error()
	default:
		return "internal server error"
	}
}
