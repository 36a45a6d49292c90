package jwthandling

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/nidrip/nidrip-backend/pkg/tokencrypt"
	"github.com/nidrip/nidrip-backend/pkg/user-management/autherrors"
)

// SessionTokenMaxLifetime is a hard ceiling on token age since issuance,
// enforced independently of the signed exp claim.
const SessionTokenMaxLifetime = 24 * time.Hour

type TokenUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Information a session token encodes
type SessionTokenClaims struct {
	Role      string    `json:"role,omitempty"`
	User      TokenUser `json:"user"`
	SessionID string    `json:"sessionId,omitempty"`
	jwt.RegisteredClaims
}

// GenerateSessionToken signs the claims with the server secret and wraps the
// signed artifact through the crypto engine. It is a pure transform: the
// caller must have persisted the fresh session id to the account before
// calling this.
func GenerateSessionToken(
	expiresIn time.Duration,
	id string,
	email string,
	role string,
	sessionID string,
	secretKey string,
	engine *tokencrypt.Engine,
) (tokenString string, err error) {
	claims := SessionTokenClaims{
		role,
		TokenUser{ID: id, Email: email},
		sessionID,
		jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secretKey))
	if err != nil {
		return "", err
	}

	envelope, err := engine.Encrypt(signed)
	if err != nil {
		return "", err
	}
	return tokencrypt.EncodeEnvelope(envelope)
}

// ValidateSessionToken decodes and decrypts the envelope, then verifies
// signature, expiry and claim shape. The session id comparison against the
// account record is the caller's job, verification here is pure computation.
func ValidateSessionToken(tokenString string, secretKey string, engine *tokencrypt.Engine) (claims *SessionTokenClaims, err error) {
	envelope, err := tokencrypt.DecodeEnvelope(tokenString)
	if err != nil {
		return nil, err
	}
	signed, err := engine.Decrypt(envelope)
	if err != nil {
		return nil, err
	}

	token, err := jwt.ParseWithClaims(signed, &SessionTokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secretKey), nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, autherrors.ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, autherrors.ErrInvalidSignature
		default:
			return nil, autherrors.ErrMalformedClaims
		}
	}

	claims, ok := token.Claims.(*SessionTokenClaims)
	if !ok || !token.Valid {
		return nil, autherrors.ErrInvalidSignature
	}
	if claims.User.ID == "" && claims.Role == "" {
		return nil, autherrors.ErrMalformedClaims
	}

	// Absolute lifetime check, independent of the signed exp claim.
	if claims.IssuedAt == nil || time.Since(claims.IssuedAt.Time) > SessionTokenMaxLifetime {
		return nil, autherrors.ErrTokenExpired
	}

	return claims, nil
}
