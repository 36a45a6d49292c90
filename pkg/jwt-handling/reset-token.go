package jwthandling

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/nidrip/nidrip-backend/pkg/tokencrypt"
	"github.com/nidrip/nidrip-backend/pkg/user-management/autherrors"
)

// Information a password reset token encodes. A parallel, shorter lived
// pipeline with its own signing secret: spending a session token here (or
// the other way around) fails the signature check.
type ResetTokenClaims struct {
	AccountID string `json:"id"`
	Role      string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

func GenerateResetToken(
	expiresIn time.Duration,
	accountID string,
	role string,
	secretKey string,
	engine *tokencrypt.Engine,
) (tokenString string, err error) {
	claims := ResetTokenClaims{
		accountID,
		role,
		jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ID:        uuid.NewString(),
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

func ValidateResetToken(tokenString string, secretKey string, engine *tokencrypt.Engine) (claims *ResetTokenClaims, err error) {
	envelope, err := tokencrypt.DecodeEnvelope(tokenString)
	if err != nil {
		return nil, err
	}
	signed, err := engine.Decrypt(envelope)
	if err != nil {
		return nil, err
	}

	token, err := jwt.ParseWithClaims(signed, &ResetTokenClaims{}, func(token *jwt.Token) (interface{}, error) {
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

	claims, ok := token.Claims.(*ResetTokenClaims)
	if !ok || !token.Valid {
		return nil, autherrors.ErrInvalidSignature
	}
	if claims.AccountID == "" {
		return nil, autherrors.ErrMalformedClaims
	}
	return claims, nil
}
