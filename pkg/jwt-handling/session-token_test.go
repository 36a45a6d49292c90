package jwthandling

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/nidrip/nidrip-backend/pkg/tokencrypt"
	"github.com/nidrip/nidrip-backend/pkg/user-management/autherrors"
)

const testSignKey = "test-sign-key"

func testCryptoEngine(t *testing.T) *tokencrypt.Engine {
	t.Helper()
	engine, err := tokencrypt.NewEngine(bytes.Repeat([]byte("k"), tokencrypt.KeyLength))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return engine
}

func TestSessionTokenRoundtrip(t *testing.T) {
	engine := testCryptoEngine(t)

	tokenString, err := GenerateSessionToken(time.Hour, "acc-1", "a@x.com", "USER", "session-1", testSignKey, engine)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	claims, err := ValidateSessionToken(tokenString, testSignKey, engine)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.User.ID != "acc-1" || claims.User.Email != "a@x.com" {
		t.Errorf("unexpected user claims: %+v", claims.User)
	}
	if claims.Role != "USER" {
		t.Errorf("unexpected role: %s", claims.Role)
	}
	if claims.SessionID != "session-1" {
		t.Errorf("unexpected session id: %s", claims.SessionID)
	}
}

func TestValidateSessionTokenFailures(t *testing.T) {
	engine := testCryptoEngine(t)

	t.Run("with expired token", func(t *testing.T) {
		tokenString, err := GenerateSessionToken(-time.Minute, "acc-1", "a@x.com", "USER", "s1", testSignKey, engine)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		_, err = ValidateSessionToken(tokenString, testSignKey, engine)
		if !errors.Is(err, autherrors.ErrTokenExpired) {
			t.Errorf("expected expired error, got %v", err)
		}
	})

	t.Run("with wrong signing secret", func(t *testing.T) {
		tokenString, _ := GenerateSessionToken(time.Hour, "acc-1", "a@x.com", "USER", "s1", "other-secret", engine)
		_, err := ValidateSessionToken(tokenString, testSignKey, engine)
		if !errors.Is(err, autherrors.ErrInvalidSignature) {
			t.Errorf("expected signature error, got %v", err)
		}
	})

	t.Run("with wrong encryption key", func(t *testing.T) {
		otherEngine, _ := tokencrypt.NewEngine(bytes.Repeat([]byte("z"), tokencrypt.KeyLength))
		tokenString, _ := GenerateSessionToken(time.Hour, "acc-1", "a@x.com", "USER", "s1", testSignKey, otherEngine)
		_, err := ValidateSessionToken(tokenString, testSignKey, engine)
		if !errors.Is(err, autherrors.ErrTamperedToken) {
			t.Errorf("expected tampered error, got %v", err)
		}
	})

	t.Run("with garbage token string", func(t *testing.T) {
		_, err := ValidateSessionToken("not-a-token", testSignKey, engine)
		if !errors.Is(err, autherrors.ErrTamperedToken) {
			t.Errorf("expected tampered error, got %v", err)
		}
	})

	t.Run("with empty user id and role", func(t *testing.T) {
		tokenString, _ := GenerateSessionToken(time.Hour, "", "", "", "s1", testSignKey, engine)
		_, err := ValidateSessionToken(tokenString, testSignKey, engine)
		if !errors.Is(err, autherrors.ErrMalformedClaims) {
			t.Errorf("expected malformed claims error, got %v", err)
		}
	})
}

func TestSessionTokenAbsoluteLifetime(t *testing.T) {
	engine := testCryptoEngine(t)

	// Token issued 25h ago whose signed exp still lies in the future: the
	// hard age ceiling must reject it anyway.
	claims := SessionTokenClaims{
		"USER",
		TokenUser{ID: "acc-1", Email: "a@x.com"},
		"s1",
		jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-25 * time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSignKey))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	envelope, err := engine.Encrypt(signed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tokenString, err := tokencrypt.EncodeEnvelope(envelope)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = ValidateSessionToken(tokenString, testSignKey, engine)
	if !errors.Is(err, autherrors.ErrTokenExpired) {
		t.Errorf("expected expired error, got %v", err)
	}
}
