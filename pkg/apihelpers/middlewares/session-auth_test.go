package middlewares

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	jwthandling "github.com/nidrip/nidrip-backend/pkg/jwt-handling"
	"github.com/nidrip/nidrip-backend/pkg/tokencrypt"
	userTypes "github.com/nidrip/nidrip-backend/pkg/user-management/types"
)

const testSignKey = "test-sign-key"

type stubAccountStore struct {
	account userTypes.Account
	err     error
}

func (s *stubAccountStore) GetAccountByID(role string, id string) (userTypes.Account, error) {
	if s.err != nil {
		return userTypes.Account{}, s.err
	}
	return s.account, nil
}

func newTestEngine(t *testing.T, b byte) *tokencrypt.Engine {
	t.Helper()
	engine, err := tokencrypt.NewEngine(bytes.Repeat([]byte{b}, tokencrypt.KeyLength))
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}
	return engine
}

func newProtectedRouter(engine *tokencrypt.Engine, accounts AccountLookup) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/protected", SessionAuth(testSignKey, engine, accounts), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return router
}

func TestSessionAuthRejections(t *testing.T) {
	engine := newTestEngine(t, 'a')
	// nil account store is fine here, every request must be rejected
	// before the account lookup
	router := newProtectedRouter(engine, nil)

	t.Run("without token", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
		router.ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("unexpected status: %d", w.Code)
		}
	})

	t.Run("with garbage bearer token", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer not-a-token")
		router.ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("unexpected status: %d", w.Code)
		}
	})

	t.Run("with expired token from cookie", func(t *testing.T) {
		token, err := jwthandling.GenerateSessionToken(-time.Hour, "uid", "user@example.org", "USER", "session", testSignKey, engine)
		if err != nil {
			t.Fatalf("failed to generate token: %v", err)
		}

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
		req.AddCookie(&http.Cookie{Name: AccessTokenCookieName, Value: token})
		router.ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("unexpected status: %d", w.Code)
		}
	})

	t.Run("with token encrypted under a different key", func(t *testing.T) {
		otherEngine := newTestEngine(t, 'b')
		token, err := jwthandling.GenerateSessionToken(time.Hour, "uid", "user@example.org", "USER", "session", testSignKey, otherEngine)
		if err != nil {
			t.Fatalf("failed to generate token: %v", err)
		}

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		router.ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("unexpected status: %d", w.Code)
		}
	})
}

func TestSessionAuthActiveSessionCheck(t *testing.T) {
	engine := newTestEngine(t, 'a')

	validToken := func(t *testing.T, sessionID string) string {
		t.Helper()
		token, err := jwthandling.GenerateSessionToken(time.Hour, "uid", "user@example.org", "USER", sessionID, testSignKey, engine)
		if err != nil {
			t.Fatalf("failed to generate token: %v", err)
		}
		return token
	}

	callProtected := func(router *gin.Engine, token string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		router.ServeHTTP(w, req)
		return w
	}

	t.Run("matching session passes", func(t *testing.T) {
		store := &stubAccountStore{account: userTypes.Account{SessionID: "session-1"}}
		router := newProtectedRouter(engine, store)

		w := callProtected(router, validToken(t, "session-1"))
		if w.Code != http.StatusOK {
			t.Errorf("unexpected status: %d", w.Code)
		}
	})

	t.Run("rotated session is rejected", func(t *testing.T) {
		// session id on the account changed after the token was issued
		store := &stubAccountStore{account: userTypes.Account{SessionID: "session-2"}}
		router := newProtectedRouter(engine, store)

		w := callProtected(router, validToken(t, "session-1"))
		if w.Code != http.StatusUnauthorized {
			t.Errorf("unexpected status: %d", w.Code)
		}
	})

	t.Run("cleared session is rejected", func(t *testing.T) {
		store := &stubAccountStore{account: userTypes.Account{SessionID: ""}}
		router := newProtectedRouter(engine, store)

		w := callProtected(router, validToken(t, "session-1"))
		if w.Code != http.StatusUnauthorized {
			t.Errorf("unexpected status: %d", w.Code)
		}
	})

	t.Run("missing account is rejected", func(t *testing.T) {
		store := &stubAccountStore{err: errors.New("not found")}
		router := newProtectedRouter(engine, store)

		w := callProtected(router, validToken(t, "session-1"))
		if w.Code != http.StatusUnauthorized {
			t.Errorf("unexpected status: %d", w.Code)
		}
	})
}
