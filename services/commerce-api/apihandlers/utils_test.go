package apihandlers

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	mw "github.com/nidrip/nidrip-backend/pkg/apihelpers/middlewares"
	userTypes "github.com/nidrip/nidrip-backend/pkg/user-management/types"
)

func cookieByName(t *testing.T, cookies []*http.Cookie, name string) *http.Cookie {
	t.Helper()
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("cookie %s not set", name)
	return nil
}

func TestSessionCookieName(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := &HttpEndpoints{tokenExpiresIn: time.Hour}

	t.Run("set uses the name the extractor reads", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		h.setSessionCookie(c, "some-token")

		cookie := cookieByName(t, w.Result().Cookies(), mw.AccessTokenCookieName)
		if cookie.Value != "some-token" {
			t.Errorf("unexpected cookie value: %s", cookie.Value)
		}
		if !cookie.HttpOnly {
			t.Error("cookie should be httpOnly")
		}
	})

	t.Run("clear expires the same cookie", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		h.clearSessionCookie(c)

		cookie := cookieByName(t, w.Result().Cookies(), mw.AccessTokenCookieName)
		if cookie.Value != "" || cookie.MaxAge >= 0 {
			t.Errorf("cookie not cleared: value=%q maxAge=%d", cookie.Value, cookie.MaxAge)
		}
	})
}

func TestResetEmailPayloadValidity(t *testing.T) {
	account := userTypes.Account{Name: "Ada", Email: "ada@example.org"}
	payload := resetEmailPayload(account, "reset-token")

	if payload["token"] != "reset-token" {
		t.Errorf("unexpected token in payload: %s", payload["token"])
	}
	if payload["name"] != "Ada" {
		t.Errorf("unexpected name in payload: %s", payload["name"])
	}
	// validUntil must track the token lifetime
	want := strconv.Itoa(int(RESET_TOKEN_TTL.Hours()))
	if payload["validUntil"] != want {
		t.Errorf("validUntil %s does not match token lifetime %s", payload["validUntil"], want)
	}
}
