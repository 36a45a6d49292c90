package apihandlers

import (
	"log/slog"
	"math/rand"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	mw "github.com/nidrip/nidrip-backend/pkg/apihelpers/middlewares"
	jwthandling "github.com/nidrip/nidrip-backend/pkg/jwt-handling"
	emailsending "github.com/nidrip/nidrip-backend/pkg/messaging/email-sending"
	userTypes "github.com/nidrip/nidrip-backend/pkg/user-management/types"
)

func randomWait(minTimeSec int, maxTimeSec int) {
	time.Sleep(time.Duration(rand.Intn(maxTimeSec-minTimeSec)+minTimeSec) * time.Second)
}

// issueSessionToken signs and encrypts a token for the account. The fresh
// session id must already be stored on the account record.
func (h *HttpEndpoints) issueSessionToken(account userTypes.Account, sessionID string) (string, error) {
	return jwthandling.GenerateSessionToken(
		h.tokenExpiresIn,
		account.ID.Hex(),
		account.Email,
		account.Role,
		sessionID,
		h.tokenSignKey,
		h.cryptoEngine,
	)
}

func (h *HttpEndpoints) setSessionCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(
		mw.AccessTokenCookieName,
		token,
		int(h.tokenExpiresIn.Seconds()),
		"/",
		"",
		h.useSecureCookies,
		true,
	)
}

func (h *HttpEndpoints) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(mw.AccessTokenCookieName, "", -1, "/", "", h.useSecureCookies, true)
}

func (h *HttpEndpoints) sendSimpleEmail(
	to []string, messageType string, payload map[string]string, useLowPrio bool,
) {
	if err := h.sendSimpleEmailWithError(to, messageType, payload, useLowPrio); err != nil {
		slog.Error("failed to send email", slog.String("error", err.Error()))
	}
}

func (h *HttpEndpoints) sendSimpleEmailWithError(
	to []string, messageType string, payload map[string]string, useLowPrio bool,
) error {
	return emailsending.SendInstantEmailByTemplate(
		to,
		messageType,
		payload,
		useLowPrio,
	)
}
