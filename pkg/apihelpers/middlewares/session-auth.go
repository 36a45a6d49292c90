package middlewares

import (
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"

	jwthandling "github.com/nidrip/nidrip-backend/pkg/jwt-handling"
	"github.com/nidrip/nidrip-backend/pkg/tokencrypt"
	"github.com/nidrip/nidrip-backend/pkg/user-management/autherrors"
	userTypes "github.com/nidrip/nidrip-backend/pkg/user-management/types"
)

// AccountLookup resolves the account a verified token refers to.
type AccountLookup interface {
	GetAccountByID(role string, id string) (userTypes.Account, error)
}

const (
	HeaderAuthorization   = "Authorization"
	AccessTokenCookieName = "accessToken"
)

// SessionAuth extracts the session token from the request, verifies it and
// checks that the session it references is still the active one on the
// account. The verified claims and the account are attached to the context.
func SessionAuth(tokenSignKey string, engine *tokencrypt.Engine, accounts AccountLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := extractSessionToken(c)
		if err != nil {
			slog.Warn("no session token found", slog.String("path", c.Request.URL.Path))
			c.AbortWithStatusJSON(autherrors.StatusFor(err), gin.H{"error": autherrors.MessageFor(err)})
			return
		}

		claims, err := jwthandling.ValidateSessionToken(token, tokenSignKey, engine)
		if err != nil {
			slog.Warn("session token validation failed", slog.String("error", err.Error()), slog.String("path", c.Request.URL.Path))
			c.AbortWithStatusJSON(autherrors.StatusFor(err), gin.H{"error": autherrors.MessageFor(err)})
			return
		}

		account, err := accounts.GetAccountByID(claims.Role, claims.User.ID)
		if err != nil {
			slog.Warn("account for session token not found", slog.String("accountID", claims.User.ID))
			c.AbortWithStatusJSON(autherrors.StatusFor(autherrors.ErrAccountNotFound), gin.H{"error": autherrors.MessageFor(autherrors.ErrAccountNotFound)})
			return
		}

		if account.SessionID == "" || account.SessionID != claims.SessionID {
			slog.Warn("session token does not match active session", slog.String("accountID", claims.User.ID))
			c.AbortWithStatusJSON(autherrors.StatusFor(autherrors.ErrSessionRevoked), gin.H{"error": autherrors.MessageFor(autherrors.ErrSessionRevoked)})
			return
		}

		c.Set("validatedToken", claims)
		c.Set("currentAccount", account)
		c.Next()
	}
}

func extractSessionToken(c *gin.Context) (string, error) {
	tokens, ok := c.Request.Header[HeaderAuthorization]
	if ok && len(tokens) > 0 {
		token := strings.TrimPrefix(tokens[0], "Bearer ")
		if len(token) > 0 {
			return token, nil
		}
	}

	// fall back to the session cookie
	cookie, err := c.Cookie(AccessTokenCookieName)
	if err == nil && len(cookie) > 0 {
		return cookie, nil
	}

	return "", autherrors.ErrMissingCredentials
}
