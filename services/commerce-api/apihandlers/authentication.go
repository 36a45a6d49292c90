package apihandlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	mw "github.com/nidrip/nidrip-backend/pkg/apihelpers/middlewares"
	jwthandling "github.com/nidrip/nidrip-backend/pkg/jwt-handling"
	emailTypes "github.com/nidrip/nidrip-backend/pkg/messaging/types"
	"github.com/nidrip/nidrip-backend/pkg/user-management/autherrors"
	"github.com/nidrip/nidrip-backend/pkg/user-management/lockout"
	"github.com/nidrip/nidrip-backend/pkg/user-management/pwhash"
	userTypes "github.com/nidrip/nidrip-backend/pkg/user-management/types"
	umUtils "github.com/nidrip/nidrip-backend/pkg/user-management/utils"
)

func (h *HttpEndpoints) AddAuthAPI(rg *gin.RouterGroup) {
	authGroup := rg.Group("/auth")
	{
		authGroup.POST("/signup", mw.RequirePayload(), h.signup)
		authGroup.POST("/login", mw.RequirePayload(), h.loginAsUser)

		authGroup.GET("/token/validate", h.sessionAuth(), h.validateToken)
		authGroup.POST("/logout", h.sessionAuth(), h.logout)
		authGroup.DELETE("/account", h.sessionAuth(), h.deleteAccount)
	}

	adminAuthGroup := rg.Group("/admin/auth")
	{
		adminAuthGroup.POST("/login", mw.RequirePayload(), h.loginAsAdmin)
	}
}

func (h *HttpEndpoints) sessionAuth() gin.HandlerFunc {
	return mw.SessionAuth(h.tokenSignKey, h.cryptoEngine, h.accountDBConn)
}

type LoginWithEmailReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *HttpEndpoints) loginAsUser(c *gin.Context) {
	h.loginWithEmail(c, userTypes.ACCOUNT_ROLE_USER)
}

func (h *HttpEndpoints) loginAsAdmin(c *gin.Context) {
	h.loginWithEmail(c, userTypes.ACCOUNT_ROLE_ADMIN)
}

func (h *HttpEndpoints) loginWithEmail(c *gin.Context, role string) {
	var req LoginWithEmailReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error("failed to bind request", slog.String("error", err.Error()))
		c.JSON(autherrors.StatusFor(autherrors.ErrValidation), gin.H{"error": autherrors.MessageFor(autherrors.ErrValidation)})
		return
	}

	if req.Email == "" || req.Password == "" {
		slog.Error("missing required fields")
		c.JSON(autherrors.StatusFor(autherrors.ErrValidation), gin.H{"error": autherrors.MessageFor(autherrors.ErrValidation)})
		return
	}

	req.Email = umUtils.SanitizeEmail(req.Email)

	account, err := h.accountDBConn.GetAccountByEmail(role, req.Email)
	if err != nil {
		slog.Warn("login attempt with wrong email address", slog.String("email", req.Email), slog.String("role", role), slog.String("error", err.Error()))
		randomWait(5, 10)
		c.JSON(autherrors.StatusFor(autherrors.ErrInvalidCredentials), gin.H{"error": autherrors.MessageFor(autherrors.ErrInvalidCredentials)})
		return
	}

	now := time.Now()
	if lockout.IsLocked(account, now) {
		slog.Warn("login attempt on locked account", slog.String("accountID", account.ID.Hex()), slog.String("role", role))
		c.JSON(autherrors.StatusFor(autherrors.ErrAccountLocked), gin.H{
			"error":      autherrors.MessageFor(autherrors.ErrAccountLocked),
			"retryAfter": int(lockout.RetryAfter(account, now).Seconds()),
		})
		return
	}

	if lockout.LockExpired(account, now) {
		if err := h.accountDBConn.ResetLockout(role, account.ID.Hex()); err != nil {
			slog.Error("failed to reset lockout", slog.String("error", err.Error()))
		}
		account.LoginAttempts = 0
		account.LockUntil = 0
	}

	match, err := pwhash.ComparePasswordWithHash(account.Password, req.Password)
	if err != nil || !match {
		slog.Warn("login attempt with wrong password", slog.String("email", req.Email), slog.String("role", role))

		updated, uErr := h.accountDBConn.RegisterFailedLogin(role, account.ID.Hex())
		if uErr != nil {
			slog.Error("failed to register failed login attempt", slog.String("error", uErr.Error()))
		} else if lockout.IsLocked(updated, now) {
			// this attempt crossed the threshold, tell the caller about the lock
			c.JSON(autherrors.StatusFor(autherrors.ErrAccountLocked), gin.H{
				"error":      autherrors.MessageFor(autherrors.ErrAccountLocked),
				"retryAfter": int(lockout.RetryAfter(updated, now).Seconds()),
			})
			return
		}
		randomWait(5, 10)
		c.JSON(autherrors.StatusFor(autherrors.ErrInvalidCredentials), gin.H{"error": autherrors.MessageFor(autherrors.ErrInvalidCredentials)})
		return
	}

	sessionID, err := umUtils.GenerateSessionID()
	if err != nil {
		slog.Error("failed to generate session ID", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	account, err = h.accountDBConn.RegisterSuccessfulLogin(role, account.ID.Hex(), sessionID)
	if err != nil {
		slog.Error("failed to update account after login", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	token, err := h.issueSessionToken(account, sessionID)
	if err != nil {
		slog.Error("failed to generate token", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	slog.Info("login successful", slog.String("subject", account.ID.Hex()), slog.String("role", role))

	h.setSessionCookie(c, token)
	c.JSON(http.StatusOK, gin.H{
		"token": gin.H{
			"accessToken": token,
			"expiresIn":   h.tokenExpiresIn.Seconds(),
		},
		"user": account,
	})
}

type SignupWithEmailReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

func (h *HttpEndpoints) signup(c *gin.Context) {
	var req SignupWithEmailReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error("failed to bind request", slog.String("error", err.Error()))
		c.JSON(autherrors.StatusFor(autherrors.ErrValidation), gin.H{"error": autherrors.MessageFor(autherrors.ErrValidation)})
		return
	}

	if req.Email == "" || req.Password == "" || req.Name == "" {
		slog.Error("missing required fields")
		c.JSON(autherrors.StatusFor(autherrors.ErrValidation), gin.H{"error": autherrors.MessageFor(autherrors.ErrValidation)})
		return
	}

	req.Email = umUtils.SanitizeEmail(req.Email)

	if !umUtils.CheckEmailFormat(req.Email) {
		slog.Error("invalid email format", slog.String("email", req.Email))
		c.JSON(autherrors.StatusFor(autherrors.ErrValidation), gin.H{"error": autherrors.MessageFor(autherrors.ErrValidation)})
		return
	}

	if !umUtils.CheckPasswordFormat(req.Password) {
		slog.Error("invalid password format")
		c.JSON(autherrors.StatusFor(autherrors.ErrWeakPassword), gin.H{"error": autherrors.MessageFor(autherrors.ErrWeakPassword)})
		return
	}

	password, err := pwhash.HashPassword(req.Password)
	if err != nil {
		slog.Error("failed to hash password", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	newAccount := userTypes.Account{
		Email:    req.Email,
		Name:     req.Name,
		Role:     userTypes.ACCOUNT_ROLE_USER,
		Password: password,
		Timestamps: userTypes.Timestamps{
			CreatedAt: time.Now().Unix(),
		},
	}

	id, err := h.accountDBConn.AddAccount(newAccount)
	if err != nil {
		// do not leak whether the address is taken
		slog.Warn("failed to create new account", slog.String("email", req.Email), slog.String("error", err.Error()))
		randomWait(5, 10)
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not create account"})
		return
	}
	newAccount.ID, _ = primitive.ObjectIDFromHex(id)

	sessionID, err := umUtils.GenerateSessionID()
	if err != nil {
		slog.Error("failed to generate session ID", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	newAccount, err = h.accountDBConn.RegisterSuccessfulLogin(newAccount.Role, id, sessionID)
	if err != nil {
		slog.Error("failed to start session for new account", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	token, err := h.issueSessionToken(newAccount, sessionID)
	if err != nil {
		slog.Error("failed to generate token", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	go h.sendSimpleEmail(
		[]string{newAccount.Email},
		emailTypes.EMAIL_TYPE_WELCOME,
		map[string]string{
			"name": newAccount.Name,
		},
		true,
	)

	slog.Info("signup successful", slog.String("subject", newAccount.ID.Hex()))

	h.setSessionCookie(c, token)
	c.JSON(http.StatusOK, gin.H{
		"token": gin.H{
			"accessToken": token,
			"expiresIn":   h.tokenExpiresIn.Seconds(),
		},
		"user": newAccount,
	})
}

func (h *HttpEndpoints) validateToken(c *gin.Context) {
	token := c.MustGet("validatedToken").(*jwthandling.SessionTokenClaims)

	c.JSON(http.StatusOK, gin.H{
		"tokenInfos": gin.H{
			"id":    token.User.ID,
			"email": token.User.Email,
			"role":  token.Role,
		},
	})
}

func (h *HttpEndpoints) logout(c *gin.Context) {
	token := c.MustGet("validatedToken").(*jwthandling.SessionTokenClaims)

	if err := h.accountDBConn.ClearSession(token.Role, token.User.ID); err != nil {
		slog.Error("failed to clear session", slog.String("accountID", token.User.ID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	slog.Info("logout successful", slog.String("subject", token.User.ID))

	h.clearSessionCookie(c)
	c.JSON(http.StatusOK, gin.H{"message": "logout successful"})
}

func (h *HttpEndpoints) deleteAccount(c *gin.Context) {
	token := c.MustGet("validatedToken").(*jwthandling.SessionTokenClaims)

	if err := h.accountDBConn.DeleteAccount(token.Role, token.User.ID); err != nil {
		slog.Error("failed to delete account", slog.String("accountID", token.User.ID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	slog.Info("account deleted", slog.String("subject", token.User.ID))

	h.clearSessionCookie(c)
	c.JSON(http.StatusOK, gin.H{"message": "account deleted"})
}
