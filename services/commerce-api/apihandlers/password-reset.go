package apihandlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	mw "github.com/nidrip/nidrip-backend/pkg/apihelpers/middlewares"
	jwthandling "github.com/nidrip/nidrip-backend/pkg/jwt-handling"
	emailTypes "github.com/nidrip/nidrip-backend/pkg/messaging/types"
	"github.com/nidrip/nidrip-backend/pkg/user-management/autherrors"
	"github.com/nidrip/nidrip-backend/pkg/user-management/pwhash"
	userTypes "github.com/nidrip/nidrip-backend/pkg/user-management/types"
	umUtils "github.com/nidrip/nidrip-backend/pkg/user-management/utils"
)

const (
	RESET_TOKEN_TTL = 1 * time.Hour
)

func (h *HttpEndpoints) AddPasswordResetAPI(rg *gin.RouterGroup) {
	pwResetGroup := rg.Group("/auth/password-reset")
	{
		pwResetGroup.POST("/initiate", mw.RequirePayload(), h.initiatePasswordReset)
		pwResetGroup.POST("/verify", mw.RequirePayload(), h.verifyResetToken)
		// the emailed link points here
		pwResetGroup.GET("/:token", h.verifyResetTokenFromURL)
		pwResetGroup.POST("/reset", mw.RequirePayload(), h.resetPassword)
	}
}

func (h *HttpEndpoints) initiatePasswordReset(c *gin.Context) {
	var req struct {
		Email string `json:"email"`
		Role  string `json:"role"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error("bad request", slog.String("error", err.Error()))
		c.JSON(autherrors.StatusFor(autherrors.ErrValidation), gin.H{"error": autherrors.MessageFor(autherrors.ErrValidation)})
		return
	}

	if req.Role == "" {
		req.Role = userTypes.ACCOUNT_ROLE_USER
	}
	if req.Email == "" || !userTypes.ValidRole(req.Role) {
		slog.Error("missing or invalid fields")
		c.JSON(autherrors.StatusFor(autherrors.ErrValidation), gin.H{"error": autherrors.MessageFor(autherrors.ErrValidation)})
		return
	}

	req.Email = umUtils.SanitizeEmail(req.Email)

	account, err := h.accountDBConn.GetAccountByEmail(req.Role, req.Email)
	if err != nil {
		// respond the same way as for existing accounts
		slog.Warn("password reset for non-existing account", slog.String("email", req.Email), slog.String("role", req.Role))
	} else {
		go h.prepResetTokenAndSendEmail(account)
	}

	slog.Info("password reset initiated", slog.String("email", req.Email))
	randomWait(1, 4) // to discourage click-flooding
	c.JSON(http.StatusOK, gin.H{"message": "if the address exists, a reset link was sent"})
}

func (h *HttpEndpoints) prepResetTokenAndSendEmail(account userTypes.Account) {
	token, err := jwthandling.GenerateResetToken(
		RESET_TOKEN_TTL,
		account.ID.Hex(),
		account.Role,
		h.resetTokenSignKey,
		h.cryptoEngine,
	)
	if err != nil {
		slog.Error("failed to generate reset token", slog.String("error", err.Error()))
		return
	}

	err = h.sendResetEmail(account, token)
	if err != nil {
		slog.Error("failed to send reset email", slog.String("error", err.Error()))
		return
	}
	slog.Debug("reset email sent", slog.String("email", account.Email))
}

func (h *HttpEndpoints) sendResetEmail(account userTypes.Account, token string) error {
	return h.sendSimpleEmailWithError(
		[]string{account.Email},
		emailTypes.EMAIL_TYPE_PASSWORD_RESET,
		resetEmailPayload(account, token),
		false,
	)
}

func resetEmailPayload(account userTypes.Account, token string) map[string]string {
	return map[string]string{
		"token": token,
		"name":  account.Name,
		// the template phrases this as a number of hours
		"validUntil": strconv.Itoa(int(RESET_TOKEN_TTL.Hours())),
	}
}

func (h *HttpEndpoints) verifyResetToken(c *gin.Context) {
	var req struct {
		Token string `json:"token"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error("bad request", slog.String("error", err.Error()))
		c.JSON(autherrors.StatusFor(autherrors.ErrValidation), gin.H{"error": autherrors.MessageFor(autherrors.ErrValidation)})
		return
	}
	h.handleResetTokenVerification(c, req.Token)
}

func (h *HttpEndpoints) verifyResetTokenFromURL(c *gin.Context) {
	h.handleResetTokenVerification(c, c.Param("token"))
}

func (h *HttpEndpoints) handleResetTokenVerification(c *gin.Context, token string) {
	if token == "" {
		c.JSON(autherrors.StatusFor(autherrors.ErrValidation), gin.H{"error": autherrors.MessageFor(autherrors.ErrValidation)})
		return
	}

	account, _, err := h.accountForResetToken(token)
	if err != nil {
		slog.Warn("reset token verification failed", slog.String("error", err.Error()))
		randomWait(5, 10)
		c.JSON(autherrors.StatusFor(autherrors.ErrInvalidOrExpiredToken), gin.H{"error": autherrors.MessageFor(autherrors.ErrInvalidOrExpiredToken)})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"email": umUtils.BlurEmailAddress(account.Email),
	})
}

// accountForResetToken verifies the token and resolves the account it
// references. All failure modes collapse into one error.
func (h *HttpEndpoints) accountForResetToken(token string) (userTypes.Account, *jwthandling.ResetTokenClaims, error) {
	claims, err := jwthandling.ValidateResetToken(token, h.resetTokenSignKey, h.cryptoEngine)
	if err != nil {
		return userTypes.Account{}, nil, autherrors.ErrInvalidOrExpiredToken
	}

	account, err := h.accountDBConn.GetAccountByID(claims.Role, claims.AccountID)
	if err != nil {
		return userTypes.Account{}, nil, autherrors.ErrInvalidOrExpiredToken
	}
	return account, claims, nil
}

func (h *HttpEndpoints) resetPassword(c *gin.Context) {
	var req struct {
		Token       string `json:"token"`
		NewPassword string `json:"newPassword"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error("missing or invalid request", slog.String("error", err.Error()))
		c.JSON(autherrors.StatusFor(autherrors.ErrValidation), gin.H{"error": autherrors.MessageFor(autherrors.ErrValidation)})
		return
	}

	if req.Token == "" {
		randomWait(5, 10)
		c.JSON(autherrors.StatusFor(autherrors.ErrValidation), gin.H{"error": autherrors.MessageFor(autherrors.ErrValidation)})
		return
	}

	if !umUtils.CheckPasswordFormat(req.NewPassword) {
		slog.Error("invalid password format")
		c.JSON(autherrors.StatusFor(autherrors.ErrWeakPassword), gin.H{"error": autherrors.MessageFor(autherrors.ErrWeakPassword)})
		return
	}

	account, claims, err := h.accountForResetToken(req.Token)
	if err != nil {
		slog.Warn("reset attempt with invalid token", slog.String("error", err.Error()))
		randomWait(5, 10)
		c.JSON(autherrors.StatusFor(err), gin.H{"error": autherrors.MessageFor(err)})
		return
	}

	sameAsCurrent, err := pwhash.ComparePasswordWithHash(account.Password, req.NewPassword)
	if err == nil && sameAsCurrent {
		slog.Warn("reset attempt reusing the current password", slog.String("accountID", account.ID.Hex()))
		c.JSON(autherrors.StatusFor(autherrors.ErrSamePassword), gin.H{"error": autherrors.MessageFor(autherrors.ErrSamePassword)})
		return
	}

	password, err := pwhash.HashPassword(req.NewPassword)
	if err != nil {
		slog.Error("failed to hash password", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	// rotating the session id revokes any session that is still open
	sessionID, err := umUtils.GenerateSessionID()
	if err != nil {
		slog.Error("failed to generate session ID", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	if err := h.accountDBConn.UpdatePassword(claims.Role, account.ID.Hex(), password, sessionID); err != nil {
		slog.Error("failed to update password", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	go h.sendSimpleEmail(
		[]string{account.Email},
		emailTypes.EMAIL_TYPE_PASSWORD_CHANGED,
		map[string]string{
			"name": account.Name,
		},
		true,
	)

	slog.Info("password reset successful", slog.String("accountID", account.ID.Hex()))
	c.JSON(http.StatusOK, gin.H{"message": "password reset successful"})
}
