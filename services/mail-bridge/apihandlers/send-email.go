package apihandlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	mw "github.com/nidrip/nidrip-backend/pkg/apihelpers/middlewares"
	messagingTypes "github.com/nidrip/nidrip-backend/pkg/messaging/types"
)

func (h *HttpEndpoints) AddRoutes(rg *gin.RouterGroup) {
	rg.POST("/send-email",
		mw.HasValidAPIKey(h.apiKeys),
		mw.RequirePayload(),
		h.sendEmail)
}

type SendEmailReq struct {
	To       []string                        `json:"to"`
	Subject  string                          `json:"subject"`
	Content  string                          `json:"content"`
	HighPrio bool                            `json:"highPrio"`
	Headers  *messagingTypes.HeaderOverrides `json:"headerOverrides"`
}

func (h *HttpEndpoints) sendEmail(c *gin.Context) {
	var req SendEmailReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error("failed to bind request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if len(req.To) < 1 {
		slog.Error("no recipients defined")
		c.JSON(http.StatusBadRequest, gin.H{"error": "no recipients defined"})
		return
	}

	clients := h.lowPrioSmtpClients
	if req.HighPrio {
		clients = h.highPrioSmtpClients
	}

	err := clients.SendMail(
		req.To,
		req.Subject,
		req.Content,
		req.Headers,
	)
	if err != nil {
		slog.Error("failed to send email", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	slog.Debug("email sent", slog.Int("recipients", len(req.To)), slog.Bool("highPrio", req.HighPrio))
	c.JSON(http.StatusOK, gin.H{"message": "email sent"})
}
