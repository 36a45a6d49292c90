package apihandlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	accountstore "github.com/nidrip/nidrip-backend/pkg/db/account-store"
	"github.com/nidrip/nidrip-backend/pkg/tokencrypt"
)

func HealthCheckHandle(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// HttpEndpoints does not hold a messaging DB handle. Email persistence is
// owned by the email-sending package, wired once at service start.
type HttpEndpoints struct {
	accountDBConn     *accountstore.AccountDBService
	cryptoEngine      *tokencrypt.Engine
	tokenSignKey      string
	resetTokenSignKey string
	tokenExpiresIn    time.Duration
	useSecureCookies  bool
}

func NewHTTPHandler(
	tokenSignKey string,
	resetTokenSignKey string,
	tokenExpiresIn time.Duration,
	cryptoEngine *tokencrypt.Engine,
	accountDBConn *accountstore.AccountDBService,
	useSecureCookies bool,
) *HttpEndpoints {
	return &HttpEndpoints{
		tokenSignKey:      tokenSignKey,
		resetTokenSignKey: resetTokenSignKey,
		tokenExpiresIn:    tokenExpiresIn,
		cryptoEngine:      cryptoEngine,
		accountDBConn:     accountDBConn,
		useSecureCookies:  useSecureCookies,
	}
}
