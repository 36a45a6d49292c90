package main

import (
	"encoding/hex"
	"log/slog"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"gopkg.in/yaml.v2"

	"github.com/nidrip/nidrip-backend/pkg/apihelpers"
	"github.com/nidrip/nidrip-backend/pkg/db"
	httpclient "github.com/nidrip/nidrip-backend/pkg/http-client"
	jwthandling "github.com/nidrip/nidrip-backend/pkg/jwt-handling"
	emailsending "github.com/nidrip/nidrip-backend/pkg/messaging/email-sending"
	messagingTypes "github.com/nidrip/nidrip-backend/pkg/messaging/types"
	"github.com/nidrip/nidrip-backend/pkg/tokencrypt"
	"github.com/nidrip/nidrip-backend/pkg/utils"

	accountstore "github.com/nidrip/nidrip-backend/pkg/db/account-store"
	messagingDB "github.com/nidrip/nidrip-backend/pkg/db/messaging"
)

// Environment variables
const (
	ENV_CONFIG_FILE_PATH = "CONFIG_FILE_PATH"

	// Variables to override "secrets" in the config file
	ENV_ACCOUNT_DB_USERNAME   = "ACCOUNT_DB_USERNAME"
	ENV_ACCOUNT_DB_PASSWORD   = "ACCOUNT_DB_PASSWORD"
	ENV_MESSAGING_DB_USERNAME = "MESSAGING_DB_USERNAME"
	ENV_MESSAGING_DB_PASSWORD = "MESSAGING_DB_PASSWORD"

	ENV_SMTP_BRIDGE_API_KEY = "SMTP_BRIDGE_API_KEY"

	ENV_SESSION_TOKEN_SIGN_KEY = "SESSION_TOKEN_SIGN_KEY"
	ENV_RESET_TOKEN_SIGN_KEY   = "RESET_TOKEN_SIGN_KEY"
	ENV_TOKEN_ENCRYPTION_KEY   = "TOKEN_ENCRYPTION_KEY"
)

type CommerceApiConfig struct {
	// Logging configs
	Logging utils.LoggerConfig `json:"logging" yaml:"logging"`

	// Gin configs
	GinConfig struct {
		DebugMode    bool     `json:"debug_mode" yaml:"debug_mode"`
		AllowOrigins []string `json:"allow_origins" yaml:"allow_origins"`
		Port         string   `json:"port" yaml:"port"`

		// Mutual TLS configs
		MTLS struct {
			Use              bool                        `json:"use" yaml:"use"`
			CertificatePaths apihelpers.CertificatePaths `json:"certificate_paths" yaml:"certificate_paths"`
		} `json:"mtls" yaml:"mtls"`
	} `json:"gin_config" yaml:"gin_config"`

	// user management configs
	UserManagementConfig struct {
		SessionTokenConfig struct {
			SignKey   string        `json:"sign_key" yaml:"sign_key"`
			ExpiresIn time.Duration `json:"expires_in" yaml:"expires_in"`
		} `json:"session_token_config" yaml:"session_token_config"`
		ResetTokenSignKey string `json:"reset_token_sign_key" yaml:"reset_token_sign_key"`

		// hex encoded 32 byte AES key
		TokenEncryptionKey string `json:"token_encryption_key" yaml:"token_encryption_key"`

		UseSecureCookies bool `json:"use_secure_cookies" yaml:"use_secure_cookies"`
	} `json:"user_management_config" yaml:"user_management_config"`

	// DB configs
	DBConfigs struct {
		AccountDB   db.DBConfigYaml `json:"account_db" yaml:"account_db"`
		MessagingDB db.DBConfigYaml `json:"messaging_db" yaml:"messaging_db"`
	} `json:"db_configs" yaml:"db_configs"`

	MessagingConfigs messagingTypes.MessagingConfigs `json:"messaging_configs" yaml:"messaging_configs"`
}

var (
	conf CommerceApiConfig

	accountDBService   *accountstore.AccountDBService
	messagingDBService *messagingDB.MessagingDBService

	tokenCryptoEngine *tokencrypt.Engine
)

func init() {
	// Read config from file
	yamlFile, err := os.ReadFile(os.Getenv(ENV_CONFIG_FILE_PATH))
	if err != nil {
		panic(err)
	}

	err = yaml.UnmarshalStrict(yamlFile, &conf)
	if err != nil {
		panic(err)
	}

	// Init logger:
	utils.InitLogger(
		conf.Logging.LogLevel,
		conf.Logging.IncludeSrc,
		conf.Logging.LogToFile,
		conf.Logging.Filename,
		conf.Logging.MaxSize,
		conf.Logging.MaxAge,
		conf.Logging.MaxBackups,
		conf.Logging.CompressOldLogs,
	)

	// Override secrets from environment variables
	secretsOverride()

	checkTokenConfigs()

	// Init DBs
	initDBs()

	if !conf.GinConfig.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}

	// init message sending config
	initMessageSendingConfig()
}

func secretsOverride() {
	if apiKey := os.Getenv(ENV_SMTP_BRIDGE_API_KEY); apiKey != "" {
		conf.MessagingConfigs.SmtpBridgeConfig.APIKey = apiKey
	}

	if dbUsername := os.Getenv(ENV_ACCOUNT_DB_USERNAME); dbUsername != "" {
		conf.DBConfigs.AccountDB.Username = dbUsername
	}

	if dbPassword := os.Getenv(ENV_ACCOUNT_DB_PASSWORD); dbPassword != "" {
		conf.DBConfigs.AccountDB.Password = dbPassword
	}

	if dbUsername := os.Getenv(ENV_MESSAGING_DB_USERNAME); dbUsername != "" {
		conf.DBConfigs.MessagingDB.Username = dbUsername
	}

	if dbPassword := os.Getenv(ENV_MESSAGING_DB_PASSWORD); dbPassword != "" {
		conf.DBConfigs.MessagingDB.Password = dbPassword
	}

	if signKey := os.Getenv(ENV_SESSION_TOKEN_SIGN_KEY); signKey != "" {
		conf.UserManagementConfig.SessionTokenConfig.SignKey = signKey
	}

	if signKey := os.Getenv(ENV_RESET_TOKEN_SIGN_KEY); signKey != "" {
		conf.UserManagementConfig.ResetTokenSignKey = signKey
	}

	if encryptionKey := os.Getenv(ENV_TOKEN_ENCRYPTION_KEY); encryptionKey != "" {
		conf.UserManagementConfig.TokenEncryptionKey = encryptionKey
	}
}

// checkTokenConfigs refuses to boot with unusable token secrets.
func checkTokenConfigs() {
	if conf.UserManagementConfig.SessionTokenConfig.SignKey == "" {
		panic("session token sign key not set")
	}
	if conf.UserManagementConfig.ResetTokenSignKey == "" {
		panic("reset token sign key not set")
	}
	if conf.UserManagementConfig.SessionTokenConfig.SignKey == conf.UserManagementConfig.ResetTokenSignKey {
		panic("session and reset token sign keys must differ")
	}

	key, err := hex.DecodeString(conf.UserManagementConfig.TokenEncryptionKey)
	if err != nil {
		slog.Error("token encryption key is not valid hex", slog.String("error", err.Error()))
		panic("token encryption key is not valid hex")
	}
	tokenCryptoEngine, err = tokencrypt.NewEngine(key)
	if err != nil {
		slog.Error("cannot init token crypto", slog.String("error", err.Error()))
		panic(err)
	}

	if conf.UserManagementConfig.SessionTokenConfig.ExpiresIn <= 0 ||
		conf.UserManagementConfig.SessionTokenConfig.ExpiresIn > jwthandling.SessionTokenMaxLifetime {
		conf.UserManagementConfig.SessionTokenConfig.ExpiresIn = jwthandling.SessionTokenMaxLifetime
	}
}

func initMessageSendingConfig() {
	emailsending.InitMessageSendingVariables(
		loadEmailClientHTTPConfig(),
		conf.MessagingConfigs.GlobalEmailTemplateConstants,
		messagingDBService,
	)
}

func loadEmailClientHTTPConfig() *httpclient.ClientConfig {
	return &httpclient.ClientConfig{
		RootURL: conf.MessagingConfigs.SmtpBridgeConfig.URL,
		APIKey:  conf.MessagingConfigs.SmtpBridgeConfig.APIKey,
		Timeout: conf.MessagingConfigs.SmtpBridgeConfig.RequestTimeout,
	}
}

func initDBs() {
	var err error
	accountDBService, err = accountstore.NewAccountDBService(db.DBConfigFromYamlObj(conf.DBConfigs.AccountDB))
	if err != nil {
		slog.Error("Error connecting to Account DB", slog.String("error", err.Error()))
		return
	}

	messagingDBService, err = messagingDB.NewMessagingDBService(db.DBConfigFromYamlObj(conf.DBConfigs.MessagingDB))
	if err != nil {
		slog.Error("Error connecting to Messaging DB", slog.String("error", err.Error()))
		return
	}
}
