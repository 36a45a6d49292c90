package main

import (
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/nidrip/nidrip-backend/pkg/db"
	httpclient "github.com/nidrip/nidrip-backend/pkg/http-client"
	emailsending "github.com/nidrip/nidrip-backend/pkg/messaging/email-sending"
	messagingTypes "github.com/nidrip/nidrip-backend/pkg/messaging/types"
	"github.com/nidrip/nidrip-backend/pkg/utils"

	messagingDB "github.com/nidrip/nidrip-backend/pkg/db/messaging"
)

// Environment variables
const (
	ENV_CONFIG_FILE_PATH = "CONFIG_FILE_PATH"

	// Variables to override "secrets" in the config file
	ENV_MESSAGING_DB_USERNAME = "MESSAGING_DB_USERNAME"
	ENV_MESSAGING_DB_PASSWORD = "MESSAGING_DB_PASSWORD"

	ENV_SMTP_BRIDGE_API_KEY = "SMTP_BRIDGE_API_KEY"
)

type EmailRetryJobConfig struct {
	// Logging configs
	Logging utils.LoggerConfig `json:"logging" yaml:"logging"`

	// DB configs
	DBConfigs struct {
		MessagingDB db.DBConfigYaml `json:"messaging_db" yaml:"messaging_db"`
	} `json:"db_configs" yaml:"db_configs"`

	MessagingConfigs messagingTypes.MessagingConfigs `json:"messaging_configs" yaml:"messaging_configs"`

	Intervals struct {
		// an email whose last attempt is younger than this is left alone
		RetryLockDuration time.Duration `json:"retry_lock_duration" yaml:"retry_lock_duration"`

		// queued emails older than this are dropped instead of retried,
		// zero disables the age check
		MaxQueueAge time.Duration `json:"max_queue_age" yaml:"max_queue_age"`
	} `json:"intervals" yaml:"intervals"`
}

var (
	conf EmailRetryJobConfig

	messagingDBService *messagingDB.MessagingDBService
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

	if conf.Intervals.RetryLockDuration <= 0 {
		conf.Intervals.RetryLockDuration = 30 * time.Minute
	}

	// init db
	initDB()

	// init message sending
	initMessageSendingConfig()
}

func secretsOverride() {
	if apiKey := os.Getenv(ENV_SMTP_BRIDGE_API_KEY); apiKey != "" {
		conf.MessagingConfigs.SmtpBridgeConfig.APIKey = apiKey
	}

	if dbUsername := os.Getenv(ENV_MESSAGING_DB_USERNAME); dbUsername != "" {
		conf.DBConfigs.MessagingDB.Username = dbUsername
	}

	if dbPassword := os.Getenv(ENV_MESSAGING_DB_PASSWORD); dbPassword != "" {
		conf.DBConfigs.MessagingDB.Password = dbPassword
	}
}

func initDB() {
	var err error
	messagingDBService, err = messagingDB.NewMessagingDBService(db.DBConfigFromYamlObj(conf.DBConfigs.MessagingDB))
	if err != nil {
		slog.Error("Error connecting to Messaging DB", slog.String("error", err.Error()))
		return
	}
}

func initMessageSendingConfig() {
	emailsending.InitMessageSendingVariables(
		&httpclient.ClientConfig{
			RootURL: conf.MessagingConfigs.SmtpBridgeConfig.URL,
			APIKey:  conf.MessagingConfigs.SmtpBridgeConfig.APIKey,
			Timeout: conf.MessagingConfigs.SmtpBridgeConfig.RequestTimeout,
		},
		conf.MessagingConfigs.GlobalEmailTemplateConstants,
		messagingDBService,
	)
}
