package main

import (
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"gopkg.in/yaml.v2"

	sc "github.com/nidrip/nidrip-backend/pkg/smtp-client"
	"github.com/nidrip/nidrip-backend/pkg/utils"
)

// Environment variables
const (
	ENV_CONFIG_FILE_PATH = "CONFIG_FILE_PATH"

	// Comma separated list, overrides the api keys from the config file
	ENV_MAIL_BRIDGE_API_KEYS = "MAIL_BRIDGE_API_KEYS"

	ENV_SMTP_SERVER_USERNAME = "SMTP_SERVER_USERNAME"
	ENV_SMTP_SERVER_PASSWORD = "SMTP_SERVER_PASSWORD"
)

type MailBridgeConfig struct {
	// Logging configs
	Logging utils.LoggerConfig `json:"logging" yaml:"logging"`

	// Gin configs
	GinConfig struct {
		DebugMode    bool     `json:"debug_mode" yaml:"debug_mode"`
		AllowOrigins []string `json:"allow_origins" yaml:"allow_origins"`
		Port         string   `json:"port" yaml:"port"`
	} `json:"gin_config" yaml:"gin_config"`

	ApiKeys []string `json:"api_keys" yaml:"api_keys"`

	SMTPServerConfigs struct {
		HighPrioFile string `json:"high_prio_file" yaml:"high_prio_file"`
		LowPrioFile  string `json:"low_prio_file" yaml:"low_prio_file"`
	} `json:"smtp_server_configs" yaml:"smtp_server_configs"`
}

var (
	conf MailBridgeConfig

	highPrioServers sc.SmtpServerList
	lowPrioServers  sc.SmtpServerList
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

	secretsOverride()

	readSmtpServerConfigs()

	if !conf.GinConfig.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}
}

func secretsOverride() {
	if apiKeys := os.Getenv(ENV_MAIL_BRIDGE_API_KEYS); apiKeys != "" {
		conf.ApiKeys = strings.Split(apiKeys, ",")
	}
}

func readSmtpServerConfigs() {
	if err := highPrioServers.ReadFromFile(conf.SMTPServerConfigs.HighPrioFile); err != nil {
		panic(err)
	}
	if err := lowPrioServers.ReadFromFile(conf.SMTPServerConfigs.LowPrioFile); err != nil {
		panic(err)
	}

	// Same credentials for every listed server when set through env
	username := os.Getenv(ENV_SMTP_SERVER_USERNAME)
	password := os.Getenv(ENV_SMTP_SERVER_PASSWORD)
	if username == "" && password == "" {
		return
	}
	for i := range highPrioServers.Servers {
		highPrioServers.Servers[i].AuthData.Username = username
		highPrioServers.Servers[i].AuthData.Password = password
	}
	for i := range lowPrioServers.Servers {
		lowPrioServers.Servers[i].AuthData.Username = username
		lowPrioServers.Servers[i].AuthData.Password = password
	}
}
