package configuration

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"

	"github.com/orchestrate-poc/endpoints/backends"
	"github.com/orchestrate-poc/endpoints/constants"
	logger "github.com/orchestrate-poc/endpoints/log"
)

// EnvPrefix prefixes every environment override. Fields tagged with envconfig
// also accept the bare tag name, e.g. DB_HOST.
const EnvPrefix = "ORCH"

// DotEnvFile is read before the environment is processed, when present.
var DotEnvFile = ".env"

var log = logger.Get()
var mainLoggerTag = "CONFIG"
var mainLogger = log.WithField("prefix", mainLoggerTag)

// Auth is the single credential pair guarding the HIV check
type Auth struct {
	Username string `envconfig:"API_USERNAME"`
	Password string `envconfig:"API_PASSWORD"`
}

// Database settings of the PostgreSQL instance holding the HIV medication table
type Database struct {
	Host            string `envconfig:"DB_HOST"`
	Port            string `envconfig:"DB_PORT"`
	Name            string `envconfig:"DB_NAME"`
	User            string `envconfig:"DB_USER"`
	Password        string `envconfig:"DB_PASS"`
	SSLMode         string `envconfig:"DB_SSLMODE"`
	Schema          string
	Table           string
	Column          string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int
	ConnectTimeout  int
}

// Configured reports whether every mandatory connection setting is present
func (d Database) Configured() bool {
	return d.Host != "" && d.Name != "" && d.User != "" && d.Password != ""
}

// MongoConf is used by the mongo ticket loader
type MongoConf struct {
	MongoURL   string `json:"mongo_url"`
	DbName     string `json:"db_name"`
	Collection string `json:"collection"`
}

// Storage configures where tickets are loaded from
type Storage struct {
	StorageType string     `json:"storage_type"`
	TicketFile  string     `json:"ticket_file"`
	MongoConf   *MongoConf `json:"mongo"`
}

// Cache configures the HIV check result cache
type Cache struct {
	Type  string
	TTL   int
	Redis backends.RedisConfig
	Mongo backends.MongoConfig
}

type HttpServerOptions struct {
	UseSSL       bool
	CertFile     string
	KeyFile      string
	ReadTimeout  int
	WriteTimeout int
}

// Configuration holds all configuration settings of the service
type Configuration struct {
	Host              string `envconfig:"HOST"`
	Port              int    `envconfig:"PORT"`
	Auth              Auth
	Database          Database
	Storage           *Storage
	Cache             Cache
	HttpServerOptions HttpServerOptions
}

// LoadConfig reads the JSON file at filePath (a missing file is not an error), then
// .env, then environment overrides, and finally fills defaults.
func LoadConfig(filePath string, conf *Configuration) error {
	log = logger.Get()
	mainLogger = &logrus.Entry{Logger: log}
	mainLogger = mainLogger.Logger.WithField("prefix", mainLoggerTag)

	if filePath != "" {
		configuration, err := os.ReadFile(filePath)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			mainLogger.Warn("Config file not found, using environment only: ", filePath)
		case err != nil:
			return fmt.Errorf("read config file: %w", err)
		default:
			if jsErr := json.Unmarshal(configuration, conf); jsErr != nil {
				return fmt.Errorf("unmarshal config file: %w", jsErr)
			}
		}
	}

	if err := godotenv.Load(DotEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		mainLogger.WithError(err).Warn("Couldn't load ", DotEnvFile)
	}

	shouldOmit, omitEnvExist := os.LookupEnv(EnvPrefix + "_OMITCONFIGFILE")
	if omitEnvExist && strings.ToLower(shouldOmit) == "true" {
		*conf = Configuration{}
	}

	if err := envconfig.Process(EnvPrefix, conf); err != nil {
		return fmt.Errorf("process config env vars: %w", err)
	}

	applyDefaults(conf)

	mainLogger.Debugf("Config Loaded: host=%s port=%d storage=%+v cache=%s", conf.Host, conf.Port, conf.Storage, conf.Cache.Type)
	return nil
}

func applyDefaults(conf *Configuration) {
	if conf.Host == "" {
		conf.Host = constants.DefaultListenHost
	}
	if conf.Port == 0 {
		conf.Port = constants.DefaultListenPort
	}

	if conf.Auth.Username == "" {
		conf.Auth.Username = "admin"
	}
	if conf.Auth.Password == "" {
		conf.Auth.Password = "adminpass"
	}

	db := &conf.Database
	if db.Port == "" {
		db.Port = "5432"
	}
	if db.SSLMode == "" {
		db.SSLMode = "require"
	}
	if db.Schema == "" {
		db.Schema = "public"
	}
	if db.Table == "" {
		db.Table = "medicamentos_HIV.csv"
	}
	if db.Column == "" {
		db.Column = "Presentacion"
	}
	if db.ConnectTimeout == 0 {
		db.ConnectTimeout = 5
	}

	if conf.Storage == nil {
		conf.Storage = &Storage{}
	}
	if conf.Storage.StorageType == "" {
		if conf.Storage.TicketFile != "" {
			conf.Storage.StorageType = constants.FileStorage
		} else {
			conf.Storage.StorageType = constants.BuiltinStorage
		}
	}

	if conf.Cache.Type == "" {
		conf.Cache.Type = constants.NoCache
	}

	if conf.HttpServerOptions.ReadTimeout == 0 {
		conf.HttpServerOptions.ReadTimeout = 15
	}
	if conf.HttpServerOptions.WriteTimeout == 0 {
		conf.HttpServerOptions.WriteTimeout = 30
	}
}

// ListenAddress is the host:port the server binds to
func (c *Configuration) ListenAddress() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
