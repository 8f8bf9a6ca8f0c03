package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Supported DB_CLIENT values.
const (
	ClientPostgres = "postgres"
	ClientMySQL    = "mysql"
	ClientSQLite   = "sqlite"
)

// DatabaseConfig holds database connection settings. For sqlite, Name is
// the database file path (":memory:" is accepted).
type DatabaseConfig struct {
	Client             string `mapstructure:"DB_CLIENT" validate:"oneof=postgres mysql sqlite"`
	Host               string `mapstructure:"DB_HOST" validate:"required_unless=Client sqlite"`
	Port               string `mapstructure:"DB_PORT" validate:"omitempty,numeric"`
	User               string `mapstructure:"DB_USER" validate:"required_unless=Client sqlite"`
	Password           string `mapstructure:"DB_PASSWORD"`
	Name               string `mapstructure:"DB_NAME" validate:"required"`
	SSLMode            string `mapstructure:"DB_SSLMODE"`
	MaxOpenConns       int    `mapstructure:"DB_MAX_OPEN_CONNS" validate:"gte=0"`
	MaxIdleConns       int    `mapstructure:"DB_MAX_IDLE_CONNS" validate:"gte=0"`
	ConnMaxLifetimeSec int    `mapstructure:"DB_CONN_MAX_LIFETIME_SEC" validate:"gte=0"`
	SlowQueryMs        int    `mapstructure:"DB_SLOW_QUERY_MS" validate:"gte=0"`
	LogQueries         bool   `mapstructure:"DB_LOG_QUERIES"`
	AutoMigrate        bool   `mapstructure:"DB_AUTO_MIGRATE"`
}

// MinIOConfig holds object storage settings for MinIO. An empty endpoint
// disables uploads.
type MinIOConfig struct {
	Endpoint     string `mapstructure:"MINIO_ENDPOINT"`
	AccessKey    string `mapstructure:"MINIO_ACCESS_KEY" validate:"required_with=Endpoint"`
	SecretKey    string `mapstructure:"MINIO_SECRET_KEY" validate:"required_with=Endpoint"`
	Bucket       string `mapstructure:"MINIO_BUCKET" validate:"required_with=Endpoint"`
	UseSSL       bool   `mapstructure:"MINIO_USE_SSL"`
	URLExpirySec int    `mapstructure:"UPLOAD_URL_EXPIRY_SEC" validate:"gte=0"`
}

// Enabled reports whether object storage is configured.
func (m MinIOConfig) Enabled() bool { return m.Endpoint != "" }

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	Env      string `mapstructure:"APP_ENV" validate:"oneof=development production test"`
	AppHost  string `mapstructure:"APP_HOST"`
	Port     string `mapstructure:"PORT" validate:"required,numeric"`
	LogLevel string `mapstructure:"LOG_LEVEL" validate:"oneof=debug info warn error"`
	Database DatabaseConfig `mapstructure:",squash"`
	MinIO    MinIOConfig    `mapstructure:",squash"`
}

var defaults = map[string]any{
	"APP_ENV":                  "development",
	"APP_HOST":                 "localhost:8080",
	"PORT":                     "8080",
	"LOG_LEVEL":                "info",
	"DB_CLIENT":                ClientPostgres,
	"DB_HOST":                  "",
	"DB_PORT":                  "",
	"DB_USER":                  "",
	"DB_PASSWORD":              "",
	"DB_NAME":                  "",
	"DB_SSLMODE":               "disable",
	"DB_MAX_OPEN_CONNS":        10,
	"DB_MAX_IDLE_CONNS":        5,
	"DB_CONN_MAX_LIFETIME_SEC": 300,
	"DB_SLOW_QUERY_MS":         200,
	"DB_LOG_QUERIES":           false,
	"DB_AUTO_MIGRATE":          true,
	"MINIO_ENDPOINT":           "",
	"MINIO_ACCESS_KEY":         "",
	"MINIO_SECRET_KEY":         "",
	"MINIO_BUCKET":             "",
	"MINIO_USE_SSL":            false,
	"UPLOAD_URL_EXPIRY_SEC":    900,
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() (*AppConfig, error) {
	v := viper.New()
	v.AutomaticEnv()
	for k, def := range defaults {
		v.SetDefault(k, def)
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode configuration: %w", err)
	}
	cfg.Env = strings.ToLower(cfg.Env)
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.Database.Client = strings.ToLower(cfg.Database.Client)
	return &cfg, nil
}

var validate = func() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("mapstructure")
	})
	return v
}()

// Validate checks the loaded values. Errors name the offending variables.
func (c *AppConfig) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag()))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
}
