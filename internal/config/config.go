package config

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator"
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
)

const envPrefix = "PAYMENTS_"

type Config struct {
	Primary   Primary         `koanf:"primary"`
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Store     StoreConfig     `koanf:"store"`
	Gateway   GatewayConfig   `koanf:"gateway"`
	Auth      AuthConfig      `koanf:"auth"`
	Logger    LoggerConfig    `koanf:"logger"`
	Reconcile ReconcileConfig `koanf:"reconcile"`
}

type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

type ServerConfig struct {
	Port           string        `koanf:"port" validate:"required"`
	ReadTimeout    time.Duration `koanf:"read_timeout" validate:"required"`
	WriteTimeout   time.Duration `koanf:"write_timeout" validate:"required"`
	IdleTimeout    time.Duration `koanf:"idle_timeout" validate:"required"`
	RequestTimeout time.Duration `koanf:"request_timeout" validate:"required"`
}

type DatabaseConfig struct {
	Host            string        `koanf:"host" validate:"required"`
	Port            int           `koanf:"port" validate:"required"`
	User            string        `koanf:"user" validate:"required"`
	Password        string        `koanf:"password" validate:"required"`
	Name            string        `koanf:"name" validate:"required"`
	SSLMode         string        `koanf:"ssl_mode" validate:"required"`
	MaxOpenConns    int           `koanf:"max_open_conns" validate:"required"`
	MaxIdleConns    int           `koanf:"max_idle_conns" validate:"required"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime" validate:"required"`
	ConnMaxIdleTime time.Duration `koanf:"conn_max_idle_time" validate:"required"`
}

const (
	DriverPostgres     = "postgres"
	DriverGormPostgres = "gorm-postgres"
	DriverGormSQLite   = "gorm-sqlite"
	DriverMemory       = "memory"
)

type StoreConfig struct {
	Driver     string `koanf:"driver" validate:"required,oneof=postgres gorm-postgres gorm-sqlite memory"`
	SQLitePath string `koanf:"sqlite_path"`
}

type GatewayConfig struct {
	Mode          string  `koanf:"mode" validate:"required,oneof=random approve decline"`
	ApprovalRate  float64 `koanf:"approval_rate" validate:"gte=0,lte=1"`
	Seed          int64   `koanf:"seed"`
	DeclineReason string  `koanf:"decline_reason"`
}

type AuthConfig struct {
	JWTSecret string `koanf:"jwt_secret" validate:"required,min=16"`
	UserClaim string `koanf:"user_claim" validate:"required"`
}

type LoggerConfig struct {
	Level  string `koanf:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `koanf:"format" validate:"omitempty,oneof=text json"`
}

type ReconcileConfig struct {
	OlderThan time.Duration `koanf:"older_than" validate:"required"`
	BatchSize int           `koanf:"batch_size" validate:"required,gt=0"`
}

func defaults() map[string]any {
	return map[string]any{
		"primary.env":                 "development",
		"server.port":                 "8080",
		"server.read_timeout":         "10s",
		"server.write_timeout":        "15s",
		"server.idle_timeout":         "60s",
		"server.request_timeout":      "30s",
		"database.host":               "localhost",
		"database.port":               5432,
		"database.user":               "payments",
		"database.password":           "payments",
		"database.name":               "payments",
		"database.ssl_mode":           "disable",
		"database.max_open_conns":     10,
		"database.max_idle_conns":     2,
		"database.conn_max_lifetime":  "1h",
		"database.conn_max_idle_time": "30m",
		"store.driver":                DriverPostgres,
		"store.sqlite_path":           "payments.db",
		"gateway.mode":                "random",
		"gateway.approval_rate":       0.9,
		"gateway.seed":                0,
		"gateway.decline_reason":      "Insufficient funds (mock failure)",
		"auth.user_claim":             "sub",
		"logger.level":                "info",
		"logger.format":               "text",
		"reconcile.older_than":        "15m",
		"reconcile.batch_size":        100,
	}
}

func LoadConfig() (*Config, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		logger.Error("failed to load default config", "error", err)
		return nil, err
	}

	err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ReplaceAll(
			strings.ToLower(strings.TrimPrefix(s, envPrefix)),
			"__",
			".",
		)
	}), nil)
	if err != nil {
		logger.Error("failed to load environment variables", "error", err)
		return nil, err
	}

	mainConfig := &Config{}

	err = k.Unmarshal("", mainConfig)
	if err != nil {
		logger.Error("could not unmarshal main config", "error", err)
		return nil, err
	}

	validate := validator.New()

	err = validate.Struct(mainConfig)
	if err != nil {
		logger.Error("config validation failed", "error", err)
		return nil, err
	}

	return mainConfig, nil
}
