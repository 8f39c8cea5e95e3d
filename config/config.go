package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

//go:embed config.yml
var embeddedConfig []byte

const (
	ModeDevelopment = "development"
	ModeProduction  = "production"

	DriverMongo    = "mongo"
	DriverPostgres = "postgres"

	// DefaultJWTSecret is only accepted in development mode.
	DefaultJWTSecret = "your jwt secret is here"
)

type JWTConfig struct {
	SecretKey      string        `mapstructure:"secretKey"`
	Issuer         string        `mapstructure:"issuer"`
	AccessTokenTTL time.Duration `mapstructure:"accessTokenTTL"`
}

type MongoConfig struct {
	URI            string        `mapstructure:"uri"`
	Database       string        `mapstructure:"database"`
	ConnectTimeout time.Duration `mapstructure:"connectTimeout"`
}

type PostgresConfig struct {
	URL      string `mapstructure:"url"`
	MaxConns int32  `mapstructure:"maxConns"`
}

type Config struct {
	Mode   string `mapstructure:"mode"`
	Server struct {
		HTTPPort        string        `mapstructure:"HTTPPort"`
		Timeout         time.Duration `mapstructure:"HTTPTimeout"`
		ShutdownTimeout time.Duration `mapstructure:"shutdownTimeout"`
	} `mapstructure:"server"`
	JWT     JWTConfig `mapstructure:"jwt"`
	Storage struct {
		Driver string `mapstructure:"driver"`
	} `mapstructure:"storage"`
	Repositories struct {
		Mongo    MongoConfig    `mapstructure:"mongo"`
		Postgres PostgresConfig `mapstructure:"postgres"`
	} `mapstructure:"repositories"`
	Observability struct {
		ServiceName string `mapstructure:"serviceName"`
		MetricsPort string `mapstructure:"metricsPort"`
	} `mapstructure:"observability"`
	CORS struct {
		AllowedOrigins []string `mapstructure:"allowedOrigins"`
	} `mapstructure:"cors"`
}

// envBindings maps config keys to the environment variables that override them.
var envBindings = map[string][]string{
	"mode":                        {"APP_ENV"},
	"server.httpport":             {"PORT"},
	"jwt.secretkey":               {"JWT_SECRET"},
	"jwt.issuer":                  {"JWT_ISSUER"},
	"storage.driver":              {"STORAGE_DRIVER"},
	"repositories.mongo.uri":      {"MONGO_URI", "MONGODB_URI"},
	"repositories.mongo.database": {"MONGO_DATABASE"},
	"repositories.postgres.url":   {"POSTGRES_URL", "DATABASE_URL"},
	"observability.metricsport":   {"METRICS_PORT"},
}

func InitConfig() (Config, error) {
	var config Config
	v := viper.New()

	v.AddConfigPath(".")
	v.AddConfigPath("config")
	v.AddConfigPath("/app/config")

	v.SetConfigName("config")
	v.SetConfigType("yml")

	err := v.ReadInConfig()
	if err != nil {
		fmt.Printf("Warning: Failed to find file-based config: %s. Falling back to embedded config.\n", err)
		if err = v.ReadConfig(bytes.NewReader(embeddedConfig)); err != nil {
			return Config{}, fmt.Errorf("failed to read embedded config: %w", err)
		}
	}

	for key, envs := range envBindings {
		if err = v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return Config{}, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	if err = v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	config.Storage.Driver = strings.ToLower(strings.TrimSpace(config.Storage.Driver))

	if err = config.Validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}

// Validate fails fast on settings the server cannot start without.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.HTTPPort == "" {
		errs = append(errs, errors.New("server.HTTPPort is required"))
	}

	switch c.Storage.Driver {
	case DriverMongo:
		if c.Repositories.Mongo.URI == "" {
			errs = append(errs, errors.New("MONGO_URI is required when storage.driver is mongo"))
		}
		if c.Repositories.Mongo.Database == "" {
			errs = append(errs, errors.New("repositories.mongo.database is required"))
		}
	case DriverPostgres:
		if c.Repositories.Postgres.URL == "" {
			errs = append(errs, errors.New("POSTGRES_URL is required when storage.driver is postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported storage.driver %q", c.Storage.Driver))
	}

	if c.JWT.SecretKey == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	} else if c.UsesDefaultSecret() && !c.IsDevelopment() {
		errs = append(errs, errors.New("JWT_SECRET must be set outside development mode"))
	}
	if c.JWT.AccessTokenTTL <= 0 {
		errs = append(errs, errors.New("jwt.accessTokenTTL must be positive"))
	}

	return errors.Join(errs...)
}

func (c *Config) IsDevelopment() bool {
	return c.Mode == "" || c.Mode == ModeDevelopment
}

func (c *Config) UsesDefaultSecret() bool {
	return c.JWT.SecretKey == DefaultJWTSecret
}
