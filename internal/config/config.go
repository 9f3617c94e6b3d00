package config

import (
	"errors"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	log "github.com/sirupsen/logrus"
)

type HTTPConfig struct {
	Address     string `yaml:"address" env:"HTTP_ADDRESS" env-default:":8008"`
	Mode        string `yaml:"mode" env:"GIN_MODE" env-default:"release"`
	AllowOrigin string `yaml:"allow_origin" env:"CORS_ALLOW_ORIGIN" env-default:"http://localhost:3000"`
}

type DatabaseConfig struct {
	Path     string `yaml:"path" env:"DB_PATH" env-default:"tasks-management.db"`
	LogLevel string `yaml:"log_level" env:"DB_LOG_LEVEL" env-default:"WARN"`
}

type AuthConfig struct {
	Secret       string        `yaml:"secret" env:"JWT_SECRET" env-default:"development-insecure-secret-change-me"`
	Issuer       string        `yaml:"issuer" env:"JWT_ISSUER" env-default:"task-management-api"`
	Audience     string        `yaml:"audience" env:"JWT_AUDIENCE" env-default:"task-management-clients"`
	TokenTTL     time.Duration `yaml:"token_ttl" env:"JWT_TTL" env-default:"24h"`
	SecureCookie bool          `yaml:"secure_cookie" env:"COOKIE_SECURE" env-default:"false"`
	BcryptCost   int           `yaml:"bcrypt_cost" env:"BCRYPT_COST" env-default:"10"`
}

// RedisConfig is optional; an empty URL keeps revoked tokens in memory.
type RedisConfig struct {
	URL string `yaml:"url" env:"REDIS_URL"`
}

type Config struct {
	LogLevel string         `yaml:"log_level" env:"LOG_LEVEL" env-default:"INFO"`
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Redis    RedisConfig    `yaml:"redis"`
}

// Load reads the YAML file at configPath, falling back to the environment
// when the path is empty or the file does not exist.
func Load(configPath string) (Config, error) {
	var cfg Config

	if configPath == "" {
		err := cleanenv.ReadEnv(&cfg)
		return cfg, err
	}

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		var pe *os.PathError
		if errors.As(err, &pe) {
			err := cleanenv.ReadEnv(&cfg)
			return cfg, err
		}
		return cfg, err
	}

	return cfg, nil
}

func MustLoad(configPath string) Config {
	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("cannot read config %q: %s", configPath, err)
	}
	return cfg
}

// ParseLogLevel maps the configured level onto logrus, defaulting to info.
func ParseLogLevel(level string) log.Level {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}
