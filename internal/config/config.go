// Package config предоставляет структуры и функции для загрузки конфигурации сервиса.
//
// Значения читаются из YAML-файла (если задан CONFIG_PATH) и из переменных окружения,
// причём переменные окружения имеют приоритет.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Окружения запуска, влияют на формат логов.
const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

// ErrConfigFileNotFound возвращается, если CONFIG_PATH указывает на несуществующий файл.
var ErrConfigFileNotFound = errors.New("config file does not exist")

// Config общая структура для хранения настроек
type Config struct {
	Env        string `yaml:"env" env:"ENV" env-default:"local"`
	HTTPServer `yaml:"http_server"`
	CouchDB    `yaml:"couchdb"`
	Auth       `yaml:"auth"`
	RateLimit  `yaml:"rate_limit"`
	Redis      `yaml:"redis"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	Address     string        `yaml:"address" env:"HTTP_ADDRESS" env-default:":8080"`
	Timeout     time.Duration `yaml:"timeout" env:"HTTP_TIMEOUT" env-default:"10s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
}

// CouchDB структура для подключения к документной базе данных.
type CouchDB struct {
	URL       string        `yaml:"url" env:"DATABASE_URL" env-required:"true"`
	AuthDB    string        `yaml:"auth_db" env:"AUTH_DB" env-default:"users"`
	Username  string        `yaml:"username" env:"DB_USERNAME" env-required:"true"`
	Password  string        `yaml:"password" env:"DB_PASSWORD" env-required:"true"`
	DBTimeout time.Duration `yaml:"timeout" env:"DB_TIMEOUT" env-default:"10s"`
}

// Auth структура для работы с токеном сессии и cookie
type Auth struct {
	JWTSecret      string        `yaml:"jwt_secret" env:"JWT_SECRET" env-required:"true"`
	TokenTTL       time.Duration `yaml:"token_ttl" env:"TOKEN_TTL" env-default:"168h"`
	CookieInsecure bool          `yaml:"cookie_insecure" env:"COOKIE_INSECURE"`
	CheckIdentity  bool          `yaml:"check_identity" env:"CHECK_IDENTITY"`
}

// RateLimit настройки глобального ограничителя запросов. RPS == 0 отключает ограничение.
type RateLimit struct {
	RPS   float64 `yaml:"rps" env:"RATE_LIMIT_RPS" env-default:"0"`
	Burst int     `yaml:"burst" env:"RATE_LIMIT_BURST" env-default:"10"`
}

// Redis структура для настройки подключения к redis.
// Пустой Address отключает ограничение попыток входа.
type Redis struct {
	Address     string        `yaml:"address" env:"REDIS_ADDRESS"`
	Password    string        `yaml:"password" env:"REDIS_PASSWORD"`
	DB          int           `yaml:"db" env:"REDIS_DB" env-default:"0"`
	MaxAttempts int           `yaml:"login_max_attempts" env:"LOGIN_MAX_ATTEMPTS" env-default:"5"`
	Lockout     time.Duration `yaml:"login_lockout" env:"LOGIN_LOCKOUT" env-default:"15m"`
}

// Load читает конфигурацию. Отсутствие обязательных параметров возвращается как ошибка.
func Load() (*Config, error) {
	const op = "config.Load"
	var cfg Config

	if configPath := os.Getenv("CONFIG_PATH"); configPath != "" {
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %s: %w", op, configPath, ErrConfigFileNotFound)
		}
		if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Env {
	case EnvLocal, EnvDev, EnvProd:
	default:
		return fmt.Errorf("unknown env %q", c.Env)
	}
	if c.TokenTTL <= 0 {
		return errors.New("token ttl must be positive")
	}
	if c.RPS < 0 {
		return errors.New("rate limit rps must not be negative")
	}
	return nil
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"  IdleTimeout: %s\n"+
			"CouchDB:\n"+
			"  URL: %s\n"+
			"  AuthDB: %s\n"+
			"  Username: %s\n"+
			"  Password: %s\n"+
			"Auth:\n"+
			"  JWTSecret: %s\n"+
			"  TokenTTL: %s\n"+
			"  CookieInsecure: %t\n"+
			"  CheckIdentity: %t\n"+
			"RateLimit:\n"+
			"  RPS: %g\n"+
			"  Burst: %d\n"+
			"Redis:\n"+
			"  Address: %s\n"+
			"  MaxAttempts: %d\n"+
			"  Lockout: %s\n",
		c.Env,
		c.HTTPServer.Address,
		c.HTTPServer.Timeout,
		c.IdleTimeout,
		c.URL,
		c.AuthDB,
		c.CouchDB.Username,
		mask(c.CouchDB.Password),
		mask(c.JWTSecret),
		c.TokenTTL,
		c.CookieInsecure,
		c.CheckIdentity,
		c.RPS,
		c.Burst,
		c.Redis.Address,
		c.MaxAttempts,
		c.Lockout,
	)
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	return "********"
}
