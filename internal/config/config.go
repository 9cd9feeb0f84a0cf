// internal/config/config.go
//
// Process configuration, parsed from environment variables into a struct.
// `.env` files are honored in development (godotenv), then caarlos0/env
// fills the struct. Replaces scattered os.Getenv reads so every knob is
// named in one place.

package config

import (
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds every process-level setting.
type Config struct {
	Port        string `env:"PORT" envDefault:"5175"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	DBPath      string `env:"DB_PATH" envDefault:"./data/app.db"`
	Production  bool   `env:"PRODUCTION" envDefault:"false"`

	ClientOrigin string `env:"CLIENT_ORIGIN" envDefault:"http://localhost:5173"`

	JWTSecret      string `env:"JWT_SECRET" envDefault:"dev_secret_change_me"`
	JWTExpiresDays int    `env:"JWT_EXPIRES_DAYS" envDefault:"14"`
	CookieName     string `env:"COOKIE_NAME" envDefault:"rhymegrid_token"`

	DailySalt string `env:"DAILY_SALT" envDefault:"local_dev_salt"`

	GenMaxAttempts uint `env:"GEN_MAX_ATTEMPTS" envDefault:"3"`
}

// Load reads .env (best effort) and parses the environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
