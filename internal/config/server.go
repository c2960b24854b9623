package config

import "github.com/caarlos0/env/v11"

type ServerConfig struct {
	PostgresDSN string `env:"POSTGRES_DSN,required,notEmpty"`
	HTTPAddr    string `env:"HTTP_ADDR" envDefault:":8080"`

	AdminAPIKey string `env:"ADMIN_API_KEY"`

	// SignupGrantUnits is credited to every new player account.
	SignupGrantUnits int64 `env:"SIGNUP_GRANT_UNITS" envDefault:"10000"`

	// ResolveCron drives the period-ready trigger. Duplicate or early
	// fires are harmless: resolution is idempotent and cooldown-guarded.
	ResolveCron string `env:"RESOLVE_CRON" envDefault:"0 */10 * * * *"`
}

func LoadServer() (ServerConfig, error) {
	var cfg ServerConfig
	err := env.Parse(&cfg)
	return cfg, err
}
