package registry

import (
	"github.com/kelseyhightower/envconfig"

	"github.com/modelvault/modelvault/core/constants"
)

type Config struct {
	Server struct {
		Host string `envconfig:"SERVER_HOST"`
		Port int    `envconfig:"SERVER_PORT"`
	}
	Store struct {
		Path string `envconfig:"STORE_PATH"`
	}
	Oracle struct {
		Addr string `envconfig:"ORACLE_ADDR"`
	}
	Admin struct {
		Identity string `envconfig:"ADMIN_IDENTITY"`
	}
	RateLimit struct {
		Limit      int   `envconfig:"RATE_LIMIT"`
		WindowSecs int64 `envconfig:"RATE_LIMIT_WINDOW_SECS"`
	}
}

func GetConfig() (*Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return nil, err
	}

	if cfg.RateLimit.Limit == 0 {
		cfg.RateLimit.Limit = constants.DEFAULT_RATE_LIMIT
	}

	if cfg.RateLimit.WindowSecs == 0 {
		cfg.RateLimit.WindowSecs = constants.DEFAULT_RATE_WINDOW_SECS
	}

	return &cfg, nil
}
