package config

import "github.com/caarlos0/env/v11"

type ServerConfig struct {
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080"`

	// TableCount is how many independent tables the server hosts.
	TableCount int `env:"TABLE_COUNT" envDefault:"1"`

	// StartingBalance funds the demo account at the in-memory wallet.
	StartingBalance int64  `env:"STARTING_BALANCE" envDefault:"100000"`
	AccountID       string `env:"ACCOUNT_ID" envDefault:"demo"`

	// TickIntervalMS is the driver cadence for phase advancement.
	TickIntervalMS int `env:"TICK_INTERVAL_MS" envDefault:"100"`
}

func LoadServer() (ServerConfig, error) {
	var cfg ServerConfig
	err := env.Parse(&cfg)
	return cfg, err
}
