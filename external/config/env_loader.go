package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	internalconfig "github.com/plumdale/spinwrap/internal/config"
)

type envConfig struct {
	Env           string `env:"ENV" envDefault:"production"`
	DatabaseURL   string `env:"DATABASE_URL,required"`
	DiscordToken  string `env:"DISCORD_TOKEN,required"`
	FactsAPIURL   string `env:"FACTS_API_URL"`
	FactsAPIKey   string `env:"FACTS_API_KEY"`
	FactsModel    string `env:"FACTS_MODEL" envDefault:"gpt-4o-mini"`
	FactsMaxWords int    `env:"FACTS_MAX_WORDS" envDefault:"40"`
}

func Load() (*internalconfig.Config, error) {
	var raw envConfig
	if err := env.Parse(&raw); err != nil {
		return nil, fmt.Errorf("environment variables are invalid or missing: %w", err)
	}

	cfg := &internalconfig.Config{
		Env:           raw.Env,
		DatabaseURL:   raw.DatabaseURL,
		DiscordToken:  raw.DiscordToken,
		FactsAPIURL:   raw.FactsAPIURL,
		FactsAPIKey:   raw.FactsAPIKey,
		FactsModel:    raw.FactsModel,
		FactsMaxWords: raw.FactsMaxWords,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
