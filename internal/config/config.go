package config

import "fmt"

type Config struct {
	Env           string
	DatabaseURL   string
	DiscordToken  string
	FactsAPIURL   string
	FactsAPIKey   string
	FactsModel    string
	FactsMaxWords int
}

func (c *Config) Validate() error {
	for _, req := range c.requiredFieldChecks() {
		if req.value == "" {
			return fmt.Errorf("%s is required", req.name)
		}
	}
	if c.FactsAPIURL != "" && c.FactsAPIKey == "" {
		return fmt.Errorf("FACTS_API_KEY is required when FACTS_API_URL is set")
	}
	if c.FactsMaxWords <= 0 {
		return fmt.Errorf("FACTS_MAX_WORDS must be positive, got %d", c.FactsMaxWords)
	}
	return nil
}

type requiredEnvField struct {
	name  string
	value string
}

func (c *Config) requiredFieldChecks() []requiredEnvField {
	return []requiredEnvField{
		{name: "DATABASE_URL", value: c.DatabaseURL},
		{name: "DISCORD_TOKEN", value: c.DiscordToken},
	}
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}
