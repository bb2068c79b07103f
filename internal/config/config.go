// Package config loads application configuration from a .env file and from
// environment variables. Environment variables take precedence, so deployed
// instances configure themselves without a file on disk.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config holds the application configuration.
type Config struct {
	Port          int    `mapstructure:"PORT"`
	DBPath        string `mapstructure:"DB_PATH"`
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	SessionSecret string `mapstructure:"SESSION_SECRET"`
	RawgAPIKey    string `mapstructure:"RAWG_API_KEY"`
	RawgBaseURL   string `mapstructure:"RAWG_BASE_URL"`
	TemplateDir   string `mapstructure:"TEMPLATE_DIR"`
	StaticDir     string `mapstructure:"STATIC_DIR"`
}

// Load reads configuration from ./.env (if present) and the environment.
//
// The API key and session secret have no defaults: the first is issued by
// the catalog provider and the second signs the session cookie, so shipping
// a baked-in value for either would be a credential leak.
func Load() (*Config, error) {
	v := viper.New()

	v.AddConfigPath(".")
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	// Defaults double as the key registry — viper.Unmarshal only sees
	// env-provided values for keys it already knows about.
	v.SetDefault("PORT", 8080)
	v.SetDefault("DB_PATH", "data/gameshelf.db")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("SESSION_SECRET", "")
	v.SetDefault("RAWG_API_KEY", "")
	v.SetDefault("RAWG_BASE_URL", "https://api.rawg.io/api")
	v.SetDefault("TEMPLATE_DIR", "web/templates")
	v.SetDefault("STATIC_DIR", "web/static")

	if err := v.ReadInConfig(); err != nil {
		// A missing .env is fine — environment variables still apply.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("config: reading .env: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decoding: %w", err)
	}

	if cfg.RawgAPIKey == "" {
		return nil, fmt.Errorf("config: RAWG_API_KEY is required")
	}
	if len(cfg.SessionSecret) < 16 {
		return nil, fmt.Errorf("config: SESSION_SECRET must be at least 16 characters")
	}

	return &cfg, nil
}
