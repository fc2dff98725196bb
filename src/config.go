package src

import (
	"fmt"
	"os"

	"hotel_concierge/src/model"

	"github.com/kelseyhightower/envconfig"
)

const envPrefix = "CONCIERGE"

type Config struct {
	Log     model.LogConfig     `envconfig:"LOG" yaml:"log"`
	Engine  model.EngineConfig  `envconfig:"ENGINE" yaml:"engine"`
	Storage model.StorageConfig `envconfig:"STORAGE" yaml:"storage"`
	Server  model.ServerConfig  `envconfig:"SERVER" yaml:"server"`
}

// LoadConfig reads CONCIERGE_* variables, e.g. CONCIERGE_LOG_LEVEL or CONCIERGE_STORAGE_BACKEND.
// CONCIERGE_STORAGE_REDIS_URL falls back to REDIS_URL.
func LoadConfig() (*Config, error) {
	var config Config
	err := envconfig.Process(envPrefix, &config)
	if err != nil {
		return nil, fmt.Errorf("error processing environment configuration: %w", err)
	}
	if config.Storage.RedisURL == "" {
		config.Storage.RedisURL = os.Getenv("REDIS_URL")
	}

	return &config, nil
}
