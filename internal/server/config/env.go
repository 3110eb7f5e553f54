package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// envPrefix namespaces environment variables, e.g. RECIPES_DATABASE_DSN.
const envPrefix = "RECIPES"

// parseEnv overlays RECIPES_* variables on config. Variables that are not set
// leave the current values untouched. When envFile is empty an optional
// ./.env is loaded; a named envFile must exist. Variables already present in
// the process environment win over dotenv values.
func parseEnv(config *Config, envFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("load env file %s: %w", envFile, err)
		}
	} else if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	if err := envconfig.Process(envPrefix, config); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}
	return nil
}
