package config

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const defaultEnvFile = ".env"

func configFilePath() string {
	if *flagConfigFile != "" {
		return *flagConfigFile
	}
	return os.Getenv("CONFIG_FILE")
}

func envFilePath() string {
	if *flagEnvFile != "" {
		return *flagEnvFile
	}
	return os.Getenv("ENV_FILE")
}

// loadFile overlays a YAML document onto cfg. An empty path is a no-op.
func loadFile(cfg *Config, path string) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path) // #nosec G304 - path is operator supplied
	if err != nil {
		return invalidErr("config file", "cannot be read", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return invalidErr("config file", "is not valid YAML", err)
	}
	return nil
}

// loadDotEnv exports the variables of a .env file without overriding variables already set.
// An explicit path must exist; the implicit ./.env is only read when present.
func loadDotEnv(path string) error {
	if path == "" {
		if _, err := os.Stat(defaultEnvFile); errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		path = defaultEnvFile
	}
	if err := godotenv.Load(path); err != nil {
		return invalidErr("env file", "cannot be loaded", err)
	}
	return nil
}
