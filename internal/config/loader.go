package config

import (
	"flag"
)

// Load loads configuration with precedence: defaults → YAML file → .env file → environment variables → command line flags.
// Every failure is a *ConfigurationError.
func Load() (*Config, error) {
	// Parse command line flags if not already parsed
	if !flag.Parsed() {
		flag.Parse()
	}

	// Step 1: Start with defaults
	cfg := defaultConfig()

	// Step 2: Optional YAML file, then optional .env file
	if err := loadFile(cfg, configFilePath()); err != nil {
		return nil, err
	}
	if err := loadDotEnv(envFilePath()); err != nil {
		return nil, err
	}

	// Step 3: Apply environment variables
	env := &envReader{}
	loadSourceFromEnv(env, &cfg.Source)
	loadMQTTFromEnv(env, &cfg.MQTT)
	loadScheduleFromEnv(env, &cfg.Schedule)
	loadLockFromEnv(env, &cfg.Lock)
	if err := env.err(); err != nil {
		return nil, err
	}

	// Step 4: Apply command line flags (highest precedence)
	applySourceFlags(&cfg.Source)
	applyMQTTFlags(&cfg.MQTT)
	applyScheduleFlags(&cfg.Schedule)
	applyLockFlags(&cfg.Lock)

	// Step 5: Derive the topic prefix from the client certificate if asked to
	if err := cfg.MQTT.resolveTopicPrefix(); err != nil {
		return nil, err
	}

	// Step 6: Validate the final configuration
	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
