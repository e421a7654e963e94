package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	clearTestEnv(t)
	resetTestFlags(t)
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	tests := []struct {
		name string
		got  interface{}
		want interface{}
	}{
		{"Source.UPRN", cfg.Source.UPRN, int64(10000214236)},
		{"Source.FetchTimeout", cfg.Source.FetchTimeout, 30 * time.Second},
		{"MQTT.Port", cfg.MQTT.Port, 1883},
		{"MQTT.ClientID", cfg.MQTT.ClientID, "bindicator"},
		{"MQTT.QoS", cfg.MQTT.QoS, byte(0)},
		{"MQTT.ConnectTimeout", cfg.MQTT.ConnectTimeout, 30 * time.Second},
		{"MQTT.TLSEnabled", cfg.MQTT.TLSEnabled, false},
		{"Schedule.Cron", cfg.Schedule.Cron, "0 0 2 * * *"},
		{"Schedule.RunTimeout", cfg.Schedule.RunTimeout, 90 * time.Second},
		{"Schedule.Once", cfg.Schedule.Once, false},
		{"Lock.Enabled", cfg.Lock.Enabled(), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("%s = %v; want %v", tt.name, tt.got, tt.want)
			}
		})
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	tests := []struct {
		name      string
		unset     string
		wantField string
	}{
		{"no uprn", "SOURCE_UPRN", "source uprn"},
		{"no api url", "SOURCE_API_URL", "source api url"},
		{"no host", "MQTT_HOST", "mqtt host"},
		{"no topic prefix", "MQTT_TOPIC_PREFIX", "mqtt topic prefix"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearTestEnv(t)
			resetTestFlags(t)
			setRequiredEnv(t)
			_ = os.Unsetenv(tt.unset)

			_, err := Load()
			var cfgErr *ConfigurationError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("Load() error = %v; want *ConfigurationError", err)
			}
			if cfgErr.Field != tt.wantField {
				t.Errorf("Field = %q; want %q", cfgErr.Field, tt.wantField)
			}
		})
	}
}

func TestLoad_MalformedEnvironment(t *testing.T) {
	clearTestEnv(t)
	resetTestFlags(t)
	setRequiredEnv(t)
	t.Setenv("MQTT_PORT", "eighteen")
	t.Setenv("SCHEDULE_DRY_RUN", "perhaps")

	_, err := Load()
	if err == nil {
		t.Fatal("Load() error = nil; want error for malformed variables")
	}
	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("Load() error = %v; want *ConfigurationError", err)
	}
}

func TestLoad_YAMLFile(t *testing.T) {
	clearTestEnv(t)
	setRequiredEnv(t)

	path := filepath.Join(t.TempDir(), "bindicator.yaml")
	content := `
source:
  uprn: 42
  fetch_timeout: 5s
mqtt:
  port: 8883
  tls_enabled: true
  client_id: from-yaml
schedule:
  cron: "0 30 6 * * *"
  timezone: UTC
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	resetTestFlags(t, "-config="+path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	// Environment beats the file for UPRN.
	if cfg.Source.UPRN != 10000214236 {
		t.Errorf("Source.UPRN = %d; want env value 10000214236", cfg.Source.UPRN)
	}
	if cfg.Source.FetchTimeout != 5*time.Second {
		t.Errorf("Source.FetchTimeout = %v; want 5s", cfg.Source.FetchTimeout)
	}
	if cfg.MQTT.Port != 8883 || !cfg.MQTT.TLSEnabled {
		t.Errorf("MQTT = %d/%v; want 8883/true", cfg.MQTT.Port, cfg.MQTT.TLSEnabled)
	}
	if cfg.MQTT.ClientID != "from-yaml" {
		t.Errorf("MQTT.ClientID = %s; want from-yaml", cfg.MQTT.ClientID)
	}
	if cfg.Schedule.Cron != "0 30 6 * * *" || cfg.Schedule.Timezone != "UTC" {
		t.Errorf("Schedule = %q/%q", cfg.Schedule.Cron, cfg.Schedule.Timezone)
	}
}

func TestLoad_YAMLFileMissing(t *testing.T) {
	clearTestEnv(t)
	setRequiredEnv(t)
	resetTestFlags(t, "-config=/nonexistent/bindicator.yaml")

	_, err := Load()
	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) || cfgErr.Field != "config file" {
		t.Fatalf("Load() error = %v; want config file error", err)
	}
}

func TestLoad_DotEnvFile(t *testing.T) {
	clearTestEnv(t)
	t.Setenv("MQTT_HOST", "env-wins")

	path := filepath.Join(t.TempDir(), "test.env")
	content := "SOURCE_UPRN=7\nSOURCE_API_URL=http://council.test/bins\nMQTT_HOST=dotenv-host\nMQTT_TOPIC_PREFIX=from-dotenv\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to write env file: %v", err)
	}
	resetTestFlags(t, "-env-file="+path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Source.UPRN != 7 {
		t.Errorf("Source.UPRN = %d; want 7", cfg.Source.UPRN)
	}
	if cfg.MQTT.TopicPrefix != "from-dotenv" {
		t.Errorf("MQTT.TopicPrefix = %s; want from-dotenv", cfg.MQTT.TopicPrefix)
	}
	// .env never overrides the real environment.
	if cfg.MQTT.Host != "env-wins" {
		t.Errorf("MQTT.Host = %s; want env-wins", cfg.MQTT.Host)
	}
}

func TestLoad_FlagsOverrideEnvironment(t *testing.T) {
	clearTestEnv(t)
	setRequiredEnv(t)
	t.Setenv("MQTT_PORT", "1884")
	t.Setenv("SCHEDULE_DRY_RUN", "true")
	resetTestFlags(t,
		"-mqtt-port=2883",
		"-mqtt-topic-prefix=flag-prefix",
		"-schedule-dry-run=false",
		"-once",
	)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.MQTT.Port != 2883 {
		t.Errorf("MQTT.Port = %d; want 2883", cfg.MQTT.Port)
	}
	if cfg.MQTT.TopicPrefix != "flag-prefix" {
		t.Errorf("MQTT.TopicPrefix = %s; want flag-prefix", cfg.MQTT.TopicPrefix)
	}
	if cfg.Schedule.DryRun {
		t.Error("Schedule.DryRun = true; want false from flag")
	}
	if !cfg.Schedule.Once {
		t.Error("Schedule.Once = false; want true")
	}
}
