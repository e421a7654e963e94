package config

import (
	"flag"
	"os"
	"testing"
)

var configEnvVars = []string{
	"CONFIG_FILE", "ENV_FILE",
	"SOURCE_UPRN", "SOURCE_API_URL", "SOURCE_FETCH_TIMEOUT", "SOURCE_USER_AGENT",
	"MQTT_HOST", "MQTT_PORT", "MQTT_USERNAME", "MQTT_PASSWORD", "MQTT_TOPIC_PREFIX",
	"MQTT_CLIENT_ID", "MQTT_QOS", "MQTT_RETAIN", "MQTT_CONNECT_TIMEOUT", "MQTT_WRITE_TIMEOUT",
	"MQTT_DISCONNECT_TIMEOUT", "MQTT_TLS_ENABLED", "MQTT_CA_CERT", "MQTT_CLIENT_CERT",
	"MQTT_CLIENT_KEY", "MQTT_TLS_INSECURE_SKIP", "MQTT_USE_CERT_CN_PREFIX",
	"SCHEDULE_CRON", "SCHEDULE_TIMEZONE", "SCHEDULE_RUN_TIMEOUT", "SCHEDULE_SHUTDOWN_TIMEOUT",
	"SCHEDULE_RUN_ON_START", "SCHEDULE_DRY_RUN",
	"LOCK_REDIS_ADDRESS", "LOCK_REDIS_PASSWORD", "LOCK_REDIS_DB", "LOCK_KEY", "LOCK_TTL", "LOCK_DIAL_TIMEOUT",
}

// clearTestEnv unsets every variable the loader reads; t.Setenv restores them after the test.
func clearTestEnv(t *testing.T) {
	t.Helper()
	for _, v := range configEnvVars {
		t.Setenv(v, "")
		_ = os.Unsetenv(v)
	}
}

// setRequiredEnv sets the settings that have no default.
func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("SOURCE_UPRN", "10000214236")
	t.Setenv("SOURCE_API_URL", "https://bins.example.gov.uk/api/collections")
	t.Setenv("MQTT_HOST", "broker.local")
	t.Setenv("MQTT_TOPIC_PREFIX", "awtrix")
}

// resetTestFlags installs a fresh flag set parsed from args.
func resetTestFlags(t *testing.T, args ...string) {
	t.Helper()
	oldArgs := os.Args
	oldCommandLine := flag.CommandLine
	t.Cleanup(func() {
		os.Args = oldArgs
		flag.CommandLine = oldCommandLine
	})

	os.Args = append([]string{"test"}, args...)
	flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	resetFlags()
}

func resetFlags() {
	flagConfigFile = flag.String("config", "", "YAML configuration file")
	flagEnvFile = flag.String("env-file", "", ".env file to export before reading the environment")

	flagSourceUPRN = flag.Int64("source-uprn", 0, "Property UPRN")
	flagSourceAPIURL = flag.String("source-api-url", "", "Collection schedule API URL")
	flagSourceFetchTimeout = flag.Duration("source-fetch-timeout", 0, "HTML fetch timeout")

	flagMQTTHost = flag.String("mqtt-host", "", "MQTT broker host")
	flagMQTTPort = flag.Int("mqtt-port", 0, "MQTT broker port")
	flagMQTTUsername = flag.String("mqtt-username", "", "MQTT username")
	flagMQTTPassword = flag.String("mqtt-password", "", "MQTT password")
	flagMQTTTopicPrefix = flag.String("mqtt-topic-prefix", "", "MQTT topic prefix")
	flagMQTTClientID = flag.String("mqtt-client-id", "", "MQTT client ID base")
	flagMQTTQoS = flag.Int("mqtt-qos", -1, "MQTT QoS (0, 1, or 2)")
	flagMQTTConnectTimeout = flag.Duration("mqtt-connect-timeout", 0, "MQTT connect timeout")
	flagMQTTWriteTimeout = flag.Duration("mqtt-write-timeout", 0, "MQTT publish timeout")
	flagMQTTTLSEnabled = flag.Bool("mqtt-tls-enabled", false, "Enable MQTT TLS")
	flagMQTTCACert = flag.String("mqtt-ca-cert", "", "MQTT CA certificate path")

	flagScheduleCron = flag.String("schedule-cron", "", "Cron expression with seconds field")
	flagScheduleTimezone = flag.String("schedule-timezone", "", "IANA timezone")
	flagScheduleRunOnStart = flag.Bool("schedule-run-on-start", false, "Run once immediately at startup")
	flagScheduleDryRun = flag.Bool("schedule-dry-run", false, "Decide but do not publish")
	flagOnce = flag.Bool("once", false, "Run a single invocation and exit")

	flagLockRedisAddress = flag.String("lock-redis-address", "", "Redis address for the run lock")
}
