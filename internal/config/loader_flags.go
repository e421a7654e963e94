package config

import (
	"flag"
)

// Command line flags (have precedence over environment variables)
var (
	flagConfigFile = flag.String("config", "", "YAML configuration file")
	flagEnvFile    = flag.String("env-file", "", ".env file to export before reading the environment")

	// Source flags
	flagSourceUPRN         = flag.Int64("source-uprn", 0, "Property UPRN")
	flagSourceAPIURL       = flag.String("source-api-url", "", "Collection schedule API URL")
	flagSourceFetchTimeout = flag.Duration("source-fetch-timeout", 0, "HTML fetch timeout")

	// MQTT flags
	flagMQTTHost           = flag.String("mqtt-host", "", "MQTT broker host")
	flagMQTTPort           = flag.Int("mqtt-port", 0, "MQTT broker port")
	flagMQTTUsername       = flag.String("mqtt-username", "", "MQTT username")
	flagMQTTPassword       = flag.String("mqtt-password", "", "MQTT password")
	flagMQTTTopicPrefix    = flag.String("mqtt-topic-prefix", "", "MQTT topic prefix")
	flagMQTTClientID       = flag.String("mqtt-client-id", "", "MQTT client ID base")
	flagMQTTQoS            = flag.Int("mqtt-qos", -1, "MQTT QoS (0, 1, or 2)")
	flagMQTTConnectTimeout = flag.Duration("mqtt-connect-timeout", 0, "MQTT connect timeout")
	flagMQTTWriteTimeout   = flag.Duration("mqtt-write-timeout", 0, "MQTT publish timeout")
	flagMQTTTLSEnabled     = flag.Bool("mqtt-tls-enabled", false, "Enable MQTT TLS")
	flagMQTTCACert         = flag.String("mqtt-ca-cert", "", "MQTT CA certificate path")

	// Schedule flags
	flagScheduleCron       = flag.String("schedule-cron", "", "Cron expression with seconds field")
	flagScheduleTimezone   = flag.String("schedule-timezone", "", "IANA timezone used for the schedule and for today's date")
	flagScheduleRunOnStart = flag.Bool("schedule-run-on-start", false, "Run once immediately at startup")
	flagScheduleDryRun     = flag.Bool("schedule-dry-run", false, "Decide but do not publish")
	flagOnce               = flag.Bool("once", false, "Run a single invocation and exit")

	// Lock flags
	flagLockRedisAddress = flag.String("lock-redis-address", "", "Redis address for the run lock (empty disables)")
)

// applySourceFlags applies command line flags to source configuration
func applySourceFlags(cfg *SourceConfig) {
	if *flagSourceUPRN != 0 {
		cfg.UPRN = *flagSourceUPRN
	}
	if *flagSourceAPIURL != "" {
		cfg.APIURL = *flagSourceAPIURL
	}
	if *flagSourceFetchTimeout != 0 {
		cfg.FetchTimeout = *flagSourceFetchTimeout
	}
}

// applyMQTTFlags applies command line flags to MQTT configuration
func applyMQTTFlags(cfg *MQTTConfig) {
	applyMQTTFlagStrings(cfg)
	applyMQTTFlagInts(cfg)
	applyMQTTFlagTimeouts(cfg)
	applyMQTTFlagTLS(cfg)
}

func applyMQTTFlagStrings(cfg *MQTTConfig) {
	if *flagMQTTHost != "" {
		cfg.Host = *flagMQTTHost
	}
	if *flagMQTTUsername != "" {
		cfg.Username = *flagMQTTUsername
	}
	if *flagMQTTPassword != "" {
		cfg.Password = *flagMQTTPassword
	}
	if *flagMQTTTopicPrefix != "" {
		cfg.TopicPrefix = *flagMQTTTopicPrefix
	}
	if *flagMQTTClientID != "" {
		cfg.ClientID = *flagMQTTClientID
	}
}

func applyMQTTFlagInts(cfg *MQTTConfig) {
	if *flagMQTTPort != 0 {
		cfg.Port = *flagMQTTPort
	}
	if *flagMQTTQoS >= 0 && *flagMQTTQoS <= 2 {
		cfg.QoS = byte(*flagMQTTQoS) // #nosec G115 - validated range 0-2
	}
}

func applyMQTTFlagTimeouts(cfg *MQTTConfig) {
	if *flagMQTTConnectTimeout != 0 {
		cfg.ConnectTimeout = *flagMQTTConnectTimeout
	}
	if *flagMQTTWriteTimeout != 0 {
		cfg.WriteTimeout = *flagMQTTWriteTimeout
	}
}

func applyMQTTFlagTLS(cfg *MQTTConfig) {
	if isFlagSet("mqtt-tls-enabled") {
		cfg.TLSEnabled = *flagMQTTTLSEnabled
	}
	if *flagMQTTCACert != "" {
		cfg.CACert = *flagMQTTCACert
	}
}

// applyScheduleFlags applies command line flags to schedule configuration
func applyScheduleFlags(cfg *ScheduleConfig) {
	if *flagScheduleCron != "" {
		cfg.Cron = *flagScheduleCron
	}
	if *flagScheduleTimezone != "" {
		cfg.Timezone = *flagScheduleTimezone
	}
	if isFlagSet("schedule-run-on-start") {
		cfg.RunOnStart = *flagScheduleRunOnStart
	}
	if isFlagSet("schedule-dry-run") {
		cfg.DryRun = *flagScheduleDryRun
	}
	cfg.Once = *flagOnce
}

func applyLockFlags(cfg *LockConfig) {
	if *flagLockRedisAddress != "" {
		cfg.RedisAddress = *flagLockRedisAddress
	}
}

// isFlagSet checks if a flag was explicitly set on the command line
func isFlagSet(name string) bool {
	found := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}
