package config

import (
	"errors"
	"os"
	"strconv"
	"time"
)

// loadSourceFromEnv loads source configuration from environment variables
func loadSourceFromEnv(env *envReader, cfg *SourceConfig) {
	if v, ok := env.int64("SOURCE_UPRN"); ok {
		cfg.UPRN = v
	}
	if v := env.string("SOURCE_API_URL"); v != "" {
		cfg.APIURL = v
	}
	if v, ok := env.duration("SOURCE_FETCH_TIMEOUT"); ok {
		cfg.FetchTimeout = v
	}
	if v := env.string("SOURCE_USER_AGENT"); v != "" {
		cfg.UserAgent = v
	}
}

// loadMQTTFromEnv loads MQTT configuration from environment variables
func loadMQTTFromEnv(env *envReader, cfg *MQTTConfig) {
	loadMQTTStrings(env, cfg)
	loadMQTTInts(env, cfg)
	loadMQTTTimeouts(env, cfg)
	loadMQTTTLS(env, cfg)
}

func loadMQTTStrings(env *envReader, cfg *MQTTConfig) {
	if v := env.string("MQTT_HOST"); v != "" {
		cfg.Host = v
	}
	if v := env.string("MQTT_USERNAME"); v != "" {
		cfg.Username = v
	}
	if v := env.string("MQTT_PASSWORD"); v != "" {
		cfg.Password = v
	}
	if v := env.string("MQTT_TOPIC_PREFIX"); v != "" {
		cfg.TopicPrefix = v
	}
	if v := env.string("MQTT_CLIENT_ID"); v != "" {
		cfg.ClientID = v
	}
	if v, ok := env.bool("MQTT_RETAIN"); ok {
		cfg.Retain = v
	}
}

func loadMQTTInts(env *envReader, cfg *MQTTConfig) {
	if v, ok := env.int("MQTT_PORT"); ok {
		cfg.Port = v
	}
	if v, ok := env.int("MQTT_QOS"); ok {
		if v < 0 || v > 2 {
			env.fail("MQTT_QOS", "must be 0, 1 or 2")
		} else {
			cfg.QoS = byte(v) // #nosec G115 - validated range 0-2
		}
	}
	if v, ok := env.int("MQTT_DISCONNECT_TIMEOUT"); ok {
		if v < 0 {
			env.fail("MQTT_DISCONNECT_TIMEOUT", "must not be negative")
		} else {
			cfg.DisconnectTimeout = uint(v) // #nosec G115 - checked non-negative
		}
	}
}

func loadMQTTTimeouts(env *envReader, cfg *MQTTConfig) {
	if v, ok := env.duration("MQTT_CONNECT_TIMEOUT"); ok {
		cfg.ConnectTimeout = v
	}
	if v, ok := env.duration("MQTT_WRITE_TIMEOUT"); ok {
		cfg.WriteTimeout = v
	}
}

func loadMQTTTLS(env *envReader, cfg *MQTTConfig) {
	if v, ok := env.bool("MQTT_TLS_ENABLED"); ok {
		cfg.TLSEnabled = v
	}
	if v := env.string("MQTT_CA_CERT"); v != "" {
		cfg.CACert = v
	}
	if v := env.string("MQTT_CLIENT_CERT"); v != "" {
		cfg.ClientCert = v
	}
	if v := env.string("MQTT_CLIENT_KEY"); v != "" {
		cfg.ClientKey = v
	}
	if v, ok := env.bool("MQTT_TLS_INSECURE_SKIP"); ok {
		cfg.InsecureSkip = v
	}
	if v, ok := env.bool("MQTT_USE_CERT_CN_PREFIX"); ok {
		cfg.UseCertCNPrefix = v
	}
}

// loadScheduleFromEnv loads schedule configuration from environment variables
func loadScheduleFromEnv(env *envReader, cfg *ScheduleConfig) {
	if v := env.string("SCHEDULE_CRON"); v != "" {
		cfg.Cron = v
	}
	if v := env.string("SCHEDULE_TIMEZONE"); v != "" {
		cfg.Timezone = v
	}
	if v, ok := env.duration("SCHEDULE_RUN_TIMEOUT"); ok {
		cfg.RunTimeout = v
	}
	if v, ok := env.duration("SCHEDULE_SHUTDOWN_TIMEOUT"); ok {
		cfg.ShutdownTimeout = v
	}
	if v, ok := env.bool("SCHEDULE_RUN_ON_START"); ok {
		cfg.RunOnStart = v
	}
	if v, ok := env.bool("SCHEDULE_DRY_RUN"); ok {
		cfg.DryRun = v
	}
}

// loadLockFromEnv loads the run lock configuration from environment variables
func loadLockFromEnv(env *envReader, cfg *LockConfig) {
	if v := env.string("LOCK_REDIS_ADDRESS"); v != "" {
		cfg.RedisAddress = v
	}
	if v := env.string("LOCK_REDIS_PASSWORD"); v != "" {
		cfg.Password = v
	}
	if v, ok := env.int("LOCK_REDIS_DB"); ok {
		cfg.DB = v
	}
	if v := env.string("LOCK_KEY"); v != "" {
		cfg.Key = v
	}
	if v, ok := env.duration("LOCK_TTL"); ok {
		cfg.TTL = v
	}
	if v, ok := env.duration("LOCK_DIAL_TIMEOUT"); ok {
		cfg.DialTimeout = v
	}
}

// envReader reads typed environment variables and remembers the ones that
// are set but malformed, so a typo is reported instead of silently ignored.
type envReader struct {
	errs []error
}

func (r *envReader) fail(key, reason string) {
	r.errs = append(r.errs, invalid(key, reason))
}

func (r *envReader) err() error {
	return errors.Join(r.errs...)
}

func (r *envReader) string(key string) string {
	return os.Getenv(key)
}

func (r *envReader) int(key string) (int, bool) {
	value := os.Getenv(key)
	if value == "" {
		return 0, false
	}
	v, err := strconv.Atoi(value)
	if err != nil {
		r.fail(key, "must be an integer")
		return 0, false
	}
	return v, true
}

func (r *envReader) int64(key string) (int64, bool) {
	value := os.Getenv(key)
	if value == "" {
		return 0, false
	}
	v, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		r.fail(key, "must be an integer")
		return 0, false
	}
	return v, true
}

func (r *envReader) duration(key string) (time.Duration, bool) {
	value := os.Getenv(key)
	if value == "" {
		return 0, false
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		r.fail(key, "must be a duration")
		return 0, false
	}
	return d, true
}

func (r *envReader) bool(key string) (bool, bool) {
	value := os.Getenv(key)
	if value == "" {
		return false, false
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		r.fail(key, "must be a boolean")
		return false, false
	}
	return b, true
}
