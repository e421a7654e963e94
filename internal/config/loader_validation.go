package config

import (
	"net/url"

	"github.com/robfig/cron/v3"
)

// CronParser parses the six-field (seconds first) schedule expressions this service accepts.
var CronParser = cron.NewParser(
	cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Validate checks configuration constraints
func Validate(cfg *Config) error {
	if err := cfg.Source.Validate(); err != nil {
		return err
	}
	if err := cfg.MQTT.Validate(); err != nil {
		return err
	}
	if err := cfg.Schedule.Validate(); err != nil {
		return err
	}
	if err := cfg.Lock.Validate(); err != nil {
		return err
	}
	minRun := cfg.Source.FetchTimeout + cfg.MQTT.ConnectTimeout + cfg.MQTT.WriteTimeout
	if cfg.Schedule.RunTimeout < minRun {
		return invalid("schedule run timeout", "must cover fetch, connect and write timeouts ("+minRun.String()+")")
	}
	return nil
}

// Validate checks the source settings
func (c *SourceConfig) Validate() error {
	if c.UPRN <= 0 {
		return invalid("source uprn", "is required")
	}
	if c.APIURL == "" {
		return invalid("source api url", "is required")
	}
	u, err := url.Parse(c.APIURL)
	if err != nil {
		return invalidErr("source api url", "is not a valid URL", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return invalid("source api url", "must be an absolute http or https URL")
	}
	if c.FetchTimeout <= 0 {
		return invalid("source fetch timeout", "must be positive")
	}
	return nil
}

// Validate checks the broker settings; the publisher calls it before any network attempt.
func (c *MQTTConfig) Validate() error {
	if c.Host == "" {
		return invalid("mqtt host", "is required")
	}
	if c.Port < 1 || c.Port > 65535 {
		return invalid("mqtt port", "must be between 1 and 65535")
	}
	if (c.Username == "") != (c.Password == "") {
		return invalid("mqtt credentials", "require both username and password")
	}
	if c.TopicPrefix == "" {
		return invalid("mqtt topic prefix", "is required")
	}
	if c.ClientID == "" {
		return invalid("mqtt client id", "cannot be empty")
	}
	if c.QoS > 2 {
		return invalid("mqtt qos", "must be 0, 1 or 2")
	}
	if c.ConnectTimeout <= 0 {
		return invalid("mqtt connect timeout", "must be positive")
	}
	if c.WriteTimeout <= 0 {
		return invalid("mqtt write timeout", "must be positive")
	}
	if (c.ClientCert == "") != (c.ClientKey == "") {
		return invalid("mqtt client certificate", "requires both cert and key")
	}
	return nil
}

// Validate checks the schedule settings
func (c *ScheduleConfig) Validate() error {
	if _, err := CronParser.Parse(c.Cron); err != nil {
		return invalidErr("schedule cron", "is not a valid expression", err)
	}
	if _, err := c.Location(); err != nil {
		return invalidErr("schedule timezone", "is unknown", err)
	}
	if c.RunTimeout <= 0 {
		return invalid("schedule run timeout", "must be positive")
	}
	if c.ShutdownTimeout <= 0 {
		return invalid("schedule shutdown timeout", "must be positive")
	}
	return nil
}

// Validate checks the lock settings when the lock is enabled
func (c *LockConfig) Validate() error {
	if !c.Enabled() {
		return nil
	}
	if c.Key == "" {
		return invalid("lock key", "cannot be empty")
	}
	if c.TTL <= 0 {
		return invalid("lock ttl", "must be positive")
	}
	if c.DB < 0 {
		return invalid("lock redis db", "must not be negative")
	}
	return nil
}
