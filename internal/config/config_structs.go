// Package config provides configuration loading and validation from files, environment variables and command line flags.
package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds the complete configuration
type Config struct {
	Source   SourceConfig   `yaml:"source"`
	MQTT     MQTTConfig     `yaml:"mqtt"`
	Schedule ScheduleConfig `yaml:"schedule"`
	Lock     LockConfig     `yaml:"lock"`
}

// SourceConfig describes the council collection-schedule endpoint
type SourceConfig struct {
	UPRN         int64         `yaml:"uprn"`
	APIURL       string        `yaml:"api_url"`
	FetchTimeout time.Duration `yaml:"fetch_timeout"`
	UserAgent    string        `yaml:"user_agent"`
}

// MQTTConfig holds the indicator broker settings. A value of this type is
// copied into the publisher at construction and never changed afterwards.
type MQTTConfig struct {
	Host              string        `yaml:"host"`
	Port              int           `yaml:"port"`
	Username          string        `yaml:"username"`
	Password          string        `yaml:"password"`
	TopicPrefix       string        `yaml:"topic_prefix"`
	ClientID          string        `yaml:"client_id"`
	QoS               byte          `yaml:"qos"`
	Retain            bool          `yaml:"retain"`
	ConnectTimeout    time.Duration `yaml:"connect_timeout"`
	WriteTimeout      time.Duration `yaml:"write_timeout"`
	DisconnectTimeout uint          `yaml:"disconnect_timeout"` // Milliseconds for graceful disconnect
	// TLS Configuration
	TLSEnabled      bool   `yaml:"tls_enabled"`
	CACert          string `yaml:"ca_cert"`
	ClientCert      string `yaml:"client_cert"`
	ClientKey       string `yaml:"client_key"`
	InsecureSkip    bool   `yaml:"tls_insecure_skip"`
	UseCertCNPrefix bool   `yaml:"use_cert_cn_prefix"` // If true, prefix the topic prefix with cert CN for ACL constraints
}

// Address returns host:port of the broker.
func (c *MQTTConfig) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// BrokerURL returns the broker URL in the form paho expects.
func (c *MQTTConfig) BrokerURL() string {
	scheme := "tcp"
	if c.TLSEnabled {
		scheme = "ssl"
	}
	return scheme + "://" + c.Address()
}

// HasCredentials reports whether both username and password are set.
func (c *MQTTConfig) HasCredentials() bool {
	return c.Username != "" && c.Password != ""
}

// ScheduleConfig controls when and how runs are triggered
type ScheduleConfig struct {
	Cron            string        `yaml:"cron"`
	Timezone        string        `yaml:"timezone"`
	RunTimeout      time.Duration `yaml:"run_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	RunOnStart      bool          `yaml:"run_on_start"`
	DryRun          bool          `yaml:"dry_run"`
	Once            bool          `yaml:"-"` // Set by -once only
}

// Location resolves Timezone; empty means the process local zone.
func (c *ScheduleConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

// LockConfig holds the optional Redis run lock. An empty RedisAddress disables it.
type LockConfig struct {
	RedisAddress string        `yaml:"redis_address"`
	Password     string        `yaml:"password"`
	DB           int           `yaml:"db"`
	Key          string        `yaml:"key"`
	TTL          time.Duration `yaml:"ttl"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
}

// Enabled reports whether a run lock is configured.
func (c *LockConfig) Enabled() bool {
	return c.RedisAddress != ""
}
