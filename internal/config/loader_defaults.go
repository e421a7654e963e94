package config

import "time"

// defaultSourceConfig returns the default source configuration. UPRN and APIURL have no default.
func defaultSourceConfig() SourceConfig {
	return SourceConfig{
		FetchTimeout: 30 * time.Second,
		UserAgent:    "bindicator/1.0",
	}
}

// defaultMQTTConfig returns the default MQTT configuration. Host and TopicPrefix have no default.
func defaultMQTTConfig() MQTTConfig {
	return MQTTConfig{
		Port:              1883,
		ClientID:          "bindicator",
		QoS:               0,
		ConnectTimeout:    30 * time.Second,
		WriteTimeout:      10 * time.Second,
		DisconnectTimeout: 250,
	}
}

// defaultScheduleConfig returns the default schedule: daily at 02:00.
func defaultScheduleConfig() ScheduleConfig {
	return ScheduleConfig{
		Cron:            "0 0 2 * * *",
		Timezone:        "Local",
		RunTimeout:      90 * time.Second,
		ShutdownTimeout: 30 * time.Second,
	}
}

func defaultLockConfig() LockConfig {
	return LockConfig{
		Key:         "bindicator:run",
		TTL:         5 * time.Minute,
		DialTimeout: 5 * time.Second,
	}
}

// defaultConfig returns a complete configuration with all default values
func defaultConfig() *Config {
	return &Config{
		Source:   defaultSourceConfig(),
		MQTT:     defaultMQTTConfig(),
		Schedule: defaultScheduleConfig(),
		Lock:     defaultLockConfig(),
	}
}
