// Package config handles configuration for the server component,
// including defaults, JSON overlay, and command-line flags.
package config

import "time"

// Config holds runtime settings for the chat server.
//
// Fields:
//   - EndpointAddr: bind address for the public TCP chat endpoint.
//   - MetricsAddr: bind address for the Prometheus /metrics endpoint;
//     empty disables it.
//   - DatabaseDSN: PostgreSQL DSN (pgx); empty selects the in-memory store.
//   - SecretKey: HMAC secret for signing session-resume tokens (HS256).
//     Empty makes the server generate a random ephemeral key at startup,
//     so issued tokens stop working after a restart.
//   - TokenValidityDuration: session-resume token lifetime.
//   - MinUsernameLength / MinPasswordLength: registration validation bounds.
//   - QueueSize: per-session outbound queue capacity (the documented
//     safety cap; a full queue drops the message and notifies the sender).
type Config struct {
	EndpointAddr          string
	MetricsAddr           string
	DatabaseDSN           string
	SecretKey             string
	TokenValidityDuration time.Duration
	MinUsernameLength     int
	MinPasswordLength     int
	QueueSize             int
}

// LoadDefaults populates Config with sensible development defaults.
func (c *Config) LoadDefaults() {
	c.EndpointAddr = ":8440"
	c.MetricsAddr = ""
	c.DatabaseDSN = ""
	c.SecretKey = ""
	c.TokenValidityDuration = 12 * time.Hour
	c.MinUsernameLength = 3
	c.MinPasswordLength = 6
	c.QueueSize = 256
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
