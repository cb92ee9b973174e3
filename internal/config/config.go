// Package config provides YAML-based configuration loading for the
// planning poker backend.
package config

// Config is the root configuration for the server process.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Session SessionConfig `yaml:"session"`
	Engine  EngineConfig  `yaml:"engine"`
}

// ServerConfig defines the HTTP/WebSocket listener.
type ServerConfig struct {
	Listen              string   `yaml:"listen"`          // host:port to listen on
	AllowedOrigins      []string `yaml:"allowed_origins"` // CORS origin patterns, "*" allows all
	ShutdownTimeoutSecs int      `yaml:"shutdown_timeout_secs"`
}

// SessionConfig defines session lifecycle behavior.
type SessionConfig struct {
	TTLHours               int  `yaml:"ttl_hours"`                 // fixed session lifetime
	SweepIntervalMinutes   int  `yaml:"sweep_interval_minutes"`    // reaper period
	RejectVotesAfterReveal bool `yaml:"reject_votes_after_reveal"` // drop votes once revealed
}

// EngineConfig defines channel sizing for the engine and connections.
type EngineConfig struct {
	QueueSize  int `yaml:"queue_size"`  // inbound message buffer
	ConnBuffer int `yaml:"conn_buffer"` // per-connection outbound event buffer
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Listen:              ":3000",
			AllowedOrigins:      []string{"*"},
			ShutdownTimeoutSecs: 10,
		},
		Session: SessionConfig{
			TTLHours:             24,
			SweepIntervalMinutes: 5,
		},
		Engine: EngineConfig{
			QueueSize:  256,
			ConnBuffer: 64,
		},
	}
}
