// Package config handles YAML configuration loading, environment variable
// expansion, and validation for droidbridge.
package config

// Config is the top-level configuration structure.
type Config struct {
	// DebugMode enables debug-level logging. The debug log is still routed
	// through the redacting handler.
	DebugMode bool `yaml:"debug_mode"`

	Security   SecurityConfig   `yaml:"security"`
	Gateway    GatewayConfig    `yaml:"gateway"`
	UI         UIConfig         `yaml:"ui"`
	TTS        TTSConfig        `yaml:"tts"`
	Collection CollectionConfig `yaml:"collection"`
}

// SecurityConfig bounds what untrusted template scripts can do.
type SecurityConfig struct {
	// RateLimitPerSecond caps API calls per template and function.
	RateLimitPerSecond float64 `yaml:"rate_limit_per_second"`

	// MaxPayloadBytes caps the JSON args segment of one call.
	MaxPayloadBytes int `yaml:"max_payload_bytes"`

	// AuditLogPath is the JSONL audit trail destination. Empty disables the
	// file sink; events still reach any in-process subscriber.
	AuditLogPath string `yaml:"audit_log_path"`
}

// GatewayConfig configures the local WebSocket gateway the review web view
// connects to.
type GatewayConfig struct {
	// Bind is the listen address. Loopback only in any sane deployment.
	Bind string `yaml:"bind"`

	// SocketMessagesPerSecond bounds the per-connection read loop before
	// commands reach the core limiter.
	SocketMessagesPerSecond float64 `yaml:"socket_messages_per_second"`

	// SocketReadLimitBytes caps a single inbound frame.
	SocketReadLimitBytes int64 `yaml:"socket_read_limit_bytes"`
}

// UIConfig controls toast notifications.
type UIConfig struct {
	ShowToastNotifications bool `yaml:"show_toast_notifications"`
	ToastDurationMS        int  `yaml:"toast_duration_ms"`
}

// TTSConfig controls the text-to-speech subsystem.
type TTSConfig struct {
	Enabled bool `yaml:"enabled"`
}

// CollectionConfig locates the card collection database.
type CollectionConfig struct {
	Path string `yaml:"path"`
}

// Default returns the configuration used when keys are absent. Load
// unmarshals on top of it, so YAML only needs to state deviations.
func Default() *Config {
	return &Config{
		Security: SecurityConfig{
			RateLimitPerSecond: 10,
			MaxPayloadBytes:    10 * 1024,
		},
		Gateway: GatewayConfig{
			Bind:                    "127.0.0.1:27131",
			SocketMessagesPerSecond: 50,
			SocketReadLimitBytes:    32 * 1024,
		},
		UI: UIConfig{
			ShowToastNotifications: true,
			ToastDurationMS:        2000,
		},
		TTS: TTSConfig{
			Enabled: true,
		},
		Collection: CollectionConfig{
			Path: "droidbridge.db",
		},
	}
}
