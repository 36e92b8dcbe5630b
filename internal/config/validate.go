package config

import (
	"errors"
	"fmt"
	"net"
)

// Validate checks a Config for values the bridge cannot run with. All
// problems are reported at once.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Security.RateLimitPerSecond <= 0 {
		errs = append(errs, fmt.Errorf("config: security.rate_limit_per_second must be positive, got %v", cfg.Security.RateLimitPerSecond))
	}
	if cfg.Security.MaxPayloadBytes <= 0 {
		errs = append(errs, fmt.Errorf("config: security.max_payload_bytes must be positive, got %d", cfg.Security.MaxPayloadBytes))
	}

	if cfg.Gateway.Bind == "" {
		errs = append(errs, errors.New("config: gateway.bind is required"))
	} else if _, _, err := net.SplitHostPort(cfg.Gateway.Bind); err != nil {
		errs = append(errs, fmt.Errorf("config: gateway.bind: %w", err))
	}
	if cfg.Gateway.SocketMessagesPerSecond <= 0 {
		errs = append(errs, fmt.Errorf("config: gateway.socket_messages_per_second must be positive, got %v", cfg.Gateway.SocketMessagesPerSecond))
	}
	if cfg.Gateway.SocketReadLimitBytes <= 0 {
		errs = append(errs, fmt.Errorf("config: gateway.socket_read_limit_bytes must be positive, got %d", cfg.Gateway.SocketReadLimitBytes))
	}
	if int64(cfg.Security.MaxPayloadBytes) > cfg.Gateway.SocketReadLimitBytes {
		errs = append(errs, fmt.Errorf("config: gateway.socket_read_limit_bytes (%d) must cover security.max_payload_bytes (%d) plus the envelope",
			cfg.Gateway.SocketReadLimitBytes, cfg.Security.MaxPayloadBytes))
	}

	if cfg.UI.ToastDurationMS <= 0 {
		errs = append(errs, fmt.Errorf("config: ui.toast_duration_ms must be positive, got %d", cfg.UI.ToastDurationMS))
	}

	if cfg.Collection.Path == "" {
		errs = append(errs, errors.New("config: collection.path is required"))
	}

	return errors.Join(errs...)
}
