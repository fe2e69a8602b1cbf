package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration error: %s", e.Errors[0])
	}
	return fmt.Sprintf("configuration errors:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

// validateConfig performs cross-field validation on the complete configuration.
func validateConfig(cfg *Config) []string {
	var errs []string

	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("logging.level: invalid value %q (must be debug, info, warn, or error)", cfg.LogLevel))
	}

	switch cfg.LogFormat {
	case "json", "text":
	default:
		errs = append(errs, fmt.Sprintf("logging.format: invalid value %q (must be json or text)", cfg.LogFormat))
	}

	if cfg.SSH.Port < 0 || cfg.SSH.Port > 65535 {
		errs = append(errs, fmt.Sprintf("ssh.port: must be between 0 and 65535, got %d", cfg.SSH.Port))
	}
	if cfg.SSH.Timeout < 0 {
		errs = append(errs, "ssh.timeout: must be non-negative")
	}
	if cfg.AXFR.Timeout < 0 {
		errs = append(errs, "axfr.timeout: must be non-negative")
	}

	// A TSIG key is unusable without both halves.
	if (cfg.AXFR.TSIGKeyName == "") != (cfg.AXFR.TSIGSecret == "") {
		errs = append(errs, "axfr: tsig_key_name and tsig_secret must be set together")
	}

	return errs
}
