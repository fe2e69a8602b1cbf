package config

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"
)

// FilePath returns the config file path: the flag value when set, else
// KEACONV_CONFIG. Returns empty string if no config file is specified.
func FilePath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return getEnv(EnvConfigFile)
}

// Load builds the configuration from defaults, the optional file at path and
// KEACONV_* environment variables, in increasing precedence. Every problem
// found is reported in a single *ValidationError.
func Load(path string) (*Config, error) {
	cfg := Default()
	var errs []string

	if path != "" {
		fileCfg, err := LoadFile(path)
		if err != nil {
			return nil, &ValidationError{Errors: []string{"config file: " + err.Error()}}
		}
		slog.Debug("loaded configuration from file", slog.String("path", path))
		errs = append(errs, fileCfg.applyTo(cfg)...)
	}

	errs = append(errs, mergeEnv(cfg)...)
	errs = append(errs, validateConfig(cfg)...)

	if len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}
	return cfg, nil
}

// mergeEnv overrides cfg with environment variables that are explicitly set.
// Environment variables always take precedence over file config.
func mergeEnv(cfg *Config) []string {
	var errs []string

	if v := getEnv("KEACONV_LOG_LEVEL"); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v := getEnv("KEACONV_LOG_FORMAT"); v != "" {
		cfg.LogFormat = strings.ToLower(v)
	}
	if v := getEnv("KEACONV_METRICS_TEXTFILE"); v != "" {
		cfg.MetricsTextfile = v
	}

	if v := getEnv("KEACONV_SSH_USER"); v != "" {
		cfg.SSH.User = v
	}
	if v := getEnv("KEACONV_SSH_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.SSH.Port = port
		} else {
			errs = append(errs, fmt.Sprintf("KEACONV_SSH_PORT: invalid integer %q", v))
		}
	}
	if v := getEnv("KEACONV_SSH_KEY_FILE"); v != "" {
		cfg.SSH.KeyFile = v
	}
	if v := getEnvWithFileFallback("KEACONV_SSH_KEY_DATA"); v != "" {
		cfg.SSH.KeyData = v
	}
	if v := getEnvWithFileFallback("KEACONV_SSH_KEY_PASSPHRASE"); v != "" {
		cfg.SSH.KeyPassphrase = v
	}
	if v := getEnvWithFileFallback("KEACONV_SSH_PASSWORD"); v != "" {
		cfg.SSH.Password = v
	}
	if v := getEnv("KEACONV_SSH_KNOWN_HOSTS"); v != "" {
		cfg.SSH.KnownHosts = v
	}
	if v := getEnv("KEACONV_SSH_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.SSH.Timeout = d
		} else {
			errs = append(errs, fmt.Sprintf("KEACONV_SSH_TIMEOUT: invalid duration %q", v))
		}
	}

	if v := getEnv("KEACONV_AXFR_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.AXFR.Timeout = d
		} else {
			errs = append(errs, fmt.Sprintf("KEACONV_AXFR_TIMEOUT: invalid duration %q", v))
		}
	}
	if v := getEnv("KEACONV_AXFR_TSIG_KEY_NAME"); v != "" {
		cfg.AXFR.TSIGKeyName = v
	}
	if v := getEnvWithFileFallback("KEACONV_AXFR_TSIG_SECRET"); v != "" {
		cfg.AXFR.TSIGSecret = v
	}
	if v := getEnv("KEACONV_AXFR_TSIG_ALGORITHM"); v != "" {
		cfg.AXFR.TSIGAlgorithm = v
	}

	return errs
}
