// Package config handles loading and validation of keaconv configuration.
//
// Settings come from an optional file (YAML, TOML or INI, chosen by
// extension) and are then overridden by KEACONV_* environment variables.
// The CSV domain is deliberately absent: it is always a command-line flag.
package config

import (
	"time"

	"gitlab.bluewillows.net/root/keaconv/pkg/sshutil"
	"gitlab.bluewillows.net/root/keaconv/pkg/zonexfr"
)

// Configuration defaults.
const (
	DefaultLogLevel  = "warn"
	DefaultLogFormat = "text"
)

// EnvConfigFile names the environment variable holding the config file path.
const EnvConfigFile = "KEACONV_CONFIG"

// Config holds the runtime configuration shared by all converters.
type Config struct {
	// Logging configuration
	LogLevel  string // debug, info, warn, error
	LogFormat string // json, text

	// MetricsTextfile is where metrics are written after a run. Empty disables.
	MetricsTextfile string

	SSH  SSHConfig
	AXFR AXFRConfig
}

// SSHConfig holds defaults for sftp:// locations. Host comes from the URL.
type SSHConfig struct {
	User          string
	Port          int
	KeyFile       string
	KeyData       string
	KeyPassphrase string
	Password      string
	KnownHosts    string
	Timeout       time.Duration
}

// AXFRConfig holds settings for live zone transfers.
type AXFRConfig struct {
	Timeout       time.Duration
	TSIGKeyName   string
	TSIGSecret    string
	TSIGAlgorithm string
}

// Default returns a configuration with default values.
func Default() *Config {
	return &Config{
		LogLevel:  DefaultLogLevel,
		LogFormat: DefaultLogFormat,
	}
}

// SSHTarget builds an SSH client configuration for host. A non-empty user
// or non-zero port overrides the configured defaults.
func (c *Config) SSHTarget(host, user string, port int) *sshutil.Config {
	base := sshutil.Config{
		Port:          c.SSH.Port,
		User:          c.SSH.User,
		KeyFile:       c.SSH.KeyFile,
		KeyData:       c.SSH.KeyData,
		KeyPassphrase: c.SSH.KeyPassphrase,
		Password:      c.SSH.Password,
		KnownHosts:    c.SSH.KnownHosts,
		Timeout:       c.SSH.Timeout,
	}
	return base.WithTarget(host, user, port)
}

// ZoneTransfer builds a zone transfer configuration for server and zone.
func (c *Config) ZoneTransfer(server, zone string) *zonexfr.Config {
	return &zonexfr.Config{
		Server:        server,
		Zone:          zone,
		TSIGKeyName:   c.AXFR.TSIGKeyName,
		TSIGSecret:    c.AXFR.TSIGSecret,
		TSIGAlgorithm: c.AXFR.TSIGAlgorithm,
		Timeout:       c.AXFR.Timeout,
	}
}
