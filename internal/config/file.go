package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"
)

// FileConfig represents the configuration file structure.
// This mirrors the runtime Config but uses file-friendly types.
type FileConfig struct {
	Logging *FileLoggingConfig `yaml:"logging,omitempty" toml:"logging"`
	Metrics *FileMetricsConfig `yaml:"metrics,omitempty" toml:"metrics"`
	SSH     *FileSSHConfig     `yaml:"ssh,omitempty" toml:"ssh"`
	AXFR    *FileAXFRConfig    `yaml:"axfr,omitempty" toml:"axfr"`
}

// FileLoggingConfig holds logging settings.
type FileLoggingConfig struct {
	Level  string `yaml:"level,omitempty" toml:"level"`   // debug, info, warn, error
	Format string `yaml:"format,omitempty" toml:"format"` // json, text
}

// FileMetricsConfig holds metrics output settings.
type FileMetricsConfig struct {
	Textfile string `yaml:"textfile,omitempty" toml:"textfile"` // node-exporter textfile path
}

// FileSSHConfig holds defaults for sftp:// locations.
type FileSSHConfig struct {
	User          string `yaml:"user,omitempty" toml:"user"`
	Port          int    `yaml:"port,omitempty" toml:"port"`
	KeyFile       string `yaml:"key_file,omitempty" toml:"key_file"`
	KeyData       string `yaml:"key_data,omitempty" toml:"key_data"` // PEM private key
	KeyPassphrase string `yaml:"key_passphrase,omitempty" toml:"key_passphrase"`
	Password      string `yaml:"password,omitempty" toml:"password"`
	KnownHosts    string `yaml:"known_hosts,omitempty" toml:"known_hosts"`
	Timeout       string `yaml:"timeout,omitempty" toml:"timeout"` // Go duration format (e.g., "30s")
}

// FileAXFRConfig holds live zone transfer settings.
type FileAXFRConfig struct {
	Timeout       string `yaml:"timeout,omitempty" toml:"timeout"`
	TSIGKeyName   string `yaml:"tsig_key_name,omitempty" toml:"tsig_key_name"`
	TSIGSecret    string `yaml:"tsig_secret,omitempty" toml:"tsig_secret"`
	TSIGAlgorithm string `yaml:"tsig_algorithm,omitempty" toml:"tsig_algorithm"`
}

// envVarPattern matches ${VAR} or ${VAR:-default} syntax.
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// InterpolateEnvVars replaces ${VAR} patterns with environment variable values.
// Supports ${VAR:-default} syntax for default values.
func InterpolateEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		groups := envVarPattern.FindStringSubmatch(match)
		if len(groups) < 2 {
			return match
		}
		varName := groups[1]
		defaultValue := ""
		if len(groups) >= 3 {
			defaultValue = groups[2]
		}

		if value := os.Getenv(varName); value != "" {
			return value
		}
		return defaultValue
	})
}

// interpolateEnvVars interpolates environment variables in all string
// fields of the config structure.
func (c *FileConfig) interpolateEnvVars() {
	if c.Logging != nil {
		c.Logging.Level = InterpolateEnvVars(c.Logging.Level)
		c.Logging.Format = InterpolateEnvVars(c.Logging.Format)
	}

	if c.Metrics != nil {
		c.Metrics.Textfile = InterpolateEnvVars(c.Metrics.Textfile)
	}

	if c.SSH != nil {
		c.SSH.User = InterpolateEnvVars(c.SSH.User)
		c.SSH.KeyFile = InterpolateEnvVars(c.SSH.KeyFile)
		c.SSH.KeyData = InterpolateEnvVars(c.SSH.KeyData)
		c.SSH.KeyPassphrase = InterpolateEnvVars(c.SSH.KeyPassphrase)
		c.SSH.Password = InterpolateEnvVars(c.SSH.Password)
		c.SSH.KnownHosts = InterpolateEnvVars(c.SSH.KnownHosts)
		c.SSH.Timeout = InterpolateEnvVars(c.SSH.Timeout)
	}

	if c.AXFR != nil {
		c.AXFR.Timeout = InterpolateEnvVars(c.AXFR.Timeout)
		c.AXFR.TSIGKeyName = InterpolateEnvVars(c.AXFR.TSIGKeyName)
		c.AXFR.TSIGSecret = InterpolateEnvVars(c.AXFR.TSIGSecret)
		c.AXFR.TSIGAlgorithm = InterpolateEnvVars(c.AXFR.TSIGAlgorithm)
	}
}

// LoadFile reads and parses a configuration file. The format is chosen by
// extension: .yml/.yaml, .toml or .ini.
// Environment variables in ${VAR} format are interpolated.
func LoadFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg *FileConfig
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yml", ".yaml":
		cfg = &FileConfig{}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing YAML config: %w", err)
		}
	case ".toml":
		cfg = &FileConfig{}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing TOML config: %w", err)
		}
	case ".ini":
		cfg, err = parseINI(data)
		if err != nil {
			return nil, fmt.Errorf("parsing INI config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file extension %q (use .yaml, .toml, or .ini)", ext)
	}

	cfg.interpolateEnvVars()

	return cfg, nil
}

// parseINI maps [logging], [metrics], [ssh] and [axfr] sections onto a
// FileConfig. Section and key names are case-insensitive.
func parseINI(data []byte) (*FileConfig, error) {
	f, err := ini.LoadSources(ini.LoadOptions{Insensitive: true}, data)
	if err != nil {
		return nil, err
	}

	cfg := &FileConfig{}

	if sec, err := f.GetSection("logging"); err == nil {
		cfg.Logging = &FileLoggingConfig{
			Level:  sec.Key("level").String(),
			Format: sec.Key("format").String(),
		}
	}

	if sec, err := f.GetSection("metrics"); err == nil {
		cfg.Metrics = &FileMetricsConfig{
			Textfile: sec.Key("textfile").String(),
		}
	}

	if sec, err := f.GetSection("ssh"); err == nil {
		var port int
		if sec.HasKey("port") {
			if port, err = sec.Key("port").Int(); err != nil {
				return nil, fmt.Errorf("ssh.port: invalid integer %q", sec.Key("port").String())
			}
		}
		cfg.SSH = &FileSSHConfig{
			User:          sec.Key("user").String(),
			Port:          port,
			KeyFile:       sec.Key("key_file").String(),
			KeyData:       sec.Key("key_data").String(),
			KeyPassphrase: sec.Key("key_passphrase").String(),
			Password:      sec.Key("password").String(),
			KnownHosts:    sec.Key("known_hosts").String(),
			Timeout:       sec.Key("timeout").String(),
		}
	}

	if sec, err := f.GetSection("axfr"); err == nil {
		cfg.AXFR = &FileAXFRConfig{
			Timeout:       sec.Key("timeout").String(),
			TSIGKeyName:   sec.Key("tsig_key_name").String(),
			TSIGSecret:    sec.Key("tsig_secret").String(),
			TSIGAlgorithm: sec.Key("tsig_algorithm").String(),
		}
	}

	return cfg, nil
}

// applyTo copies file values onto cfg. Values from the file take precedence
// over defaults; env vars override later.
func (c *FileConfig) applyTo(cfg *Config) []string {
	var errs []string

	if c.Logging != nil {
		if c.Logging.Level != "" {
			cfg.LogLevel = strings.ToLower(c.Logging.Level)
		}
		if c.Logging.Format != "" {
			cfg.LogFormat = strings.ToLower(c.Logging.Format)
		}
	}

	if c.Metrics != nil && c.Metrics.Textfile != "" {
		cfg.MetricsTextfile = c.Metrics.Textfile
	}

	if c.SSH != nil {
		if c.SSH.User != "" {
			cfg.SSH.User = c.SSH.User
		}
		if c.SSH.Port != 0 {
			cfg.SSH.Port = c.SSH.Port
		}
		if c.SSH.KeyFile != "" {
			cfg.SSH.KeyFile = c.SSH.KeyFile
		}
		if c.SSH.KeyData != "" {
			cfg.SSH.KeyData = c.SSH.KeyData
		}
		if c.SSH.KeyPassphrase != "" {
			cfg.SSH.KeyPassphrase = c.SSH.KeyPassphrase
		}
		if c.SSH.Password != "" {
			cfg.SSH.Password = c.SSH.Password
		}
		if c.SSH.KnownHosts != "" {
			cfg.SSH.KnownHosts = c.SSH.KnownHosts
		}
		if c.SSH.Timeout != "" {
			if d, err := time.ParseDuration(c.SSH.Timeout); err == nil {
				cfg.SSH.Timeout = d
			} else {
				errs = append(errs, fmt.Sprintf("ssh.timeout: invalid duration %q (use format like 30s, 1m)", c.SSH.Timeout))
			}
		}
	}

	if c.AXFR != nil {
		if c.AXFR.Timeout != "" {
			if d, err := time.ParseDuration(c.AXFR.Timeout); err == nil {
				cfg.AXFR.Timeout = d
			} else {
				errs = append(errs, fmt.Sprintf("axfr.timeout: invalid duration %q (use format like 30s, 1m)", c.AXFR.Timeout))
			}
		}
		if c.AXFR.TSIGKeyName != "" {
			cfg.AXFR.TSIGKeyName = c.AXFR.TSIGKeyName
		}
		if c.AXFR.TSIGSecret != "" {
			cfg.AXFR.TSIGSecret = c.AXFR.TSIGSecret
		}
		if c.AXFR.TSIGAlgorithm != "" {
			cfg.AXFR.TSIGAlgorithm = c.AXFR.TSIGAlgorithm
		}
	}

	return errs
}
