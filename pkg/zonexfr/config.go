package zonexfr

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/miekg/dns"
)

// Default configuration values.
const (
	// DefaultPort is the standard DNS port.
	DefaultPort = 53

	// DefaultTimeout bounds dialing and each read during a transfer.
	DefaultTimeout = 30 * time.Second

	// DefaultTSIGAlgorithm is used when a key is configured without an algorithm.
	DefaultTSIGAlgorithm = dns.HmacSHA256
)

// Config holds zone transfer settings.
type Config struct {
	// Server is the DNS server address, host or host:port (required).
	Server string

	// Zone is the zone to transfer (required). A missing trailing dot is added.
	Zone string

	// TSIGKeyName is the TSIG key name (optional).
	TSIGKeyName string

	// TSIGSecret is the base64-encoded TSIG shared secret.
	TSIGSecret string

	// TSIGAlgorithm is hmac-sha256 (default), hmac-sha512 or hmac-md5.
	TSIGAlgorithm string

	// Timeout for dialing and reading (default: 30s).
	Timeout time.Duration
}

// Validate checks that all required configuration is present and valid.
func (c *Config) Validate() error {
	var errs []string

	if c.Server == "" {
		errs = append(errs, "server is required")
	}

	if c.Zone == "" {
		errs = append(errs, "zone is required")
	} else if _, ok := dns.IsDomainName(c.Zone); !ok {
		errs = append(errs, fmt.Sprintf("zone %q is not a valid domain name", c.Zone))
	}

	if c.TSIGKeyName != "" || c.TSIGSecret != "" {
		if c.TSIGKeyName == "" {
			errs = append(errs, "tsig_key_name is required when tsig_secret is set")
		}
		if c.TSIGSecret == "" {
			errs = append(errs, "tsig_secret is required when tsig_key_name is set")
		}
		if !isValidAlgorithm(c.GetTSIGAlgorithm()) {
			errs = append(errs, fmt.Sprintf("unsupported tsig_algorithm: %s (supported: hmac-md5, hmac-sha256, hmac-sha512)", c.TSIGAlgorithm))
		}
	}

	if c.Timeout < 0 {
		errs = append(errs, "timeout must be non-negative")
	}

	if len(errs) > 0 {
		return fmt.Errorf("zone transfer config validation failed: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetServer returns the server address with a port, defaulting to 53.
func (c *Config) GetServer() string {
	if c.Server == "" {
		return ""
	}
	if _, _, err := net.SplitHostPort(c.Server); err == nil {
		return c.Server
	}
	host := strings.TrimSuffix(strings.TrimPrefix(c.Server, "["), "]")
	return net.JoinHostPort(host, strconv.Itoa(DefaultPort))
}

// GetZone returns the zone as a fully qualified name.
func (c *Config) GetZone() string {
	return dns.Fqdn(c.Zone)
}

// GetTimeout returns the configured timeout or the default.
func (c *Config) GetTimeout() time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return DefaultTimeout
}

// GetTSIGAlgorithm returns the TSIG algorithm in miekg/dns format.
func (c *Config) GetTSIGAlgorithm() string {
	return normalizeAlgorithm(c.TSIGAlgorithm)
}

// HasTSIG returns true if TSIG authentication is configured.
func (c *Config) HasTSIG() bool {
	return c.TSIGKeyName != "" && c.TSIGSecret != ""
}
