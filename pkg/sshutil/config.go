package sshutil

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultPort is used when Config.Port is zero.
	DefaultPort = 22

	// DefaultTimeout bounds dialing, the SSH handshake and SFTP setup.
	DefaultTimeout = 30 * time.Second
)

// Config describes one remote host and how to log in to it.
//
// At least one of KeyFile, KeyData or Password must be set. Key methods
// are offered before the password. KeyPassphrase applies to both key
// sources.
type Config struct {
	Host string
	Port int
	User string

	KeyFile       string
	KeyData       string
	KeyPassphrase string
	Password      string

	// KnownHosts is a known_hosts file. Empty accepts any host key.
	KnownHosts string

	Timeout time.Duration
}

// Validate reports every problem with c at once.
func (c *Config) Validate() error {
	var problems []string

	if c.Host == "" {
		problems = append(problems, "host is required")
	}
	if c.User == "" {
		problems = append(problems, "user is required")
	}
	if c.KeyFile == "" && c.KeyData == "" && c.Password == "" {
		problems = append(problems, "one of key_file, key_data or password is required")
	}
	if c.KeyPassphrase != "" && c.KeyFile == "" && c.KeyData == "" {
		problems = append(problems, "key_passphrase is set without key_file or key_data")
	}
	if c.Port < 0 || c.Port > 65535 {
		problems = append(problems, "port must be between 0 and 65535")
	}
	if c.Timeout < 0 {
		problems = append(problems, "timeout must be non-negative")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid ssh config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Address returns host:port, using DefaultPort when Port is zero.
func (c *Config) Address() string {
	port := c.Port
	if port == 0 {
		port = DefaultPort
	}
	return net.JoinHostPort(c.Host, strconv.Itoa(port))
}

func (c *Config) timeout() time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return DefaultTimeout
}

// WithTarget returns a copy of c for host. Non-empty user and non-zero
// port replace the configured ones.
func (c Config) WithTarget(host, user string, port int) *Config {
	c.Host = host
	if user != "" {
		c.User = user
	}
	if port != 0 {
		c.Port = port
	}
	return &c
}
