package sshutil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"path"
	"strings"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

var (
	// ErrAuthenticationFailed is returned when the server rejects every
	// offered credential.
	ErrAuthenticationFailed = errors.New("ssh authentication failed")

	// ErrHostKeyMismatch is returned when the server key is not the one
	// recorded in known_hosts.
	ErrHostKeyMismatch = errors.New("ssh host key mismatch")

	// ErrConnectionTimeout is returned when connection setup outlives
	// Config.Timeout.
	ErrConnectionTimeout = errors.New("ssh connection timed out")
)

// FileSystem is the subset of file operations the converters need.
type FileSystem interface {
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte, perm os.FileMode) error
}

// Session is a single SSH connection carrying a single SFTP session. It is
// opened for one read or write and closed right after.
type Session struct {
	addr   string
	conn   *ssh.Client
	sftp   *sftp.Client
	logger *slog.Logger
}

// Option configures Open.
type Option func(*Session)

// WithLogger sets the logger for connection and transfer events.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Open dials cfg, authenticates and starts SFTP. Setup is bounded by both
// ctx and cfg.Timeout; once Open returns, the deadline is lifted.
func Open(ctx context.Context, cfg *Config, opts ...Option) (*Session, error) {
	if cfg == nil {
		return nil, errors.New("ssh config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Session{addr: cfg.Address(), logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}

	auth, err := authMethods(cfg)
	if err != nil {
		return nil, err
	}
	var hostKeyErr error
	verify, err := hostKeyCallback(cfg, s.logger)
	if err != nil {
		return nil, err
	}
	clientConfig := &ssh.ClientConfig{
		User: cfg.User,
		Auth: auth,
		HostKeyCallback: func(hostname string, remote net.Addr, key ssh.PublicKey) error {
			hostKeyErr = verify(hostname, remote, key)
			return hostKeyErr
		},
		Timeout: cfg.timeout(),
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.timeout())
	defer cancel()

	s.logger.Debug("opening ssh session",
		slog.String("address", s.addr),
		slog.String("user", cfg.User),
	)

	var dialer net.Dialer
	nc, err := dialer.DialContext(ctx, "tcp", s.addr)
	if err != nil {
		return nil, s.setupError(ctx, fmt.Errorf("dialing %s: %w", s.addr, err))
	}

	// The handshake and SFTP init do not take a context; a deadline on the
	// socket makes them honour ctx.
	if deadline, ok := ctx.Deadline(); ok {
		_ = nc.SetDeadline(deadline)
	}
	stop := context.AfterFunc(ctx, func() { _ = nc.SetDeadline(time.Now()) })

	sshConn, chans, reqs, err := ssh.NewClientConn(nc, s.addr, clientConfig)
	if err != nil {
		stop()
		_ = nc.Close()
		switch {
		case hostKeyErr != nil:
			return nil, fmt.Errorf("%w: %s: %w", ErrHostKeyMismatch, s.addr, hostKeyErr)
		case authRejected(err):
			return nil, fmt.Errorf("%w: %w", ErrAuthenticationFailed, err)
		}
		return nil, s.setupError(ctx, fmt.Errorf("ssh handshake with %s: %w", s.addr, err))
	}
	s.conn = ssh.NewClient(sshConn, chans, reqs)

	s.sftp, err = sftp.NewClient(s.conn)
	if !stop() || err != nil {
		_ = s.conn.Close()
		if err == nil {
			err = ctx.Err()
		}
		return nil, s.setupError(ctx, fmt.Errorf("starting sftp on %s: %w", s.addr, err))
	}
	_ = nc.SetDeadline(time.Time{})

	s.logger.Debug("ssh session open", slog.String("address", s.addr))
	return s, nil
}

// setupError maps a failure during Open onto the caller's cancellation or
// ErrConnectionTimeout.
func (s *Session) setupError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.Canceled) {
		return fmt.Errorf("%w: %w", context.Canceled, err)
	}
	if deadline, ok := ctx.Deadline(); ok && !time.Now().Before(deadline) {
		return fmt.Errorf("%w: %s: %w", ErrConnectionTimeout, s.addr, err)
	}
	return err
}

// Close ends the SFTP session and the SSH connection.
func (s *Session) Close() error {
	return errors.Join(s.sftp.Close(), s.conn.Close())
}

// ReadFile reads a remote file.
func (s *Session) ReadFile(name string) ([]byte, error) {
	f, err := s.sftp.Open(name)
	if err != nil {
		return nil, fmt.Errorf("opening %s on %s: %w", name, s.addr, err)
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s on %s: %w", name, s.addr, err)
	}

	s.logger.Debug("remote file read",
		slog.String("path", name),
		slog.Int("bytes", len(data)),
	)
	return data, nil
}

// WriteFile replaces a remote file, creating parent directories as needed.
// A failed chmod is logged, not returned.
func (s *Session) WriteFile(name string, data []byte, perm os.FileMode) error {
	if dir := path.Dir(name); dir != "." && dir != "/" {
		if err := s.sftp.MkdirAll(dir); err != nil {
			return fmt.Errorf("creating %s on %s: %w", dir, s.addr, err)
		}
	}

	f, err := s.sftp.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_TRUNC)
	if err != nil {
		return fmt.Errorf("opening %s on %s for write: %w", name, s.addr, err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing %s on %s: %w", name, s.addr, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s on %s: %w", name, s.addr, err)
	}

	if err := s.sftp.Chmod(name, perm); err != nil {
		s.logger.Warn("could not set remote file mode",
			slog.String("path", name),
			slog.String("error", err.Error()),
		)
	}

	s.logger.Debug("remote file written",
		slog.String("path", name),
		slog.Int("bytes", len(data)),
	)
	return nil
}

// authMethods offers key file, then inline key, then password.
func authMethods(cfg *Config) ([]ssh.AuthMethod, error) {
	var methods []ssh.AuthMethod

	if cfg.KeyFile != "" {
		pemBytes, err := os.ReadFile(cfg.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("reading key_file: %w", err)
		}
		signer, err := signerFrom(pemBytes, cfg.KeyPassphrase)
		if err != nil {
			return nil, fmt.Errorf("key_file %s: %w", cfg.KeyFile, err)
		}
		methods = append(methods, ssh.PublicKeys(signer))
	}

	if cfg.KeyData != "" {
		signer, err := signerFrom([]byte(cfg.KeyData), cfg.KeyPassphrase)
		if err != nil {
			return nil, fmt.Errorf("key_data: %w", err)
		}
		methods = append(methods, ssh.PublicKeys(signer))
	}

	if cfg.Password != "" {
		methods = append(methods, ssh.Password(cfg.Password))
	}

	if len(methods) == 0 {
		return nil, errors.New("no ssh credentials configured")
	}
	return methods, nil
}

func signerFrom(pemBytes []byte, passphrase string) (ssh.Signer, error) {
	var (
		signer ssh.Signer
		err    error
	)
	if passphrase != "" {
		signer, err = ssh.ParsePrivateKeyWithPassphrase(pemBytes, []byte(passphrase))
	} else {
		signer, err = ssh.ParsePrivateKey(pemBytes)
	}
	if err != nil {
		var missing *ssh.PassphraseMissingError
		if errors.As(err, &missing) {
			return nil, fmt.Errorf("private key is encrypted, set key_passphrase: %w", err)
		}
		return nil, fmt.Errorf("parsing private key: %w", err)
	}
	return signer, nil
}

func hostKeyCallback(cfg *Config, logger *slog.Logger) (ssh.HostKeyCallback, error) {
	if cfg.KnownHosts == "" {
		logger.Warn("host key not verified, set known_hosts to check it",
			slog.String("host", cfg.Host),
		)
		return ssh.InsecureIgnoreHostKey(), nil //nolint:gosec // no known_hosts configured
	}

	callback, err := knownhosts.New(cfg.KnownHosts)
	if err != nil {
		return nil, fmt.Errorf("loading known_hosts %s: %w", cfg.KnownHosts, err)
	}
	return callback, nil
}

func authRejected(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unable to authenticate") ||
		strings.Contains(msg, "no supported methods") ||
		strings.Contains(msg, "permission denied")
}
