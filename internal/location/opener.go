package location

import (
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gitlab.bluewillows.net/root/keaconv/pkg/sshutil"
)

// SSHConfigFunc builds the SSH client configuration for a remote target.
type SSHConfigFunc func(host, user string, port int) *sshutil.Config

// Opener reads and writes whole Locations.
type Opener struct {
	stdin     io.Reader
	stdout    io.Writer
	sshConfig SSHConfigFunc
	logger    *slog.Logger
}

// Option is a functional option for configuring the Opener.
type Option func(*Opener)

// WithStdio replaces stdin and stdout.
func WithStdio(in io.Reader, out io.Writer) Option {
	return func(o *Opener) {
		o.stdin = in
		o.stdout = out
	}
}

// WithSSHConfig sets how sftp:// targets get their SSH configuration.
func WithSSHConfig(fn SSHConfigFunc) Option {
	return func(o *Opener) {
		o.sshConfig = fn
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Opener) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// NewOpener creates an Opener bound to the process stdin and stdout.
func NewOpener(opts ...Option) *Opener {
	o := &Opener{
		stdin:  os.Stdin,
		stdout: os.Stdout,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(o)
	}

	return o
}

// ReadAll returns the full, decompressed contents of loc.
func (o *Opener) ReadAll(ctx context.Context, loc *Location) ([]byte, error) {
	var (
		data []byte
		err  error
	)

	switch loc.Kind {
	case KindStdio:
		data, err = io.ReadAll(o.stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return data, nil
	case KindLocal:
		data, err = os.ReadFile(loc.Path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", loc.Path, err)
		}
	case KindSFTP:
		err = o.withSFTP(ctx, loc, func(fs sshutil.FileSystem) error {
			data, err = fs.ReadFile(loc.Path)
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", loc, err)
		}
	default:
		return nil, fmt.Errorf("reading %s: unknown location kind %d", loc, loc.Kind)
	}

	o.logger.Debug("read input",
		slog.String("location", loc.String()),
		slog.Int("bytes", len(data)),
	)

	if !loc.Compressed() {
		return data, nil
	}
	return gunzip(loc, data)
}

// WriteAll writes data to loc in a single operation, compressing first
// when the path ends in .gz.
func (o *Opener) WriteAll(ctx context.Context, loc *Location, data []byte) error {
	if loc.Compressed() {
		var err error
		if data, err = gzipBytes(data); err != nil {
			return fmt.Errorf("compressing %s: %w", loc, err)
		}
	}

	switch loc.Kind {
	case KindStdio:
		if _, err := o.stdout.Write(data); err != nil {
			return fmt.Errorf("writing stdout: %w", err)
		}
	case KindLocal:
		if err := os.WriteFile(loc.Path, data, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", loc.Path, err)
		}
	case KindSFTP:
		err := o.withSFTP(ctx, loc, func(fs sshutil.FileSystem) error {
			return fs.WriteFile(loc.Path, data, 0o644)
		})
		if err != nil {
			return fmt.Errorf("writing %s: %w", loc, err)
		}
	default:
		return fmt.Errorf("writing %s: unknown location kind %d", loc, loc.Kind)
	}

	o.logger.Debug("wrote output",
		slog.String("location", loc.String()),
		slog.Int("bytes", len(data)),
	)

	return nil
}

// withSFTP opens an SSH session for loc, runs fn against it and closes it.
func (o *Opener) withSFTP(ctx context.Context, loc *Location, fn func(sshutil.FileSystem) error) error {
	if o.sshConfig == nil {
		return fmt.Errorf("no SSH configuration for %s", loc.Host)
	}

	session, err := sshutil.Open(ctx, o.sshConfig(loc.Host, loc.User, loc.Port), sshutil.WithLogger(o.logger))
	if err != nil {
		return err
	}
	defer func() { _ = session.Close() }()

	return fn(session)
}

func gunzip(loc *Location, data []byte) ([]byte, error) {
	gz, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("opening gzip stream %s: %w", loc, err)
	}
	defer func() { _ = gz.Close() }()

	out, err := io.ReadAll(gz)
	if err != nil {
		return nil, fmt.Errorf("decompressing %s: %w", loc, err)
	}
	return out, nil
}

func gzipBytes(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write(data); err != nil {
		return nil, err
	}
	if err := gz.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
