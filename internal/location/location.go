// Package location resolves converter input and output arguments.
//
// An argument is one of:
//
//	-                                  stdin or stdout
//	/path/to/file, relative/file        a local file
//	sftp://[user@]host[:port]/path      a file on a remote host over SFTP
//
// Paths ending in .gz are gunzipped on read and gzipped on write.
package location

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
)

// ErrUnsupportedScheme is returned for URLs other than sftp:// and file://.
var ErrUnsupportedScheme = errors.New("unsupported location scheme")

// Kind identifies where a Location lives.
type Kind int

// Location kinds.
const (
	KindStdio Kind = iota
	KindLocal
	KindSFTP
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindStdio:
		return "stdio"
	case KindLocal:
		return "local"
	case KindSFTP:
		return "sftp"
	default:
		return "unknown"
	}
}

// Stdio is the argument naming stdin or stdout.
const Stdio = "-"

// Location is a parsed input or output argument.
type Location struct {
	Kind Kind
	Path string

	// Remote target, set for KindSFTP only. Empty User and zero Port
	// fall back to the configured SSH defaults.
	Host string
	User string
	Port int
}

// Parse parses a command-line location argument.
func Parse(arg string) (*Location, error) {
	if arg == "" {
		return nil, errors.New("empty location")
	}
	if arg == Stdio {
		return &Location{Kind: KindStdio, Path: Stdio}, nil
	}
	if !strings.Contains(arg, "://") {
		return &Location{Kind: KindLocal, Path: arg}, nil
	}

	u, err := url.Parse(arg)
	if err != nil {
		return nil, fmt.Errorf("parsing location %q: %w", arg, err)
	}

	switch strings.ToLower(u.Scheme) {
	case "file":
		if u.Path == "" {
			return nil, fmt.Errorf("location %q: path is required", arg)
		}
		return &Location{Kind: KindLocal, Path: u.Path}, nil

	case "sftp":
		loc := &Location{Kind: KindSFTP, Host: u.Hostname(), Path: u.Path}
		if loc.Host == "" {
			return nil, fmt.Errorf("location %q: host is required", arg)
		}
		if loc.Path == "" || loc.Path == "/" {
			return nil, fmt.Errorf("location %q: path is required", arg)
		}
		if u.User != nil {
			loc.User = u.User.Username()
		}
		if p := u.Port(); p != "" {
			port, err := strconv.Atoi(p)
			if err != nil || port < 1 || port > 65535 {
				return nil, fmt.Errorf("location %q: invalid port %q", arg, p)
			}
			loc.Port = port
		}
		return loc, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}
}

// Compressed reports whether the location is gzip-compressed.
func (l *Location) Compressed() bool {
	return l.Kind != KindStdio && strings.HasSuffix(l.Path, ".gz")
}

// String returns the location in argument form.
func (l *Location) String() string {
	switch l.Kind {
	case KindStdio:
		return Stdio
	case KindSFTP:
		host := l.Host
		if l.Port != 0 {
			host = net.JoinHostPort(l.Host, strconv.Itoa(l.Port))
		} else if strings.Contains(l.Host, ":") {
			host = "[" + l.Host + "]"
		}
		u := url.URL{Scheme: "sftp", Host: host, Path: l.Path}
		if l.User != "" {
			u.User = url.User(l.User)
		}
		return u.String()
	default:
		return l.Path
	}
}
