package zonexfr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/miekg/dns"
)

// ErrAXFRFailed is returned when the server refuses or aborts the zone transfer.
var ErrAXFRFailed = errors.New("zone transfer (AXFR) failed")

// Client performs zone transfers against one server.
type Client struct {
	config *Config
	tsig   *TSIG
	logger *slog.Logger
}

// ClientOption is a functional option for configuring the Client.
type ClientOption func(*Client)

// WithLogger sets a custom logger for the client.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient validates the configuration and creates a Client.
func NewClient(config *Config, opts ...ClientOption) (*Client, error) {
	if config == nil {
		return nil, errors.New("config is required")
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	tsig, err := TSIGFromConfig(config)
	if err != nil {
		return nil, fmt.Errorf("invalid TSIG configuration: %w", err)
	}

	c := &Client{
		config: config,
		tsig:   tsig,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Zone returns the fully qualified zone name.
func (c *Client) Zone() string {
	return c.config.GetZone()
}

// Server returns the server address with port.
func (c *Client) Server() string {
	return c.config.GetServer()
}

// Transfer performs an AXFR and returns every record in transfer order,
// including the leading and trailing SOA.
func (c *Client) Transfer(ctx context.Context) ([]dns.RR, error) {
	timeout := c.config.GetTimeout()
	transfer := &dns.Transfer{
		DialTimeout:  timeout,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	}
	c.tsig.ApplyToTransfer(transfer)

	msg := new(dns.Msg)
	msg.SetAxfr(c.config.GetZone())
	c.tsig.ApplyToMessage(msg)

	c.logger.Debug("initiating AXFR zone transfer",
		slog.String("server", c.config.GetServer()),
		slog.String("zone", c.config.GetZone()),
		slog.Bool("tsig", c.tsig != nil),
	)

	type result struct {
		records []dns.RR
		err     error
	}
	ch := make(chan result, 1)

	// transfer.In has no context. After ctx is cancelled the goroutine keeps
	// reading until the server closes the stream or the transfer's read
	// timeout fires; ch is buffered so it never blocks on send.
	go func() {
		env, err := transfer.In(msg, c.config.GetServer())
		if err != nil {
			ch <- result{err: err}
			return
		}

		var records []dns.RR
		var firstErr error
		for e := range env {
			if e.Error != nil {
				if firstErr == nil {
					firstErr = e.Error
				}
				continue
			}
			records = append(records, e.RR...)
		}
		ch <- result{records: records, err: firstErr}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.err != nil {
			return nil, fmt.Errorf("%w: %w", ErrAXFRFailed, r.err)
		}
		c.logger.Debug("AXFR zone transfer complete",
			slog.String("zone", c.config.GetZone()),
			slog.Int("records", len(r.records)),
		)
		return r.records, nil
	}
}

// Lines transfers the zone and renders each record in zone file presentation format.
func (c *Client) Lines(ctx context.Context) ([]string, error) {
	records, err := c.Transfer(ctx)
	if err != nil {
		return nil, err
	}

	lines := make([]string, 0, len(records))
	for _, rr := range records {
		lines = append(lines, rr.String())
	}
	return lines, nil
}
