// Package iscdhcp extracts static host reservations from ISC dhcpd.conf text.
//
// This is a best-effort scanner for common host blocks, not a config parser:
//
//	host srv1 {
//	  hardware ethernet AA:BB:CC:DD:EE:FF;
//	  fixed-address 10.0.0.9;
//	  option host-name "srv1";
//	}
//
// A block body ends at the first closing brace. Blocks containing nested
// braces are truncated there.
package iscdhcp

import (
	"log/slog"
	"regexp"
	"strings"

	"gitlab.bluewillows.net/root/keaconv/pkg/hostmap"
)

var (
	hostBlockPattern     = regexp.MustCompile(`host\s+(\S+)\s*\{([^}]*)\}`)
	hardwareEthernet     = regexp.MustCompile(`hardware\s+ethernet\s+([^;\s]+)\s*;`)
	fixedAddress         = regexp.MustCompile(`fixed-address\s+([^;\s]+)\s*;`)
	quotedHostNameOption = regexp.MustCompile(`option\s+host-name\s+"([^"]+)"\s*;`)
	bareHostNameOption   = regexp.MustCompile(`option\s+host-name\s+([^;\s]+)\s*;`)
)

// Block is a raw host block: the label after "host" and the text between the braces.
type Block struct {
	Label string
	Body  string
}

// Parser extracts host blocks from dhcpd.conf content.
type Parser struct {
	logger *slog.Logger
}

// Option configures a Parser.
type Option func(*Parser)

// WithLogger sets the logger used for per-block debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Parser) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewParser creates a Parser.
func NewParser(opts ...Option) *Parser {
	p := &Parser{logger: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// FindBlocks returns every host block in document order.
func FindBlocks(text string) []Block {
	matches := hostBlockPattern.FindAllStringSubmatch(text, -1)
	blocks := make([]Block, 0, len(matches))
	for _, m := range matches {
		blocks = append(blocks, Block{Label: m[1], Body: m[2]})
	}
	return blocks
}

// Host projects a block into a mapping row. Fields that are not found are empty.
func (b Block) Host() hostmap.Host {
	h := hostmap.Host{Label: b.Label}

	if m := hardwareEthernet.FindStringSubmatch(b.Body); m != nil {
		h.MAC = strings.ToLower(m[1])
	}
	if m := fixedAddress.FindStringSubmatch(b.Body); m != nil {
		h.IP = m[1]
	}

	m := quotedHostNameOption.FindStringSubmatch(b.Body)
	if m == nil {
		m = bareHostNameOption.FindStringSubmatch(b.Body)
	}
	if m != nil {
		h.Hostname = m[1]
	}

	return h
}

// Parse returns one host per block, in document order, including blocks where
// nothing could be extracted.
func (p *Parser) Parse(text string) []hostmap.Host {
	blocks := FindBlocks(text)
	hosts := make([]hostmap.Host, 0, len(blocks))

	for _, b := range blocks {
		h := b.Host()
		p.logger.Debug("extracted host block",
			slog.String("label", h.Label),
			slog.String("mac", h.MAC),
			slog.String("ip", h.IP),
			slog.String("hostname", h.Hostname),
		)
		hosts = append(hosts, h)
	}

	return hosts
}
