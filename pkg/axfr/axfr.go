// Package axfr extracts A-record hostname/address pairs from the text of a
// BIND zone transfer dump and turns them into Kea reservations.
//
// Lines are matched by position around the literal token "A": the first
// token is the owner name and the token after "A" is the address. TTL and
// class columns are not interpreted, so any line that happens to carry a
// bare "A" token qualifies.
package axfr

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"gitlab.bluewillows.net/root/keaconv/pkg/kea"
)

// Skip reasons reported through Stats.
const (
	SkipBlank   = "blank"
	SkipComment = "comment"
	SkipNoA     = "no_a_record"
	SkipLayout  = "bad_layout"
	SkipName    = "apex_or_comment_name"
)

// Stats counts what happened to each input line.
type Stats struct {
	Lines   int
	Emitted int
	Skipped map[string]int
}

func (s *Stats) skip(reason string) {
	if s.Skipped == nil {
		s.Skipped = make(map[string]int)
	}
	s.Skipped[reason]++
}

// Extractor turns zone text lines into reservations.
type Extractor struct {
	logger *slog.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithLogger sets the logger used for per-line debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewExtractor creates an Extractor.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ParseLine extracts a reservation from one zone text line.
// The second return value is false when the line does not qualify, with the
// skip reason in the third.
func ParseLine(line string) (kea.Reservation, bool, string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return kea.Reservation{}, false, SkipBlank
	}
	if strings.HasPrefix(line, ";") {
		return kea.Reservation{}, false, SkipComment
	}

	fields := strings.Fields(line)
	i := indexOf(fields, "A")
	if i < 0 {
		return kea.Reservation{}, false, SkipNoA
	}
	if i < 1 || i+1 >= len(fields) {
		return kea.Reservation{}, false, SkipLayout
	}

	name := fields[0]
	ip := fields[i+1]
	if name == "@" || strings.HasPrefix(name, ";") {
		return kea.Reservation{}, false, SkipName
	}
	name = strings.TrimSuffix(name, ".")

	return kea.Reservation{
		Hostname:    name,
		IPAddresses: []string{ip},
	}, true, ""
}

// ExtractLines runs ParseLine over each line and keeps qualifying reservations in order.
func (e *Extractor) ExtractLines(lines []string) ([]kea.Reservation, Stats) {
	var stats Stats
	reservations := make([]kea.Reservation, 0)

	for _, line := range lines {
		stats.Lines++
		r, ok, reason := ParseLine(line)
		if !ok {
			stats.skip(reason)
			if reason != SkipBlank && reason != SkipComment {
				e.logger.Debug("skipping zone line",
					slog.String("reason", reason),
					slog.String("line", line),
				)
			}
			continue
		}
		stats.Emitted++
		reservations = append(reservations, r)
	}

	return reservations, stats
}

// Extract reads zone text from r line by line.
func (e *Extractor) Extract(r io.Reader) ([]kea.Reservation, Stats, error) {
	var lines []string
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if line != "" {
			lines = append(lines, strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r"))
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, Stats{}, fmt.Errorf("reading zone text: %w", err)
		}
	}

	reservations, stats := e.ExtractLines(lines)
	return reservations, stats, nil
}

func indexOf(fields []string, token string) int {
	for i, f := range fields {
		if f == token {
			return i
		}
	}
	return -1
}
