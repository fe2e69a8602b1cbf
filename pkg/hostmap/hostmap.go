// Package hostmap holds the flat host mapping shared by the converters:
// one row per host with label, MAC, IP and DHCP hostname.
//
// The CSV form of the mapping is the hand-off format between isc-to-csv and
// csv-to-kea. Columns are matched by header name, so files edited by hand
// with reordered or missing columns still load.
package hostmap

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"gitlab.bluewillows.net/root/keaconv/pkg/kea"
)

// Column names of the mapping CSV, in output order.
const (
	ColumnLabel    = "host_label"
	ColumnMAC      = "mac"
	ColumnIP       = "ip"
	ColumnHostname = "dhcp_hostname"
)

// Header is the CSV header row written by WriteCSV.
var Header = []string{ColumnLabel, ColumnMAC, ColumnIP, ColumnHostname}

// ErrMissingDomain is returned when hostname synthesis is requested without a domain.
var ErrMissingDomain = errors.New("domain is required")

// Host is one host mapping row. Empty strings mean the value is absent.
type Host struct {
	Label    string
	MAC      string
	IP       string
	Hostname string
}

// Record returns the row in Header column order.
func (h Host) Record() []string {
	return []string{h.Label, h.MAC, h.IP, h.Hostname}
}

// Trimmed returns a copy with surrounding whitespace removed from every field.
func (h Host) Trimmed() Host {
	return Host{
		Label:    strings.TrimSpace(h.Label),
		MAC:      strings.TrimSpace(h.MAC),
		IP:       strings.TrimSpace(h.IP),
		Hostname: strings.TrimSpace(h.Hostname),
	}
}

// Reservation converts the host to a Kea reservation.
// When the hostname is empty and a label is present, the hostname becomes
// "<label>.<domain>". Fields are expected to be trimmed already.
func (h Host) Reservation(domain string) kea.Reservation {
	hostname := h.Hostname
	if hostname == "" && h.Label != "" {
		hostname = h.Label + "." + domain
	}

	var r kea.Reservation
	if h.MAC != "" {
		r.HWAddress = h.MAC
	}
	if h.IP != "" {
		r.IPAddresses = []string{h.IP}
	}
	if hostname != "" {
		r.Hostname = hostname
	}
	return r
}

// ToReservations trims each host, converts it and drops reservations with no
// populated field. Order is preserved. The second return value is the number
// of dropped hosts.
func ToReservations(hosts []Host, domain string) ([]kea.Reservation, int, error) {
	if domain == "" {
		return nil, 0, ErrMissingDomain
	}

	reservations := make([]kea.Reservation, 0, len(hosts))
	dropped := 0
	for _, h := range hosts {
		r := h.Trimmed().Reservation(domain)
		if r.IsEmpty() {
			dropped++
			continue
		}
		reservations = append(reservations, r)
	}
	return reservations, dropped, nil
}

// ReadCSV reads a mapping CSV with a header row. Known columns are located by
// name in any order; missing columns and short rows read as empty values.
// Values are returned untrimmed.
func ReadCSV(r io.Reader) ([]Host, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading csv header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[name] = i
	}

	field := func(row []string, column string) string {
		i, ok := index[column]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	var hosts []Host
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading csv row: %w", err)
		}

		hosts = append(hosts, Host{
			Label:    field(row, ColumnLabel),
			MAC:      field(row, ColumnMAC),
			IP:       field(row, ColumnIP),
			Hostname: field(row, ColumnHostname),
		})
	}

	return hosts, nil
}

// WriteCSV writes the header followed by one row per host.
func WriteCSV(w io.Writer, hosts []Host) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(Header); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for _, h := range hosts {
		if err := writer.Write(h.Record()); err != nil {
			return fmt.Errorf("writing csv row for %s: %w", h.Label, err)
		}
	}
	writer.Flush()
	return writer.Error()
}
