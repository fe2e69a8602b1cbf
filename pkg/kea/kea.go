// Package kea models Kea DHCP host reservations and their JSON encoding.
package kea

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// Reservation is a single Kea host reservation.
// Empty fields are omitted from the encoded JSON.
type Reservation struct {
	HWAddress   string   `json:"hw-address,omitempty"`
	IPAddresses []string `json:"ip-addresses,omitempty"`
	Hostname    string   `json:"hostname,omitempty"`
}

// IsEmpty reports whether no field of the reservation is populated.
func (r Reservation) IsEmpty() bool {
	return r.HWAddress == "" && len(r.IPAddresses) == 0 && r.Hostname == ""
}

// KeyOrder selects the order of keys within each encoded reservation.
type KeyOrder int

const (
	// HardwareFirst encodes hw-address, ip-addresses, hostname.
	HardwareFirst KeyOrder = iota
	// HostnameFirst encodes hostname, hw-address, ip-addresses.
	HostnameFirst
)

// ReservationSet is the top-level document: {"hosts": [...]}.
type ReservationSet struct {
	Hosts []Reservation `json:"hosts"`

	order KeyOrder
}

type hostnameFirst struct {
	Hostname    string   `json:"hostname,omitempty"`
	HWAddress   string   `json:"hw-address,omitempty"`
	IPAddresses []string `json:"ip-addresses,omitempty"`
}

// NewReservationSet wraps reservations in input order.
func NewReservationSet(hosts []Reservation) ReservationSet {
	if hosts == nil {
		hosts = []Reservation{}
	}
	return ReservationSet{Hosts: hosts}
}

// WithKeyOrder returns a copy of the set that encodes keys in order.
func (s ReservationSet) WithKeyOrder(order KeyOrder) ReservationSet {
	s.order = order
	return s
}

// Len returns the number of reservations.
func (s ReservationSet) Len() int {
	return len(s.Hosts)
}

// Marshal encodes the set as JSON indented by two spaces, with a trailing newline.
func (s ReservationSet) Marshal() ([]byte, error) {
	if s.Hosts == nil {
		s.Hosts = []Reservation{}
	}

	var doc any = s
	if s.order == HostnameFirst {
		hosts := make([]hostnameFirst, len(s.Hosts))
		for i, r := range s.Hosts {
			hosts[i] = hostnameFirst{Hostname: r.Hostname, HWAddress: r.HWAddress, IPAddresses: r.IPAddresses}
		}
		doc = struct {
			Hosts []hostnameFirst `json:"hosts"`
		}{hosts}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encoding reservations: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteTo writes the encoded set to w.
func (s ReservationSet) WriteTo(w io.Writer) (int64, error) {
	data, err := s.Marshal()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	return int64(n), err
}
