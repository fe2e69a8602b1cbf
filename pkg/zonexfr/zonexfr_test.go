package zonexfr

import (
	"context"
	"errors"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/miekg/dns"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
		errMsg  string
	}{
		{
			name:   "minimal",
			config: Config{Server: "ns1.example.com", Zone: "example.com"},
		},
		{
			name: "with tsig",
			config: Config{
				Server:        "10.0.0.1:5353",
				Zone:          "example.com.",
				TSIGKeyName:   "xfr-key",
				TSIGSecret:    "c2VjcmV0",
				TSIGAlgorithm: "hmac-sha512",
			},
		},
		{
			name:    "missing server",
			config:  Config{Zone: "example.com."},
			wantErr: true,
			errMsg:  "server is required",
		},
		{
			name:    "missing zone",
			config:  Config{Server: "ns1"},
			wantErr: true,
			errMsg:  "zone is required",
		},
		{
			name:    "key without secret",
			config:  Config{Server: "ns1", Zone: "example.com.", TSIGKeyName: "k"},
			wantErr: true,
			errMsg:  "tsig_secret is required",
		},
		{
			name:    "unsupported algorithm",
			config:  Config{Server: "ns1", Zone: "example.com.", TSIGKeyName: "k", TSIGSecret: "c2VjcmV0", TSIGAlgorithm: "hmac-sha1"},
			wantErr: true,
			errMsg:  "unsupported tsig_algorithm",
		},
		{
			name:    "negative timeout",
			config:  Config{Server: "ns1", Zone: "example.com.", Timeout: -time.Second},
			wantErr: true,
			errMsg:  "timeout must be non-negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("Validate() error = %q, want containing %q", err.Error(), tt.errMsg)
			}
		})
	}
}

func TestConfig_GetServer(t *testing.T) {
	tests := []struct {
		server string
		want   string
	}{
		{"", ""},
		{"ns1.example.com", "ns1.example.com:53"},
		{"ns1.example.com:5353", "ns1.example.com:5353"},
		{"10.0.0.1", "10.0.0.1:53"},
		{"fd00::1", "[fd00::1]:53"},
		{"[fd00::1]:5353", "[fd00::1]:5353"},
	}

	for _, tt := range tests {
		c := Config{Server: tt.server}
		if got := c.GetServer(); got != tt.want {
			t.Errorf("GetServer(%q) = %q, want %q", tt.server, got, tt.want)
		}
	}
}

func TestConfig_Defaults(t *testing.T) {
	c := Config{Zone: "example.com"}
	if c.GetZone() != "example.com." {
		t.Errorf("GetZone() = %q, want example.com.", c.GetZone())
	}
	if c.GetTimeout() != DefaultTimeout {
		t.Errorf("GetTimeout() = %v, want %v", c.GetTimeout(), DefaultTimeout)
	}
	if c.GetTSIGAlgorithm() != dns.HmacSHA256 {
		t.Errorf("GetTSIGAlgorithm() = %q, want %q", c.GetTSIGAlgorithm(), dns.HmacSHA256)
	}
	if c.HasTSIG() {
		t.Error("HasTSIG() = true, want false")
	}
}

func TestNewTSIG(t *testing.T) {
	tsig, err := NewTSIG("xfr-key", "c2VjcmV0", "sha512")
	if err != nil {
		t.Fatalf("NewTSIG() error = %v", err)
	}
	if tsig.Name != "xfr-key." {
		t.Errorf("Name = %q, want xfr-key.", tsig.Name)
	}
	if tsig.Algorithm != dns.HmacSHA512 {
		t.Errorf("Algorithm = %q, want %q", tsig.Algorithm, dns.HmacSHA512)
	}

	if _, err := NewTSIG("k", "not base64!!", ""); err == nil {
		t.Error("NewTSIG() with bad secret returned nil error")
	}
	if _, err := NewTSIG("k", "c2VjcmV0", "hmac-sha1"); err == nil {
		t.Error("NewTSIG() with unsupported algorithm returned nil error")
	}
}

func TestTSIG_ApplyNil(t *testing.T) {
	var tsig *TSIG
	tr := new(dns.Transfer)
	msg := new(dns.Msg)
	tsig.ApplyToTransfer(tr)
	tsig.ApplyToMessage(msg)
	if tr.TsigSecret != nil || msg.IsTsig() != nil {
		t.Error("nil TSIG modified transfer or message")
	}
}

func TestNewClient_InvalidConfig(t *testing.T) {
	if _, err := NewClient(nil); err == nil {
		t.Error("NewClient(nil) returned nil error")
	}
	if _, err := NewClient(&Config{}); err == nil {
		t.Error("NewClient(empty) returned nil error")
	}
}

func mustRR(t *testing.T, s string) dns.RR {
	t.Helper()
	rr, err := dns.NewRR(s)
	if err != nil {
		t.Fatalf("dns.NewRR(%q) error = %v", s, err)
	}
	return rr
}

// startAXFRServer serves records as the example.com. zone and refuses any other zone.
func startAXFRServer(t *testing.T, records []dns.RR) string {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	started := make(chan struct{})
	srv := &dns.Server{
		Listener: l,
		Handler: dns.HandlerFunc(func(w dns.ResponseWriter, r *dns.Msg) {
			if len(r.Question) != 1 || r.Question[0].Qtype != dns.TypeAXFR || r.Question[0].Name != "example.com." {
				m := new(dns.Msg)
				m.SetRcode(r, dns.RcodeRefused)
				_ = w.WriteMsg(m)
				return
			}

			ch := make(chan *dns.Envelope)
			done := make(chan error, 1)
			tr := new(dns.Transfer)
			go func() { done <- tr.Out(w, r, ch) }()
			ch <- &dns.Envelope{RR: records}
			close(ch)
			<-done
		}),
		NotifyStartedFunc: func() { close(started) },
	}

	go func() { _ = srv.ActivateAndServe() }()
	<-started
	t.Cleanup(func() { _ = srv.Shutdown() })

	return l.Addr().String()
}

func zoneRecords(t *testing.T) []dns.RR {
	soa := mustRR(t, "example.com. 3600 IN SOA ns1.example.com. admin.example.com. 1 3600 900 604800 300")
	return []dns.RR{
		soa,
		mustRR(t, "example.com. 3600 IN NS ns1.example.com."),
		mustRR(t, "web1.example.com. 3600 IN A 10.0.0.5"),
		mustRR(t, "db.example.com. 300 IN A 10.0.0.6"),
		soa,
	}
}

func TestClient_Lines(t *testing.T) {
	addr := startAXFRServer(t, zoneRecords(t))

	client, err := NewClient(&Config{Server: addr, Zone: "example.com", Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	lines, err := client.Lines(context.Background())
	if err != nil {
		t.Fatalf("Lines() error = %v", err)
	}

	if len(lines) != 5 {
		t.Fatalf("Lines() returned %d lines, want 5: %q", len(lines), lines)
	}
	if lines[2] != "web1.example.com.\t3600\tIN\tA\t10.0.0.5" {
		t.Errorf("lines[2] = %q", lines[2])
	}
	if !strings.Contains(lines[0], "SOA") || !strings.Contains(lines[4], "SOA") {
		t.Errorf("transfer not framed by SOA records: %q", lines)
	}
}

func TestClient_TransferRefused(t *testing.T) {
	addr := startAXFRServer(t, zoneRecords(t))

	client, err := NewClient(&Config{Server: addr, Zone: "other.org.", Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	_, err = client.Transfer(context.Background())
	if !errors.Is(err, ErrAXFRFailed) {
		t.Errorf("Transfer() error = %v, want ErrAXFRFailed", err)
	}
}

func TestClient_TransferCancelled(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer l.Close()

	client, err := NewClient(&Config{Server: l.Addr().String(), Zone: "example.com.", Timeout: 10 * time.Second})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if _, err := client.Transfer(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Transfer() error = %v, want context.DeadlineExceeded", err)
	}
}
