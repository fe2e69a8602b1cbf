package axfr

import (
	"reflect"
	"strings"
	"testing"

	"gitlab.bluewillows.net/root/keaconv/pkg/kea"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		name       string
		line       string
		want       kea.Reservation
		wantOK     bool
		wantReason string
	}{
		{
			name:   "full line with ttl and class",
			line:   "web1.example.com. 3600 IN A 10.0.0.5",
			want:   kea.Reservation{Hostname: "web1.example.com", IPAddresses: []string{"10.0.0.5"}},
			wantOK: true,
		},
		{
			name:   "tab separated",
			line:   "db.example.com.\t300\tIN\tA\t10.0.0.6",
			want:   kea.Reservation{Hostname: "db.example.com", IPAddresses: []string{"10.0.0.6"}},
			wantOK: true,
		},
		{
			name:   "relative name kept as is",
			line:   "  mail   A   10.0.0.7  ",
			want:   kea.Reservation{Hostname: "mail", IPAddresses: []string{"10.0.0.7"}},
			wantOK: true,
		},
		{
			name:   "only one trailing dot stripped",
			line:   "odd.. A 10.0.0.8",
			want:   kea.Reservation{Hostname: "odd.", IPAddresses: []string{"10.0.0.8"}},
			wantOK: true,
		},
		{
			name:   "address not validated",
			line:   "weird IN A not-an-ip",
			want:   kea.Reservation{Hostname: "weird", IPAddresses: []string{"not-an-ip"}},
			wantOK: true,
		},
		{
			name:   "first A token wins",
			line:   "host A 10.0.0.1 A 10.0.0.2",
			want:   kea.Reservation{Hostname: "host", IPAddresses: []string{"10.0.0.1"}},
			wantOK: true,
		},
		{
			name:   "stray A in a TXT record still matches",
			line:   `note TXT A "hello"`,
			want:   kea.Reservation{Hostname: "note", IPAddresses: []string{`"hello"`}},
			wantOK: true,
		},
		{name: "blank", line: "   ", wantReason: SkipBlank},
		{name: "comment", line: "; <<>> DiG 9.18 <<>> axfr example.com", wantReason: SkipComment},
		{name: "aaaa record", line: "web1.example.com. 3600 IN AAAA ::1", wantReason: SkipNoA},
		{name: "lowercase a is not A", line: "web1 3600 IN a 10.0.0.1", wantReason: SkipNoA},
		{name: "A is last token", line: "web1.example.com. 3600 IN A", wantReason: SkipLayout},
		{name: "A is first token", line: "A 10.0.0.1", wantReason: SkipLayout},
		{name: "apex", line: "@ 3600 IN A 10.0.0.1", wantReason: SkipName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, reason := ParseLine(tt.line)
			if ok != tt.wantOK {
				t.Fatalf("ParseLine() ok = %v, want %v", ok, tt.wantOK)
			}
			if reason != tt.wantReason {
				t.Errorf("ParseLine() reason = %q, want %q", reason, tt.wantReason)
			}
			if ok && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseLine() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

const sampleZone = `; <<>> DiG 9.18.24 <<>> @ns1 example.com AXFR
;; global options: +cmd
example.com.		3600	IN	SOA	ns1.example.com. admin.example.com. 2024010101 3600 900 604800 300
example.com.		3600	IN	NS	ns1.example.com.
example.com.		3600	IN	A	10.0.0.1

web1.example.com.	3600	IN	A	10.0.0.5
web1.example.com.	3600	IN	AAAA	fd00::5
www.example.com.	3600	IN	CNAME	web1.example.com.
db.example.com.		300	IN	A	10.0.0.6
example.com.		3600	IN	SOA	ns1.example.com. admin.example.com. 2024010101 3600 900 604800 300
;; Query time: 2 msec
`

func TestExtractor_Extract(t *testing.T) {
	got, stats, err := NewExtractor().Extract(strings.NewReader(sampleZone))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	want := []kea.Reservation{
		{Hostname: "example.com", IPAddresses: []string{"10.0.0.1"}},
		{Hostname: "web1.example.com", IPAddresses: []string{"10.0.0.5"}},
		{Hostname: "db.example.com", IPAddresses: []string{"10.0.0.6"}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Extract() = %+v, want %+v", got, want)
	}

	if stats.Lines != 12 {
		t.Errorf("stats.Lines = %d, want 12", stats.Lines)
	}
	if stats.Emitted != 3 {
		t.Errorf("stats.Emitted = %d, want 3", stats.Emitted)
	}
	if stats.Skipped[SkipComment] != 3 {
		t.Errorf("stats.Skipped[comment] = %d, want 3", stats.Skipped[SkipComment])
	}
	if stats.Skipped[SkipBlank] != 1 {
		t.Errorf("stats.Skipped[blank] = %d, want 1", stats.Skipped[SkipBlank])
	}
}

func TestExtractor_CommentsAndBlanksOnly(t *testing.T) {
	got, _, err := NewExtractor().Extract(strings.NewReader("; comment\n\n   \n;; another\n"))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Extract() = %+v, want no reservations", got)
	}
	if got == nil {
		t.Error("Extract() returned nil slice, want empty")
	}
}

func TestExtractor_LongLines(t *testing.T) {
	txt := "big.example.com.\t300\tIN\tTXT\t\"" + strings.Repeat("x", 2<<20) + "\""
	input := txt + "\r\nweb1.example.com.\t300\tIN\tA\t10.0.0.5\r\ndb.example.com. 300 IN A 10.0.0.6"

	got, stats, err := NewExtractor().Extract(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	want := []kea.Reservation{
		{Hostname: "web1.example.com", IPAddresses: []string{"10.0.0.5"}},
		{Hostname: "db.example.com", IPAddresses: []string{"10.0.0.6"}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Extract() = %+v, want %+v", got, want)
	}
	if stats.Lines != 3 {
		t.Errorf("stats.Lines = %d, want 3", stats.Lines)
	}
}

func TestExtractor_Deterministic(t *testing.T) {
	e := NewExtractor()
	first, _, _ := e.Extract(strings.NewReader(sampleZone))
	second, _, _ := e.Extract(strings.NewReader(sampleZone))

	a, err := kea.NewReservationSet(first).Marshal()
	if err != nil {
		t.Fatal(err)
	}
	b, err := kea.NewReservationSet(second).Marshal()
	if err != nil {
		t.Fatal(err)
	}
	if string(a) != string(b) {
		t.Error("repeated runs produced different output")
	}
}
