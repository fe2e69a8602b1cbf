package main

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gitlab.bluewillows.net/root/keaconv/internal/cli"
)

func runCommand(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	defaultLogger := slog.Default()
	t.Cleanup(func() { slog.SetDefault(defaultLogger) })

	var stdout, stderr bytes.Buffer
	env := &cli.Env{Args: args, Stdin: strings.NewReader(stdin), Stdout: &stdout, Stderr: &stderr}
	err := run(context.Background(), env)
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

const mappingCSV = `host_label,mac,ip,dhcp_hostname
srv1,aa:bb:cc:dd:ee:ff,10.0.0.9,
,,,
printer, ,10.0.0.20 ,lp.example.net
`

const wantJSON = `{
  "hosts": [
    {
      "hw-address": "aa:bb:cc:dd:ee:ff",
      "ip-addresses": [
        "10.0.0.9"
      ],
      "hostname": "srv1.example.com"
    },
    {
      "ip-addresses": [
        "10.0.0.20"
      ],
      "hostname": "lp.example.net"
    }
  ]
}
`

func TestRun(t *testing.T) {
	path := writeFile(t, "hosts.csv", mappingCSV)

	tests := []struct {
		name string
		args []string
	}{
		{"domain before file", []string{"--domain", "example.com", path}},
		{"domain after file", []string{path, "--domain", "example.com"}},
		{"domain after file with equals", []string{path, "-domain=example.com"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, stderr, err := runCommand(t, "", tt.args...)
			if err != nil {
				t.Fatalf("run() error = %v", err)
			}
			if stdout != wantJSON {
				t.Errorf("stdout =\n%s\nwant\n%s", stdout, wantJSON)
			}
			if stderr != "" {
				t.Errorf("stderr = %q, want empty", stderr)
			}
		})
	}
}

func TestRun_Stdin(t *testing.T) {
	stdout, _, err := runCommand(t, mappingCSV, "-domain=example.com", "-")
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if stdout != wantJSON {
		t.Errorf("stdout =\n%s", stdout)
	}
}

func TestRun_Deterministic(t *testing.T) {
	path := writeFile(t, "hosts.csv", mappingCSV)

	first, _, err := runCommand(t, "", "--domain", "example.com", path)
	if err != nil {
		t.Fatal(err)
	}
	second, _, err := runCommand(t, "", "--domain", "example.com", path)
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Error("repeated runs produced different output")
	}
}

func TestRun_UsageErrors(t *testing.T) {
	path := writeFile(t, "hosts.csv", mappingCSV)

	tests := []struct {
		name string
		args []string
	}{
		{"missing domain", []string{path}},
		{"empty domain", []string{"--domain", "", path}},
		{"missing file", []string{"--domain", "example.com"}},
		{"extra argument", []string{"--domain", "example.com", path, path}},
		{"extra argument after flag", []string{path, "--domain", "example.com", path}},
		{"unknown flag", []string{"--zone", "x", path}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, stderr, err := runCommand(t, "", tt.args...)
			if !errors.Is(err, cli.ErrUsage) {
				t.Fatalf("run() error = %v, want usage error", err)
			}
			if cli.ExitCode(err) != cli.ExitUsage {
				t.Errorf("ExitCode() = %d, want %d", cli.ExitCode(err), cli.ExitUsage)
			}
			if stdout != "" {
				t.Errorf("stdout = %q, want empty", stdout)
			}
			if !strings.Contains(stderr, "Usage: csv-to-kea") {
				t.Errorf("stderr missing usage: %q", stderr)
			}
		})
	}
}

func TestRun_MissingFile(t *testing.T) {
	stdout, _, err := runCommand(t, "", "--domain", "example.com", filepath.Join(t.TempDir(), "absent.csv"))
	if err == nil {
		t.Fatal("run() expected error")
	}
	if cli.ExitCode(err) != cli.ExitFailure {
		t.Errorf("ExitCode() = %d, want %d", cli.ExitCode(err), cli.ExitFailure)
	}
	if stdout != "" {
		t.Errorf("stdout = %q, want no partial output", stdout)
	}
}

func TestRun_HeaderOnly(t *testing.T) {
	path := writeFile(t, "hosts.csv", "host_label,mac,ip,dhcp_hostname\n")

	stdout, _, err := runCommand(t, "", "--domain", "example.com", path)
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if stdout != "{\n  \"hosts\": []\n}\n" {
		t.Errorf("stdout = %q", stdout)
	}
}
