package zonexfr

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/miekg/dns"
)

// TSIG is a transaction signature key (RFC 8945).
type TSIG struct {
	// Name is the key name as a fully qualified name.
	Name string

	// Secret is the base64-encoded shared secret.
	Secret string

	// Algorithm is the miekg/dns algorithm name, e.g. dns.HmacSHA256.
	Algorithm string
}

// NewTSIG validates and normalizes a TSIG key.
func NewTSIG(name, secret, algorithm string) (*TSIG, error) {
	if _, err := base64.StdEncoding.DecodeString(secret); err != nil {
		return nil, fmt.Errorf("tsig secret is not valid base64: %w", err)
	}

	alg := normalizeAlgorithm(algorithm)
	if !isValidAlgorithm(alg) {
		return nil, fmt.Errorf("unsupported tsig algorithm: %s", algorithm)
	}

	return &TSIG{
		Name:      dns.Fqdn(name),
		Secret:    secret,
		Algorithm: alg,
	}, nil
}

// TSIGFromConfig builds the key from a Config. Returns nil when TSIG is not configured.
func TSIGFromConfig(config *Config) (*TSIG, error) {
	if !config.HasTSIG() {
		return nil, nil //nolint:nilnil // no key means unsigned transfer
	}
	return NewTSIG(config.TSIGKeyName, config.TSIGSecret, config.TSIGAlgorithm)
}

// ApplyToTransfer registers the secret on a transfer so responses can be verified.
func (t *TSIG) ApplyToTransfer(tr *dns.Transfer) {
	if t == nil {
		return
	}
	tr.TsigSecret = map[string]string{t.Name: t.Secret}
}

// ApplyToMessage signs the request. Call it after the message is built.
func (t *TSIG) ApplyToMessage(msg *dns.Msg) {
	if t == nil {
		return
	}
	msg.SetTsig(t.Name, t.Algorithm, 300, 0)
}

func normalizeAlgorithm(alg string) string {
	switch strings.ToLower(strings.TrimSpace(alg)) {
	case "":
		return DefaultTSIGAlgorithm
	case "hmac-md5", "md5", dns.HmacMD5:
		return dns.HmacMD5
	case "hmac-sha256", "sha256", dns.HmacSHA256:
		return dns.HmacSHA256
	case "hmac-sha512", "sha512", dns.HmacSHA512:
		return dns.HmacSHA512
	default:
		return alg
	}
}

func isValidAlgorithm(alg string) bool {
	switch alg {
	case dns.HmacMD5, dns.HmacSHA256, dns.HmacSHA512:
		return true
	default:
		return false
	}
}
