// Package zonexfr fetches a DNS zone over AXFR and renders it as zone text.
//
// It lets axfr-to-kea read a zone straight from an authoritative server
// instead of from a saved dig dump. Every transferred resource record is
// rendered in presentation format, one record per line, which is the same
// shape the line extractor in package axfr consumes:
//
//	web1.example.com.	3600	IN	A	10.0.0.5
//
// # Usage
//
//	client, err := zonexfr.NewClient(&zonexfr.Config{
//	    Server: "ns1.example.com:53",
//	    Zone:   "example.com.",
//	})
//	if err != nil {
//	    return err
//	}
//
//	lines, err := client.Lines(ctx)
//
// # TSIG Authentication
//
// Most servers only allow zone transfers to listed addresses or to clients
// holding a TSIG key. Set TSIGKeyName and TSIGSecret (base64) to sign the
// request. Supported algorithms are hmac-sha256 (default), hmac-sha512 and
// hmac-md5.
package zonexfr
