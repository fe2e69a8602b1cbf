// csv-to-kea converts a host mapping CSV (host_label, mac, ip, dhcp_hostname)
// into Kea DHCP host reservations. Host labels without an explicit hostname
// are qualified with --domain.
package main

import (
	"bytes"
	"context"
	"os"

	"gitlab.bluewillows.net/root/keaconv/internal/cli"
	"gitlab.bluewillows.net/root/keaconv/internal/location"
	"gitlab.bluewillows.net/root/keaconv/internal/metrics"
	"gitlab.bluewillows.net/root/keaconv/pkg/hostmap"
	"gitlab.bluewillows.net/root/keaconv/pkg/kea"
)

const name = metrics.ConverterCSV

func main() {
	os.Exit(cli.Main(name, run))
}

func run(ctx context.Context, env *cli.Env) error {
	fs, configPath := cli.NewFlagSet(env, name, "--domain <domain> [options] <csvfile>")
	domain := fs.String("domain", "", "DNS domain appended to host labels without a hostname (required)")
	args, err := cli.ParseFlags(fs, env.Args)
	if err != nil {
		return err
	}

	if *domain == "" {
		fs.Usage()
		return cli.Usagef("--domain is required")
	}
	if len(args) != 1 {
		fs.Usage()
		return cli.Usagef("expected exactly one <csvfile> argument")
	}

	app, err := cli.Start(env, name, *configPath)
	if err != nil {
		return err
	}

	data, err := app.Read(ctx, args[0])
	if err != nil {
		return err
	}

	hosts, err := hostmap.ReadCSV(bytes.NewReader(data))
	if err != nil {
		return err
	}

	reservations, dropped, err := hostmap.ToReservations(hosts, *domain)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if _, err := kea.NewReservationSet(reservations).WriteTo(&buf); err != nil {
		return err
	}
	if err := app.Write(ctx, location.Stdio, buf.Bytes()); err != nil {
		return err
	}

	app.Finish(metrics.Conversion{
		Input:   len(hosts),
		Output:  len(reservations),
		Skipped: map[string]int{"empty": dropped},
	})
	return nil
}
