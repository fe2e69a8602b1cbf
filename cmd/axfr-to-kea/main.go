// axfr-to-kea converts the A records of a BIND zone transfer into Kea DHCP
// host reservations. The zone comes from a dump file (dig AXFR output) or,
// with --server and --zone, from a live transfer.
package main

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"

	"gitlab.bluewillows.net/root/keaconv/internal/cli"
	"gitlab.bluewillows.net/root/keaconv/internal/location"
	"gitlab.bluewillows.net/root/keaconv/internal/metrics"
	"gitlab.bluewillows.net/root/keaconv/pkg/axfr"
	"gitlab.bluewillows.net/root/keaconv/pkg/kea"
	"gitlab.bluewillows.net/root/keaconv/pkg/zonexfr"
)

const name = metrics.ConverterAXFR

func main() {
	os.Exit(cli.Main(name, run))
}

func run(ctx context.Context, env *cli.Env) error {
	fs, configPath := cli.NewFlagSet(env, name, "[options] <axfr-file>\n       "+name+" [options] --server <host[:port]> --zone <zone>")
	server := fs.String("server", "", "DNS server to transfer the zone from instead of reading a file")
	zone := fs.String("zone", "", "zone to transfer (with --server)")
	args, err := cli.ParseFlags(fs, env.Args)
	if err != nil {
		return err
	}

	switch {
	case *server == "" && len(args) != 1:
		fs.Usage()
		return cli.Usagef("expected exactly one <axfr-file> argument")
	case *server != "" && len(args) != 0:
		fs.Usage()
		return cli.Usagef("<axfr-file> and --server are mutually exclusive")
	case *server != "" && *zone == "":
		fs.Usage()
		return cli.Usagef("--zone is required with --server")
	case *server == "" && *zone != "":
		fs.Usage()
		return cli.Usagef("--zone requires --server")
	}

	app, err := cli.Start(env, name, *configPath)
	if err != nil {
		return err
	}

	extractor := axfr.NewExtractor(axfr.WithLogger(app.Logger))

	var (
		reservations []kea.Reservation
		stats        axfr.Stats
	)
	if *server != "" {
		reservations, stats, err = transfer(ctx, app, extractor, *server, *zone)
	} else {
		reservations, stats, err = readDump(ctx, app, extractor, args[0])
	}
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if _, err := kea.NewReservationSet(reservations).WithKeyOrder(kea.HostnameFirst).WriteTo(&buf); err != nil {
		return err
	}
	if err := app.Write(ctx, location.Stdio, buf.Bytes()); err != nil {
		return err
	}

	app.Finish(metrics.Conversion{
		Input:   stats.Lines,
		Output:  stats.Emitted,
		Skipped: stats.Skipped,
	})
	return nil
}

func readDump(ctx context.Context, app *cli.App, extractor *axfr.Extractor, arg string) ([]kea.Reservation, axfr.Stats, error) {
	data, err := app.Read(ctx, arg)
	if err != nil {
		return nil, axfr.Stats{}, err
	}
	return extractor.Extract(bytes.NewReader(data))
}

func transfer(ctx context.Context, app *cli.App, extractor *axfr.Extractor, server, zone string) ([]kea.Reservation, axfr.Stats, error) {
	client, err := zonexfr.NewClient(app.Config.ZoneTransfer(server, zone), zonexfr.WithLogger(app.Logger))
	if err != nil {
		return nil, axfr.Stats{}, fmt.Errorf("configuring zone transfer: %w", err)
	}

	lines, err := client.Lines(ctx)
	if err != nil {
		return nil, axfr.Stats{}, err
	}

	app.Logger.Info("zone transferred",
		slog.String("zone", client.Zone()),
		slog.String("server", client.Server()),
		slog.Int("records", len(lines)),
	)

	reservations, stats := extractor.ExtractLines(lines)
	return reservations, stats, nil
}
