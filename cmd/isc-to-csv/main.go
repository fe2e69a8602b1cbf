// isc-to-csv extracts static host blocks from an ISC dhcpd.conf into a host
// mapping CSV suitable for csv-to-kea.
package main

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"gitlab.bluewillows.net/root/keaconv/internal/cli"
	"gitlab.bluewillows.net/root/keaconv/internal/location"
	"gitlab.bluewillows.net/root/keaconv/internal/metrics"
	"gitlab.bluewillows.net/root/keaconv/pkg/hostmap"
	"gitlab.bluewillows.net/root/keaconv/pkg/iscdhcp"
)

const name = metrics.ConverterISC

func main() {
	os.Exit(cli.Main(name, run))
}

func run(ctx context.Context, env *cli.Env) error {
	fs, configPath := cli.NewFlagSet(env, name, "[options] <dhcpd.conf> [output.csv]")
	args, err := cli.ParseFlags(fs, env.Args)
	if err != nil {
		return err
	}

	if len(args) < 1 || len(args) > 2 {
		fs.Usage()
		return cli.Usagef("expected <dhcpd.conf> and an optional [output.csv]")
	}
	output := location.Stdio
	if len(args) == 2 {
		output = args[1]
	}

	app, err := cli.Start(env, name, *configPath)
	if err != nil {
		return err
	}

	data, err := app.Read(ctx, args[0])
	if err != nil {
		return err
	}

	hosts := iscdhcp.NewParser(iscdhcp.WithLogger(app.Logger)).Parse(string(data))

	var buf bytes.Buffer
	if err := hostmap.WriteCSV(&buf, hosts); err != nil {
		return err
	}
	if err := app.Write(ctx, output, buf.Bytes()); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(env.Stderr, "Extracted %d host blocks.\n", len(hosts))

	app.Finish(metrics.Conversion{
		Input:  len(hosts),
		Output: len(hosts),
	})
	return nil
}
