package cli

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"gitlab.bluewillows.net/root/keaconv/internal/config"
	"gitlab.bluewillows.net/root/keaconv/internal/location"
	"gitlab.bluewillows.net/root/keaconv/internal/metrics"
)

// App is the state of one converter run.
type App struct {
	Name   string
	Config *config.Config
	Logger *slog.Logger
	Opener *location.Opener

	started time.Time
}

// NewFlagSet creates a flag set that reports parse errors on env.Stderr
// and carries the shared --config flag.
func NewFlagSet(env *Env, name, usage string) (*flag.FlagSet, *string) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(env.Stderr)
	fs.Usage = func() {
		_, _ = fmt.Fprintf(fs.Output(), "Usage: %s %s\n\nOptions:\n", name, usage)
		fs.PrintDefaults()
	}
	configPath := fs.String("config", "", "path to config file (.yaml, .toml or .ini); defaults to $"+config.EnvConfigFile)
	return fs, configPath
}

// ParseFlags parses args and returns the positional arguments. Flags may
// appear before or after positionals; "--" ends flag parsing. Flag errors
// become usage errors.
func ParseFlags(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			if err == flag.ErrHelp {
				return nil, err
			}
			return nil, fmt.Errorf("%w: %w", ErrUsage, err)
		}
		rest := fs.Args()
		if consumed := len(args) - len(rest); consumed > 0 && args[consumed-1] == "--" {
			return append(positional, rest...), nil
		}
		if len(rest) == 0 {
			return positional, nil
		}
		positional = append(positional, rest[0])
		args = rest[1:]
	}
}

// Start loads configuration and wires the logger, metrics and location
// opener for a run.
func Start(env *Env, name, configFlag string) (*App, error) {
	cfg, err := config.Load(config.FilePath(configFlag))
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	logger := SetupLogger(env.Stderr, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	metrics.SetBuildInfo(Version, runtime.Version())

	logger.Debug("keaconv starting",
		slog.String("command", name),
		slog.String("version", Version),
		slog.String("build_date", BuildDate),
		slog.String("go_version", runtime.Version()),
	)

	opener := location.NewOpener(
		location.WithStdio(env.Stdin, env.Stdout),
		location.WithSSHConfig(cfg.SSHTarget),
		location.WithLogger(logger),
	)

	return &App{
		Name:    name,
		Config:  cfg,
		Logger:  logger,
		Opener:  opener,
		started: time.Now(),
	}, nil
}

// Read parses arg as a location and returns its contents.
func (a *App) Read(ctx context.Context, arg string) ([]byte, error) {
	loc, err := location.Parse(arg)
	if err != nil {
		return nil, err
	}
	return a.Opener.ReadAll(ctx, loc)
}

// Write parses arg as a location and writes data to it in one operation.
func (a *App) Write(ctx context.Context, arg string, data []byte) error {
	loc, err := location.Parse(arg)
	if err != nil {
		return err
	}
	return a.Opener.WriteAll(ctx, loc, data)
}

// Finish records run metrics and writes the textfile when configured.
// Metrics problems are logged, never fatal.
func (a *App) Finish(c metrics.Conversion) {
	c.Converter = a.Name
	c.Duration = time.Since(a.started)
	metrics.Record(c)

	a.Logger.Info("conversion complete",
		slog.Int("input", c.Input),
		slog.Int("output", c.Output),
		slog.Duration("duration", c.Duration),
	)

	if err := metrics.WriteTextfile(a.Config.MetricsTextfile); err != nil {
		a.Logger.Warn("failed to write metrics", slog.String("error", err.Error()))
	}
}
