// Package cli holds the plumbing shared by the keaconv commands: process
// environment, logger setup, exit codes and the per-run App.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

// Version and BuildDate are set via ldflags during build.
// Example: -ldflags="-X gitlab.bluewillows.net/root/keaconv/internal/cli.Version=v1.0.0"
var (
	Version   = "dev"
	BuildDate = "unknown"
)

// Exit codes.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
)

// ErrUsage marks errors caused by bad invocation rather than bad input.
var ErrUsage = errors.New("usage error")

// Usagef returns an error wrapping ErrUsage.
func Usagef(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUsage, fmt.Sprintf(format, args...))
}

// Env is the process environment a command runs in.
type Env struct {
	Args   []string // arguments after the program name
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// OSEnv returns the real process environment.
func OSEnv() *Env {
	return &Env{
		Args:   os.Args[1:],
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// RunFunc is a command body.
type RunFunc func(ctx context.Context, env *Env) error

// Main runs fn against the real process environment, cancelling on
// SIGINT/SIGTERM, and returns the exit code.
func Main(name string, fn RunFunc) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return Run(ctx, OSEnv(), name, fn)
}

// Run executes fn and reports its error. Usage errors go to env.Stderr as
// plain text; everything else is logged through slog.
func Run(ctx context.Context, env *Env, name string, fn RunFunc) int {
	err := fn(ctx, env)
	code := ExitCode(err)

	switch {
	case err == nil, errors.Is(err, flag.ErrHelp):
	case code == ExitUsage:
		_, _ = fmt.Fprintf(env.Stderr, "%s: %v\n", name, err)
	default:
		slog.Error("fatal error", slog.String("command", name), slog.String("error", err.Error()))
	}

	return code
}

// ExitCode maps an error returned by a command to a process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil, errors.Is(err, flag.ErrHelp):
		return ExitOK
	case errors.Is(err, ErrUsage):
		return ExitUsage
	default:
		return ExitFailure
	}
}

// SetupLogger builds the process logger. Logs always go to w (stderr in
// production) because stdout carries converter output.
func SetupLogger(w io.Writer, level, format string) *slog.Logger {
	logLevel := ParseLogLevel(level)

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: logLevel})
	} else {
		handler = slog.NewTextHandler(w, &slog.HandlerOptions{Level: logLevel})
	}

	return slog.New(handler)
}

// ParseLogLevel converts a string log level to slog.Level.
func ParseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
