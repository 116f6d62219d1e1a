package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/kilnworks/kilnd/internal"
	"github.com/kilnworks/kilnd/internal/logging"
)

// Represents the root command for the kilnd daemon.
var RootCmd struct {
	Quiet     bool       `short:"q" help:"Suppress informational output."`
	Verbose   bool       `short:"v" help:"Enable verbose output."`
	Debug     bool       `short:"d" help:"Enable debug output."`
	LogFormat string     `help:"Log output format." enum:"text,json" default:"text"`
	Serve     ServeCmd   `cmd:"" help:"Start the build daemon."`
	Build     BuildCmd   `cmd:"" help:"Run a single build and print the outcome."`
	Version   VersionCmd `cmd:"" help:"Show version information."`
}

// Parses arguments, configures logging, and runs the selected subcommand.
func Execute() error {

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	kongCtx := kong.Parse(&RootCmd,
		kong.Name(internal.Name),
		kong.Description("The Kiln build daemon.\n\nAccepts project archives over HTTP and builds them in ephemeral containers."),
		kong.UsageOnError(),
		kong.Vars{
			"version": internal.VersionString(),
		},
		kong.BindTo(ctx, (*context.Context)(nil)),
	)

	configureLogger()

	slog.Debug("build", "version", internal.VersionString())

	slog.Debug("kilnd is starting",
		"pid", os.Getpid(),
		"cwd", cwd(),
		"args", os.Args,
	)

	return kongCtx.Run()
}

// Configures the global logger based on CLI flags.
//
// Flags combine with build-time defaults; debug takes precedence over
// quiet, and quiet over verbose.
func configureLogger() {
	debug := RootCmd.Debug || internal.IsDebug()
	quiet := RootCmd.Quiet || internal.IsQuiet()
	verbose := RootCmd.Verbose || internal.IsVerbose()

	internal.SetDebug(debug)
	internal.SetQuiet(quiet)
	internal.SetVerbose(verbose)

	var level slog.Level
	switch {
	case debug:
		level = slog.LevelDebug
	case quiet:
		level = slog.LevelWarn
	case verbose:
		level = slog.LevelDebug
	default:
		level = slog.LevelInfo
	}

	mode := logging.ParseMode(RootCmd.LogFormat)
	slog.SetDefault(logging.New(mode, os.Stderr, level))
}

// Returns the current working directory or "(unknown)".
func cwd() string {
	cwd, err := os.Getwd()
	if err != nil {
		return "(unknown)"
	}
	return cwd
}
