// Package main is the entry point for the hexpatch binary editor.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/sirupsen/logrus"

	"github.com/dshills/hexpatch/internal/app"
	"github.com/dshills/hexpatch/internal/plugin"
	"github.com/dshills/hexpatch/internal/term"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// errUsage marks a command line error; flag has already printed it.
var errUsage = errors.New("usage")

type options struct {
	configPath  string
	pluginPaths []string
	commands    []string
	save        bool
	interactive bool
	readOnly    bool
	listOnly    bool
	metricsAddr string
	logging     app.LoggerConfig
	file        string
	showVersion bool
}

// stringList collects a repeatable flag.
type stringList []string

func (l *stringList) String() string { return strings.Join(*l, ",") }

func (l *stringList) Set(v string) error {
	*l = append(*l, v)
	return nil
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintf(stderr, "Error: %v\n", err)
		}
		return 2
	}

	if opts.showVersion {
		fmt.Fprintf(stdout, "hexpatch %s\n", version)
		fmt.Fprintf(stdout, "Commit: %s\n", commit)
		fmt.Fprintf(stdout, "Built: %s\n", date)
		return 0
	}

	logger, closer, err := app.NewLogger(opts.logging)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var metrics *app.Metrics
	if opts.metricsAddr != "" {
		metrics = app.NewMetrics()
		srv := serveMetrics(opts.metricsAddr, metrics, logger)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	application, err := app.New(app.Options{
		ConfigPath:  opts.configPath,
		PluginPaths: opts.pluginPaths,
		Logger:      logger,
		Metrics:     metrics,
	})
	if err != nil {
		fmt.Fprintf(stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}
	defer application.Close()

	code := session(ctx, application, opts, stdout, stderr, logger)
	if !opts.interactive {
		printNotifications(stderr, application)
	}
	return code
}

// session opens the file, runs the requested commands and then either saves
// or hands over to the terminal UI.
func session(ctx context.Context, a *app.Application, opts *options, stdout, stderr io.Writer, logger *logrus.Logger) int {
	var err error
	if opts.file != "" {
		err = a.Open(opts.file)
	} else {
		err = a.LoadPlugins()
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	a.Document().ReadOnly = opts.readOnly

	if opts.listOnly {
		listPlugins(stdout, a)
		return 0
	}

	code := 0
	for _, id := range opts.commands {
		if err := a.RunCommand(id); err != nil {
			code = 1
		}
	}

	if opts.interactive {
		if err := interactive(ctx, a, opts, logger); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		return code
	}

	if opts.save {
		if err := a.Save(); err != nil {
			return 1
		}
	}
	return code
}

func interactive(ctx context.Context, a *app.Application, opts *options, logger *logrus.Logger) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("creating terminal: %w", err)
	}

	watcher, err := plugin.NewWatcher(plugin.DefaultWatchDelay)
	if err != nil {
		return fmt.Errorf("creating plugin watcher: %w", err)
	}
	defer watcher.Close()

	dirs := opts.pluginPaths
	if dirs == nil {
		dirs = plugin.DefaultPluginPaths()
	}
	if err := watcher.Watch(dirs...); err != nil {
		logger.WithError(err).Warn("watching plugin directories")
	}
	go func() {
		for err := range watcher.Errors() {
			logger.WithError(err).Warn("plugin watcher")
		}
	}()

	ui := term.New(a, screen,
		term.WithReloads(watcher.Changes()),
		term.WithLogger(logger),
	)
	return ui.Run(ctx)
}

func serveMetrics(addr string, metrics *app.Metrics, logger *logrus.Logger) *http.Server {
	mux := http.NewServeMux()
	app.RegisterMetricsEndpoint(mux, metrics)
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Error("metrics server stopped")
		}
	}()
	logger.WithField("addr", addr).Info("serving metrics")
	return srv
}

func listPlugins(w io.Writer, a *app.Application) {
	for _, info := range a.Plugins() {
		line := fmt.Sprintf("%s\t%s", info.Name, info.State)
		if info.Error != nil {
			line += "\t" + info.Error.Error()
		}
		fmt.Fprintln(w, line)
	}
	for _, cmd := range a.Commands() {
		fmt.Fprintf(w, "%s\t%s\t%s\n", cmd.Plugin, cmd.Command, cmd.Description)
	}
}

func printNotifications(w io.Writer, a *app.Application) {
	for _, e := range a.Notifications().Entries() {
		fmt.Fprintf(w, "[%s] %s\n", e.Level, e.Message)
	}
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	opts := &options{}
	var plugins string
	var commands stringList

	fs := flag.NewFlagSet("hexpatch", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&opts.configPath, "config", "", "Path to settings file (toml, yaml or json)")
	fs.StringVar(&opts.configPath, "c", "", "Path to settings file (shorthand)")
	fs.StringVar(&plugins, "plugins", "", "Comma-separated plugin directories")
	fs.StringVar(&plugins, "p", "", "Comma-separated plugin directories (shorthand)")
	fs.Var(&commands, "run", "Plugin command to run after opening (repeatable)")
	fs.Var(&commands, "r", "Plugin command to run after opening (shorthand)")
	fs.BoolVar(&opts.save, "save", false, "Send Save to plugins and write the file when done")
	fs.BoolVar(&opts.interactive, "interactive", false, "Run the terminal editor")
	fs.BoolVar(&opts.interactive, "i", false, "Run the terminal editor (shorthand)")
	fs.BoolVar(&opts.readOnly, "readonly", false, "Refuse to save the file")
	fs.BoolVar(&opts.readOnly, "R", false, "Refuse to save the file (shorthand)")
	fs.BoolVar(&opts.listOnly, "list", false, "List plugins and their commands, then exit")
	fs.StringVar(&opts.metricsAddr, "metrics", "", "Serve Prometheus metrics on this address (e.g. :9090)")
	fs.StringVar(&opts.logging.Level, "log-level", "info", "Log level (debug, info, warn, error)")
	fs.StringVar(&opts.logging.Output, "log-file", "stderr", "Log destination (stderr, stdout or a file path)")
	fs.StringVar(&opts.logging.Format, "log-format", app.LogFormatText, "Log format (text or json)")
	fs.BoolVar(&opts.showVersion, "version", false, "Show version information")
	fs.BoolVar(&opts.showVersion, "v", false, "Show version information (shorthand)")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "hexpatch - scriptable binary editor\n\n")
		fmt.Fprintf(stderr, "Usage: hexpatch [options] [file]\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  hexpatch -i a.out                 Edit a.out in the terminal\n")
		fmt.Fprintf(stderr, "  hexpatch -r nop-sled -save a.out  Run a plugin command and save\n")
		fmt.Fprintf(stderr, "  hexpatch -list                    Show plugins and commands\n")
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, err
		}
		return nil, errUsage
	}

	if opts.showVersion {
		return opts, nil
	}

	if _, err := app.ParseLogLevel(opts.logging.Level); err != nil {
		return nil, err
	}

	switch fs.NArg() {
	case 0:
	case 1:
		opts.file = fs.Arg(0)
	default:
		return nil, fmt.Errorf("expected at most one file, got %d", fs.NArg())
	}

	if plugins != "" {
		for _, dir := range strings.Split(plugins, ",") {
			if dir = strings.TrimSpace(dir); dir != "" {
				opts.pluginPaths = append(opts.pluginPaths, dir)
			}
		}
	}
	opts.commands = commands

	if opts.save && opts.file == "" {
		return nil, errors.New("-save needs a file")
	}
	if opts.interactive && opts.listOnly {
		return nil, errors.New("-list cannot be combined with -interactive")
	}
	return opts, nil
}
