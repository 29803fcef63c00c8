// Package main is the entry point for the mdstudio session tool.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/dshills/mdstudio/internal/config"
	"github.com/dshills/mdstudio/internal/logging"
	"github.com/dshills/mdstudio/internal/persist"
	"github.com/dshills/mdstudio/internal/workspace"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

type options struct {
	configPath  string
	storePath   string
	logLevel    string
	yes         bool
	showVersion bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opts, rest, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if opts.showVersion {
		fmt.Fprintf(stdout, "mdstudio %s\n", version)
		fmt.Fprintf(stdout, "Commit: %s\n", commit)
		fmt.Fprintf(stdout, "Built: %s\n", date)
		return 0
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error: loading config: %v\n", err)
		return 1
	}
	if opts.storePath != "" {
		cfg.Storage.Path = opts.storePath
	}
	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}

	logger, closeLog, err := logging.New(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		File:   cfg.Logging.File,
		Output: stderr,
	})
	if err != nil {
		fmt.Fprintf(stderr, "Error: opening log: %v\n", err)
		return 1
	}
	defer closeLog()

	name := "list"
	if len(rest) > 0 {
		name, rest = rest[0], rest[1:]
	}
	if name == "watch" {
		if err := watch(ctx, opts.configPath, stdout); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		return 0
	}
	cmd, ok := lookupCommand(name)
	if !ok {
		fmt.Fprintf(stderr, "Error: unknown command %q\n", name)
		return 2
	}

	kv := persist.NewFileKV(cfg.Storage.Path, persist.WithFileLogger(logger.With("component", "store")))
	ws := workspace.Open(kv,
		workspace.WithLogger(logger),
		workspace.WithKeys(cfg.Keys()),
		workspace.WithDelays(cfg.Storage.DocumentsDelay, cfg.Storage.ActiveDelay),
		workspace.WithClosePolicy(cfg.ClosePolicy()),
		workspace.WithDefaultTheme(cfg.DefaultTheme()))
	defer ws.Close()

	c := &cli{
		ws:     ws,
		unit:   cfg.ColumnUnit(),
		yes:    opts.yes,
		stdin:  stdin,
		stdout: stdout,
	}
	if err := cmd.run(c, rest); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		if errors.Is(err, errUsage) {
			fmt.Fprintf(stderr, "Usage: mdstudio %s %s\n", cmd.name, cmd.usage)
			return 2
		}
		return 1
	}
	return 0
}

func parseFlags(args []string, stderr io.Writer) (options, []string, error) {
	var opts options
	fs := flag.NewFlagSet("mdstudio", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&opts.configPath, "config", config.DefaultConfigPath(), "Path to configuration file (.toml, .yaml)")
	fs.StringVar(&opts.configPath, "c", config.DefaultConfigPath(), "Path to configuration file (shorthand)")
	fs.StringVar(&opts.storePath, "store", "", "Path to the session store file")
	fs.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, warning, error)")
	fs.BoolVar(&opts.yes, "y", false, "Close modified documents without asking")
	fs.BoolVar(&opts.showVersion, "version", false, "Show version information")
	fs.BoolVar(&opts.showVersion, "v", false, "Show version information (shorthand)")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "mdstudio - markdown document session manager\n\n")
		fmt.Fprintf(stderr, "Usage: mdstudio [options] <command> [args]\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nCommands:\n")
		for _, c := range commands {
			fmt.Fprintf(stderr, "  %-10s %s\n", c.name, c.summary)
		}
		fmt.Fprintf(stderr, "  %-10s %s\n", "watch", "Reload the config file whenever it changes")
	}

	if err := fs.Parse(args); err != nil {
		return opts, nil, err
	}
	if opts.logLevel != "" && !logging.ValidLevel(opts.logLevel) {
		fmt.Fprintf(stderr, "Error: invalid log level %q (must be debug, info, warn, warning, or error)\n", opts.logLevel)
		return opts, nil, fmt.Errorf("invalid log level %q", opts.logLevel)
	}
	return opts, fs.Args(), nil
}

func watch(ctx context.Context, path string, stdout io.Writer) error {
	if path == "" {
		return errors.New("watch needs a config file (-config)")
	}
	w, err := config.Watch(ctx, path, func(cfg *config.Config, err error) {
		if err != nil {
			fmt.Fprintf(stdout, "reload failed: %v\n", err)
			return
		}
		fmt.Fprintf(stdout, "reloaded: store=%s theme=%s columns=%s close=%s\n",
			cfg.Storage.Path, cfg.Theme.Default, cfg.Editor.ColumnUnit, cfg.Editor.ClosePrompt)
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "watching %s\n", w.Path())
	<-w.Done()
	return nil
}
