// Command gotlres inspects, audits and warms localization bundles.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ZaguanLabs/gotlres"
	"github.com/ZaguanLabs/gotlres/cache"
	"github.com/ZaguanLabs/gotlres/source"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// options holds the persistent flags shared by every command.
type options struct {
	configPath    string
	dir           string
	locales       []string
	defaultLocale string
	mode          string
	redisURL      string
	verbose       bool
	jsonOutput    bool

	stdout io.Writer
	stderr io.Writer
	log    zerolog.Logger
}

func run(args []string, stdout, stderr io.Writer) error {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)
	return root.Execute()
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &options{stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:           gotlres.Name,
		Short:         "Inspect, audit and warm localization bundles",
		Long:          gotlres.Description,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			opts.log = newLogger(stderr, opts.verbose)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "YAML config file (GOTLRES_* env vars also apply)")
	flags.StringVarP(&opts.dir, "dir", "d", "locales", "Bundle directory laid out as <locale>/<module>.{json,yaml,toml}")
	flags.StringSliceVar(&opts.locales, "locales", nil, "Supported locales (default: from config)")
	flags.StringVar(&opts.defaultLocale, "default-locale", "", "Default locale (default: from config)")
	flags.StringVar(&opts.mode, "mode", "", "development or production (default: from config)")
	flags.StringVar(&opts.redisURL, "redis", "", "Use a Redis cache at this URL instead of memory")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Log debug output")
	flags.BoolVar(&opts.jsonOutput, "json", false, "Output results as JSON")

	root.AddCommand(
		newResolveCmd(opts),
		newCheckCmd(opts),
		newExtractCmd(opts),
		newWarmCmd(opts),
		newLocalesCmd(opts),
		newVersionCmd(opts),
	)
	return root
}

// newLogger writes human-readable logs to w, colored only on a terminal.
func newLogger(w io.Writer, verbose bool) zerolog.Logger {
	noColor := true
	if f, ok := w.(*os.File); ok {
		noColor = !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd())
	}

	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}

	cw := zerolog.ConsoleWriter{Out: w, NoColor: noColor, TimeFormat: time.DateTime}
	return zerolog.New(cw).Level(level).With().Timestamp().Logger()
}

// config loads the config file and environment, then applies flags.
func (o *options) config(cmd *cobra.Command) (gotlres.Config, error) {
	cfg, err := gotlres.LoadConfig(o.configPath)
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("locales") {
		cfg.SupportedLocales = o.locales
	}
	if flags.Changed("default-locale") {
		cfg.DefaultLocale = o.defaultLocale
	}
	if flags.Changed("mode") {
		cfg.Mode = gotlres.Mode(strings.ToLower(o.mode))
	}

	if err := cfg.Normalize(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// newCache returns the cache selected by --redis.
func (o *options) newCache(cfg gotlres.Config) (gotlres.ResourceCache, func(), error) {
	if o.redisURL == "" {
		c := cache.NewInMemoryCache(cache.MemoryConfig{TTL: cfg.TTL, MaxSize: cfg.MaxCacheSize})
		return c, func() {}, nil
	}

	rc, err := cache.NewRedisCache(cache.RedisConfig{URL: o.redisURL, TTL: cfg.TTL, Logger: &o.log})
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to redis: %w", err)
	}
	return rc, func() { _ = rc.Close() }, nil
}

// newLocalizer builds a Localizer over the bundle directory. Events are
// logged; the returned counter tallies them for summaries.
func (o *options) newLocalizer(c gotlres.ResourceCache, cfg gotlres.Config) (*gotlres.Localizer, *gotlres.EventCounter, error) {
	counter := &gotlres.EventCounter{}
	src := gotlres.NewRetryableSource(source.NewDirSource(o.dir), gotlres.DefaultRetryConfig(),
		gotlres.WithRetryLogger(o.log))

	l, err := gotlres.New(cfg, src,
		gotlres.WithCache(c),
		gotlres.WithLogger(o.log),
		gotlres.WithEventHandler(gotlres.ChainHandlers(
			gotlres.LogHandler(o.log),
			counter.Handle,
		)),
	)
	return l, counter, err
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
