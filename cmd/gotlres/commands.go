package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ZaguanLabs/gotlres"
	"github.com/ZaguanLabs/gotlres/cache"
	"github.com/ZaguanLabs/gotlres/extract"
	"github.com/ZaguanLabs/gotlres/source"
)

func newResolveCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve LOCALE MODULE KEY [name=value...]",
		Short: "Resolve one message through the full fallback chain",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := parseParams(args[3:])
			if err != nil {
				return err
			}

			cfg, err := opts.config(cmd)
			if err != nil {
				return err
			}
			c, closeCache, err := opts.newCache(cfg)
			if err != nil {
				return err
			}
			defer closeCache()

			l, counter, err := opts.newLocalizer(c, cfg)
			if err != nil {
				return err
			}

			msg := l.T(commandContext(cmd), args[0], args[1], args[2], params)
			if opts.jsonOutput {
				return writeJSON(opts, map[string]any{
					"locale":  args[0],
					"module":  args[1],
					"key":     args[2],
					"message": msg,
					"events":  counter.Snapshot(),
				})
			}
			fmt.Fprintln(opts.stdout, msg)
			return nil
		},
	}
}

func parseParams(args []string) (gotlres.Params, error) {
	if len(args) == 0 {
		return nil, nil
	}
	params := make(gotlres.Params, len(args))
	for _, arg := range args {
		name, value, ok := strings.Cut(arg, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid parameter %q (want name=value)", arg)
		}
		params[name] = value
	}
	return params, nil
}

// checkReport is the per-locale result of the check command.
type checkReport struct {
	Locale  string                         `json:"locale"`
	Modules map[string]*gotlres.BundleDiff `json:"modules,omitempty"`
	Absent  []string                       `json:"absent_modules,omitempty"`
}

func newCheckCmd(opts *options) *cobra.Command {
	var (
		reference string
		keysFrom  string
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Compare every locale's bundles against the reference locale",
		Long: `Reports keys missing from each locale, keys with changed {placeholders}
and, with --keys-from, keys used in templates or Go code that the
reference bundles do not define. Exits non-zero when problems are found.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			src := source.NewDirSource(opts.dir)

			locales, err := src.Locales()
			if err != nil {
				return fmt.Errorf("listing locales: %w", err)
			}
			if !slices.Contains(locales, reference) {
				return fmt.Errorf("reference locale %q not found in %s", reference, opts.dir)
			}
			modules, err := src.Modules(reference)
			if err != nil {
				return fmt.Errorf("listing modules: %w", err)
			}

			refBundles := make(map[string]gotlres.Bundle, len(modules))
			for _, m := range modules {
				b, err := src.FetchBundle(ctx, reference, m)
				if err != nil {
					return err
				}
				refBundles[m] = b
			}

			problems := 0
			var reports []checkReport
			for _, locale := range locales {
				if locale == reference {
					continue
				}
				report := checkReport{Locale: locale, Modules: map[string]*gotlres.BundleDiff{}}
				for _, m := range modules {
					b, err := src.FetchBundle(ctx, locale, m)
					if err != nil {
						opts.log.Debug().Err(err).Str("locale", locale).Str("module", m).Msg("module unavailable")
						report.Absent = append(report.Absent, m)
						problems++
						continue
					}
					d := gotlres.DiffBundles(refBundles[m], b)
					if d.HasProblems() || len(d.Extra) > 0 {
						report.Modules[m] = d
					}
					if d.HasProblems() {
						problems++
					}
				}
				reports = append(reports, report)
			}

			var unused map[string][]string
			if keysFrom != "" {
				keys, err := extract.Scan(keysFrom, extract.NewHTMLExtractor(), extract.NewGoExtractor())
				if err != nil {
					return fmt.Errorf("extracting keys: %w", err)
				}
				unused = map[string][]string{}
				for module, names := range extract.ByModule(keys, "common") {
					if missing := gotlres.MissingKeys(refBundles[module], names); len(missing) > 0 {
						unused[module] = missing
						problems++
					}
				}
			}

			if opts.jsonOutput {
				if err := writeJSON(opts, map[string]any{
					"reference":         reference,
					"locales":           reports,
					"undefined_in_code": unused,
				}); err != nil {
					return err
				}
			} else {
				printCheck(opts, reference, reports, unused)
			}

			if problems > 0 {
				return fmt.Errorf("check failed: %d problem(s)", problems)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&reference, "reference", "en", "Reference locale")
	cmd.Flags().StringVar(&keysFrom, "keys-from", "", "Also check keys used in templates and Go code under this directory")
	return cmd
}

func printCheck(opts *options, reference string, reports []checkReport, undefined map[string][]string) {
	w := opts.stdout
	for _, r := range reports {
		if len(r.Modules) == 0 && len(r.Absent) == 0 {
			fmt.Fprintf(w, "%s: ok\n", r.Locale)
			continue
		}
		fmt.Fprintf(w, "%s:\n", r.Locale)
		for _, m := range r.Absent {
			fmt.Fprintf(w, "  %s: module missing\n", m)
		}
		names := make([]string, 0, len(r.Modules))
		for m := range r.Modules {
			names = append(names, m)
		}
		slices.Sort(names)
		for _, m := range names {
			d := r.Modules[m]
			for _, k := range d.Missing {
				fmt.Fprintf(w, "  %s: missing %s\n", m, k)
			}
			for _, k := range d.Mismatched {
				fmt.Fprintf(w, "  %s: type mismatch %s\n", m, k)
			}
			for _, k := range d.PlaceholderDrift {
				fmt.Fprintf(w, "  %s: placeholders differ %s\n", m, k)
			}
			for _, k := range d.Extra {
				fmt.Fprintf(w, "  %s: extra %s\n", m, k)
			}
		}
	}

	modules := make([]string, 0, len(undefined))
	for m := range undefined {
		modules = append(modules, m)
	}
	slices.Sort(modules)
	for _, m := range modules {
		for _, k := range undefined[m] {
			fmt.Fprintf(w, "code: %s:%s not defined in %s\n", m, k, reference)
		}
	}
}

func newExtractCmd(opts *options) *cobra.Command {
	var (
		defaultModule string
		includeTests  bool
	)

	cmd := &cobra.Command{
		Use:   "extract [DIR]",
		Short: "List translation keys used in templates and Go source",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) == 1 {
				root = args[0]
			}

			keys, err := extract.Scan(root,
				extract.NewHTMLExtractor(extract.WithDefaultModule(defaultModule)),
				extract.NewGoExtractor(extract.WithTests(includeTests)),
			)
			if err != nil {
				return err
			}

			if opts.jsonOutput {
				if keys == nil {
					keys = []extract.Key{}
				}
				return writeJSON(opts, keys)
			}
			for _, k := range keys {
				loc := k.File
				if k.Line > 0 {
					loc = fmt.Sprintf("%s:%d", k.File, k.Line)
				}
				fmt.Fprintf(opts.stdout, "%s\t%s\n", k.ID(), loc)
			}
			fmt.Fprintf(opts.stderr, "%d key(s)\n", len(keys))
			return nil
		},
	}

	cmd.Flags().StringVar(&defaultModule, "default-module", "common", "Module for template references without one")
	cmd.Flags().BoolVar(&includeTests, "tests", false, "Include _test.go files")
	return cmd
}

func newWarmCmd(opts *options) *cobra.Command {
	var exportPath string

	cmd := &cobra.Command{
		Use:   "warm",
		Short: "Load every critical module for every supported locale",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.config(cmd)
			if err != nil {
				return err
			}
			c, closeCache, err := opts.newCache(cfg)
			if err != nil {
				return err
			}
			defer closeCache()

			l, counter, err := opts.newLocalizer(c, cfg)
			if err != nil {
				return err
			}

			res := l.PreloadAll(commandContext(cmd))
			stats := l.Stats()

			if exportPath != "" {
				exportable, ok := c.(cache.ExportableCache)
				if !ok {
					return errors.New("--export needs the in-memory cache")
				}
				meta := map[string]string{
					"generator": gotlres.UserAgent(),
					"locales":   strings.Join(cfg.SupportedLocales, ","),
				}
				if err := cache.NewExporter(exportable).ExportToFile(exportPath, meta); err != nil {
					return err
				}
			}

			if opts.jsonOutput {
				return writeJSON(opts, map[string]any{
					"result": res,
					"cache":  stats,
					"events": counter.Snapshot(),
				})
			}
			fmt.Fprintf(opts.stdout, "requested %d, loaded %d, failed %d\n", res.Requested, res.Loaded, res.Failed)
			fmt.Fprintf(opts.stdout, "cache: %d/%d entries\n", stats.Size, stats.MaxSize)
			if exportPath != "" {
				fmt.Fprintf(opts.stdout, "snapshot written to %s\n", exportPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&exportPath, "export", "", "Write a cache snapshot to this file")
	return cmd
}

// localeInfo describes one locale for the locales command.
type localeInfo struct {
	Locale    string   `json:"locale"`
	Name      string   `json:"name"`
	Direction string   `json:"direction"`
	Modules   []string `json:"modules"`
}

func newLocalesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "locales",
		Short: "List locales found in the bundle directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			src := source.NewDirSource(opts.dir)
			locales, err := src.Locales()
			if err != nil {
				return fmt.Errorf("listing locales: %w", err)
			}

			infos := make([]localeInfo, 0, len(locales))
			for _, loc := range locales {
				modules, err := src.Modules(loc)
				if err != nil {
					return err
				}
				if modules == nil {
					modules = []string{}
				}
				infos = append(infos, localeInfo{
					Locale:    loc,
					Name:      gotlres.LanguageName(loc),
					Direction: gotlres.GetDirection(loc),
					Modules:   modules,
				})
			}

			if opts.jsonOutput {
				return writeJSON(opts, infos)
			}
			for _, info := range infos {
				fmt.Fprintf(opts.stdout, "%-8s %-24s %s  %s\n",
					info.Locale, info.Name, info.Direction, strings.Join(info.Modules, ","))
			}
			return nil
		},
	}
}

func newVersionCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := gotlres.ReadBuildInfo()
			if opts.jsonOutput {
				return writeJSON(opts, info)
			}

			fmt.Fprintf(opts.stdout, "%s %s\n", gotlres.Name, info)
			if info.Commit != "" {
				fmt.Fprintf(opts.stdout, "  commit:  %s\n", info.Commit)
			}
			if info.Date != "" {
				fmt.Fprintf(opts.stdout, "  built:   %s\n", info.Date)
			}
			if info.GoVersion != "" {
				fmt.Fprintf(opts.stdout, "  go:      %s\n", info.GoVersion)
			}
			return nil
		},
	}
}

func writeJSON(opts *options, v any) error {
	enc := json.NewEncoder(opts.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
