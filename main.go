package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/df07/go-ies-processor/pkg/config"
	"github.com/df07/go-ies-processor/pkg/fsutil"
	"github.com/df07/go-ies-processor/pkg/ies"
	"github.com/df07/go-ies-processor/pkg/preview"
	"github.com/df07/go-ies-processor/pkg/profiles"
	"github.com/rs/zerolog"
	"gonum.org/v1/plot/vg"
)

// options holds the parsed command line
type options struct {
	file      string
	scale     float64
	print     bool
	export    string
	preview   string
	library   string
	catalog   string
	doImport  bool
	overwrite bool
	list      bool
	logLevel  string
	help      bool
}

func parseFlags(args []string, cfg *config.Config) (*options, *flag.FlagSet, error) {
	opts := &options{}
	fs := flag.NewFlagSet("ies", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&opts.file, "file", "", "IES file to load")
	fs.Float64Var(&opts.scale, "scale", 1, "Multiply every candela value by this factor")
	fs.BoolVar(&opts.print, "print", false, "Print the serialized data block")
	fs.StringVar(&opts.export, "export", "", "Write the (scaled) record as a new .ies file")
	fs.StringVar(&opts.preview, "preview", "", "Write a polar diagram (.png or .html)")
	fs.StringVar(&opts.library, "library", cfg.ProfilesDir, "Profile library directory")
	fs.StringVar(&opts.catalog, "catalog", cfg.CatalogPath, "Profile catalog database (empty disables it)")
	fs.BoolVar(&opts.doImport, "import", false, "Import -file into the profile library")
	fs.BoolVar(&opts.overwrite, "overwrite", false, "Replace an existing profile on import")
	fs.BoolVar(&opts.list, "list", false, "List the profiles in the library")
	fs.StringVar(&opts.logLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn, error")
	fs.BoolVar(&opts.help, "help", false, "Show help information")

	if err := fs.Parse(args); err != nil {
		return nil, fs, err
	}
	return opts, fs, nil
}

func printUsage(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprintln(w, "IES Processor")
	fmt.Fprintln(w, "Usage: ies [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Options:")
	fs.SetOutput(w)
	fs.PrintDefaults()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Examples:")
	fmt.Fprintln(w, "  ies -file lamp.ies -print")
	fmt.Fprintln(w, "  ies -file lamp.ies -scale 1.5 -export brighter.ies")
	fmt.Fprintln(w, "  ies -file lamp.ies -preview lamp.png")
	fmt.Fprintln(w, "  ies -file lamp.ies -import -overwrite")
	fmt.Fprintln(w, "  ies -list")
}

// run executes the command described by opts, writing results to out
func run(opts *options, out io.Writer, logger zerolog.Logger) error {
	if opts.list || opts.doImport {
		lib, closeLib, err := openLibrary(opts, logger)
		if err != nil {
			return err
		}
		defer closeLib()

		if opts.doImport {
			if opts.file == "" {
				return &ies.Error{Code: ies.NoFile, Op: "import"}
			}
			entry, err := lib.Import(opts.file, opts.overwrite)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "imported %s into %s (%s symmetry, max %g cd)\n",
				entry.Name, lib.Dir(), entry.Symmetry, entry.MaxCandela)
		}
		if opts.list {
			names, err := lib.List()
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Fprintln(out, name)
			}
		}
		return nil
	}

	processor := ies.NewProcessor()
	processor.SetLogger(logger)

	rec, err := processor.Parse(opts.file)
	if err != nil {
		return err
	}
	if opts.scale != 1 {
		if rec, err = processor.Update(rec, ies.UpdateRequest{IntensityScale: opts.scale}); err != nil {
			return err
		}
	}

	fmt.Fprintf(out, "%s: type %s, %d vertical x %d horizontal angles, %s symmetry, max %g cd, flux %.1f lm\n",
		filepath.Base(opts.file), rec.PhotometricType, rec.VerticalAngleCount, rec.HorizontalAngleCount,
		rec.Symmetry(), rec.MaxCandela(), rec.Flux())

	if opts.print {
		data, err := processor.ToString(rec)
		if err != nil {
			return err
		}
		fmt.Fprint(out, data)
	}

	if opts.export != "" {
		if err := writeFile(opts.export, func(w io.Writer) error { return ies.WriteIES(w, rec) }); err != nil {
			return err
		}
		logger.Info().Str("path", opts.export).Msg("exported IES file")
	}

	if opts.preview != "" {
		var render func(io.Writer) error
		switch strings.ToLower(filepath.Ext(opts.preview)) {
		case ".png":
			render = func(w io.Writer) error { return preview.WritePolarPNG(w, rec, 4*vg.Inch) }
		case ".html":
			render = func(w io.Writer) error { return preview.WritePolarHTML(w, rec, filepath.Base(opts.file)) }
		default:
			return fmt.Errorf("preview %s: extension must be .png or .html", opts.preview)
		}
		if err := writeFile(opts.preview, render); err != nil {
			return err
		}
		logger.Info().Str("path", opts.preview).Msg("wrote polar preview")
	}

	return nil
}

// openLibrary opens the profile library, with its catalog when configured
func openLibrary(opts *options, logger zerolog.Logger) (*profiles.Library, func(), error) {
	libOpts := []profiles.Option{profiles.WithLogger(logger)}
	closeFn := func() {}

	if opts.catalog != "" {
		if err := os.MkdirAll(filepath.Dir(opts.catalog), 0755); err != nil {
			return nil, nil, fmt.Errorf("failed to create catalog directory: %w", err)
		}
		catalog, err := profiles.OpenCatalog(opts.catalog, logger)
		if err != nil {
			return nil, nil, err
		}
		libOpts = append(libOpts, profiles.WithCatalog(catalog))
		closeFn = func() { catalog.Close() }
	}

	return profiles.NewLibrary(fsutil.OSFileSystem{}, opts.library, libOpts...), closeFn, nil
}

// writeFile creates path and streams render into it
func writeFile(path string, render func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := render(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// errorKind names the IES result code of err, or "error" for other failures
func errorKind(err error) string {
	var ierr *ies.Error
	if errors.As(err, &ierr) {
		return ierr.Code.String()
	}
	return "error"
}

func main() {
	cfg := config.Load()

	opts, fs, err := parseFlags(os.Args[1:], cfg)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			printUsage(os.Stdout, fs)
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	if opts.help {
		printUsage(os.Stdout, fs)
		return
	}

	cfg.LogLevel = opts.logLevel
	zerolog.SetGlobalLevel(cfg.Level())
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	if err := run(opts, os.Stdout, logger); err != nil {
		logger.Error().Err(err).Str("kind", errorKind(err)).Msg("failed")
		os.Exit(1)
	}
}
