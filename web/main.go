package main

import (
	"flag"
	"os"
	"path/filepath"

	"github.com/df07/go-ies-processor/pkg/config"
	"github.com/df07/go-ies-processor/pkg/fsutil"
	"github.com/df07/go-ies-processor/pkg/profiles"
	"github.com/df07/go-ies-processor/web/server"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg := config.Load()

	// Parse command line flags, defaulting to the environment
	port := flag.String("port", cfg.Port, "Port to serve on")
	library := flag.String("library", cfg.ProfilesDir, "Profile library directory")
	catalogPath := flag.String("catalog", cfg.CatalogPath, "Profile catalog database (empty disables it)")
	logLevel := flag.String("log-level", cfg.LogLevel, "Log level: debug, info, warn, error")
	flag.Parse()

	cfg.LogLevel = *logLevel
	zerolog.SetGlobalLevel(cfg.Level())
	if !cfg.IsProduction() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	libOpts := []profiles.Option{profiles.WithLogger(log.Logger)}
	var catalog *profiles.Catalog
	if *catalogPath != "" {
		if err := os.MkdirAll(filepath.Dir(*catalogPath), 0755); err != nil {
			log.Fatal().Err(err).Msg("failed to create catalog directory")
		}
		var err error
		catalog, err = profiles.OpenCatalog(*catalogPath, log.Logger)
		if err != nil {
			log.Fatal().Err(err).Str("path", *catalogPath).Msg("failed to open catalog")
		}
		libOpts = append(libOpts, profiles.WithCatalog(catalog))
	}
	lib := profiles.NewLibrary(fsutil.OSFileSystem{}, *library, libOpts...)

	webServer := server.NewServer(server.Options{
		Port:         *port,
		ReadTimeout:  cfg.ReadTimeoutDuration(),
		WriteTimeout: cfg.WriteTimeoutDuration(),
		Library:      lib,
		Logger:       log.Logger,
		AccessLog:    true,
	})

	log.Info().
		Str("env", cfg.Environment).
		Str("library", lib.Dir()).
		Msgf("IES Processor web server, visit http://localhost:%s/api/health", *port)

	err := webServer.Start()
	if catalog != nil {
		if cerr := catalog.Close(); cerr != nil {
			log.Error().Err(cerr).Msg("failed to close catalog")
		}
	}
	if err != nil {
		log.Error().Err(err).Msg("error starting server")
		os.Exit(1)
	}
}
