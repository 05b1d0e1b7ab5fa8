package main

import (
	"errors"
	"io/fs"
	"os"

	"github.com/woozymasta/wpcmap/internal/config"
	"github.com/woozymasta/wpcmap/internal/geo"
	"github.com/woozymasta/wpcmap/internal/logger"
	"github.com/woozymasta/wpcmap/internal/processor"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile  string     `short:"c" long:"config"      env:"CONFIG_FILE" description:"Path to configuration file, defaults apply if missing" default:"config.yaml"`
	OutDir      string     `short:"o" long:"out"         env:"OUTPUT_DIR"  description:"Output directory" default:"maps"`
	Format      string     `short:"f" long:"format"      env:"FORMAT"      description:"Output format, overrides configuration" choice:"webp" choice:"png" choice:"svg"`
	Extent      geo.Extent `short:"e" long:"extent"      env:"EXTENT"      description:"Map extent as W,E,S,N degrees, overrides configuration"`
	Concurrency int        `short:"p" long:"concurrency" env:"CONCURRENCY" description:"Bulletins rendered in parallel" default:"4"`
	GeoJSON     bool       `short:"g" long:"geojson"     description:"Also write decoded centers and fronts as GeoJSON"`
	Verbose     bool       `short:"v" long:"verbose"     description:"Print raw and converted coordinates to stdout"`
	Force       bool       `short:"F" long:"force"       description:"Force overwrite of existing files"`

	Args struct {
		Bulletins []string `positional-arg-name:"BULLETIN" description:"Coded surface bulletin files" required:"1"`
	} `positional-args:"yes" required:"yes"`
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	opts.Logger.Setup()

	cfg, err := loadConfig(opts.ConfigFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if opts.Format != "" {
		cfg.Format = opts.Format
	}
	if opts.Extent != (geo.Extent{}) {
		cfg.Extent = []float64{opts.Extent.West, opts.Extent.East, opts.Extent.South, opts.Extent.North}
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	popts := processor.Options{
		OutDir:  opts.OutDir,
		GeoJSON: opts.GeoJSON,
		Force:   opts.Force,
	}
	if opts.Verbose {
		popts.Diag = os.Stdout
	}

	log.Info().
		Int("bulletins", len(opts.Args.Bulletins)).
		Str("format", cfg.Format).
		Str("out", opts.OutDir).
		Msg("Starting renderer")

	results := processor.ProcessBatch(opts.Args.Bulletins, cfg, popts, opts.Concurrency)
	if failed := processor.Failed(results); failed > 0 {
		log.Fatal().
			Int("failed", failed).
			Int("total", len(results)).
			Msg("Some bulletins were not rendered")
	}

	log.Info().Msg("Renderer finished successfully")
}

// loadConfig reads the configuration file or falls back to defaults when it does not exist.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Debug().Str("path", path).Msg("Configuration file not found, using defaults")
		return config.Default(), nil
	}
	return cfg, err
}
