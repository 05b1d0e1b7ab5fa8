// Package processor turns bulletin files into rendered maps and GeoJSON.
package processor

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/woozymasta/wpcmap/internal/basemap"
	"github.com/woozymasta/wpcmap/internal/bulletin"
	"github.com/woozymasta/wpcmap/internal/config"
	"github.com/woozymasta/wpcmap/internal/geo"

	"github.com/rs/zerolog/log"
)

// Options controls where and how a bulletin is written.
type Options struct {
	OutDir  string
	GeoJSON bool      // also write <name>.geojson
	Force   bool      // overwrite existing outputs
	Diag    io.Writer // decoder diagnostics for every high/low code, nil disables
}

// Result lists the files written for one bulletin. Empty paths were skipped.
type Result struct {
	Map     string
	GeoJSON string
}

// ProcessBulletin parses the bulletin at path and renders it with cfg.
func ProcessBulletin(path string, cfg *config.Config, opts Options) (Result, error) {
	var res Result

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	mapFile := filepath.Join(opts.OutDir, name+"."+cfg.Format)

	if _, err := os.Stat(mapFile); err == nil && !opts.Force {
		log.Debug().Str("bulletin", name).Str("path", mapFile).Msg("Map file exists, skipping")
		return res, nil
	}

	rows, err := bulletin.LoadRows(path)
	if err != nil {
		return res, err
	}

	if opts.Diag != nil {
		if err := diagnose(rows, opts.Diag); err != nil {
			return res, err
		}
	}

	b, err := bulletin.Parse(rows)
	if err != nil {
		return res, fmt.Errorf("%s: %w", path, err)
	}

	event := log.Info().
		Str("bulletin", name).
		Int("highs", len(b.Highs)).
		Int("lows", len(b.Lows)).
		Int("fronts", len(b.Fronts))
	if valid, ok := b.ValidAt(); ok {
		event = event.Time("valid", valid)
	} else if b.HasValid {
		event = event.Str("valid", b.Valid.String())
	}
	event.Msg("Bulletin parsed")

	extent, err := cfg.MapExtent()
	if err != nil {
		return res, err
	}

	m, err := basemap.New(extent, cfg.Style)
	if err != nil {
		return res, fmt.Errorf("create basemap: %w", err)
	}
	if err := m.PlotBulletin(b); err != nil {
		return res, fmt.Errorf("plot %s: %w", name, err)
	}
	if err := m.Save(mapFile, cfg.Format); err != nil {
		return res, err
	}
	res.Map = mapFile

	log.Info().Str("bulletin", name).Str("path", mapFile).Msg("Map saved")

	if opts.GeoJSON {
		geoFile := filepath.Join(opts.OutDir, name+".geojson")
		if err := saveGeoJSON(opts.OutDir, geoFile, geo.FromBulletin(b)); err != nil {
			return res, fmt.Errorf("save geojson: %w", err)
		}
		res.GeoJSON = geoFile
		log.Info().Str("bulletin", name).Str("path", geoFile).Msg("GeoJSON saved")
	}

	return res, nil
}

// diagnose writes the raw and converted text of every high and low code.
func diagnose(rows []bulletin.Row, w io.Writer) error {
	for _, label := range []string{bulletin.LabelHighs, bulletin.LabelLows} {
		merged, err := bulletin.ExtractBlock(rows, label)
		if err != nil {
			return err
		}
		for _, code := range bulletin.SplitCodes(merged) {
			if _, _, err := bulletin.ParseLatLon(code, w); err != nil {
				return err
			}
		}
	}
	return nil
}

// saveGeoJSON marshals the feature collection and writes it to disk.
func saveGeoJSON(dir, path string, fc geo.GeoJSONFeatureCollection) (err error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	// We care about write errors on close
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			log.Error().Err(closeErr).Str("path", path).Msg("Failed to close file")
			if err == nil {
				err = closeErr
			}
		}
	}()

	return json.NewEncoder(f).Encode(fc)
}
