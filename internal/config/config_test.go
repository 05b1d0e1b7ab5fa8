package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/woozymasta/wpcmap/internal/geo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, FormatWebP, cfg.Format)
	assert.Equal(t, -95.0, cfg.Style.Projection.CentralLongitude)
	assert.Equal(t, 35.0, cfg.Style.Projection.CentralLatitude)
	assert.Equal(t, []float64{35}, cfg.Style.Projection.StandardParallels)
	assert.Equal(t, 20.0, cfg.Style.FigureWidth)
	assert.Equal(t, 10.0, cfg.Style.FigureHeight)
	assert.Equal(t, 255.0, cfg.Style.DPI)
	assert.Equal(t, "#efefdb", cfg.Style.Layers.Land.Fill)
	assert.Equal(t, "#000000", cfg.Style.Layers.Coastline.Stroke)
	assert.Equal(t, "#0000ff", cfg.Style.Marks.FrontColors["COLD"])

	ext, err := cfg.MapExtent()
	require.NoError(t, err)
	assert.Equal(t, geo.DefaultExtent, ext)
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
extent: [-108.5, -102, 38.5, 41.5]
format: png
style:
  dpi: 100
  figure_width: 8
  layers:
    states:
      source: states.geojson
      width: 2
    lakes:
      disabled: true
  overlay:
    high_color: "#123456"
    front_colors:
      COLD: "#00ffff"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, FormatPNG, cfg.Format)
	assert.Equal(t, 100.0, cfg.Style.DPI)
	assert.Equal(t, 8.0, cfg.Style.FigureWidth)
	assert.Equal(t, 10.0, cfg.Style.FigureHeight)
	assert.Equal(t, "states.geojson", cfg.Style.Layers.States.Source)
	assert.Equal(t, 2.0, cfg.Style.Layers.States.Width)
	assert.Equal(t, "#000000", cfg.Style.Layers.States.Stroke)
	assert.True(t, cfg.Style.Layers.Lakes.Disabled)
	assert.Equal(t, "#123456", cfg.Style.Marks.HighColor)
	assert.Equal(t, "#00ffff", cfg.Style.Marks.FrontColors["COLD"])
	assert.Equal(t, "#ff0000", cfg.Style.Marks.FrontColors["WARM"])

	ext, err := cfg.MapExtent()
	require.NoError(t, err)
	assert.Equal(t, geo.Extent{West: -108.5, East: -102, South: 38.5, North: 41.5}, ext)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	_, err = Load(writeConfig(t, "style: [\n"))
	require.Error(t, err)

	_, err = Load(writeConfig(t, "format: gif\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gif")

	_, err = Load(writeConfig(t, "extent: [1, 2]\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "extent")

	_, err = Load(writeConfig(t, "style:\n  projection:\n    standard_parallels: [30, 40, 50]\n"))
	require.Error(t, err)
}
