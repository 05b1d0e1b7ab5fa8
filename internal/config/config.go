// Package config handles configuration loading and shared data structures.
package config

import (
	"fmt"
	"os"

	"github.com/woozymasta/wpcmap/internal/geo"

	"gopkg.in/yaml.v3"
)

// Supported output formats.
const (
	FormatWebP = "webp"
	FormatPNG  = "png"
	FormatSVG  = "svg"
)

// Config represents the root configuration file structure.
type Config struct {
	Extent []float64 `yaml:"extent,omitempty"`
	Format string    `yaml:"format,omitempty"`
	Style  Style     `yaml:"style"`
}

// Style describes how the basemap and the bulletin overlay are drawn.
type Style struct {
	Projection Projection `yaml:"projection"`

	// Figure size in inches, rendered at DPI.
	FigureWidth  float64 `yaml:"figure_width,omitempty"`
	FigureHeight float64 `yaml:"figure_height,omitempty"`
	DPI          float64 `yaml:"dpi,omitempty"`

	// Raster image stretched over the map area before any layer.
	Background string `yaml:"background,omitempty"`
	Paper      string `yaml:"paper,omitempty"`

	Layers Layers  `yaml:"layers"`
	Marks  Overlay `yaml:"overlay"`
}

// Projection holds Lambert conformal conic parameters.
type Projection struct {
	CentralLongitude  float64   `yaml:"central_longitude"`
	CentralLatitude   float64   `yaml:"central_latitude"`
	StandardParallels []float64 `yaml:"standard_parallels,omitempty"`
}

// Layers lists the standard physical and political layers in draw order.
type Layers struct {
	Ocean     Layer `yaml:"ocean"`
	Land      Layer `yaml:"land"`
	Lakes     Layer `yaml:"lakes"`
	Coastline Layer `yaml:"coastline"`
	States    Layer `yaml:"states"`
	Borders   Layer `yaml:"borders"`
}

// Layer is a single GeoJSON-backed map layer.
type Layer struct {
	Source   string  `yaml:"source,omitempty"` // GeoJSON FeatureCollection path, empty uses bundled data
	Fill     string  `yaml:"fill,omitempty"`
	Stroke   string  `yaml:"stroke,omitempty"`
	Width    float64 `yaml:"width,omitempty"` // stroke width in points
	Disabled bool    `yaml:"disabled,omitempty"`
}

// Overlay describes pressure center and front symbols.
type Overlay struct {
	HighColor     string            `yaml:"high_color,omitempty"`
	LowColor      string            `yaml:"low_color,omitempty"`
	SymbolSize    float64           `yaml:"symbol_size,omitempty"` // letter height in points
	FrontWidth    float64           `yaml:"front_width,omitempty"` // in points
	FrontColors   map[string]string `yaml:"front_colors,omitempty"`
	NoPressure    bool              `yaml:"no_pressure,omitempty"`
	NoFronts      bool              `yaml:"no_fronts,omitempty"`
	PointRadius   float64           `yaml:"point_radius,omitempty"` // in points
	PointColor    string            `yaml:"point_color,omitempty"`
	ClipToExtent  bool              `yaml:"clip_to_extent,omitempty"`
	PressureColor string            `yaml:"pressure_color,omitempty"`
}

// Default returns the continental US figure: 20x10 inches at 255 DPI,
// Lambert conformal centered on 95W 35N.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads and parses the YAML configuration file from the specified path.
// Unset values fall back to Default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return &cfg, nil
}

// MapExtent returns the configured extent or geo.DefaultExtent.
func (c *Config) MapExtent() (geo.Extent, error) {
	if len(c.Extent) == 0 {
		return geo.DefaultExtent, nil
	}
	return geo.ExtentFromSlice(c.Extent)
}

// Validate checks values that have no sensible fallback.
func (c *Config) Validate() error {
	if _, err := c.MapExtent(); err != nil {
		return err
	}

	switch c.Format {
	case FormatWebP, FormatPNG, FormatSVG:
	default:
		return fmt.Errorf("unsupported output format %q", c.Format)
	}

	if n := len(c.Style.Projection.StandardParallels); n > 2 {
		return fmt.Errorf("projection takes 1 or 2 standard parallels, got %d", n)
	}

	return nil
}

func (c *Config) applyDefaults() {
	if c.Format == "" {
		c.Format = FormatWebP
	}

	s := &c.Style
	if s.Projection.CentralLongitude == 0 && s.Projection.CentralLatitude == 0 {
		s.Projection.CentralLongitude = -95
		s.Projection.CentralLatitude = 35
	}
	if len(s.Projection.StandardParallels) == 0 {
		s.Projection.StandardParallels = []float64{35}
	}

	if s.FigureWidth <= 0 {
		s.FigureWidth = 20
	}
	if s.FigureHeight <= 0 {
		s.FigureHeight = 10
	}
	if s.DPI <= 0 {
		s.DPI = 255
	}
	if s.Paper == "" {
		s.Paper = "#ffffff"
	}

	defaultLayer(&s.Layers.Ocean, "#97b6e1", "", 0)
	defaultLayer(&s.Layers.Land, "#efefdb", "", 0)
	defaultLayer(&s.Layers.Lakes, "#97b6e1", "", 0)
	defaultLayer(&s.Layers.Coastline, "", "#000000", 1)
	defaultLayer(&s.Layers.States, "", "#000000", 0.5)
	defaultLayer(&s.Layers.Borders, "", "#000000", 1)

	m := &s.Marks
	if m.HighColor == "" {
		m.HighColor = "#0000ff"
	}
	if m.LowColor == "" {
		m.LowColor = "#ff0000"
	}
	if m.PressureColor == "" {
		m.PressureColor = "#000000"
	}
	if m.SymbolSize <= 0 {
		m.SymbolSize = 24
	}
	if m.FrontWidth <= 0 {
		m.FrontWidth = 2
	}
	if m.PointRadius <= 0 {
		m.PointRadius = 3
	}
	if m.PointColor == "" {
		m.PointColor = "#000000"
	}

	frontColors := map[string]string{
		"COLD":  "#0000ff",
		"WARM":  "#ff0000",
		"STNRY": "#800080",
		"OCFNT": "#800080",
		"TROF":  "#8b4513",
	}
	if m.FrontColors == nil {
		m.FrontColors = make(map[string]string, len(frontColors))
	}
	for k, v := range frontColors {
		if _, ok := m.FrontColors[k]; !ok {
			m.FrontColors[k] = v
		}
	}
}

func defaultLayer(l *Layer, fill, stroke string, width float64) {
	if l.Fill == "" {
		l.Fill = fill
	}
	if l.Stroke == "" {
		l.Stroke = stroke
	}
	if l.Width <= 0 {
		l.Width = width
	}
}
