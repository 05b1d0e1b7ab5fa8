// Package basemap builds projected map figures with the standard physical
// and political layers and draws bulletin overlays on top of them.
package basemap

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/woozymasta/wpcmap/internal/config"
	"github.com/woozymasta/wpcmap/internal/geo"

	"github.com/rs/zerolog/log"
)

// edgeSamples is the number of points per extent edge used to find the projected bounds.
const edgeSamples = 64

// cullMargin widens the extent when discarding far away features, in degrees.
const cullMargin = 10.0

type point struct {
	X, Y float64
}

// layer is a loaded map layer projected into map area pixels.
type layer struct {
	name   string
	polys  [][][]point // rings per feature
	lines  [][]point
	fill   color.RGBA
	stroke color.RGBA
	width  float64 // px

	hasFill, hasStroke bool
	fillArea           bool // no source: fill the whole map area
}

// Map is a projected drawing surface. Layers are added by New, overlays by
// the Plot methods; nothing is rasterized until Render or RenderSVG.
type Map struct {
	Extent geo.Extent
	Style  config.Style

	proj *geo.LambertConformal

	width, height int             // canvas, px
	area          image.Rectangle // map area within the canvas
	scale         float64         // px per projected meter
	minX, maxY    float64         // projected origin of the map area
	paper         color.RGBA

	background image.Image
	layers     []layer

	polylines []polyline
	dots      []dot
	symbols   []symbol
}

// New returns a projected map of extent with the standard layers added:
// ocean, land, lakes, coastline, states and borders. Layers without a
// GeoJSON source use the bundled outlines; the ocean fills the map area.
func New(extent geo.Extent, style config.Style) (*Map, error) {
	if err := extent.Validate(); err != nil {
		return nil, err
	}

	proj, err := geo.NewLambertConformal(
		style.Projection.CentralLongitude,
		style.Projection.CentralLatitude,
		style.Projection.StandardParallels)
	if err != nil {
		return nil, err
	}

	paper, _, err := parseColor(style.Paper)
	if err != nil {
		return nil, fmt.Errorf("paper: %w", err)
	}

	m := &Map{
		Extent: extent,
		Style:  style,
		proj:   proj,
		width:  int(math.Round(style.FigureWidth * style.DPI)),
		height: int(math.Round(style.FigureHeight * style.DPI)),
		paper:  paper,
	}
	if m.width < 1 || m.height < 1 {
		return nil, fmt.Errorf("figure %gx%g in at %g dpi has no pixels", style.FigureWidth, style.FigureHeight, style.DPI)
	}

	m.fit()

	if style.Background != "" {
		img, err := loadSourceImage(style.Background)
		if err != nil {
			return nil, fmt.Errorf("background: %w", err)
		}
		m.background = img
	}

	standard := []struct {
		name string
		cfg  config.Layer
	}{
		{"ocean", style.Layers.Ocean},
		{"land", style.Layers.Land},
		{"lakes", style.Layers.Lakes},
		{"coastline", style.Layers.Coastline},
		{"states", style.Layers.States},
		{"borders", style.Layers.Borders},
	}

	for _, s := range standard {
		if err := m.addLayer(s.name, s.cfg); err != nil {
			return nil, err
		}
	}

	log.Debug().
		Int("width", m.width).
		Int("height", m.height).
		Int("area_width", m.area.Dx()).
		Int("area_height", m.area.Dy()).
		Int("layers", len(m.layers)).
		Msg("Basemap created")

	return m, nil
}

// Size returns the canvas size in pixels.
func (m *Map) Size() (width, height int) {
	return m.width, m.height
}

// Area returns the map area within the canvas.
func (m *Map) Area() image.Rectangle {
	return m.area
}

// Project converts lon/lat to canvas pixels. ok is false outside the map area.
func (m *Map) Project(lon, lat float64) (x, y float64, ok bool) {
	p := m.toArea(lon, lat)
	x, y = p.X+float64(m.area.Min.X), p.Y+float64(m.area.Min.Y)
	ok = p.X >= 0 && p.Y >= 0 && p.X <= float64(m.area.Dx()) && p.Y <= float64(m.area.Dy())
	return x, y, ok
}

// points converts points to pixels based on the figure DPI.
func (m *Map) points(pt float64) float64 {
	return pt * m.Style.DPI / 72.0
}

// fit sizes the map area to the projected extent and centers it on the canvas.
func (m *Map) fit() {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)

	visit := func(lon, lat float64) {
		x, y := m.proj.Forward(lon, lat)
		minX, maxX = math.Min(minX, x), math.Max(maxX, x)
		minY, maxY = math.Min(minY, y), math.Max(maxY, y)
	}

	e := m.Extent
	for i := 0; i <= edgeSamples; i++ {
		t := float64(i) / edgeSamples
		lon := e.West + t*(e.East-e.West)
		lat := e.South + t*(e.North-e.South)
		visit(lon, e.South)
		visit(lon, e.North)
		visit(e.West, lat)
		visit(e.East, lat)
	}

	bw, bh := maxX-minX, maxY-minY
	m.scale = math.Min(float64(m.width)/bw, float64(m.height)/bh)
	m.minX, m.maxY = minX, maxY

	aw := max(1, int(math.Round(bw*m.scale)))
	ah := max(1, int(math.Round(bh*m.scale)))
	ox := (m.width - aw) / 2
	oy := (m.height - ah) / 2
	m.area = image.Rect(ox, oy, ox+aw, oy+ah)
}

// toArea projects lon/lat into map area pixels.
func (m *Map) toArea(lon, lat float64) point {
	x, y := m.proj.Forward(lon, lat)
	return point{
		X: (x - m.minX) * m.scale,
		Y: (m.maxY - y) * m.scale,
	}
}

func (m *Map) addLayer(name string, cfg config.Layer) error {
	if cfg.Disabled {
		log.Trace().Str("layer", name).Msg("Layer skipped: disabled in config")
		return nil
	}

	fill, hasFill, err := parseColor(cfg.Fill)
	if err != nil {
		return fmt.Errorf("layer %s fill: %w", name, err)
	}
	stroke, hasStroke, err := parseColor(cfg.Stroke)
	if err != nil {
		return fmt.Errorf("layer %s stroke: %w", name, err)
	}

	l := layer{
		name:      name,
		fill:      fill,
		stroke:    stroke,
		width:     m.points(cfg.Width),
		hasFill:   hasFill,
		hasStroke: hasStroke,
	}

	var fc geo.GeoJSONFeatureCollection
	source := cfg.Source

	if source == "" {
		bundled, ok, err := builtinLayer(name)
		if err != nil {
			return fmt.Errorf("layer %s: %w", name, err)
		}
		if !ok {
			if name != "ocean" || !hasFill {
				log.Trace().Str("layer", name).Msg("Layer skipped: no source in config")
				return nil
			}
			if m.background != nil {
				log.Trace().Str("layer", name).Msg("Layer skipped: background image covers the map area")
				return nil
			}
			l.fillArea = true
			m.layers = append(m.layers, l)
			return nil
		}
		fc, source = bundled, "builtin"
	} else {
		fc, err = geo.LoadFeatureCollection(source)
		if err != nil {
			return fmt.Errorf("layer %s: %w", name, err)
		}
	}

	skipped := 0
	for i, f := range fc.Features {
		paths, err := f.Geometry.Paths()
		if err != nil {
			log.Warn().Err(err).Str("layer", name).Int("feature", i).Msg("Feature skipped")
			skipped++
			continue
		}

		projected := make([][]point, 0, len(paths))
		for _, path := range paths {
			if !m.near(path) {
				continue
			}
			pts := make([]point, len(path))
			for j, p := range path {
				pts[j] = m.toArea(p[0], p[1])
			}
			projected = append(projected, pts)
		}
		if len(projected) == 0 {
			continue
		}

		if f.Geometry.IsArea() {
			l.polys = append(l.polys, projected)
		} else {
			l.lines = append(l.lines, projected...)
		}
	}

	log.Debug().
		Str("layer", name).
		Str("source", source).
		Int("features", len(fc.Features)).
		Int("polygons", len(l.polys)).
		Int("lines", len(l.lines)).
		Int("skipped", skipped).
		Msg("Layer loaded")

	m.layers = append(m.layers, l)
	return nil
}

// near reports whether the path bounding box overlaps the widened extent.
func (m *Map) near(path []geo.Position) bool {
	if len(path) == 0 {
		return false
	}
	minLon, maxLon := path[0][0], path[0][0]
	minLat, maxLat := path[0][1], path[0][1]
	for _, p := range path[1:] {
		minLon, maxLon = math.Min(minLon, p[0]), math.Max(maxLon, p[0])
		minLat, maxLat = math.Min(minLat, p[1]), math.Max(maxLat, p[1])
	}

	e := m.Extent
	return maxLon >= e.West-cullMargin && minLon <= e.East+cullMargin &&
		maxLat >= e.South-cullMargin && minLat <= e.North+cullMargin
}
