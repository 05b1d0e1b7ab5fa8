package basemap

import (
	"fmt"
	"image/color"
	"strconv"

	"github.com/woozymasta/wpcmap/internal/bulletin"

	"github.com/rs/zerolog/log"
)

type polyline struct {
	pts   []point
	width float64
	color color.RGBA
}

type dot struct {
	at     point
	radius float64
	color  color.RGBA
}

// symbol is a letter centered on a point with an optional caption below it.
type symbol struct {
	at           point
	text         string
	size         float64 // letter height, px
	color        color.RGBA
	caption      string
	captionColor color.RGBA
}

// PlotCenters draws an H or L at every center, with its pressure beneath.
func (m *Map) PlotCenters(centers []bulletin.Center) error {
	marks := m.Style.Marks

	highColor, _, err := parseColor(marks.HighColor)
	if err != nil {
		return fmt.Errorf("high color: %w", err)
	}
	lowColor, _, err := parseColor(marks.LowColor)
	if err != nil {
		return fmt.Errorf("low color: %w", err)
	}
	captionColor, _, err := parseColor(marks.PressureColor)
	if err != nil {
		return fmt.Errorf("pressure color: %w", err)
	}

	for _, c := range centers {
		if marks.ClipToExtent && !m.Extent.Contains(c.Lon, c.Lat) {
			log.Trace().Str("code", c.Code).Msg("Center outside extent, skipped")
			continue
		}

		s := symbol{
			at:           m.toArea(c.Lon, c.Lat),
			text:         c.Kind.Symbol(),
			size:         m.points(marks.SymbolSize),
			color:        lowColor,
			captionColor: captionColor,
		}
		if c.Kind == bulletin.High {
			s.color = highColor
		}
		if c.Pressure > 0 && !marks.NoPressure {
			s.caption = strconv.Itoa(c.Pressure)
		}
		m.symbols = append(m.symbols, s)
	}

	return nil
}

// PlotFronts draws every front with at least two positions as a polyline.
func (m *Map) PlotFronts(fronts []bulletin.Front) error {
	if m.Style.Marks.NoFronts {
		return nil
	}

	for _, f := range fronts {
		if len(f.Lats) < 2 {
			continue
		}

		c, visible, err := parseColor(m.Style.Marks.FrontColors[string(f.Kind)])
		if err != nil {
			return fmt.Errorf("%s front color: %w", f.Kind, err)
		}
		if !visible {
			continue
		}

		width := m.Style.Marks.FrontWidth
		if f.Strength == "STG" {
			width *= 1.5
		}

		pts := make([]point, len(f.Lats))
		for i := range f.Lats {
			pts[i] = m.toArea(f.Lons[i], f.Lats[i])
		}
		m.polylines = append(m.polylines, polyline{pts: pts, width: m.points(width), color: c})
	}

	return nil
}

// PlotPoints draws a dot at every index aligned lat/lon pair.
// An empty hex uses the configured point color.
func (m *Map) PlotPoints(lats, lons []float64, hex string) error {
	if len(lats) != len(lons) {
		return fmt.Errorf("plot points: %d latitudes for %d longitudes", len(lats), len(lons))
	}
	if hex == "" {
		hex = m.Style.Marks.PointColor
	}
	c, _, err := parseColor(hex)
	if err != nil {
		return fmt.Errorf("plot points: %w", err)
	}

	for i := range lats {
		m.dots = append(m.dots, dot{
			at:     m.toArea(lons[i], lats[i]),
			radius: m.points(m.Style.Marks.PointRadius),
			color:  c,
		})
	}

	return nil
}

// PlotBulletin plots all centers and fronts of b.
func (m *Map) PlotBulletin(b *bulletin.Bulletin) error {
	if err := m.PlotFronts(b.Fronts); err != nil {
		return err
	}
	if err := m.PlotCenters(b.Highs); err != nil {
		return err
	}
	return m.PlotCenters(b.Lows)
}
