package basemap

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/woozymasta/wpcmap/internal/bulletin"
	"github.com/woozymasta/wpcmap/internal/config"
	"github.com/woozymasta/wpcmap/internal/geo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	oceanColor = color.RGBA{R: 0x97, G: 0xb6, B: 0xe1, A: 0xff}
	landColor  = color.RGBA{R: 0xef, G: 0xef, B: 0xdb, A: 0xff}
	white      = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
)

// smallStyle is the default style on a 4x2 inch figure.
func smallStyle(dpi float64) config.Style {
	style := config.Default().Style
	style.FigureWidth = 4
	style.FigureHeight = 2
	style.DPI = dpi
	return style
}

// bareStyle is smallStyle with the bundled layers turned off, leaving the ocean fill.
func bareStyle(dpi float64) config.Style {
	style := smallStyle(dpi)
	for _, l := range []*config.Layer{
		&style.Layers.Land, &style.Layers.Lakes, &style.Layers.Coastline,
		&style.Layers.States, &style.Layers.Borders,
	} {
		l.Disabled = true
	}
	return style
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func pixelAt(t *testing.T, m *Map, img *image.RGBA, lon, lat float64) color.RGBA {
	t.Helper()
	x, y, ok := m.Project(lon, lat)
	require.True(t, ok, "%g,%g outside the map area", lon, lat)
	return img.RGBAAt(int(x), int(y))
}

func countPixels(img *image.RGBA, match func(c color.RGBA) bool) int {
	n := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if match(img.RGBAAt(x, y)) {
				n++
			}
		}
	}
	return n
}

func assertNear(t *testing.T, want, got color.RGBA) {
	t.Helper()
	for _, d := range [][2]uint8{{want.R, got.R}, {want.G, got.G}, {want.B, got.B}, {want.A, got.A}} {
		assert.InDelta(t, int(d[0]), int(d[1]), 2, "want %v, got %v", want, got)
	}
}

func blueish(c color.RGBA) bool {
	return c.B > 150 && c.R < 100 && c.G < 100
}

func TestNew_DefaultFigure(t *testing.T) {
	m, err := New(geo.DefaultExtent, bareStyle(50))
	require.NoError(t, err)

	w, h := m.Size()
	assert.Equal(t, 200, w)
	assert.Equal(t, 100, h)

	// the projected CONUS extent is wider than tall but not 2:1
	area := m.Area()
	assert.Equal(t, 100, area.Dy())
	assert.Greater(t, area.Dx(), area.Dy())
	assert.Less(t, area.Dx(), w)
	assert.True(t, area.In(image.Rect(0, 0, w, h)))

	_, _, ok := m.Project(-95, 40)
	assert.True(t, ok)
	_, _, ok = m.Project(0, 0)
	assert.False(t, ok)

	// only the ocean fill with the bundled layers off
	require.Len(t, m.layers, 1)
	assert.True(t, m.layers[0].fillArea)
}

func TestNew_Errors(t *testing.T) {
	_, err := New(geo.Extent{West: -65, East: -130, South: 20, North: 65}, smallStyle(50))
	require.Error(t, err)

	_, err = New(geo.DefaultExtent, smallStyle(0))
	require.Error(t, err)

	style := smallStyle(50)
	style.Layers.Land.Source = filepath.Join(t.TempDir(), "missing.geojson")
	_, err = New(geo.DefaultExtent, style)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "layer land")

	style = smallStyle(50)
	style.Layers.Land.Fill = "green"
	style.Layers.Land.Source = writeFile(t, "land.geojson", `{"type":"FeatureCollection","features":[]}`)
	_, err = New(geo.DefaultExtent, style)
	require.Error(t, err)

	style = smallStyle(50)
	style.Projection.StandardParallels = nil
	_, err = New(geo.DefaultExtent, style)
	require.Error(t, err)
}

func TestNew_BuiltinLayers(t *testing.T) {
	m, err := New(geo.DefaultExtent, config.Default().Style)
	require.NoError(t, err)

	names := make([]string, 0, len(m.layers))
	for _, l := range m.layers {
		names = append(names, l.name)
	}
	require.Equal(t, []string{"ocean", "land", "lakes", "coastline", "states", "borders"}, names)

	assert.True(t, m.layers[0].fillArea)
	assert.NotEmpty(t, m.layers[1].polys)
	assert.NotEmpty(t, m.layers[2].polys)
	for _, l := range m.layers[3:] {
		assert.NotEmpty(t, l.lines, l.name)
	}

	img := m.Render()
	assert.Positive(t, countPixels(img, func(c color.RGBA) bool { return c == landColor }))
	assertNear(t, landColor, pixelAt(t, m, img, -99, 38.5))
	assertNear(t, oceanColor, pixelAt(t, m, img, -125, 40))
	assertNear(t, oceanColor, pixelAt(t, m, img, -70, 35))
	// Lake Superior
	assertNear(t, oceanColor, pixelAt(t, m, img, -88.5, 47.6))
}

func TestNew_BuiltinLayerOverride(t *testing.T) {
	style := bareStyle(50)
	style.Layers.Borders.Disabled = false
	style.Layers.Borders.Source = writeFile(t, "borders.geojson", `{"type":"FeatureCollection","features":[
		{"type":"Feature","properties":{},"geometry":{"type":"LineString","coordinates":[[-100,30],[-100,45]]}}
	]}`)

	m, err := New(geo.DefaultExtent, style)
	require.NoError(t, err)
	require.Len(t, m.layers, 2)
	assert.Len(t, m.layers[1].lines, 1)
}

func TestBuiltinLayer(t *testing.T) {
	for _, name := range []string{"land", "lakes", "coastline", "states", "borders"} {
		fc, ok, err := builtinLayer(name)
		require.NoError(t, err, name)
		require.True(t, ok, name)
		assert.NotEmpty(t, fc.Features, name)
		for _, f := range fc.Features {
			_, err := f.Geometry.Paths()
			assert.NoError(t, err, name)
		}
	}

	_, ok, err := builtinLayer("ocean")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPathBounds(t *testing.T) {
	clip := image.Rect(0, 0, 100, 50)

	r := pathBounds(clip, 2, []point{{10, 10}, {20.5, 30}})
	assert.Equal(t, image.Rect(8, 8, 24, 33), r)

	r = pathBounds(clip, 0, []point{{-1e9, -5}, {1e9, 1e9}})
	assert.Equal(t, clip, r)

	assert.True(t, pathBounds(clip, 0, []point{{-30, 10}, {-20, 20}}).Empty())
	assert.True(t, pathBounds(clip, 0).Empty())
}

func TestRender_OceanAndPaper(t *testing.T) {
	m, err := New(geo.DefaultExtent, bareStyle(50))
	require.NoError(t, err)

	img := m.Render()
	assertNear(t, oceanColor, pixelAt(t, m, img, -95, 40))
	assert.Equal(t, white, img.RGBAAt(0, 50))
}

func TestRender_Layers(t *testing.T) {
	land := writeFile(t, "land.geojson", `{"type":"FeatureCollection","features":[
		{"type":"Feature","properties":{},"geometry":{"type":"Polygon","coordinates":[[[-110,30],[-80,30],[-80,45],[-110,45],[-110,30]]]}},
		{"type":"Feature","properties":{},"geometry":{"type":"Polygon","coordinates":[[[60,30],[70,30],[70,40],[60,30]]]}}
	]}`)
	states := writeFile(t, "states.geojson", `{"type":"FeatureCollection","features":[
		{"type":"Feature","properties":{},"geometry":{"type":"LineString","coordinates":[[-100,30],[-100,45]]}}
	]}`)

	style := bareStyle(100)
	style.Layers.Land.Source = land
	style.Layers.Land.Disabled = false
	style.Layers.States.Source = states
	style.Layers.States.Disabled = false
	style.Layers.States.Width = 3

	m, err := New(geo.DefaultExtent, style)
	require.NoError(t, err)
	require.Len(t, m.layers, 3)

	// the far away polygon is culled
	assert.Len(t, m.layers[1].polys, 1)
	assert.Len(t, m.layers[2].lines, 1)

	img := m.Render()
	assertNear(t, landColor, pixelAt(t, m, img, -90, 37))
	assertNear(t, oceanColor, pixelAt(t, m, img, -120, 55))

	line := pixelAt(t, m, img, -100, 37.5)
	assert.Less(t, int(line.R), 0x40)
}

func TestRender_DisabledLayer(t *testing.T) {
	style := bareStyle(50)
	style.Layers.Ocean.Disabled = true

	m, err := New(geo.DefaultExtent, style)
	require.NoError(t, err)
	assert.Empty(t, m.layers)
	assert.Equal(t, white, pixelAt(t, m, m.Render(), -95, 40))
}

func TestRender_Background(t *testing.T) {
	red := color.RGBA{R: 0xff, A: 0xff}
	src := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			src.SetRGBA(x, y, red)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, src))

	style := bareStyle(50)
	style.Background = writeFile(t, "relief.png", buf.String())

	m, err := New(geo.DefaultExtent, style)
	require.NoError(t, err)
	assert.Empty(t, m.layers)
	assertNear(t, red, pixelAt(t, m, m.Render(), -95, 40))

	style.Background = writeFile(t, "broken.png", "not an image")
	_, err = New(geo.DefaultExtent, style)
	require.Error(t, err)
}

func TestPlotCenters(t *testing.T) {
	m, err := New(geo.DefaultExtent, smallStyle(100))
	require.NoError(t, err)

	require.NoError(t, m.PlotCenters([]bulletin.Center{
		{Kind: bulletin.High, Code: "4000950", Pressure: 1030, Lat: 40, Lon: -95},
		{Kind: bulletin.Low, Code: "3501100", Lat: 35, Lon: -110},
	}))
	require.Len(t, m.symbols, 2)
	assert.Equal(t, "H", m.symbols[0].text)
	assert.Equal(t, "1030", m.symbols[0].caption)
	assert.Equal(t, "L", m.symbols[1].text)
	assert.Empty(t, m.symbols[1].caption)

	img := m.Render()
	assert.Positive(t, countPixels(img, blueish))
	assert.Positive(t, countPixels(img, func(c color.RGBA) bool {
		return c.R > 150 && c.G < 100 && c.B < 100
	}))
}

func TestPlotCenters_ClipAndOptions(t *testing.T) {
	style := smallStyle(50)
	style.Marks.ClipToExtent = true
	style.Marks.NoPressure = true

	m, err := New(geo.DefaultExtent, style)
	require.NoError(t, err)
	require.NoError(t, m.PlotCenters([]bulletin.Center{
		{Kind: bulletin.High, Pressure: 1030, Lat: 40, Lon: -95},
		{Kind: bulletin.High, Pressure: 1030, Lat: 40, Lon: -14.9},
	}))
	require.Len(t, m.symbols, 1)
	assert.Empty(t, m.symbols[0].caption)

	style.Marks.HighColor = "blue"
	m, err = New(geo.DefaultExtent, style)
	require.NoError(t, err)
	require.Error(t, m.PlotCenters(nil))
}

func TestPlotFronts(t *testing.T) {
	m, err := New(geo.DefaultExtent, smallStyle(100))
	require.NoError(t, err)

	require.NoError(t, m.PlotFronts([]bulletin.Front{
		{Kind: bulletin.Cold, Lats: []float64{40, 40}, Lons: []float64{-100, -90}},
		{Kind: bulletin.Warm, Lats: []float64{30}, Lons: []float64{-90}},
	}))
	require.Len(t, m.polylines, 1)

	x1, y1, _ := m.Project(-100, 40)
	x2, y2, _ := m.Project(-90, 40)
	img := m.Render()
	assert.True(t, blueish(img.RGBAAt(int((x1+x2)/2), int((y1+y2)/2))))

	style := smallStyle(50)
	style.Marks.NoFronts = true
	m, err = New(geo.DefaultExtent, style)
	require.NoError(t, err)
	require.NoError(t, m.PlotFronts([]bulletin.Front{{Kind: bulletin.Cold, Lats: []float64{40, 41}, Lons: []float64{-100, -90}}}))
	assert.Empty(t, m.polylines)
}

func TestPlotPoints(t *testing.T) {
	m, err := New(geo.DefaultExtent, smallStyle(100))
	require.NoError(t, err)

	require.Error(t, m.PlotPoints([]float64{1}, nil, ""))
	require.Error(t, m.PlotPoints([]float64{40}, []float64{-95}, "black"))

	require.NoError(t, m.PlotPoints([]float64{40}, []float64{-95}, ""))
	require.Len(t, m.dots, 1)

	c := pixelAt(t, m, m.Render(), -95, 40)
	assertNear(t, color.RGBA{A: 0xff}, c)
}

func TestPlotBulletin(t *testing.T) {
	rows, err := bulletin.LoadRows("../bulletin/testdata/codsus.txt")
	require.NoError(t, err)
	b, err := bulletin.Parse(rows)
	require.NoError(t, err)

	m, err := New(geo.DefaultExtent, smallStyle(50))
	require.NoError(t, err)
	require.NoError(t, m.PlotBulletin(b))

	assert.Len(t, m.symbols, len(b.Highs)+len(b.Lows))
	assert.Len(t, m.polylines, len(b.Fronts))
}

func TestRenderSVG(t *testing.T) {
	style := smallStyle(50)
	style.Layers.Land.Source = writeFile(t, "land.geojson", `{"type":"FeatureCollection","features":[
		{"type":"Feature","properties":{},"geometry":{"type":"Polygon","coordinates":[[[-110,30],[-80,30],[-80,45],[-110,30]]]}}
	]}`)

	m, err := New(geo.DefaultExtent, style)
	require.NoError(t, err)
	require.NoError(t, m.PlotCenters([]bulletin.Center{{Kind: bulletin.High, Pressure: 1030, Lat: 40, Lon: -95}}))
	require.NoError(t, m.PlotFronts([]bulletin.Front{{Kind: bulletin.Cold, Lats: []float64{40, 41}, Lons: []float64{-100, -90}}}))
	require.NoError(t, m.PlotPoints([]float64{40}, []float64{-95}, ""))

	doc, err := m.RenderSVG()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(doc, "<svg"))
	assert.Contains(t, doc, "<path")
	assert.Contains(t, doc, ">H<")
	assert.Contains(t, doc, ">1030<")
	assert.NotContains(t, doc, "\n")
}

func TestEncode(t *testing.T) {
	m, err := New(geo.DefaultExtent, smallStyle(50))
	require.NoError(t, err)

	for _, format := range []string{config.FormatPNG, config.FormatWebP} {
		t.Run(format, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, m.Encode(&buf, format))

			cfg, got, err := image.DecodeConfig(&buf)
			require.NoError(t, err)
			assert.Equal(t, format, got)
			assert.Equal(t, 200, cfg.Width)
			assert.Equal(t, 100, cfg.Height)
		})
	}

	var buf bytes.Buffer
	require.NoError(t, m.Encode(&buf, config.FormatSVG))
	assert.True(t, strings.HasPrefix(buf.String(), "<svg"))

	require.Error(t, m.Encode(&buf, "gif"))
}

func TestSave(t *testing.T) {
	m, err := New(geo.DefaultExtent, smallStyle(50))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "nested", "map.png")
	require.NoError(t, m.Save(path, config.FormatPNG))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}
