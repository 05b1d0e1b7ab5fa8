package basemap

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strconv"
	"strings"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/svg"
	xdraw "golang.org/x/image/draw"
)

const svgMediaType = "image/svg+xml"

// RenderSVG writes the figure as a minified SVG document.
// The background image, if any, is embedded as a PNG data URI.
func (m *Map) RenderSVG() (string, error) {
	var b strings.Builder

	paper, paperOpacity := hexColor(m.paper)
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`,
		m.width, m.height, m.width, m.height)
	fmt.Fprintf(&b, `<rect width="%d" height="%d" fill="%s" fill-opacity="%s"/>`,
		m.width, m.height, paper, num(paperOpacity))

	aw, ah := m.area.Dx(), m.area.Dy()
	b.WriteString(`<defs><clipPath id="area">`)
	fmt.Fprintf(&b, `<rect width="%d" height="%d"/>`, aw, ah)
	b.WriteString(`</clipPath></defs>`)
	fmt.Fprintf(&b, `<g transform="translate(%d %d)" clip-path="url(#area)">`, m.area.Min.X, m.area.Min.Y)

	if m.background != nil {
		uri, err := m.backgroundURI()
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, `<image width="%d" height="%d" href="%s"/>`, aw, ah, uri)
	}

	for _, l := range m.layers {
		writeLayer(&b, l, aw, ah)
	}

	for _, p := range m.polylines {
		writePath(&b, p.pts, false, `fill="none" stroke="%s" stroke-opacity="%s" stroke-width="%s" stroke-linejoin="round" stroke-linecap="round"`,
			p.color, p.width)
	}
	for _, d := range m.dots {
		hex, op := hexColor(d.color)
		fmt.Fprintf(&b, `<circle cx="%s" cy="%s" r="%s" fill="%s" fill-opacity="%s"/>`,
			num(d.at.X), num(d.at.Y), num(d.radius), hex, num(op))
	}
	for _, s := range m.symbols {
		writeText(&b, s.text, s.at, s.size, s.color)
		if s.caption != "" {
			capSize := s.size / 2
			writeText(&b, s.caption, point{X: s.at.X, Y: s.at.Y + s.size/2 + capSize*0.7}, capSize, s.captionColor)
		}
	}

	b.WriteString(`</g></svg>`)

	mini := minify.New()
	mini.AddFunc(svgMediaType, svg.Minify)
	out, err := mini.String(svgMediaType, b.String())
	if err != nil {
		return "", fmt.Errorf("minify svg: %w", err)
	}

	return out, nil
}

func writeLayer(b *strings.Builder, l layer, aw, ah int) {
	if l.fillArea {
		hex, op := hexColor(l.fill)
		fmt.Fprintf(b, `<rect width="%d" height="%d" fill="%s" fill-opacity="%s"/>`, aw, ah, hex, num(op))
		return
	}

	if l.hasFill {
		hex, op := hexColor(l.fill)
		for _, rings := range l.polys {
			var d strings.Builder
			for _, ring := range rings {
				pathData(&d, ring, true)
			}
			fmt.Fprintf(b, `<path d="%s" fill="%s" fill-opacity="%s" fill-rule="nonzero"/>`, d.String(), hex, num(op))
		}
	}

	lineColor, width := l.stroke, l.width
	if !l.hasStroke {
		if !l.hasFill || len(l.lines) == 0 {
			return
		}
		lineColor, width = l.fill, max(width, 1)
	}

	strokeAttrs := `fill="none" stroke="%s" stroke-opacity="%s" stroke-width="%s"`
	if l.hasStroke {
		for _, rings := range l.polys {
			for _, ring := range rings {
				writePath(b, ring, true, strokeAttrs, lineColor, width)
			}
		}
	}
	for _, line := range l.lines {
		writePath(b, line, false, strokeAttrs, lineColor, width)
	}
}

// writePath emits a path; attrs takes the stroke hex, opacity and width.
func writePath(b *strings.Builder, pts []point, closed bool, attrs string, c color.RGBA, width float64) {
	if len(pts) == 0 {
		return
	}
	var d strings.Builder
	pathData(&d, pts, closed)
	hex, op := hexColor(c)
	fmt.Fprintf(b, `<path d="%s" `+attrs+`/>`, d.String(), hex, num(op), num(width))
}

func pathData(d *strings.Builder, pts []point, closed bool) {
	for i, p := range pts {
		cmd := "L"
		if i == 0 {
			cmd = "M"
		}
		fmt.Fprintf(d, "%s%s %s", cmd, num(p.X), num(p.Y))
	}
	if closed {
		d.WriteString("Z")
	}
}

func writeText(b *strings.Builder, text string, at point, size float64, c color.RGBA) {
	hex, op := hexColor(c)
	outline, _ := hexColor(halo(c))
	fmt.Fprintf(b,
		`<text x="%s" y="%s" font-family="monospace" font-weight="bold" font-size="%s" text-anchor="middle" dominant-baseline="central" fill="%s" fill-opacity="%s" stroke="%s" stroke-width="%s" paint-order="stroke">%s</text>`,
		num(at.X), num(at.Y), num(size), hex, num(op), outline, num(max(size/12, 1)), escapeText(text))
}

func (m *Map) backgroundURI() (string, error) {
	img := image.NewRGBA(image.Rect(0, 0, m.area.Dx(), m.area.Dy()))
	xdraw.CatmullRom.Scale(img, img.Bounds(), m.background, m.background.Bounds(), draw.Src, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("encode svg background: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// num formats a coordinate with two decimals, trimmed.
func num(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "-0" {
		s = "0"
	}
	return s
}

func escapeText(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}
