package basemap

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

// circleSegments is the polygon resolution of dots and stroke joins.
const circleSegments = 24

// Render rasterizes the figure: paper, then the map area clipped to its
// bounds with background, layers and overlays in that order.
func (m *Map) Render() *image.RGBA {
	canvas := image.NewRGBA(image.Rect(0, 0, m.width, m.height))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(m.paper), image.Point{}, draw.Src)

	area := image.NewRGBA(image.Rect(0, 0, m.area.Dx(), m.area.Dy()))

	if m.background != nil {
		xdraw.CatmullRom.Scale(area, area.Bounds(), m.background, m.background.Bounds(), draw.Over, nil)
	}

	for _, l := range m.layers {
		drawLayer(area, l)
	}

	for _, p := range m.polylines {
		strokePath(area, p.pts, p.width, p.color)
	}
	for _, d := range m.dots {
		fillPolygon(area, circle(d.at, d.radius), d.color)
	}
	for _, s := range m.symbols {
		drawText(area, s.text, s.at, s.size, s.color)
		if s.caption != "" {
			capSize := s.size / 2
			at := point{X: s.at.X, Y: s.at.Y + s.size/2 + capSize*0.7}
			drawText(area, s.caption, at, capSize, s.captionColor)
		}
	}

	draw.Draw(canvas, m.area, area, image.Point{}, draw.Over)
	return canvas
}

func drawLayer(dst *image.RGBA, l layer) {
	if l.fillArea {
		draw.Draw(dst, dst.Bounds(), image.NewUniform(l.fill), image.Point{}, draw.Over)
		return
	}

	if l.hasFill {
		for _, rings := range l.polys {
			r := pathBounds(dst.Bounds(), 0, rings...)
			if r.Empty() {
				continue
			}
			z := vector.NewRasterizer(r.Dx(), r.Dy())
			for _, ring := range rings {
				addPath(z, ring, true, r.Min)
			}
			z.Draw(dst, r, image.NewUniform(l.fill), image.Point{})
		}
	}

	lineColor, width := l.stroke, l.width
	if !l.hasStroke {
		if !l.hasFill || len(l.lines) == 0 {
			return
		}
		lineColor, width = l.fill, math.Max(width, 1)
	}

	if l.hasStroke {
		for _, rings := range l.polys {
			for _, ring := range rings {
				strokePath(dst, closeRing(ring), width, lineColor)
			}
		}
	}
	for _, line := range l.lines {
		strokePath(dst, line, width, lineColor)
	}
}

// fillPolygon fills a single closed polygon.
func fillPolygon(dst *image.RGBA, pts []point, c color.Color) {
	if len(pts) < 3 {
		return
	}
	r := pathBounds(dst.Bounds(), 0, pts)
	if r.Empty() {
		return
	}
	z := vector.NewRasterizer(r.Dx(), r.Dy())
	addPath(z, pts, true, r.Min)
	z.Draw(dst, r, image.NewUniform(c), image.Point{})
}

// strokePath draws an open polyline of the given width.
// Segments and joins share one orientation so overlaps never cancel out.
func strokePath(dst *image.RGBA, pts []point, width float64, c color.Color) {
	if len(pts) == 0 || width <= 0 {
		return
	}
	hw := width / 2

	r := pathBounds(dst.Bounds(), hw, pts)
	if r.Empty() {
		return
	}
	z := vector.NewRasterizer(r.Dx(), r.Dy())
	for i := 0; i+1 < len(pts); i++ {
		a, b := pts[i], pts[i+1]
		dx, dy := b.X-a.X, b.Y-a.Y
		length := math.Hypot(dx, dy)
		if length == 0 {
			continue
		}
		nx, ny := -dy/length*hw, dx/length*hw
		addPath(z, orient([]point{
			{a.X + nx, a.Y + ny},
			{b.X + nx, b.Y + ny},
			{b.X - nx, b.Y - ny},
			{a.X - nx, a.Y - ny},
		}), true, r.Min)
	}
	if hw >= 1 {
		for _, p := range pts {
			addPath(z, circle(p, hw), true, r.Min)
		}
	}
	z.Draw(dst, r, image.NewUniform(c), image.Point{})
}

// drawText draws text centered on at, scaled to height px.
func drawText(dst *image.RGBA, text string, at point, height float64, c color.RGBA) {
	face := basicfont.Face7x13

	w := font.MeasureString(face, text).Ceil()
	if w <= 0 {
		return
	}
	mask := image.NewAlpha(image.Rect(0, 0, w, face.Height))
	d := font.Drawer{
		Dst:  mask,
		Src:  image.Opaque,
		Face: face,
		Dot:  fixed.P(0, face.Ascent),
	}
	d.DrawString(text)

	k := height / float64(face.Height)
	sw := max(1, int(math.Round(float64(w)*k)))
	sh := max(1, int(math.Round(float64(face.Height)*k)))
	scaled := image.NewAlpha(image.Rect(0, 0, sw, sh))
	xdraw.CatmullRom.Scale(scaled, scaled.Bounds(), mask, mask.Bounds(), draw.Src, nil)

	x0 := int(math.Round(at.X - float64(sw)/2))
	y0 := int(math.Round(at.Y - float64(sh)/2))
	r := image.Rect(x0, y0, x0+sw, y0+sh)

	outline := image.NewUniform(halo(c))
	o := max(1, sh/12)
	for _, off := range []image.Point{{-o, 0}, {o, 0}, {0, -o}, {0, o}, {-o, -o}, {o, o}, {-o, o}, {o, -o}} {
		draw.DrawMask(dst, r.Add(off), outline, image.Point{}, scaled, image.Point{}, draw.Over)
	}
	draw.DrawMask(dst, r, image.NewUniform(c), image.Point{}, scaled, image.Point{}, draw.Over)
}

// pathBounds returns the pixel box of paths widened by pad, clipped to clip.
func pathBounds(clip image.Rectangle, pad float64, paths ...[]point) image.Rectangle {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, path := range paths {
		for _, p := range path {
			minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
			minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
		}
	}
	if minX > maxX {
		return image.Rectangle{}
	}

	clamp := func(v float64, lo, hi int) int {
		return int(math.Max(float64(lo), math.Min(float64(hi), v)))
	}
	return image.Rect(
		clamp(math.Floor(minX-pad), clip.Min.X, clip.Max.X),
		clamp(math.Floor(minY-pad), clip.Min.Y, clip.Max.Y),
		clamp(math.Ceil(maxX+pad)+1, clip.Min.X, clip.Max.X),
		clamp(math.Ceil(maxY+pad)+1, clip.Min.Y, clip.Max.Y),
	)
}

// addPath adds pts to z, which covers the pixels starting at origin.
func addPath(z *vector.Rasterizer, pts []point, closed bool, origin image.Point) {
	if len(pts) == 0 {
		return
	}
	ox, oy := float64(origin.X), float64(origin.Y)
	z.MoveTo(float32(pts[0].X-ox), float32(pts[0].Y-oy))
	for _, p := range pts[1:] {
		z.LineTo(float32(p.X-ox), float32(p.Y-oy))
	}
	if closed {
		z.ClosePath()
	}
}

// orient returns pts wound with a positive signed area.
func orient(pts []point) []point {
	var area float64
	for i := range pts {
		j := (i + 1) % len(pts)
		area += pts[i].X*pts[j].Y - pts[j].X*pts[i].Y
	}
	if area >= 0 {
		return pts
	}
	out := make([]point, len(pts))
	for i, p := range pts {
		out[len(pts)-1-i] = p
	}
	return out
}

// circle approximates a circle with positive winding.
func circle(c point, r float64) []point {
	pts := make([]point, circleSegments)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / circleSegments
		pts[i] = point{X: c.X + r*math.Cos(a), Y: c.Y + r*math.Sin(a)}
	}
	return pts
}

func closeRing(ring []point) []point {
	if len(ring) < 2 || ring[0] == ring[len(ring)-1] {
		return ring
	}
	return append(append([]point(nil), ring...), ring[0])
}
