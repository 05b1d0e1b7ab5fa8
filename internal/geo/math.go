package geo

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// EarthRadius is the sphere radius used by the projection, in meters.
const EarthRadius = 6371000.0

// Extent is a lon/lat bounding box in decimal degrees.
type Extent struct {
	West  float64 `json:"west" yaml:"west"`
	East  float64 `json:"east" yaml:"east"`
	South float64 `json:"south" yaml:"south"`
	North float64 `json:"north" yaml:"north"`
}

// DefaultExtent covers the continental United States and its surroundings.
var DefaultExtent = Extent{West: -130, East: -65, South: 20, North: 65}

// ExtentFromSlice builds an extent from [west, east, south, north].
func ExtentFromSlice(v []float64) (Extent, error) {
	if len(v) != 4 {
		return Extent{}, fmt.Errorf("extent needs 4 values (west, east, south, north), got %d", len(v))
	}
	e := Extent{West: v[0], East: v[1], South: v[2], North: v[3]}
	return e, e.Validate()
}

// Validate checks ordering and ranges of the extent.
func (e Extent) Validate() error {
	if e.West >= e.East {
		return fmt.Errorf("extent west %g must be less than east %g", e.West, e.East)
	}
	if e.South >= e.North {
		return fmt.Errorf("extent south %g must be less than north %g", e.South, e.North)
	}
	if e.South < -90 || e.North > 90 {
		return fmt.Errorf("extent latitude out of range [%g, %g]", e.South, e.North)
	}
	return nil
}

// UnmarshalFlag parses "W,E,S,N" from a command line option.
func (e *Extent) UnmarshalFlag(value string) error {
	parts := strings.Split(value, ",")
	vals := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return fmt.Errorf("invalid extent value %q: %w", p, err)
		}
		vals = append(vals, v)
	}

	ext, err := ExtentFromSlice(vals)
	if err != nil {
		return err
	}
	*e = ext
	return nil
}

// Contains reports whether the point lies inside the extent.
func (e Extent) Contains(lon, lat float64) bool {
	return lon >= e.West && lon <= e.East && lat >= e.South && lat <= e.North
}

// LambertConformal is a spherical Lambert conformal conic projection.
type LambertConformal struct {
	CentralLon float64
	CentralLat float64
	Parallels  []float64

	n, f, rho0 float64
}

// NewLambertConformal prepares a projection with one or two standard parallels.
func NewLambertConformal(centralLon, centralLat float64, parallels []float64) (*LambertConformal, error) {
	if len(parallels) == 0 || len(parallels) > 2 {
		return nil, fmt.Errorf("lambert conformal needs 1 or 2 standard parallels, got %d", len(parallels))
	}

	phi1 := radians(parallels[0])
	phi2 := phi1
	if len(parallels) == 2 {
		phi2 = radians(parallels[1])
	}

	var n float64
	if math.Abs(phi1-phi2) < 1e-10 {
		n = math.Sin(phi1)
	} else {
		n = math.Log(math.Cos(phi1)/math.Cos(phi2)) /
			math.Log(math.Tan(math.Pi/4+phi2/2)/math.Tan(math.Pi/4+phi1/2))
	}
	if math.Abs(n) < 1e-10 {
		return nil, fmt.Errorf("standard parallels %v give a degenerate cone", parallels)
	}

	f := math.Cos(phi1) * math.Pow(math.Tan(math.Pi/4+phi1/2), n) / n

	p := &LambertConformal{
		CentralLon: centralLon,
		CentralLat: centralLat,
		Parallels:  append([]float64(nil), parallels...),
		n:          n,
		f:          f,
	}
	p.rho0 = p.rho(radians(centralLat))

	return p, nil
}

// Forward projects lon/lat degrees to planar meters.
func (p *LambertConformal) Forward(lon, lat float64) (x, y float64) {
	// the cone apex is singular; keep away from the opposite pole
	const maxLat = 89.9
	if lat > maxLat {
		lat = maxLat
	} else if lat < -maxLat {
		lat = -maxLat
	}

	dLon := lon - p.CentralLon
	for dLon > 180 {
		dLon -= 360
	}
	for dLon < -180 {
		dLon += 360
	}

	rho := p.rho(radians(lat))
	theta := p.n * radians(dLon)

	x = rho * math.Sin(theta)
	y = p.rho0 - rho*math.Cos(theta)
	return x, y
}

func (p *LambertConformal) rho(phi float64) float64 {
	return EarthRadius * p.f / math.Pow(math.Tan(math.Pi/4+phi/2), p.n)
}

func radians(deg float64) float64 {
	return deg * (math.Pi / 180.0)
}
