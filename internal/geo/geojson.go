// Package geo handles geographic data structures and coordinate conversions.
package geo

import (
	"encoding/json"
	"fmt"
	"os"
	"reflect"
)

// GeoJSONFeatureCollection represents a collection of geographic features.
// It follows the standard GeoJSON structure.
type GeoJSONFeatureCollection struct {
	Type     string           `json:"type" yaml:"type"`
	Features []GeoJSONFeature `json:"features" yaml:"features"`
}

// GeoJSONFeature represents a single geographic feature with geometry and properties.
type GeoJSONFeature struct {
	Properties map[string]interface{} `json:"properties" yaml:"properties"`
	Type       string                 `json:"type" yaml:"type"`
	Geometry   GeoJSONGeometry        `json:"geometry" yaml:"geometry"`
}

// GeoJSONGeometry represents the geometry of a feature (Point, Polygon, etc.).
// Positions are [Lon, Lat] nested to the depth the geometry type requires.
type GeoJSONGeometry struct {
	Type        string      `json:"type" yaml:"type"`
	Coordinates interface{} `json:"coordinates" yaml:"coordinates"`
}

// Position is a [Lon, Lat] pair.
type Position [2]float64

// NewFeatureCollection returns an empty collection ready for appending.
func NewFeatureCollection() GeoJSONFeatureCollection {
	return GeoJSONFeatureCollection{Type: "FeatureCollection", Features: []GeoJSONFeature{}}
}

// PointFeature builds a Point feature.
func PointFeature(lon, lat float64, props map[string]interface{}) GeoJSONFeature {
	return GeoJSONFeature{
		Type: "Feature",
		Geometry: GeoJSONGeometry{
			Type:        "Point",
			Coordinates: []float64{lon, lat},
		},
		Properties: props,
	}
}

// LineFeature builds a LineString feature from index aligned lons and lats.
func LineFeature(lons, lats []float64, props map[string]interface{}) GeoJSONFeature {
	coords := make([][]float64, 0, len(lons))
	for i := range lons {
		coords = append(coords, []float64{lons[i], lats[i]})
	}
	return GeoJSONFeature{
		Type: "Feature",
		Geometry: GeoJSONGeometry{
			Type:        "LineString",
			Coordinates: coords,
		},
		Properties: props,
	}
}

// IsArea reports whether the geometry encloses an area.
func (g GeoJSONGeometry) IsArea() bool {
	return g.Type == "Polygon" || g.Type == "MultiPolygon"
}

// Paths flattens the geometry into position runs.
// Polygons yield one path per ring, points a single one-position path.
func (g GeoJSONGeometry) Paths() ([][]Position, error) {
	switch g.Type {
	case "Point":
		p, err := position(g.Coordinates)
		if err != nil {
			return nil, err
		}
		return [][]Position{{p}}, nil
	case "MultiPoint", "LineString":
		path, err := positions(g.Coordinates)
		if err != nil {
			return nil, err
		}
		return [][]Position{path}, nil
	case "MultiLineString", "Polygon":
		return pathList(g.Coordinates)
	case "MultiPolygon":
		var out [][]Position
		for _, poly := range items(g.Coordinates) {
			paths, err := pathList(poly)
			if err != nil {
				return nil, err
			}
			out = append(out, paths...)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported geometry type %q", g.Type)
	}
}

// LoadFeatureCollection reads a GeoJSON FeatureCollection file.
func LoadFeatureCollection(path string) (GeoJSONFeatureCollection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return GeoJSONFeatureCollection{}, err
	}

	fc, err := ParseFeatureCollection(data)
	if err != nil {
		return GeoJSONFeatureCollection{}, fmt.Errorf("decode %s: %w", path, err)
	}

	return fc, nil
}

// ParseFeatureCollection decodes a GeoJSON FeatureCollection document.
func ParseFeatureCollection(data []byte) (GeoJSONFeatureCollection, error) {
	var fc GeoJSONFeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return GeoJSONFeatureCollection{}, err
	}
	if fc.Type != "FeatureCollection" {
		return GeoJSONFeatureCollection{}, fmt.Errorf("type %q is not a FeatureCollection", fc.Type)
	}

	return fc, nil
}

func pathList(v interface{}) ([][]Position, error) {
	var out [][]Position
	for _, it := range items(v) {
		path, err := positions(it)
		if err != nil {
			return nil, err
		}
		out = append(out, path)
	}
	return out, nil
}

func positions(v interface{}) ([]Position, error) {
	elems := items(v)
	out := make([]Position, 0, len(elems))
	for _, it := range elems {
		p, err := position(it)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func position(v interface{}) (Position, error) {
	elems := items(v)
	if len(elems) < 2 {
		return Position{}, fmt.Errorf("position needs 2 numbers, got %v", v)
	}
	lon, ok1 := number(elems[0])
	lat, ok2 := number(elems[1])
	if !ok1 || !ok2 {
		return Position{}, fmt.Errorf("position is not numeric: %v", v)
	}
	return Position{lon, lat}, nil
}

// items returns the elements of any slice value, nil for non slices.
func items(v interface{}) []interface{} {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice {
		return nil
	}
	out := make([]interface{}, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out
}

func number(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
