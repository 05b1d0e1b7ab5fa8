package basemap

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/woozymasta/wpcmap/internal/geo"
)

// Coarse North American outlines used when a standard layer has no source:
// land and islands, large lakes, coastlines, US state and Canadian province
// lines, national borders. The ocean has none, it fills the map area.
//
//go:embed layers/*.geojson
var builtinLayers embed.FS

// builtinLayer returns the bundled data of a standard layer.
// ok is false when the layer has no bundled data.
func builtinLayer(name string) (fc geo.GeoJSONFeatureCollection, ok bool, err error) {
	data, err := builtinLayers.ReadFile("layers/" + name + ".geojson")
	if errors.Is(err, fs.ErrNotExist) {
		return fc, false, nil
	}
	if err != nil {
		return fc, false, err
	}

	fc, err = geo.ParseFeatureCollection(data)
	if err != nil {
		return fc, false, fmt.Errorf("builtin %s: %w", name, err)
	}
	return fc, true, nil
}
