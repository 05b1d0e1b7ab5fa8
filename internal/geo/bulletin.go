package geo

import (
	"strings"
	"time"

	"github.com/woozymasta/wpcmap/internal/bulletin"
)

// FromBulletin converts decoded centers and fronts into GeoJSON.
// Centers become Points, fronts with at least two positions become LineStrings.
// Every feature carries the bulletin valid time when it is known.
func FromBulletin(b *bulletin.Bulletin) GeoJSONFeatureCollection {
	fc := NewFeatureCollection()

	valid, hasValid := b.ValidAt()
	stamp := func(props map[string]interface{}) map[string]interface{} {
		if hasValid {
			props["valid"] = valid.Format(time.RFC3339)
		}
		return props
	}

	for _, centers := range [][]bulletin.Center{b.Highs, b.Lows} {
		for _, c := range centers {
			props := map[string]interface{}{
				"type": string(c.Kind),
				"code": c.Code,
			}
			if c.Pressure > 0 {
				props["pressure"] = c.Pressure
			}
			fc.Features = append(fc.Features, PointFeature(c.Lon, c.Lat, stamp(props)))
		}
	}

	for _, f := range b.Fronts {
		if len(f.Lons) < 2 {
			continue
		}
		props := map[string]interface{}{
			"type": strings.ToLower(string(f.Kind)),
		}
		if f.Strength != "" {
			props["strength"] = strings.ToLower(f.Strength)
		}
		fc.Features = append(fc.Features, LineFeature(f.Lons, f.Lats, stamp(props)))
	}

	return fc
}
