package report

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
)

// MapZoom is the initial zoom level suggested to map viewers.
const MapZoom = 13

// MapDocument encodes the boundary and centroid as a GeoJSON
// FeatureCollection in WGS84.
func MapDocument(r *Report) ([]byte, error) {
	boundary := &geojson.Feature{
		ID:       r.Suburb,
		Geometry: r.Map.Boundary,
		Properties: map[string]interface{}{
			"name":     r.Suburb,
			"area_km2": r.Map.AreaKm2,
		},
	}
	if r.Total.Valid {
		boundary.Properties["total_ptai"] = r.Total.Float64
	}
	if r.IRSD.Valid {
		boundary.Properties["irsd"] = r.IRSD.Float64
	}

	centroid := &geojson.Feature{
		Geometry: geom.NewPointFlat(geom.XY, []float64{r.Map.CentroidLon, r.Map.CentroidLat}).SetSRID(4326),
		Properties: map[string]interface{}{
			"name":            r.Suburb,
			"role":            "centroid",
			"centroid_inside": r.Map.CentroidInside,
			"zoom":            MapZoom,
		},
	}

	fc := &geojson.FeatureCollection{Features: []*geojson.Feature{boundary, centroid}}
	b, err := json.MarshalIndent(fc, "", "  ")
	if err != nil {
		return nil, eris.Wrap(err, "report: encode GeoJSON")
	}
	return b, nil
}

// WriteMap writes the GeoJSON map document to path.
func WriteMap(path string, r *Report) error {
	b, err := MapDocument(r)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return eris.Wrapf(err, "report: write %s", path)
	}
	return nil
}
