// Package geometry loads suburb boundaries from ESRI shapefiles and answers
// simple questions about them (centroid, containment, area).
package geometry

import (
	"os"
	"path/filepath"
	"strings"

	shp "github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"ptai/internal/types"
)

// LoadShapefile reads every polygon in the shapefile at path. The area name is
// taken from nameField (matched case-insensitively). The WKT of the sibling
// .prj file, if any, is stored on every row.
func LoadShapefile(path, nameField string) ([]types.GeometryRow, error) {
	log := zap.L().With(zap.String("component", "geometry.shapefile"))

	r, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "geometry: open shapefile %s", path)
	}
	defer func() { _ = r.Close() }()

	nameIdx := -1
	for i, f := range r.Fields() {
		if strings.EqualFold(strings.TrimRight(f.String(), "\x00"), nameField) {
			nameIdx = i
			break
		}
	}
	if nameIdx < 0 {
		return nil, eris.Errorf("geometry: field %s not found in %s", nameField, path)
	}

	wkt, err := readPRJ(path)
	if err != nil {
		return nil, err
	}
	if wkt == "" {
		log.Warn("no .prj file next to shapefile, assuming lon/lat", zap.String("path", path))
	}

	var rows []types.GeometryRow
	var skipped int
	for r.Next() {
		idx, shape := r.Shape()
		poly, ok := shape.(*shp.Polygon)
		if !ok {
			skipped++
			continue
		}
		mp := polygonToMultiPolygon(poly)
		if mp == nil {
			skipped++
			continue
		}
		name := strings.TrimSpace(strings.TrimRight(r.ReadAttribute(idx, nameIdx), "\x00"))
		rows = append(rows, types.GeometryRow{Name: name, Boundary: mp, CRS: wkt})
	}

	if skipped > 0 {
		log.Debug("skipped shapefile records without polygon geometry",
			zap.String("path", path),
			zap.Int("skipped", skipped),
		)
	}
	return rows, nil
}

func readPRJ(shpPath string) (string, error) {
	prj := strings.TrimSuffix(shpPath, filepath.Ext(shpPath)) + ".prj"
	b, err := os.ReadFile(prj)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", eris.Wrapf(err, "geometry: read %s", prj)
	}
	return strings.TrimSpace(string(b)), nil
}

// polygonToMultiPolygon splits the shapefile parts into rings. Clockwise rings
// are outer shells and start a new polygon; counter-clockwise rings are holes
// of the shell before them.
func polygonToMultiPolygon(p *shp.Polygon) *geom.MultiPolygon {
	if p == nil || p.NumParts == 0 || len(p.Points) == 0 {
		return nil
	}

	mp := geom.NewMultiPolygon(geom.XY)
	var cur *geom.Polygon
	flush := func() {
		if cur == nil {
			return
		}
		if err := mp.Push(cur); err != nil {
			zap.L().Debug("geometry: skipping malformed polygon", zap.Error(err))
		}
	}

	for i := int32(0); i < p.NumParts; i++ {
		start := p.Parts[i]
		end := int32(len(p.Points))
		if i+1 < p.NumParts {
			end = p.Parts[i+1]
		}
		if end-start < 4 {
			continue
		}

		flat := make([]float64, 0, 2*(end-start))
		for j := start; j < end; j++ {
			flat = append(flat, p.Points[j].X, p.Points[j].Y)
		}
		ring := geom.NewLinearRingFlat(geom.XY, flat)

		if signedArea(flat) <= 0 || cur == nil {
			flush()
			cur = geom.NewPolygon(geom.XY)
		}
		if err := cur.Push(ring); err != nil {
			zap.L().Debug("geometry: skipping malformed ring", zap.Int32("part", i), zap.Error(err))
		}
	}
	flush()

	if mp.NumPolygons() == 0 {
		return nil
	}
	return mp
}

// signedArea is the shoelace area of a flat XY ring; negative for clockwise.
func signedArea(flat []float64) float64 {
	var sum float64
	n := len(flat) / 2
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += flat[2*i]*flat[2*j+1] - flat[2*j]*flat[2*i+1]
	}
	return sum / 2
}
