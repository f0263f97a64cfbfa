// Package report turns a selected suburb and the dataset summary into the
// dashboard sections: score table, bar chart, interpretation, correlation
// table and map document.
package report

import (
	"math"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"

	"ptai/internal/geometry"
	"ptai/internal/projection"
	"ptai/internal/stats"
	"ptai/internal/types"
)

// Cell is one named value of the score table.
type Cell struct {
	Column string
	Value  types.Score
	Max    bool
}

// Mode pairs a suburb's mode score with the dataset-wide average.
type Mode struct {
	Column  string
	Score   types.Score
	Average stats.Average
}

// Map is the boundary reprojected to WGS84 together with its centroid.
type Map struct {
	Boundary       *geom.MultiPolygon
	CentroidLon    float64
	CentroidLat    float64
	CentroidInside bool
	AreaKm2        float64
}

// Report holds everything shown for one selection.
type Report struct {
	Suburb       string
	Scores       []Cell
	Modes        []Mode
	Total        types.Score
	IRSD         types.Score
	Correlations []stats.Correlation
	Map          Map
}

// Build assembles the report for view. The boundary is reprojected from crs.
func Build(view types.SuburbView, summary stats.Summary, crs projection.CRS) (*Report, error) {
	a := view.Attribute
	r := &Report{
		Suburb:       view.Name,
		Total:        a.Total,
		IRSD:         a.IRSD,
		Correlations: summary.Correlations,
	}

	for i, col := range types.ModeColumns {
		avg, _ := summary.Average(col)
		r.Modes = append(r.Modes, Mode{Column: col, Score: a.Modes()[i], Average: avg})
	}
	r.Scores = scoreRow(a)

	m, err := buildMap(view.Geometry, crs)
	if err != nil {
		return nil, err
	}
	r.Map = m
	return r, nil
}

// scoreRow lists the table columns and flags the largest defined value.
func scoreRow(a types.AttributeRow) []Cell {
	cols := append(append([]string{}, types.ModeColumns...), types.ColTotal, types.ColIRSD)
	cells := make([]Cell, len(cols))
	maxIdx, maxVal := -1, math.Inf(-1)
	for i, col := range cols {
		v, _ := a.Value(col)
		cells[i] = Cell{Column: col, Value: v}
		if v.Valid && v.Float64 > maxVal {
			maxIdx, maxVal = i, v.Float64
		}
	}
	if maxIdx >= 0 {
		for i := range cells {
			cells[i].Max = cells[i].Value.Valid && cells[i].Value.Float64 == maxVal
		}
	}
	return cells
}

func buildMap(g types.GeometryRow, crs projection.CRS) (Map, error) {
	boundary := projection.Reproject(g.Boundary, crs)
	if boundary == nil || boundary.NumPolygons() == 0 {
		return Map{}, eris.Errorf("report: %s has no boundary", g.Name)
	}
	lon, lat, err := geometry.Centroid(boundary)
	if err != nil {
		return Map{}, err
	}
	return Map{
		Boundary:       boundary,
		CentroidLon:    lon,
		CentroidLat:    lat,
		CentroidInside: geometry.Contains(boundary, lon, lat),
		AreaKm2:        geometry.AreaKm2(boundary),
	}, nil
}
