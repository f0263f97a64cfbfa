package types

import (
	"database/sql"

	"github.com/twpayne/go-geom"
)

// Display names for the columns the dashboard works with. Raw identifiers in
// the source files are mapped onto these by the schema package.
const (
	ColSuburb    = "Suburb"
	ColTrain     = "Train"
	ColBus       = "Bus"
	ColLightRail = "Light Rail"
	ColMetro     = "Metro"
	ColTotal     = "Total PTAI"
	ColIRSD      = "IRSD Score"
)

// ModeColumns lists the four transport modes in display order.
var ModeColumns = []string{ColTrain, ColBus, ColLightRail, ColMetro}

// Score is a numeric cell; Valid is false when the source had no value.
type Score = sql.NullFloat64

// AttributeRow holds the accessibility scores and socio-economic score for one
// statistical area. Missing cells are kept as invalid Scores.
type AttributeRow struct {
	Name      string
	Train     Score
	Bus       Score
	LightRail Score
	Metro     Score
	Total     Score
	IRSD      Score
}

// Value returns the score stored under the given display column.
func (r AttributeRow) Value(col string) (Score, bool) {
	switch col {
	case ColTrain:
		return r.Train, true
	case ColBus:
		return r.Bus, true
	case ColLightRail:
		return r.LightRail, true
	case ColMetro:
		return r.Metro, true
	case ColTotal:
		return r.Total, true
	case ColIRSD:
		return r.IRSD, true
	}
	return Score{}, false
}

// Modes returns the four mode scores in ModeColumns order.
func (r AttributeRow) Modes() []Score {
	return []Score{r.Train, r.Bus, r.LightRail, r.Metro}
}

// GeometryRow is one boundary from the geometry table. Name comes from a
// different dataset than AttributeRow.Name and may differ in casing.
type GeometryRow struct {
	Name     string
	Boundary *geom.MultiPolygon
	CRS      string // WKT from the .prj file, empty if none was found
}

// SuburbView is the pair of rows matching one selection.
type SuburbView struct {
	Name      string
	Attribute AttributeRow
	Geometry  GeometryRow
	// Number of rows that matched in each table; more than one means the
	// first row was used.
	AttributeMatches int
	GeometryMatches  int
}
