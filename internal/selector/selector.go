// Package selector finds the rows of both tables that belong to a chosen
// suburb.
package selector

import (
	"fmt"

	"ptai/internal/dataset"
	"ptai/internal/types"
)

// NotFoundError reports a selection missing from one or both tables.
type NotFoundError struct {
	Name              string
	MissingAttributes bool
	MissingGeometry   bool
}

func (e *NotFoundError) Error() string {
	where := "both the attribute and geometry tables"
	switch {
	case e.MissingAttributes && !e.MissingGeometry:
		where = "the attribute table"
	case e.MissingGeometry && !e.MissingAttributes:
		where = "the geometry table"
	}
	return fmt.Sprintf("suburb %q not found in %s", e.Name, where)
}

// Select matches name against both tables. When several rows share a name the
// first one in load order is used and the match counts say so.
func Select(ds *dataset.Dataset, name string) (types.SuburbView, error) {
	key := ds.Names.Fold(name)
	view := types.SuburbView{Name: name}

	if key != "" {
		for _, r := range ds.Attributes {
			if ds.Names.Fold(r.Name) != key {
				continue
			}
			if view.AttributeMatches == 0 {
				view.Attribute = r
			}
			view.AttributeMatches++
		}
		for _, g := range ds.Geometries {
			if ds.Names.Fold(g.Name) != key {
				continue
			}
			if view.GeometryMatches == 0 {
				view.Geometry = g
			}
			view.GeometryMatches++
		}
	}

	if view.AttributeMatches == 0 || view.GeometryMatches == 0 {
		return types.SuburbView{}, &NotFoundError{
			Name:              name,
			MissingAttributes: view.AttributeMatches == 0,
			MissingGeometry:   view.GeometryMatches == 0,
		}
	}
	view.Name = view.Attribute.Name
	return view, nil
}
