// Package schema maps raw column identifiers of the attribute table onto the
// display names used by the rest of the program and checks that every column
// the dashboard needs is present.
package schema

import (
	"fmt"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/rotisserie/eris"

	"ptai/internal/types"
)

// Mapping holds the raw identifier for each display column.
type Mapping struct {
	Name      string `mapstructure:"name" yaml:"name"`
	Train     string `mapstructure:"train" yaml:"train"`
	Bus       string `mapstructure:"bus" yaml:"bus"`
	LightRail string `mapstructure:"light_rail" yaml:"light_rail"`
	Metro     string `mapstructure:"metro" yaml:"metro"`
	Total     string `mapstructure:"total" yaml:"total"`
	IRSD      string `mapstructure:"irsd" yaml:"irsd"`
}

// DefaultMapping returns the identifiers used by the Sydney SA2 PTAI extract.
func DefaultMapping() Mapping {
	return Mapping{
		Name:      "SA2_NAME_2011",
		Train:     "pta_train",
		Bus:       "pta_bus",
		LightRail: "pta_lightrail",
		Metro:     "pta_metro",
		Total:     "pta_score",
		IRSD:      "IRSD_SCORE",
	}
}

type column struct {
	raw     string
	display string
}

// columns lists the required columns in the order they are reported.
func (m Mapping) columns() []column {
	return []column{
		{m.Name, types.ColSuburb},
		{m.Train, types.ColTrain},
		{m.Bus, types.ColBus},
		{m.LightRail, types.ColLightRail},
		{m.Metro, types.ColMetro},
		{m.Total, types.ColTotal},
		{m.IRSD, types.ColIRSD},
	}
}

// Renames returns the old→new renames that Normalize would apply to names.
// A raw column is left alone when its display name is already taken.
func (m Mapping) Renames(names []string) map[string]string {
	present := make(map[string]bool, len(names))
	for _, n := range names {
		present[n] = true
	}
	out := make(map[string]string)
	for _, c := range m.columns() {
		if c.raw == "" || c.raw == c.display {
			continue
		}
		if present[c.raw] && !present[c.display] {
			out[c.raw] = c.display
			present[c.display] = true
		}
	}
	return out
}

// Normalize returns names with raw identifiers replaced by display names.
// Applying it to its own output changes nothing.
func (m Mapping) Normalize(names []string) []string {
	renames := m.Renames(names)
	out := make([]string, len(names))
	for i, n := range names {
		if d, ok := renames[n]; ok {
			out[i] = d
			continue
		}
		out[i] = n
	}
	return out
}

// NormalizeFrame renames the columns of df and validates the result.
func (m Mapping) NormalizeFrame(df dataframe.DataFrame) (dataframe.DataFrame, error) {
	for oldName, newName := range m.Renames(df.Names()) {
		df = df.Rename(newName, oldName)
		if df.Err != nil {
			return df, eris.Wrapf(df.Err, "schema: rename %s", oldName)
		}
	}
	if err := m.Validate(df.Names()); err != nil {
		return df, err
	}
	return df, nil
}

// Validate checks that every display column is present in names.
func (m Mapping) Validate(names []string) error {
	present := make(map[string]bool, len(names))
	for _, n := range names {
		present[n] = true
	}
	var missing []MissingColumn
	for _, c := range m.columns() {
		if !present[c.display] {
			missing = append(missing, MissingColumn{Display: c.display, Raw: c.raw})
		}
	}
	if len(missing) > 0 {
		return &SchemaError{Missing: missing}
	}
	return nil
}

// MissingColumn names one absent column.
type MissingColumn struct {
	Display string
	Raw     string
}

func (c MissingColumn) String() string {
	if c.Raw == "" || c.Raw == c.Display {
		return c.Display
	}
	return fmt.Sprintf("%s (%s)", c.Display, c.Raw)
}

// SchemaError reports required columns absent after normalization.
type SchemaError struct {
	Missing []MissingColumn
}

func (e *SchemaError) Error() string {
	parts := make([]string, len(e.Missing))
	for i, c := range e.Missing {
		parts[i] = c.String()
	}
	return "missing columns: " + strings.Join(parts, ", ")
}
