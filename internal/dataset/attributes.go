package dataset

import (
	"context"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/rotisserie/eris"

	"ptai/internal/schema"
	"ptai/internal/types"
)

// AttributeSource yields the raw attribute table as a string-typed DataFrame.
type AttributeSource interface {
	Frame(ctx context.Context) (dataframe.DataFrame, error)
	String() string
}

// CSVFile is an attribute table stored as a comma-separated file with a
// header row.
type CSVFile string

func (f CSVFile) String() string { return string(f) }

// Frame reads the file with every column typed as string.
func (f CSVFile) Frame(_ context.Context) (dataframe.DataFrame, error) {
	file, err := os.Open(string(f))
	if err != nil {
		return dataframe.DataFrame{}, eris.Wrap(err, "dataset: open attribute table")
	}
	defer file.Close()

	df := dataframe.ReadCSV(file,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.WithLazyQuotes(true),
	)
	if df.Err != nil {
		return df, eris.Wrap(df.Err, "dataset: parse attribute table")
	}
	return df, nil
}

var nullCells = map[string]bool{"": true, "na": true, "nan": true, "null": true, "none": true, "<nil>": true}

// parseScore converts a cell into a score. Thousands separators are ignored.
// Infinite values are rejected like any other non-number.
func parseScore(cell string) (types.Score, error) {
	s := strings.TrimSpace(cell)
	if nullCells[strings.ToLower(s)] {
		return types.Score{}, nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return types.Score{}, err
	}
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return types.Score{}, eris.Errorf("dataset: non-finite value %q", cell)
	}
	return types.Score{Float64: v, Valid: true}, nil
}

// attributeRows normalizes df and converts it to rows.
func attributeRows(df dataframe.DataFrame, mapping schema.Mapping) ([]types.AttributeRow, error) {
	df = trimHeader(df)
	df, err := mapping.NormalizeFrame(df)
	if err != nil {
		return nil, err
	}

	names := df.Col(types.ColSuburb).Records()
	rows := make([]types.AttributeRow, len(names))
	for i, n := range names {
		if nullCells[strings.ToLower(strings.TrimSpace(n))] {
			n = ""
		}
		rows[i].Name = strings.TrimSpace(n)
	}

	targets := []struct {
		col string
		set func(r *types.AttributeRow, s types.Score)
	}{
		{types.ColTrain, func(r *types.AttributeRow, s types.Score) { r.Train = s }},
		{types.ColBus, func(r *types.AttributeRow, s types.Score) { r.Bus = s }},
		{types.ColLightRail, func(r *types.AttributeRow, s types.Score) { r.LightRail = s }},
		{types.ColMetro, func(r *types.AttributeRow, s types.Score) { r.Metro = s }},
		{types.ColTotal, func(r *types.AttributeRow, s types.Score) { r.Total = s }},
		{types.ColIRSD, func(r *types.AttributeRow, s types.Score) { r.IRSD = s }},
	}
	for _, tgt := range targets {
		for i, cell := range df.Col(tgt.col).Records() {
			s, err := parseScore(cell)
			if err != nil {
				// header is line 1
				return nil, eris.Errorf("dataset: column %s line %d: invalid number %q", tgt.col, i+2, cell)
			}
			tgt.set(&rows[i], s)
		}
	}
	return rows, nil
}

// trimHeader strips a UTF-8 byte order mark and surrounding spaces from the
// column names.
func trimHeader(df dataframe.DataFrame) dataframe.DataFrame {
	for _, n := range df.Names() {
		clean := strings.TrimSpace(strings.TrimPrefix(n, "\ufeff"))
		if clean != n {
			df = df.Rename(clean, n)
		}
	}
	return df
}
