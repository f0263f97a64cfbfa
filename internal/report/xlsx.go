package report

import (
	"math"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// WriteXLSX saves the score table and the correlation table as two sheets.
func WriteXLSX(path string, r *Report) error {
	f := xlsx.NewFile()

	scores, err := f.AddSheet("Scores")
	if err != nil {
		return eris.Wrap(err, "report: add Scores sheet")
	}
	header := scores.AddRow()
	header.AddCell().SetString("Suburb")
	for _, c := range r.Scores {
		header.AddCell().SetString(c.Column)
	}
	row := scores.AddRow()
	row.AddCell().SetString(r.Suburb)
	for _, c := range r.Scores {
		cell := row.AddCell()
		if c.Value.Valid {
			cell.SetFloat(c.Value.Float64)
		}
	}

	corr, err := f.AddSheet("Correlations")
	if err != nil {
		return eris.Wrap(err, "report: add Correlations sheet")
	}
	header = corr.AddRow()
	for _, h := range []string{"PTAI Component", "Correlation with IRSD", "p-value", "n", "note"} {
		header.AddCell().SetString(h)
	}
	for _, c := range r.Correlations {
		row := corr.AddRow()
		row.AddCell().SetString(c.Column)
		rc, pc := row.AddCell(), row.AddCell()
		if c.Defined() {
			rc.SetFloat(c.Rounded())
			if !math.IsNaN(c.P) {
				pc.SetFloat(c.P)
			}
		}
		row.AddCell().SetInt(c.N)
		row.AddCell().SetString(string(c.Reason))
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "report: save %s", path)
	}
	return nil
}
