// Package stats computes the dataset-wide summary shown next to every suburb:
// per-mode averages and the correlation of each accessibility component with
// the IRSD score.
package stats

import (
	"math"
	"strings"

	"github.com/rotisserie/eris"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"ptai/internal/types"
)

// Reason explains why a statistic could not be computed.
type Reason string

const (
	ReasonNoValues           Reason = "no_values"
	ReasonTooFewObservations Reason = "too_few_observations"
	ReasonZeroVariance       Reason = "zero_variance"
	ReasonNonFinite          Reason = "non_finite"
)

// Policy selects how rows with missing values are dropped before correlating.
type Policy string

const (
	// Pairwise drops a row only when the column itself or IRSD is missing.
	Pairwise Policy = "pairwise"
	// Listwise drops a row when any of the correlated columns or IRSD is missing,
	// so every coefficient is computed over the same rows.
	Listwise Policy = "listwise"
)

// ParsePolicy accepts "pairwise" or "listwise"; empty means Pairwise.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case "", Pairwise:
		return Pairwise, nil
	case Listwise:
		return Listwise, nil
	}
	return "", eris.Errorf("stats: unknown missing-value policy %q", s)
}

// CorrelationColumns are correlated against IRSD, in display order.
var CorrelationColumns = []string{types.ColTrain, types.ColBus, types.ColLightRail, types.ColMetro, types.ColTotal}

// Average is the mean of one mode column.
type Average struct {
	Column string
	Mean   float64
	N      int
	Reason Reason
}

// Defined reports whether Mean holds a value.
func (a Average) Defined() bool { return a.Reason == "" }

// Correlation is Pearson's r between a column and the IRSD score.
type Correlation struct {
	Column string
	R      float64
	P      float64 // two-sided; NaN when fewer than 3 pairs
	N      int
	Reason Reason
}

// Defined reports whether R holds a value.
func (c Correlation) Defined() bool { return c.Reason == "" }

// Rounded returns R rounded to 3 decimal places.
func (c Correlation) Rounded() float64 {
	return math.Round(c.R*1000) / 1000
}

// Summary bundles the dataset-wide statistics.
type Summary struct {
	Averages     []Average
	Correlations []Correlation
}

// Average returns the average for the named mode column.
func (s Summary) Average(col string) (Average, bool) {
	for _, a := range s.Averages {
		if a.Column == col {
			return a, true
		}
	}
	return Average{}, false
}

// Summarize computes averages and correlations over rows.
func Summarize(rows []types.AttributeRow, policy Policy) Summary {
	return Summary{
		Averages:     ModeAverages(rows),
		Correlations: Correlate(rows, policy),
	}
}

// ModeAverages returns the mean of each mode column. Missing values are
// excluded per column.
func ModeAverages(rows []types.AttributeRow) []Average {
	out := make([]Average, 0, len(types.ModeColumns))
	for _, col := range types.ModeColumns {
		vals := column(rows, col)
		a := Average{Column: col, N: len(vals)}
		switch {
		case len(vals) == 0:
			a.Reason = ReasonNoValues
			a.Mean = math.NaN()
		case !finite(vals):
			a.Reason = ReasonNonFinite
			a.Mean = math.NaN()
		default:
			a.Mean = stat.Mean(vals, nil)
		}
		out = append(out, a)
	}
	return out
}

// Correlate computes r for every column in CorrelationColumns.
func Correlate(rows []types.AttributeRow, policy Policy) []Correlation {
	if policy == Listwise {
		rows = completeRows(rows)
	}
	out := make([]Correlation, 0, len(CorrelationColumns))
	for _, col := range CorrelationColumns {
		x, y := paired(rows, col)
		c := Pearson(x, y)
		c.Column = col
		out = append(out, c)
	}
	return out
}

// Pearson computes the correlation coefficient of x and y with its two-sided
// p-value. x and y must have equal length.
func Pearson(x, y []float64) Correlation {
	n := len(x)
	c := Correlation{N: n, R: math.NaN(), P: math.NaN()}
	if n < 2 {
		c.Reason = ReasonTooFewObservations
		return c
	}
	if !finite(x) || !finite(y) {
		c.Reason = ReasonNonFinite
		return c
	}
	if constant(x) || constant(y) {
		c.Reason = ReasonZeroVariance
		return c
	}

	r := stat.Correlation(x, y, nil)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		c.Reason = ReasonNonFinite
		return c
	}
	c.R = math.Max(-1, math.Min(1, r))
	if n > 2 {
		c.P = pValue(c.R, n)
	}
	return c
}

func pValue(r float64, n int) float64 {
	if math.Abs(r) == 1 {
		return 0
	}
	df := float64(n - 2)
	t := r * math.Sqrt(df/(1-r*r))
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	return 2 * (1 - dist.CDF(math.Abs(t)))
}

func finite(v []float64) bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

func constant(v []float64) bool {
	for _, x := range v[1:] {
		if x != v[0] {
			return false
		}
	}
	return true
}

func column(rows []types.AttributeRow, col string) []float64 {
	vals := make([]float64, 0, len(rows))
	for _, r := range rows {
		if v, ok := r.Value(col); ok && v.Valid {
			vals = append(vals, v.Float64)
		}
	}
	return vals
}

func paired(rows []types.AttributeRow, col string) (x, y []float64) {
	for _, r := range rows {
		v, ok := r.Value(col)
		if !ok || !v.Valid || !r.IRSD.Valid {
			continue
		}
		x = append(x, v.Float64)
		y = append(y, r.IRSD.Float64)
	}
	return x, y
}

func completeRows(rows []types.AttributeRow) []types.AttributeRow {
	out := make([]types.AttributeRow, 0, len(rows))
	for _, r := range rows {
		if !r.IRSD.Valid {
			continue
		}
		ok := true
		for _, col := range CorrelationColumns {
			if v, _ := r.Value(col); !v.Valid {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, r)
		}
	}
	return out
}
