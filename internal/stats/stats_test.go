package stats

import (
	"database/sql"
	"math"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ptai/internal/types"
)

func v(f float64) sql.NullFloat64 { return sql.NullFloat64{Float64: f, Valid: true} }

var null = sql.NullFloat64{}

func alphaBeta() []types.AttributeRow {
	return []types.AttributeRow{
		{Name: "Alpha", Train: v(10), Bus: v(20), LightRail: v(0), Metro: v(5), Total: v(35), IRSD: v(1000)},
		{Name: "Beta", Train: v(30), Bus: v(40), LightRail: v(0), Metro: v(15), Total: v(85), IRSD: v(900)},
	}
}

func sample() []types.AttributeRow {
	return []types.AttributeRow{
		{Name: "A", Train: v(10), Bus: v(20), LightRail: v(1), Metro: v(5), Total: v(36), IRSD: v(1010)},
		{Name: "B", Train: v(30), Bus: v(45), LightRail: v(0), Metro: v(15), Total: v(90), IRSD: v(910)},
		{Name: "C", Train: v(12), Bus: v(60), LightRail: v(3), Metro: v(0), Total: v(75), IRSD: v(980)},
		{Name: "D", Train: v(50), Bus: v(10), LightRail: v(8), Metro: v(22), Total: v(90), IRSD: v(1100)},
		{Name: "E", Train: null, Bus: v(33), LightRail: v(2), Metro: v(7), Total: v(42), IRSD: v(870)},
		{Name: "F", Train: v(5), Bus: v(18), LightRail: v(0), Metro: v(1), Total: v(24), IRSD: null},
	}
}

func TestModeAverages_AlphaBeta(t *testing.T) {
	avgs := ModeAverages(alphaBeta())
	require.Len(t, avgs, 4)
	assert.Equal(t, types.ColTrain, avgs[0].Column)
	assert.InDelta(t, 20, avgs[0].Mean, 1e-9)
	assert.InDelta(t, 30, avgs[1].Mean, 1e-9)
	assert.InDelta(t, 0, avgs[2].Mean, 1e-9)
	assert.InDelta(t, 10, avgs[3].Mean, 1e-9)
}

func TestModeAverages_SkipsMissingPerColumn(t *testing.T) {
	avgs := ModeAverages(sample())
	train := avgs[0]
	assert.Equal(t, 5, train.N)
	assert.InDelta(t, (10.0+30+12+50+5)/5, train.Mean, 1e-9)
	assert.Equal(t, 6, avgs[1].N)
}

func TestModeAverages_NoValues(t *testing.T) {
	avgs := ModeAverages([]types.AttributeRow{{Name: "X"}})
	for _, a := range avgs {
		assert.False(t, a.Defined())
		assert.Equal(t, ReasonNoValues, a.Reason)
	}
}

func TestModeAverages_OrderIndependent(t *testing.T) {
	rows := sample()
	rev := slices.Clone(rows)
	slices.Reverse(rev)

	a, b := ModeAverages(rows), ModeAverages(rev)
	for i := range a {
		assert.InDelta(t, a[i].Mean, b[i].Mean, 1e-9, a[i].Column)
	}
}

func TestCorrelate_RangeAndReversal(t *testing.T) {
	for _, policy := range []Policy{Listwise, Pairwise} {
		rows := sample()
		rev := slices.Clone(rows)
		slices.Reverse(rev)

		a, b := Correlate(rows, policy), Correlate(rev, policy)
		require.Len(t, a, 5)
		for i := range a {
			require.True(t, a[i].Defined(), a[i].Column)
			assert.GreaterOrEqual(t, a[i].R, -1.0)
			assert.LessOrEqual(t, a[i].R, 1.0)
			assert.InDelta(t, a[i].R, b[i].R, 1e-9, a[i].Column)
		}
	}
}

func TestCorrelate_ListwiseUsesCompleteRows(t *testing.T) {
	got := Correlate(sample(), Listwise)
	for _, c := range got {
		assert.Equal(t, 4, c.N, c.Column)
	}
	pair := Correlate(sample(), Pairwise)
	assert.Equal(t, 4, pair[0].N) // Train: E has no Train, F has no IRSD
	assert.Equal(t, 5, pair[1].N)
}

func TestCorrelate_PoliciesDiffer(t *testing.T) {
	rows := []types.AttributeRow{
		{Name: "A", Train: v(1), Bus: v(5), LightRail: v(1), Metro: v(2), Total: v(9), IRSD: v(1)},
		{Name: "B", Train: v(2), Bus: v(3), LightRail: v(0), Metro: v(4), Total: v(9.5), IRSD: v(2)},
		{Name: "C", Train: v(3), Bus: v(8), LightRail: v(2), Metro: v(1), Total: v(14), IRSD: v(3)},
		{Name: "D", Train: v(4), Bus: v(6), LightRail: null, Metro: null, Total: null, IRSD: v(10)},
	}

	pair := Correlate(rows, Pairwise)
	want := Pearson([]float64{1, 2, 3, 4}, []float64{1, 2, 3, 10})
	assert.Equal(t, 4, pair[0].N)
	assert.InDelta(t, want.R, pair[0].R, 1e-12)
	assert.Less(t, pair[0].R, 0.99)
	assert.Equal(t, 4, pair[1].N)
	assert.Equal(t, 3, pair[3].N)

	list := Correlate(rows, Listwise)
	assert.Equal(t, 3, list[0].N)
	assert.InDelta(t, 1, list[0].R, 1e-9)
	assert.Equal(t, 3, list[1].N)
}

func TestNonFinite(t *testing.T) {
	inf := math.Inf(1)
	rows := []types.AttributeRow{
		{Name: "A", Train: v(inf), Bus: v(1), LightRail: v(1), Metro: v(1), Total: v(3), IRSD: v(900)},
		{Name: "B", Train: v(2), Bus: v(2), LightRail: v(2), Metro: v(2), Total: v(8), IRSD: v(950)},
		{Name: "C", Train: v(3), Bus: v(4), LightRail: v(0), Metro: v(5), Total: v(12), IRSD: v(1000)},
	}

	avgs := ModeAverages(rows)
	assert.False(t, avgs[0].Defined())
	assert.Equal(t, ReasonNonFinite, avgs[0].Reason)
	assert.True(t, avgs[1].Defined())

	c := Correlate(rows, Pairwise)
	assert.False(t, c[0].Defined())
	assert.Equal(t, ReasonNonFinite, c[0].Reason)
	assert.True(t, c[1].Defined())

	c0 := Pearson([]float64{1, math.NaN(), 3}, []float64{1, 2, 3})
	assert.Equal(t, ReasonNonFinite, c0.Reason)
}

func TestCorrelate_ZeroVariance(t *testing.T) {
	got := Correlate(alphaBeta(), Listwise)
	lightRail := got[2]
	assert.Equal(t, types.ColLightRail, lightRail.Column)
	assert.Equal(t, ReasonZeroVariance, lightRail.Reason)
	assert.True(t, math.IsNaN(lightRail.R))

	train := got[0]
	require.True(t, train.Defined())
	assert.InDelta(t, -1, train.R, 1e-9)
	assert.True(t, math.IsNaN(train.P))
}

func TestPearson_TooFew(t *testing.T) {
	c := Pearson([]float64{1}, []float64{2})
	assert.Equal(t, ReasonTooFewObservations, c.Reason)
	assert.False(t, c.Defined())

	c = Pearson(nil, nil)
	assert.Equal(t, ReasonTooFewObservations, c.Reason)
}

func TestPearson_KnownValue(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5}
	y := []float64{2, 4, 5, 4, 5}
	c := Pearson(x, y)
	require.True(t, c.Defined())
	assert.InDelta(t, 0.7746, c.R, 1e-4)
	assert.Equal(t, 0.775, c.Rounded())
	assert.InDelta(t, 0.1240, c.P, 1e-3)
}

func TestPearson_Perfect(t *testing.T) {
	c := Pearson([]float64{1, 2, 3}, []float64{3, 2, 1})
	assert.InDelta(t, -1, c.R, 1e-12)
	assert.InDelta(t, 0, c.P, 1e-9)
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, Pairwise, p)

	p, err = ParsePolicy(" Listwise ")
	require.NoError(t, err)
	assert.Equal(t, Listwise, p)

	_, err = ParsePolicy("casewise")
	assert.Error(t, err)
}

func TestSummarize(t *testing.T) {
	s := Summarize(alphaBeta(), Listwise)
	a, ok := s.Average(types.ColTrain)
	require.True(t, ok)
	assert.InDelta(t, 20, a.Mean, 1e-9)
	_, ok = s.Average(types.ColTotal)
	assert.False(t, ok)
	assert.Len(t, s.Correlations, 5)
}
