package report

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
	"github.com/twpayne/go-geom"

	"ptai/internal/projection"
	"ptai/internal/stats"
	"ptai/internal/types"
)

func v(f float64) sql.NullFloat64 { return sql.NullFloat64{Float64: f, Valid: true} }

func rows() []types.AttributeRow {
	return []types.AttributeRow{
		{Name: "Alpha", Train: v(10), Bus: v(20), LightRail: v(0), Metro: v(5), Total: v(35), IRSD: v(1000)},
		{Name: "Beta", Train: v(30), Bus: v(40), LightRail: v(0), Metro: v(15), Total: v(85), IRSD: v(900)},
	}
}

func alphaView(t *testing.T) types.SuburbView {
	t.Helper()
	mp := geom.NewMultiPolygon(geom.XY)
	require.NoError(t, mp.Push(geom.NewPolygonFlat(geom.XY, []float64{151, -34, 151, -33.9, 151.1, -33.9, 151.1, -34, 151, -34}, []int{10})))
	return types.SuburbView{
		Name:      "Alpha",
		Attribute: rows()[0],
		Geometry:  types.GeometryRow{Name: "ALPHA", Boundary: mp},
	}
}

func build(t *testing.T) *Report {
	t.Helper()
	r, err := Build(alphaView(t), stats.Summarize(rows(), stats.Listwise), projection.WGS84)
	require.NoError(t, err)
	return r
}

func TestBuild(t *testing.T) {
	r := build(t)
	assert.Equal(t, "Alpha", r.Suburb)
	require.Len(t, r.Modes, 4)
	assert.Equal(t, types.ColTrain, r.Modes[0].Column)
	assert.InDelta(t, 20, r.Modes[0].Average.Mean, 1e-9)
	assert.Equal(t, 10.0, r.Modes[0].Score.Float64)

	require.Len(t, r.Scores, 6)
	for _, c := range r.Scores {
		assert.Equal(t, c.Column == types.ColIRSD, c.Max, c.Column)
	}

	assert.InDelta(t, 151.05, r.Map.CentroidLon, 1e-9)
	assert.InDelta(t, -33.95, r.Map.CentroidLat, 1e-9)
	assert.True(t, r.Map.CentroidInside)
	assert.Greater(t, r.Map.AreaKm2, 100.0)
	assert.Equal(t, 4326, r.Map.Boundary.SRID())
}

func TestBuild_NoBoundary(t *testing.T) {
	view := alphaView(t)
	view.Geometry.Boundary = nil
	_, err := Build(view, stats.Summarize(rows(), stats.Listwise), projection.WGS84)
	assert.Error(t, err)
}

func TestScoreRow_TiesAndMissing(t *testing.T) {
	cells := scoreRow(types.AttributeRow{Train: v(5), Bus: v(5), Total: v(2)})
	var flagged []string
	for _, c := range cells {
		if c.Max {
			flagged = append(flagged, c.Column)
		}
	}
	assert.Equal(t, []string{types.ColTrain, types.ColBus}, flagged)

	for _, c := range scoreRow(types.AttributeRow{}) {
		assert.False(t, c.Max)
	}
}

func TestInterpretation(t *testing.T) {
	want := "- Bus PTAI: 20 vs Avg 30\n" +
		"- Train PTAI: 10 vs Avg 20\n" +
		"- Light Rail PTAI: 0, Metro PTAI: 5\n" +
		"- Total PTAI: 35.00, IRSD: 1000\n"
	assert.Equal(t, want, Interpretation(build(t)))
}

func TestInterpretation_Missing(t *testing.T) {
	r := build(t)
	r.IRSD = sql.NullFloat64{}
	r.Modes[1].Score = sql.NullFloat64{}
	out := Interpretation(r)
	assert.Contains(t, out, "Bus PTAI: n/a vs Avg 30")
	assert.Contains(t, out, "IRSD: n/a")
}

func TestWriteTerminal(t *testing.T) {
	var buf bytes.Buffer
	WriteTerminal(&buf, build(t), TerminalOptions{})
	out := buf.String()

	assert.Contains(t, out, "PTAI Scores and IRSD: Alpha")
	assert.Contains(t, out, "1000.00 *")
	assert.Contains(t, out, "(Avg: 20)")
	assert.Contains(t, out, "Interpretation for Alpha")
	assert.Contains(t, out, "Light Rail")
	assert.Contains(t, out, "zero_variance")
	assert.Contains(t, out, "-1.000")
	assert.NotContains(t, out, "\x1b[", "colour disabled")
}

func TestWriteChart(t *testing.T) {
	var buf bytes.Buffer
	writeChart(&buf, build(t))
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)

	// Bus avg is the scale maximum (30 vs scores up to 20), so its bar stops
	// before the marker at the end.
	bus := []rune(lines[1])
	assert.True(t, strings.HasPrefix(lines[1], "Bus "))
	assert.Equal(t, '|', bus[11+barWidth])
	assert.Equal(t, 27, strings.Count(lines[1], "█"))
}

func TestMapDocument(t *testing.T) {
	b, err := MapDocument(build(t))
	require.NoError(t, err)

	var doc struct {
		Type     string `json:"type"`
		Features []struct {
			Geometry struct {
				Type string `json:"type"`
			} `json:"geometry"`
			Properties map[string]any `json:"properties"`
		} `json:"features"`
	}
	require.NoError(t, json.Unmarshal(b, &doc))
	assert.Equal(t, "FeatureCollection", doc.Type)
	require.Len(t, doc.Features, 2)
	assert.Equal(t, "MultiPolygon", doc.Features[0].Geometry.Type)
	assert.Equal(t, "Alpha", doc.Features[0].Properties["name"])
	assert.Equal(t, 1000.0, doc.Features[0].Properties["irsd"])
	assert.Equal(t, "Point", doc.Features[1].Geometry.Type)
	assert.Equal(t, true, doc.Features[1].Properties["centroid_inside"])
}

func TestWriteXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "alpha.xlsx")
	require.NoError(t, WriteXLSX(path, build(t)))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	scores, ok := f.Sheet["Scores"]
	require.True(t, ok)
	assert.Equal(t, "Suburb", scores.Rows[0].Cells[0].String())
	assert.Equal(t, "Alpha", scores.Rows[1].Cells[0].String())
	assert.Equal(t, "10", scores.Rows[1].Cells[1].String())

	corr, ok := f.Sheet["Correlations"]
	require.True(t, ok)
	assert.Len(t, corr.Rows, 6)
	assert.Equal(t, "Light Rail", corr.Rows[3].Cells[0].String())
	assert.Equal(t, "zero_variance", corr.Rows[3].Cells[4].String())
}
