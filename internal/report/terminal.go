package report

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"ptai/internal/stats"
	"ptai/internal/types"
)

const barWidth = 40

// TerminalOptions controls text rendering.
type TerminalOptions struct {
	Color bool
}

// WriteTerminal renders every dashboard section except the map to w.
func WriteTerminal(w io.Writer, r *Report, opts TerminalOptions) {
	heading := color.New(color.FgCyan, color.Bold)
	highlight := color.New(color.FgGreen, color.Bold)
	if !opts.Color {
		heading.DisableColor()
		highlight.DisableColor()
	}

	heading.Fprintf(w, "\nPTAI Scores and IRSD: %s\n", r.Suburb)
	writeScores(w, r.Scores, highlight)

	heading.Fprintf(w, "\nPTAI Modes vs IRSD Score\n")
	writeChart(w, r)

	heading.Fprintf(w, "\nInterpretation for %s\n", r.Suburb)
	fmt.Fprint(w, Interpretation(r))

	heading.Fprintf(w, "\nCorrelation between PTAI Modes and IRSD Score\n")
	WriteCorrelations(w, r.Correlations)

	fmt.Fprintf(w, "\nBoundary centroid: %.5f, %.5f  (area %.2f km²)\n", r.Map.CentroidLat, r.Map.CentroidLon, r.Map.AreaKm2)
}

func writeScores(w io.Writer, cells []Cell, highlight *color.Color) {
	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)

	header := make([]string, len(cells))
	row := make([]string, len(cells))
	for i, c := range cells {
		header[i] = c.Column
		row[i] = formatScore(c.Value, "%.2f")
		if c.Max {
			row[i] = highlight.Sprint(row[i] + " *")
		}
	}
	table.SetHeader(header)
	table.Append(row)
	table.Render()
	fmt.Fprintln(w, "* highest value in row")
}

// writeChart draws one horizontal bar per mode with a '|' marking the
// dataset average.
func writeChart(w io.Writer, r *Report) {
	scale := 1.0
	for _, m := range r.Modes {
		if m.Score.Valid {
			scale = math.Max(scale, m.Score.Float64)
		}
		if m.Average.Defined() {
			scale = math.Max(scale, m.Average.Mean)
		}
	}

	for _, m := range r.Modes {
		cells := []rune(strings.Repeat(" ", barWidth+1))
		if m.Score.Valid && m.Score.Float64 > 0 {
			n := int(math.Round(m.Score.Float64 / scale * barWidth))
			for i := 0; i < n && i < len(cells); i++ {
				cells[i] = '█'
			}
		}
		avgLabel := "Avg: n/a"
		if m.Average.Defined() {
			pos := int(math.Round(m.Average.Mean / scale * barWidth))
			if pos >= 0 && pos < len(cells) {
				cells[pos] = '|'
			}
			avgLabel = fmt.Sprintf("Avg: %.0f", m.Average.Mean)
		}
		fmt.Fprintf(w, "%-10s %s %6s  (%s)\n", m.Column, string(cells), formatScore(m.Score, "%.0f"), avgLabel)
	}
}

// Interpretation is the narrative block for the selected suburb.
func Interpretation(r *Report) string {
	mode := func(col string) Mode {
		for _, m := range r.Modes {
			if m.Column == col {
				return m
			}
		}
		return Mode{Column: col}
	}
	avg := func(m Mode) string {
		if !m.Average.Defined() {
			return "n/a"
		}
		return fmt.Sprintf("%.0f", m.Average.Mean)
	}
	train, bus := mode(types.ColTrain), mode(types.ColBus)
	lr, metro := mode(types.ColLightRail), mode(types.ColMetro)

	var b strings.Builder
	fmt.Fprintf(&b, "- Bus PTAI: %s vs Avg %s\n", formatScore(bus.Score, "%.0f"), avg(bus))
	fmt.Fprintf(&b, "- Train PTAI: %s vs Avg %s\n", formatScore(train.Score, "%.0f"), avg(train))
	fmt.Fprintf(&b, "- Light Rail PTAI: %s, Metro PTAI: %s\n", formatScore(lr.Score, "%.0f"), formatScore(metro.Score, "%.0f"))
	fmt.Fprintf(&b, "- Total PTAI: %s, IRSD: %s\n", formatScore(r.Total, "%.2f"), formatScore(r.IRSD, "%.0f"))
	return b.String()
}

// WriteCorrelations renders the correlation table and the reading note.
func WriteCorrelations(w io.Writer, cs []stats.Correlation) {
	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"PTAI Component", "Correlation with IRSD", "p-value", "n"})
	for _, c := range cs {
		r, p := string(c.Reason), ""
		if c.Defined() {
			r = fmt.Sprintf("%.3f", c.Rounded())
			if !math.IsNaN(c.P) {
				p = fmt.Sprintf("%.4f", c.P)
			}
		}
		table.Append([]string{c.Column, r, p, fmt.Sprint(c.N)})
	}
	table.Render()
	fmt.Fprintln(w, "Values closer to +1 or -1 suggest stronger relationships.")
	fmt.Fprintln(w, "Weak correlations (near 0) indicate PTAI mode alone may not predict socio-economic advantage.")
}

func formatScore(s types.Score, format string) string {
	if !s.Valid {
		return "n/a"
	}
	return fmt.Sprintf(format, s.Float64)
}
