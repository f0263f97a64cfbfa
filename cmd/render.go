package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"ptai/internal/dataset"
	"ptai/internal/names"
	"ptai/internal/report"
	"ptai/internal/schema"
	"ptai/internal/selector"
	"ptai/internal/stats"
)

// outputs names the optional files written next to the terminal report.
type outputs struct {
	mapPath  string
	xlsxPath string
}

// render runs one full cycle for name: load, select, summarize, present.
// Any error ends the cycle before anything is written.
func (a *app) render(ctx context.Context, w io.Writer, name string, out outputs) error {
	log := zap.L().With(zap.String("component", "render"), zap.String("cycle", uuid.New().String()))
	log.Debug("render requested", zap.String("input", name))

	ds, err := a.loader.Load(ctx)
	if err != nil {
		return err
	}

	view, err := selector.Select(ds, name)
	if err != nil {
		return err
	}
	if view.AttributeMatches > 1 || view.GeometryMatches > 1 {
		log.Warn("suburb name matched more than one row; using the first",
			zap.String("suburb", view.Name),
			zap.Int("attribute_matches", view.AttributeMatches),
			zap.Int("geometry_matches", view.GeometryMatches),
		)
	}

	summary := stats.Summarize(ds.Attributes, a.policy)
	r, err := report.Build(view, summary, ds.CRS)
	if err != nil {
		return eris.Wrapf(err, "render %s", view.Name)
	}

	report.WriteTerminal(w, r, report.TerminalOptions{Color: a.color})
	log.Debug("rendered", zap.String("suburb", view.Name))

	if out.mapPath != "" {
		if err := report.WriteMap(out.mapPath, r); err != nil {
			return err
		}
		fmt.Fprintf(w, "Map written to %s\n", out.mapPath)
	}
	if out.xlsxPath != "" {
		if err := report.WriteXLSX(out.xlsxPath, r); err != nil {
			return err
		}
		fmt.Fprintf(w, "Workbook written to %s\n", out.xlsxPath)
	}
	return nil
}

// filterSuburbs returns the entries of list whose folded form contains the
// folded query. An empty query keeps everything.
func filterSuburbs(list []string, query string, f names.Folder) []string {
	q := f.Fold(query)
	if q == "" {
		return list
	}
	var out []string
	for _, s := range list {
		if strings.Contains(f.Fold(s), q) {
			out = append(out, s)
		}
	}
	return out
}

// describe turns the typed load and selection errors into a short message
// for the user. Anything else is printed as is.
func describe(err error) string {
	var (
		notFound  *selector.NotFoundError
		schemaErr *schema.SchemaError
		integrity *dataset.DataIntegrityError
		loadErr   *dataset.LoadError
	)
	switch {
	case errors.As(err, &notFound):
		return notFound.Error()
	case errors.As(err, &schemaErr):
		return "attribute table: " + schemaErr.Error()
	case errors.As(err, &integrity):
		return integrity.Error()
	case errors.As(err, &loadErr):
		return fmt.Sprintf("could not load %s: %v", loadErr.Source, loadErr.Err)
	}
	return err.Error()
}
