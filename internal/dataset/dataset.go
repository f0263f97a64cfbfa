// Package dataset loads the attribute and geometry tables once and hands out
// an immutable Dataset.
package dataset

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"ptai/internal/geometry"
	"ptai/internal/names"
	"ptai/internal/projection"
	"ptai/internal/schema"
	"ptai/internal/types"
)

// Options configures a Loader.
type Options struct {
	Attributes        AttributeSource
	GeometryPath      string
	GeometryNameField string
	// SourceCRS overrides the CRS read from the .prj file, e.g. "EPSG:7844".
	SourceCRS string
	Columns   schema.Mapping
	Names     names.Folder
	// StrictUnique fails the load when a name occurs twice in either table.
	StrictUnique bool
}

// Dataset is the loaded pair of tables. It must not be modified.
type Dataset struct {
	Attributes []types.AttributeRow
	Geometries []types.GeometryRow
	CRS        projection.CRS
	Names      names.Folder
}

// Suburbs returns the sorted, de-duplicated, non-blank attribute names.
func (d *Dataset) Suburbs() []string {
	seen := make(map[string]bool, len(d.Attributes))
	out := make([]string, 0, len(d.Attributes))
	for _, r := range d.Attributes {
		if r.Name == "" || seen[r.Name] {
			continue
		}
		seen[r.Name] = true
		out = append(out, r.Name)
	}
	sort.Strings(out)
	return out
}

// Loader reads the inputs on the first call to Load and returns the same
// result on every later call.
type Loader struct {
	opts Options
	once sync.Once
	ds   *Dataset
	err  error
}

// NewLoader returns a Loader for opts.
func NewLoader(opts Options) *Loader {
	return &Loader{opts: opts}
}

// Load returns the dataset, reading it if this is the first call. Concurrent
// callers wait for the single load to finish.
func (l *Loader) Load(ctx context.Context) (*Dataset, error) {
	l.once.Do(func() {
		l.ds, l.err = load(ctx, l.opts)
	})
	return l.ds, l.err
}

func load(ctx context.Context, opts Options) (*Dataset, error) {
	log := zap.L().With(zap.String("component", "dataset"))
	if opts.Attributes == nil {
		return nil, &LoadError{Source: "attributes", Err: eris.New("no attribute source configured")}
	}
	start := time.Now()

	ds := &Dataset{Names: opts.Names}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		df, err := opts.Attributes.Frame(gctx)
		if err != nil {
			return &LoadError{Source: opts.Attributes.String(), Err: err}
		}
		rows, err := attributeRows(df, opts.Columns)
		if err != nil {
			var se *schema.SchemaError
			if errors.As(err, &se) {
				return se
			}
			return &LoadError{Source: opts.Attributes.String(), Err: err}
		}
		ds.Attributes = rows
		return nil
	})
	g.Go(func() error {
		rows, err := geometry.LoadShapefile(opts.GeometryPath, opts.GeometryNameField)
		if err != nil {
			return &LoadError{Source: opts.GeometryPath, Err: err}
		}
		ds.Geometries = rows
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	crs, err := resolveCRS(opts.SourceCRS, ds.Geometries)
	if err != nil {
		return nil, &LoadError{Source: opts.GeometryPath, Err: err}
	}
	ds.CRS = crs

	if err := checkDuplicates(ds, opts.StrictUnique, log); err != nil {
		return nil, err
	}

	log.Info("dataset loaded",
		zap.Int("attributes", len(ds.Attributes)),
		zap.Int("geometries", len(ds.Geometries)),
		zap.String("crs", crs.Name),
		zap.Duration("elapsed", time.Since(start).Truncate(time.Millisecond)),
	)
	return ds, nil
}

func resolveCRS(override string, rows []types.GeometryRow) (projection.CRS, error) {
	if override != "" {
		return projection.FromEPSG(override)
	}
	var wkt string
	if len(rows) > 0 {
		wkt = rows[0].CRS
	}
	return projection.ParseWKT(wkt)
}

// checkDuplicates logs names that occur more than once; in strict mode it
// fails with a DataIntegrityError instead.
func checkDuplicates(ds *Dataset, strict bool, log *zap.Logger) error {
	attrNames := make([]string, len(ds.Attributes))
	for i, r := range ds.Attributes {
		attrNames[i] = r.Name
	}
	geomNames := make([]string, len(ds.Geometries))
	for i, r := range ds.Geometries {
		geomNames[i] = r.Name
	}

	for _, tbl := range []struct {
		name  string
		names []string
	}{{"attribute", attrNames}, {"geometry", geomNames}} {
		dups := duplicates(tbl.names, ds.Names)
		if len(dups) == 0 {
			continue
		}
		if strict {
			return &DataIntegrityError{Table: tbl.name, Duplicates: dups}
		}
		log.Warn("duplicate area names, first row wins",
			zap.String("table", tbl.name),
			zap.Strings("names", dups),
		)
	}
	return nil
}

func duplicates(list []string, f names.Folder) []string {
	count := make(map[string]int, len(list))
	first := make(map[string]string, len(list))
	for _, n := range list {
		if n == "" {
			continue
		}
		k := f.Fold(n)
		if _, ok := first[k]; !ok {
			first[k] = n
		}
		count[k]++
	}
	var out []string
	for k, c := range count {
		if c > 1 {
			out = append(out, first[k])
		}
	}
	sort.Strings(out)
	return out
}
