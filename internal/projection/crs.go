// Package projection converts boundary coordinates from the CRS described by
// a shapefile's .prj file to WGS84 longitude/latitude.
//
// Geographic CRSs on GDA94, GDA2020 and WGS84 pass through unchanged; the
// datum offsets between them are below a couple of metres and do not matter
// for drawing a suburb outline. Projected CRSs are supported for Lambert
// Conformal Conic (2SP) and Transverse Mercator, which covers the MGA zones.
package projection

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
)

// Kind classifies a CRS.
type Kind int

const (
	Geographic Kind = iota
	Lambert
	Mercator
)

// CRS is a parsed coordinate reference system.
type CRS struct {
	Name string
	Kind Kind
	LCC  LambertConformal
	TM   TransverseMercator

	// UnitToMetre scales projected coordinates to metres.
	UnitToMetre float64
}

// WGS84 is the target of every reprojection.
var WGS84 = CRS{Name: "WGS 84", Kind: Geographic}

var (
	reHead     = regexp.MustCompile(`^\s*(PROJCS|GEOGCS|PROJCRS|GEOGCRS)\s*\[\s*"([^"]*)"`)
	reProj     = regexp.MustCompile(`PROJECTION\s*\[\s*"([^"]+)"`)
	reParam    = regexp.MustCompile(`PARAMETER\s*\[\s*"([^"]+)"\s*,\s*([-+0-9.eE]+)`)
	reSpheroid = regexp.MustCompile(`SPHEROID\s*\[\s*"[^"]*"\s*,\s*([-+0-9.eE]+)\s*,\s*([-+0-9.eE]+)`)
	reUnit     = regexp.MustCompile(`UNIT\s*\[\s*"[^"]*"\s*,\s*([-+0-9.eE]+)`)
)

// ParseWKT reads the ESRI/OGC WKT found in .prj files. An empty string is
// treated as geographic coordinates.
func ParseWKT(wkt string) (CRS, error) {
	wkt = strings.TrimSpace(wkt)
	if wkt == "" {
		return WGS84, nil
	}
	head := reHead.FindStringSubmatch(wkt)
	if head == nil {
		return CRS{}, eris.New("projection: unrecognised WKT")
	}
	name := head[2]
	if head[1] == "GEOGCS" || head[1] == "GEOGCRS" {
		return CRS{Name: name, Kind: Geographic}, nil
	}

	proj := reProj.FindStringSubmatch(wkt)
	method := "none"
	if proj != nil {
		method = strings.ToLower(proj[1])
	}
	var kind Kind
	switch {
	case strings.Contains(method, "lambert_conformal_conic"):
		kind = Lambert
	case strings.Contains(method, "transverse_mercator"):
		kind = Mercator
	default:
		if proj != nil {
			method = proj[1]
		}
		return CRS{}, eris.Errorf("projection: unsupported projection %q in %s", method, name)
	}

	params := make(map[string]float64)
	for _, m := range reParam.FindAllStringSubmatch(wkt, -1) {
		val, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			return CRS{}, eris.Wrapf(err, "projection: parameter %s", m[1])
		}
		params[strings.ToLower(m[1])] = val
	}

	a, inv := 6378137.0, 298.257222101
	if sph := reSpheroid.FindStringSubmatch(wkt); sph != nil {
		sa, errA := strconv.ParseFloat(sph[1], 64)
		sf, errF := strconv.ParseFloat(sph[2], 64)
		if errA == nil && errF == nil && sf != 0 {
			a, inv = sa, sf
		}
	}

	unit := 1.0
	if units := reUnit.FindAllStringSubmatch(wkt, -1); len(units) > 0 {
		if u, err := strconv.ParseFloat(units[len(units)-1][1], 64); err == nil && u > 0 {
			unit = u
		}
	}

	// False easting/northing are expressed in the linear unit.
	if kind == Mercator {
		scale, ok := params["scale_factor"]
		if !ok {
			scale = 1
		}
		tm := TransverseMercator{
			SemiMajor:     a,
			InvFlattening: inv,
			LatOrigin:     params["latitude_of_origin"],
			CentralMer:    params["central_meridian"],
			ScaleFactor:   scale,
			FalseEasting:  params["false_easting"] * unit,
			FalseNorthing: params["false_northing"] * unit,
		}
		return CRS{Name: name, Kind: Mercator, TM: tm, UnitToMetre: unit}, nil
	}

	lcc := LambertConformal{
		SemiMajor:     a,
		InvFlattening: inv,
		LatOrigin:     params["latitude_of_origin"],
		CentralMer:    params["central_meridian"],
		StdParallel1:  params["standard_parallel_1"],
		StdParallel2:  params["standard_parallel_2"],
		FalseEasting:  params["false_easting"],
		FalseNorthing: params["false_northing"],
	}
	if _, ok := params["standard_parallel_2"]; !ok {
		lcc.StdParallel2 = lcc.StdParallel1
	}
	lcc.FalseEasting *= unit
	lcc.FalseNorthing *= unit

	return CRS{Name: name, Kind: Lambert, LCC: lcc, UnitToMetre: unit}, nil
}

// FromEPSG resolves the handful of codes used for Australian boundary files.
func FromEPSG(code string) (CRS, error) {
	c := strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(code)), "EPSG:")
	switch c {
	case "4326":
		return WGS84, nil
	case "4283":
		return CRS{Name: "GDA94", Kind: Geographic}, nil
	case "7844":
		return CRS{Name: "GDA2020", Kind: Geographic}, nil
	case "3308":
		return CRS{Name: "GDA94 / NSW Lambert", Kind: Lambert, LCC: NSWLambert, UnitToMetre: 1}, nil
	case "8058":
		return CRS{Name: "GDA2020 / NSW Lambert", Kind: Lambert, LCC: NSWLambert, UnitToMetre: 1}, nil
	}
	// MGA zones 49 to 56: EPSG:28349-28356 on GDA94, EPSG:7849-7856 on GDA2020.
	if n, err := strconv.Atoi(c); err == nil {
		switch {
		case n >= 28349 && n <= 28356:
			zone := n - 28300
			return CRS{Name: "GDA94 / MGA zone " + strconv.Itoa(zone), Kind: Mercator, TM: MGAZone(zone), UnitToMetre: 1}, nil
		case n >= 7849 && n <= 7856:
			zone := n - 7800
			return CRS{Name: "GDA2020 / MGA zone " + strconv.Itoa(zone), Kind: Mercator, TM: MGAZone(zone), UnitToMetre: 1}, nil
		}
	}
	return CRS{}, eris.Errorf("projection: unsupported EPSG code %q", code)
}

// ToLonLat converts one coordinate pair.
func (c CRS) ToLonLat(x, y float64) (lon, lat float64) {
	switch c.Kind {
	case Lambert:
		return c.LCC.Inverse(x*c.UnitToMetre, y*c.UnitToMetre)
	case Mercator:
		return c.TM.Inverse(x*c.UnitToMetre, y*c.UnitToMetre)
	}
	return x, y
}

// Reproject returns a copy of mp in WGS84 lon/lat with SRID 4326.
func Reproject(mp *geom.MultiPolygon, from CRS) *geom.MultiPolygon {
	if mp == nil {
		return nil
	}
	stride := mp.Layout().Stride()
	src := mp.FlatCoords()
	flat := make([]float64, len(src))
	copy(flat, src)
	for i := 0; i+1 < len(flat); i += stride {
		flat[i], flat[i+1] = from.ToLonLat(flat[i], flat[i+1])
	}
	return geom.NewMultiPolygonFlat(mp.Layout(), flat, mp.Endss()).SetSRID(4326)
}
