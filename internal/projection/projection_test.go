package projection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"
)

const gda2020PRJ = `GEOGCS["GCS_GDA2020",DATUM["D_GDA2020",SPHEROID["GRS_1980",6378137.0,298.257222101]],PRIMEM["Greenwich",0.0],UNIT["Degree",0.0174532925199433]]`

const nswLambertPRJ = `PROJCS["GDA94_NSW_Lambert",GEOGCS["GCS_GDA_1994",DATUM["D_GDA_1994",SPHEROID["GRS_1980",6378137.0,298.257222101]],PRIMEM["Greenwich",0.0],UNIT["Degree",0.0174532925199433]],PROJECTION["Lambert_Conformal_Conic"],PARAMETER["False_Easting",9300000.0],PARAMETER["False_Northing",4500000.0],PARAMETER["Central_Meridian",147.0],PARAMETER["Standard_Parallel_1",-30.75],PARAMETER["Standard_Parallel_2",-35.75],PARAMETER["Latitude_Of_Origin",-33.25],UNIT["Meter",1.0]]`

func TestParseWKT_Geographic(t *testing.T) {
	crs, err := ParseWKT(gda2020PRJ)
	require.NoError(t, err)
	assert.Equal(t, Geographic, crs.Kind)
	assert.Equal(t, "GCS_GDA2020", crs.Name)

	lon, lat := crs.ToLonLat(151.2, -33.9)
	assert.Equal(t, 151.2, lon)
	assert.Equal(t, -33.9, lat)
}

func TestParseWKT_Empty(t *testing.T) {
	crs, err := ParseWKT("  ")
	require.NoError(t, err)
	assert.Equal(t, Geographic, crs.Kind)
}

func TestParseWKT_Lambert(t *testing.T) {
	crs, err := ParseWKT(nswLambertPRJ)
	require.NoError(t, err)
	require.Equal(t, Lambert, crs.Kind)
	assert.Equal(t, "GDA94_NSW_Lambert", crs.Name)
	assert.Equal(t, NSWLambert.CentralMer, crs.LCC.CentralMer)
	assert.Equal(t, NSWLambert.StdParallel2, crs.LCC.StdParallel2)
	assert.Equal(t, NSWLambert.LatOrigin, crs.LCC.LatOrigin)
	assert.Equal(t, NSWLambert.FalseEasting, crs.LCC.FalseEasting)
	assert.Equal(t, 1.0, crs.UnitToMetre)
}

func TestParseWKT_Unsupported(t *testing.T) {
	_, err := ParseWKT(`PROJCS["GDA94_Australian_Albers",GEOGCS["GCS_GDA_1994"],PROJECTION["Albers"],UNIT["Meter",1.0]]`)
	assert.ErrorContains(t, err, "Albers")

	_, err = ParseWKT("garbage")
	assert.Error(t, err)
}

func TestLambert_RoundTrip(t *testing.T) {
	points := [][2]float64{
		{151.2093, -33.8688}, // Sydney
		{147, -33.25},
		{149.13, -35.28},
		{153.6, -28.6},
	}
	for _, p := range points {
		x, y := NSWLambert.Forward(p[0], p[1])
		lon, lat := NSWLambert.Inverse(x, y)
		assert.InDelta(t, p[0], lon, 1e-9)
		assert.InDelta(t, p[1], lat, 1e-9)
	}
}

func TestLambert_Origin(t *testing.T) {
	x, y := NSWLambert.Forward(147, -33.25)
	assert.InDelta(t, 9300000, x, 1e-6)
	assert.InDelta(t, 4500000, y, 1e-6)
}

func TestFromEPSG(t *testing.T) {
	for _, code := range []string{"EPSG:4326", "4283", "epsg:7844"} {
		crs, err := FromEPSG(code)
		require.NoError(t, err, code)
		assert.Equal(t, Geographic, crs.Kind, code)
	}
	crs, err := FromEPSG("EPSG:3308")
	require.NoError(t, err)
	assert.Equal(t, Lambert, crs.Kind)

	for _, code := range []string{"EPSG:28356", "7849"} {
		crs, err = FromEPSG(code)
		require.NoError(t, err, code)
		assert.Equal(t, Mercator, crs.Kind, code)
	}
	crs, err = FromEPSG("28356")
	require.NoError(t, err)
	assert.Equal(t, 153.0, crs.TM.CentralMer)

	_, err = FromEPSG("EPSG:3577")
	assert.Error(t, err)
	_, err = FromEPSG("EPSG:28357")
	assert.Error(t, err)
}

func TestReproject(t *testing.T) {
	crs, err := FromEPSG("EPSG:3308")
	require.NoError(t, err)

	x0, y0 := NSWLambert.Forward(151.0, -33.9)
	x1, y1 := NSWLambert.Forward(151.1, -33.8)
	mp := geom.NewMultiPolygon(geom.XY)
	poly := geom.NewPolygonFlat(geom.XY, []float64{x0, y0, x0, y1, x1, y1, x1, y0, x0, y0}, []int{10})
	require.NoError(t, mp.Push(poly))

	out := Reproject(mp, crs)
	require.NotNil(t, out)
	assert.Equal(t, 4326, out.SRID())
	first := out.Polygon(0).LinearRing(0).Coord(0)
	assert.InDelta(t, 151.0, first.X(), 1e-9)
	assert.InDelta(t, -33.9, first.Y(), 1e-9)

	// source untouched
	assert.InDelta(t, x0, mp.FlatCoords()[0], 1e-9)
	assert.Nil(t, Reproject(nil, crs))
}

const mgaZone56PRJ = `PROJCS["GDA2020_MGA_Zone_56",GEOGCS["GCS_GDA2020",DATUM["D_GDA2020",SPHEROID["GRS_1980",6378137.0,298.257222101]],PRIMEM["Greenwich",0.0],UNIT["Degree",0.0174532925199433]],PROJECTION["Transverse_Mercator"],PARAMETER["False_Easting",500000.0],PARAMETER["False_Northing",10000000.0],PARAMETER["Central_Meridian",153.0],PARAMETER["Scale_Factor",0.9996],PARAMETER["Latitude_Of_Origin",0.0],UNIT["Meter",1.0]]`

func TestParseWKT_TransverseMercator(t *testing.T) {
	crs, err := ParseWKT(mgaZone56PRJ)
	require.NoError(t, err)
	require.Equal(t, Mercator, crs.Kind)
	assert.Equal(t, MGAZone(56), crs.TM)

	x, y := MGAZone(56).Forward(151.2093, -33.8688)
	lon, lat := crs.ToLonLat(x, y)
	assert.InDelta(t, 151.2093, lon, 1e-6)
	assert.InDelta(t, -33.8688, lat, 1e-6)
}

func TestTransverseMercator_CentralMeridian(t *testing.T) {
	tm := MGAZone(56)
	x, y := tm.Forward(153, 0)
	assert.InDelta(t, 500000, x, 1e-6)
	assert.InDelta(t, 10000000, y, 1e-6)

	// south of the equator northings fall below the false northing
	x, y = tm.Forward(153, -33)
	assert.InDelta(t, 500000, x, 1e-6)
	assert.Less(t, y, 10000000.0)
}

func TestTransverseMercator_RoundTrip(t *testing.T) {
	tm := MGAZone(56)
	points := [][2]float64{
		{151.2093, -33.8688},
		{153, -28},
		{150.1, -36.5},
		{155.5, -31},
	}
	for _, p := range points {
		x, y := tm.Forward(p[0], p[1])
		lon, lat := tm.Inverse(x, y)
		assert.InDelta(t, p[0], lon, 1e-6)
		assert.InDelta(t, p[1], lat, 1e-6)
	}
}
