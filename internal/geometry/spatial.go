package geometry

import (
	"github.com/golang/geo/s2"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"
)

const earthRadiusKm = 6371.0088

// Centroid returns the area-weighted centroid of mp.
func Centroid(mp *geom.MultiPolygon) (lon, lat float64, err error) {
	if mp == nil || mp.NumPolygons() == 0 {
		return 0, 0, eris.New("geometry: centroid of empty boundary")
	}
	c, err := xy.Centroid(mp)
	if err != nil {
		return 0, 0, eris.Wrap(err, "geometry: centroid")
	}
	return c.X(), c.Y(), nil
}

// Contains reports whether the point lies inside mp, honouring holes.
func Contains(mp *geom.MultiPolygon, x, y float64) bool {
	if mp == nil {
		return false
	}
	b := mp.Bounds()
	if x < b.Min(0) || x > b.Max(0) || y < b.Min(1) || y > b.Max(1) {
		return false
	}
	for i := 0; i < mp.NumPolygons(); i++ {
		poly := mp.Polygon(i)
		if !ringContains(poly.LinearRing(0).FlatCoords(), x, y) {
			continue
		}
		inHole := false
		for j := 1; j < poly.NumLinearRings(); j++ {
			if ringContains(poly.LinearRing(j).FlatCoords(), x, y) {
				inHole = true
				break
			}
		}
		if !inHole {
			return true
		}
	}
	return false
}

// ringContains is the ray-casting test on a flat XY ring.
func ringContains(flat []float64, x, y float64) bool {
	inside := false
	n := len(flat) / 2
	j := n - 1
	for i := 0; i < n; i++ {
		xi, yi := flat[2*i], flat[2*i+1]
		xj, yj := flat[2*j], flat[2*j+1]
		if (yi > y) != (yj > y) && x < (xj-xi)*(y-yi)/(yj-yi)+xi {
			inside = !inside
		}
		j = i
	}
	return inside
}

// AreaKm2 returns the spherical area of a lon/lat boundary in square
// kilometres. Holes are subtracted.
func AreaKm2(mp *geom.MultiPolygon) float64 {
	if mp == nil {
		return 0
	}
	var sr float64
	for i := 0; i < mp.NumPolygons(); i++ {
		poly := mp.Polygon(i)
		for j := 0; j < poly.NumLinearRings(); j++ {
			a := loopArea(poly.LinearRing(j).FlatCoords())
			if j == 0 {
				sr += a
			} else {
				sr -= a
			}
		}
	}
	return sr * earthRadiusKm * earthRadiusKm
}

func loopArea(flat []float64) float64 {
	n := len(flat) / 2
	if n > 1 && flat[0] == flat[2*(n-1)] && flat[1] == flat[2*(n-1)+1] {
		n--
	}
	if n < 3 {
		return 0
	}
	pts := make([]s2.Point, n)
	for i := 0; i < n; i++ {
		pts[i] = s2.PointFromLatLng(s2.LatLngFromDegrees(flat[2*i+1], flat[2*i]))
	}
	loop := s2.LoopFromPoints(pts)
	loop.Normalize()
	return loop.Area()
}
