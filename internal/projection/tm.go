package projection

import "math"

// TransverseMercator is the ellipsoidal Transverse Mercator projection used by
// the MGA grid zones. Angles are in degrees, offsets in metres.
type TransverseMercator struct {
	SemiMajor     float64 // metres
	InvFlattening float64
	LatOrigin     float64
	CentralMer    float64
	ScaleFactor   float64
	FalseEasting  float64
	FalseNorthing float64
}

// MGAZone returns the Map Grid of Australia projection for zone (49 to 56).
// GDA94 and GDA2020 share the GRS80 ellipsoid and the same zone parameters.
func MGAZone(zone int) TransverseMercator {
	return TransverseMercator{
		SemiMajor:     6378137,
		InvFlattening: 298.257222101,
		CentralMer:    float64(zone*6 - 183),
		ScaleFactor:   0.9996,
		FalseEasting:  500000,
		FalseNorthing: 10000000,
	}
}

func (p TransverseMercator) e2() float64 {
	fl := 1 / p.InvFlattening
	return fl * (2 - fl)
}

// meridian is the distance along the meridian from the equator to phi.
func (p TransverseMercator) meridian(phi float64) float64 {
	e2 := p.e2()
	e4, e6 := e2*e2, e2*e2*e2
	return p.SemiMajor * ((1-e2/4-3*e4/64-5*e6/256)*phi -
		(3*e2/8+3*e4/32+45*e6/1024)*math.Sin(2*phi) +
		(15*e4/256+45*e6/1024)*math.Sin(4*phi) -
		(35*e6/3072)*math.Sin(6*phi))
}

// Forward converts lon/lat degrees to easting/northing metres.
func (p TransverseMercator) Forward(lon, lat float64) (x, y float64) {
	e2 := p.e2()
	ep2 := e2 / (1 - e2)
	phi := rad(lat)
	sin, cos, tan := math.Sin(phi), math.Cos(phi), math.Tan(phi)

	n := p.SemiMajor / math.Sqrt(1-e2*sin*sin)
	t := tan * tan
	c := ep2 * cos * cos
	a := (rad(lon) - rad(p.CentralMer)) * cos
	k0 := p.ScaleFactor

	x = k0*n*(a+(1-t+c)*math.Pow(a, 3)/6+
		(5-18*t+t*t+72*c-58*ep2)*math.Pow(a, 5)/120) + p.FalseEasting
	y = k0*(p.meridian(phi)-p.meridian(rad(p.LatOrigin))+
		n*tan*(a*a/2+(5-t+9*c+4*c*c)*math.Pow(a, 4)/24+
			(61-58*t+t*t+600*c-330*ep2)*math.Pow(a, 6)/720)) + p.FalseNorthing
	return x, y
}

// Inverse converts easting/northing metres to lon/lat degrees.
func (p TransverseMercator) Inverse(x, y float64) (lon, lat float64) {
	e2 := p.e2()
	ep2 := e2 / (1 - e2)
	k0 := p.ScaleFactor

	m := p.meridian(rad(p.LatOrigin)) + (y-p.FalseNorthing)/k0
	mu := m / (p.SemiMajor * (1 - e2/4 - 3*e2*e2/64 - 5*e2*e2*e2/256))
	e1 := (1 - math.Sqrt(1-e2)) / (1 + math.Sqrt(1-e2))
	phi1 := mu + (3*e1/2-27*math.Pow(e1, 3)/32)*math.Sin(2*mu) +
		(21*e1*e1/16-55*math.Pow(e1, 4)/32)*math.Sin(4*mu) +
		(151*math.Pow(e1, 3)/96)*math.Sin(6*mu) +
		(1097*math.Pow(e1, 4)/512)*math.Sin(8*mu)

	sin, cos, tan := math.Sin(phi1), math.Cos(phi1), math.Tan(phi1)
	c1 := ep2 * cos * cos
	t1 := tan * tan
	n1 := p.SemiMajor / math.Sqrt(1-e2*sin*sin)
	r1 := p.SemiMajor * (1 - e2) / math.Pow(1-e2*sin*sin, 1.5)
	d := (x - p.FalseEasting) / (n1 * k0)

	phi := phi1 - (n1*tan/r1)*(d*d/2-
		(5+3*t1+10*c1-4*c1*c1-9*ep2)*math.Pow(d, 4)/24+
		(61+90*t1+298*c1+45*t1*t1-252*ep2-3*c1*c1)*math.Pow(d, 6)/720)
	lam := (d - (1+2*t1+c1)*math.Pow(d, 3)/6 +
		(5-2*c1+28*t1-3*c1*c1+8*ep2+24*t1*t1)*math.Pow(d, 5)/120) / cos

	return p.CentralMer + deg(lam), deg(phi)
}
