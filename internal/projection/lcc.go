package projection

import "math"

// LambertConformal is a two-standard-parallel Lambert Conformal Conic
// projection on an ellipsoid. Angles are in degrees, offsets in metres.
type LambertConformal struct {
	SemiMajor     float64 // metres
	InvFlattening float64
	LatOrigin     float64
	CentralMer    float64
	StdParallel1  float64
	StdParallel2  float64
	FalseEasting  float64
	FalseNorthing float64

	e, n, f, rho0 float64
}

// NSWLambert is EPSG:3308 (GDA94 / NSW Lambert). EPSG:8058 uses the same
// parameters on GDA2020.
var NSWLambert = LambertConformal{
	SemiMajor:     6378137,
	InvFlattening: 298.257222101,
	LatOrigin:     -33.25,
	CentralMer:    147,
	StdParallel1:  -30.75,
	StdParallel2:  -35.75,
	FalseEasting:  9300000,
	FalseNorthing: 4500000,
}

func rad(d float64) float64 { return d * math.Pi / 180 }
func deg(r float64) float64 { return r * 180 / math.Pi }

// init derives the cone constants. It must run before Forward or Inverse.
func (p *LambertConformal) init() {
	fl := 1 / p.InvFlattening
	e2 := fl * (2 - fl)
	p.e = math.Sqrt(e2)

	m := func(phi float64) float64 {
		s := math.Sin(phi)
		return math.Cos(phi) / math.Sqrt(1-e2*s*s)
	}

	phi1, phi2, phi0 := rad(p.StdParallel1), rad(p.StdParallel2), rad(p.LatOrigin)
	m1, m2 := m(phi1), m(phi2)
	t1, t2, t0 := p.t(phi1), p.t(phi2), p.t(phi0)

	if phi1 == phi2 {
		p.n = math.Sin(phi1)
	} else {
		p.n = math.Log(m1/m2) / math.Log(t1/t2)
	}
	p.f = m1 / (p.n * math.Pow(t1, p.n))
	p.rho0 = p.SemiMajor * p.f * math.Pow(t0, p.n)
}

func (p *LambertConformal) t(phi float64) float64 {
	es := p.e * math.Sin(phi)
	return math.Tan(math.Pi/4-phi/2) / math.Pow((1-es)/(1+es), p.e/2)
}

// Forward converts lon/lat degrees to easting/northing metres.
func (p LambertConformal) Forward(lon, lat float64) (x, y float64) {
	p.init()
	rho := p.SemiMajor * p.f * math.Pow(p.t(rad(lat)), p.n)
	theta := p.n * (rad(lon) - rad(p.CentralMer))
	x = rho*math.Sin(theta) + p.FalseEasting
	y = p.rho0 - rho*math.Cos(theta) + p.FalseNorthing
	return x, y
}

// Inverse converts easting/northing metres to lon/lat degrees.
func (p LambertConformal) Inverse(x, y float64) (lon, lat float64) {
	p.init()
	dx := x - p.FalseEasting
	dy := p.rho0 - (y - p.FalseNorthing)

	sign := 1.0
	if p.n < 0 {
		sign = -1
	}
	rho := sign * math.Hypot(dx, dy)
	theta := math.Atan2(sign*dx, sign*dy)

	t := math.Pow(rho/(p.SemiMajor*p.f), 1/p.n)
	phi := math.Pi/2 - 2*math.Atan(t)
	for i := 0; i < 15; i++ {
		es := p.e * math.Sin(phi)
		next := math.Pi/2 - 2*math.Atan(t*math.Pow((1-es)/(1+es), p.e/2))
		if math.Abs(next-phi) < 1e-12 {
			phi = next
			break
		}
		phi = next
	}

	lon = deg(theta/p.n) + p.CentralMer
	return lon, deg(phi)
}
