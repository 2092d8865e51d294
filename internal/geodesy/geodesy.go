// Package geodesy converts working-projection coordinates back to the
// ellipsoid and measures true-earth distances between them. The pipeline's
// extent spans several UTM zones, so distances are never taken from the flat
// projection directly.
package geodesy

import (
	"math"

	"github.com/im7mortal/UTM"
	"github.com/rotisserie/eris"
)

// The working projection for the Hawaii archipelago is UTM zone 4N
// (EPSG:32604).
const (
	DefaultZone = 4
	northern    = true
)

// WGS84 ellipsoid.
const (
	semiMajorM = 6378137.0
	flattening = 1 / 298.257223563
	semiMinorM = semiMajorM * (1 - flattening)
)

// Unit conversions applied to measured quantities. These mirror the
// pipeline's documented conversion table (metric sources, imperial outputs).
const (
	MetersToFeet     = 3.28083989501312
	SqMetersToSqFeet = MetersToFeet * MetersToFeet
	MetersToInches   = MetersToFeet * 12
)

// Converter unprojects working-CRS eastings/northings and measures geodesic
// distance on the WGS84 ellipsoid.
type Converter struct {
	zone int
}

// NewConverter returns a Converter for the given UTM zone. Zone 0 selects the
// default Hawaii zone.
func NewConverter(zone int) *Converter {
	if zone == 0 {
		zone = DefaultZone
	}
	return &Converter{zone: zone}
}

// ToLatLon unprojects a working-CRS coordinate to WGS84 latitude/longitude.
func (c *Converter) ToLatLon(easting, northing float64) (lat, lon float64, err error) {
	lat, lon, err = UTM.ToLatLon(easting, northing, c.zone, "", northern)
	if err != nil {
		return 0, 0, eris.Wrap(err, "geodesy: unproject")
	}
	return lat, lon, nil
}

// DistanceM returns the geodesic distance in meters between two working-CRS
// points, measured on the ellipsoid.
func (c *Converter) DistanceM(e1, n1, e2, n2 float64) (float64, error) {
	lat1, lon1, err := c.ToLatLon(e1, n1)
	if err != nil {
		return 0, err
	}
	lat2, lon2, err := c.ToLatLon(e2, n2)
	if err != nil {
		return 0, err
	}
	return Inverse(lat1, lon1, lat2, lon2), nil
}

// DistanceFt is DistanceM converted to feet.
func (c *Converter) DistanceFt(e1, n1, e2, n2 float64) (float64, error) {
	m, err := c.DistanceM(e1, n1, e2, n2)
	if err != nil {
		return 0, err
	}
	return m * MetersToFeet, nil
}

// Inverse solves the geodesic inverse problem on the WGS84 ellipsoid
// (Vincenty, 1975) and returns the distance in meters. The iteration fails to
// converge only for near-antipodal pairs, which cannot occur within a single
// archipelago; in that case the great-circle distance is returned instead so
// the function stays total.
func Inverse(lat1, lon1, lat2, lon2 float64) float64 {
	if lat1 == lat2 && lon1 == lon2 {
		return 0
	}

	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	L := (lon2 - lon1) * math.Pi / 180

	u1 := math.Atan((1 - flattening) * math.Tan(phi1))
	u2 := math.Atan((1 - flattening) * math.Tan(phi2))
	sinU1, cosU1 := math.Sincos(u1)
	sinU2, cosU2 := math.Sincos(u2)

	lambda := L
	var sinSigma, cosSigma, sigma, cosSqAlpha, cos2SigmaM float64
	for i := 0; i < 100; i++ {
		sinLambda, cosLambda := math.Sincos(lambda)
		sinSigma = math.Hypot(
			cosU2*sinLambda,
			cosU1*sinU2-sinU1*cosU2*cosLambda,
		)
		if sinSigma == 0 {
			return 0 // coincident
		}
		cosSigma = sinU1*sinU2 + cosU1*cosU2*cosLambda
		sigma = math.Atan2(sinSigma, cosSigma)
		sinAlpha := cosU1 * cosU2 * sinLambda / sinSigma
		cosSqAlpha = 1 - sinAlpha*sinAlpha
		if cosSqAlpha == 0 {
			cos2SigmaM = 0 // equatorial line
		} else {
			cos2SigmaM = cosSigma - 2*sinU1*sinU2/cosSqAlpha
		}
		C := flattening / 16 * cosSqAlpha * (4 + flattening*(4-3*cosSqAlpha))
		lambdaPrev := lambda
		lambda = L + (1-C)*flattening*sinAlpha*
			(sigma+C*sinSigma*(cos2SigmaM+C*cosSigma*(-1+2*cos2SigmaM*cos2SigmaM)))
		if math.Abs(lambda-lambdaPrev) < 1e-12 {
			uSq := cosSqAlpha * (semiMajorM*semiMajorM - semiMinorM*semiMinorM) / (semiMinorM * semiMinorM)
			A := 1 + uSq/16384*(4096+uSq*(-768+uSq*(320-175*uSq)))
			B := uSq / 1024 * (256 + uSq*(-128+uSq*(74-47*uSq)))
			deltaSigma := B * sinSigma * (cos2SigmaM + B/4*
				(cosSigma*(-1+2*cos2SigmaM*cos2SigmaM)-
					B/6*cos2SigmaM*(-3+4*sinSigma*sinSigma)*(-3+4*cos2SigmaM*cos2SigmaM)))
			return semiMinorM * A * (sigma - deltaSigma)
		}
	}

	return haversine(lat1, lon1, lat2, lon2)
}

// haversine is the spherical great-circle distance in meters, used only as
// the non-convergence fallback for Inverse.
func haversine(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadiusM = 6371008.8
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := phi2 - phi1
	dLambda := (lon2 - lon1) * math.Pi / 180
	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	return 2 * earthRadiusM * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
