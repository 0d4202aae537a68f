package schedule

import "math"

// EarthRadiusMeters is the mean Earth radius used by the Haversine
// formula.
const EarthRadiusMeters = 6371000.0

// DistanceMeters computes the great-circle distance between two
// coordinates using the Haversine formula.  Inputs are decimal
// degrees; the result is meters.
func DistanceMeters(lat1, lon1, lat2, lon2 float64) float64 {
    phi1 := lat1 * math.Pi / 180
    phi2 := lat2 * math.Pi / 180
    dPhi := (lat2 - lat1) * math.Pi / 180
    dLambda := (lon2 - lon1) * math.Pi / 180

    a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
        math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
    c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

    return EarthRadiusMeters * c
}

// WithinRadius reports whether the point (lat, lon) lies within
// radiusMeters of the venue, along with the computed distance.  A
// point exactly on the boundary counts as within.
func WithinRadius(lat, lon, venueLat, venueLon, radiusMeters float64) (bool, float64) {
    d := DistanceMeters(lat, lon, venueLat, venueLon)
    return d <= radiusMeters, d
}
