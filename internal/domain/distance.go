package domain

import "math"

// Mean Earth radius in statute miles (6371.0088 km).
const earthRadiusMiles = 3958.7613

// HaversineMiles computes the great-circle distance between two points using
// the haversine formula. Returns statute miles.
func HaversineMiles(a, b Coordinate) float64 {
	lat1 := degreesToRadians(a.Lat)
	lat2 := degreesToRadians(b.Lat)
	deltaLat := degreesToRadians(b.Lat - a.Lat)
	deltaLon := degreesToRadians(b.Lon - a.Lon)

	h := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*
			math.Sin(deltaLon/2)*math.Sin(deltaLon/2)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusMiles * c
}

func degreesToRadians(degrees float64) float64 {
	return degrees * math.Pi / 180.0
}

// AnnotateDistances computes the distance from origin to every station with
// geometry and stores it together with the origin it was computed from.
// Stations without geometry are skipped and keep no distance value. Each call
// overwrites the previous annotation, so this must be re-run whenever the
// user location changes.
func AnnotateDistances(stations []Station, origin Coordinate) {
	for i := range stations {
		if stations[i].Geometry == nil {
			continue
		}
		d := HaversineMiles(origin, *stations[i].Geometry)
		o := origin
		stations[i].DistanceMiles = &d
		stations[i].DistanceOrigin = &o
	}
}
