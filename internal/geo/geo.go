package geo

import (
	"errors"
	"math"

	"github.com/foodmap/food-radar/internal/models"
)

// EarthRadiusMeters is the mean Earth radius used by the haversine formula.
const EarthRadiusMeters = 6_371_000.0

// ErrNoPoints is returned by Centroid when called with an empty slice.
var ErrNoPoints = errors.New("centroid requires at least one point")

// Distance returns the great-circle distance between a and b in meters.
// Spherical-Earth approximation, not geodesic-exact.
func Distance(a, b models.Coordinate) float64 {
	phi1 := radians(a.Lat)
	phi2 := radians(b.Lat)
	dPhi := radians(b.Lat - a.Lat)
	dLambda := radians(b.Lng - a.Lng)

	h := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadiusMeters * c
}

// Centroid returns the arithmetic mean of the latitudes and longitudes.
// This is a planar average, not a spherical centroid; it breaks down near the
// antimeridian and the poles but is adequate for the small urban clusters the
// map endpoint centers on. A single point is returned unchanged.
func Centroid(points []models.Coordinate) (models.Coordinate, error) {
	if len(points) == 0 {
		return models.Coordinate{}, ErrNoPoints
	}
	if len(points) == 1 {
		return points[0], nil
	}

	var sumLat, sumLng float64
	for _, p := range points {
		sumLat += p.Lat
		sumLng += p.Lng
	}
	n := float64(len(points))
	return models.Coordinate{Lat: sumLat / n, Lng: sumLng / n}, nil
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
