package geo_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/foodmap/food-radar/internal/geo"
	"github.com/foodmap/food-radar/internal/models"
)

func TestDistanceSymmetric(t *testing.T) {
	a := models.Coordinate{Lat: 39.915, Lng: 116.404}
	b := models.Coordinate{Lat: 31.230, Lng: 121.473}

	require.Equal(t, geo.Distance(a, b), geo.Distance(b, a))
	require.Zero(t, geo.Distance(a, a))
}

func TestDistanceOneDegreeOfLongitudeAtEquator(t *testing.T) {
	a := models.Coordinate{Lat: 0, Lng: 0}
	b := models.Coordinate{Lat: 0, Lng: 1}

	got := geo.Distance(a, b)
	require.InEpsilon(t, 111_320.0, got, 0.01)
}

func TestCentroid(t *testing.T) {
	tests := []struct {
		name   string
		points []models.Coordinate
		want   models.Coordinate
	}{
		{
			name:   "single point unchanged",
			points: []models.Coordinate{{Lat: 39.9, Lng: 116.4}},
			want:   models.Coordinate{Lat: 39.9, Lng: 116.4},
		},
		{
			name: "two points averaged",
			points: []models.Coordinate{
				{Lat: 10, Lng: 20},
				{Lat: 30, Lng: 40},
			},
			want: models.Coordinate{Lat: 20, Lng: 30},
		},
		{
			name: "three points averaged",
			points: []models.Coordinate{
				{Lat: 0, Lng: 0},
				{Lat: 3, Lng: 3},
				{Lat: 6, Lng: 6},
			},
			want: models.Coordinate{Lat: 3, Lng: 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := geo.Centroid(tt.points)
			require.NoError(t, err)
			require.InDelta(t, tt.want.Lat, got.Lat, 1e-9)
			require.InDelta(t, tt.want.Lng, got.Lng, 1e-9)
		})
	}
}

func TestCentroidEmpty(t *testing.T) {
	_, err := geo.Centroid(nil)
	require.ErrorIs(t, err, geo.ErrNoPoints)
}
