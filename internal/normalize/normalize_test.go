package normalize_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/foodmap/food-radar/internal/models"
	"github.com/foodmap/food-radar/internal/normalize"
)

func TestRecordFullPayload(t *testing.T) {
	var raw models.RawDetail
	payload := `{
		"uid": "venue-1",
		"name": "老王火锅",
		"address": "some street 5",
		"telephone": "010-1234567",
		"location": {"lat": 39.91, "lng": 116.40},
		"detail_info": {
			"overall_rating": "4.6",
			"taste_rating": 4.8,
			"service_rating": "4.2",
			"environment_rating": 4.0,
			"price": "120",
			"comment_num": "260",
			"favorite_num": 31,
			"checkin_num": "12",
			"tag": "美食;火锅",
			"hours": "10:00-22:00",
			"description": "good soup"
		}
	}`
	require.NoError(t, json.Unmarshal([]byte(payload), &raw))

	rec := normalize.Record(raw)

	require.Equal(t, "venue-1", rec.ID)
	require.Equal(t, "老王火锅", rec.Name)
	require.Equal(t, "some street 5", rec.Address)
	require.Equal(t, "010-1234567", rec.Phone)
	require.True(t, rec.HasLocation)
	require.InDelta(t, 39.91, rec.Location.Lat, 1e-9)
	require.InDelta(t, 4.6, rec.OverallRating, 1e-9)
	require.InDelta(t, 4.8, rec.TasteRating, 1e-9)
	require.InDelta(t, 4.2, rec.ServiceRating, 1e-9)
	require.InDelta(t, 4.0, rec.EnvironmentRating, 1e-9)
	require.True(t, rec.HasPrice)
	require.InDelta(t, 120, rec.Price, 1e-9)
	require.Equal(t, 260, rec.CommentCount)
	require.Equal(t, 31, rec.FavoriteCount)
	require.Equal(t, 12, rec.CheckinCount)
	require.Equal(t, "美食;火锅", rec.Tag)
}

func TestRecordIsTotal(t *testing.T) {
	tests := []struct {
		name string
		raw  models.RawDetail
	}{
		{name: "nil payload", raw: nil},
		{name: "empty payload", raw: models.RawDetail{}},
		{
			name: "garbage values",
			raw: models.RawDetail{
				"uid":      42,
				"name":     nil,
				"location": "not a map",
				"detail_info": map[string]any{
					"overall_rating": "four-ish",
					"price":          "",
					"comment_num":    []any{1, 2},
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := normalize.Record(tt.raw)

			require.Zero(t, rec.OverallRating)
			require.Zero(t, rec.TasteRating)
			require.Zero(t, rec.ServiceRating)
			require.Zero(t, rec.EnvironmentRating)
			require.Zero(t, rec.Price)
			require.False(t, rec.HasPrice)
			require.Zero(t, rec.CommentCount)
			require.Zero(t, rec.FavoriteCount)
			require.Zero(t, rec.CheckinCount)
			require.False(t, rec.HasLocation)
		})
	}
}

func TestRecordPartialLocation(t *testing.T) {
	rec := normalize.Record(models.RawDetail{
		"uid":      "x",
		"location": map[string]any{"lat": 39.9},
	})
	require.False(t, rec.HasLocation)
}

func TestRecordRejectsOutOfBoundsLocation(t *testing.T) {
	tests := []struct {
		name     string
		lat, lng float64
	}{
		{name: "latitude too high", lat: 91, lng: 116.4},
		{name: "latitude too low", lat: -90.5, lng: 116.4},
		{name: "longitude too high", lat: 39.9, lng: 181},
		{name: "longitude too low", lat: 39.9, lng: -180.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := normalize.Record(models.RawDetail{
				"uid":      "x",
				"location": map[string]any{"lat": tt.lat, "lng": tt.lng},
			})
			require.False(t, rec.HasLocation)
			require.Zero(t, rec.Location)
		})
	}
}
