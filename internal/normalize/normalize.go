package normalize

import (
	"strconv"
	"strings"

	"github.com/foodmap/food-radar/internal/models"
)

// Record maps a heterogeneous upstream payload onto the fixed VenueRecord
// shape. It is total: missing, empty, or unparseable values become zero
// values, never errors, so downstream stages skip per-field nil checks.
func Record(raw models.RawDetail) models.VenueRecord {
	detail := asMap(raw["detail_info"])

	rec := models.VenueRecord{
		ID:                asString(raw["uid"]),
		Name:              asString(raw["name"]),
		Address:           asString(raw["address"]),
		Phone:             asString(raw["telephone"]),
		OverallRating:     asFloat(detail["overall_rating"]),
		TasteRating:       asFloat(detail["taste_rating"]),
		ServiceRating:     asFloat(detail["service_rating"]),
		EnvironmentRating: asFloat(detail["environment_rating"]),
		CommentCount:      asInt(detail["comment_num"]),
		FavoriteCount:     asInt(detail["favorite_num"]),
		CheckinCount:      asInt(detail["checkin_num"]),
		Tag:               asString(detail["tag"]),
		Hours:             asString(detail["hours"]),
		Description:       asString(detail["description"]),
	}

	if price, ok := parseFloat(detail["price"]); ok {
		rec.Price = price
		rec.HasPrice = true
	}

	if loc := asMap(raw["location"]); loc != nil {
		lat, latOK := parseFloat(loc["lat"])
		lng, lngOK := parseFloat(loc["lng"])
		if latOK && lngOK {
			coord := models.Coordinate{Lat: lat, Lng: lng}
			if coord.Valid() {
				rec.Location = coord
				rec.HasLocation = true
			}
		}
	}

	return rec
}

func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asFloat(v any) float64 {
	f, _ := parseFloat(v)
	return f
}

func asInt(v any) int {
	f, ok := parseFloat(v)
	if !ok {
		return 0
	}
	return int(f)
}

// parseFloat coerces the numeric representations the provider actually sends:
// JSON numbers and numeric strings. Everything else reports false.
func parseFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case string:
		trimmed := strings.TrimSpace(n)
		if trimmed == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
