package models

// Coordinate is a WGS84 point as returned by the maps provider.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether the coordinate lies inside the usual lat/lng bounds.
func (c Coordinate) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}

// RawDetail is an upstream venue payload as decoded from JSON. Field types are
// whatever the provider sent; normalize.Record turns it into a VenueRecord.
type RawDetail map[string]any

// UID extracts the venue identifier from a raw payload, or "" when absent.
func (r RawDetail) UID() string {
	if r == nil {
		return ""
	}
	if uid, ok := r["uid"].(string); ok {
		return uid
	}
	return ""
}

// VenueRecord is the fully populated shape every pipeline stage downstream of
// normalization can rely on. Numeric fields default to zero when the upstream
// value was missing or unparseable; strings default to "".
type VenueRecord struct {
	ID                string     `json:"uid"`
	Name              string     `json:"name"`
	Address           string     `json:"address"`
	Phone             string     `json:"telephone"`
	Location          Coordinate `json:"location"`
	HasLocation       bool       `json:"-"`
	OverallRating     float64    `json:"overall_rating"`
	TasteRating       float64    `json:"taste_rating"`
	ServiceRating     float64    `json:"service_rating"`
	EnvironmentRating float64    `json:"environment_rating"`
	Price             float64    `json:"price"`
	HasPrice          bool       `json:"-"`
	CommentCount      int        `json:"comment_num"`
	FavoriteCount     int        `json:"favorite_num"`
	CheckinCount      int        `json:"checkin_num"`
	Tag               string     `json:"tag"`
	Hours             string     `json:"hours"`
	Description       string     `json:"description"`
}
