package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/foodmap/food-radar/internal/fuzzy"
	"github.com/foodmap/food-radar/internal/geo"
	"github.com/foodmap/food-radar/internal/models"
	"github.com/foodmap/food-radar/internal/normalize"
	"github.com/foodmap/food-radar/internal/places"
	"github.com/foodmap/food-radar/internal/reviews"
	"github.com/foodmap/food-radar/internal/scoring"
)

const (
	defaultRecommendCount = 5
	maxRecommendCount     = 20
	defaultSearchResults  = 10
	maxSearchResults      = 20
	maxCompareVenues      = 10

	defaultMapWidth  = 400
	defaultMapHeight = 300
	defaultMapZoom   = 15
)

// RecommendRequest parameterizes one recommendation run.
type RecommendRequest struct {
	Address      string `json:"address"`
	Cuisine      string `json:"cuisine_type"`
	RadiusM      int    `json:"radius_m"`
	Count        int    `json:"count"`
	PriceRange   string `json:"price_range"`
	SortBy       string `json:"sort_by"`
	GrouponOnly  bool   `json:"groupon_only"`
	DiscountOnly bool   `json:"discount_only"`
}

// RecommendedVenue is one ranked result with its distance from the query
// origin and the review snapshot that produced its score.
type RecommendedVenue struct {
	models.VenueRecord
	DistanceM      *float64            `json:"distance_m"`
	CompositeScore float64             `json:"composite_score"`
	UserReviews    []models.UserReview `json:"user_reviews"`
}

// RecommendResult echoes the query and carries the ranked venues.
type RecommendResult struct {
	QueryAddress    string             `json:"query_address"`
	Cuisine         string             `json:"cuisine_type"`
	RadiusM         int                `json:"radius_m"`
	PriceRange      string             `json:"price_range,omitempty"`
	SortBy          string             `json:"sort_by,omitempty"`
	GrouponOnly     bool               `json:"groupon_only"`
	DiscountOnly    bool               `json:"discount_only"`
	Origin          models.Coordinate  `json:"origin"`
	Recommendations []RecommendedVenue `json:"recommendations"`
}

// Recommend resolves the address, discovers candidates, fetches fresh
// details for all of them concurrently, and returns the top venues under
// the requested ordering.
func (s *Service) Recommend(ctx context.Context, req RecommendRequest) (*RecommendResult, error) {
	if strings.TrimSpace(req.Address) == "" {
		return nil, fmt.Errorf("%w: address must not be empty", ErrInvalidInput)
	}
	if req.Cuisine == "" {
		req.Cuisine = "餐厅"
	}
	if req.RadiusM == 0 {
		req.RadiusM = places.DefaultRadius
	} else if req.RadiusM < 50 || req.RadiusM > 3000 {
		s.log.Warn("recommendation radius outside suggested range, result quality may suffer",
			slog.Int("radius_m", req.RadiusM),
		)
	}
	if req.Count < 1 || req.Count > maxRecommendCount {
		s.log.Warn("recommendation count out of range, using default",
			slog.Int("count", req.Count),
			slog.Int("default", defaultRecommendCount),
		)
		req.Count = defaultRecommendCount
	}

	origin, err := s.upstream.Geocode(ctx, req.Address)
	if err != nil {
		return nil, err
	}

	sortName, sortRule := upstreamSort(req.SortBy)
	// Over-fetch so ranking has candidates to discard.
	hits, err := s.upstream.Search(ctx, places.SearchParams{
		Query:        req.Cuisine,
		Center:       origin,
		Radius:       req.RadiusM,
		Limit:        req.Count * 3,
		Tag:          req.Cuisine,
		PriceSection: priceSection(req.PriceRange),
		SortName:     sortName,
		SortRule:     sortRule,
		Groupon:      req.GrouponOnly,
		Discount:     req.DiscountOnly,
	})
	if err != nil {
		return nil, err
	}

	uids := make([]string, 0, len(hits))
	for _, hit := range hits {
		if uid := hit.UID(); uid != "" {
			uids = append(uids, uid)
		}
	}

	cands := s.assemble(s.FetchMany(ctx, uids, true), &origin)

	// A venue we cannot place relative to the caller is not recommendable.
	placed := cands[:0]
	for _, c := range cands {
		if c.DistanceM == nil {
			s.log.Warn("dropping candidate without location", slog.String("uid", c.Record.ID))
			continue
		}
		placed = append(placed, c)
	}
	cands = placed

	scoring.Rank(cands, scoring.ParseCriterion(req.SortBy), nil)
	if len(cands) > req.Count {
		cands = cands[:req.Count]
	}

	out := make([]RecommendedVenue, 0, len(cands))
	for _, c := range cands {
		out = append(out, RecommendedVenue{
			VenueRecord:    c.Record,
			DistanceM:      c.DistanceM,
			CompositeScore: c.Score,
			UserReviews:    c.Reviews,
		})
	}

	s.log.Info("recommendation completed",
		slog.String("address", req.Address),
		slog.Int("results", len(out)),
	)

	return &RecommendResult{
		QueryAddress:    req.Address,
		Cuisine:         req.Cuisine,
		RadiusM:         req.RadiusM,
		PriceRange:      req.PriceRange,
		SortBy:          req.SortBy,
		GrouponOnly:     req.GrouponOnly,
		DiscountOnly:    req.DiscountOnly,
		Origin:          origin,
		Recommendations: out,
	}, nil
}

// SearchRequest parameterizes a nearby-venue search.
type SearchRequest struct {
	Address    string `json:"address"`
	Keyword    string `json:"keyword"`
	RadiusM    int    `json:"radius_m"`
	MaxResults int    `json:"max_results"`
	PriceRange string `json:"price_range"`
	SortBy     string `json:"sort_by"`
	Fuzzy      bool   `json:"fuzzy"`
}

// FoundVenue is one deduplicated search hit.
type FoundVenue struct {
	models.VenueRecord
	UserReviews []models.UserReview `json:"user_reviews"`
}

// SearchResult echoes the query and carries the deduplicated hits.
type SearchResult struct {
	Address    string       `json:"address"`
	Keyword    string       `json:"keyword"`
	Fuzzy      bool         `json:"fuzzy"`
	RadiusM    int          `json:"radius_m"`
	PriceRange string       `json:"price_range,omitempty"`
	SortBy     string       `json:"sort_by,omitempty"`
	Results    []FoundVenue `json:"results"`
}

// SearchNearby geocodes the address and searches for venues around it,
// optionally fanning the keyword out across the cuisine vocabulary. Results
// are deduplicated by venue id preserving first-seen order.
func (s *Service) SearchNearby(ctx context.Context, req SearchRequest) (*SearchResult, error) {
	if strings.TrimSpace(req.Address) == "" {
		return nil, fmt.Errorf("%w: address must not be empty", ErrInvalidInput)
	}
	if req.Keyword == "" {
		req.Keyword = "餐厅"
	}
	if req.RadiusM == 0 {
		req.RadiusM = places.DefaultRadius
	}
	if req.MaxResults < 1 || req.MaxResults > maxSearchResults {
		s.log.Warn("max results out of range, using default",
			slog.Int("max_results", req.MaxResults),
			slog.Int("default", defaultSearchResults),
		)
		req.MaxResults = defaultSearchResults
	}

	origin, err := s.upstream.Geocode(ctx, req.Address)
	if err != nil {
		return nil, err
	}

	keywords := []string{req.Keyword}
	if req.Fuzzy {
		keywords = fuzzy.Expand(req.Keyword, s.cuisines)
		s.log.Info("fuzzy expansion", slog.Int("keywords", len(keywords)))
	}

	sortName, sortRule := upstreamSort(req.SortBy)
	var merged []models.RawDetail
	seen := make(map[string]struct{})
	for _, keyword := range keywords {
		hits, err := s.upstream.Search(ctx, places.SearchParams{
			Query:        keyword,
			Center:       origin,
			Radius:       req.RadiusM,
			Limit:        req.MaxResults,
			PriceSection: priceSection(req.PriceRange),
			SortName:     sortName,
			SortRule:     sortRule,
		})
		if err != nil {
			// One expanded keyword failing must not sink the others.
			s.log.Warn("keyword search failed",
				slog.String("keyword", keyword),
				slog.Any("err", err),
			)
			continue
		}
		for _, hit := range hits {
			uid := hit.UID()
			if uid == "" {
				continue
			}
			if _, dup := seen[uid]; dup {
				continue
			}
			seen[uid] = struct{}{}
			merged = append(merged, hit)
		}
	}

	if len(merged) > req.MaxResults {
		merged = merged[:req.MaxResults]
	}

	results := make([]FoundVenue, 0, len(merged))
	for _, hit := range merged {
		rec := normalize.Record(hit)
		results = append(results, FoundVenue{
			VenueRecord: rec,
			UserReviews: s.store.List(rec.ID),
		})
	}

	s.log.Info("nearby search completed",
		slog.String("keyword", req.Keyword),
		slog.Int("results", len(results)),
	)

	return &SearchResult{
		Address:    req.Address,
		Keyword:    req.Keyword,
		Fuzzy:      req.Fuzzy,
		RadiusM:    req.RadiusM,
		PriceRange: req.PriceRange,
		SortBy:     req.SortBy,
		Results:    results,
	}, nil
}

// VenueDetails is a normalized record with its accumulated reviews.
type VenueDetails struct {
	models.VenueRecord
	UserReviews []models.UserReview `json:"user_reviews"`
}

// Details fetches (or serves from cache) one venue's record.
func (s *Service) Details(ctx context.Context, uid string, refresh bool) (*VenueDetails, error) {
	raw, err := s.FetchOne(ctx, uid, refresh)
	if err != nil {
		return nil, err
	}

	rec := normalize.Record(raw)
	if rec.ID == "" {
		rec.ID = uid
	}

	return &VenueDetails{
		VenueRecord: rec,
		UserReviews: s.store.List(rec.ID),
	}, nil
}

// ComparedVenue is one venue's breakdown inside a comparison.
type ComparedVenue struct {
	models.VenueRecord
	CompositeScore        float64             `json:"composite_score"`
	UserReviewCount       int                 `json:"user_review_count"`
	UserAverageRating     float64             `json:"user_average_rating"`
	RepresentativeReviews []models.UserReview `json:"representative_reviews,omitempty"`
}

// Comparison holds per-venue breakdowns ordered by composite score.
type Comparison struct {
	Venues []ComparedVenue `json:"comparison"`
	Count  int             `json:"count"`
}

// Compare fetches up to ten venues and orders their breakdowns by composite
// score, attaching review stats and up to two representative reviews each.
// Venues whose details cannot be fetched are skipped.
func (s *Service) Compare(ctx context.Context, uids []string) (*Comparison, error) {
	if len(uids) == 0 {
		return nil, fmt.Errorf("%w: at least one venue id is required", ErrInvalidInput)
	}
	if len(uids) > maxCompareVenues {
		return nil, fmt.Errorf("%w: at most %d venues can be compared", ErrInvalidInput, maxCompareVenues)
	}

	cands := s.assemble(s.FetchMany(ctx, uids, false), nil)
	scoring.Rank(cands, scoring.ByRating, nil)

	venues := make([]ComparedVenue, 0, len(cands))
	for _, c := range cands {
		count, mean := s.store.Stats(c.Record.ID)
		venues = append(venues, ComparedVenue{
			VenueRecord:           c.Record,
			CompositeScore:        c.Score,
			UserReviewCount:       count,
			UserAverageRating:     mean,
			RepresentativeReviews: reviews.Representative(c.Reviews),
		})
	}

	s.log.Info("comparison completed", slog.Int("venues", len(venues)))
	return &Comparison{Venues: venues, Count: len(venues)}, nil
}

// MapRequest parameterizes a static-map render.
type MapRequest struct {
	UIDs   []string `json:"uids"`
	Width  int      `json:"width"`
	Height int      `json:"height"`
	Zoom   int      `json:"zoom"`
}

// MapVenue is one marker on the rendered map.
type MapVenue struct {
	ID       string            `json:"uid"`
	Name     string            `json:"name"`
	Location models.Coordinate `json:"location"`
}

// VenueMapResult carries the static-map URL plus the markers behind it.
type VenueMapResult struct {
	MapURL string            `json:"map_url"`
	Venues []MapVenue        `json:"venues"`
	Center models.Coordinate `json:"center"`
	Width  int               `json:"width"`
	Height int               `json:"height"`
	Zoom   int               `json:"zoom"`
}

// VenueMap builds a static-map URL marking up to ten venues, centered on
// their centroid. Venues without a usable coordinate are dropped; the call
// fails only when none remain.
func (s *Service) VenueMap(ctx context.Context, req MapRequest) (*VenueMapResult, error) {
	if len(req.UIDs) == 0 {
		return nil, fmt.Errorf("%w: at least one venue id is required", ErrInvalidInput)
	}
	if len(req.UIDs) > maxCompareVenues {
		return nil, fmt.Errorf("%w: at most %d venues can be mapped", ErrInvalidInput, maxCompareVenues)
	}
	req.Width = correctRange(s.log, "width", req.Width, 200, 1000, defaultMapWidth)
	req.Height = correctRange(s.log, "height", req.Height, 200, 1000, defaultMapHeight)
	req.Zoom = correctRange(s.log, "zoom", req.Zoom, 3, 19, defaultMapZoom)

	raws := s.FetchMany(ctx, req.UIDs, false)

	venues := make([]MapVenue, 0, len(raws))
	points := make([]models.Coordinate, 0, len(raws))
	for i, raw := range raws {
		if raw == nil {
			continue
		}
		rec := normalize.Record(raw)
		if !rec.HasLocation {
			s.log.Warn("venue has no usable location", slog.String("uid", req.UIDs[i]))
			continue
		}
		id := rec.ID
		if id == "" {
			id = req.UIDs[i]
		}
		venues = append(venues, MapVenue{ID: id, Name: rec.Name, Location: rec.Location})
		points = append(points, rec.Location)
	}

	if len(venues) == 0 {
		return nil, ErrNoLocations
	}

	center, err := geo.Centroid(points)
	if err != nil {
		return nil, err
	}

	return &VenueMapResult{
		MapURL: s.upstream.StaticMapURL(center, req.Width, req.Height, req.Zoom, points),
		Venues: venues,
		Center: center,
		Width:  req.Width,
		Height: req.Height,
		Zoom:   req.Zoom,
	}, nil
}

// SubmitReview validates and appends a review, then forwards it to the
// archive stream when a publisher is configured. Publish failures are logged
// and never fail the submission.
func (s *Service) SubmitReview(ctx context.Context, venueID string, rating float64, text string) (models.UserReview, error) {
	if strings.TrimSpace(venueID) == "" {
		return models.UserReview{}, fmt.Errorf("%w: venue id must not be empty", ErrInvalidInput)
	}
	if rating < 0 || rating > 5 {
		return models.UserReview{}, fmt.Errorf("%w: rating must be within [0, 5]", ErrInvalidInput)
	}

	review := models.UserReview{
		ID:          uuid.NewString(),
		VenueID:     venueID,
		Rating:      rating,
		Text:        strings.TrimSpace(text),
		SubmittedAt: time.Now().UTC(),
	}
	s.store.Append(review)

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, review); err != nil {
			s.log.Warn("review publish failed",
				slog.String("review_id", review.ID),
				slog.Any("err", err),
			)
		}
	}

	s.log.Info("review accepted",
		slog.String("venue_id", venueID),
		slog.Float64("rating", rating),
	)
	return review, nil
}

// assemble normalizes a raw batch into rankable candidates, skipping nil
// slots. When origin is set, each candidate with a location gets its
// great-circle distance from it.
func (s *Service) assemble(raws []models.RawDetail, origin *models.Coordinate) []scoring.Candidate {
	cands := make([]scoring.Candidate, 0, len(raws))
	for _, raw := range raws {
		if raw == nil {
			continue
		}
		rec := normalize.Record(raw)

		var distance *float64
		if origin != nil && rec.HasLocation {
			d := math.Round(geo.Distance(*origin, rec.Location))
			distance = &d
		}

		cands = append(cands, scoring.Candidate{
			Record:    rec,
			DistanceM: distance,
			Reviews:   s.store.List(rec.ID),
		})
	}
	return cands
}

// correctRange clamps v into [min, max], logging the correction to def.
func correctRange(log *slog.Logger, name string, v, min, max, def int) int {
	if v == 0 {
		return def
	}
	if v < min || v > max {
		log.Warn("value out of range, using default",
			slog.String("param", name),
			slog.Int("value", v),
			slog.Int("default", def),
		)
		return def
	}
	return v
}
