package scoring

import (
	"sort"
	"strings"

	"github.com/foodmap/food-radar/internal/models"
)

// Criterion selects the ranking order.
type Criterion string

const (
	ByRating   Criterion = "rating"
	ByDistance Criterion = "distance"
	ByPrice    Criterion = "price"
)

// ParseCriterion maps a caller-supplied sort string onto a Criterion,
// defaulting to the composite-score order.
func ParseCriterion(raw string) Criterion {
	switch Criterion(strings.ToLower(strings.TrimSpace(raw))) {
	case ByDistance:
		return ByDistance
	case ByPrice:
		return ByPrice
	default:
		return ByRating
	}
}

// Preferences personalizes the composite score.
type Preferences struct {
	// Cuisine boosts venues whose tag contains this string.
	Cuisine string
}

// Composite computes the desirability score for one venue. Pure and
// deterministic: the same record, review snapshot and preferences always
// produce the same score.
//
// Weighting: base ratings 50%, popularity 25%, price reasonableness 15%,
// accumulated user reviews 10%; a matched cuisine preference multiplies the
// total by 1.1.
func Composite(rec models.VenueRecord, reviews []models.UserReview, prefs *Preferences) float64 {
	base := rec.OverallRating
	if rec.TasteRating > 0 || rec.ServiceRating > 0 || rec.EnvironmentRating > 0 {
		base = rec.TasteRating*0.3 + rec.ServiceRating*0.2 +
			rec.EnvironmentRating*0.2 + rec.OverallRating*0.3
	}

	// Diminishing-returns popularity signal, capped at 1.0.
	raw := float64(rec.CommentCount+rec.FavoriteCount*2+rec.CheckinCount) / 100
	if raw > 10 {
		raw = 10
	}
	social := raw / 10

	priceFactor := 1.0
	if rec.HasPrice {
		switch {
		case rec.Price >= 50 && rec.Price <= 200:
			priceFactor = 1.1
		case rec.Price > 500:
			priceFactor = 0.9
		}
	}

	userFactor := 0.0
	if len(reviews) > 0 {
		var sum float64
		for _, r := range reviews {
			sum += r.Rating
		}
		userFactor = sum / float64(len(reviews)) / 5.0
	}

	score := base*0.5 + social*0.25 + priceFactor*0.15 + userFactor*0.10

	if prefs != nil && prefs.Cuisine != "" && strings.Contains(rec.Tag, prefs.Cuisine) {
		score *= 1.1
	}

	return score
}

// Candidate is one rankable venue: the normalized record plus the
// per-invocation distance from the query origin and the current review
// snapshot. Score is filled by Rank.
type Candidate struct {
	Record    models.VenueRecord
	DistanceM *float64
	Reviews   []models.UserReview
	Score     float64
}

// Rank orders candidates in place under the given criterion. All sorts are
// stable, so equal primary keys keep their input order. Composite scores are
// recomputed from the supplied review snapshots, never reused from an
// earlier call.
func Rank(cands []Candidate, criterion Criterion, prefs *Preferences) {
	for i := range cands {
		cands[i].Score = Composite(cands[i].Record, cands[i].Reviews, prefs)
	}

	switch criterion {
	case ByDistance:
		// Ascending distance; unknown distance sorts last.
		sort.SliceStable(cands, func(i, j int) bool {
			return distanceKey(cands[i]) < distanceKey(cands[j])
		})
	case ByPrice:
		// Ascending price with unknown price last; composite desc breaks ties.
		sort.SliceStable(cands, func(i, j int) bool {
			pi, pj := priceKey(cands[i]), priceKey(cands[j])
			if pi != pj {
				return pi < pj
			}
			return cands[i].Score > cands[j].Score
		})
	default:
		// Composite desc; nearer venue breaks ties.
		sort.SliceStable(cands, func(i, j int) bool {
			if cands[i].Score != cands[j].Score {
				return cands[i].Score > cands[j].Score
			}
			return distanceKey(cands[i]) < distanceKey(cands[j])
		})
	}
}

const unknownKey = 1e18

func distanceKey(c Candidate) float64 {
	if c.DistanceM == nil {
		return unknownKey
	}
	return *c.DistanceM
}

func priceKey(c Candidate) float64 {
	if !c.Record.HasPrice {
		return unknownKey
	}
	return c.Record.Price
}
