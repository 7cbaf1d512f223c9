package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/foodmap/food-radar/internal/cache"
	"github.com/foodmap/food-radar/internal/fuzzy"
	"github.com/foodmap/food-radar/internal/models"
	"github.com/foodmap/food-radar/internal/places"
	"github.com/foodmap/food-radar/internal/reviews"
)

// ErrInvalidInput marks caller arguments too broken to correct: an empty
// address, a blank venue id, an empty compare list. Recoverable out-of-range
// values are corrected to defaults with a logged warning instead.
var ErrInvalidInput = errors.New("invalid input")

// ErrNoLocations is returned by VenueMap when none of the requested venues
// has a usable coordinate.
var ErrNoLocations = errors.New("no venue has a usable location")

// Upstream is the slice of the places client the pipeline needs.
type Upstream interface {
	Geocode(ctx context.Context, address string) (models.Coordinate, error)
	Search(ctx context.Context, p places.SearchParams) ([]models.RawDetail, error)
	Detail(ctx context.Context, uid string) (models.RawDetail, error)
	StaticMapURL(center models.Coordinate, width, height, zoom int, markers []models.Coordinate) string
}

// Options tune the pipeline; zero values pick the defaults.
type Options struct {
	CacheWindow   time.Duration // detail cache bucket width, default 5m
	CacheCapacity int           // distinct detail entries retained, default 128
	Publisher     reviews.Publisher
	Cuisines      []string // fuzzy-expansion vocabulary, default fuzzy.DefaultCuisines
	Clock         cache.Clock
}

// Service runs the aggregation-and-ranking pipeline: geocode, discover,
// fetch details concurrently, normalize, score, rank.
type Service struct {
	log       *slog.Logger
	upstream  Upstream
	store     *reviews.Store
	publisher reviews.Publisher
	details   *cache.Bucketed[models.RawDetail]
	flight    singleflight.Group
	cuisines  []string
}

// New assembles a Service. A nil logger discards output.
func New(upstream Upstream, store *reviews.Store, opts Options, log *slog.Logger) *Service {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.CacheWindow <= 0 {
		opts.CacheWindow = 5 * time.Minute
	}
	if opts.CacheCapacity <= 0 {
		opts.CacheCapacity = 128
	}
	if opts.Cuisines == nil {
		opts.Cuisines = fuzzy.DefaultCuisines
	}

	return &Service{
		log:       log,
		upstream:  upstream,
		store:     store,
		publisher: opts.Publisher,
		details:   cache.New[models.RawDetail](opts.CacheWindow, opts.CacheCapacity, opts.Clock),
		cuisines:  opts.Cuisines,
	}
}

// Reviews exposes the underlying review store.
func (s *Service) Reviews() *reviews.Store { return s.store }

// priceSection maps the caller-facing price-range strings onto the
// provider's band codes. Unrecognized input means "no filter".
func priceSection(priceRange string) string {
	switch priceRange {
	case "0-50":
		return "1"
	case "50-100":
		return "2"
	case "100-200":
		return "3"
	case "200-400":
		return "4"
	case "400+":
		return "5"
	default:
		return ""
	}
}

// upstreamSort translates a local sort criterion into the provider's
// sort_name/sort_rule pair for pass-through; distance sorting stays local.
func upstreamSort(sortBy string) (string, *int) {
	asc, desc := 1, 0
	switch sortBy {
	case "price":
		return "price", &asc
	case "rating":
		return "overall_rating", &desc
	default:
		return "", nil
	}
}
