package reviews

import (
	"sort"
	"sync"

	"github.com/foodmap/food-radar/internal/models"
)

// Store is an in-memory, append-only log of user reviews keyed by venue id.
// Safe for concurrent append and read; reviews are never mutated or deleted.
type Store struct {
	mu      sync.RWMutex
	byVenue map[string][]models.UserReview
}

func NewStore() *Store {
	return &Store{byVenue: make(map[string][]models.UserReview)}
}

// Append records a review for its venue, preserving submission order.
func (s *Store) Append(r models.UserReview) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byVenue[r.VenueID] = append(s.byVenue[r.VenueID], r)
}

// List returns a copy of the reviews for a venue in submission order.
// The copy is the caller's snapshot; later appends do not alter it.
func (s *Store) List(venueID string) []models.UserReview {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.byVenue[venueID]
	if len(stored) == 0 {
		return nil
	}
	out := make([]models.UserReview, len(stored))
	copy(out, stored)
	return out
}

// Stats returns the review count and mean rating for a venue; a venue with
// no reviews reports (0, 0).
func (s *Store) Stats(venueID string) (int, float64) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.byVenue[venueID]
	if len(stored) == 0 {
		return 0, 0
	}

	var sum float64
	for _, r := range stored {
		sum += r.Rating
	}
	return len(stored), sum / float64(len(stored))
}

// Representative picks up to two reviews that bracket the venue's reception:
// the highest-rated first, then the lowest-rated. The input is not modified.
func Representative(rs []models.UserReview) []models.UserReview {
	if len(rs) == 0 {
		return nil
	}

	sorted := make([]models.UserReview, len(rs))
	copy(sorted, rs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Rating > sorted[j].Rating
	})

	picked := []models.UserReview{sorted[0]}
	if len(sorted) > 1 {
		picked = append(picked, sorted[len(sorted)-1])
	}
	return picked
}
