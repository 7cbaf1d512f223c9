package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/foodmap/food-radar/internal/models"
)

// FetchOne returns the raw detail record for one venue. Within a cache
// window the first fetch hits the network and later calls are served from
// the cache; force bypasses the lookup and overwrites the entry. Concurrent
// fetches for the same id collapse into a single upstream call.
func (s *Service) FetchOne(ctx context.Context, uid string, force bool) (models.RawDetail, error) {
	if strings.TrimSpace(uid) == "" {
		return nil, fmt.Errorf("%w: empty venue id", ErrInvalidInput)
	}

	if !force {
		if raw, ok := s.details.Get(uid); ok {
			s.log.Debug("detail cache hit", slog.String("uid", uid))
			return raw, nil
		}
	}

	v, err, _ := s.flight.Do(uid, func() (any, error) {
		raw, err := s.upstream.Detail(ctx, uid)
		if err != nil {
			return nil, err
		}
		// Stored only after a fully decoded success, so no partial entry
		// can be observed.
		s.details.Put(uid, raw)
		return raw, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(models.RawDetail), nil
}

// FetchMany fetches details for every id concurrently. The result has the
// same length and order as ids; a failed fetch leaves a nil slot and never
// fails the batch or cancels its siblings.
func (s *Service) FetchMany(ctx context.Context, uids []string, force bool) []models.RawDetail {
	results := make([]models.RawDetail, len(uids))

	var wg sync.WaitGroup
	for i, uid := range uids {
		wg.Add(1)
		go func(i int, uid string) {
			defer wg.Done()
			raw, err := s.FetchOne(ctx, uid, force)
			if err != nil {
				s.log.Warn("detail fetch failed",
					slog.String("uid", uid),
					slog.Any("err", err),
				)
				return
			}
			results[i] = raw
		}(i, uid)
	}
	wg.Wait()

	return results
}
