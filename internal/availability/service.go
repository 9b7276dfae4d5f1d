// Package availability serves occupancy data for the booking screens. It fans
// out one upstream availability call per bookable service and merges the
// results into a single response keyed by service.
package availability

import (
	"context"
	"sort"
	"sync"
	"time"

	"mews_bridge_backend/internal/mews"
	"mews_bridge_backend/platform/apperr"
	"mews_bridge_backend/platform/config"
	"mews_bridge_backend/platform/logger"

	"golang.org/x/sync/errgroup"
)

// Source fetches availability from the upstream PMS.
type Source interface {
	FetchAvailability(ctx context.Context, serviceID string, first, last time.Time) (mews.Availability, error)
}

// ServiceAvailability is one service's availability grid.
type ServiceAvailability struct {
	ServiceID  string                 `json:"serviceId"`
	TimeUnits  []string               `json:"timeUnits"`
	Categories []CategoryAvailability `json:"categories"`
}

// CategoryAvailability is the per-category availability row.
type CategoryAvailability struct {
	CategoryID     string `json:"categoryId"`
	Availabilities []int  `json:"availabilities"`
}

// Service aggregates availability across bookable services.
type Service struct {
	src        Source
	serviceIDs []string
	log        *logger.Logger
}

// New creates the availability service for the configured bookable services.
func New(src Source, cfg config.SyncConfig, log *logger.Logger) *Service {
	return &Service{src: src, serviceIDs: cfg.GetReservableServiceIDs(), log: log}
}

// Fetch returns availability for every bookable service over [first, last].
// Services are queried concurrently; a single failing service fails the whole
// request so the booking UI never renders a partial calendar.
func (s *Service) Fetch(ctx context.Context, first, last time.Time) ([]ServiceAvailability, error) {
	if !last.After(first) {
		return nil, apperr.Validation("end must be after start")
	}

	results := make([]ServiceAvailability, 0, len(s.serviceIDs))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, serviceID := range s.serviceIDs {
		serviceID := serviceID
		g.Go(func() error {
			avail, err := s.src.FetchAvailability(gctx, serviceID, first, last)
			if err != nil {
				s.log.UpstreamError("fetch availability", serviceID, err)
				return apperr.Wrap(apperr.KindUpstream, "availability fetch failed", err)
			}
			mu.Lock()
			results = append(results, toServiceAvailability(serviceID, avail))
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool { return results[i].ServiceID < results[j].ServiceID })
	return results, nil
}

func toServiceAvailability(serviceID string, avail mews.Availability) ServiceAvailability {
	out := ServiceAvailability{
		ServiceID:  serviceID,
		TimeUnits:  make([]string, 0, len(avail.TimeUnitStartsUTC)),
		Categories: make([]CategoryAvailability, 0, len(avail.Categories)),
	}
	for _, t := range avail.TimeUnitStartsUTC {
		out.TimeUnits = append(out.TimeUnits, t.UTC().Format(time.RFC3339))
	}
	for _, cat := range avail.Categories {
		out.Categories = append(out.Categories, CategoryAvailability{
			CategoryID:     cat.CategoryID,
			Availabilities: cat.Availabilities,
		})
	}
	return out
}
