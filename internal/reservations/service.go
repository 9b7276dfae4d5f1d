// Package reservations exposes a read-only view of upstream reservations,
// enriched with local unit names, for the booking overview screens.
package reservations

import (
	"context"
	"sort"
	"time"

	"mews_bridge_backend/internal/mews"
	"mews_bridge_backend/platform/apperr"
	"mews_bridge_backend/platform/config"
	"mews_bridge_backend/platform/logger"

	"golang.org/x/sync/errgroup"
)

// Source fetches reservations from the upstream PMS.
type Source interface {
	FetchReservations(ctx context.Context, serviceID string, start, end time.Time) ([]mews.Reservation, error)
}

// UnitDirectory maps upstream space ids to local unit names.
type UnitDirectory interface {
	Directory(ctx context.Context) (map[string]string, error)
}

// Reservation is the enriched read model returned to the app.
type Reservation struct {
	ID        string `json:"id"`
	State     string `json:"state"`
	ServiceID string `json:"serviceId"`
	UnitName  string `json:"unitName"`
	SpaceID   string `json:"spaceId,omitempty"`
	StartUTC  string `json:"startUtc,omitempty"`
	EndUTC    string `json:"endUtc,omitempty"`
}

// Service lists reservations across all bookable services.
type Service struct {
	src        Source
	units      UnitDirectory
	serviceIDs []string
	log        *logger.Logger
}

// New creates the reservations read service.
func New(src Source, units UnitDirectory, cfg config.SyncConfig, log *logger.Logger) *Service {
	return &Service{src: src, units: units, serviceIDs: cfg.GetReservableServiceIDs(), log: log}
}

// List returns all reservations colliding with [start, end), newest first,
// with unit names resolved from the local directory where known.
func (s *Service) List(ctx context.Context, start, end time.Time) ([]Reservation, error) {
	if !end.After(start) {
		return nil, apperr.Validation("end must be after start")
	}

	dir, err := s.units.Directory(ctx)
	if err != nil {
		return nil, err
	}

	all := make([]mews.Reservation, 0, 64)
	var g errgroup.Group
	g.SetLimit(4)
	results := make([][]mews.Reservation, len(s.serviceIDs))
	for i, serviceID := range s.serviceIDs {
		i, serviceID := i, serviceID
		g.Go(func() error {
			batch, err := s.src.FetchReservations(ctx, serviceID, start, end)
			if err != nil {
				s.log.UpstreamError("fetch reservations", serviceID, err)
				return apperr.Wrap(apperr.KindUpstream, "reservation fetch failed", err)
			}
			results[i] = batch
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for _, batch := range results {
		all = append(all, batch...)
	}

	out := make([]Reservation, 0, len(all))
	for _, res := range all {
		out = append(out, enrich(res, dir))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartUTC > out[j].StartUTC })
	return out, nil
}

func enrich(res mews.Reservation, dir map[string]string) Reservation {
	name := dir[res.SpaceID]
	if name == "" {
		name = res.SpaceName
	}
	r := Reservation{
		ID:        res.ID,
		State:     res.State,
		ServiceID: res.ServiceID,
		UnitName:  name,
		SpaceID:   res.SpaceID,
	}
	if res.StartUTC != nil {
		r.StartUTC = res.StartUTC.UTC().Format(time.RFC3339)
	}
	if res.EndUTC != nil {
		r.EndUTC = res.EndUTC.UTC().Format(time.RFC3339)
	}
	return r
}
