package availability

import (
	"context"
	"errors"
	"testing"
	"time"

	"mews_bridge_backend/internal/mews"
	"mews_bridge_backend/platform/apperr"
	"mews_bridge_backend/platform/logger"
)

type fakeSource struct {
	byService map[string]mews.Availability
	failing   map[string]error
}

func (f *fakeSource) FetchAvailability(_ context.Context, serviceID string, _, _ time.Time) (mews.Availability, error) {
	if err, ok := f.failing[serviceID]; ok {
		return mews.Availability{}, err
	}
	return f.byService[serviceID], nil
}

type staticSyncConfig struct{ serviceIDs []string }

func (c staticSyncConfig) GetReservableServiceIDs() []string { return c.serviceIDs }
func (c staticSyncConfig) GetLinenServiceIDs() []string      { return nil }
func (c staticSyncConfig) GetLinenProductIDs() []string      { return nil }
func (c staticSyncConfig) GetSyncDaysBack() int              { return 1 }
func (c staticSyncConfig) GetSyncDaysAhead() int             { return 30 }
func (c staticSyncConfig) GetHotelTimezone() string          { return "Europe/Oslo" }
func (c staticSyncConfig) IsSyncDryRun() bool                { return false }

func TestFetchMergesAllServicesSorted(t *testing.T) {
	src := &fakeSource{byService: map[string]mews.Availability{
		"svc-b": {
			TimeUnitStartsUTC: []time.Time{time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC)},
			Categories:        []mews.CategoryAvailability{{CategoryID: "cat-1", Availabilities: []int{2}}},
		},
		"svc-a": {},
	}}
	svc := New(src, staticSyncConfig{serviceIDs: []string{"svc-b", "svc-a"}}, logger.New("test"))

	out, err := svc.Fetch(context.Background(),
		time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 services, got %d", len(out))
	}
	if out[0].ServiceID != "svc-a" || out[1].ServiceID != "svc-b" {
		t.Fatalf("results not sorted by service id: %v, %v", out[0].ServiceID, out[1].ServiceID)
	}
	if len(out[1].TimeUnits) != 1 || out[1].TimeUnits[0] != "2025-06-05T00:00:00Z" {
		t.Fatalf("time units lost: %v", out[1].TimeUnits)
	}
}

func TestFetchFailsWhenAnyServiceFails(t *testing.T) {
	src := &fakeSource{
		byService: map[string]mews.Availability{"svc-a": {}},
		failing:   map[string]error{"svc-b": errors.New("boom")},
	}
	svc := New(src, staticSyncConfig{serviceIDs: []string{"svc-a", "svc-b"}}, logger.New("test"))

	_, err := svc.Fetch(context.Background(),
		time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC))
	if apperr.GetKind(err) != apperr.KindUpstream {
		t.Fatalf("expected upstream error, got %v", err)
	}
}

func TestFetchRejectsInvertedRange(t *testing.T) {
	svc := New(&fakeSource{}, staticSyncConfig{}, logger.New("test"))
	_, err := svc.Fetch(context.Background(),
		time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC))
	if apperr.GetKind(err) != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
