package mews

import (
	"testing"
	"time"

	"mews_bridge_backend/internal/mews/transport"
)

func sp(s string) *string { return &s }
func ip(i int) *int       { return &i }

func TestNormalizeReservationResolvesEndVariantsInOrder(t *testing.T) {
	raw := transport.Reservation{
		Id:              "res-1",
		State:           "Confirmed",
		ServiceId:       "svc-1",
		ScheduledEndUtc: sp("2025-06-06T09:00:00Z"),
		DepartureUtc:    sp("2025-06-07T09:00:00Z"),
	}

	res := NormalizeReservation(raw)
	if res.EndUTC == nil {
		t.Fatal("end time not resolved")
	}
	want := time.Date(2025, 6, 6, 9, 0, 0, 0, time.UTC)
	if !res.EndUTC.Equal(want) {
		t.Fatalf("ScheduledEndUtc outranks DepartureUtc, got %s", res.EndUTC)
	}
}

func TestNormalizeReservationSkipsUnparsableTimestamp(t *testing.T) {
	raw := transport.Reservation{
		Id:     "res-1",
		EndUtc: sp("not-a-date"),
		End:    sp("2025-06-06T09:00:00Z"),
	}

	res := NormalizeReservation(raw)
	if res.EndUTC == nil {
		t.Fatal("should fall through to the next parsable variant")
	}
	if got := res.EndUTC.Format(time.RFC3339); got != "2025-06-06T09:00:00Z" {
		t.Fatalf("unexpected end time %s", got)
	}
}

func TestNormalizeReservationMissingEndStaysNil(t *testing.T) {
	res := NormalizeReservation(transport.Reservation{Id: "res-1"})
	if res.EndUTC != nil || res.StartUTC != nil {
		t.Fatal("missing instants must normalize to nil, not zero values")
	}
}

func TestNormalizeReservationCollectsOrderIDVariantsDeduplicated(t *testing.T) {
	raw := transport.Reservation{
		Id:             "res-1",
		OrderId:        sp("order-a"),
		ServiceOrderId: sp("order-a"),
		Order:          &transport.ReservationOrder{Id: sp("order-b")},
		Items: []transport.OrderRef{
			{OrderId: sp("order-c")},
			{ServiceOrderId: sp("order-b")},
		},
	}

	res := NormalizeReservation(raw)
	want := []string{"order-a", "order-b", "order-c"}
	if len(res.OrderIDs) != len(want) {
		t.Fatalf("expected %d order ids, got %v", len(want), res.OrderIDs)
	}
	for i, id := range want {
		if res.OrderIDs[i] != id {
			t.Fatalf("order ids out of first-seen order: %v", res.OrderIDs)
		}
	}
}

func TestNormalizeReservationSpaceIDPriority(t *testing.T) {
	raw := transport.Reservation{
		Id:                 "res-1",
		AssignedResourceId: sp("resource-1"),
		SpaceId:            sp("space-1"),
	}
	if got := NormalizeReservation(raw).SpaceID; got != "resource-1" {
		t.Fatalf("AssignedResourceId outranks SpaceId, got %q", got)
	}
}

func TestNormalizeOrderItemDefaultsCountToOne(t *testing.T) {
	if got := NormalizeOrderItem(transport.OrderItem{Id: "i1"}).Count; got != 1 {
		t.Fatalf("missing count should default to 1, got %d", got)
	}
	if got := NormalizeOrderItem(transport.OrderItem{Id: "i1", Count: ip(0)}).Count; got != 1 {
		t.Fatalf("zero count should default to 1, got %d", got)
	}
	if got := NormalizeOrderItem(transport.OrderItem{Id: "i1", Count: ip(4)}).Count; got != 4 {
		t.Fatalf("explicit count lost, got %d", got)
	}
}

func TestNormalizeProductNamePriority(t *testing.T) {
	p := NormalizeProduct(transport.Product{Id: "p1", Name: "Sengetøy"})
	if p.Name != "Sengetøy" {
		t.Fatalf("plain name lost, got %q", p.Name)
	}

	p = NormalizeProduct(transport.Product{Id: "p2", Names: map[string]string{"en-US": "Bed Linen", "nb-NO": "Sengetøy"}})
	if p.Name != "Bed Linen" {
		t.Fatalf("en-US localization should win, got %q", p.Name)
	}

	p = NormalizeProduct(transport.Product{Id: "p3", ExternalName: "Linen Set"})
	if p.Name != "Linen Set" {
		t.Fatalf("external name fallback lost, got %q", p.Name)
	}
}

func TestNormalizeAvailabilityDropsUnparsableTimeUnits(t *testing.T) {
	av := NormalizeAvailability(transport.AvailabilityResponse{
		TimeUnitStartsUtc: []string{"2025-06-05T00:00:00Z", "garbage", "2025-06-06T00:00:00Z"},
		CategoryAvailabilities: []transport.CategoryAvailability{
			{CategoryId: "cat-1", Availabilities: []int{2, 3}},
		},
	})

	if len(av.TimeUnitStartsUTC) != 2 {
		t.Fatalf("expected 2 parsable time units, got %d", len(av.TimeUnitStartsUTC))
	}
	if len(av.Categories) != 1 || av.Categories[0].CategoryID != "cat-1" {
		t.Fatalf("category availability lost: %+v", av.Categories)
	}
}
