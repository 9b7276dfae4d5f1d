package mews

import (
	"time"

	"mews_bridge_backend/internal/mews/transport"
)

// NormalizeReservation maps a raw reservation onto the domain shape,
// resolving the start/end field variants in priority order. An unparsable
// timestamp is skipped in favor of the next variant.
func NormalizeReservation(raw transport.Reservation) Reservation {
	return Reservation{
		ID:        raw.Id,
		State:     raw.State,
		ServiceID: raw.ServiceId,
		StartUTC:  parseFirst(raw.StartUtc, raw.ScheduledStartUtc, raw.Start, raw.ArrivalUtc),
		EndUTC:    parseFirst(raw.EndUtc, raw.ScheduledEndUtc, raw.End, raw.DepartureUtc),
		SpaceID:   firstNonEmpty(raw.AssignedSpaceId, raw.AssignedResourceId, raw.SpaceId),
		SpaceName: deref(raw.AssignedSpaceName),
		OrderIDs:  collectOrderIDs(raw),
	}
}

// NormalizeReservations maps a slice of raw reservations.
func NormalizeReservations(raw []transport.Reservation) []Reservation {
	out := make([]Reservation, 0, len(raw))
	for _, r := range raw {
		out = append(out, NormalizeReservation(r))
	}
	return out
}

// NormalizeOrderItem maps a raw order item. A missing or non-positive count
// is treated as one unit.
func NormalizeOrderItem(raw transport.OrderItem) OrderItem {
	count := 1
	if raw.Count != nil && *raw.Count > 0 {
		count = *raw.Count
	}
	return OrderItem{
		ID:        raw.Id,
		ProductID: raw.ProductId,
		OrderID:   firstNonEmpty(raw.OrderId, raw.ServiceOrderId),
		Count:     count,
	}
}

// NormalizeOrderItems maps a slice of raw order items.
func NormalizeOrderItems(raw []transport.OrderItem) []OrderItem {
	out := make([]OrderItem, 0, len(raw))
	for _, it := range raw {
		out = append(out, NormalizeOrderItem(it))
	}
	return out
}

// NormalizeProduct maps a raw product, preferring the plain name over
// localized and external variants.
func NormalizeProduct(raw transport.Product) Product {
	name := raw.Name
	if name == "" {
		if n, ok := raw.Names["en-US"]; ok && n != "" {
			name = n
		} else {
			for _, n := range raw.Names {
				if n != "" {
					name = n
					break
				}
			}
		}
	}
	if name == "" {
		name = raw.ExternalName
	}
	return Product{ID: raw.Id, Name: name}
}

// NormalizeProducts maps a slice of raw products.
func NormalizeProducts(raw []transport.Product) []Product {
	out := make([]Product, 0, len(raw))
	for _, p := range raw {
		out = append(out, NormalizeProduct(p))
	}
	return out
}

// NormalizeAvailability maps the raw availability response. Time units that
// fail to parse are dropped.
func NormalizeAvailability(raw transport.AvailabilityResponse) Availability {
	av := Availability{}
	for _, s := range raw.TimeUnitStartsUtc {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			av.TimeUnitStartsUTC = append(av.TimeUnitStartsUTC, t.UTC())
		}
	}
	for _, cat := range raw.CategoryAvailabilities {
		av.Categories = append(av.Categories, CategoryAvailability{
			CategoryID:     cat.CategoryId,
			Availabilities: cat.Availabilities,
		})
	}
	return av
}

// collectOrderIDs gathers every known order/service-order identifier variant
// from a reservation, deduplicated in first-seen order.
func collectOrderIDs(raw transport.Reservation) []string {
	var ids []string
	seen := make(map[string]struct{})

	add := func(v *string) {
		if v == nil || *v == "" {
			return
		}
		if _, ok := seen[*v]; ok {
			return
		}
		seen[*v] = struct{}{}
		ids = append(ids, *v)
	}

	add(raw.OrderId)
	add(raw.ServiceOrderId)
	if raw.Order != nil {
		add(raw.Order.Id)
		add(raw.Order.OrderId)
	}
	for _, item := range raw.Items {
		add(item.OrderId)
		add(item.ServiceOrderId)
	}

	return ids
}

func parseFirst(candidates ...*string) *time.Time {
	for _, c := range candidates {
		if c == nil || *c == "" {
			continue
		}
		if t, err := time.Parse(time.RFC3339, *c); err == nil {
			utc := t.UTC()
			return &utc
		}
	}
	return nil
}

func firstNonEmpty(candidates ...*string) string {
	for _, c := range candidates {
		if c != nil && *c != "" {
			return *c
		}
	}
	return ""
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
