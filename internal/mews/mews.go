// Package mews provides the upstream reservation source: normalized domain
// types for Mews Connector API payloads and the boundary adapter that maps
// the raw wire shapes onto them.
package mews

import "time"

// Reservation is a normalized upstream reservation. Start/end are UTC
// instants; either may be nil when the upstream payload carried no parsable
// timestamp.
type Reservation struct {
	ID        string
	State     string
	ServiceID string
	StartUTC  *time.Time
	EndUTC    *time.Time
	SpaceID   string
	SpaceName string
	// OrderIDs holds every order/service-order identifier seen on the
	// reservation, used to link order items back to it.
	OrderIDs []string
}

// OrderItem is a normalized upstream order line item.
type OrderItem struct {
	ID        string
	ProductID string
	OrderID   string
	Count     int
}

// Product is a normalized upstream product, used only for linen
// classification.
type Product struct {
	ID   string
	Name string
}

// CategoryAvailability holds per-category availability counts aligned with
// Availability.TimeUnitStartsUTC.
type CategoryAvailability struct {
	CategoryID     string
	Availabilities []int
}

// Availability is the normalized availability block for a service.
type Availability struct {
	TimeUnitStartsUTC []time.Time
	Categories        []CategoryAvailability
}
