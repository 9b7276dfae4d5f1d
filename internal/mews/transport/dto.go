// Package transport defines the raw Mews Connector API wire shapes.
package transport

// Reservation is the raw reservation payload. Connector versions differ in
// which start/end variant they populate, so all known variants are declared
// and resolved once by the adapter.
type Reservation struct {
	Id                string           `json:"Id"`
	State             string           `json:"State"`
	ServiceId         string           `json:"ServiceId"`
	StartUtc          *string          `json:"StartUtc,omitempty"`
	ScheduledStartUtc *string          `json:"ScheduledStartUtc,omitempty"`
	Start             *string          `json:"Start,omitempty"`
	ArrivalUtc        *string          `json:"ArrivalUtc,omitempty"`
	EndUtc            *string          `json:"EndUtc,omitempty"`
	ScheduledEndUtc   *string          `json:"ScheduledEndUtc,omitempty"`
	End               *string          `json:"End,omitempty"`
	DepartureUtc      *string          `json:"DepartureUtc,omitempty"`
	AssignedSpaceId   *string          `json:"AssignedSpaceId,omitempty"`
	AssignedResourceId *string         `json:"AssignedResourceId,omitempty"`
	SpaceId           *string          `json:"SpaceId,omitempty"`
	AssignedSpaceName *string          `json:"AssignedSpaceName,omitempty"`
	OrderId           *string          `json:"OrderId,omitempty"`
	ServiceOrderId    *string          `json:"ServiceOrderId,omitempty"`
	Order             *ReservationOrder `json:"Order,omitempty"`
	Items             []OrderRef       `json:"Items,omitempty"`
}

// ReservationOrder is the nested order object some payloads carry.
type ReservationOrder struct {
	Id      *string `json:"Id,omitempty"`
	OrderId *string `json:"OrderId,omitempty"`
}

// OrderRef is a per-line-item order reference variant.
type OrderRef struct {
	OrderId        *string `json:"OrderId,omitempty"`
	ServiceOrderId *string `json:"ServiceOrderId,omitempty"`
}

// OrderItem is the raw order item payload.
type OrderItem struct {
	Id             string  `json:"Id"`
	ProductId      string  `json:"ProductId"`
	OrderId        *string `json:"OrderId,omitempty"`
	ServiceOrderId *string `json:"ServiceOrderId,omitempty"`
	Count          *int    `json:"Count,omitempty"`
}

// Product is the raw product payload.
type Product struct {
	Id           string            `json:"Id"`
	Name         string            `json:"Name"`
	Names        map[string]string `json:"Names,omitempty"`
	ExternalName string            `json:"ExternalName,omitempty"`
}

// CategoryAvailability is one row of the availability response.
type CategoryAvailability struct {
	CategoryId     string `json:"CategoryId"`
	Availabilities []int  `json:"Availabilities"`
}

// ReservationsResponse wraps reservations/getAll.
type ReservationsResponse struct {
	Reservations []Reservation `json:"Reservations"`
}

// OrderItemsResponse wraps orderItems/getAll.
type OrderItemsResponse struct {
	OrderItems []OrderItem `json:"OrderItems"`
}

// ProductsResponse wraps products/getAll.
type ProductsResponse struct {
	Products []Product `json:"Products"`
}

// AvailabilityResponse wraps services/getAvailability.
type AvailabilityResponse struct {
	TimeUnitStartsUtc      []string               `json:"TimeUnitStartsUtc"`
	CategoryAvailabilities []CategoryAvailability `json:"CategoryAvailabilities"`
}
