package sync

import "mews_bridge_backend/internal/mews"

// BuildOrderIndex adds every order/service-order identifier carried by the
// given reservations to the index, mapping it to the owning reservation id.
// First writer wins on collision: a given order identifier belongs to at
// most one reservation.
func BuildOrderIndex(reservations []mews.Reservation, index map[string]string) {
	for _, res := range reservations {
		for _, orderID := range res.OrderIDs {
			if _, exists := index[orderID]; exists {
				continue
			}
			index[orderID] = res.ID
		}
	}
}
