package sync

import "strings"

// reservation states that keep a reservation in scope for the sync
var relevantStates = []string{"confirmed", "started", "processed", "checkedout"}

// relevantReservation reports whether a reservation in the given state
// should produce assignments. Anything cancelled is skipped outright; an
// empty state is treated as relevant because some connector payloads omit it.
func relevantReservation(state string) bool {
	s := normalizeState(state)

	if strings.Contains(s, "cancel") {
		return false
	}
	if s == "" {
		return true
	}
	for _, want := range relevantStates {
		if strings.Contains(s, want) {
			return true
		}
	}
	return false
}

func normalizeState(state string) string {
	s := strings.ToLower(strings.TrimSpace(state))
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '_':
			return -1
		}
		return r
	}, s)
}
