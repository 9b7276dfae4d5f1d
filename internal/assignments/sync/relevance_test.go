package sync

import "testing"

func TestRelevantReservationStates(t *testing.T) {
	cases := []struct {
		state string
		want  bool
	}{
		{"Confirmed", true},
		{"started", true},
		{"Processed", true},
		{"CheckedOut", true},
		{"Checked-Out", true},
		{"checked_out", true},
		{"", true},
		{"Canceled", false},
		{"Cancelled", false},
		{"cancel_pending", false},
		{"Enquired", false},
		{"Optional", false},
	}
	for _, tc := range cases {
		if got := relevantReservation(tc.state); got != tc.want {
			t.Fatalf("relevantReservation(%q) = %v, want %v", tc.state, got, tc.want)
		}
	}
}
