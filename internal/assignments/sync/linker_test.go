package sync

import (
	"testing"

	"mews_bridge_backend/internal/mews"
)

func TestBuildOrderIndexFirstWriterWins(t *testing.T) {
	index := make(map[string]string)

	BuildOrderIndex([]mews.Reservation{
		{ID: "res-1", OrderIDs: []string{"order-a", "order-b"}},
		{ID: "res-2", OrderIDs: []string{"order-b", "order-c"}},
	}, index)

	if index["order-a"] != "res-1" {
		t.Fatalf("order-a should link to res-1, got %s", index["order-a"])
	}
	if index["order-b"] != "res-1" {
		t.Fatalf("order-b was claimed first by res-1, got %s", index["order-b"])
	}
	if index["order-c"] != "res-2" {
		t.Fatalf("order-c should link to res-2, got %s", index["order-c"])
	}
}

func TestBuildOrderIndexAccumulatesAcrossBatches(t *testing.T) {
	index := make(map[string]string)

	BuildOrderIndex([]mews.Reservation{{ID: "res-1", OrderIDs: []string{"order-a"}}}, index)
	BuildOrderIndex([]mews.Reservation{{ID: "res-2", OrderIDs: []string{"order-z"}}}, index)

	if len(index) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(index))
	}
	if index["order-z"] != "res-2" {
		t.Fatalf("order-z should link to res-2, got %s", index["order-z"])
	}
}
