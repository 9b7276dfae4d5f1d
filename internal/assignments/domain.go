// Package assignments defines the housekeeping assignment entity: one unit
// of work (cleaning or linen delivery) for one physical unit on one local
// calendar date.
package assignments

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

// Assignment types. The Norwegian terms are the wire values the mobile app
// and the storage schema use.
const (
	TypeCleaning = "vask"
	TypeLinen    = "sengetoy"
)

// Workflow statuses. The sync only ever writes StatusNotStarted; the rest
// are advanced by housekeeping staff through the API.
const (
	StatusNotStarted = "not_started"
	StatusInProgress = "in_progress"
	StatusDone       = "done"
)

// UnknownCabinNo is used when no cabin label can be derived from a unit name.
const UnknownCabinNo = "UNKNOWN"

// Assignment is one housekeeping task row.
type Assignment struct {
	ID       int64
	Date     string // local calendar date, YYYY-MM-DD
	UnitName string
	UnitKey  string
	CabinNo  string
	Title    string
	Type     string
	Status   string
	Comment  *string
	PhotoURL *string

	MewsReservationID *string
	MewsSpaceID       *string
	MewsServiceID     *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ValidType reports whether t is a known assignment type.
func ValidType(t string) bool {
	return t == TypeCleaning || t == TypeLinen
}

// ValidStatus reports whether s is a known workflow status.
func ValidStatus(s string) bool {
	return s == StatusNotStarted || s == StatusInProgress || s == StatusDone
}

// UnitKey normalizes a unit name into the natural dedup key: lower-cased,
// trimmed, internal whitespace collapsed to single spaces.
func UnitKey(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

// CabinNo derives the short cabin label from a unit name: the first
// whitespace-delimited token that contains a digit, otherwise the full
// name, otherwise UNKNOWN.
func CabinNo(unitName string) string {
	fields := strings.Fields(unitName)
	if len(fields) == 0 {
		return UnknownCabinNo
	}
	for _, f := range fields {
		if containsDigit(f) {
			return f
		}
	}
	return strings.TrimSpace(unitName)
}

// CleaningTitle builds the title for a departure cleaning task.
func CleaningTitle(unitName string) string {
	return "Sluttrengjøring " + unitName
}

// LinenTitle builds the title for a linen delivery task. The count suffix is
// only added for more than one set.
func LinenTitle(unitName string, count int) string {
	title := "Sengetøy " + unitName
	if count > 1 {
		title = fmt.Sprintf("%s x%d", title, count)
	}
	return title
}

// UnknownUnitName builds the placeholder name used when a space id resolves
// to no known unit.
func UnknownUnitName(spaceID string) string {
	return fmt.Sprintf("Ukjent enhet (%s)", spaceID)
}

func containsDigit(s string) bool {
	for _, r := range s {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
