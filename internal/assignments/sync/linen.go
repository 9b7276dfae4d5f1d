package sync

import (
	"regexp"
	"strconv"
	"strings"

	"mews_bridge_backend/internal/mews"
)

// Case-insensitive name fragments that mark a product as bed-linen/towel
// service when it is not on the explicit allow-list.
var linenNamePatterns = []string{
	"linen",
	"bed linen",
	"bedding",
	"sengetøy",
	"sengetoy",
	"sengesett",
	"håndkle",
	"handkle",
	"towel",
}

// personsPattern extracts the persons-per-unit hint from a product name,
// e.g. "Sengetøy 2 personer" -> 2.
var personsPattern = regexp.MustCompile(`(?i)(\d+)\s*(?:person(?:er)?|pers)`)

// LinenClassifier decides which products count as linen and how many
// occupants one unit of each serves.
type LinenClassifier struct {
	allowed map[string]struct{}
	linen   map[string]struct{}
	persons map[string]int
}

// NewLinenClassifier creates a classifier seeded with the configured product
// id allow-list.
func NewLinenClassifier(allowIDs []string) *LinenClassifier {
	c := &LinenClassifier{
		allowed: make(map[string]struct{}, len(allowIDs)),
		linen:   make(map[string]struct{}),
		persons: make(map[string]int),
	}
	for _, id := range allowIDs {
		c.allowed[id] = struct{}{}
	}
	return c
}

// AddProducts classifies a batch of upstream products.
func (c *LinenClassifier) AddProducts(products []mews.Product) {
	for _, p := range products {
		_, allowed := c.allowed[p.ID]
		if !allowed && !matchesLinenName(p.Name) {
			continue
		}
		c.linen[p.ID] = struct{}{}
		c.persons[p.ID] = personsPerUnit(p.Name)
	}
}

// IsLinen reports whether the product counts as linen. Allow-listed ids
// qualify even when the product catalog fetch never saw them.
func (c *LinenClassifier) IsLinen(productID string) bool {
	if _, ok := c.linen[productID]; ok {
		return true
	}
	_, ok := c.allowed[productID]
	return ok
}

// PersonsPerUnit returns how many occupants one unit of the product serves.
func (c *LinenClassifier) PersonsPerUnit(productID string) int {
	if n, ok := c.persons[productID]; ok {
		return n
	}
	return 1
}

// CountForReservation sums persons-per-unit over every linen order item that
// links back to the given reservation through the order index.
func (c *LinenClassifier) CountForReservation(reservationID string, items []mews.OrderItem, orderIndex map[string]string) int {
	total := 0
	for _, item := range items {
		if !c.IsLinen(item.ProductID) {
			continue
		}
		if item.OrderID == "" || orderIndex[item.OrderID] != reservationID {
			continue
		}
		count := item.Count
		if count < 1 {
			count = 1
		}
		total += c.PersonsPerUnit(item.ProductID) * count
	}
	return total
}

func matchesLinenName(name string) bool {
	lower := strings.ToLower(name)
	for _, pattern := range linenNamePatterns {
		if strings.Contains(lower, pattern) {
			return true
		}
	}
	return false
}

func personsPerUnit(name string) int {
	match := personsPattern.FindStringSubmatch(name)
	if match == nil {
		return 1
	}
	n, err := strconv.Atoi(match[1])
	if err != nil || n < 1 {
		return 1
	}
	return n
}
