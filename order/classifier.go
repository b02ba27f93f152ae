// Copyright (c) 2025 BVK Chaitanya

package order

import (
	"fmt"
	"log/slog"
)

// Category is the venue-independent lifecycle category of an order status.
// Venues report order statuses in their own vocabulary; a Classifier maps
// each venue status string into one of these categories.
type Category string

const (
	CategoryOpen      Category = "OPEN"
	CategoryFilled    Category = "FILLED"
	CategoryCancelled Category = "CANCELLED"
	CategoryRejected  Category = "REJECTED"
	CategoryExpired   Category = "EXPIRED"
)

// IsValid returns true if the category is one of the known categories.
func (c Category) IsValid() bool {
	switch c {
	case CategoryOpen, CategoryFilled, CategoryCancelled, CategoryRejected, CategoryExpired:
		return true
	}
	return false
}

// IsTerminal returns true for categories from which no further status
// transitions are expected.
func (c Category) IsTerminal() bool {
	return c != CategoryOpen && c.IsValid()
}

// Classifier holds one venue's status vocabulary as a plain data table. The
// same status spelling can map to different categories on different venues, so
// every venue integration supplies its own table instead of subclassing the
// order type.
type Classifier struct {
	venue string

	table map[string]Category
}

// NewClassifier creates a classifier for the given venue name. The table maps
// raw venue status strings to lifecycle categories.
func NewClassifier(venue string, table map[string]Category) (*Classifier, error) {
	if len(venue) == 0 {
		return nil, fmt.Errorf("NewClassifier: venue name cannot be empty")
	}
	if len(table) == 0 {
		return nil, fmt.Errorf("NewClassifier: status table cannot be empty")
	}
	copied := make(map[string]Category, len(table))
	for state, category := range table {
		if !category.IsValid() {
			return nil, fmt.Errorf("NewClassifier: status %q has invalid category %q", state, category)
		}
		copied[state] = category
	}
	return &Classifier{venue: venue, table: copied}, nil
}

// Venue returns the venue name this classifier was created for.
func (c *Classifier) Venue() string {
	return c.venue
}

// Classify returns the lifecycle category for a raw venue status. Unknown
// statuses are treated as open, since venues add new non-terminal states more
// often than new terminal ones; a warning is logged so that the missing table
// entry can be added.
func (c *Classifier) Classify(state string) Category {
	category, ok := c.table[state]
	if !ok {
		slog.Warn("venue status is not in the classifier table (treating as open)", "venue", c.venue, "status", state)
		return CategoryOpen
	}
	return category
}

// Contains returns true if the raw venue status has a table entry.
func (c *Classifier) Contains(state string) bool {
	_, ok := c.table[state]
	return ok
}
