// Copyright (c) 2025 BVK Chaitanya

package order

// DefaultTable returns the status table shared by venues using the common
// NEW/PARTIALLY_FILLED/FILLED vocabulary. Venues deviating from it should
// build their own table; the same spelling can carry a different meaning
// elsewhere.
func DefaultTable() map[string]Category {
	return map[string]Category{
		"NEW":              CategoryOpen,
		"PENDING_NEW":      CategoryOpen,
		"OPEN":             CategoryOpen,
		"PARTIALLY_FILLED": CategoryOpen,
		"PENDING_CANCEL":   CategoryOpen,
		"FILLED":           CategoryFilled,
		"CANCELED":         CategoryCancelled,
		"REJECTED":         CategoryRejected,
		"EXPIRED":          CategoryExpired,
	}
}
