// Copyright (c) 2025 BVK Chaitanya

// Package gobs holds the gob-encoded value types persisted in the kv
// database. Types here should only gain fields; removing or renaming a field
// breaks older checkpoints.
package gobs

// Order is the persistence-friendly form of an in-flight order. All decimal
// fields are encoded as exact-precision strings and enum fields are encoded by
// name so that values written by an older binary stay readable after new enum
// members are added.
type Order struct {
	ClientOrderID   string
	ExchangeOrderID string

	TradingPair string
	OrderType   string
	Side        string

	Price  string
	Amount string

	ExecutedBase  string
	ExecutedQuote string

	FeeAsset string
	FeePaid  string

	LastState string

	CreationTime int64

	// TradeIDs holds the venue trade ids already applied to the executed
	// amounts, so that restart recovery keeps fill deduplication intact.
	TradeIDs []string
}

// RegistryState holds the client order id generator position for a registry
// so that ids are never reissued across restarts.
type RegistryState struct {
	IDSeed   string
	IDOffset uint64
}
