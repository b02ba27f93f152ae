// Copyright (c) 2025 BVK Chaitanya

// Package order implements a venue-agnostic, locally-tracked view of an order
// submitted to an external exchange. Orders are mutated by venue events (fill
// reports and status pushes) and expose lifecycle predicates derived from the
// venue status string through a per-venue Classifier table.
//
// InFlightOrder values are not safe for concurrent mutation. The owner is
// expected to serialize all ApplyFill/SetStatus calls for one order, typically
// by funneling venue messages through a single consumer (see the registry
// package).
package order

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidOrderSpec is returned when an order is constructed with
	// malformed arguments.
	ErrInvalidOrderSpec = errors.New("invalid order spec")

	// ErrIllegalTransition is returned in strict mode when a finished order
	// receives a different status.
	ErrIllegalTransition = errors.New("illegal status transition")
)

// Type identifies the execution style of an order.
type Type string

const (
	TypeLimit      Type = "LIMIT"
	TypeMarket     Type = "MARKET"
	TypeLimitMaker Type = "LIMIT_MAKER"
)

// Side identifies the direction of an order.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// InFlightOrder is the authoritative local record of one order submitted to a
// venue. Exported fields may be read freely, but all mutation must go through
// the methods so that fill deduplication and terminal-state closure hold.
type InFlightOrder struct {
	// ClientOrderID is generated locally before any network call, so order
	// submission can be retried idempotently.
	ClientOrderID string

	// ExchangeOrderID is assigned by the venue asynchronously. Empty until the
	// venue acknowledges the order; set at most once after that.
	ExchangeOrderID string

	TradingPair string
	OrderType   Type
	Side        Side

	// Price is the venue-quoted unit price. Zero for market orders.
	Price  decimal.Decimal
	Amount decimal.Decimal

	ExecutedBase  decimal.Decimal
	ExecutedQuote decimal.Decimal

	FeeAsset string
	FeePaid  decimal.Decimal

	// LastState is the raw venue status string. It is deliberately not
	// normalized; lifecycle semantics come from the classifier.
	LastState string

	// CreationTime is set once at construction.
	CreationTime time.Time

	// Strict, when true, makes SetStatus return ErrIllegalTransition instead
	// of logging and ignoring a status change on a finished order. Venues
	// routinely redeliver stale status messages, so the permissive default is
	// the right choice against real exchanges.
	Strict bool

	classifier *Classifier

	tradeIDs map[string]struct{}
}

// New creates an in-flight order in its initial state. The classifier decides
// how venue status strings map to lifecycle categories for this order.
func New(classifier *Classifier, clientOrderID, tradingPair string, otype Type, side Side, price, amount decimal.Decimal, initialState string, creationTime time.Time) (*InFlightOrder, error) {
	if classifier == nil {
		return nil, fmt.Errorf("classifier cannot be nil: %w", ErrInvalidOrderSpec)
	}
	if len(clientOrderID) == 0 {
		return nil, fmt.Errorf("client order id cannot be empty: %w", ErrInvalidOrderSpec)
	}
	if !strings.ContainsAny(tradingPair, "-/_") {
		return nil, fmt.Errorf("trading pair %q has no separator: %w", tradingPair, ErrInvalidOrderSpec)
	}
	if side != SideBuy && side != SideSell {
		return nil, fmt.Errorf("side %q is invalid: %w", side, ErrInvalidOrderSpec)
	}
	if len(otype) == 0 {
		return nil, fmt.Errorf("order type cannot be empty: %w", ErrInvalidOrderSpec)
	}
	if amount.Sign() <= 0 {
		return nil, fmt.Errorf("amount %s must be positive: %w", amount, ErrInvalidOrderSpec)
	}
	if price.Sign() < 0 {
		return nil, fmt.Errorf("price %s cannot be negative: %w", price, ErrInvalidOrderSpec)
	}
	if creationTime.IsZero() {
		creationTime = time.Now()
	}
	return &InFlightOrder{
		ClientOrderID: clientOrderID,
		TradingPair:   tradingPair,
		OrderType:     otype,
		Side:          side,
		Price:         price,
		Amount:        amount,
		LastState:     initialState,
		CreationTime:  creationTime,
		classifier:    classifier,
		tradeIDs:      make(map[string]struct{}),
	}, nil
}

// Classifier returns the status classifier attached to the order.
func (v *InFlightOrder) Classifier() *Classifier {
	return v.classifier
}

// SetExchangeOrderID records the venue-assigned order id. The id can be set
// at most once; a repeated call with the same id is a no-op.
func (v *InFlightOrder) SetExchangeOrderID(id string) error {
	if len(id) == 0 {
		return fmt.Errorf("exchange order id cannot be empty")
	}
	if len(v.ExchangeOrderID) != 0 {
		if v.ExchangeOrderID == id {
			return nil
		}
		return fmt.Errorf("exchange order id is already set to %q", v.ExchangeOrderID)
	}
	v.ExchangeOrderID = id
	return nil
}

// ApplyFill updates the cumulative executed amounts and fee with one venue
// fill report. Fills are deduplicated by trade id: a trade id that was already
// applied leaves the order unchanged and returns false. Venues deliver fills
// at least once, so a duplicate is a routine occurrence, not an error.
func (v *InFlightOrder) ApplyFill(tradeID string, size, price, fee decimal.Decimal, feeAsset string) bool {
	if _, ok := v.tradeIDs[tradeID]; ok {
		return false
	}
	v.tradeIDs[tradeID] = struct{}{}

	v.ExecutedBase = v.ExecutedBase.Add(size)
	v.ExecutedQuote = v.ExecutedQuote.Add(size.Mul(price))
	v.FeePaid = v.FeePaid.Add(fee)
	if len(v.FeeAsset) == 0 {
		v.FeeAsset = feeAsset
	}

	// Overfill is a venue anomaly worth surfacing, but it is not corrected
	// here; the executed amount remains whatever the venue reported.
	if v.ExecutedBase.GreaterThan(v.Amount) {
		slog.Warn("order is filled beyond its requested amount", "clientOrderID", v.ClientOrderID, "amount", v.Amount, "executed", v.ExecutedBase)
	}
	return true
}

// NumFills returns the number of distinct fills applied so far.
func (v *InFlightOrder) NumFills() int {
	return len(v.tradeIDs)
}

// HasFill returns true if the given trade id was already applied.
func (v *InFlightOrder) HasFill(tradeID string) bool {
	_, ok := v.tradeIDs[tradeID]
	return ok
}

// SetStatus records a new venue status for the order. Once the order has
// reached a terminal state, further status changes are ignored with a warning
// (or rejected with ErrIllegalTransition when Strict is set), since venues
// are known to resend stale status messages. Repeating the current status on
// a finished order is always a silent no-op.
func (v *InFlightOrder) SetStatus(state string) error {
	if v.IsDone() {
		if state == v.LastState {
			return nil
		}
		if v.Strict {
			return fmt.Errorf("order %q is already finished with status %q: %w", v.ClientOrderID, v.LastState, ErrIllegalTransition)
		}
		slog.Warn("ignoring status change on a finished order", "clientOrderID", v.ClientOrderID, "status", v.LastState, "newStatus", state)
		return nil
	}
	v.LastState = state
	return nil
}

// IsOpen returns true if the order may still receive fills or be cancelled.
func (v *InFlightOrder) IsOpen() bool {
	return v.classifier.Classify(v.LastState) == CategoryOpen
}

// IsDone returns true once the order has reached a terminal state. No further
// transitions are expected after this; any later venue event for the order is
// a duplicate or late message.
func (v *InFlightOrder) IsDone() bool {
	return v.classifier.Classify(v.LastState).IsTerminal()
}

// IsFailure returns true if the order finished with an error outcome.
func (v *InFlightOrder) IsFailure() bool {
	category := v.classifier.Classify(v.LastState)
	return category == CategoryRejected || category == CategoryExpired
}

// IsCancelled returns true if the order finished through a user- or
// system-initiated cancellation.
func (v *InFlightOrder) IsCancelled() bool {
	return v.classifier.Classify(v.LastState) == CategoryCancelled
}

// AverageExecutedPrice returns the volume-weighted average fill price.
// Returns false if nothing is executed yet.
func (v *InFlightOrder) AverageExecutedPrice() (decimal.Decimal, bool) {
	if v.ExecutedBase.IsZero() {
		return decimal.Decimal{}, false
	}
	return v.ExecutedQuote.Div(v.ExecutedBase), true
}
