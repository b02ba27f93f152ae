// Copyright (c) 2025 BVK Chaitanya

package order

import (
	"fmt"
	"slices"
	"time"

	"github.com/bvk/inflight/gobs"
	"github.com/shopspring/decimal"
)

// Checkpoint returns the persistence-friendly form of the order. Decimal
// fields are encoded as exact-precision strings so that a checkpoint restored
// after a process restart reconstructs identical values; binary floats would
// drift on round-trip.
func (v *InFlightOrder) Checkpoint() *gobs.Order {
	tradeIDs := make([]string, 0, len(v.tradeIDs))
	for id := range v.tradeIDs {
		tradeIDs = append(tradeIDs, id)
	}
	slices.Sort(tradeIDs)

	return &gobs.Order{
		ClientOrderID:   v.ClientOrderID,
		ExchangeOrderID: v.ExchangeOrderID,
		TradingPair:     v.TradingPair,
		OrderType:       string(v.OrderType),
		Side:            string(v.Side),
		Price:           v.Price.String(),
		Amount:          v.Amount.String(),
		ExecutedBase:    v.ExecutedBase.String(),
		ExecutedQuote:   v.ExecutedQuote.String(),
		FeeAsset:        v.FeeAsset,
		FeePaid:         v.FeePaid.String(),
		LastState:       v.LastState,
		CreationTime:    v.CreationTime.Unix(),
		TradeIDs:        tradeIDs,
	}
}

// FromCheckpoint reconstructs an in-flight order from its persisted form. The
// classifier is supplied by the caller because classification tables are not
// persisted with the order.
func FromCheckpoint(c *gobs.Order, classifier *Classifier) (*InFlightOrder, error) {
	if c == nil {
		return nil, fmt.Errorf("checkpoint cannot be nil: %w", ErrInvalidOrderSpec)
	}
	price, err := decimal.NewFromString(c.Price)
	if err != nil {
		return nil, fmt.Errorf("could not parse price %q: %w", c.Price, err)
	}
	amount, err := decimal.NewFromString(c.Amount)
	if err != nil {
		return nil, fmt.Errorf("could not parse amount %q: %w", c.Amount, err)
	}

	v, err := New(classifier, c.ClientOrderID, c.TradingPair, Type(c.OrderType), Side(c.Side), price, amount, c.LastState, time.Unix(c.CreationTime, 0))
	if err != nil {
		return nil, err
	}

	if v.ExecutedBase, err = decimal.NewFromString(c.ExecutedBase); err != nil {
		return nil, fmt.Errorf("could not parse executed base %q: %w", c.ExecutedBase, err)
	}
	if v.ExecutedQuote, err = decimal.NewFromString(c.ExecutedQuote); err != nil {
		return nil, fmt.Errorf("could not parse executed quote %q: %w", c.ExecutedQuote, err)
	}
	if v.FeePaid, err = decimal.NewFromString(c.FeePaid); err != nil {
		return nil, fmt.Errorf("could not parse fee %q: %w", c.FeePaid, err)
	}
	v.FeeAsset = c.FeeAsset
	v.ExchangeOrderID = c.ExchangeOrderID
	for _, id := range c.TradeIDs {
		v.tradeIDs[id] = struct{}{}
	}
	return v, nil
}
