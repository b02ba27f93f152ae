// Copyright (c) 2025 BVK Chaitanya

// Package registry owns the set of in-flight orders for one venue. It routes
// venue events (fills and status pushes) to the right order by client or
// exchange order id, fans out order snapshots to subscribers, and checkpoints
// live orders into a kv database for crash recovery.
//
// All order mutation goes through the registry mutex, which satisfies the
// single-writer requirement of the order package.
package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"sync"
	"time"

	"github.com/bvk/inflight/gobs"
	"github.com/bvk/inflight/idgen"
	"github.com/bvk/inflight/kvutil"
	"github.com/bvk/inflight/order"
	"github.com/bvkgo/kv"
	"github.com/shopspring/decimal"
	"github.com/visvasity/topic"
)

type Options struct {
	// KeyPrefix is the checkpoint location in the kv database.
	KeyPrefix string

	// Seed feeds the client order id generator. Reusing the seed (and the
	// checkpointed offset) across restarts keeps ids unique and
	// reproducible.
	Seed string

	// Strict makes tracked orders reject status changes after a terminal
	// state instead of logging and ignoring them.
	Strict bool
}

func (v *Options) setDefaults() {
	if len(v.KeyPrefix) == 0 {
		v.KeyPrefix = "/inflight"
	}
}

func (v *Options) Check() error {
	if len(v.Seed) == 0 {
		return fmt.Errorf("id generator seed cannot be empty")
	}
	if !path.IsAbs(v.KeyPrefix) {
		return fmt.Errorf("key prefix %q must be an absolute path", v.KeyPrefix)
	}
	return nil
}

type Registry struct {
	opts Options

	classifier *order.Classifier

	mu sync.Mutex

	idgen *idgen.Generator

	// clientIDMap holds all live (not yet removed) orders by client order
	// id. exchangeIDMap maps venue-assigned ids back to client ids.
	clientIDMap   map[string]*order.InFlightOrder
	exchangeIDMap map[string]string

	updatesTopic *topic.Topic[*gobs.Order]
}

// New creates an empty registry for one venue. The classifier is attached to
// every order the registry creates or restores.
func New(classifier *order.Classifier, opts *Options) (*Registry, error) {
	if classifier == nil {
		return nil, os.ErrInvalid
	}
	if opts == nil {
		opts = new(Options)
	}
	opts.setDefaults()
	if err := opts.Check(); err != nil {
		return nil, err
	}
	return &Registry{
		opts:          *opts,
		classifier:    classifier,
		idgen:         idgen.New(opts.Seed, 0),
		clientIDMap:   make(map[string]*order.InFlightOrder),
		exchangeIDMap: make(map[string]string),
		updatesTopic:  topic.New[*gobs.Order](),
	}, nil
}

// Close releases the update topic. Pending receivers are unblocked with an
// error.
func (r *Registry) Close() error {
	r.updatesTopic.Close()
	return nil
}

// Open creates and tracks a new in-flight order with a freshly generated
// client order id. The id is available before any network call, so a
// submission can be retried idempotently.
func (r *Registry) Open(tradingPair string, otype order.Type, side order.Side, price, amount decimal.Decimal, initialState string) (*order.InFlightOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	clientOrderID := r.idgen.NextID()
	v, err := order.New(r.classifier, clientOrderID, tradingPair, otype, side, price, amount, initialState, time.Now())
	if err != nil {
		r.idgen.RevertID()
		return nil, err
	}
	v.Strict = r.opts.Strict
	r.clientIDMap[clientOrderID] = v
	return v, nil
}

// Track adds an externally constructed order to the registry. Fails with
// os.ErrExist if an order with the same client order id is already tracked.
func (r *Registry) Track(v *order.InFlightOrder) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.clientIDMap[v.ClientOrderID]; ok {
		return os.ErrExist
	}
	r.clientIDMap[v.ClientOrderID] = v
	if len(v.ExchangeOrderID) != 0 {
		r.exchangeIDMap[v.ExchangeOrderID] = v.ClientOrderID
	}
	return nil
}

// SetExchangeOrderID records the venue acknowledgment for an order and
// indexes it under the venue-assigned id.
func (r *Registry) SetExchangeOrderID(clientOrderID, exchangeOrderID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, ok := r.clientIDMap[clientOrderID]
	if !ok {
		return fmt.Errorf("order %q: %w", clientOrderID, os.ErrNotExist)
	}
	if err := v.SetExchangeOrderID(exchangeOrderID); err != nil {
		return err
	}
	r.exchangeIDMap[exchangeOrderID] = clientOrderID
	return nil
}

func (r *Registry) lookupLocked(id string) (*order.InFlightOrder, bool) {
	if v, ok := r.clientIDMap[id]; ok {
		return v, true
	}
	if clientID, ok := r.exchangeIDMap[id]; ok {
		return r.clientIDMap[clientID], true
	}
	return nil, false
}

// Lookup finds a live order by client or exchange order id.
func (r *Registry) Lookup(id string) (*order.InFlightOrder, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lookupLocked(id)
}

// OpenOrders returns all live orders still classified as open.
func (r *Registry) OpenOrders() []*order.InFlightOrder {
	r.mu.Lock()
	defer r.mu.Unlock()

	var open []*order.InFlightOrder
	for _, v := range r.clientIDMap {
		if v.IsOpen() {
			open = append(open, v)
		}
	}
	return open
}

// NumOrders returns the number of live orders.
func (r *Registry) NumOrders() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clientIDMap)
}

// ApplyFill routes one venue fill report to the order identified by client or
// exchange order id. Returns false without an error when the trade id was
// already applied; duplicate fill delivery is routine.
func (r *Registry) ApplyFill(id, tradeID string, size, price, fee decimal.Decimal, feeAsset string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, ok := r.lookupLocked(id)
	if !ok {
		return false, fmt.Errorf("order %q: %w", id, os.ErrNotExist)
	}
	applied := v.ApplyFill(tradeID, size, price, fee, feeAsset)
	if applied {
		r.updatesTopic.Send(v.Checkpoint())
	}
	return applied, nil
}

// SetStatus routes one venue status push to the order identified by client or
// exchange order id. An order reaching a terminal state is published one last
// time and then removed from the registry; late messages for it will fail
// with os.ErrNotExist, which callers should treat as duplicate delivery.
func (r *Registry) SetStatus(id, state string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, ok := r.lookupLocked(id)
	if !ok {
		return fmt.Errorf("order %q: %w", id, os.ErrNotExist)
	}
	if err := v.SetStatus(state); err != nil {
		return err
	}
	r.updatesTopic.Send(v.Checkpoint())
	if v.IsDone() {
		r.removeLocked(v)
	}
	return nil
}

func (r *Registry) removeLocked(v *order.InFlightOrder) {
	delete(r.clientIDMap, v.ClientOrderID)
	if len(v.ExchangeOrderID) != 0 {
		delete(r.exchangeIDMap, v.ExchangeOrderID)
	}
}

// Updates subscribes to order snapshots. Every applied fill and status
// change publishes one snapshot; the snapshot of a terminal status is the
// last message for that order.
func (r *Registry) Updates() (*topic.Receiver[*gobs.Order], error) {
	return topic.Subscribe(r.updatesTopic, 0, false)
}

func (r *Registry) stateKey() string {
	return path.Join(r.opts.KeyPrefix, "state")
}

func (r *Registry) orderKey(clientOrderID string) string {
	return path.Join(r.opts.KeyPrefix, "orders", clientOrderID)
}

// Checkpoint writes the id generator position and every live order to the kv
// database. Terminal orders are removed at SetStatus time, so only live
// orders are persisted.
func (r *Registry) Checkpoint(ctx context.Context, rw kv.ReadWriter) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	state := &gobs.RegistryState{IDSeed: r.opts.Seed, IDOffset: r.idgen.Offset()}
	if err := kvutil.Set(ctx, rw, r.stateKey(), state); err != nil {
		return fmt.Errorf("could not checkpoint registry state: %w", err)
	}
	for id, v := range r.clientIDMap {
		if err := kvutil.Set(ctx, rw, r.orderKey(id), v.Checkpoint()); err != nil {
			return fmt.Errorf("could not checkpoint order %q: %w", id, err)
		}
	}
	return nil
}

// Restore loads the checkpointed id generator position and orders. Orders
// already tracked in memory are not replaced; the checkpoint copy is ignored
// with a warning, since the in-memory copy is never older.
func (r *Registry) Restore(ctx context.Context, reader kv.Reader) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, err := kvutil.Get[gobs.RegistryState](ctx, reader, r.stateKey())
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("could not restore registry state: %w", err)
		}
	} else {
		if state.IDSeed != r.opts.Seed {
			return fmt.Errorf("checkpointed id seed does not match the registry seed")
		}
		r.idgen = idgen.New(state.IDSeed, state.IDOffset)
	}

	begin, end := kvutil.PathRange(path.Join(r.opts.KeyPrefix, "orders"))
	return kvutil.Ascend(ctx, reader, begin, end, func(ctx context.Context, _ kv.Reader, key string, c *gobs.Order) error {
		if _, ok := r.clientIDMap[c.ClientOrderID]; ok {
			slog.Warn("order from the checkpoint is already tracked (ignored)", "clientOrderID", c.ClientOrderID)
			return nil
		}
		v, err := order.FromCheckpoint(c, r.classifier)
		if err != nil {
			return fmt.Errorf("could not restore order at key %q: %w", key, err)
		}
		v.Strict = r.opts.Strict
		r.clientIDMap[v.ClientOrderID] = v
		if len(v.ExchangeOrderID) != 0 {
			r.exchangeIDMap[v.ExchangeOrderID] = v.ClientOrderID
		}
		return nil
	})
}
