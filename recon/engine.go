// Package recon reconciles stored transactions against gateway-reported
// statuses. It owns the only write path for a transaction after creation
// and guarantees the settlement notification fires at most once per
// transaction.
package recon

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/theazran/tagihYT/cache"
	"github.com/theazran/tagihYT/gateway"
	"github.com/theazran/tagihYT/model"
	"github.com/theazran/tagihYT/notifier"
	"github.com/theazran/tagihYT/status"
	"github.com/theazran/tagihYT/store"
)

type Trigger string

const (
	TriggerManual  Trigger = "manual"
	TriggerWebhook Trigger = "webhook"
	TriggerSweep   Trigger = "sweep"
)

// Store is the slice of the transaction store the engine needs.
type Store interface {
	FindByOrderID(ctx context.Context, orderID string) (*model.Transaction, error)
	FindByStatus(ctx context.Context, status string) ([]model.Transaction, error)
	UpdateStatusCAS(ctx context.Context, orderID, prev, next string) (*model.Transaction, bool, error)
	Touch(ctx context.Context, orderID string) error
}

type Notifier interface {
	Send(ctx context.Context, phone, message string) error
}

type Events interface {
	PublishStatusChanged(tx *model.Transaction, previous string)
}

type Engine struct {
	store    Store
	gateways gateway.Registry
	notifier Notifier
	events   Events
	cache    *cache.Cache
}

func New(st Store, gateways gateway.Registry, n Notifier, events Events, c *cache.Cache) *Engine {
	return &Engine{
		store:    st,
		gateways: gateways,
		notifier: n,
		events:   events,
		cache:    c,
	}
}

// Result describes the outcome of one reconciliation.
type Result struct {
	Status      string
	Previous    string
	Raw         map[string]interface{}
	Transaction *model.Transaction
}

// Reconcile fetches the gateway's current status for a transaction and
// applies it. Terminal transactions are returned as-is without a remote
// call.
func (e *Engine) Reconcile(ctx context.Context, orderID string, trigger Trigger) (*Result, error) {
	tx, err := e.store.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if model.IsTerminal(tx.Status) {
		return &Result{Status: tx.Status, Previous: tx.Status, Transaction: tx}, nil
	}

	gw, ok := e.gateways.Lookup(tx.Gateway)
	if !ok {
		return nil, &gateway.GatewayError{Gateway: tx.Gateway, Message: "no adapter registered"}
	}

	st, err := gw.Status(ctx, tx.OrderID)
	if err != nil {
		return nil, err
	}

	return e.apply(ctx, tx, st, trigger)
}

// HandleWebhook applies a status already resolved from a webhook payload.
// Unknown order ids are logged and acknowledged, not errors.
func (e *Engine) HandleWebhook(ctx context.Context, st *gateway.StatusResult) (*Result, error) {
	tx, err := e.store.FindByOrderID(ctx, st.OrderID)
	if errors.Is(err, store.ErrNotFound) {
		log.Printf("Webhook for unknown order %s ignored", st.OrderID)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return e.apply(ctx, tx, st, TriggerWebhook)
}

// Override forces a canonical status directly, for gateways without a
// status endpoint. It goes through the same transition rules, so a forced
// SUCCESS still notifies exactly once and a terminal status stays put.
func (e *Engine) Override(ctx context.Context, orderID, newStatus string) (*Result, error) {
	switch newStatus {
	case model.StatusPending, model.StatusSuccess, model.StatusFailed, model.StatusChallenge:
	default:
		return nil, fmt.Errorf("unknown status %q", newStatus)
	}

	tx, err := e.store.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	return e.transition(ctx, tx, newStatus, TriggerManual)
}

func (e *Engine) apply(ctx context.Context, tx *model.Transaction, st *gateway.StatusResult, trigger Trigger) (*Result, error) {
	next := status.Map(st.TransactionStatus, st.FraudStatus)
	res, err := e.transition(ctx, tx, next, trigger)
	if res != nil {
		res.Raw = st.Raw
	}
	return res, err
}

func (e *Engine) transition(ctx context.Context, tx *model.Transaction, next string, trigger Trigger) (*Result, error) {
	prev := tx.Status

	// Terminal statuses are sticky: a late or replayed gateway report
	// never reverts a settled transaction.
	if model.IsTerminal(prev) {
		return &Result{Status: prev, Previous: prev, Transaction: tx}, nil
	}

	if next == prev {
		if trigger == TriggerManual {
			if err := e.store.Touch(ctx, tx.OrderID); err != nil {
				return nil, err
			}
		}
		return &Result{Status: prev, Previous: prev, Transaction: tx}, nil
	}

	updated, swapped, err := e.store.UpdateStatusCAS(ctx, tx.OrderID, prev, next)
	if err != nil {
		return nil, err
	}
	if !swapped {
		// A concurrent trigger won the race; report whatever it wrote and
		// leave the notification to the winner.
		current, err := e.store.FindByOrderID(ctx, tx.OrderID)
		if err != nil {
			return nil, err
		}
		log.Printf("Status of %s changed concurrently (%s), skipping", tx.OrderID, current.Status)
		return &Result{Status: current.Status, Previous: prev, Transaction: current}, nil
	}

	log.Printf("Status updated: %s %s -> %s (%s)", updated.OrderID, prev, next, trigger)

	e.cache.Invalidate(ctx, "transactions:all", "summary:"+updated.Month)
	if e.events != nil {
		e.events.PublishStatusChanged(updated, prev)
	}

	if next == model.StatusSuccess && updated.Phone != "" {
		msg := notifier.PaymentReceivedMessage(updated.Name, updated.Amount, updated.Month)
		if err := e.notifier.Send(ctx, updated.Phone, msg); err != nil {
			log.Printf("WA notification for %s failed: %v", updated.OrderID, err)
		}
	}

	return &Result{Status: next, Previous: prev, Transaction: updated}, nil
}

// SweepPending reconciles every PENDING transaction once. A failing
// record is logged and skipped; the sweep keeps going.
func (e *Engine) SweepPending(ctx context.Context) {
	pending, err := e.store.FindByStatus(ctx, model.StatusPending)
	if err != nil {
		log.Printf("Sweep aborted, cannot list pending: %v", err)
		return
	}
	if len(pending) == 0 {
		return
	}

	log.Printf("Sweeping %d pending transactions", len(pending))
	for _, tx := range pending {
		_, err := e.Reconcile(ctx, tx.OrderID, TriggerSweep)
		if errors.Is(err, gateway.ErrStatusUnsupported) {
			continue
		}
		if err != nil {
			log.Printf("Failed to check %s: %v", tx.OrderID, err)
		}
	}
}
