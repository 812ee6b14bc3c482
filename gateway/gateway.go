// Package gateway holds the payment gateway adapters. Each provider
// implements the same Gateway contract; the rest of the service dispatches
// on the gateway tag stored with the transaction and never talks to a
// provider API directly.
package gateway

import (
	"context"
	"errors"
)

// ErrStatusUnsupported is returned by gateways that have no status
// endpoint. KlikQRIS transactions settle via webhook or admin override.
var ErrStatusUnsupported = errors.New("gateway does not expose a status endpoint")

type CreateRequest struct {
	OrderID     string
	Amount      int64
	Description string
	Month       string
	Name        string
	Email       string
	Phone       string
}

// CreateResult carries the provider response for a created transaction.
// TotalAmount is the amount the gateway itself confirmed and is what gets
// persisted — KlikQRIS adds a per-transaction unique code on top of the
// requested amount.
type CreateResult struct {
	TotalAmount int64
	Token       string
	RedirectURL string
	Signature   string
	QrisURL     string
}

type StatusResult struct {
	OrderID           string
	TransactionStatus string
	FraudStatus       string
	Raw               map[string]interface{}
}

type Gateway interface {
	Name() string
	CreateTransaction(ctx context.Context, req CreateRequest) (*CreateResult, error)
	Status(ctx context.Context, orderID string) (*StatusResult, error)
}

// GatewayError wraps any remote call failure with the provider name.
type GatewayError struct {
	Gateway string
	Message string
}

func (e *GatewayError) Error() string {
	return e.Gateway + ": " + e.Message
}

// Registry maps gateway tags to adapters. Built once in main and injected
// everywhere a dispatch is needed.
type Registry map[string]Gateway

func (r Registry) Lookup(name string) (Gateway, bool) {
	gw, ok := r[name]
	return gw, ok
}
