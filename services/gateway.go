package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"ticket-engine/utils"
)

// PaymentGateway is the contract a payment provider adapter must satisfy.
// Authorize reserves the funds and returns a provider reference; Void
// releases an authorization that did not settle. A production deployment
// swaps in a real provider adapter behind this interface.
type PaymentGateway interface {
	Authorize(ctx context.Context, amount int64, currency string) (string, error)
	Void(ctx context.Context, ref string) error
}

// StandInGateway approves every authorization. It tracks the references it
// has issued so a Void for an unknown reference is still an error.
type StandInGateway struct {
	mu         sync.Mutex
	authorized map[string]int64
}

func NewStandInGateway() *StandInGateway {
	return &StandInGateway{authorized: make(map[string]int64)}
}

func (g *StandInGateway) Authorize(ctx context.Context, amount int64, currency string) (string, error) {
	if amount < 0 {
		return "", fmt.Errorf("gateway: negative amount %d", amount)
	}

	ref := "auth_" + utils.MustCode(8)

	g.mu.Lock()
	g.authorized[ref] = amount
	g.mu.Unlock()

	slog.Info("gateway authorized", "ref", ref, "amount", amount, "currency", currency)
	return ref, nil
}

func (g *StandInGateway) Void(ctx context.Context, ref string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.authorized[ref]; !ok {
		return fmt.Errorf("gateway: unknown reference %s", ref)
	}
	delete(g.authorized, ref)

	slog.Info("gateway voided", "ref", ref)
	return nil
}
