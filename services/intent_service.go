package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"ticket-engine/internal/status"
	"ticket-engine/models"
	"ticket-engine/monitoring"
	"ticket-engine/store"
	"ticket-engine/utils"
)

// IntentService drives the payment-intent state machine:
// requires_payment_method -> succeeded | canceled. Confirmation is
// idempotent per intent id: the status flip into the transient processing
// state is a compare-and-set inside the intent store, so concurrent or
// repeated confirm calls settle at most once.
type IntentService struct {
	store      store.Store
	intents    IntentStore
	inventory  *InventoryService
	settlement *SettlementService
	gateway    PaymentGateway
	currency   string
	ttl        time.Duration
}

func NewIntentService(st store.Store, intents IntentStore, inventory *InventoryService,
	settlement *SettlementService, gateway PaymentGateway, currency string, ttl time.Duration) *IntentService {
	return &IntentService{
		store:      st,
		intents:    intents,
		inventory:  inventory,
		settlement: settlement,
		gateway:    gateway,
		currency:   currency,
		ttl:        ttl,
	}
}

type CreateIntentRequest struct {
	EventID      string            `json:"event_id"`
	CustomerID   string            `json:"customer_id"` // empty for guest checkout
	PayerContact string            `json:"payer_contact"`
	LineItems    []models.LineItem `json:"line_items"`
}

// Create validates the requested line items and opens a payment intent. The
// availability check here is advisory only — availability can change between
// creation and confirmation, and the authoritative check is the atomic
// reservation inside settlement. Guest buyers get an explicit guest customer
// id minted here, not as a settlement side effect.
func (s *IntentService) Create(ctx context.Context, req CreateIntentRequest) (*models.PaymentIntent, error) {
	if len(req.LineItems) == 0 {
		return nil, fmt.Errorf("intent: at least one line item required")
	}

	event, err := findEvent(ctx, s.store.DB(), req.EventID)
	if err != nil {
		return nil, err
	}
	if !event.OnSale() {
		return nil, fmt.Errorf("intent: event %s is not on sale (status %q)", event.ID, event.Status)
	}

	var amount int64
	for _, item := range req.LineItems {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("intent: quantity must be positive for ticket type %s", item.TicketTypeID)
		}

		tt, err := s.inventory.FindTicketType(ctx, s.store.DB(), item.TicketTypeID)
		if err != nil {
			return nil, err
		}
		if tt.EventID != req.EventID {
			return nil, fmt.Errorf("intent: ticket type %s does not belong to event %s", tt.ID, req.EventID)
		}
		if tt.Remaining() < item.Quantity {
			return nil, &status.InsufficientInventoryError{
				TicketTypeID: tt.ID,
				Requested:    item.Quantity,
				Remaining:    tt.Remaining(),
			}
		}

		amount += MinorUnits(tt.UnitPrice) * item.Quantity
	}

	currency := event.Currency
	if currency == "" {
		currency = s.currency
	}

	customerID := req.CustomerID
	guest := false
	if customerID == "" {
		if req.PayerContact == "" {
			return nil, fmt.Errorf("intent: guest checkout requires a payer contact")
		}
		customerID = "guest_" + utils.MustCode(6)
		guest = true
	}

	now := time.Now().UTC()
	intent := &models.PaymentIntent{
		ID:           "pi_" + utils.MustCode(8),
		EventID:      req.EventID,
		CustomerID:   customerID,
		Guest:        guest,
		PayerContact: req.PayerContact,
		Amount:       amount,
		Currency:     currency,
		LineItems:    req.LineItems,
		Status:       models.IntentRequiresPaymentMethod,
		CreatedAt:    now,
		ExpiresAt:    now.Add(s.ttl),
	}

	if err := s.intents.Put(ctx, intent, s.ttl); err != nil {
		monitoring.TrackIntentOperation("create", "error")
		return nil, err
	}

	monitoring.TrackIntentOperation("create", "success")
	return intent, nil
}

// Confirm settles the intent exactly once. The compare-and-set into
// processing is the idempotency guard: the caller that wins it runs gateway
// authorization and settlement; every loser gets either
// ErrIntentAlreadySettled or IntentNotConfirmableError. If settlement fails
// the intent is flipped back to requires_payment_method and stays
// confirmable; only an insufficient reservation or a storage fault can cause
// that, and neither leaves partial state behind.
func (s *IntentService) Confirm(ctx context.Context, intentID string) (*SettlementResult, error) {
	swapped, err := s.intents.CompareAndSetStatus(ctx, intentID,
		models.IntentRequiresPaymentMethod, models.IntentProcessing)
	if err != nil {
		return nil, err
	}
	if !swapped {
		intent, err := s.intents.Get(ctx, intentID)
		if err != nil {
			return nil, err
		}
		monitoring.TrackIntentOperation("confirm", "rejected")
		if intent.Status == models.IntentSucceeded {
			return nil, status.ErrIntentAlreadySettled
		}
		return nil, &status.IntentNotConfirmableError{IntentID: intentID, Status: string(intent.Status)}
	}

	intent, err := s.intents.Get(ctx, intentID)
	if err != nil {
		return nil, err
	}

	ref, err := s.gateway.Authorize(ctx, intent.Amount, intent.Currency)
	if err != nil {
		s.reopen(ctx, intentID)
		monitoring.TrackIntentOperation("confirm", "gateway_error")
		return nil, fmt.Errorf("intent: authorize: %w", err)
	}

	result, err := s.settlement.Settle(ctx, intent, ref)
	if err != nil {
		if voidErr := s.gateway.Void(ctx, ref); voidErr != nil {
			slog.Error("void after failed settlement", "intent", intentID, "ref", ref, "error", voidErr)
		}
		s.reopen(ctx, intentID)
		monitoring.TrackIntentOperation("confirm", "settlement_failed")
		return nil, err
	}

	if err := s.intents.MarkSucceeded(ctx, intentID, result.Transaction.ID); err != nil {
		// The settlement is committed; a stuck processing status here means
		// the intent store update failed after the durable write. It cannot
		// cause a double settlement, but it must be investigated.
		slog.Error("intent status update failed after settlement",
			"intent", intentID, "transaction", result.Transaction.ID, "error", err)
	}

	monitoring.TrackIntentOperation("confirm", "success")
	return result, nil
}

// Cancel terminates an unconfirmed intent.
func (s *IntentService) Cancel(ctx context.Context, intentID string) error {
	swapped, err := s.intents.CompareAndSetStatus(ctx, intentID,
		models.IntentRequiresPaymentMethod, models.IntentCanceled)
	if err != nil {
		return err
	}
	if !swapped {
		intent, err := s.intents.Get(ctx, intentID)
		if err != nil {
			return err
		}
		monitoring.TrackIntentOperation("cancel", "rejected")
		return &status.IntentNotConfirmableError{IntentID: intentID, Status: string(intent.Status)}
	}

	monitoring.TrackIntentOperation("cancel", "success")
	return nil
}

// Get returns the intent's current state.
func (s *IntentService) Get(ctx context.Context, intentID string) (*models.PaymentIntent, error) {
	return s.intents.Get(ctx, intentID)
}

func (s *IntentService) reopen(ctx context.Context, intentID string) {
	swapped, err := s.intents.CompareAndSetStatus(ctx, intentID,
		models.IntentProcessing, models.IntentRequiresPaymentMethod)
	if err != nil || !swapped {
		slog.Error("reopening intent after failed confirm", "intent", intentID,
			"swapped", swapped, "error", err)
	}
}
