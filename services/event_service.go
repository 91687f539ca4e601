package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/pocketbase/dbx"
	"github.com/shopspring/decimal"

	"ticket-engine/internal/status"
	"ticket-engine/models"
	"ticket-engine/store"
	"ticket-engine/utils"
)

// EventService covers the event-owner side: creating events with their
// commission rate and allocating ticket types. The commission rate recorded
// here is read at settlement time and frozen into each transaction; changing
// it later never alters past transactions.
type EventService struct {
	store store.Store
}

func NewEventService(st store.Store) *EventService {
	return &EventService{store: st}
}

type CreateEventRequest struct {
	Name           string `json:"name"`
	CommissionRate int64  `json:"commission_rate"`
	Currency       string `json:"currency"`
}

func (s *EventService) CreateEvent(ctx context.Context, req CreateEventRequest) (*models.Event, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("event: name required")
	}
	if req.CommissionRate < 0 || req.CommissionRate > 100 {
		return nil, fmt.Errorf("event: commission rate %d out of range 0-100", req.CommissionRate)
	}

	event := &models.Event{
		ID:             "ev_" + utils.MustCode(8),
		Name:           req.Name,
		CommissionRate: req.CommissionRate,
		Currency:       req.Currency,
		Status:         models.EventPublished,
		Created:        time.Now().UTC(),
	}

	_, err := s.store.DB().Insert("events", dbx.Params{
		"id":              event.ID,
		"name":            event.Name,
		"commission_rate": event.CommissionRate,
		"currency":        event.Currency,
		"status":          event.Status,
		"created":         event.Created,
	}).WithContext(ctx).Execute()
	if err != nil {
		return nil, fmt.Errorf("event: create: %w", err)
	}
	return event, nil
}

type CreateTicketTypeRequest struct {
	EventID   string          `json:"event_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int64           `json:"quantity"`
}

func (s *EventService) CreateTicketType(ctx context.Context, req CreateTicketTypeRequest) (*models.TicketType, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("ticket type: name required")
	}
	if req.Quantity <= 0 {
		return nil, fmt.Errorf("ticket type: quantity must be positive, got %d", req.Quantity)
	}
	if req.UnitPrice.IsNegative() {
		return nil, fmt.Errorf("ticket type: unit price must not be negative")
	}

	if _, err := findEvent(ctx, s.store.DB(), req.EventID); err != nil {
		return nil, err
	}

	tt := &models.TicketType{
		ID:                "tt_" + utils.MustCode(8),
		EventID:           req.EventID,
		Name:              req.Name,
		UnitPrice:         req.UnitPrice,
		QuantityAvailable: req.Quantity,
		QuantitySold:      0,
		Created:           time.Now().UTC(),
	}

	_, err := s.store.DB().Insert("ticket_types", dbx.Params{
		"id":                 tt.ID,
		"event":              tt.EventID,
		"name":               tt.Name,
		"unit_price":         tt.UnitPrice.String(),
		"quantity_available": tt.QuantityAvailable,
		"quantity_sold":      tt.QuantitySold,
		"created":            tt.Created,
	}).WithContext(ctx).Execute()
	if err != nil {
		return nil, fmt.Errorf("ticket type: create: %w", err)
	}
	return tt, nil
}

// FindEvent loads an event by id.
func (s *EventService) FindEvent(ctx context.Context, eventID string) (*models.Event, error) {
	return findEvent(ctx, s.store.DB(), eventID)
}

func findEvent(ctx context.Context, tx dbx.Builder, id string) (*models.Event, error) {
	var event models.Event
	err := tx.NewQuery(`
		SELECT id, name, commission_rate, currency, status, created
		FROM events WHERE id = {:id}
	`).Bind(dbx.Params{"id": id}).WithContext(ctx).One(&event)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, status.ErrEventNotFound
		}
		return nil, fmt.Errorf("event: find: %w", err)
	}
	return &event, nil
}
