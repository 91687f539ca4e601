package services

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ticket-engine/internal/status"
	"ticket-engine/models"
)

func TestEventService_CreateEvent(t *testing.T) {
	st := newTestStore(t)
	events := NewEventService(st)
	ctx := context.Background()

	event, err := events.CreateEvent(ctx, CreateEventRequest{
		Name:           "Launch Party",
		CommissionRate: 10,
		Currency:       "LAK",
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(event.ID, "ev_"))
	assert.Equal(t, models.EventPublished, event.Status)
	assert.True(t, event.OnSale())

	stored, err := events.FindEvent(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), stored.CommissionRate)
	assert.Equal(t, "LAK", stored.Currency)
}

func TestEventService_CreateEvent_Validation(t *testing.T) {
	st := newTestStore(t)
	events := NewEventService(st)
	ctx := context.Background()

	_, err := events.CreateEvent(ctx, CreateEventRequest{CommissionRate: 5})
	assert.Error(t, err, "name required")

	_, err = events.CreateEvent(ctx, CreateEventRequest{Name: "x", CommissionRate: -1})
	assert.Error(t, err, "rate below range")

	_, err = events.CreateEvent(ctx, CreateEventRequest{Name: "x", CommissionRate: 101})
	assert.Error(t, err, "rate above range")
}

func TestEventService_CreateTicketType(t *testing.T) {
	st := newTestStore(t)
	events := NewEventService(st)
	ctx := context.Background()

	event := createTestEvent(t, st, 5)
	tt, err := events.CreateTicketType(ctx, CreateTicketTypeRequest{
		EventID:   event.ID,
		Name:      "VIP",
		UnitPrice: decimal.RequireFromString("250.50"),
		Quantity:  20,
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(tt.ID, "tt_"))
	assert.Equal(t, int64(20), tt.Remaining())

	stored, err := NewInventoryService(st).FindTicketType(ctx, st.DB(), tt.ID)
	require.NoError(t, err)
	assert.True(t, stored.UnitPrice.Equal(decimal.RequireFromString("250.50")))
	assert.Equal(t, int64(0), stored.QuantitySold)
}

func TestEventService_CreateTicketType_Validation(t *testing.T) {
	st := newTestStore(t)
	events := NewEventService(st)
	ctx := context.Background()

	event := createTestEvent(t, st, 5)
	price := decimal.RequireFromString("10.00")

	_, err := events.CreateTicketType(ctx, CreateTicketTypeRequest{
		EventID: event.ID, UnitPrice: price, Quantity: 5,
	})
	assert.Error(t, err, "name required")

	_, err = events.CreateTicketType(ctx, CreateTicketTypeRequest{
		EventID: event.ID, Name: "GA", UnitPrice: price, Quantity: 0,
	})
	assert.Error(t, err, "quantity must be positive")

	_, err = events.CreateTicketType(ctx, CreateTicketTypeRequest{
		EventID: event.ID, Name: "GA", UnitPrice: decimal.RequireFromString("-1"), Quantity: 5,
	})
	assert.Error(t, err, "negative price")

	_, err = events.CreateTicketType(ctx, CreateTicketTypeRequest{
		EventID: "ev_missing", Name: "GA", UnitPrice: price, Quantity: 5,
	})
	assert.ErrorIs(t, err, status.ErrEventNotFound)
}

func TestEventService_FindEvent_NotFound(t *testing.T) {
	st := newTestStore(t)
	_, err := NewEventService(st).FindEvent(context.Background(), "ev_missing")
	assert.ErrorIs(t, err, status.ErrEventNotFound)
}
