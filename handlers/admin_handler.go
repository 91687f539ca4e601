package handlers

import (
	"net/http"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"ticket-engine/services"
)

type AdminHandler struct {
	events    *services.EventService
	inventory *services.InventoryService
}

func NewAdminHandler(events *services.EventService, inventory *services.InventoryService) *AdminHandler {
	return &AdminHandler{events: events, inventory: inventory}
}

// CreateEvent - register an event with its commission rate.
func (h *AdminHandler) CreateEvent(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	var req services.CreateEventRequest
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	event, err := h.events.CreateEvent(e.Request.Context(), req)
	if err != nil {
		return toAPIError(err)
	}

	return e.JSON(http.StatusOK, event)
}

// CreateTicketType - allocate a ticket type for an event.
func (h *AdminHandler) CreateTicketType(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	var req services.CreateTicketTypeRequest
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	tt, err := h.events.CreateTicketType(e.Request.Context(), req)
	if err != nil {
		return toAPIError(err)
	}

	return e.JSON(http.StatusOK, tt)
}

// GetInventory - per-ticket-type sold/remaining counters for an event.
func (h *AdminHandler) GetInventory(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	eventID := e.Request.PathValue("eventId")
	ctx := e.Request.Context()

	if _, err := h.events.FindEvent(ctx, eventID); err != nil {
		return toAPIError(err)
	}

	types, err := h.inventory.ListByEvent(ctx, eventID)
	if err != nil {
		return toAPIError(err)
	}

	rows := make([]map[string]any, 0, len(types))
	for _, tt := range types {
		rows = append(rows, map[string]any{
			"ticket_type_id":     tt.ID,
			"name":               tt.Name,
			"unit_price":         tt.UnitPrice,
			"quantity_available": tt.QuantityAvailable,
			"quantity_sold":      tt.QuantitySold,
			"remaining":          tt.Remaining(),
		})
	}

	return e.JSON(http.StatusOK, map[string]any{
		"event_id":     eventID,
		"ticket_types": rows,
	})
}
