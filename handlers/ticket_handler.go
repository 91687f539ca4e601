package handlers

import (
	"errors"
	"net/http"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"ticket-engine/internal/status"
	"ticket-engine/services"
)

type TicketHandler struct {
	tickets *services.TicketService
	qr      *services.QRService
}

func NewTicketHandler(tickets *services.TicketService, qr *services.QRService) *TicketHandler {
	return &TicketHandler{tickets: tickets, qr: qr}
}

// ListCustomerTickets - a customer's tickets with QR tokens on the active ones.
func (h *TicketHandler) ListCustomerTickets(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	customerID := e.Request.PathValue("customerId")
	if e.Auth.Id != customerID {
		return apis.NewForbiddenError("Access denied", nil)
	}

	tickets, err := h.tickets.ListByCustomer(e.Request.Context(), customerID)
	if err != nil {
		return toAPIError(err)
	}

	return e.JSON(http.StatusOK, map[string]any{"tickets": tickets})
}

// ValidateTicket - decode a scanned QR token and return the live ticket
// record. The embedded status is never trusted; the response always reflects
// the stored state, with a distinct reason when check-in is impossible.
func (h *TicketHandler) ValidateTicket(e *core.RequestEvent) error {
	var req struct {
		QRToken string `json:"qr_token"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	ticket, err := h.qr.Validate(e.Request.Context(), req.QRToken)
	if err != nil {
		// Terminal-state results still carry the ticket so the gate staff
		// see what they scanned.
		if ticket != nil && (errors.Is(err, status.ErrTicketAlreadyUsed) ||
			errors.Is(err, status.ErrTicketRefunded) ||
			errors.Is(err, status.ErrTicketTransferred)) {
			return e.JSON(http.StatusConflict, map[string]any{
				"ticket": ticket,
				"reason": err.Error(),
			})
		}
		return toAPIError(err)
	}

	return e.JSON(http.StatusOK, map[string]any{"ticket": ticket})
}

// CheckInTicket - apply the active -> used transition after a successful
// validation.
func (h *TicketHandler) CheckInTicket(e *core.RequestEvent) error {
	ticketID := e.Request.PathValue("ticketId")

	ticket, err := h.tickets.MarkUsed(e.Request.Context(), ticketID)
	if err != nil {
		return toAPIError(err)
	}

	return e.JSON(http.StatusOK, map[string]any{"ticket": ticket})
}

// TransferTicket - reassign an active ticket to another customer. The
// original becomes transferred; the response carries the replacement ticket
// and its QR token.
func (h *TicketHandler) TransferTicket(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	ticketID := e.Request.PathValue("ticketId")

	var req struct {
		ToCustomerID string `json:"to_customer_id"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	ticket, err := h.tickets.Find(e.Request.Context(), ticketID)
	if err != nil {
		return toAPIError(err)
	}
	if ticket.CustomerID != e.Auth.Id {
		return apis.NewForbiddenError("Access denied", nil)
	}

	replacement, err := h.tickets.Transfer(e.Request.Context(), ticketID, req.ToCustomerID)
	if err != nil {
		return toAPIError(err)
	}

	return e.JSON(http.StatusOK, map[string]any{"ticket": replacement})
}

// RegenerateQR - rotate the ticket's QR nonce, invalidating earlier tokens.
func (h *TicketHandler) RegenerateQR(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	ticketID := e.Request.PathValue("ticketId")

	ticket, err := h.tickets.Find(e.Request.Context(), ticketID)
	if err != nil {
		return toAPIError(err)
	}
	if ticket.CustomerID != e.Auth.Id {
		return apis.NewForbiddenError("Access denied", nil)
	}

	refreshed, err := h.tickets.RegenerateQR(e.Request.Context(), ticketID)
	if err != nil {
		return toAPIError(err)
	}

	return e.JSON(http.StatusOK, map[string]any{"ticket": refreshed})
}
