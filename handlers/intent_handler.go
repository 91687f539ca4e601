package handlers

import (
	"net/http"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"ticket-engine/services"
)

type IntentHandler struct {
	intents  *services.IntentService
	notifier *services.Notifier
}

func NewIntentHandler(intents *services.IntentService, notifier *services.Notifier) *IntentHandler {
	return &IntentHandler{intents: intents, notifier: notifier}
}

// CreateIntent - open a payment intent for the requested line items. Guest
// checkout is allowed: without an authenticated record the payer contact
// identifies the buyer and a guest customer id is minted.
func (h *IntentHandler) CreateIntent(e *core.RequestEvent) error {
	var req services.CreateIntentRequest
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	if e.Auth != nil {
		req.CustomerID = e.Auth.Id
	}

	intent, err := h.intents.Create(e.Request.Context(), req)
	if err != nil {
		return toAPIError(err)
	}

	return e.JSON(http.StatusOK, intent)
}

// GetIntent - current status of an intent.
func (h *IntentHandler) GetIntent(e *core.RequestEvent) error {
	intentID := e.Request.PathValue("intentId")

	intent, err := h.intents.Get(e.Request.Context(), intentID)
	if err != nil {
		return toAPIError(err)
	}

	return e.JSON(http.StatusOK, intent)
}

// ConfirmIntent - settle the intent. At most one concurrent confirm wins;
// the rest see a conflict. The buyer notification is published here, after
// settlement has committed, so its failure cannot affect the sale.
func (h *IntentHandler) ConfirmIntent(e *core.RequestEvent) error {
	intentID := e.Request.PathValue("intentId")
	ctx := e.Request.Context()

	result, err := h.intents.Confirm(ctx, intentID)
	if err != nil {
		return toAPIError(err)
	}

	go h.notifier.SettlementCompleted(result.Transaction.CustomerID, result.Transaction, result.Tickets)

	return e.JSON(http.StatusOK, result)
}

// CancelIntent - terminate an unconfirmed intent.
func (h *IntentHandler) CancelIntent(e *core.RequestEvent) error {
	intentID := e.Request.PathValue("intentId")

	if err := h.intents.Cancel(e.Request.Context(), intentID); err != nil {
		return toAPIError(err)
	}

	return e.JSON(http.StatusOK, map[string]string{"status": "canceled"})
}
