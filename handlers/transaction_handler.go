package handlers

import (
	"net/http"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"ticket-engine/services"
)

type TransactionHandler struct {
	settlement *services.SettlementService
	refunds    *services.RefundService
	notifier   *services.Notifier
}

func NewTransactionHandler(settlement *services.SettlementService, refunds *services.RefundService,
	notifier *services.Notifier) *TransactionHandler {
	return &TransactionHandler{settlement: settlement, refunds: refunds, notifier: notifier}
}

// GetTransaction - a settled transaction record.
func (h *TransactionHandler) GetTransaction(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	transactionID := e.Request.PathValue("transactionId")

	txn, err := h.settlement.FindTransaction(e.Request.Context(), transactionID)
	if err != nil {
		return toAPIError(err)
	}

	return e.JSON(http.StatusOK, txn)
}

// RefundTransaction - reverse a settled transaction. Re-refunding reports a
// conflict and changes nothing; inventory counters are not restored.
func (h *TransactionHandler) RefundTransaction(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	transactionID := e.Request.PathValue("transactionId")

	txn, err := h.refunds.Refund(e.Request.Context(), transactionID)
	if err != nil {
		return toAPIError(err)
	}

	go h.notifier.RefundCompleted(txn.CustomerID, txn)

	return e.JSON(http.StatusOK, txn)
}
