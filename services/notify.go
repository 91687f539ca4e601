package services

import (
	"log/slog"

	pubnub "github.com/pubnub/go"

	"ticket-engine/models"
)

// Notifier publishes settlement outcomes to the buyer's realtime channel.
// It is invoked by the HTTP layer after a confirm returns — never from
// inside settlement — so a publish failure can only lose a notification,
// not a sale.
type Notifier struct {
	pubnub *pubnub.PubNub
}

func NewNotifier(pn *pubnub.PubNub) *Notifier {
	return &Notifier{pubnub: pn}
}

// SettlementCompleted pushes the transaction summary to the customer channel.
func (n *Notifier) SettlementCompleted(customerID string, txn *models.Transaction, tickets []*models.Ticket) {
	if n.pubnub == nil {
		return
	}

	ticketIDs := make([]string, 0, len(tickets))
	for _, t := range tickets {
		ticketIDs = append(ticketIDs, t.ID)
	}

	_, _, err := n.pubnub.Publish().
		Channel("user-" + customerID).
		Message(map[string]any{
			"type":           "payment_success",
			"transaction_id": txn.ID,
			"total_amount":   txn.TotalAmount,
			"tickets":        ticketIDs,
		}).
		Execute()
	if err != nil {
		slog.Warn("settlement notification publish failed", "customer", customerID,
			"transaction", txn.ID, "error", err)
	}
}

// RefundCompleted notifies the customer that a transaction was reversed.
func (n *Notifier) RefundCompleted(customerID string, txn *models.Transaction) {
	if n.pubnub == nil {
		return
	}

	_, _, err := n.pubnub.Publish().
		Channel("user-" + customerID).
		Message(map[string]any{
			"type":           "refund_completed",
			"transaction_id": txn.ID,
		}).
		Execute()
	if err != nil {
		slog.Warn("refund notification publish failed", "customer", customerID,
			"transaction", txn.ID, "error", err)
	}
}
