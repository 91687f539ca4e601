package models

import (
	"time"
)

type IntentStatus string

const (
	IntentRequiresPaymentMethod IntentStatus = "requires_payment_method"
	// IntentProcessing is the transient guard set while exactly one confirm
	// call runs settlement. It is never observable as a final state.
	IntentProcessing IntentStatus = "processing"
	IntentSucceeded  IntentStatus = "succeeded"
	IntentCanceled   IntentStatus = "canceled"
)

type LineItem struct {
	TicketTypeID string `json:"ticket_type_id"`
	Quantity     int64  `json:"quantity"`
}

// PaymentIntent is the short-lived record of an attempted purchase. It lives
// in the intent store (redis with a TTL, or in-memory) and is consumed at
// most once on confirmation.
type PaymentIntent struct {
	ID            string       `json:"id"`
	EventID       string       `json:"event_id"`
	CustomerID    string       `json:"customer_id"`
	Guest         bool         `json:"guest"`
	PayerContact  string       `json:"payer_contact"`
	Amount        int64        `json:"amount"` // minor currency units
	Currency      string       `json:"currency"`
	LineItems     []LineItem   `json:"line_items"`
	Status        IntentStatus `json:"status"`
	TransactionID string       `json:"transaction_id,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
	ExpiresAt     time.Time    `json:"expires_at"`
}

// Units is the total number of tickets the intent asks for.
func (p *PaymentIntent) Units() int64 {
	var n int64
	for _, item := range p.LineItems {
		n += item.Quantity
	}
	return n
}
