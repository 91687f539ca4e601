package status

import (
	"errors"
	"fmt"
)

var (
	ErrEventNotFound        = errors.New("event: not found")
	ErrTicketTypeNotFound   = errors.New("ticket type: not found")
	ErrTicketNotFound       = errors.New("ticket: not found")
	ErrTransactionNotFound  = errors.New("transaction: not found")
	ErrIntentNotFound       = errors.New("payment intent: not found")
	ErrIntentAlreadySettled = errors.New("payment intent: already settled")
	ErrAlreadyRefunded      = errors.New("transaction: already refunded")
	ErrNotRefundable        = errors.New("transaction: not refundable")
	ErrQRInvalid            = errors.New("qr: invalid token")
	ErrTicketAlreadyUsed    = errors.New("ticket: already used")
	ErrTicketRefunded       = errors.New("ticket: refunded")
	ErrTicketTransferred    = errors.New("ticket: transferred")
)

// InsufficientInventoryError names the ticket type that could not cover a
// reservation so the caller can render a precise message.
type InsufficientInventoryError struct {
	TicketTypeID string
	Requested    int64
	Remaining    int64
}

func (e *InsufficientInventoryError) Error() string {
	return fmt.Sprintf("ticket type %s: insufficient inventory (requested %d, remaining %d)",
		e.TicketTypeID, e.Requested, e.Remaining)
}

// InvalidTransitionError is returned when a ticket is asked to leave a
// terminal state. From carries the ticket's current status.
type InvalidTransitionError struct {
	TicketID string
	From     string
	To       string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("ticket %s: invalid transition %s -> %s", e.TicketID, e.From, e.To)
}

// IntentNotConfirmableError is returned when a confirm or cancel call races
// with, or arrives after, another terminal transition of the same intent.
type IntentNotConfirmableError struct {
	IntentID string
	Status   string
}

func (e *IntentNotConfirmableError) Error() string {
	return fmt.Sprintf("payment intent %s: not confirmable in status %q", e.IntentID, e.Status)
}
