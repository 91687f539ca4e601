package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TicketType is a purchasable admission category with a fixed price and a
// finite allocation. quantity_sold only ever grows; the reserve operation in
// the inventory service is the single writer.
type TicketType struct {
	ID                string          `json:"id" db:"id"`
	EventID           string          `json:"event_id" db:"event"`
	Name              string          `json:"name" db:"name"`
	UnitPrice         decimal.Decimal `json:"unit_price" db:"unit_price"`
	QuantityAvailable int64           `json:"quantity_available" db:"quantity_available"`
	QuantitySold      int64           `json:"quantity_sold" db:"quantity_sold"`
	Created           time.Time       `json:"created" db:"created"`
}

// Remaining is the advisory headroom at read time. The authoritative check
// happens inside the reserve update itself.
func (t *TicketType) Remaining() int64 {
	return t.QuantityAvailable - t.QuantitySold
}

type TicketStatus string

const (
	TicketActive      TicketStatus = "active"
	TicketUsed        TicketStatus = "used"
	TicketTransferred TicketStatus = "transferred"
	TicketRefunded    TicketStatus = "refunded"
)

// Terminal reports whether no further forward transition is allowed.
func (s TicketStatus) Terminal() bool {
	return s == TicketUsed || s == TicketTransferred || s == TicketRefunded
}

type Ticket struct {
	ID            string       `json:"id" db:"id"`
	TicketTypeID  string       `json:"ticket_type_id" db:"ticket_type"`
	CustomerID    string       `json:"customer_id" db:"customer"`
	TransactionID string       `json:"transaction_id" db:"txn"`
	QRNonce       string       `json:"-" db:"qr_nonce"`
	Status        TicketStatus `json:"status" db:"status"`
	Created       time.Time    `json:"created" db:"created"`
	Updated       time.Time    `json:"updated" db:"updated"`

	// QRToken is derived from the stored fields at read time, never persisted.
	QRToken string `json:"qr_token,omitempty" db:"-"`
}
