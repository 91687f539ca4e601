package models

import (
	"time"
)

type Event struct {
	ID             string    `json:"id" db:"id"`
	Name           string    `json:"name" db:"name"`
	CommissionRate int64     `json:"commission_rate" db:"commission_rate"` // percent, 0-100
	Currency       string    `json:"currency" db:"currency"`
	Status         string    `json:"status" db:"status"` // draft, published, ended
	Created        time.Time `json:"created" db:"created"`
}

const (
	EventDraft     = "draft"
	EventPublished = "published"
	EventEnded     = "ended"
)

// OnSale reports whether tickets for the event may currently be sold.
func (e *Event) OnSale() bool {
	return e.Status == EventPublished
}
