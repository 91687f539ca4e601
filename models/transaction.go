package models

import (
	"time"
)

type TransactionStatus string

const (
	TransactionPending   TransactionStatus = "pending"
	TransactionCompleted TransactionStatus = "completed"
	TransactionFailed    TransactionStatus = "failed"
	TransactionRefunded  TransactionStatus = "refunded"
)

// Transaction is the settled record of one purchase. Amounts are in minor
// currency units and the commission split is frozen at settlement time:
// CommissionAmount + CreatorAmount == TotalAmount, exact.
type Transaction struct {
	ID               string            `json:"id" db:"id"`
	CustomerID       string            `json:"customer_id" db:"customer"`
	EventID          string            `json:"event_id" db:"event"`
	TotalAmount      int64             `json:"total_amount" db:"total_amount"`
	CommissionAmount int64             `json:"commission_amount" db:"commission_amount"`
	CreatorAmount    int64             `json:"creator_amount" db:"creator_amount"`
	Status           TransactionStatus `json:"status" db:"status"`
	GatewayRef       string            `json:"gateway_ref" db:"gateway_ref"`
	Created          time.Time         `json:"created" db:"created"`
	Updated          time.Time         `json:"updated" db:"updated"`
}
