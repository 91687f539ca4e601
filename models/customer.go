package models

// Customer identifies a buyer. Guest checkout is a first-class case: a guest
// customer has a minted id and a contact but no durable account profile, and
// the id is assigned when the payment intent is created, never as a side
// effect of settlement.
type Customer struct {
	ID      string `json:"id"`
	Contact string `json:"contact"`
	Guest   bool   `json:"guest"`
}
