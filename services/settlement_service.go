package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pocketbase/dbx"

	"ticket-engine/models"
	"ticket-engine/monitoring"
	"ticket-engine/store"
	"ticket-engine/utils"
)

// SettlementService turns a confirmed payment intent into a durable
// transaction record plus minted tickets. The reservation, the transaction
// insert and every ticket insert share one database transaction, so a
// failure at any step leaves no reserved inventory behind.
type SettlementService struct {
	store     store.Store
	inventory *InventoryService
	qr        *QRService
}

func NewSettlementService(st store.Store, inventory *InventoryService, qr *QRService) *SettlementService {
	return &SettlementService{store: st, inventory: inventory, qr: qr}
}

// SettlementResult is what the caller gets back on success: the frozen
// transaction record and the minted tickets with their QR tokens attached.
type SettlementResult struct {
	Transaction *models.Transaction `json:"transaction"`
	Tickets     []*models.Ticket    `json:"tickets"`
}

// Settle reserves inventory for every line item, computes the commission
// split from the event's configured rate, writes the transaction record and
// mints one active ticket per purchased unit. All-or-nothing: an
// insufficient-inventory result from any line item, or a storage fault at
// any later step, aborts the whole settlement.
func (s *SettlementService) Settle(ctx context.Context, intent *models.PaymentIntent, gatewayRef string) (*SettlementResult, error) {
	started := time.Now()

	var result SettlementResult
	err := s.store.InTransaction(ctx, func(tx dbx.Builder) error {
		for _, item := range intent.LineItems {
			if err := s.inventory.Reserve(ctx, tx, item.TicketTypeID, item.Quantity); err != nil {
				return err
			}
		}

		event, err := findEvent(ctx, tx, intent.EventID)
		if err != nil {
			return err
		}

		commission, creator := SplitAmount(intent.Amount, event.CommissionRate)
		now := time.Now().UTC()

		txn := &models.Transaction{
			ID:               "txn_" + utils.MustCode(8),
			CustomerID:       intent.CustomerID,
			EventID:          intent.EventID,
			TotalAmount:      intent.Amount,
			CommissionAmount: commission,
			CreatorAmount:    creator,
			Status:           models.TransactionCompleted,
			GatewayRef:       gatewayRef,
			Created:          now,
			Updated:          now,
		}

		_, err = tx.Insert("transactions", dbx.Params{
			"id":                txn.ID,
			"customer":          txn.CustomerID,
			"event":             txn.EventID,
			"total_amount":      txn.TotalAmount,
			"commission_amount": txn.CommissionAmount,
			"creator_amount":    txn.CreatorAmount,
			"status":            string(txn.Status),
			"gateway_ref":       txn.GatewayRef,
			"created":           txn.Created,
			"updated":           txn.Updated,
		}).WithContext(ctx).Execute()
		if err != nil {
			return fmt.Errorf("settlement: insert transaction: %w", err)
		}

		var tickets []*models.Ticket
		for _, item := range intent.LineItems {
			for i := int64(0); i < item.Quantity; i++ {
				ticket := &models.Ticket{
					ID:            "tkt_" + utils.MustCode(8),
					TicketTypeID:  item.TicketTypeID,
					CustomerID:    intent.CustomerID,
					TransactionID: txn.ID,
					QRNonce:       utils.MustCode(8),
					Status:        models.TicketActive,
					Created:       now,
					Updated:       now,
				}
				if err := insertTicket(ctx, tx, ticket); err != nil {
					return err
				}
				tickets = append(tickets, ticket)
			}
		}

		result.Transaction = txn
		result.Tickets = tickets
		return nil
	})
	if err != nil {
		monitoring.TrackSettlement("failed", time.Since(started))
		return nil, err
	}

	for _, ticket := range result.Tickets {
		token, err := s.qr.Encode(ticket)
		if err != nil {
			// The settlement itself is committed; a token can be reissued
			// from the stored nonce at any time.
			slog.Error("settlement: qr encode after commit", "ticket", ticket.ID, "error", err)
			continue
		}
		ticket.QRToken = token
	}

	monitoring.TrackSettlement("completed", time.Since(started))
	return &result, nil
}

// FindTransaction loads a transaction by id.
func (s *SettlementService) FindTransaction(ctx context.Context, id string) (*models.Transaction, error) {
	return findTransaction(ctx, s.store.DB(), id)
}
