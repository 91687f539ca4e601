package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/pocketbase/dbx"

	"ticket-engine/internal/status"
	"ticket-engine/models"
	"ticket-engine/monitoring"
	"ticket-engine/store"
	"ticket-engine/utils"
)

// TicketService drives the per-ticket lifecycle. Every transition out of
// active is a conditional update, so a ticket leaves the active state exactly
// once no matter how many callers race.
type TicketService struct {
	store store.Store
	qr    *QRService
}

func NewTicketService(st store.Store, qr *QRService) *TicketService {
	return &TicketService{store: st, qr: qr}
}

// MarkUsed applies the check-in transition active -> used.
func (s *TicketService) MarkUsed(ctx context.Context, ticketID string) (*models.Ticket, error) {
	ticket, err := s.transition(ctx, s.store.DB(), ticketID, models.TicketUsed)
	if err != nil {
		monitoring.TrackCheckin("rejected")
		return nil, err
	}
	monitoring.TrackCheckin("success")
	return ticket, nil
}

// Transfer reassigns an active ticket: the original is marked transferred and
// a replacement ticket is minted for the new holder, with a fresh QR nonce,
// under the same transaction record. Both steps happen in one database
// transaction.
func (s *TicketService) Transfer(ctx context.Context, ticketID, toCustomerID string) (*models.Ticket, error) {
	if toCustomerID == "" {
		return nil, fmt.Errorf("ticket: transfer target customer required")
	}

	var replacement *models.Ticket
	err := s.store.InTransaction(ctx, func(tx dbx.Builder) error {
		original, err := s.transition(ctx, tx, ticketID, models.TicketTransferred)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		replacement = &models.Ticket{
			ID:            "tkt_" + utils.MustCode(8),
			TicketTypeID:  original.TicketTypeID,
			CustomerID:    toCustomerID,
			TransactionID: original.TransactionID,
			QRNonce:       utils.MustCode(8),
			Status:        models.TicketActive,
			Created:       now,
			Updated:       now,
		}
		return insertTicket(ctx, tx, replacement)
	})
	if err != nil {
		return nil, err
	}

	token, err := s.qr.Encode(replacement)
	if err != nil {
		return nil, err
	}
	replacement.QRToken = token
	return replacement, nil
}

// RegenerateQR rotates the ticket's QR nonce and returns a freshly signed
// token. Previously issued tokens stop validating. Only active tickets can
// be regenerated.
func (s *TicketService) RegenerateQR(ctx context.Context, ticketID string) (*models.Ticket, error) {
	nonce := utils.MustCode(8)

	res, err := s.store.DB().NewQuery(`
		UPDATE tickets SET qr_nonce = {:nonce}, updated = {:now}
		WHERE id = {:id} AND status = 'active'
	`).Bind(dbx.Params{
		"nonce": nonce,
		"now":   time.Now().UTC(),
		"id":    ticketID,
	}).WithContext(ctx).Execute()
	if err != nil {
		return nil, fmt.Errorf("ticket: regenerate qr: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("ticket: regenerate qr: %w", err)
	}
	if affected == 0 {
		ticket, err := findTicket(ctx, s.store.DB(), ticketID)
		if err != nil {
			return nil, err
		}
		return nil, &status.InvalidTransitionError{
			TicketID: ticketID,
			From:     string(ticket.Status),
			To:       string(models.TicketActive),
		}
	}

	ticket, err := findTicket(ctx, s.store.DB(), ticketID)
	if err != nil {
		return nil, err
	}

	token, err := s.qr.Encode(ticket)
	if err != nil {
		return nil, err
	}
	ticket.QRToken = token
	return ticket, nil
}

// Find loads a ticket by id.
func (s *TicketService) Find(ctx context.Context, ticketID string) (*models.Ticket, error) {
	return findTicket(ctx, s.store.DB(), ticketID)
}

// ListByCustomer returns a customer's tickets, newest first, with QR tokens
// attached to the active ones.
func (s *TicketService) ListByCustomer(ctx context.Context, customerID string) ([]*models.Ticket, error) {
	var tickets []*models.Ticket
	err := s.store.DB().NewQuery(`
		SELECT id, ticket_type, customer, txn, qr_nonce, status, created, updated
		FROM tickets WHERE customer = {:customer} ORDER BY created DESC
	`).Bind(dbx.Params{"customer": customerID}).WithContext(ctx).All(&tickets)
	if err != nil {
		return nil, fmt.Errorf("ticket: list by customer: %w", err)
	}

	for _, t := range tickets {
		if t.Status != models.TicketActive {
			continue
		}
		token, err := s.qr.Encode(t)
		if err != nil {
			return nil, err
		}
		t.QRToken = token
	}
	return tickets, nil
}

// transition moves a ticket out of active into the given terminal state with
// a single conditional update. A failed update is resolved into either
// not-found or InvalidTransitionError carrying the current status.
func (s *TicketService) transition(ctx context.Context, tx dbx.Builder, ticketID string, to models.TicketStatus) (*models.Ticket, error) {
	res, err := tx.NewQuery(`
		UPDATE tickets SET status = {:to}, updated = {:now}
		WHERE id = {:id} AND status = 'active'
	`).Bind(dbx.Params{
		"to":  string(to),
		"now": time.Now().UTC(),
		"id":  ticketID,
	}).WithContext(ctx).Execute()
	if err != nil {
		return nil, fmt.Errorf("ticket: transition to %s: %w", to, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("ticket: transition to %s: %w", to, err)
	}

	if affected == 0 {
		ticket, err := findTicket(ctx, tx, ticketID)
		if err != nil {
			return nil, err
		}
		return nil, &status.InvalidTransitionError{
			TicketID: ticketID,
			From:     string(ticket.Status),
			To:       string(to),
		}
	}

	return findTicket(ctx, tx, ticketID)
}

func findTicket(ctx context.Context, tx dbx.Builder, id string) (*models.Ticket, error) {
	var t models.Ticket
	err := tx.NewQuery(`
		SELECT id, ticket_type, customer, txn, qr_nonce, status, created, updated
		FROM tickets WHERE id = {:id}
	`).Bind(dbx.Params{"id": id}).WithContext(ctx).One(&t)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, status.ErrTicketNotFound
		}
		return nil, fmt.Errorf("ticket: find: %w", err)
	}
	return &t, nil
}

func insertTicket(ctx context.Context, tx dbx.Builder, t *models.Ticket) error {
	_, err := tx.Insert("tickets", dbx.Params{
		"id":          t.ID,
		"ticket_type": t.TicketTypeID,
		"customer":    t.CustomerID,
		"txn":         t.TransactionID,
		"qr_nonce":    t.QRNonce,
		"status":      string(t.Status),
		"created":     t.Created,
		"updated":     t.Updated,
	}).WithContext(ctx).Execute()
	if err != nil {
		return fmt.Errorf("ticket: insert: %w", err)
	}
	return nil
}
