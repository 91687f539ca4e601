package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pocketbase/dbx"

	"ticket-engine/internal/status"
	"ticket-engine/models"
	"ticket-engine/monitoring"
	"ticket-engine/store"
)

// InventoryService owns the per-ticket-type counters. Reserve is the only
// code path that increments quantity_sold, and it does so with a single
// conditional update so two racing reservations can never both succeed past
// the allocation.
type InventoryService struct {
	store store.Store
}

func NewInventoryService(st store.Store) *InventoryService {
	return &InventoryService{store: st}
}

// Reserve increments quantity_sold by quantity if and only if the allocation
// still covers it. The check and the increment are one atomic statement; on
// contention the losing caller gets InsufficientInventoryError and no
// mutation. tx may be a plain builder or an enclosing transaction.
func (s *InventoryService) Reserve(ctx context.Context, tx dbx.Builder, ticketTypeID string, quantity int64) error {
	if quantity <= 0 {
		return fmt.Errorf("inventory: reserve quantity must be positive, got %d", quantity)
	}

	res, err := tx.NewQuery(`
		UPDATE ticket_types
		SET quantity_sold = quantity_sold + {:q}
		WHERE id = {:id} AND quantity_sold + {:q} <= quantity_available
	`).Bind(dbx.Params{"q": quantity, "id": ticketTypeID}).WithContext(ctx).Execute()
	if err != nil {
		monitoring.TrackReservation(ticketTypeID, "error")
		return fmt.Errorf("inventory: reserve: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("inventory: reserve: %w", err)
	}

	if affected == 0 {
		tt, err := s.FindTicketType(ctx, tx, ticketTypeID)
		if err != nil {
			monitoring.TrackReservation(ticketTypeID, "not_found")
			return err
		}
		monitoring.TrackReservation(ticketTypeID, "insufficient")
		return &status.InsufficientInventoryError{
			TicketTypeID: ticketTypeID,
			Requested:    quantity,
			Remaining:    tt.Remaining(),
		}
	}

	monitoring.TrackReservation(ticketTypeID, "success")
	return nil
}

// FindTicketType loads a ticket type by id.
func (s *InventoryService) FindTicketType(ctx context.Context, tx dbx.Builder, id string) (*models.TicketType, error) {
	var tt models.TicketType
	err := tx.NewQuery(`
		SELECT id, event, name, unit_price, quantity_available, quantity_sold, created
		FROM ticket_types WHERE id = {:id}
	`).Bind(dbx.Params{"id": id}).WithContext(ctx).One(&tt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, status.ErrTicketTypeNotFound
		}
		return nil, fmt.Errorf("inventory: find ticket type: %w", err)
	}
	return &tt, nil
}

// ListByEvent returns all ticket types of an event, for headroom checks and
// the inventory dashboard.
func (s *InventoryService) ListByEvent(ctx context.Context, eventID string) ([]*models.TicketType, error) {
	var types []*models.TicketType
	err := s.store.DB().NewQuery(`
		SELECT id, event, name, unit_price, quantity_available, quantity_sold, created
		FROM ticket_types WHERE event = {:event} ORDER BY created
	`).Bind(dbx.Params{"event": eventID}).WithContext(ctx).All(&types)
	if err != nil {
		return nil, fmt.Errorf("inventory: list ticket types: %w", err)
	}
	return types, nil
}
