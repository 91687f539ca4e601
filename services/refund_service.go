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
)

// RefundService reverses a settled transaction: the transaction record and
// every ticket it owns become refunded. Inventory counters are deliberately
// left untouched — refunded units are not resold automatically; putting them
// back on sale is a separate, explicitly authorized re-allocation.
type RefundService struct {
	store store.Store
}

func NewRefundService(st store.Store) *RefundService {
	return &RefundService{store: st}
}

// Refund marks the transaction and all of its tickets refunded in one
// database transaction. Refunding an already-refunded transaction returns
// ErrAlreadyRefunded and performs no mutation; the operation is safe to
// retry until it reports either success or ErrAlreadyRefunded.
func (s *RefundService) Refund(ctx context.Context, transactionID string) (*models.Transaction, error) {
	var refunded *models.Transaction
	err := s.store.InTransaction(ctx, func(tx dbx.Builder) error {
		res, err := tx.NewQuery(`
			UPDATE transactions SET status = 'refunded', updated = {:now}
			WHERE id = {:id} AND status = 'completed'
		`).Bind(dbx.Params{
			"now": time.Now().UTC(),
			"id":  transactionID,
		}).WithContext(ctx).Execute()
		if err != nil {
			return fmt.Errorf("refund: update transaction: %w", err)
		}

		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("refund: update transaction: %w", err)
		}

		if affected == 0 {
			txn, err := findTransaction(ctx, tx, transactionID)
			if err != nil {
				return err
			}
			if txn.Status == models.TransactionRefunded {
				return status.ErrAlreadyRefunded
			}
			return fmt.Errorf("%w: status %q", status.ErrNotRefundable, txn.Status)
		}

		_, err = tx.NewQuery(`
			UPDATE tickets SET status = 'refunded', updated = {:now}
			WHERE txn = {:id} AND status != 'refunded'
		`).Bind(dbx.Params{
			"now": time.Now().UTC(),
			"id":  transactionID,
		}).WithContext(ctx).Execute()
		if err != nil {
			return fmt.Errorf("refund: update tickets: %w", err)
		}

		refunded, err = findTransaction(ctx, tx, transactionID)
		return err
	})
	if err != nil {
		if errors.Is(err, status.ErrAlreadyRefunded) {
			monitoring.TrackRefund("already_refunded")
		} else {
			monitoring.TrackRefund("failed")
		}
		return nil, err
	}

	monitoring.TrackRefund("success")
	return refunded, nil
}

func findTransaction(ctx context.Context, tx dbx.Builder, id string) (*models.Transaction, error) {
	var txn models.Transaction
	err := tx.NewQuery(`
		SELECT id, customer, event, total_amount, commission_amount, creator_amount,
		       status, gateway_ref, created, updated
		FROM transactions WHERE id = {:id}
	`).Bind(dbx.Params{"id": id}).WithContext(ctx).One(&txn)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, status.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("transaction: find: %w", err)
	}
	return &txn, nil
}
