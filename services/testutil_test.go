package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/pocketbase/dbx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"ticket-engine/models"
	"ticket-engine/store"
)

// newTestStore opens a throwaway SQLite database with the engine schema.
// WAL plus a generous busy timeout lets the concurrency tests drive real
// parallel writers against it.
func newTestStore(t *testing.T) store.Store {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "engine.db") +
		"?_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)"
	db, err := dbx.Open("sqlite", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	for _, stmt := range store.Schema {
		_, err = db.NewQuery(stmt).Execute()
		require.NoError(t, err)
	}

	return store.NewDBX(db)
}

func createTestEvent(t *testing.T, st store.Store, commissionRate int64) *models.Event {
	t.Helper()

	events := NewEventService(st)
	event, err := events.CreateEvent(context.Background(), CreateEventRequest{
		Name:           "Test Concert",
		CommissionRate: commissionRate,
		Currency:       "LAK",
	})
	require.NoError(t, err)
	return event
}

func createTestTicketType(t *testing.T, st store.Store, eventID string, price string, quantity int64) *models.TicketType {
	t.Helper()

	events := NewEventService(st)
	tt, err := events.CreateTicketType(context.Background(), CreateTicketTypeRequest{
		EventID:   eventID,
		Name:      "General Admission",
		UnitPrice: decimal.RequireFromString(price),
		Quantity:  quantity,
	})
	require.NoError(t, err)
	return tt
}

// newTestEngine wires the full confirm path over a memory intent store.
func newTestEngine(t *testing.T, st store.Store) *IntentService {
	t.Helper()

	inventory := NewInventoryService(st)
	qr := NewQRService(st, "test-secret")
	settlement := NewSettlementService(st, inventory, qr)
	return NewIntentService(st, NewMemoryIntentStore(), inventory, settlement,
		NewStandInGateway(), "LAK", 15*time.Minute)
}

func soldCount(t *testing.T, st store.Store, ticketTypeID string) int64 {
	t.Helper()

	var sold int64
	err := st.DB().NewQuery(`SELECT quantity_sold FROM ticket_types WHERE id = {:id}`).
		Bind(dbx.Params{"id": ticketTypeID}).Row(&sold)
	require.NoError(t, err)
	return sold
}

func countRows(t *testing.T, st store.Store, table string) int64 {
	t.Helper()

	var n int64
	err := st.DB().NewQuery("SELECT COUNT(*) FROM " + table).Row(&n)
	require.NoError(t, err)
	return n
}
