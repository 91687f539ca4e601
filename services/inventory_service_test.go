package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ticket-engine/internal/status"
)

func TestInventoryService_Reserve(t *testing.T) {
	st := newTestStore(t)
	event := createTestEvent(t, st, 5)
	tt := createTestTicketType(t, st, event.ID, "10.00", 10)

	inventory := NewInventoryService(st)
	ctx := context.Background()

	err := inventory.Reserve(ctx, st.DB(), tt.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(3), soldCount(t, st, tt.ID))

	err = inventory.Reserve(ctx, st.DB(), tt.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(10), soldCount(t, st, tt.ID))
}

func TestInventoryService_Reserve_Insufficient(t *testing.T) {
	st := newTestStore(t)
	event := createTestEvent(t, st, 5)
	tt := createTestTicketType(t, st, event.ID, "10.00", 5)

	inventory := NewInventoryService(st)
	ctx := context.Background()

	require.NoError(t, inventory.Reserve(ctx, st.DB(), tt.ID, 4))

	err := inventory.Reserve(ctx, st.DB(), tt.ID, 2)
	var insufficient *status.InsufficientInventoryError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, tt.ID, insufficient.TicketTypeID)
	assert.Equal(t, int64(2), insufficient.Requested)
	assert.Equal(t, int64(1), insufficient.Remaining)

	// the failed attempt must not have moved the counter
	assert.Equal(t, int64(4), soldCount(t, st, tt.ID))
}

func TestInventoryService_Reserve_NotFound(t *testing.T) {
	st := newTestStore(t)

	inventory := NewInventoryService(st)
	err := inventory.Reserve(context.Background(), st.DB(), "tt_missing", 1)
	assert.ErrorIs(t, err, status.ErrTicketTypeNotFound)
}

func TestInventoryService_Reserve_InvalidQuantity(t *testing.T) {
	st := newTestStore(t)
	event := createTestEvent(t, st, 5)
	tt := createTestTicketType(t, st, event.ID, "10.00", 5)

	inventory := NewInventoryService(st)
	assert.Error(t, inventory.Reserve(context.Background(), st.DB(), tt.ID, 0))
	assert.Error(t, inventory.Reserve(context.Background(), st.DB(), tt.ID, -1))
	assert.Equal(t, int64(0), soldCount(t, st, tt.ID))
}

// Twenty concurrent single-unit reservations against an allocation of five
// must produce exactly five successes, with every other caller rejected for
// insufficient inventory and the final counter exactly at the allocation.
func TestInventoryService_Reserve_NoOversell(t *testing.T) {
	const (
		allocation = 5
		attempts   = 20
	)

	st := newTestStore(t)
	event := createTestEvent(t, st, 5)
	tt := createTestTicketType(t, st, event.ID, "10.00", allocation)

	inventory := NewInventoryService(st)

	var wg sync.WaitGroup
	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- inventory.Reserve(context.Background(), st.DB(), tt.ID, 1)
		}()
	}
	wg.Wait()
	close(results)

	var succeeded, rejected int
	for err := range results {
		if err == nil {
			succeeded++
			continue
		}
		var insufficient *status.InsufficientInventoryError
		require.True(t, errors.As(err, &insufficient), "unexpected error: %v", err)
		rejected++
	}

	assert.Equal(t, allocation, succeeded)
	assert.Equal(t, attempts-allocation, rejected)
	assert.Equal(t, int64(allocation), soldCount(t, st, tt.ID))
}

func TestInventoryService_ListByEvent(t *testing.T) {
	st := newTestStore(t)
	event := createTestEvent(t, st, 5)
	a := createTestTicketType(t, st, event.ID, "10.00", 5)
	b := createTestTicketType(t, st, event.ID, "25.00", 3)

	inventory := NewInventoryService(st)
	require.NoError(t, inventory.Reserve(context.Background(), st.DB(), a.ID, 2))

	types, err := inventory.ListByEvent(context.Background(), event.ID)
	require.NoError(t, err)
	require.Len(t, types, 2)

	byID := map[string]int64{}
	for _, tt := range types {
		byID[tt.ID] = tt.Remaining()
	}
	assert.Equal(t, int64(3), byID[a.ID])
	assert.Equal(t, int64(3), byID[b.ID])
}
