package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/pocketbase/pocketbase/tools/router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ticket-engine/internal/status"
)

func TestToAPIError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"insufficient inventory", &status.InsufficientInventoryError{
			TicketTypeID: "tt_1", Requested: 3, Remaining: 1,
		}, http.StatusConflict},
		{"invalid transition", &status.InvalidTransitionError{
			TicketID: "tkt_1", From: "used", To: "used",
		}, http.StatusConflict},
		{"intent not confirmable", &status.IntentNotConfirmableError{
			IntentID: "pi_1", Status: "canceled",
		}, http.StatusConflict},
		{"already settled", status.ErrIntentAlreadySettled, http.StatusConflict},
		{"already refunded", status.ErrAlreadyRefunded, http.StatusConflict},
		{"ticket already used", status.ErrTicketAlreadyUsed, http.StatusConflict},
		{"event not found", status.ErrEventNotFound, http.StatusNotFound},
		{"ticket not found", status.ErrTicketNotFound, http.StatusNotFound},
		{"intent not found", status.ErrIntentNotFound, http.StatusNotFound},
		{"qr invalid", status.ErrQRInvalid, http.StatusBadRequest},
		{"not refundable", status.ErrNotRefundable, http.StatusBadRequest},
		{"wrapped sentinel", fmt.Errorf("confirm: %w", status.ErrIntentAlreadySettled), http.StatusConflict},
		{"unknown error", errors.New("disk on fire"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var apiErr *router.ApiError
			require.ErrorAs(t, toAPIError(tt.err), &apiErr)
			assert.Equal(t, tt.wantStatus, apiErr.Status)
		})
	}
}

// Internal failures must not leak their message to the client.
func TestToAPIError_HidesInternalDetail(t *testing.T) {
	var apiErr *router.ApiError
	require.ErrorAs(t, toAPIError(errors.New("dsn=secret://creds")), &apiErr)
	assert.NotContains(t, apiErr.Message, "secret")
}
