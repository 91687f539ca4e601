package services

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ticket-engine/internal/status"
	"ticket-engine/models"
)

func TestQRService_RoundTrip(t *testing.T) {
	st := newTestStore(t)
	tickets, _, qr := mintTickets(t, st, 1)

	live, err := qr.Validate(context.Background(), tickets[0].QRToken)
	require.NoError(t, err)
	assert.Equal(t, tickets[0].ID, live.ID)
	assert.Equal(t, models.TicketActive, live.Status)
}

func TestQRService_Validate_Garbage(t *testing.T) {
	st := newTestStore(t)
	qr := NewQRService(st, "test-secret")

	_, err := qr.Validate(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, status.ErrQRInvalid)

	_, err = qr.Validate(context.Background(), "")
	assert.ErrorIs(t, err, status.ErrQRInvalid)
}

func TestQRService_Validate_WrongKey(t *testing.T) {
	st := newTestStore(t)
	tickets, _, qr := mintTickets(t, st, 1)

	forger := NewQRService(st, "other-secret")
	forged, err := forger.Encode(tickets[0])
	require.NoError(t, err)

	_, err = qr.Validate(context.Background(), forged)
	assert.ErrorIs(t, err, status.ErrQRInvalid)
}

func TestQRService_Validate_RejectsUnsignedToken(t *testing.T) {
	st := newTestStore(t)
	tickets, _, qr := mintTickets(t, st, 1)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, qrClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: tickets[0].ID,
			ID:      tickets[0].QRNonce,
		},
	})
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = qr.Validate(context.Background(), token)
	assert.ErrorIs(t, err, status.ErrQRInvalid)
}

func TestQRService_Validate_TicketGone(t *testing.T) {
	st := newTestStore(t)
	qr := NewQRService(st, "test-secret")

	token, err := qr.Encode(&models.Ticket{
		ID:      "tkt_missing",
		QRNonce: "nonce",
		Status:  models.TicketActive,
	})
	require.NoError(t, err)

	_, err = qr.Validate(context.Background(), token)
	assert.ErrorIs(t, err, status.ErrTicketNotFound)
}

// The embedded status claim is presentation only: an old token captured while
// the ticket was active must still be rejected once the live record says
// otherwise.
func TestQRService_Validate_LiveStatusWins(t *testing.T) {
	st := newTestStore(t)
	tickets, svc, qr := mintTickets(t, st, 1)
	ctx := context.Background()

	token := tickets[0].QRToken // encoded with status hint "active"

	_, err := svc.MarkUsed(ctx, tickets[0].ID)
	require.NoError(t, err)

	live, err := qr.Validate(ctx, token)
	assert.ErrorIs(t, err, status.ErrTicketAlreadyUsed)
	require.NotNil(t, live)
	assert.Equal(t, models.TicketUsed, live.Status)
}

func TestQRService_Validate_RefundedTicket(t *testing.T) {
	st := newTestStore(t)
	tickets, _, qr := mintTickets(t, st, 1)
	ctx := context.Background()

	_, err := NewRefundService(st).Refund(ctx, tickets[0].TransactionID)
	require.NoError(t, err)

	live, err := qr.Validate(ctx, tickets[0].QRToken)
	assert.ErrorIs(t, err, status.ErrTicketRefunded)
	require.NotNil(t, live)
	assert.Equal(t, models.TicketRefunded, live.Status)
}

func TestQRService_Validate_StaleNonce(t *testing.T) {
	st := newTestStore(t)
	tickets, svc, qr := mintTickets(t, st, 1)
	ctx := context.Background()

	stale := tickets[0].QRToken
	_, err := svc.RegenerateQR(ctx, tickets[0].ID)
	require.NoError(t, err)

	_, err = qr.Validate(ctx, stale)
	assert.ErrorIs(t, err, status.ErrQRInvalid)
}

func TestQRService_Encode_ClaimsShape(t *testing.T) {
	st := newTestStore(t)
	qr := NewQRService(st, "test-secret")

	ticket := &models.Ticket{
		ID:           "tkt_1",
		TicketTypeID: "tt_1",
		QRNonce:      "nonce_1",
		Status:       models.TicketActive,
	}
	token, err := qr.Encode(ticket)
	require.NoError(t, err)

	var claims qrClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return []byte("test-secret"), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	require.NoError(t, err)
	require.True(t, parsed.Valid)

	assert.Equal(t, "tkt_1", claims.Subject)
	assert.Equal(t, "nonce_1", claims.ID)
	assert.Equal(t, "tt_1", claims.TicketTypeID)
	assert.Equal(t, "active", claims.StatusHint)
	assert.WithinDuration(t, time.Now(), claims.IssuedAt.Time, time.Minute)
}
