package services

import (
	"errors"
	"fmt"
	"time"

	"context"

	"github.com/golang-jwt/jwt/v5"

	"ticket-engine/internal/status"
	"ticket-engine/models"
	"ticket-engine/store"
)

// qrClaims is the signed QR payload. The subject is the ticket id, the jti
// is the ticket's current QR nonce. The embedded status is a display hint
// only; validation always loads the live record.
type qrClaims struct {
	TicketTypeID string `json:"tty"`
	StatusHint   string `json:"sts"`
	jwt.RegisteredClaims
}

// QRService encodes tickets into signed scannable tokens and validates
// scanned tokens against the live ticket records. Rotating a ticket's nonce
// invalidates every previously issued token for it.
type QRService struct {
	store  store.Store
	secret []byte
}

func NewQRService(st store.Store, secret string) *QRService {
	return &QRService{store: st, secret: []byte(secret)}
}

// Encode serializes the ticket's identity and current status into a signed
// token.
func (s *QRService) Encode(t *models.Ticket) (string, error) {
	claims := qrClaims{
		TicketTypeID: t.TicketTypeID,
		StatusHint:   string(t.Status),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  t.ID,
			ID:       t.QRNonce,
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("qr: encode: %w", err)
	}
	return token, nil
}

// Validate verifies a scanned token and returns the authoritative live
// ticket. The error describes why a check-in is impossible: a bad or stale
// signature, a missing ticket, or a ticket already out of the active state.
// The returned ticket is non-nil for the terminal-state errors so the caller
// can render the current state.
func (s *QRService) Validate(ctx context.Context, token string) (*models.Ticket, error) {
	parsed, err := jwt.ParseWithClaims(token, &qrClaims{}, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", status.ErrQRInvalid, err)
	}

	claims, ok := parsed.Claims.(*qrClaims)
	if !ok || claims.Subject == "" {
		return nil, status.ErrQRInvalid
	}

	ticket, err := findTicket(ctx, s.store.DB(), claims.Subject)
	if err != nil {
		if errors.Is(err, status.ErrTicketNotFound) {
			return nil, status.ErrTicketNotFound
		}
		return nil, err
	}

	// A regenerated QR rotates the stored nonce, so older captures of the
	// same ticket stop validating here.
	if ticket.QRNonce != claims.ID {
		return nil, status.ErrQRInvalid
	}

	switch ticket.Status {
	case models.TicketActive:
		return ticket, nil
	case models.TicketUsed:
		return ticket, status.ErrTicketAlreadyUsed
	case models.TicketRefunded:
		return ticket, status.ErrTicketRefunded
	case models.TicketTransferred:
		return ticket, status.ErrTicketTransferred
	default:
		return ticket, fmt.Errorf("qr: unexpected ticket status %q", ticket.Status)
	}
}
