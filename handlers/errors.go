package handlers

import (
	"errors"
	"net/http"

	"github.com/pocketbase/pocketbase/apis"

	"ticket-engine/internal/status"
)

// toAPIError maps engine results onto HTTP responses. Expected results keep
// their message; anything unrecognized is a 500 without detail.
func toAPIError(err error) error {
	var insufficient *status.InsufficientInventoryError
	var transition *status.InvalidTransitionError
	var notConfirmable *status.IntentNotConfirmableError

	switch {
	case errors.As(err, &insufficient),
		errors.As(err, &transition),
		errors.As(err, &notConfirmable),
		errors.Is(err, status.ErrIntentAlreadySettled),
		errors.Is(err, status.ErrAlreadyRefunded),
		errors.Is(err, status.ErrTicketAlreadyUsed),
		errors.Is(err, status.ErrTicketRefunded),
		errors.Is(err, status.ErrTicketTransferred):
		return apis.NewApiError(http.StatusConflict, err.Error(), nil)

	case errors.Is(err, status.ErrEventNotFound),
		errors.Is(err, status.ErrTicketTypeNotFound),
		errors.Is(err, status.ErrTicketNotFound),
		errors.Is(err, status.ErrTransactionNotFound),
		errors.Is(err, status.ErrIntentNotFound):
		return apis.NewNotFoundError(err.Error(), nil)

	case errors.Is(err, status.ErrQRInvalid),
		errors.Is(err, status.ErrNotRefundable):
		return apis.NewBadRequestError(err.Error(), nil)

	default:
		return apis.NewApiError(http.StatusInternalServerError, "Something went wrong", err)
	}
}
