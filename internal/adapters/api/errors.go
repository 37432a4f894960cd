package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/garimpo/backend/internal/domain/items"
	"github.com/garimpo/backend/internal/domain/negotiation"
	"github.com/garimpo/backend/internal/domain/users"
	"github.com/garimpo/backend/pkg/apierror"
)

// writeDomainError translates domain sentinel errors into the API failure
// taxonomy. Anything unmapped is a 500 and gets logged with its cause; the
// client only ever sees the generic message.
func writeDomainError(w http.ResponseWriter, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, items.ErrItemNotFound),
		errors.Is(err, negotiation.ErrItemNotFound),
		errors.Is(err, negotiation.ErrOfferNotFound),
		errors.Is(err, users.ErrUserNotFound):
		apierror.NotFound(err.Error()).Write(w)

	case errors.Is(err, items.ErrUnauthorized),
		errors.Is(err, negotiation.ErrOwnItem),
		errors.Is(err, negotiation.ErrNotBidder),
		errors.Is(err, negotiation.ErrNotParticipant):
		apierror.Forbidden(err.Error()).Write(w)

	case errors.Is(err, negotiation.ErrDuplicateOffer):
		apierror.DuplicateOffer(err.Error()).Write(w)

	case errors.Is(err, negotiation.ErrItemNotOpen),
		errors.Is(err, negotiation.ErrOfferNotActive),
		errors.Is(err, negotiation.ErrOfferNotPending),
		errors.Is(err, items.ErrCannotCancel),
		errors.Is(err, items.ErrListingNotEditable),
		errors.Is(err, users.ErrUserAlreadyExists):
		apierror.Conflict(err.Error()).Write(w)

	case errors.Is(err, items.ErrInvalidTitle),
		errors.Is(err, items.ErrInvalidCategory),
		errors.Is(err, items.ErrInvalidOfferType),
		errors.Is(err, items.ErrInvalidDuration),
		errors.Is(err, negotiation.ErrNoUpdates),
		errors.Is(err, users.ErrInvalidInput):
		apierror.BadRequest(err.Error()).Write(w)

	case errors.Is(err, users.ErrInvalidCredentials):
		apierror.Unauthorized(err.Error()).Write(w)

	default:
		logger.Error("unhandled error", slog.Any("error", err))
		apierror.InternalError("").Write(w)
	}
}
