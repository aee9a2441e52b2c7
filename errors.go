package campusbite

import (
	"errors"

	"github.com/itsneelabh/campusbite/pkg/checkout"
	"github.com/itsneelabh/campusbite/pkg/config"
	"github.com/itsneelabh/campusbite/pkg/gateway"
	"github.com/itsneelabh/campusbite/pkg/orders"
)

// IsAuthExpired reports whether the backend rejected the session. The
// stored credential has already been cleared when this is true.
func IsAuthExpired(err error) bool {
	return errors.Is(err, gateway.ErrUnauthorized)
}

// IsNotFound reports whether the backend could not find the resource
func IsNotFound(err error) bool {
	return errors.Is(err, gateway.ErrNotFound)
}

// IsValidation reports whether err was raised locally before any network call
func IsValidation(err error) bool {
	var ve *gateway.ValidationError
	return errors.As(err, &ve) ||
		errors.Is(err, checkout.ErrEmptyCart) ||
		errors.Is(err, checkout.ErrNoSlotSelected) ||
		errors.Is(err, checkout.ErrSlotUnavailable) ||
		errors.Is(err, orders.ErrNotCancellable)
}

// IsNetwork reports whether no response was received from the backend
func IsNetwork(err error) bool {
	var ne *gateway.NetworkError
	return errors.As(err, &ne)
}

// IsConfigurationError reports whether err comes from configuration
func IsConfigurationError(err error) bool {
	return errors.Is(err, config.ErrInvalidConfiguration) ||
		errors.Is(err, config.ErrMissingConfiguration)
}

// UserMessage is the text to show a student for err
func UserMessage(err error) string {
	var apiErr *gateway.APIError
	switch {
	case err == nil:
		return ""
	case IsAuthExpired(err):
		return "Your session has expired. Please log in again."
	case IsNetwork(err):
		return "Could not reach the server. Check your connection and try again."
	case errors.As(err, &apiErr):
		return apiErr.Message
	default:
		return err.Error()
	}
}
