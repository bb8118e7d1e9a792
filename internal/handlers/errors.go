package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/example/velora/internal/services"
)

// statusForKind maps service error kinds to HTTP status codes. Ownership
// mismatches arrive as not_found by design and stay 404.
var statusForKind = map[services.ErrorKind]int{
	services.KindAmbiguousOwnership: fiber.StatusUnauthorized,
	services.KindEmptyCart:          fiber.StatusBadRequest,
	services.KindCartItemInvalid:    fiber.StatusBadRequest,
	services.KindValidationFailed:   fiber.StatusBadRequest,
	services.KindAddressNotFound:    fiber.StatusNotFound,
	services.KindAddressMismatch:    fiber.StatusNotFound,
	services.KindNotFound:           fiber.StatusNotFound,
	services.KindInvalidState:       fiber.StatusConflict,
	services.KindNoConfirmedPayment: fiber.StatusConflict,
	services.KindCircularReference:  fiber.StatusConflict,
}

// toHTTPError converts typed service errors to fiber errors. Unexpected store
// errors pass through for the app error handler to log and mask as 500.
func toHTTPError(err error) error {
	var se *services.Error
	if !errors.As(err, &se) {
		return err
	}

	status, ok := statusForKind[se.Kind]
	if !ok {
		status = fiber.StatusInternalServerError
	}

	message := se.Message
	if len(se.Details) > 0 {
		message += ": " + strings.Join(se.Details, "; ")
	}
	return fiber.NewError(status, message)
}
