package engine

import (
	"net/http"

	cr "github.com/cockroachdb/errors"
)

// Fault codes surfaced to callers. The handler layer maps Status 1:1 onto the
// HTTP response, so every code here carries its own status class.
const (
	CodeInvalidResource              = "INVALID_RESOURCE"
	CodeInvalidResourcePatch         = "INVALID_RESOURCE_PATCH"
	CodeInvalidItem                  = "INVALID_ITEM"
	CodeInvalidItemQuantity          = "INVALID_ITEM_QUANTITY"
	CodeInvalidItemPatch             = "INVALID_ITEM_PATCH"
	CodeInvalidHoldRequest           = "INVALID_HOLD_REQUEST"
	CodeInvalidExpiresIn             = "INVALID_EXPIRES_IN"
	CodeInvalidHoldLines             = "INVALID_HOLD_LINES"
	CodeInvalidHoldLineKind          = "INVALID_HOLD_LINE_KIND"
	CodeInvalidResourceSlot          = "INVALID_RESOURCE_SLOT"
	CodeInvalidResourceSlotAlignment = "INVALID_RESOURCE_SLOT_ALIGNMENT"
	CodeInvalidResourceSlotDuration  = "INVALID_RESOURCE_SLOT_DURATION"
	CodeInvalidQuantity              = "INVALID_QUANTITY"
	CodeInvalidRange                 = "INVALID_RANGE"
	CodeInvalidGranularity           = "INVALID_GRANULARITY"
	CodeInvalidQuery                 = "INVALID_QUERY"

	CodeResourceNotFound    = "RESOURCE_NOT_FOUND"
	CodeItemNotFound        = "ITEM_NOT_FOUND"
	CodeHoldNotFound        = "HOLD_NOT_FOUND"
	CodeBookingNotFound     = "BOOKING_NOT_FOUND"
	CodeReservationNotFound = "RESERVATION_NOT_FOUND"

	CodeResourceConflict         = "RESOURCE_CONFLICT"
	CodeInsufficientInventory    = "INSUFFICIENT_INVENTORY"
	CodeItemQuantityConflict     = "ITEM_QUANTITY_CONFLICT"
	CodeInvalidHoldStatus        = "INVALID_HOLD_STATUS"
	CodeHoldExpired              = "HOLD_EXPIRED"
	CodeInvalidBookingStatus     = "INVALID_BOOKING_STATUS"
	CodeInvalidReservationStatus = "INVALID_RESERVATION_STATUS"

	CodeForbidden = "FORBIDDEN"
)

// Error is the typed domain fault: machine-readable code, human message,
// HTTP-style status and optional structured details. Engine operations return
// it by early return; nothing in the core panics across an operation boundary.
type Error struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Status  int            `json:"-"`
	Details map[string]any `json:"details"`
}

func (e *Error) Error() string {
	return e.Code + ": " + e.Message
}

// NewError builds a domain fault with an explicit status. The transport layer
// uses it for faults that never reach the engine (bad JSON, bad role header).
func NewError(code, message string, status int, details map[string]any) *Error {
	if details == nil {
		details = map[string]any{}
	}
	return &Error{Code: code, Message: message, Status: status, Details: details}
}

func newError(code, message string, status int, details map[string]any) *Error {
	return NewError(code, message, status, details)
}

func validationError(code, message string, details map[string]any) *Error {
	return newError(code, message, http.StatusBadRequest, details)
}

func notFoundError(code, message string, details map[string]any) *Error {
	return newError(code, message, http.StatusNotFound, details)
}

func conflictError(code, message string, details map[string]any) *Error {
	return newError(code, message, http.StatusConflict, details)
}

func forbiddenError(message string, details map[string]any) *Error {
	return newError(CodeForbidden, message, http.StatusForbidden, details)
}

// AsError unwraps a domain fault from an arbitrary error chain.
func AsError(err error) (*Error, bool) {
	var de *Error
	if cr.As(err, &de) {
		return de, true
	}
	return nil, false
}
