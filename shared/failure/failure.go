package failure

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure beyond its HTTP code so callers can branch on
// the scheduling taxonomy without string matching.
const (
	KindValidation        = "validation"
	KindInvalidTransition = "invalid_state_transition"
	KindCapacityExhausted = "capacity_exhausted"
	KindConflict          = "conflict"
	KindSlotUnavailable   = "slot_unavailable"
	KindNotFound          = "not_found"
	KindInternal          = "internal"
)

// Failure is a wrapper for error messages and codes using standard HTTP response codes.
type Failure struct {
	Code    int    `json:"code"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

var InvalidPageParam = &Failure{Code: http.StatusBadRequest, Kind: KindValidation, Message: "invalid page parameter"}
var InvalidLimitParam = &Failure{Code: http.StatusBadRequest, Kind: KindValidation, Message: "invalid limit parameter"}

// Error returns the error message.
func (e *Failure) Error() string {
	return e.Message
}

// BadRequest returns a new Failure with code for bad requests.
func BadRequest(err error) error {
	if err != nil {
		return &Failure{
			Code:    http.StatusBadRequest,
			Kind:    KindValidation,
			Message: err.Error(),
		}
	}

	return nil
}

// BadRequestFromString returns a new Failure with code for bad requests with message set from string.
func BadRequestFromString(msg string) error {
	return &Failure{
		Code:    http.StatusBadRequest,
		Kind:    KindValidation,
		Message: msg,
	}
}

// InternalError returns a new Failure with code for internal error and message derived from an error interface.
func InternalError(err error) error {
	if err != nil {
		return &Failure{
			Code:    http.StatusInternalServerError,
			Kind:    KindInternal,
			Message: err.Error(),
		}
	}

	return nil
}

// NotFound returns a new Failure with code for entity not found.
func NotFound(entityName string) error {
	return &Failure{
		Code:    http.StatusNotFound,
		Kind:    KindNotFound,
		Message: entityName,
	}
}

// Conflict returns a new Failure with code for conflict situations.
func Conflict(message string) error {
	return &Failure{
		Code:    http.StatusConflict,
		Kind:    KindConflict,
		Message: message,
	}
}

// InvalidTransition returns a new Failure for an operation that is illegal in
// the entity's current state. The message always names both states.
func InvalidTransition(entity, from, to string) error {
	return &Failure{
		Code:    http.StatusConflict,
		Kind:    KindInvalidTransition,
		Message: fmt.Sprintf("%s cannot move from %s to %s", entity, from, to),
	}
}

// CapacityExhausted returns a new Failure for a slot whose capacity is fully
// reserved for the requested date.
func CapacityExhausted(msg string) error {
	return &Failure{
		Code:    http.StatusConflict,
		Kind:    KindCapacityExhausted,
		Message: msg,
	}
}

// SlotUnavailable returns a new Failure for a slot that was deactivated or
// fell out of its date range between selection and booking.
func SlotUnavailable(msg string) error {
	return &Failure{
		Code:    http.StatusGone,
		Kind:    KindSlotUnavailable,
		Message: msg,
	}
}

// GetCode returns the error code of an error interface.
func GetCode(err error) int {
	var fail *Failure
	if errors.As(err, &fail) {
		return fail.Code
	}

	return http.StatusInternalServerError
}

// GetKind returns the failure kind of an error interface.
func GetKind(err error) string {
	var fail *Failure
	if errors.As(err, &fail) {
		return fail.Kind
	}

	return KindInternal
}

// IsKind reports whether err is a Failure of the given kind.
func IsKind(err error, kind string) bool {
	return GetKind(err) == kind
}
